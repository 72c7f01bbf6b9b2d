package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// EnvToken names the environment variable holding the IEX credential.
const EnvToken = "IEX_TOKEN"

type Server struct {
	Port              string `yaml:"port"`
	RequestTimeoutSec int    `yaml:"request_timeout_sec"`
}

type IEX struct {
	Token      string `yaml:"token"`
	BaseURL    string `yaml:"base_url"`
	TimeoutSec int    `yaml:"timeout_sec"`
	UserAgent  string `yaml:"user_agent"`
}

type Log struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

type Config struct {
	Server Server `yaml:"server"`
	IEX    IEX    `yaml:"iex"`
	Log    Log    `yaml:"log"`
}

func Default() Config {
	return Config{
		Server: Server{Port: "8080", RequestTimeoutSec: 310},
		IEX: IEX{
			BaseURL:    "https://cloud.iexapis.com",
			TimeoutSec: 300,
			UserAgent:  "iexprice/1.0",
		},
		Log: Log{Level: "info"},
	}
}

// Load reads YAML (or JSON) config from path. If path is empty it tries
// config.yaml in the working directory; a missing file yields defaults.
// Environment variables override select fields, the token in particular.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		if _, err := os.Stat("config.yaml"); err == nil {
			path = "config.yaml"
		}
	}
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err == nil {
			if err := yaml.Unmarshal(b, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config: %w", err)
			}
		}
	}
	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" { cfg.Server.Port = v }
	if v := os.Getenv("REQUEST_TIMEOUT_SEC"); v != "" {
		var x int; fmt.Sscanf(v, "%d", &x); if x > 0 { cfg.Server.RequestTimeoutSec = x }
	}
	if v := os.Getenv(EnvToken); v != "" { cfg.IEX.Token = v }
	if v := os.Getenv("IEX_BASE_URL"); v != "" { cfg.IEX.BaseURL = v }
	if v := os.Getenv("IEX_TIMEOUT_SEC"); v != "" {
		var x int; fmt.Sscanf(v, "%d", &x); if x > 0 { cfg.IEX.TimeoutSec = x }
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" { cfg.Log.Level = strings.ToLower(v) }
	if v := os.Getenv("LOG_DEVELOPMENT"); v != "" {
		switch strings.ToLower(v) {
		case "1", "true", "yes", "y": cfg.Log.Development = true
		case "0", "false", "no", "n": cfg.Log.Development = false
		}
	}
}
