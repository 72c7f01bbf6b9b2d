package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, k := range []string{"PORT", "REQUEST_TIMEOUT_SEC", EnvToken, "IEX_BASE_URL", "IEX_TIMEOUT_SEC", "LOG_LEVEL", "LOG_DEVELOPMENT"} {
		t.Setenv(k, "")
	}
}

func TestLoad_DefaultsWhenNoFile(t *testing.T) {
	clearEnv(t)
	chdir(t, t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
	require.Empty(t, cfg.IEX.Token)
	require.Equal(t, 300, cfg.IEX.TimeoutSec)
}

func TestLoad_MissingFileIsNotAnError(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
}

func TestLoad_YAMLFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: "9090"
iex:
  token: from-file
  base_url: https://sandbox.iexapis.com
log:
  level: debug
  development: true
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "9090", cfg.Server.Port)
	require.Equal(t, "from-file", cfg.IEX.Token)
	require.Equal(t, "https://sandbox.iexapis.com", cfg.IEX.BaseURL)
	require.Equal(t, 300, cfg.IEX.TimeoutSec)
	require.Equal(t, "debug", cfg.Log.Level)
	require.True(t, cfg.Log.Development)
}

func TestLoad_JSONFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"iex": {"token": "json-token", "timeout_sec": 30}}`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "json-token", cfg.IEX.Token)
	require.Equal(t, 30, cfg.IEX.TimeoutSec)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("iex:\n  token: from-file\n"), 0o600))
	t.Setenv(EnvToken, "from-env")
	t.Setenv("IEX_TIMEOUT_SEC", "60")
	t.Setenv("LOG_LEVEL", "WARN")
	t.Setenv("PORT", "1234")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "from-env", cfg.IEX.Token)
	require.Equal(t, 60, cfg.IEX.TimeoutSec)
	require.Equal(t, "warn", cfg.Log.Level)
	require.Equal(t, "1234", cfg.Server.Port)
}

func TestLoad_BadFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("iex: [unterminated"), 0o600))

	_, err := Load(path)
	require.ErrorContains(t, err, "parse config")
}
