package app

import (
	"time"

	"go.uber.org/zap"

	"iexprice/internal/config"
	"iexprice/internal/httpx"
	"iexprice/internal/source/iex"
)

// NewIEXSource builds the IEX source from cfg. It fails with
// iex.ErrCredentialMissing when no token is configured.
func NewIEXSource(cfg config.IEX, logger *zap.Logger) (*iex.Source, error) {
	timeout := iex.DefaultTimeout
	if cfg.TimeoutSec > 0 {
		timeout = time.Duration(cfg.TimeoutSec) * time.Second
	}
	hc := httpx.New(timeout)
	if cfg.UserAgent != "" {
		hc.UserAgent = cfg.UserAgent
	}
	if logger != nil {
		hc.Logger = logger.Named("http")
	}

	opts := []iex.ClientOption{iex.WithHTTPClient(hc)}
	if cfg.BaseURL != "" {
		opts = append(opts, iex.WithBaseURL(cfg.BaseURL))
	}
	client, err := iex.NewClient(cfg.Token, opts...)
	if err != nil {
		return nil, err
	}
	return iex.New(client), nil
}
