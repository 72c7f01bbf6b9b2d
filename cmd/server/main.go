// Command server exposes the IEX price source over HTTP.
//
//	GET /healthz
//	GET /api/price?ticker=AAPL
//	GET /api/price?ticker=AAPL&date=2023-01-02   (always 501)
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"iexprice/internal/app"
	"iexprice/internal/config"
	"iexprice/internal/logging"
)

func main() {
	cfgPath := os.Getenv("CONFIG_FILE")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log, err := logging.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logging: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	src, err := app.NewIEXSource(cfg.IEX, log)
	if err != nil {
		log.Fatal("source setup failed", zap.Error(err))
	}

	s := &server{Source: src, Deadline: time.Duration(cfg.Server.RequestTimeoutSec) * time.Second}
	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           s.Handler(log),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		// Upstream quotes may take the full source timeout.
		WriteTimeout: s.Deadline + 10*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("server listening", zap.String("addr", srv.Addr), zap.String("source", src.Name()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server", zap.Error(err))
		}
	}()

	// graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("shutdown", zap.Error(err))
	}
}
