// Command iexprice prints the latest IEX quote for each ticker as a price
// directive:
//
//	iexprice AAPL MSFT
//	2023-11-14 price AAPL 189.71 EUR
//
// IEX_TOKEN must be set (or iex.token in the config file).
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"iexprice/internal/app"
	"iexprice/internal/config"
	"iexprice/internal/logging"
	"iexprice/internal/source"
)

func main() {
	var configPath string
	var asJSON bool
	var date string

	flag.StringVar(&configPath, "config", getenv("CONFIG_FILE", ""), "path to config.yaml (optional)")
	flag.BoolVar(&asJSON, "json", false, "print JSON lines instead of price directives")
	flag.StringVar(&date, "date", "", "fetch the price at this date (YYYY-MM-DD) instead of the latest")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] TICKER...\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logging: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	src, err := app.NewIEXSource(cfg.IEX, logger)
	if err != nil {
		logger.Fatal("source setup failed", zap.Error(err))
	}

	tickers := flag.Args()
	if len(tickers) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	var at time.Time
	if date != "" {
		at, err = time.Parse(time.DateOnly, date)
		if err != nil {
			logger.Fatal("invalid -date", zap.String("date", date), zap.Error(err))
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if failed := run(ctx, logger, src, tickers, at, asJSON, os.Stdout); failed > 0 {
		logger.Sync()
		os.Exit(1)
	}
}

type jsonLine struct {
	Ticker string `json:"ticker"`
	source.Price
}

// run fetches each ticker in turn and writes one line per success. It returns
// the number of tickers that failed.
func run(ctx context.Context, logger *zap.Logger, src source.Source, tickers []string, at time.Time, asJSON bool, w io.Writer) int {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	failed := 0
	for _, ticker := range tickers {
		ticker = strings.ToUpper(strings.TrimSpace(ticker))
		var p source.Price
		var err error
		if at.IsZero() {
			p, err = src.LatestPrice(ctx, ticker)
		} else {
			p, err = src.HistoricalPrice(ctx, ticker, at)
		}
		if err != nil {
			failed++
			if source.IsUnsupported(err) {
				logger.Error("unsupported by source", zap.String("source", src.Name()), zap.String("ticker", ticker), zap.Error(err))
			} else {
				logger.Error("fetch failed", zap.String("source", src.Name()), zap.String("ticker", ticker), zap.Error(err))
			}
			continue
		}
		logger.Debug("fetched", zap.String("ticker", ticker), zap.Stringer("amount", p.Amount), zap.Time("time", p.Time))
		if asJSON {
			_ = enc.Encode(jsonLine{Ticker: ticker, Price: p})
			continue
		}
		fmt.Fprintln(w, formatDirective(ticker, p))
	}
	return failed
}

// formatDirective renders p as "YYYY-MM-DD price TICKER AMOUNT CUR".
func formatDirective(ticker string, p source.Price) string {
	return fmt.Sprintf("%s price %s %s %s", p.Time.Format(time.DateOnly), ticker, p.Amount.StringFixed(2), p.Currency)
}

func getenv(key, def string) string { if v := os.Getenv(key); v != "" { return v }; return def }
