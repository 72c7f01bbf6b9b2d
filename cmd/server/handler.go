package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/purini-to/zapmw"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/singleflight"

	"iexprice/internal/source"
	"iexprice/internal/source/iex"
)

type server struct {
	Source   source.Source
	Deadline time.Duration

	// coalesces concurrent requests for the same ticker into one upstream
	// call; nothing is kept once the call returns
	flight singleflight.Group
}

type priceResponse struct {
	Ticker string `json:"ticker"`
	Source string `json:"source"`
	source.Price
}

type respErr struct {
	Status         int    `json:"status"`
	Message        string `json:"message"`
	UpstreamStatus int    `json:"upstream_status,omitempty"`
	UpstreamBody   string `json:"upstream_body,omitempty"`
	ID             string `json:"id"`
}

// httpError carries a status chosen by the handler.
type httpError struct {
	status int
	msg    string
}

func (e *httpError) Error() string { return e.msg }

func badRequest(format string, args ...any) error {
	return &httpError{status: http.StatusBadRequest, msg: fmt.Sprintf(format, args...)}
}

func (s *server) Handler(log *zap.Logger) http.Handler {
	m := mux.NewRouter()
	m.Use(handlers.ProxyHeaders,
		handlers.CompressHandler,
		zapmw.WithZap(log),
		zapmw.Request(zapcore.InfoLevel, "request"),
		zapmw.Recoverer(zapcore.ErrorLevel, "recover", zapmw.RecovererDefault))
	m.HandleFunc("/healthz", s.health).Methods(http.MethodGet)
	m.HandleFunc("/api/price", toHandler(log, s.price)).Methods(http.MethodGet)
	return m
}

func (s *server) health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *server) price(w http.ResponseWriter, r *http.Request) error {
	ticker := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("ticker")))
	if ticker == "" {
		return badRequest("missing ticker query param")
	}

	var p source.Price
	if d := r.URL.Query().Get("date"); d != "" {
		at, err := time.Parse(time.DateOnly, d)
		if err != nil {
			return badRequest("invalid date %q, want YYYY-MM-DD", d)
		}
		p, err = s.Source.HistoricalPrice(r.Context(), ticker, at)
		if err != nil {
			return err
		}
	} else {
		v, err, _ := s.flight.Do(ticker, func() (any, error) {
			// Detached so one caller leaving does not fail the others.
			ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), s.deadline())
			defer cancel()
			return s.Source.LatestPrice(ctx, ticker)
		})
		if err != nil {
			return err
		}
		p = v.(source.Price)
	}

	return json.NewEncoder(w).Encode(priceResponse{Ticker: ticker, Source: s.Source.Name(), Price: p})
}

func (s *server) deadline() time.Duration {
	if s.Deadline > 0 {
		return s.Deadline
	}
	return iex.DefaultTimeout
}

// toHandler buffers the handler output so a failing handler can still
// render a clean JSON error.
func toHandler(log *zap.Logger, f func(http.ResponseWriter, *http.Request) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bw := &bufferedRespWriter{ResponseWriter: w}
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		if err := f(bw, r); err != nil {
			handleErr(log, w, err)
			return
		}
		if bw.status != 0 {
			w.WriteHeader(bw.status)
		}
		_, _ = io.Copy(w, &bw.b)
	}
}

func handleErr(log *zap.Logger, w http.ResponseWriter, err error) {
	out := respErr{
		ID:      uuid.New().String(),
		Status:  http.StatusInternalServerError,
		Message: err.Error(),
	}

	var herr *httpError
	var qerr *iex.QuoteError
	switch {
	case errors.As(err, &herr):
		out.Status = herr.status
	case source.IsUnsupported(err):
		out.Status = http.StatusNotImplemented
	case errors.As(err, &qerr):
		out.Status = http.StatusBadGateway
		out.UpstreamStatus = qerr.StatusCode
		out.UpstreamBody = qerr.Body
	case errors.Is(err, iex.ErrMalformedResponse):
		out.Status = http.StatusBadGateway
	case errors.Is(err, iex.ErrEmptyTicker):
		out.Status = http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		out.Status = http.StatusGatewayTimeout
	}

	if out.Status >= http.StatusInternalServerError && out.Status != http.StatusNotImplemented {
		log.Error("request error", zap.Error(err), zap.String("error.id", out.ID), zap.Int("status", out.Status))
	} else {
		log.Info("request rejected", zap.Error(err), zap.String("error.id", out.ID), zap.Int("status", out.Status))
	}

	w.WriteHeader(out.Status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(out)
}

type bufferedRespWriter struct {
	http.ResponseWriter
	b      bytes.Buffer
	status int
}

func (b *bufferedRespWriter) Write(p []byte) (int, error) { return b.b.Write(p) }

func (b *bufferedRespWriter) WriteHeader(code int) { b.status = code }
