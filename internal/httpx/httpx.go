package httpx

import (
	"errors"
	"net"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

// Client is a small wrapper around http.Client with sane defaults.
// It satisfies iex.HTTPClient.
type Client struct {
	HTTP      *http.Client
	UserAgent string
	Headers   map[string]string
	// Logger receives one debug line per request. Query strings are not
	// logged since they carry credentials.
	Logger *zap.Logger
}

// New returns a client whose overall request deadline is timeout. There is no
// separate response-header deadline, so slow upstreams get the full timeout.
func New(timeout time.Duration) *Client {
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: 10 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
		MaxIdleConns:          10,
		MaxIdleConnsPerHost:   2,
		ForceAttemptHTTP2:     true,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	return &Client{
		HTTP:      &http.Client{Timeout: timeout, Transport: transport},
		UserAgent: "iexprice/1.0",
		Logger:    zap.NewNop(),
	}
}

func (c *Client) Do(req *http.Request) (*http.Response, error) {
	if c.UserAgent != "" && req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	for k, v := range c.Headers {
		if req.Header.Get(k) == "" {
			req.Header.Set(k, v)
		}
	}

	start := time.Now()
	resp, err := c.HTTP.Do(req)
	if c.Logger != nil {
		fields := []zap.Field{
			zap.String("method", req.Method),
			zap.String("host", req.URL.Host),
			zap.String("path", req.URL.Path),
			zap.Duration("elapsed", time.Since(start)),
		}
		if err != nil {
			c.Logger.Debug("http request failed", append(fields, zap.Error(redact(err)))...)
		} else {
			c.Logger.Debug("http request", append(fields, zap.Int("status", resp.StatusCode))...)
		}
	}
	return resp, err
}

// redact drops the request URL from *url.Error values; the query carries
// credentials.
func redact(err error) error {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		return uerr.Err
	}
	return err
}
