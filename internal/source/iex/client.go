package iex

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
	_ "time/tzdata"
)

const (
	// DefaultBaseURL is the IEX Cloud API root.
	DefaultBaseURL = "https://cloud.iexapis.com"
	// DefaultTimeout bounds a single quote request. Upstream can be slow.
	DefaultTimeout = 300 * time.Second

	// Currency labels every price from this source, whatever the listing
	// currency of the instrument actually is.
	Currency = "EUR"
	// TimeZone labels every quote time from this source.
	TimeZone = "Europe/Paris"
)

var (
	// ErrCredentialMissing is returned when no API token was provided.
	ErrCredentialMissing = errors.New("iex: missing API token (set IEX_TOKEN)")
	// ErrEmptyTicker is returned for a blank ticker symbol.
	ErrEmptyTicker = errors.New("iex: empty ticker")
	// ErrMalformedResponse wraps JSON and field lookup failures.
	ErrMalformedResponse = errors.New("iex: malformed response")
)

// QuoteError is returned when the API answers with a non-200 status.
// Body is the raw response text.
type QuoteError struct {
	StatusCode int
	Body       string
}

func (e *QuoteError) Error() string {
	return fmt.Sprintf("iex: invalid response (%d): %s", e.StatusCode, e.Body)
}

// HTTPClient describes an HTTP client.
//
//go:generate mockgen -package=iex_test -destination=mock_http_client_test.go -source=client.go HTTPClient
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client is a client for the IEX Cloud quote endpoint.
type Client struct {
	// baseURL is the base URL for the API.
	baseURL string
	// token is the API credential, sent as the token query parameter.
	token string
	// httpClient is the HTTP client.
	httpClient HTTPClient
	// header contains additional headers to be sent with each request.
	header http.Header
	// hostLoc is the zone the epoch timestamp is first rendered in before
	// being relabelled as Paris time.
	hostLoc *time.Location
	// paris is the zone attached to every returned time.
	paris *time.Location
}

// ClientOption is a configuration option for the IEX client.
type ClientOption func(*Client)

// WithBaseURL sets the base URL for the API.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithHTTPClient sets the HTTP client for the API.
func WithHTTPClient(httpClient HTTPClient) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithHeader sets additional headers to be sent with each request.
func WithHeader(header http.Header) ClientOption {
	return func(c *Client) {
		for key, values := range header {
			for _, value := range values {
				c.header.Add(key, value)
			}
		}
	}
}

// WithHostLocation sets the zone used for the wall-clock step of the time
// conversion. Defaults to time.Local.
func WithHostLocation(loc *time.Location) ClientOption {
	return func(c *Client) {
		if loc != nil {
			c.hostLoc = loc
		}
	}
}

// NewClient creates a new IEX client. The token is required.
func NewClient(token string, options ...ClientOption) (*Client, error) {
	if token == "" {
		return nil, ErrCredentialMissing
	}
	paris, err := time.LoadLocation(TimeZone)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", TimeZone, err)
	}
	var client = &Client{
		baseURL:    DefaultBaseURL,
		token:      token,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		header:     http.Header{},
		hostLoc:    time.Local,
		paris:      paris,
	}
	for _, option := range options {
		option(client)
	}
	return client, nil
}

// QuoteURL returns the single-quote endpoint for ticker.
func (c *Client) QuoteURL(ticker string) string {
	query := url.Values{}
	query.Set("token", c.token)
	symbol := url.PathEscape(strings.ToUpper(strings.TrimSpace(ticker)))
	return fmt.Sprintf("%s/stable/stock/%s/quote?%s", c.baseURL, symbol, query.Encode())
}
