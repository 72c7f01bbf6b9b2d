package iex

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"iexprice/internal/source"
)

// quoteResponse holds the subset of the quote payload we read.
// Pointers distinguish missing or null fields from zero values.
type quoteResponse struct {
	LatestPrice  *json.Number `json:"latestPrice"`
	LatestUpdate *json.Number `json:"latestUpdate"`
}

// FetchQuote retrieves the latest price for ticker.
func (c *Client) FetchQuote(ctx context.Context, ticker string) (source.Price, error) {
	if strings.TrimSpace(ticker) == "" {
		return source.Price{}, ErrEmptyTicker
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.QuoteURL(ticker), http.NoBody)
	if err != nil {
		return source.Price{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header = c.header.Clone()
	req.Header.Set("Accept", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		var uerr *url.Error
		if errors.As(err, &uerr) {
			// Keep the token out of error messages.
			err = uerr.Err
		}
		return source.Price{}, fmt.Errorf("performing request for %s: %w", strings.ToUpper(ticker), err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return source.Price{}, fmt.Errorf("reading response: %w", err)
	}
	if res.StatusCode != http.StatusOK {
		return source.Price{}, &QuoteError{StatusCode: res.StatusCode, Body: string(body)}
	}

	var quote quoteResponse
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&quote); err != nil {
		return source.Price{}, fmt.Errorf("%w: decoding quote: %w", ErrMalformedResponse, err)
	}

	amount, err := parsePrice(quote.LatestPrice)
	if err != nil {
		return source.Price{}, err
	}
	at, err := c.parseUpdate(quote.LatestUpdate)
	if err != nil {
		return source.Price{}, err
	}

	return source.Price{
		Amount:   amount,
		Time:     at,
		Currency: Currency,
	}, nil
}

// parsePrice rounds latestPrice to the cent, half to even.
func parsePrice(n *json.Number) (decimal.Decimal, error) {
	if n == nil {
		return decimal.Decimal{}, fmt.Errorf("%w: missing field latestPrice", ErrMalformedResponse)
	}
	d, err := decimal.NewFromString(n.String())
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: latestPrice %q: %w", ErrMalformedResponse, n.String(), err)
	}
	return RoundCents(d), nil
}

// parseUpdate turns latestUpdate (epoch milliseconds) into a Paris-labelled
// time. The wall clock is taken in the host zone and relabelled, not
// converted; with a Paris host zone the two agree.
func (c *Client) parseUpdate(n *json.Number) (time.Time, error) {
	if n == nil {
		return time.Time{}, fmt.Errorf("%w: missing field latestUpdate", ErrMalformedResponse)
	}
	ms, err := n.Int64()
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: latestUpdate %q: %w", ErrMalformedResponse, n.String(), err)
	}
	return Relabel(time.UnixMilli(ms).In(c.hostLoc), c.paris), nil
}

// RoundCents rounds d to two fractional digits, half to even.
func RoundCents(d decimal.Decimal) decimal.Decimal {
	return d.RoundBank(2)
}

// Relabel keeps the wall clock of t and attaches loc to it.
func Relabel(t time.Time, loc *time.Location) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), loc)
}
