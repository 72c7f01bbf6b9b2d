package iex

import (
	"context"
	"fmt"
	"time"

	"iexprice/internal/source"
)

// Name is the display name of this source.
const Name = "IEX"

// Source adapts Client to the source.Source contract.
type Source struct {
	client *Client
}

var _ source.Source = (*Source)(nil)

func New(client *Client) *Source {
	return &Source{client: client}
}

func (s *Source) Name() string { return Name }

// LatestPrice fetches the current quote for ticker.
func (s *Source) LatestPrice(ctx context.Context, ticker string) (source.Price, error) {
	return s.client.FetchQuote(ctx, ticker)
}

// HistoricalPrice always fails. IEX publishes history at
// https://iextrading.com/developers/docs/#hist; it is not wired up here.
func (s *Source) HistoricalPrice(_ context.Context, ticker string, at time.Time) (source.Price, error) {
	return source.Price{}, fmt.Errorf("iex: %s at %s: %w (available at https://iextrading.com/developers/docs/#hist, not implemented here)",
		ticker, at.Format(time.DateOnly), source.ErrHistoricalUnsupported)
}
