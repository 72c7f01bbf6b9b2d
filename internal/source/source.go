package source

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Price is the normalized shape returned by all sources.
type Price struct {
	Amount   decimal.Decimal `json:"amount"`
	Time     time.Time       `json:"time"`
	Currency string          `json:"currency"`
}

// ErrHistoricalUnsupported is returned by sources that cannot look up past
// prices. It is permanent; retrying will not help.
var ErrHistoricalUnsupported = errors.New("historical prices not supported")

// Source is a pluggable provider of quotes.
type Source interface {
	Name() string
	LatestPrice(ctx context.Context, ticker string) (Price, error)
	HistoricalPrice(ctx context.Context, ticker string, at time.Time) (Price, error)
}

// IsUnsupported reports whether err means the source lacks the capability,
// as opposed to a transient failure.
func IsUnsupported(err error) bool {
	return errors.Is(err, ErrHistoricalUnsupported)
}
