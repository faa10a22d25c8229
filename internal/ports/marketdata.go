package ports

import (
	"context"

	"quanthedge/internal/domain"
)

// MarketDataProvider is the pull-based price/data oracle supplied by exchange
// connectors. The core queries it synchronously at the start of any
// computation that needs current prices and never caches results across
// calls; retries and connection management belong to the adapter.
type MarketDataProvider interface {
	// GetPrice retrieves the current price for a symbol.
	GetPrice(ctx context.Context, symbol string) (float64, error)

	// GetOptionChain retrieves the tradable option instruments for an
	// underlying, optionally filtered to a single expiry label. An empty
	// expiry returns the full chain.
	GetOptionChain(ctx context.Context, underlying, expiry string) ([]domain.OptionQuote, error)
}

// HistoricalDataProvider supplies a time-ordered daily price series for a
// symbol over the trailing N days, ascending by timestamp. The core treats
// it as a read-only data source.
type HistoricalDataProvider interface {
	GetSeries(ctx context.Context, symbol string, days int) ([]domain.Candle, error)
}
