// Package composite stitches venue adapters into one market data
// surface. Binance quotes spot but lists no options, Deribit quotes
// options; the watcher needs both behind a single provider.
package composite

import (
	"context"
	"fmt"

	"quanthedge/internal/domain"
	"quanthedge/internal/ports"
)

// MarketData routes price lookups to one provider and option chain
// lookups to another.
type MarketData struct {
	prices ports.MarketDataProvider
	chains ports.MarketDataProvider
}

// New wires a price venue and an option chain venue together.
func New(prices, chains ports.MarketDataProvider) (*MarketData, error) {
	if prices == nil {
		return nil, fmt.Errorf("price provider is required for composite market data")
	}
	if chains == nil {
		return nil, fmt.Errorf("chain provider is required for composite market data")
	}
	return &MarketData{prices: prices, chains: chains}, nil
}

// GetPrice retrieves the current price from the price venue.
func (m *MarketData) GetPrice(ctx context.Context, symbol string) (float64, error) {
	return m.prices.GetPrice(ctx, symbol)
}

// GetOptionChain retrieves the option chain from the chain venue.
func (m *MarketData) GetOptionChain(ctx context.Context, underlying, expiry string) ([]domain.OptionQuote, error) {
	return m.chains.GetOptionChain(ctx, underlying, expiry)
}
