package pricing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"quanthedge/internal/domain"
)

func TestPortfolioGreeks_SpotAndPerpetual(t *testing.T) {
	positions := []*domain.Position{
		{Symbol: "BTC-USDT", Quantity: 5, EntryPrice: 108000, Kind: domain.Spot},
		{Symbol: "BTC-USDT-PERP", Quantity: -2, EntryPrice: 107950, Kind: domain.Perpetual},
	}
	prices := map[string]float64{"BTC-USDT": 108000, "BTC-USDT-PERP": 108000}

	g := PortfolioGreeks(positions, prices, nil, 0.05, time.Now())
	assert.Equal(t, 3.0, g.Delta)
	assert.Equal(t, 0.0, g.Gamma)
	assert.Equal(t, 0.0, g.Theta)
	assert.Equal(t, 0.0, g.Vega)
}

func TestPortfolioGreeks_WithOption(t *testing.T) {
	now := time.Date(2025, 6, 26, 0, 0, 0, 0, time.UTC)
	optSym := "BTC-26DEC25-110000-P"
	positions := []*domain.Position{
		{Symbol: "BTC-USDT", Quantity: 1, EntryPrice: 100000, Kind: domain.Spot},
		{
			Symbol: optSym, Quantity: 2, EntryPrice: 4000, Kind: domain.Option,
			Option: &domain.OptionInfo{Strike: 110000, Expiry: "26DEC25", Kind: domain.Put},
		},
	}
	prices := map[string]float64{"BTC-USDT": 108000, optSym: 108000}
	vols := map[string]float64{optSym: 0.6}

	g := PortfolioGreeks(positions, prices, vols, 0.05, now)
	// Long puts drag delta below the +1 spot contribution.
	assert.Less(t, g.Delta, 1.0)
	assert.Greater(t, g.Gamma, 0.0)
	assert.Greater(t, g.Vega, 0.0)
	assert.Less(t, g.Theta, 0.0)
}

func TestPortfolioGreeks_MissingVolDegeneratesToIntrinsic(t *testing.T) {
	now := time.Date(2025, 6, 26, 0, 0, 0, 0, time.UTC)
	optSym := "BTC-26DEC25-90000-P"
	positions := []*domain.Position{
		{
			Symbol: optSym, Quantity: 1, EntryPrice: 500, Kind: domain.Option,
			Option: &domain.OptionInfo{Strike: 90000, Expiry: "26DEC25", Kind: domain.Put},
		},
	}
	prices := map[string]float64{optSym: 108000}

	// OTM put at zero vol has zero delta.
	g := PortfolioGreeks(positions, prices, nil, 0.05, now)
	assert.Equal(t, 0.0, g.Delta)
}

func TestStrategyGreeks(t *testing.T) {
	legs := []domain.OptionLeg{
		{Quantity: 1, Delta: 0.5, Gamma: 0.02, Theta: -0.1, Vega: 0.8},
		{Quantity: -2, Delta: 0.4, Gamma: 0.03, Theta: -0.2, Vega: 0.9},
	}
	g := StrategyGreeks(legs)
	assert.InDelta(t, 0.5-0.8, g.Delta, 1e-12)
	assert.InDelta(t, 0.02-0.06, g.Gamma, 1e-12)
	assert.InDelta(t, -0.1+0.4, g.Theta, 1e-12)
	assert.InDelta(t, 0.8-1.8, g.Vega, 1e-12)
}
