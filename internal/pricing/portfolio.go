package pricing

import (
	"time"

	"quanthedge/internal/domain"
)

// Greeks holds aggregate portfolio sensitivities.
type Greeks struct {
	Delta float64
	Gamma float64
	Theta float64
	Vega  float64
}

// PortfolioGreeks sums the per-position Greek contributions.
//
// Spot and perpetual positions contribute quantity * 1.0 delta and zero for
// the other three Greeks. Option positions contribute quantity * per-unit
// Greek from Black-Scholes at the supplied volatility.
//
// prices maps each position's symbol to the mark price of its underlying
// (for options the caller supplies the underlying price under the option's
// symbol key). vols maps option symbols to annualized volatility; a missing
// entry degenerates the option to its intrinsic Greeks (vol 0).
func PortfolioGreeks(positions []*domain.Position, prices, vols map[string]float64, rate float64, now time.Time) Greeks {
	var g Greeks
	for _, p := range positions {
		switch p.Kind {
		case domain.Spot, domain.Perpetual:
			g.Delta += p.Quantity
		case domain.Option:
			if p.Option == nil {
				continue
			}
			spot, ok := prices[p.Symbol]
			if !ok || spot <= 0 {
				continue
			}
			tYears, err := TimeToExpiry(p.Option.Expiry, now)
			if err != nil {
				continue
			}
			q, err := PriceAndGreeks(spot, p.Option.Strike, tYears, rate, vols[p.Symbol], p.Option.Kind)
			if err != nil {
				continue
			}
			g.Delta += p.Quantity * q.Delta
			g.Gamma += p.Quantity * q.Gamma
			g.Theta += p.Quantity * q.Theta
			g.Vega += p.Quantity * q.Vega
		}
	}
	return g
}

// PortfolioDelta returns only the aggregate delta.
func PortfolioDelta(positions []*domain.Position, prices, vols map[string]float64, rate float64, now time.Time) float64 {
	return PortfolioGreeks(positions, prices, vols, rate, now).Delta
}

// StrategyGreeks sums the Greeks of a leg set, weighted by signed quantity.
func StrategyGreeks(legs []domain.OptionLeg) Greeks {
	var g Greeks
	for _, leg := range legs {
		g.Delta += leg.Delta * leg.Quantity
		g.Gamma += leg.Gamma * leg.Quantity
		g.Theta += leg.Theta * leg.Quantity
		g.Vega += leg.Vega * leg.Quantity
	}
	return g
}
