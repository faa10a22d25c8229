package stress

import (
	"time"

	"quanthedge/internal/domain"
	"quanthedge/internal/pricing"
	"quanthedge/internal/risk"
)

// Point captures the portfolio state at one market level.
type Point struct {
	PnL   float64
	VaR   float64
	Delta float64
}

// Impact compares the portfolio before and after a scenario, with an
// optional hedge overlay applied on the after side of both points.
type Impact struct {
	Scenario Scenario
	Before   Point
	After    Point
}

// PnLChange is the damage the scenario does relative to today's
// marks. To measure hedge protection, compare runs with and without
// the hedge legs.
func (im Impact) PnLChange() float64 {
	return im.After.PnL - im.Before.PnL
}

// Runner re-marks a portfolio under shocked prices and volatilities.
type Runner struct {
	rate float64
	now  func() time.Time
}

// NewRunner prices shocked options at the given risk-free rate.
func NewRunner(rate float64) *Runner {
	return &Runner{rate: rate, now: time.Now}
}

// Run values the positions plus hedge legs at current and shocked
// markets. Prices and vols are keyed by position symbol; option
// positions expect their underlying's price under their own symbol
// key, the way the greek aggregator does.
func (r *Runner) Run(positions []*domain.Position, hedges []domain.OptionLeg, prices, vols map[string]float64, sc Scenario) Impact {
	now := r.now()

	before := r.value(positions, hedges, prices, vols, now)
	after := r.value(positions, hedges, shift(prices, sc.PriceMult), shift(vols, sc.VolMult), now)

	return Impact{Scenario: sc, Before: before, After: after}
}

// RunAll evaluates every scenario against the same book.
func (r *Runner) RunAll(positions []*domain.Position, hedges []domain.OptionLeg, prices, vols map[string]float64, scenarios []Scenario) []Impact {
	out := make([]Impact, 0, len(scenarios))
	for _, sc := range scenarios {
		out = append(out, r.Run(positions, hedges, prices, vols, sc))
	}
	return out
}

func (r *Runner) value(positions []*domain.Position, hedges []domain.OptionLeg, prices, vols map[string]float64, now time.Time) Point {
	var pt Point

	for _, p := range positions {
		price, ok := prices[p.Symbol]
		if !ok {
			continue
		}
		switch p.Kind {
		case domain.Option:
			mark := r.markOption(p, price, vols[p.Symbol], now)
			pt.PnL += p.Quantity * (mark - p.EntryPrice)
		default:
			pt.PnL += p.UnrealizedPnL(price)
		}
	}

	for _, leg := range hedges {
		if leg.Symbol == "" {
			continue
		}
		price, ok := prices[leg.Symbol]
		if !ok {
			continue
		}
		tYears, err := pricing.TimeToExpiry(leg.Expiry, now)
		if err != nil {
			continue
		}
		q, err := pricing.PriceAndGreeks(price, leg.Strike, tYears, r.rate, vols[leg.Symbol], leg.Kind)
		if err != nil {
			continue
		}
		pt.PnL += leg.Quantity * (q.Price - leg.EntryPrice)
		pt.Delta += leg.Quantity * q.Delta
	}

	greeks := pricing.PortfolioGreeks(positions, prices, vols, r.rate, now)
	pt.Delta += greeks.Delta
	pt.VaR = risk.VaR95(positions, prices)
	return pt
}

func (r *Runner) markOption(p *domain.Position, underlying, vol float64, now time.Time) float64 {
	if p.Option == nil {
		return p.EntryPrice
	}
	tYears, err := pricing.TimeToExpiry(p.Option.Expiry, now)
	if err != nil {
		return p.EntryPrice
	}
	q, err := pricing.PriceAndGreeks(underlying, p.Option.Strike, tYears, r.rate, vol, p.Option.Kind)
	if err != nil {
		return p.EntryPrice
	}
	return q.Price
}

func shift(m map[string]float64, mult float64) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = v * mult
	}
	return out
}
