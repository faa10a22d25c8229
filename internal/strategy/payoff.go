package strategy

import (
	"math"
	"sort"

	"quanthedge/internal/domain"
)

// Payoff models the expiry profit and loss of a multi-leg option
// structure, optionally combined with a linear underlying holding.
// The function is piecewise linear with kinks at the leg strikes.
type Payoff struct {
	Legs []domain.OptionLeg

	// UnderlyingQuantity and UnderlyingEntry describe a spot or
	// perpetual holding carried alongside the legs, e.g. the shares
	// protected by a protective put. Zero quantity means pure options.
	UnderlyingQuantity float64
	UnderlyingEntry    float64
}

// NetPremium is the total premium paid for the structure. Positive
// means a net debit, negative a net credit.
func (p *Payoff) NetPremium() float64 {
	var total float64
	for _, leg := range p.Legs {
		total += leg.Quantity * leg.EntryPrice
	}
	return total
}

// Evaluate returns the profit and loss of the structure if the
// underlying settles at the given price.
func (p *Payoff) Evaluate(price float64) float64 {
	pnl := -p.NetPremium()
	for _, leg := range p.Legs {
		pnl += leg.Quantity * intrinsic(leg.Kind, leg.Strike, price)
	}
	if p.UnderlyingQuantity != 0 {
		pnl += p.UnderlyingQuantity * (price - p.UnderlyingEntry)
	}
	return pnl
}

// MaxProfit returns the highest achievable expiry profit. Structures
// with unbounded upside return +Inf.
func (p *Payoff) MaxProfit() float64 {
	if p.rightSlope() > 0 {
		return math.Inf(1)
	}
	best := math.Inf(-1)
	for _, price := range p.evaluationPoints() {
		if v := p.Evaluate(price); v > best {
			best = v
		}
	}
	return best
}

// MaxLoss returns the lowest achievable expiry profit, expressed as a
// negative number for a losing outcome. Structures that lose without
// bound as the underlying rises return -Inf.
func (p *Payoff) MaxLoss() float64 {
	if p.rightSlope() < 0 {
		return math.Inf(-1)
	}
	worst := math.Inf(1)
	for _, price := range p.evaluationPoints() {
		if v := p.Evaluate(price); v < worst {
			worst = v
		}
	}
	return worst
}

// Breakevens returns the underlying prices at which the structure
// settles exactly flat, sorted ascending. Kinks sitting exactly at
// zero count as breakevens.
func (p *Payoff) Breakevens() []float64 {
	kinks := p.kinks()
	if len(kinks) == 0 {
		return nil
	}

	var out []float64
	add := func(x float64) {
		if x <= 0 {
			return
		}
		for _, seen := range out {
			if math.Abs(seen-x) < 1e-9 {
				return
			}
		}
		out = append(out, x)
	}

	// Left tail down to zero.
	first := kinks[0]
	if vf := p.Evaluate(first); vf == 0 {
		add(first)
	} else if v0 := p.Evaluate(0); v0 == 0 {
		add(0)
	} else if (v0 < 0) != (vf < 0) {
		add(crossing(0, v0, first, vf))
	}

	// Between consecutive kinks.
	for i := 0; i < len(kinks)-1; i++ {
		a, b := kinks[i], kinks[i+1]
		va, vb := p.Evaluate(a), p.Evaluate(b)
		if vb == 0 {
			add(b)
			continue
		}
		if va != 0 && (va < 0) != (vb < 0) {
			add(crossing(a, va, b, vb))
		}
	}

	// Right tail.
	last := kinks[len(kinks)-1]
	vl := p.Evaluate(last)
	slope := p.rightSlope()
	if slope != 0 && vl != 0 {
		x := last - vl/slope
		if x > last {
			add(x)
		}
	}

	sort.Float64s(out)
	return out
}

func (p *Payoff) kinks() []float64 {
	var ks []float64
	for _, leg := range p.Legs {
		ks = append(ks, leg.Strike)
	}
	sort.Float64s(ks)
	uniq := ks[:0]
	for i, k := range ks {
		if i == 0 || k != uniq[len(uniq)-1] {
			uniq = append(uniq, k)
		}
	}
	return uniq
}

func (p *Payoff) evaluationPoints() []float64 {
	points := []float64{0}
	points = append(points, p.kinks()...)
	return points
}

// rightSlope is the payoff slope above the highest strike: the sum of
// call leg quantities plus the underlying quantity.
func (p *Payoff) rightSlope() float64 {
	slope := p.UnderlyingQuantity
	for _, leg := range p.Legs {
		if leg.Kind == domain.Call {
			slope += leg.Quantity
		}
	}
	return slope
}

func intrinsic(kind domain.OptionKind, strike, price float64) float64 {
	if kind == domain.Call {
		return math.Max(0, price-strike)
	}
	return math.Max(0, strike-price)
}

func crossing(a, va, b, vb float64) float64 {
	return a + (b-a)*(-va)/(vb-va)
}
