package strategy

import (
	"fmt"
	"math"

	"quanthedge/internal/domain"
	"quanthedge/internal/ports"
)

// PerpHedge is a linear hedge in the perpetual future: the quantity
// that flattens the portfolio delta at the current price.
type PerpHedge struct {
	Symbol   string
	Quantity float64
	Price    float64
}

// PerpetualDeltaNeutral sizes a perpetual position that offsets the
// given portfolio delta. A long book gets a short hedge and vice
// versa. A delta already inside the dead band yields a zero quantity.
func (b *Builder) PerpetualDeltaNeutral(symbol string, portfolioDelta, price float64) PerpHedge {
	qty := -portfolioDelta
	if math.Abs(qty) < 1e-9 {
		qty = 0
	}
	return PerpHedge{Symbol: symbol, Quantity: qty, Price: price}
}

// DynamicHedgeParams bounds the single-option hedge search.
type DynamicHedgeParams struct {
	// TargetDelta is the portfolio delta to steer toward. Zero means
	// fully neutral.
	TargetDelta float64
	// MaxCost caps the premium outlay. Zero or negative disables the
	// cap.
	MaxCost float64
	// Expiry restricts the scan to one expiry. Empty scans the whole
	// chain.
	Expiry string
}

// DynamicHedge scans the chain for the single option position that
// best moves the portfolio delta toward the target within the cost
// cap. Candidates are ranked by how much of the delta gap they close,
// cheapest first on ties. Long puts hedge a long book, long calls a
// short book.
func (b *Builder) DynamicHedge(chain []domain.OptionQuote, spot, portfolioDelta float64, params DynamicHedgeParams) (*Result, error) {
	gap := params.TargetDelta - portfolioDelta
	if math.Abs(gap) < 1e-9 {
		return nil, fmt.Errorf("%w: portfolio already at target delta", ports.ErrSelection)
	}

	wantKind := domain.Put
	if gap > 0 {
		wantKind = domain.Call
	}

	var (
		best      domain.OptionLeg
		bestScore = -1.0
		bestCost  = math.Inf(1)
		found     bool
	)
	for _, q := range chain {
		if q.Kind != wantKind {
			continue
		}
		if params.Expiry != "" && q.Expiry != params.Expiry {
			continue
		}
		leg := buildLeg(q, 1, spot, b.rate, b.now())
		if math.Abs(leg.Delta) < 1e-6 {
			continue
		}

		qty := gap / leg.Delta
		if qty <= 0 {
			continue
		}
		cost := qty * leg.EntryPrice
		if params.MaxCost > 0 && cost > params.MaxCost {
			// Scale the position down to the cap and score what it
			// still closes.
			qty = params.MaxCost / leg.EntryPrice
			cost = params.MaxCost
		}

		closed := math.Abs(qty*leg.Delta) / math.Abs(gap)
		if closed > 1 {
			closed = 1
		}
		if closed > bestScore+1e-9 || (math.Abs(closed-bestScore) <= 1e-9 && cost < bestCost) {
			leg.Quantity = qty
			best, bestScore, bestCost, found = leg, closed, cost, true
		}
	}
	if !found {
		return nil, fmt.Errorf("%w: no option in chain can hedge delta %.4f", ports.ErrSelection, portfolioDelta)
	}

	return b.result(domain.DynamicHedge, []domain.OptionLeg{best}, 0, 0), nil
}
