package strategy

import (
	"time"

	"quanthedge/internal/domain"
)

// Result is a fully priced strategy proposal: the legs to trade and
// the expiry payoff profile of the combined structure.
type Result struct {
	Kind   domain.StrategyKind
	Legs   []domain.OptionLeg
	Payoff *Payoff
}

// Builder constructs option strategies from a quoted chain. It never
// places orders; callers decide what to do with the proposal.
type Builder struct {
	rate float64
	now  func() time.Time
}

// NewBuilder returns a Builder pricing greeks at the given risk-free
// rate.
func NewBuilder(rate float64) *Builder {
	return &Builder{rate: rate, now: time.Now}
}

func (b *Builder) result(kind domain.StrategyKind, legs []domain.OptionLeg, underlyingQty, underlyingEntry float64) *Result {
	return &Result{
		Kind: kind,
		Legs: legs,
		Payoff: &Payoff{
			Legs:               legs,
			UnderlyingQuantity: underlyingQty,
			UnderlyingEntry:    underlyingEntry,
		},
	}
}
