package strategy

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"quanthedge/internal/domain"
)

func TestPayoffLongCall(t *testing.T) {
	p := &Payoff{Legs: []domain.OptionLeg{
		{Quantity: 1, Strike: 100, Kind: domain.Call, EntryPrice: 5},
	}}

	assert.InDelta(t, -5.0, p.Evaluate(90), 1e-9)
	assert.InDelta(t, -5.0, p.Evaluate(100), 1e-9)
	assert.InDelta(t, 5.0, p.Evaluate(110), 1e-9)

	assert.True(t, math.IsInf(p.MaxProfit(), 1))
	assert.InDelta(t, -5.0, p.MaxLoss(), 1e-9)
	assert.Equal(t, []float64{105}, p.Breakevens())
}

func TestPayoffShortCallUnboundedLoss(t *testing.T) {
	p := &Payoff{Legs: []domain.OptionLeg{
		{Quantity: -1, Strike: 100, Kind: domain.Call, EntryPrice: 5},
	}}

	assert.InDelta(t, 5.0, p.MaxProfit(), 1e-9)
	assert.True(t, math.IsInf(p.MaxLoss(), -1))
}

func TestPayoffStraddleBreakevens(t *testing.T) {
	p := &Payoff{Legs: []domain.OptionLeg{
		{Quantity: 1, Strike: 100, Kind: domain.Call, EntryPrice: 4},
		{Quantity: 1, Strike: 100, Kind: domain.Put, EntryPrice: 3},
	}}

	bes := p.Breakevens()
	assert.Len(t, bes, 2)
	assert.InDelta(t, 93.0, bes[0], 1e-9)
	assert.InDelta(t, 107.0, bes[1], 1e-9)
	assert.InDelta(t, -7.0, p.MaxLoss(), 1e-9)
	assert.True(t, math.IsInf(p.MaxProfit(), 1))
}

func TestPayoffButterflyBounded(t *testing.T) {
	// 1:-2:1 call butterfly 90/100/110 for a 2.0 net debit.
	p := &Payoff{Legs: []domain.OptionLeg{
		{Quantity: 1, Strike: 90, Kind: domain.Call, EntryPrice: 13},
		{Quantity: -2, Strike: 100, Kind: domain.Call, EntryPrice: 6},
		{Quantity: 1, Strike: 110, Kind: domain.Call, EntryPrice: 1},
	}}

	assert.InDelta(t, 2.0, p.NetPremium(), 1e-9)
	assert.InDelta(t, 8.0, p.MaxProfit(), 1e-9)
	assert.InDelta(t, -2.0, p.MaxLoss(), 1e-9)
	assert.InDelta(t, 8.0, p.Evaluate(100), 1e-9)
	assert.InDelta(t, -2.0, p.Evaluate(80), 1e-9)
	assert.InDelta(t, -2.0, p.Evaluate(130), 1e-9)

	bes := p.Breakevens()
	assert.Len(t, bes, 2)
	assert.InDelta(t, 92.0, bes[0], 1e-9)
	assert.InDelta(t, 108.0, bes[1], 1e-9)
}

func TestPayoffCoveredCallCapsUpside(t *testing.T) {
	p := &Payoff{
		Legs: []domain.OptionLeg{
			{Quantity: -1, Strike: 110, Kind: domain.Call, EntryPrice: 3},
		},
		UnderlyingQuantity: 1,
		UnderlyingEntry:    100,
	}

	// Above the strike the short call freezes the gain.
	assert.InDelta(t, 13.0, p.Evaluate(110), 1e-9)
	assert.InDelta(t, 13.0, p.Evaluate(150), 1e-9)
	assert.InDelta(t, 13.0, p.MaxProfit(), 1e-9)

	// Downside is the holding minus the premium cushion.
	assert.InDelta(t, -97.0, p.MaxLoss(), 1e-9)
	assert.Equal(t, []float64{97}, p.Breakevens())
}

func TestPayoffProtectivePutFloorsDownside(t *testing.T) {
	p := &Payoff{
		Legs: []domain.OptionLeg{
			{Quantity: 1, Strike: 95, Kind: domain.Put, EntryPrice: 2},
		},
		UnderlyingQuantity: 1,
		UnderlyingEntry:    100,
	}

	assert.InDelta(t, -7.0, p.Evaluate(50), 1e-9)
	assert.InDelta(t, -7.0, p.MaxLoss(), 1e-9)
	assert.True(t, math.IsInf(p.MaxProfit(), 1))
	assert.Equal(t, []float64{102}, p.Breakevens())
}

func TestPayoffNoLegs(t *testing.T) {
	p := &Payoff{}
	assert.Nil(t, p.Breakevens())
	assert.InDelta(t, 0, p.Evaluate(123), 1e-9)
}
