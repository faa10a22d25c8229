package hedge

import (
	"math"
	"strings"

	"quanthedge/internal/domain"
)

// Taker fee fractions per venue and instrument, applied to traded
// notional. Unknown venues fall back to the most expensive row.
type venueFees struct {
	Spot      float64
	Perpetual float64
	Option    float64
}

var feeTable = map[string]venueFees{
	"okx":     {Spot: 0.0010, Perpetual: 0.0005, Option: 0.0005},
	"deribit": {Spot: 0.0010, Perpetual: 0.0005, Option: 0.0003},
}

var defaultFees = venueFees{Spot: 0.0015, Perpetual: 0.0010, Option: 0.0008}

// Slippage fractions assumed for a market order, by instrument.
var slippageTable = map[domain.InstrumentKind]float64{
	domain.Spot:      0.0005,
	domain.Perpetual: 0.0005,
	domain.Option:    0.0020,
}

// TakerFee returns the venue's taker fee fraction for an instrument.
func TakerFee(venue string, kind domain.InstrumentKind) float64 {
	fees, ok := feeTable[strings.ToLower(venue)]
	if !ok {
		fees = defaultFees
	}
	switch kind {
	case domain.Spot:
		return fees.Spot
	case domain.Perpetual:
		return fees.Perpetual
	default:
		return fees.Option
	}
}

// SlippageRate returns the assumed market-order slippage fraction.
func SlippageRate(kind domain.InstrumentKind) float64 {
	return slippageTable[kind]
}

// EstimateFillPrice adjusts a mid price for crossing the spread plus
// slippage. Buys fill above mid, sells below.
func EstimateFillPrice(mid float64, buying bool, spreadFraction, slippage float64) float64 {
	adj := spreadFraction/2 + slippage
	if buying {
		return mid * (1 + adj)
	}
	return mid * (1 - adj)
}

// Cost is the all-in estimate of putting a hedge on.
type Cost struct {
	// Premium is the net option premium, positive for a debit.
	Premium float64
	// Fees is the total venue taker fees.
	Fees float64
	// Slippage is the expected execution drag beyond the mid.
	Slippage float64
	// Notional is the gross traded notional used to normalize scores.
	Notional float64
}

// Total is the full cash drag of the hedge.
func (c Cost) Total() float64 {
	return c.Premium + c.Fees + c.Slippage
}

// EstimateLegs costs a set of option legs on one venue.
func EstimateLegs(legs []domain.OptionLeg, venue string) Cost {
	var c Cost
	fee := TakerFee(venue, domain.Option)
	slip := SlippageRate(domain.Option)
	for _, leg := range legs {
		notional := math.Abs(leg.Quantity) * leg.EntryPrice
		c.Premium += leg.Quantity * leg.EntryPrice
		c.Fees += notional * fee
		c.Slippage += notional * slip
		c.Notional += notional
	}
	return c
}

// EstimatePerp costs a perpetual hedge of the given size and price.
func EstimatePerp(quantity, price float64, venue string) Cost {
	notional := math.Abs(quantity) * price
	return Cost{
		Fees:     notional * TakerFee(venue, domain.Perpetual),
		Slippage: notional * SlippageRate(domain.Perpetual),
		Notional: notional,
	}
}
