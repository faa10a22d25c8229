package domain

import (
	"math"
	"time"
)

// OptionInfo holds the option metadata attached to option positions and quotes.
type OptionInfo struct {
	Strike float64    // Strike price
	Expiry string     // Expiry label (e.g., "26DEC25")
	Kind   OptionKind // Call or put
}

// Position represents one held instrument in the portfolio.
// Quantity is signed: positive for long, negative for short. A position with
// zero quantity is never retained; the ledger removes it instead.
type Position struct {
	Symbol     string         // Instrument symbol (e.g., "BTC-USDT")
	Quantity   float64        // Signed size of the position
	EntryPrice float64        // Quantity-weighted average entry price
	Kind       InstrumentKind // spot, perpetual or option
	Venue      string         // Exchange the position is held on
	Option     *OptionInfo    // Option metadata, nil unless Kind == Option
	OpenedAt   time.Time      // Timestamp when the position was opened
}

// IsLong reports whether the position is long.
func (p *Position) IsLong() bool {
	return p.Quantity > 0
}

// IsShort reports whether the position is short.
func (p *Position) IsShort() bool {
	return p.Quantity < 0
}

// Notional returns the economic size of the position at the given mark price.
func (p *Position) Notional(markPrice float64) float64 {
	return math.Abs(p.Quantity * markPrice)
}

// UnrealizedPnL returns the sign-aware open profit at the given mark price.
func (p *Position) UnrealizedPnL(markPrice float64) float64 {
	return (markPrice - p.EntryPrice) * p.Quantity
}
