package domain

// OptionQuote is one tradable instrument in an option-chain snapshot.
type OptionQuote struct {
	Symbol       string     // Instrument symbol (e.g., "BTC-26DEC25-110000-P")
	Underlying   string     // Underlying symbol
	Strike       float64    // Strike price
	Expiry       string     // Expiry label
	Kind         OptionKind // Call or put
	Bid          float64    // Best bid (0 if none)
	Ask          float64    // Best ask (0 if none)
	ImpliedVol   float64    // Implied volatility (annualized fraction)
	OpenInterest float64    // Open interest in contracts
}

// MidPrice returns the bid/ask midpoint, or 0 when there is no two-sided quote.
func (q *OptionQuote) MidPrice() float64 {
	if q.Bid <= 0 || q.Ask <= 0 {
		return 0
	}
	return (q.Bid + q.Ask) / 2
}

// SpreadFraction returns the bid-ask spread as a fraction of the mid price,
// or 0 when there is no two-sided quote.
func (q *OptionQuote) SpreadFraction() float64 {
	mid := q.MidPrice()
	if mid <= 0 {
		return 0
	}
	return (q.Ask - q.Bid) / mid
}

// OptionLeg is one leg of a multi-leg option strategy. Quantity is signed:
// positive for long, negative for short. Greeks default to zero until the
// builder computes them from the chain's implied volatility.
type OptionLeg struct {
	Symbol     string     // Instrument symbol
	Quantity   float64    // Signed contract count
	Strike     float64    // Strike price
	Expiry     string     // Expiry label
	Kind       OptionKind // Call or put
	EntryPrice float64    // Premium per contract used for the leg
	Delta      float64
	Gamma      float64
	Theta      float64
	Vega       float64
	// PriceIsFallback marks legs whose entry price was estimated because the
	// chain had no usable quote. Estimates are never substituted silently.
	PriceIsFallback bool
}
