package strategy

import (
	"fmt"
	"math"
	"sort"
	"time"

	"quanthedge/internal/domain"
	"quanthedge/internal/ports"
	"quanthedge/internal/pricing"
)

// Mode controls how builders choose strikes from the option chain.
type Mode string

const (
	// Auto lets the builder pick strikes with its own heuristics.
	Auto Mode = "auto"
	// Manual uses the strikes supplied in Params, validated against
	// the chain.
	Manual Mode = "manual"
)

// Params carries the caller's choices for a strategy build.
type Params struct {
	Mode     Mode
	Expiry   string
	Strikes  []float64
	Quantity float64
}

func (p Params) quantity() float64 {
	if p.Quantity <= 0 {
		return 1
	}
	return p.Quantity
}

// fallbackPriceFraction is applied to the strike when a quote carries
// no bid or ask. Legs priced this way are flagged so downstream cost
// estimates can be treated with suspicion.
const fallbackPriceFraction = 0.05

// quotesFor filters the chain to one expiry and option kind, sorted by
// strike ascending.
func quotesFor(chain []domain.OptionQuote, expiry string, kind domain.OptionKind) []domain.OptionQuote {
	var out []domain.OptionQuote
	for _, q := range chain {
		if q.Expiry == expiry && q.Kind == kind {
			out = append(out, q)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Strike < out[j].Strike })
	return out
}

// nearestStrike returns the quote whose strike is closest to target in
// absolute distance. Lower strike wins a tie.
func nearestStrike(quotes []domain.OptionQuote, target float64) (domain.OptionQuote, error) {
	if len(quotes) == 0 {
		return domain.OptionQuote{}, fmt.Errorf("%w: no quotes to choose from", ports.ErrSelection)
	}
	best := quotes[0]
	bestDist := math.Abs(best.Strike - target)
	for _, q := range quotes[1:] {
		if d := math.Abs(q.Strike - target); d < bestDist {
			best, bestDist = q, d
		}
	}
	return best, nil
}

// firstStrikeAbove returns the lowest-strike quote strictly above the
// floor price.
func firstStrikeAbove(quotes []domain.OptionQuote, floor float64) (domain.OptionQuote, error) {
	for _, q := range quotes {
		if q.Strike > floor {
			return q, nil
		}
	}
	return domain.OptionQuote{}, fmt.Errorf("%w: no strike above %.2f", ports.ErrSelection, floor)
}

// exactStrike returns the quote at the requested strike, or an error
// when the chain does not list it.
func exactStrike(quotes []domain.OptionQuote, strike float64) (domain.OptionQuote, error) {
	for _, q := range quotes {
		if math.Abs(q.Strike-strike) < 1e-9 {
			return q, nil
		}
	}
	return domain.OptionQuote{}, fmt.Errorf("%w: strike %.2f not listed", ports.ErrSelection, strike)
}

// buildLeg turns a quote into a position-ready leg: it prices the leg
// off the quoted mid (falling back to a fraction of the strike when
// the book is empty) and attaches Black-Scholes greeks at the quote's
// implied volatility.
func buildLeg(q domain.OptionQuote, quantity, spot, rate float64, now time.Time) domain.OptionLeg {
	leg := domain.OptionLeg{
		Symbol:   q.Symbol,
		Quantity: quantity,
		Strike:   q.Strike,
		Expiry:   q.Expiry,
		Kind:     q.Kind,
	}

	leg.EntryPrice = q.MidPrice()
	if leg.EntryPrice <= 0 {
		leg.EntryPrice = q.Strike * fallbackPriceFraction
		leg.PriceIsFallback = true
	}

	tYears, err := pricing.TimeToExpiry(q.Expiry, now)
	if err != nil {
		return leg
	}

	vol := q.ImpliedVol
	if vol <= 0 && !leg.PriceIsFallback {
		if solved, ivErr := pricing.ImpliedVolatility(leg.EntryPrice, spot, q.Strike, tYears, rate, q.Kind); ivErr == nil {
			vol = solved
		}
	}

	quote, err := pricing.PriceAndGreeks(spot, q.Strike, tYears, rate, vol, q.Kind)
	if err != nil {
		return leg
	}
	leg.Delta = quote.Delta
	leg.Gamma = quote.Gamma
	leg.Theta = quote.Theta
	leg.Vega = quote.Vega
	return leg
}

// manualStrikes validates that the caller supplied exactly want
// strikes in strictly increasing order.
func manualStrikes(p Params, want int) ([]float64, error) {
	if len(p.Strikes) != want {
		return nil, fmt.Errorf("%w: need %d strikes, got %d", ports.ErrConfig, want, len(p.Strikes))
	}
	for i := 1; i < len(p.Strikes); i++ {
		if p.Strikes[i] <= p.Strikes[i-1] {
			return nil, fmt.Errorf("%w: strikes must be strictly increasing", ports.ErrConfig)
		}
	}
	return p.Strikes, nil
}
