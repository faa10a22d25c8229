package pricing

import (
	"fmt"
	"math"

	"quanthedge/internal/domain"
	"quanthedge/internal/ports"
)

const (
	ivMaxIterations = 100
	ivFloor         = 0.01
	ivCeiling       = 5.0
	ivTolerance     = 1e-6
)

// ImpliedVolatility inverts Black-Scholes for the volatility that reproduces
// the observed market price, using Newton-Raphson on vega. The result is
// clamped to [0.01, 5.0] and the search is bounded at 100 iterations, so the
// call always terminates. tYears == 0 has no implied volatility and returns 0.
func ImpliedVolatility(marketPrice, spot, strike, tYears, rate float64, kind domain.OptionKind) (float64, error) {
	if marketPrice < 0 {
		return 0, fmt.Errorf("%w: market price cannot be negative, got %f", ports.ErrValidation, marketPrice)
	}
	if tYears == 0 {
		return 0, nil
	}

	sigma := 0.5
	for i := 0; i < ivMaxIterations; i++ {
		q, err := PriceAndGreeks(spot, strike, tYears, rate, sigma, kind)
		if err != nil {
			return 0, err
		}
		vega := q.Vega * 100 // back to per unit vol
		if math.Abs(vega) < 1e-10 {
			break
		}
		next := sigma + (marketPrice-q.Price)/vega
		next = math.Max(ivFloor, math.Min(ivCeiling, next))
		if math.Abs(next-sigma) < ivTolerance {
			return next, nil
		}
		sigma = next
	}
	return sigma, nil
}
