package pricing

import (
	"fmt"
	"math"
	"strings"
	"time"

	"quanthedge/internal/domain"
	"quanthedge/internal/ports"
)

// Quote holds the theoretical price and Greeks of a single option contract.
// Conventions follow the chain data we consume: theta is per calendar day,
// vega is per one percentage point of volatility.
type Quote struct {
	Price float64
	Delta float64
	Gamma float64
	Theta float64
	Vega  float64
}

// PriceAndGreeks prices a European option with the Black-Scholes closed form.
//
// Inputs: spot > 0, strike > 0, tYears >= 0, vol >= 0. Violations are
// rejected with ErrValidation before any computation. tYears == 0 or
// vol == 0 degenerates to intrinsic value with delta in {0, +1, -1}; the
// d1/d2 terms are never evaluated in that case.
//
// Put values are derived from the call computation via put-call parity
// rather than a second formula, so parity holds exactly:
//
//	call - put = spot - strike*e^(-rate*tYears)
func PriceAndGreeks(spot, strike, tYears, rate, vol float64, kind domain.OptionKind) (Quote, error) {
	if spot <= 0 {
		return Quote{}, fmt.Errorf("%w: spot must be positive, got %f", ports.ErrValidation, spot)
	}
	if strike <= 0 {
		return Quote{}, fmt.Errorf("%w: strike must be positive, got %f", ports.ErrValidation, strike)
	}
	if tYears < 0 {
		return Quote{}, fmt.Errorf("%w: time to expiry cannot be negative, got %f", ports.ErrValidation, tYears)
	}
	if vol < 0 {
		return Quote{}, fmt.Errorf("%w: volatility cannot be negative, got %f", ports.ErrValidation, vol)
	}
	if kind != domain.Call && kind != domain.Put {
		return Quote{}, fmt.Errorf("%w: unknown option kind %q", ports.ErrValidation, kind)
	}

	if tYears == 0 || vol == 0 {
		return intrinsicQuote(spot, strike, kind), nil
	}

	sqrtT := math.Sqrt(tYears)
	d1 := (math.Log(spot/strike) + (rate+0.5*vol*vol)*tYears) / (vol * sqrtT)
	d2 := d1 - vol*sqrtT
	discK := strike * math.Exp(-rate*tYears)

	callPrice := spot*normCDF(d1) - discK*normCDF(d2)
	callDelta := normCDF(d1)
	gamma := normPDF(d1) / (spot * vol * sqrtT)
	// Annualized theta, converted to per-day below.
	callThetaYear := -spot*normPDF(d1)*vol/(2*sqrtT) - rate*discK*normCDF(d2)
	vega := spot * sqrtT * normPDF(d1) / 100 // per 1% vol change

	q := Quote{
		Price: callPrice,
		Delta: callDelta,
		Gamma: gamma,
		Theta: callThetaYear / 365,
		Vega:  vega,
	}
	if kind == domain.Put {
		q.Price = callPrice - spot + discK
		q.Delta = callDelta - 1
		q.Theta = (callThetaYear + rate*discK) / 365
	}
	return q, nil
}

// intrinsicQuote is the zero-time / zero-vol degenerate case.
func intrinsicQuote(spot, strike float64, kind domain.OptionKind) Quote {
	if kind == domain.Call {
		q := Quote{Price: math.Max(spot-strike, 0)}
		if spot > strike {
			q.Delta = 1
		}
		return q
	}
	q := Quote{Price: math.Max(strike-spot, 0)}
	if spot < strike {
		q.Delta = -1
	}
	return q
}

// normCDF is the standard normal cumulative distribution function.
func normCDF(x float64) float64 {
	return 0.5 * (1 + math.Erf(x/math.Sqrt2))
}

// normPDF is the standard normal probability density function.
func normPDF(x float64) float64 {
	return math.Exp(-0.5*x*x) / math.Sqrt(2*math.Pi)
}

// TimeToExpiry converts a Deribit-style expiry label (e.g., "26DEC25") into
// years from now. Labels already in the past yield 0.
func TimeToExpiry(expiry string, now time.Time) (float64, error) {
	label := strings.ToUpper(strings.TrimSpace(expiry))
	if len(label) < 6 {
		return 0, fmt.Errorf("%w: malformed expiry label %q", ports.ErrValidation, expiry)
	}
	// time.Parse wants month names in title case ("26Dec25").
	day, month, year := label[:len(label)-5], label[len(label)-5:len(label)-2], label[len(label)-2:]
	t, err := time.Parse("2Jan06", day+month[:1]+strings.ToLower(month[1:])+year)
	if err != nil {
		return 0, fmt.Errorf("%w: cannot parse expiry label %q: %v", ports.ErrValidation, expiry, err)
	}
	// Deribit options expire at 08:00 UTC.
	expAt := time.Date(t.Year(), t.Month(), t.Day(), 8, 0, 0, 0, time.UTC)
	years := expAt.Sub(now).Hours() / 24 / 365
	if years < 0 {
		return 0, nil
	}
	return years, nil
}
