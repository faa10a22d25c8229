package strategy

import (
	"fmt"

	"quanthedge/internal/domain"
	"quanthedge/internal/ports"
)

// Straddle buys a call and a put at the same strike, profiting from a
// large move in either direction. Auto mode straddles the strike
// closest to spot.
func (b *Builder) Straddle(chain []domain.OptionQuote, spot float64, params Params) (*Result, error) {
	calls := quotesFor(chain, params.Expiry, domain.Call)
	puts := quotesFor(chain, params.Expiry, domain.Put)

	var strike float64
	switch params.Mode {
	case Manual:
		strikes, err := manualStrikes(params, 1)
		if err != nil {
			return nil, err
		}
		strike = strikes[0]
	default:
		atm, err := nearestStrike(calls, spot)
		if err != nil {
			return nil, err
		}
		strike = atm.Strike
	}

	callQuote, err := exactStrike(calls, strike)
	if err != nil {
		return nil, err
	}
	putQuote, err := exactStrike(puts, strike)
	if err != nil {
		return nil, err
	}

	qty := params.quantity()
	legs := []domain.OptionLeg{
		buildLeg(callQuote, qty, spot, b.rate, b.now()),
		buildLeg(putQuote, qty, spot, b.rate, b.now()),
	}
	return b.result(domain.Straddle, legs, 0, 0), nil
}

// Butterfly builds a 1:-2:1 spread in a single option kind across
// three strictly increasing strikes. Auto mode centers the body at the
// strike closest to spot with the adjacent listed strikes as wings.
func (b *Builder) Butterfly(chain []domain.OptionQuote, spot float64, kind domain.OptionKind, params Params) (*Result, error) {
	quotes := quotesFor(chain, params.Expiry, kind)

	var lower, body, upper domain.OptionQuote
	switch params.Mode {
	case Manual:
		strikes, err := manualStrikes(params, 3)
		if err != nil {
			return nil, err
		}
		if lower, err = exactStrike(quotes, strikes[0]); err != nil {
			return nil, err
		}
		if body, err = exactStrike(quotes, strikes[1]); err != nil {
			return nil, err
		}
		if upper, err = exactStrike(quotes, strikes[2]); err != nil {
			return nil, err
		}
	default:
		atm, err := nearestStrike(quotes, spot)
		if err != nil {
			return nil, err
		}
		idx := -1
		for i, q := range quotes {
			if q.Strike == atm.Strike {
				idx = i
				break
			}
		}
		if idx < 1 || idx >= len(quotes)-1 {
			return nil, fmt.Errorf("%w: chain too narrow for butterfly wings", ports.ErrSelection)
		}
		lower, body, upper = quotes[idx-1], quotes[idx], quotes[idx+1]
	}

	qty := params.quantity()
	legs := []domain.OptionLeg{
		buildLeg(lower, qty, spot, b.rate, b.now()),
		buildLeg(body, -2*qty, spot, b.rate, b.now()),
		buildLeg(upper, qty, spot, b.rate, b.now()),
	}
	return b.result(domain.Butterfly, legs, 0, 0), nil
}

// IronCondor sells a put spread below spot and a call spread above it:
// long put, short put, short call, long call across four strictly
// increasing strikes. Auto mode anchors the short put near 95% of spot
// and the short call near 105%, with wings one listed strike further
// out.
func (b *Builder) IronCondor(chain []domain.OptionQuote, spot float64, params Params) (*Result, error) {
	puts := quotesFor(chain, params.Expiry, domain.Put)
	calls := quotesFor(chain, params.Expiry, domain.Call)

	var longPut, shortPut, shortCall, longCall domain.OptionQuote
	switch params.Mode {
	case Manual:
		strikes, err := manualStrikes(params, 4)
		if err != nil {
			return nil, err
		}
		if longPut, err = exactStrike(puts, strikes[0]); err != nil {
			return nil, err
		}
		if shortPut, err = exactStrike(puts, strikes[1]); err != nil {
			return nil, err
		}
		if shortCall, err = exactStrike(calls, strikes[2]); err != nil {
			return nil, err
		}
		if longCall, err = exactStrike(calls, strikes[3]); err != nil {
			return nil, err
		}
	default:
		var err error
		if shortPut, err = nearestStrike(puts, spot*0.95); err != nil {
			return nil, err
		}
		if shortCall, err = firstStrikeAbove(calls, spot*1.05); err != nil {
			return nil, err
		}
		longPut, err = wingBelow(puts, shortPut.Strike)
		if err != nil {
			return nil, err
		}
		longCall, err = firstStrikeAbove(calls, shortCall.Strike)
		if err != nil {
			return nil, err
		}
		if !(longPut.Strike < shortPut.Strike && shortPut.Strike < shortCall.Strike && shortCall.Strike < longCall.Strike) {
			return nil, fmt.Errorf("%w: chain too narrow for condor wings", ports.ErrSelection)
		}
	}

	qty := params.quantity()
	legs := []domain.OptionLeg{
		buildLeg(longPut, qty, spot, b.rate, b.now()),
		buildLeg(shortPut, -qty, spot, b.rate, b.now()),
		buildLeg(shortCall, -qty, spot, b.rate, b.now()),
		buildLeg(longCall, qty, spot, b.rate, b.now()),
	}
	return b.result(domain.IronCondor, legs, 0, 0), nil
}

// wingBelow returns the highest strike strictly below the ceiling.
func wingBelow(quotes []domain.OptionQuote, ceiling float64) (domain.OptionQuote, error) {
	for i := len(quotes) - 1; i >= 0; i-- {
		if quotes[i].Strike < ceiling {
			return quotes[i], nil
		}
	}
	return domain.OptionQuote{}, fmt.Errorf("%w: no strike below %.2f", ports.ErrSelection, ceiling)
}
