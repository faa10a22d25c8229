package strategy

import (
	"quanthedge/internal/domain"
)

// ProtectivePut buys a put against an existing long holding. Auto mode
// picks the strike closest to the current spot price.
func (b *Builder) ProtectivePut(chain []domain.OptionQuote, spot, holdingQty, holdingEntry float64, params Params) (*Result, error) {
	puts := quotesFor(chain, params.Expiry, domain.Put)

	var quote domain.OptionQuote
	var err error
	switch params.Mode {
	case Manual:
		strikes, serr := manualStrikes(params, 1)
		if serr != nil {
			return nil, serr
		}
		quote, err = exactStrike(puts, strikes[0])
	default:
		quote, err = nearestStrike(puts, spot)
	}
	if err != nil {
		return nil, err
	}

	leg := buildLeg(quote, params.quantity(), spot, b.rate, b.now())
	return b.result(domain.ProtectivePut, []domain.OptionLeg{leg}, holdingQty, holdingEntry), nil
}

// CoveredCall sells a call against an existing long holding. Auto mode
// sells the first strike more than 5% above spot.
func (b *Builder) CoveredCall(chain []domain.OptionQuote, spot, holdingQty, holdingEntry float64, params Params) (*Result, error) {
	calls := quotesFor(chain, params.Expiry, domain.Call)

	var quote domain.OptionQuote
	var err error
	switch params.Mode {
	case Manual:
		strikes, serr := manualStrikes(params, 1)
		if serr != nil {
			return nil, serr
		}
		quote, err = exactStrike(calls, strikes[0])
	default:
		quote, err = firstStrikeAbove(calls, spot*1.05)
	}
	if err != nil {
		return nil, err
	}

	leg := buildLeg(quote, -params.quantity(), spot, b.rate, b.now())
	return b.result(domain.CoveredCall, []domain.OptionLeg{leg}, holdingQty, holdingEntry), nil
}

// Collar combines a protective put with a covered call, capping both
// tails around an existing long holding. Auto mode buys the put
// nearest 95% of spot and sells the first call strike more than 10%
// above spot.
func (b *Builder) Collar(chain []domain.OptionQuote, spot, holdingQty, holdingEntry float64, params Params) (*Result, error) {
	puts := quotesFor(chain, params.Expiry, domain.Put)
	calls := quotesFor(chain, params.Expiry, domain.Call)

	var putQuote, callQuote domain.OptionQuote
	var err error
	switch params.Mode {
	case Manual:
		strikes, serr := manualStrikes(params, 2)
		if serr != nil {
			return nil, serr
		}
		if putQuote, err = exactStrike(puts, strikes[0]); err != nil {
			return nil, err
		}
		if callQuote, err = exactStrike(calls, strikes[1]); err != nil {
			return nil, err
		}
	default:
		if putQuote, err = nearestStrike(puts, spot*0.95); err != nil {
			return nil, err
		}
		if callQuote, err = firstStrikeAbove(calls, spot*1.10); err != nil {
			return nil, err
		}
	}

	qty := params.quantity()
	legs := []domain.OptionLeg{
		buildLeg(putQuote, qty, spot, b.rate, b.now()),
		buildLeg(callQuote, -qty, spot, b.rate, b.now()),
	}
	return b.result(domain.Collar, legs, holdingQty, holdingEntry), nil
}
