package pricing

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quanthedge/internal/domain"
	"quanthedge/internal/ports"
)

func TestPriceAndGreeks_PutCallParity(t *testing.T) {
	cases := []struct {
		name                         string
		spot, strike, tYears, r, vol float64
	}{
		{"ATM one year", 100, 100, 1.0, 0.05, 0.2},
		{"OTM call short dated", 50000, 60000, 0.1, 0.05, 0.8},
		{"ITM call high vol", 108000, 90000, 0.5, 0.03, 1.2},
		{"deep OTM put", 100, 20, 2.0, 0.01, 0.4},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			call, err := PriceAndGreeks(tc.spot, tc.strike, tc.tYears, tc.r, tc.vol, domain.Call)
			require.NoError(t, err)
			put, err := PriceAndGreeks(tc.spot, tc.strike, tc.tYears, tc.r, tc.vol, domain.Put)
			require.NoError(t, err)

			parity := tc.spot - tc.strike*math.Exp(-tc.r*tc.tYears)
			assert.InDelta(t, parity, call.Price-put.Price, 1e-9)
			assert.InDelta(t, call.Delta-1, put.Delta, 1e-12)
			assert.InDelta(t, call.Gamma, put.Gamma, 1e-12)
			assert.InDelta(t, call.Vega, put.Vega, 1e-12)
		})
	}
}

func TestPriceAndGreeks_KnownValue(t *testing.T) {
	// Textbook case: S=100 K=100 T=1 r=5% vol=20% -> call ~10.4506.
	call, err := PriceAndGreeks(100, 100, 1, 0.05, 0.2, domain.Call)
	require.NoError(t, err)
	assert.InDelta(t, 10.4506, call.Price, 1e-3)
	assert.InDelta(t, 0.6368, call.Delta, 1e-3)
	assert.Greater(t, call.Gamma, 0.0)
	assert.Less(t, call.Theta, 0.0)
	assert.Greater(t, call.Vega, 0.0)
}

func TestPriceAndGreeks_Degenerate(t *testing.T) {
	// Zero time: intrinsic value, delta in {0, +1, -1}, no division by zero.
	itmCall, err := PriceAndGreeks(120, 100, 0, 0.05, 0.3, domain.Call)
	require.NoError(t, err)
	assert.Equal(t, 20.0, itmCall.Price)
	assert.Equal(t, 1.0, itmCall.Delta)
	assert.Equal(t, 0.0, itmCall.Gamma)

	otmCall, err := PriceAndGreeks(80, 100, 0, 0.05, 0.3, domain.Call)
	require.NoError(t, err)
	assert.Equal(t, 0.0, otmCall.Price)
	assert.Equal(t, 0.0, otmCall.Delta)

	itmPut, err := PriceAndGreeks(80, 100, 0.5, 0.05, 0, domain.Put)
	require.NoError(t, err)
	assert.Equal(t, 20.0, itmPut.Price)
	assert.Equal(t, -1.0, itmPut.Delta)
	assert.Equal(t, 0.0, itmPut.Vega)
}

func TestPriceAndGreeks_Validation(t *testing.T) {
	cases := []struct {
		name                         string
		spot, strike, tYears, r, vol float64
		kind                         domain.OptionKind
	}{
		{"zero spot", 0, 100, 1, 0.05, 0.2, domain.Call},
		{"negative strike", 100, -5, 1, 0.05, 0.2, domain.Call},
		{"negative time", 100, 100, -0.1, 0.05, 0.2, domain.Put},
		{"negative vol", 100, 100, 1, 0.05, -0.2, domain.Put},
		{"bad kind", 100, 100, 1, 0.05, 0.2, domain.OptionKind("straddle")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := PriceAndGreeks(tc.spot, tc.strike, tc.tYears, tc.r, tc.vol, tc.kind)
			assert.ErrorIs(t, err, ports.ErrValidation)
		})
	}
}

func TestImpliedVolatility_RoundTrip(t *testing.T) {
	const trueVol = 0.65
	q, err := PriceAndGreeks(50000, 55000, 0.25, 0.05, trueVol, domain.Call)
	require.NoError(t, err)

	iv, err := ImpliedVolatility(q.Price, 50000, 55000, 0.25, 0.05, domain.Call)
	require.NoError(t, err)
	assert.InDelta(t, trueVol, iv, 1e-4)
}

func TestImpliedVolatility_ZeroTime(t *testing.T) {
	iv, err := ImpliedVolatility(20, 120, 100, 0, 0.05, domain.Call)
	require.NoError(t, err)
	assert.Equal(t, 0.0, iv)
}

func TestTimeToExpiry(t *testing.T) {
	now := time.Date(2025, 6, 26, 8, 0, 0, 0, time.UTC)

	half, err := TimeToExpiry("26DEC25", now)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, half, 0.01)

	past, err := TimeToExpiry("26DEC24", now)
	require.NoError(t, err)
	assert.Equal(t, 0.0, past)

	_, err = TimeToExpiry("", now)
	assert.ErrorIs(t, err, ports.ErrValidation)
}
