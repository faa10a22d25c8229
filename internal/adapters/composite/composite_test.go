package composite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quanthedge/internal/domain"
)

type fakeProvider struct {
	price float64
	chain []domain.OptionQuote

	priceCalls int
	chainCalls int
}

func (f *fakeProvider) GetPrice(_ context.Context, _ string) (float64, error) {
	f.priceCalls++
	return f.price, nil
}

func (f *fakeProvider) GetOptionChain(_ context.Context, _, _ string) ([]domain.OptionQuote, error) {
	f.chainCalls++
	return f.chain, nil
}

func TestRoutesByConcern(t *testing.T) {
	spot := &fakeProvider{price: 42000}
	options := &fakeProvider{chain: []domain.OptionQuote{{Symbol: "BTC-26DEC25-100000-C"}}}

	m, err := New(spot, options)
	require.NoError(t, err)

	price, err := m.GetPrice(context.Background(), "BTCUSDT")
	require.NoError(t, err)
	assert.Equal(t, 42000.0, price)

	chain, err := m.GetOptionChain(context.Background(), "BTCUSDT", "")
	require.NoError(t, err)
	require.Len(t, chain, 1)

	// Each venue only sees its own concern.
	assert.Equal(t, 1, spot.priceCalls)
	assert.Equal(t, 0, spot.chainCalls)
	assert.Equal(t, 0, options.priceCalls)
	assert.Equal(t, 1, options.chainCalls)
}

func TestNewRequiresBothProviders(t *testing.T) {
	p := &fakeProvider{}

	_, err := New(nil, p)
	assert.Error(t, err)

	_, err = New(p, nil)
	assert.Error(t, err)
}
