package hedge

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quanthedge/internal/adapters/logger"
	"quanthedge/internal/domain"
	"quanthedge/internal/ports"
	"quanthedge/internal/strategy"
)

func testLogger() ports.Logger {
	return logger.NewStdLogger(logger.LevelError)
}

func TestWeightsValidation(t *testing.T) {
	assert.NoError(t, DefaultWeights().Validate())
	assert.NoError(t, Weights{Effectiveness: 1}.Validate())

	err := Weights{Effectiveness: 0.5, Cost: 0.5, Liquidity: 0.5}.Validate()
	assert.ErrorIs(t, err, ports.ErrConfig)

	err = Weights{Effectiveness: 1.2, Cost: -0.2}.Validate()
	assert.ErrorIs(t, err, ports.ErrConfig)

	_, err = NewOptimizer(Weights{}, testLogger())
	assert.ErrorIs(t, err, ports.ErrConfig)
}

func TestEffectivenessClipping(t *testing.T) {
	assert.InDelta(t, 1.0, effectiveness(5, 0), 1e-9)
	assert.InDelta(t, 0.5, effectiveness(4, 2), 1e-9)
	assert.InDelta(t, 0.5, effectiveness(4, -2), 1e-9)
	// Overshooting the other way scores zero, not negative.
	assert.InDelta(t, 0.0, effectiveness(2, -5), 1e-9)
	assert.InDelta(t, 0.0, effectiveness(0, 0), 1e-9)
}

func TestScoreMonotonicInCost(t *testing.T) {
	opt, err := NewOptimizer(DefaultWeights(), testLogger())
	require.NoError(t, err)

	cheap := Candidate{
		DeltaBefore: 2, DeltaAfter: 0,
		Cost: Cost{Premium: 10, Fees: 1, Slippage: 1, Notional: 1000},
	}
	dear := cheap
	dear.Cost.Premium = 200

	assert.Greater(t, opt.Score(cheap).Total, opt.Score(dear).Total)
}

func TestScoreMonotonicInSpread(t *testing.T) {
	opt, err := NewOptimizer(DefaultWeights(), testLogger())
	require.NoError(t, err)

	tight := Candidate{
		DeltaBefore: 2, DeltaAfter: 0,
		Cost:           Cost{Premium: 10, Notional: 1000},
		SpreadFraction: 0.01,
	}
	wide := tight
	wide.SpreadFraction = 0.20

	assert.Greater(t, opt.Score(tight).Total, opt.Score(wide).Total)
}

func TestSelectBestTieBreaksOnCost(t *testing.T) {
	opt, err := NewOptimizer(DefaultWeights(), testLogger())
	require.NoError(t, err)

	// Identical cost ratios give identical scores; the smaller
	// absolute outlay should win the tie.
	a := Candidate{
		Name:        "dear",
		DeltaBefore: 2, DeltaAfter: 0,
		Cost: Cost{Premium: 50, Notional: 1000},
	}
	b := a
	b.Name = "cheap"
	b.Cost = Cost{Premium: 25, Notional: 500}

	best, err := opt.SelectBest([]Candidate{a, b})
	require.NoError(t, err)
	assert.Equal(t, "cheap", best.Candidate.Name)
}

func TestSelectBestEmpty(t *testing.T) {
	opt, err := NewOptimizer(DefaultWeights(), testLogger())
	require.NoError(t, err)

	_, err = opt.SelectBest(nil)
	assert.ErrorIs(t, err, ports.ErrSelection)
}

func TestCostingTables(t *testing.T) {
	assert.Equal(t, 0.0010, TakerFee("OKX", domain.Spot))
	assert.Equal(t, 0.0003, TakerFee("deribit", domain.Option))
	// Unknown venue costs more than any listed one.
	assert.Greater(t, TakerFee("unheard-of", domain.Spot), TakerFee("okx", domain.Spot))

	assert.Greater(t, SlippageRate(domain.Option), SlippageRate(domain.Spot))
}

func TestEstimateFillPrice(t *testing.T) {
	buy := EstimateFillPrice(100, true, 0.02, 0.001)
	sell := EstimateFillPrice(100, false, 0.02, 0.001)
	assert.InDelta(t, 101.1, buy, 1e-9)
	assert.InDelta(t, 98.9, sell, 1e-9)
}

func TestEstimateLegs(t *testing.T) {
	legs := []domain.OptionLeg{
		{Quantity: 1, EntryPrice: 10},
		{Quantity: -1, EntryPrice: 4},
	}
	c := EstimateLegs(legs, "deribit")
	assert.InDelta(t, 6.0, c.Premium, 1e-9)
	assert.InDelta(t, 14.0, c.Notional, 1e-9)
	assert.InDelta(t, 14.0*0.0003, c.Fees, 1e-9)
	assert.InDelta(t, 14.0*0.0020, c.Slippage, 1e-9)
}

func TestRecommenderRanksPerpAndOptions(t *testing.T) {
	chain := []domain.OptionQuote{
		{Symbol: "BTC-P100", Underlying: "BTCUSDT", Strike: 100, Expiry: "25DEC26", Kind: domain.Put, Bid: 7.5, Ask: 8.5, ImpliedVol: 0.6},
		{Symbol: "BTC-P90", Underlying: "BTCUSDT", Strike: 90, Expiry: "25DEC26", Kind: domain.Put, Bid: 3.5, Ask: 4.5, ImpliedVol: 0.6},
		{Symbol: "BTC-C110", Underlying: "BTCUSDT", Strike: 110, Expiry: "25DEC26", Kind: domain.Call, Bid: 3.5, Ask: 4.5, ImpliedVol: 0.6},
		{Symbol: "BTC-C120", Underlying: "BTCUSDT", Strike: 120, Expiry: "25DEC26", Kind: domain.Call, Bid: 1.5, Ask: 2.5, ImpliedVol: 0.6},
	}

	opt, err := NewOptimizer(DefaultWeights(), testLogger())
	require.NoError(t, err)
	rec := NewRecommender(strategy.NewBuilder(0.05), opt, testLogger(), "deribit")

	ranked, err := rec.Recommend(context.Background(), Request{
		Symbol:         "BTCUSDT",
		Spot:           100,
		PortfolioDelta: 2,
		Chain:          chain,
		Expiry:         "25DEC26",
	})
	require.NoError(t, err)
	require.NotEmpty(t, ranked)

	names := make(map[string]bool)
	for _, r := range ranked {
		names[r.Candidate.Name] = true
		assert.GreaterOrEqual(t, r.Score.Total, 0.0)
		assert.LessOrEqual(t, r.Score.Total, 1.0)
	}
	assert.True(t, names["perpetual_delta_neutral"])
	assert.True(t, names["protective_put"])
	assert.True(t, names["covered_call"])
	assert.True(t, names["collar"])
	assert.True(t, names["dynamic_hedge"])

	// The perp hedge removes all delta.
	for _, r := range ranked {
		if r.Candidate.Name == "perpetual_delta_neutral" {
			assert.InDelta(t, 0.0, r.Candidate.DeltaAfter, 1e-9)
			assert.Equal(t, -2.0, r.Candidate.PerpQuantity)
		}
	}
}

func TestRecommenderNoCandidates(t *testing.T) {
	opt, err := NewOptimizer(DefaultWeights(), testLogger())
	require.NoError(t, err)
	rec := NewRecommender(strategy.NewBuilder(0.05), opt, testLogger(), "deribit")

	_, err = rec.Recommend(context.Background(), Request{
		Symbol: "BTCUSDT", Spot: 100, PortfolioDelta: 0,
		Chain: nil, Expiry: "25DEC26",
	})
	assert.ErrorIs(t, err, ports.ErrSelection)
}
