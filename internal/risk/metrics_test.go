package risk

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"quanthedge/internal/domain"
)

func TestMaxDrawdown(t *testing.T) {
	tests := []struct {
		name     string
		equity   []float64
		expected float64
	}{
		{"single drawdown", []float64{100, 120, 90, 150}, 0.25},
		{"monotonic rise", []float64{100, 110, 120}, 0},
		{"empty", nil, 0},
		{"single point", []float64{100}, 0},
		{"double dip keeps the deeper one", []float64{100, 80, 120, 60}, 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, MaxDrawdown(tt.equity), 1e-12)
		})
	}
}

func TestVaR95_NonNegativeAndLinear(t *testing.T) {
	positions := []*domain.Position{
		{Symbol: "BTC-USDT", Quantity: 2, EntryPrice: 50000, Kind: domain.Spot},
		{Symbol: "ETH-USDT", Quantity: -10, EntryPrice: 3000, Kind: domain.Perpetual},
	}
	prices := map[string]float64{"BTC-USDT": 50000, "ETH-USDT": 3000}

	v := VaR95(positions, prices)
	assert.GreaterOrEqual(t, v, 0.0)
	assert.InDelta(t, (100000+30000)*VaRFraction, v, 1e-9)

	// Doubling every quantity doubles VaR: the proxy is linear in notional.
	doubled := []*domain.Position{
		{Symbol: "BTC-USDT", Quantity: 4, EntryPrice: 50000, Kind: domain.Spot},
		{Symbol: "ETH-USDT", Quantity: -20, EntryPrice: 3000, Kind: domain.Perpetual},
	}
	assert.InDelta(t, 2*v, VaR95(doubled, prices), 1e-9)
}

func TestDeltaExposure_BreakdownAndBreach(t *testing.T) {
	now := time.Now()
	positions := []*domain.Position{
		{Symbol: "BTC-USDT", Quantity: 4, EntryPrice: 50000, Kind: domain.Spot},
		{Symbol: "BTC-USDT-PERP", Quantity: 2, EntryPrice: 50000, Kind: domain.Perpetual},
	}
	prices := map[string]float64{"BTC-USDT": 50000, "BTC-USDT-PERP": 50000}

	e := DeltaExposure(positions, prices, nil, 0, now, DefaultConfig())
	assert.Equal(t, 4.0, e.Spot)
	assert.Equal(t, 2.0, e.Perpetual)
	assert.Equal(t, 0.0, e.Option)
	assert.Equal(t, 6.0, e.Total)
	assert.True(t, e.Breached, "|6| exceeds the default threshold of 5")

	e = DeltaExposure(positions, prices, nil, 0, now, Config{DeltaThreshold: 10})
	assert.False(t, e.Breached)
}

func TestConcentrationRisk(t *testing.T) {
	positions := []*domain.Position{
		{Symbol: "A", Quantity: 1, Kind: domain.Spot}, // 60k
		{Symbol: "B", Quantity: 1, Kind: domain.Spot}, // 30k
		{Symbol: "C", Quantity: 1, Kind: domain.Spot}, // 5k
		{Symbol: "D", Quantity: 1, Kind: domain.Spot}, // 5k
	}
	prices := map[string]float64{"A": 60000, "B": 30000, "C": 5000, "D": 5000}

	c := ConcentrationRisk(positions, prices)
	assert.InDelta(t, 0.60, c.LargestShare, 1e-9)
	assert.InDelta(t, 0.95, c.Top3Share, 1e-9)

	assert.Equal(t, Concentration{}, ConcentrationRisk(nil, nil))
}

func TestReport_Deterministic(t *testing.T) {
	positions := []*domain.Position{
		{Symbol: "BTC-USDT", Quantity: 1, EntryPrice: 100, Kind: domain.Spot},
	}
	prices := map[string]float64{"BTC-USDT": 110}
	snap := Evaluate(positions, prices, nil, 0, time.Now(), DefaultConfig())

	got := Report(snap)
	assert.True(t, strings.HasPrefix(got, "=== PORTFOLIO RISK REPORT ==="))
	assert.Contains(t, got, "Total Delta: +1.0000")
	assert.Contains(t, got, "Total Notional: $110.00")
	assert.Contains(t, got, "Unrealized P&L: $+10.00")
	assert.Contains(t, got, "95% VaR: $2.20")
	assert.Contains(t, got, "Largest Position: 100.0%")

	// Same snapshot renders the same bytes.
	assert.Equal(t, got, Report(snap))

	assert.Equal(t, "No positions - no risk to report.", Report(Snapshot{}))
}
