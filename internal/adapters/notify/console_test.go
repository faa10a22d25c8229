package notify

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"quanthedge/internal/correlation"
	"quanthedge/internal/domain"
	"quanthedge/internal/hedge"
	"quanthedge/internal/risk"
	"quanthedge/internal/stress"
)

func TestPositionsTable(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf)

	c.Positions([]*domain.Position{
		{Symbol: "BTCUSDT", Quantity: 1.5, EntryPrice: 40000, Kind: domain.Spot},
		{Symbol: "ETHUSDT", Quantity: -2, EntryPrice: 2500, Kind: domain.Perpetual},
	}, map[string]float64{"BTCUSDT": 42000})

	out := buf.String()
	assert.Contains(t, out, "OPEN POSITIONS")
	assert.Contains(t, out, "BTCUSDT")
	assert.Contains(t, out, "3000.00") // (42000-40000)*1.5
	// No mark for ETHUSDT, cells degrade to a dash.
	assert.Contains(t, out, "ETHUSDT")
	assert.Contains(t, out, "-")
}

func TestRiskReportPassthrough(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf)

	c.Risk(risk.Snapshot{})
	assert.Contains(t, buf.String(), "No positions")
}

func TestCorrelationTableHandlesNaN(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf)

	c.Correlation(&correlation.Result{
		Symbols: []string{"AAA", "BBB"},
		Matrix: [][]float64{
			{1, math.NaN()},
			{math.NaN(), 1},
		},
		Insights: []correlation.Insight{
			{SymbolA: "AAA", SymbolB: "BBB", Coefficient: 0.91, Note: "highly correlated"},
		},
	})

	out := buf.String()
	assert.Contains(t, out, "CORRELATION MATRIX")
	assert.Contains(t, out, "n/a")
	assert.Contains(t, out, "highly correlated")
}

func TestStressAndHedgeTables(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf)

	c.Stress([]stress.Impact{
		{
			Scenario: stress.Scenario{Name: "market_crash_20"},
			Before:   stress.Point{PnL: 0, VaR: 2, Delta: 1},
			After:    stress.Point{PnL: -20, VaR: 1.6, Delta: 1},
		},
	})
	c.Hedges([]hedge.Ranked{
		{
			Candidate: hedge.Candidate{Name: "protective_put", DeltaBefore: 2, DeltaAfter: 1.2},
			Score:     hedge.Score{Total: 0.78},
		},
	})

	out := buf.String()
	assert.Contains(t, out, "market_crash_20")
	assert.Contains(t, out, "-20.00")
	assert.Contains(t, out, "protective_put")
	assert.Contains(t, out, "0.780")
}
