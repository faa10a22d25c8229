package risk

import (
	"math"
	"sort"
	"time"

	"quanthedge/internal/domain"
	"quanthedge/internal/pricing"
)

// VaRFraction is the parametric VaR proxy: 95% VaR is modeled as 2% of total
// notional exposure. This is a deliberate simplification carried over from
// the calibrated alerting setup, not a historical simulation; downstream
// alert thresholds assume exactly this formula.
const VaRFraction = 0.02

// DefaultDeltaThreshold is the |delta| breach threshold in base-asset units.
const DefaultDeltaThreshold = 5.0

// Config holds the tunable thresholds for risk evaluation.
type Config struct {
	DeltaThreshold float64 // |total delta| above this flags a breach
}

// DefaultConfig returns the default thresholds.
func DefaultConfig() Config {
	return Config{DeltaThreshold: DefaultDeltaThreshold}
}

// Exposure is the aggregate delta broken down by instrument kind.
type Exposure struct {
	Spot      float64
	Perpetual float64
	Option    float64
	Total     float64
	Breached  bool // |Total| exceeded the configured threshold
}

// DeltaExposure groups per-position delta contributions by instrument kind.
// Spot and perpetual positions contribute quantity * 1.0; options contribute
// quantity * Black-Scholes delta at the supplied volatility (intrinsic delta
// when vols has no entry).
func DeltaExposure(positions []*domain.Position, prices, vols map[string]float64, rate float64, now time.Time, cfg Config) Exposure {
	var e Exposure
	for _, p := range positions {
		d := positionDelta(p, prices, vols, rate, now)
		switch p.Kind {
		case domain.Spot:
			e.Spot += d
		case domain.Perpetual:
			e.Perpetual += d
		case domain.Option:
			e.Option += d
		}
	}
	e.Total = e.Spot + e.Perpetual + e.Option
	e.Breached = math.Abs(e.Total) > cfg.DeltaThreshold
	return e
}

func positionDelta(p *domain.Position, prices, vols map[string]float64, rate float64, now time.Time) float64 {
	return pricing.PortfolioDelta([]*domain.Position{p}, prices, vols, rate, now)
}

// TotalNotional sums |quantity * mark| across positions. Positions without a
// mark price contribute nothing.
func TotalNotional(positions []*domain.Position, prices map[string]float64) float64 {
	total := 0.0
	for _, p := range positions {
		if px, ok := prices[p.Symbol]; ok && px > 0 {
			total += p.Notional(px)
		}
	}
	return total
}

// VaR95 returns the 95% Value-at-Risk proxy: VaRFraction of total notional.
// The result is always >= 0 and scales linearly with notional.
func VaR95(positions []*domain.Position, prices map[string]float64) float64 {
	return TotalNotional(positions, prices) * VaRFraction
}

// Concentration captures single-name concentration as fractions in [0, 1].
type Concentration struct {
	LargestShare float64 // largest single position notional / total notional
	Top3Share    float64 // combined share of the three largest positions
}

// ConcentrationRisk ranks positions by notional and reports the largest and
// top-3 shares. An empty portfolio (or one with no marked prices) reports 0.
func ConcentrationRisk(positions []*domain.Position, prices map[string]float64) Concentration {
	notionals := make([]float64, 0, len(positions))
	total := 0.0
	for _, p := range positions {
		px, ok := prices[p.Symbol]
		if !ok || px <= 0 {
			continue
		}
		n := p.Notional(px)
		notionals = append(notionals, n)
		total += n
	}
	if total == 0 {
		return Concentration{}
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(notionals)))

	c := Concentration{LargestShare: notionals[0] / total}
	top3 := 0.0
	for i, n := range notionals {
		if i == 3 {
			break
		}
		top3 += n
	}
	c.Top3Share = top3 / total
	return c
}

// Snapshot is the full risk-metrics suite for one portfolio state.
type Snapshot struct {
	Exposure      Exposure
	TotalNotional float64
	UnrealizedPnL float64
	VaR95         float64
	Concentration Concentration
	NumPositions  int
}

// Evaluate computes the complete risk suite in one pass.
func Evaluate(positions []*domain.Position, prices, vols map[string]float64, rate float64, now time.Time, cfg Config) Snapshot {
	unrealized := 0.0
	for _, p := range positions {
		if px, ok := prices[p.Symbol]; ok && px > 0 {
			unrealized += p.UnrealizedPnL(px)
		}
	}
	return Snapshot{
		Exposure:      DeltaExposure(positions, prices, vols, rate, now, cfg),
		TotalNotional: TotalNotional(positions, prices),
		UnrealizedPnL: unrealized,
		VaR95:         VaR95(positions, prices),
		Concentration: ConcentrationRisk(positions, prices),
		NumPositions:  len(positions),
	}
}
