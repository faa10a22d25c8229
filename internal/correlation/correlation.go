package correlation

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"quanthedge/internal/domain"
	"quanthedge/internal/ports"
)

// DefaultMinOverlap is the smallest number of shared return
// observations required before a pairwise coefficient is reported.
const DefaultMinOverlap = 10

// Insight flags a notable pairwise relationship in the matrix.
type Insight struct {
	SymbolA     string
	SymbolB     string
	Coefficient float64
	Note        string
}

// Result holds a full pairwise correlation matrix over daily
// percentage returns. Matrix[i][j] is the coefficient between
// Symbols[i] and Symbols[j]; pairs with insufficient overlap carry NaN.
type Result struct {
	Symbols  []string
	Matrix   [][]float64
	Missing  map[string]int
	Insights []Insight

	// Highest is the most correlated pair, nil when no pair had
	// enough overlap. Mean averages the computable off-diagonal
	// coefficients and is NaN when there are none.
	Highest *Insight
	Mean    float64
}

// Engine computes return correlations from historical candles.
type Engine struct {
	provider   ports.HistoricalDataProvider
	logger     ports.Logger
	minOverlap int

	// Insight thresholds. Pairs at or above high are flagged as
	// concentrated, at or below low as natural hedges.
	highThreshold float64
	lowThreshold  float64
}

// NewEngine returns an Engine with the default overlap and insight
// thresholds.
func NewEngine(provider ports.HistoricalDataProvider, logger ports.Logger) *Engine {
	return &Engine{
		provider:      provider,
		logger:        logger,
		minOverlap:    DefaultMinOverlap,
		highThreshold: 0.8,
		lowThreshold:  -0.3,
	}
}

// SetMinOverlap overrides the minimum shared observations per pair.
func (e *Engine) SetMinOverlap(n int) {
	if n > 0 {
		e.minOverlap = n
	}
}

// SetThresholds overrides the insight cutoffs.
func (e *Engine) SetThresholds(high, low float64) {
	e.highThreshold = high
	e.lowThreshold = low
}

// Matrix fetches daily candles for every symbol and computes the
// pairwise correlation of their percentage returns, aligned by
// calendar day.
func (e *Engine) Matrix(ctx context.Context, symbols []string, days int) (*Result, error) {
	if len(symbols) < 2 {
		return nil, fmt.Errorf("%w: need at least two symbols", ports.ErrValidation)
	}
	if days <= 0 {
		return nil, fmt.Errorf("%w: days must be positive", ports.ErrValidation)
	}

	returns := make(map[string]map[string]float64, len(symbols))
	missing := make(map[string]int, len(symbols))
	for _, sym := range symbols {
		candles, err := e.provider.GetSeries(ctx, sym, days)
		if err != nil {
			return nil, fmt.Errorf("fetching series for %s: %w", sym, err)
		}
		rets, skipped := Returns(candles)
		returns[sym] = rets
		missing[sym] = skipped
		if skipped > 0 {
			e.logger.Warn(ctx, "skipped unusable candles", map[string]interface{}{
				"symbol":  sym,
				"skipped": skipped,
			})
		}
	}

	n := len(symbols)
	matrix := make([][]float64, n)
	for i := range matrix {
		matrix[i] = make([]float64, n)
	}

	res := &Result{Symbols: symbols, Matrix: matrix, Missing: missing, Mean: math.NaN()}
	var sum float64
	var computed int
	for i := 0; i < n; i++ {
		matrix[i][i] = 1
		for j := i + 1; j < n; j++ {
			coef := pairwise(returns[symbols[i]], returns[symbols[j]], e.minOverlap)
			matrix[i][j] = coef
			matrix[j][i] = coef
			if math.IsNaN(coef) {
				continue
			}
			sum += coef
			computed++
			if res.Highest == nil || coef > res.Highest.Coefficient {
				res.Highest = &Insight{SymbolA: symbols[i], SymbolB: symbols[j], Coefficient: coef}
			}
			if note := e.classify(coef); note != "" {
				res.Insights = append(res.Insights, Insight{
					SymbolA:     symbols[i],
					SymbolB:     symbols[j],
					Coefficient: coef,
					Note:        note,
				})
			}
		}
	}
	if computed > 0 {
		res.Mean = sum / float64(computed)
	}
	return res, nil
}

func (e *Engine) classify(coef float64) string {
	switch {
	case coef >= e.highThreshold:
		return "highly correlated, diversification is illusory"
	case coef <= e.lowThreshold:
		return "negatively correlated, acts as a natural hedge"
	default:
		return ""
	}
}

// Returns converts candles into day-keyed percentage returns,
// close over previous close. Candles with a non-positive close, and
// returns whose previous close is unusable, are skipped and counted.
func Returns(candles []domain.Candle) (map[string]float64, int) {
	sorted := make([]domain.Candle, len(candles))
	copy(sorted, candles)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Timestamp.Before(sorted[j].Timestamp) })

	out := make(map[string]float64, len(sorted))
	skipped := 0
	var prevClose float64
	for i, c := range sorted {
		if c.Close <= 0 {
			skipped++
			prevClose = 0
			continue
		}
		if i > 0 && prevClose > 0 {
			out[dayKey(c.Timestamp)] = (c.Close - prevClose) / prevClose
		}
		prevClose = c.Close
	}
	return out, skipped
}

func dayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// pairwise computes the Pearson coefficient over the days both series
// observed. Fewer than minOverlap shared days yields NaN.
func pairwise(a, b map[string]float64, minOverlap int) float64 {
	var xs, ys []float64
	for day, x := range a {
		if y, ok := b[day]; ok {
			xs = append(xs, x)
			ys = append(ys, y)
		}
	}
	if len(xs) < minOverlap {
		return math.NaN()
	}
	return pearson(xs, ys)
}

func pearson(xs, ys []float64) float64 {
	n := float64(len(xs))
	var sumX, sumY float64
	for i := range xs {
		sumX += xs[i]
		sumY += ys[i]
	}
	meanX, meanY := sumX/n, sumY/n

	var cov, varX, varY float64
	for i := range xs {
		dx, dy := xs[i]-meanX, ys[i]-meanY
		cov += dx * dy
		varX += dx * dx
		varY += dy * dy
	}
	if varX == 0 || varY == 0 {
		return math.NaN()
	}
	return cov / math.Sqrt(varX*varY)
}
