package hedge

import (
	"fmt"
	"math"
	"sort"

	"quanthedge/internal/domain"
	"quanthedge/internal/ports"
)

// Weights splits the hedge score between its three concerns. They
// must sum to one.
type Weights struct {
	Effectiveness float64
	Cost          float64
	Liquidity     float64
}

// DefaultWeights favors delta reduction over execution cost.
func DefaultWeights() Weights {
	return Weights{Effectiveness: 0.5, Cost: 0.3, Liquidity: 0.2}
}

// Validate rejects negative components and sums away from one.
func (w Weights) Validate() error {
	if w.Effectiveness < 0 || w.Cost < 0 || w.Liquidity < 0 {
		return fmt.Errorf("%w: hedge weights must be non-negative", ports.ErrConfig)
	}
	if sum := w.Effectiveness + w.Cost + w.Liquidity; math.Abs(sum-1) > 1e-9 {
		return fmt.Errorf("%w: hedge weights sum to %.6f, want 1", ports.ErrConfig, sum)
	}
	return nil
}

// Candidate is one costed hedge proposal ready for scoring.
type Candidate struct {
	Name string
	Legs []domain.OptionLeg
	// PerpQuantity is set for linear hedges instead of Legs.
	PerpQuantity float64
	PerpSymbol   string

	DeltaBefore float64
	DeltaAfter  float64
	Cost        Cost
	// SpreadFraction is the worst relative bid-ask spread crossed.
	SpreadFraction float64
}

// Score is the weighted ranking of one candidate. All components live
// in [0, 1], higher is better.
type Score struct {
	Effectiveness float64
	Cost          float64
	Liquidity     float64
	Total         float64
}

// Optimizer ranks hedge candidates.
type Optimizer struct {
	weights Weights
	logger  ports.Logger
}

// NewOptimizer validates the weights before accepting them.
func NewOptimizer(weights Weights, logger ports.Logger) (*Optimizer, error) {
	if err := weights.Validate(); err != nil {
		return nil, err
	}
	return &Optimizer{weights: weights, logger: logger}, nil
}

// Score grades one candidate. Effectiveness measures how much of the
// original delta the hedge removes, cost penalizes the all-in drag
// relative to notional, liquidity penalizes wide spreads.
func (o *Optimizer) Score(c Candidate) Score {
	var s Score
	s.Effectiveness = effectiveness(c.DeltaBefore, c.DeltaAfter)
	s.Cost = costScore(c.Cost)
	s.Liquidity = 1 / (1 + c.SpreadFraction)
	s.Total = o.weights.Effectiveness*s.Effectiveness +
		o.weights.Cost*s.Cost +
		o.weights.Liquidity*s.Liquidity
	return s
}

// Ranked is a candidate with its score attached.
type Ranked struct {
	Candidate Candidate
	Score     Score
}

// Rank scores every candidate and sorts best first. Total score ties
// break toward the cheaper hedge.
func (o *Optimizer) Rank(candidates []Candidate) []Ranked {
	out := make([]Ranked, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, Ranked{Candidate: c, Score: o.Score(c)})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if math.Abs(out[i].Score.Total-out[j].Score.Total) > 1e-9 {
			return out[i].Score.Total > out[j].Score.Total
		}
		return out[i].Candidate.Cost.Total() < out[j].Candidate.Cost.Total()
	})
	return out
}

// SelectBest returns the top-ranked candidate.
func (o *Optimizer) SelectBest(candidates []Candidate) (Ranked, error) {
	if len(candidates) == 0 {
		return Ranked{}, fmt.Errorf("%w: no hedge candidates", ports.ErrSelection)
	}
	return o.Rank(candidates)[0], nil
}

func effectiveness(before, after float64) float64 {
	orig := math.Abs(before)
	if orig < 1e-12 {
		return 0
	}
	e := 1 - math.Abs(after)/orig
	if e < 0 {
		return 0
	}
	if e > 1 {
		return 1
	}
	return e
}

func costScore(c Cost) float64 {
	if c.Notional <= 0 {
		return 0
	}
	return 1 / (1 + c.Total()/c.Notional)
}
