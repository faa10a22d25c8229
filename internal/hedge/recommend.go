package hedge

import (
	"context"
	"math"

	"quanthedge/internal/domain"
	"quanthedge/internal/ports"
	"quanthedge/internal/strategy"
)

// Recommender assembles hedge candidates from the strategy builders,
// costs them, and returns them ranked by the optimizer.
type Recommender struct {
	builder   *strategy.Builder
	optimizer *Optimizer
	logger    ports.Logger
	venue     string
}

// NewRecommender wires a builder and optimizer for one venue.
func NewRecommender(builder *strategy.Builder, optimizer *Optimizer, logger ports.Logger, venue string) *Recommender {
	return &Recommender{builder: builder, optimizer: optimizer, logger: logger, venue: venue}
}

// Request describes the exposure to hedge.
type Request struct {
	Symbol         string
	Spot           float64
	PortfolioDelta float64
	Chain          []domain.OptionQuote
	Expiry         string
	// MaxCost caps the dynamic hedge premium. Zero disables the cap.
	MaxCost float64
}

// Recommend builds, costs, and ranks the full auto-mode hedge menu: a
// perpetual delta hedge, a protective put, a covered call, a collar,
// and the best single option from a bounded chain scan. Builders that
// cannot produce a candidate for this chain are skipped, not fatal.
func (r *Recommender) Recommend(ctx context.Context, req Request) ([]Ranked, error) {
	var candidates []Candidate

	if perp := r.perpCandidate(req); perp != nil {
		candidates = append(candidates, *perp)
	}

	if c := r.strategyCandidate("protective_put", req, func() (*strategy.Result, error) {
		return r.builder.ProtectivePut(req.Chain, req.Spot, 0, 0, strategy.Params{Expiry: req.Expiry})
	}); c != nil {
		candidates = append(candidates, *c)
	}

	if c := r.strategyCandidate("covered_call", req, func() (*strategy.Result, error) {
		return r.builder.CoveredCall(req.Chain, req.Spot, 0, 0, strategy.Params{Expiry: req.Expiry})
	}); c != nil {
		candidates = append(candidates, *c)
	}

	if c := r.strategyCandidate("collar", req, func() (*strategy.Result, error) {
		return r.builder.Collar(req.Chain, req.Spot, 0, 0, strategy.Params{Expiry: req.Expiry})
	}); c != nil {
		candidates = append(candidates, *c)
	}

	if c := r.strategyCandidate("dynamic_hedge", req, func() (*strategy.Result, error) {
		return r.builder.DynamicHedge(req.Chain, req.Spot, req.PortfolioDelta, strategy.DynamicHedgeParams{
			Expiry:  req.Expiry,
			MaxCost: req.MaxCost,
		})
	}); c != nil {
		candidates = append(candidates, *c)
	}

	best, err := r.optimizer.SelectBest(candidates)
	if err != nil {
		return nil, err
	}
	r.logger.Info(ctx, "hedge recommendation ready", map[string]interface{}{
		"best":         best.Candidate.Name,
		"score":        best.Score.Total,
		"candidates":   len(candidates),
		"delta_before": req.PortfolioDelta,
		"delta_after":  best.Candidate.DeltaAfter,
	})
	return r.optimizer.Rank(candidates), nil
}

func (r *Recommender) perpCandidate(req Request) *Candidate {
	h := r.builder.PerpetualDeltaNeutral(req.Symbol, req.PortfolioDelta, req.Spot)
	if h.Quantity == 0 {
		return nil
	}
	return &Candidate{
		Name:         "perpetual_delta_neutral",
		PerpQuantity: h.Quantity,
		PerpSymbol:   h.Symbol,
		DeltaBefore:  req.PortfolioDelta,
		DeltaAfter:   req.PortfolioDelta + h.Quantity,
		Cost:         EstimatePerp(h.Quantity, h.Price, r.venue),
	}
}

func (r *Recommender) strategyCandidate(name string, req Request, build func() (*strategy.Result, error)) *Candidate {
	res, err := build()
	if err != nil {
		r.logger.Debug(context.Background(), "hedge builder skipped", map[string]interface{}{
			"builder": name,
			"error":   err.Error(),
		})
		return nil
	}

	after := req.PortfolioDelta
	worstSpread := 0.0
	for _, leg := range res.Legs {
		after += leg.Quantity * leg.Delta
		if s := legSpread(req.Chain, leg); s > worstSpread {
			worstSpread = s
		}
	}
	return &Candidate{
		Name:           name,
		Legs:           res.Legs,
		DeltaBefore:    req.PortfolioDelta,
		DeltaAfter:     after,
		Cost:           EstimateLegs(res.Legs, r.venue),
		SpreadFraction: worstSpread,
	}
}

func legSpread(chain []domain.OptionQuote, leg domain.OptionLeg) float64 {
	for _, q := range chain {
		if q.Kind == leg.Kind && q.Expiry == leg.Expiry && math.Abs(q.Strike-leg.Strike) < 1e-9 {
			return q.SpreadFraction()
		}
	}
	return 0
}
