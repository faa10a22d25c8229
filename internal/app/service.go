package app

import (
	"context"
	"fmt"
	"time"

	"quanthedge/internal/domain"
	"quanthedge/internal/hedge"
	"quanthedge/internal/ledger"
	"quanthedge/internal/metrics"
	"quanthedge/internal/ports"
	"quanthedge/internal/risk"
)

// Config holds the watcher's runtime parameters.
type Config struct {
	Symbol         string
	PollInterval   time.Duration
	DeltaThreshold float64
	RiskFreeRate   float64
	HedgeExpiry    string // option expiry label used for recommendations, empty scans all
	MaxHedgeCost   float64
}

// Watcher periodically evaluates portfolio risk and raises hedge
// recommendations when the delta threshold is breached. Alerts latch:
// a breach is reported once and again only after the book recovers.
type Watcher struct {
	cfg         Config
	ledger      *ledger.Ledger
	market      ports.MarketDataProvider
	logger      ports.Logger
	metrics     *metrics.Metrics   // optional
	recommender *hedge.Recommender // optional

	nowFn   func() time.Time
	alerted bool
}

// Evaluation is the outcome of one risk cycle.
type Evaluation struct {
	Snapshot        risk.Snapshot
	Prices          map[string]float64
	Breached        bool
	Recommendations []hedge.Ranked
}

// New creates a risk watcher. Metrics and recommender may be nil.
func New(cfg Config, book *ledger.Ledger, market ports.MarketDataProvider, logger ports.Logger, m *metrics.Metrics, rec *hedge.Recommender) (*Watcher, error) {
	if book == nil {
		return nil, fmt.Errorf("ledger is required for watcher")
	}
	if market == nil {
		return nil, fmt.Errorf("market data provider is required for watcher")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required for watcher")
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 20 * time.Second
	}
	if cfg.DeltaThreshold <= 0 {
		cfg.DeltaThreshold = risk.DefaultDeltaThreshold
	}
	return &Watcher{
		cfg:     cfg,
		ledger:  book,
		market:  market,
		logger:  logger,
		metrics: m, recommender: rec,
		nowFn: time.Now,
	}, nil
}

// Start blocks, evaluating the portfolio every poll interval until the
// context is cancelled.
func (w *Watcher) Start(ctx context.Context) error {
	w.logger.Info(ctx, "risk watcher started", map[string]interface{}{
		"symbol":          w.cfg.Symbol,
		"poll_interval":   w.cfg.PollInterval.String(),
		"delta_threshold": w.cfg.DeltaThreshold,
	})

	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info(ctx, "risk watcher stopped")
			return ctx.Err()
		case <-ticker.C:
			if _, err := w.Evaluate(ctx); err != nil {
				w.logger.Error(ctx, err, "risk evaluation failed")
			}
		}
	}
}

// Evaluate runs one risk cycle: fetch marks, compute the snapshot,
// publish metrics, and on a fresh threshold breach produce hedge
// recommendations.
func (w *Watcher) Evaluate(ctx context.Context) (*Evaluation, error) {
	// One snapshot per cycle: marks are fetched for exactly the
	// positions being evaluated, so a fill landing mid-cycle cannot
	// leave a snapshot position without a price.
	positions := w.ledger.Positions()

	prices, vols, err := w.fetchMarks(ctx, positions)
	if err != nil {
		return nil, err
	}

	cfg := risk.Config{DeltaThreshold: w.cfg.DeltaThreshold}
	snapshot := risk.Evaluate(positions, prices, vols, w.cfg.RiskFreeRate, w.nowFn(), cfg)
	if w.metrics != nil {
		w.metrics.Observe(snapshot)
	}

	ev := &Evaluation{Snapshot: snapshot, Prices: prices, Breached: snapshot.Exposure.Breached}

	switch {
	case !snapshot.Exposure.Breached:
		if w.alerted {
			w.logger.Info(ctx, "portfolio delta back under threshold", map[string]interface{}{
				"delta": snapshot.Exposure.Total,
			})
		}
		w.alerted = false
	case w.alerted:
		// Still breached, already alerted. Stay quiet until recovery.
	default:
		w.alerted = true
		w.logger.Warn(ctx, "portfolio delta threshold breached", map[string]interface{}{
			"delta":     snapshot.Exposure.Total,
			"threshold": w.cfg.DeltaThreshold,
		})
		ev.Recommendations = w.recommend(ctx, snapshot, prices)
	}
	return ev, nil
}

func (w *Watcher) fetchMarks(ctx context.Context, positions []*domain.Position) (prices, vols map[string]float64, err error) {
	prices = make(map[string]float64, len(positions))
	vols = make(map[string]float64)

	var chainIV map[string]float64
	for _, p := range positions {
		if p.Kind == domain.Option {
			if chainIV == nil {
				chainIV = w.fetchChainIV(ctx)
			}
			// Options are marked against the primary underlying.
			spot, perr := w.market.GetPrice(ctx, w.cfg.Symbol)
			if perr != nil {
				return nil, nil, fmt.Errorf("fetching underlying price: %w", perr)
			}
			prices[p.Symbol] = spot
			if iv, ok := chainIV[p.Symbol]; ok {
				vols[p.Symbol] = iv
			}
			continue
		}
		price, perr := w.market.GetPrice(ctx, p.Symbol)
		if perr != nil {
			return nil, nil, fmt.Errorf("fetching price for %s: %w", p.Symbol, perr)
		}
		prices[p.Symbol] = price
	}
	return prices, vols, nil
}

// fetchChainIV pulls the current option chain once per cycle to mark
// option positions at quoted implied vol. A missing chain is not
// fatal: positions degrade to intrinsic marks.
func (w *Watcher) fetchChainIV(ctx context.Context) map[string]float64 {
	chain, err := w.market.GetOptionChain(ctx, w.cfg.Symbol, "")
	if err != nil {
		w.logger.Warn(ctx, "option chain unavailable, marking at intrinsic", map[string]interface{}{
			"error": err.Error(),
		})
		return map[string]float64{}
	}
	out := make(map[string]float64, len(chain))
	for _, q := range chain {
		if q.ImpliedVol > 0 {
			out[q.Symbol] = q.ImpliedVol
		}
	}
	return out
}

func (w *Watcher) recommend(ctx context.Context, snapshot risk.Snapshot, prices map[string]float64) []hedge.Ranked {
	if w.recommender == nil {
		return nil
	}

	spot, ok := prices[w.cfg.Symbol]
	if !ok {
		var err error
		spot, err = w.market.GetPrice(ctx, w.cfg.Symbol)
		if err != nil {
			w.logger.Error(ctx, err, "cannot price hedge candidates without spot")
			return nil
		}
	}

	chain, err := w.market.GetOptionChain(ctx, w.cfg.Symbol, w.cfg.HedgeExpiry)
	if err != nil {
		w.logger.Warn(ctx, "option chain unavailable for hedging", map[string]interface{}{
			"error": err.Error(),
		})
		chain = nil
	}

	ranked, err := w.recommender.Recommend(ctx, hedge.Request{
		Symbol:         w.cfg.Symbol,
		Spot:           spot,
		PortfolioDelta: snapshot.Exposure.Total,
		Chain:          chain,
		Expiry:         w.cfg.HedgeExpiry,
		MaxCost:        w.cfg.MaxHedgeCost,
	})
	if err != nil {
		w.logger.Error(ctx, err, "hedge recommendation failed")
		return nil
	}
	if w.metrics != nil {
		w.metrics.HedgesProposed.Inc()
	}
	return ranked
}
