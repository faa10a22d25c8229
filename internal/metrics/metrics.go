// Package metrics exposes portfolio gauges over Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"quanthedge/internal/risk"
)

// Metrics holds the registered collectors. Register once per process.
type Metrics struct {
	PortfolioDelta prometheus.Gauge
	TotalNotional  prometheus.Gauge
	UnrealizedPnL  prometheus.Gauge
	VaR95          prometheus.Gauge
	OpenPositions  prometheus.Gauge
	Evaluations    prometheus.Counter
	ThresholdHits  prometheus.Counter
	HedgesProposed prometheus.Counter
}

// New registers the collectors against the given registerer, or the
// default one when nil.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		PortfolioDelta: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "quanthedge",
			Name:      "portfolio_delta",
			Help:      "Net portfolio delta in underlying units.",
		}),
		TotalNotional: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "quanthedge",
			Name:      "total_notional_usd",
			Help:      "Gross portfolio notional in USD.",
		}),
		UnrealizedPnL: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "quanthedge",
			Name:      "unrealized_pnl_usd",
			Help:      "Mark-to-market profit and loss of open positions.",
		}),
		VaR95: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "quanthedge",
			Name:      "var95_usd",
			Help:      "95% one-day value at risk estimate.",
		}),
		OpenPositions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "quanthedge",
			Name:      "open_positions",
			Help:      "Number of open positions in the ledger.",
		}),
		Evaluations: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "quanthedge",
			Name:      "risk_evaluations_total",
			Help:      "Completed risk evaluation cycles.",
		}),
		ThresholdHits: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "quanthedge",
			Name:      "delta_threshold_breaches_total",
			Help:      "Risk cycles that found the delta threshold breached.",
		}),
		HedgesProposed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "quanthedge",
			Name:      "hedges_proposed_total",
			Help:      "Hedge recommendations produced.",
		}),
	}
}

// Observe publishes one risk snapshot.
func (m *Metrics) Observe(s risk.Snapshot) {
	m.PortfolioDelta.Set(s.Exposure.Total)
	m.TotalNotional.Set(s.TotalNotional)
	m.UnrealizedPnL.Set(s.UnrealizedPnL)
	m.VaR95.Set(s.VaR95)
	m.OpenPositions.Set(float64(s.NumPositions))
	m.Evaluations.Inc()
	if s.Exposure.Breached {
		m.ThresholdHits.Inc()
	}
}
