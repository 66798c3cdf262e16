// Package observability exposes player activity as Prometheus metrics.
// Metrics are fed entirely through PlayerHooks, so the runtime stays
// free of instrumentation concerns.
package observability

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aretw0/espalier/pkg/domain"
)

// Metrics holds the collectors for one engine instance.
type Metrics struct {
	pauses    prometheus.Counter
	shadowOps prometheus.Counter
	shadow    prometheus.Gauge
	branches  prometheus.Histogram
}

// NewMetrics registers the collectors with reg. Pass
// prometheus.DefaultRegisterer for the global registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		pauses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "espalier",
			Name:      "player_pauses_total",
			Help:      "Number of times the player reached a pause target.",
		}),
		shadowOps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "espalier",
			Name:      "shadow_operations_total",
			Help:      "Number of speculative exploration passes.",
		}),
		shadow: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "espalier",
			Name:      "shadow_level",
			Help:      "Current shadow nesting level.",
		}),
		branches: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "espalier",
			Name:      "branches_published",
			Help:      "Branches published per exploration pass.",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 13, 21},
		}),
	}
	reg.MustRegister(m.pauses, m.shadowOps, m.shadow, m.branches)
	return m
}

// Hooks returns player hooks that update the collectors.
func (m *Metrics) Hooks() domain.PlayerHooks {
	return domain.PlayerHooks{
		OnPlayerPaused: func(ctx context.Context, obj domain.FlowObject) {
			m.pauses.Inc()
		},
		OnBranchesUpdated: func(ctx context.Context, branches []domain.Branch) {
			m.branches.Observe(float64(len(branches)))
		},
		OnShadowOpStart: func(ctx context.Context, level int) {
			m.shadowOps.Inc()
			m.shadow.Set(float64(level))
		},
		OnShadowOpEnd: func(ctx context.Context, level int) {
			m.shadow.Set(float64(level - 1))
		},
	}
}

// Chain fans one hook set out to several receivers, letting metric
// hooks coexist with application hooks.
func Chain(hooks ...domain.PlayerHooks) domain.PlayerHooks {
	return domain.PlayerHooks{
		OnPlayerPaused: func(ctx context.Context, obj domain.FlowObject) {
			for _, h := range hooks {
				if h.OnPlayerPaused != nil {
					h.OnPlayerPaused(ctx, obj)
				}
			}
		},
		OnBranchesUpdated: func(ctx context.Context, branches []domain.Branch) {
			for _, h := range hooks {
				if h.OnBranchesUpdated != nil {
					h.OnBranchesUpdated(ctx, branches)
				}
			}
		},
		OnShadowOpStart: func(ctx context.Context, level int) {
			for _, h := range hooks {
				if h.OnShadowOpStart != nil {
					h.OnShadowOpStart(ctx, level)
				}
			}
		},
		OnShadowOpEnd: func(ctx context.Context, level int) {
			for _, h := range hooks {
				if h.OnShadowOpEnd != nil {
					h.OnShadowOpEnd(ctx, level)
				}
			}
		},
	}
}
