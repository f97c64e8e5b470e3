package observability

import (
	"context"
	"strconv"

	"github.com/aretw0/botflow/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors fed by lifecycle hooks.
type Metrics struct {
	RuleMatches    *prometheus.CounterVec
	Fallbacks      *prometheus.CounterVec
	WaitsEntered   *prometheus.CounterVec
	InputsConsumed *prometheus.CounterVec
	TierDegraded   prometheus.Counter
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		RuleMatches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "botflow_rule_matches_total",
				Help: "Conditional rules selected, by node and rule.",
			},
			[]string{"node_id", "rule_id"},
		),
		Fallbacks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "botflow_fallbacks_total",
				Help: "Evaluations where no rule matched, by node.",
			},
			[]string{"node_id"},
		),
		WaitsEntered: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "botflow_waits_entered_total",
				Help: "Waiting states armed, by input kind.",
			},
			[]string{"kind", "conditional"},
		),
		InputsConsumed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "botflow_inputs_consumed_total",
				Help: "User inputs stored into variables, by input kind.",
			},
			[]string{"kind", "conditional"},
		),
		TierDegraded: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "botflow_durable_tier_errors_total",
				Help: "Variable loads that fell back to the session tier.",
			},
		),
	}

	for _, c := range []prometheus.Collector{m.RuleMatches, m.Fallbacks, m.WaitsEntered, m.InputsConsumed, m.TierDegraded} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Hooks returns lifecycle hooks that record into m.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnRuleMatched: func(_ context.Context, e *domain.ResolutionEvent) {
			m.RuleMatches.WithLabelValues(e.NodeID, e.RuleID).Inc()
		},
		OnFallback: func(_ context.Context, e *domain.ResolutionEvent) {
			m.Fallbacks.WithLabelValues(e.NodeID).Inc()
		},
		OnWaitEntered: func(_ context.Context, e *domain.WaitEvent) {
			m.WaitsEntered.WithLabelValues(string(e.Kind), strconv.FormatBool(e.Conditional)).Inc()
		},
		OnInputConsumed: func(_ context.Context, e *domain.WaitEvent) {
			m.InputsConsumed.WithLabelValues(string(e.Kind), strconv.FormatBool(e.Conditional)).Inc()
		},
		OnTierDegraded: func(context.Context, *domain.EventBase, error) {
			m.TierDegraded.Inc()
		},
	}
}
