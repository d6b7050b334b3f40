package observability

import (
	"context"
	"strings"

	"github.com/aretw0/cinegraph/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Capability outcomes used as the "outcome" label.
const (
	OutcomeOK      = "ok"
	OutcomeError   = "error"
	OutcomeRefused = "refused"
)

// Metrics holds the engine collectors.
type Metrics struct {
	NodeVisits         *prometheus.CounterVec
	Transitions        *prometheus.CounterVec
	CapabilityCalls    *prometheus.CounterVec
	CapabilityDuration *prometheus.HistogramVec
	Checkpoints        prometheus.Counter
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg uses prometheus.DefaultRegisterer.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		NodeVisits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cinegraph_node_visits_total",
			Help: "Total number of node visits",
		}, []string{"node_id"}),
		Transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cinegraph_node_transitions_total",
			Help: "Node exits by emitted signal",
		}, []string{"node_id", "signal"}),
		CapabilityCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cinegraph_capability_calls_total",
			Help: "Dispatched capability calls by name and outcome",
		}, []string{"capability", "outcome"}),
		CapabilityDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "cinegraph_capability_duration_seconds",
			Help:    "Duration of capability executions",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
		}, []string{"capability"}),
		Checkpoints: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cinegraph_checkpoints_total",
			Help: "Checkpoints committed",
		}),
	}
	for _, c := range []prometheus.Collector{m.NodeVisits, m.Transitions, m.CapabilityCalls, m.CapabilityDuration, m.Checkpoints} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Hooks returns lifecycle hooks that record into m.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnNodeEnter: func(_ context.Context, e *domain.NodeEvent) {
			m.NodeVisits.WithLabelValues(string(e.NodeID)).Inc()
		},
		OnNodeLeave: func(_ context.Context, e *domain.NodeEvent) {
			m.Transitions.WithLabelValues(string(e.NodeID), string(e.Signal)).Inc()
		},
		OnCapabilityReturn: func(_ context.Context, e *domain.CapabilityEvent) {
			m.CapabilityCalls.WithLabelValues(e.Call.Name, Outcome(e)).Inc()
			if !e.Skipped {
				m.CapabilityDuration.WithLabelValues(e.Call.Name).Observe(e.Duration.Seconds())
			}
		},
		OnCheckpoint: func(context.Context, *domain.CheckpointEvent) {
			m.Checkpoints.Inc()
		},
	}
}

// Outcome classifies a capability return. Failures surface as text starting
// with "Errore".
func Outcome(e *domain.CapabilityEvent) string {
	switch {
	case e.Skipped:
		return OutcomeRefused
	case strings.HasPrefix(e.Output, "Errore"):
		return OutcomeError
	default:
		return OutcomeOK
	}
}
