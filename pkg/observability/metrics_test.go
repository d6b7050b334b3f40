package observability_test

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/cinegraph/pkg/domain"
	"github.com/aretw0/cinegraph/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsHooks(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := observability.NewMetrics(reg)
	require.NoError(t, err)
	hooks := m.Hooks()
	ctx := context.Background()

	hooks.OnNodeEnter(ctx, &domain.NodeEvent{NodeID: domain.NodeAssistant})
	hooks.OnNodeEnter(ctx, &domain.NodeEvent{NodeID: domain.NodeAssistant})
	hooks.OnNodeLeave(ctx, &domain.NodeEvent{NodeID: domain.NodeAssistant, Signal: domain.SignalCall})

	search := domain.CapabilityCall{Name: domain.CapWebSearch}
	hooks.OnCapabilityReturn(ctx, &domain.CapabilityEvent{Call: search, Output: "Risultati per 'x'", Duration: 200 * time.Millisecond})
	hooks.OnCapabilityReturn(ctx, &domain.CapabilityEvent{Call: search, Output: "Errore durante la ricerca: HTTP 503"})
	hooks.OnCapabilityReturn(ctx, &domain.CapabilityEvent{Call: domain.CapabilityCall{Name: domain.CapGenerateArticle}, Skipped: true})
	hooks.OnCheckpoint(ctx, &domain.CheckpointEvent{Step: 1})

	assert.Equal(t, 2.0, testutil.ToFloat64(m.NodeVisits.WithLabelValues("assistant")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Transitions.WithLabelValues("assistant", "call")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CapabilityCalls.WithLabelValues(domain.CapWebSearch, observability.OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CapabilityCalls.WithLabelValues(domain.CapWebSearch, observability.OutcomeError)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CapabilityCalls.WithLabelValues(domain.CapGenerateArticle, observability.OutcomeRefused)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Checkpoints))
	assert.Equal(t, 1, testutil.CollectAndCount(m.CapabilityDuration), "refused calls are not timed")
}

func TestNewMetrics_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := observability.NewMetrics(reg)
	require.NoError(t, err)
	_, err = observability.NewMetrics(reg)
	assert.Error(t, err)
}
