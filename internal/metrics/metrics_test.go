package metrics

import (
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetrics_IndependentRegistries(t *testing.T) {
	// Two instances must not collide on metric registration.
	a := NewMetrics()
	b := NewMetrics()

	a.ToolExecutionsTotal.WithLabelValues("echo", "ok").Inc()

	assert.Equal(t, float64(1), testutil.ToFloat64(a.ToolExecutionsTotal.WithLabelValues("echo", "ok")))
	assert.Equal(t, float64(0), testutil.ToFloat64(b.ToolExecutionsTotal.WithLabelValues("echo", "ok")))
}

func TestMetrics_Counters(t *testing.T) {
	m := NewMetrics()

	m.ExecutionsActive.Inc()
	m.ExecutionsActive.Dec()
	m.BatchExecutionsTotal.Inc()
	m.HookBlocksTotal.WithLabelValues("echo").Inc()
	m.CacheHitsTotal.Inc()
	m.DepthLimitHitsTotal.Inc()
	m.ResultsCompressed.Inc()

	assert.Equal(t, float64(0), testutil.ToFloat64(m.ExecutionsActive))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.BatchExecutionsTotal))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.HookBlocksTotal.WithLabelValues("echo")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.CacheHitsTotal))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.DepthLimitHitsTotal))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.ResultsCompressed))
}

func TestMetrics_Handler(t *testing.T) {
	m := NewMetrics()
	m.ToolExecutionsTotal.WithLabelValues("echo", "ok").Inc()

	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, req)

	require.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), "tool_executions_total")
}

func TestMetrics_Registry(t *testing.T) {
	m := NewMetrics()

	families, err := m.Registry().Gather()
	require.NoError(t, err)

	// Vec metrics without observations are absent; scalar ones are present.
	names := make(map[string]bool, len(families))
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["tool_executions_active"])
}
