// Package metrics exposes Prometheus metrics for the tool execution runtime.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the runtime
type Metrics struct {
	registry *prometheus.Registry

	// Execution metrics
	ToolExecutionsTotal      *prometheus.CounterVec
	ToolExecutionDuration    *prometheus.HistogramVec
	ToolExecutionErrorsTotal *prometheus.CounterVec
	ExecutionsActive         prometheus.Gauge

	// Batch metrics
	BatchExecutionsTotal prometheus.Counter
	BatchSizeObserved    prometheus.Histogram

	// Pipeline metrics
	HookBlocksTotal     *prometheus.CounterVec
	ResultsCompressed   prometheus.Counter
	CacheHitsTotal      prometheus.Counter
	DepthLimitHitsTotal prometheus.Counter
}

// NewMetrics creates and registers all metrics
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,

		ToolExecutionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tool_executions_total",
				Help: "Total number of tool executions",
			},
			[]string{"tool_name", "status"},
		),
		ToolExecutionDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tool_execution_duration_seconds",
				Help:    "Duration of tool executions in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"tool_name"},
		),
		ToolExecutionErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tool_execution_errors_total",
				Help: "Total number of tool execution errors",
			},
			[]string{"tool_name", "error_code"},
		),
		ExecutionsActive: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "tool_executions_active",
				Help: "Number of tool executions currently in flight",
			},
		),

		BatchExecutionsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "tool_batch_executions_total",
				Help: "Total number of batch executions",
			},
		),
		BatchSizeObserved: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "tool_batch_size",
				Help:    "Number of calls per batch execution",
				Buckets: []float64{1, 2, 5, 10, 20, 50},
			},
		),

		HookBlocksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tool_hook_blocks_total",
				Help: "Total number of calls blocked by before hooks",
			},
			[]string{"tool_name"},
		),
		ResultsCompressed: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "tool_results_compressed_total",
				Help: "Total number of results that were compressed",
			},
		),
		CacheHitsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "tool_cache_hits_total",
				Help: "Total number of executions served from the result cache",
			},
		),
		DepthLimitHitsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "tool_depth_limit_hits_total",
				Help: "Total number of calls rejected by the nesting depth guard",
			},
		),
	}

	m.registerMetrics()

	return m
}

// registerMetrics registers all metrics with the registry
func (m *Metrics) registerMetrics() {
	m.registry.MustRegister(m.ToolExecutionsTotal)
	m.registry.MustRegister(m.ToolExecutionDuration)
	m.registry.MustRegister(m.ToolExecutionErrorsTotal)
	m.registry.MustRegister(m.ExecutionsActive)

	m.registry.MustRegister(m.BatchExecutionsTotal)
	m.registry.MustRegister(m.BatchSizeObserved)

	m.registry.MustRegister(m.HookBlocksTotal)
	m.registry.MustRegister(m.ResultsCompressed)
	m.registry.MustRegister(m.CacheHitsTotal)
	m.registry.MustRegister(m.DepthLimitHitsTotal)
}

// Handler returns an HTTP handler for the metrics endpoint
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// Registry returns the Prometheus registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
