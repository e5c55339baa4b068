// Package observability provides Prometheus metrics for SDK generations,
// streams, tool executions, and the cache middleware. Metrics register
// on the default registry at package load; embedders expose them by
// mounting Handler on any mux.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// LLMBuckets defines histogram buckets suited for LLM inference
// latencies, ranging from 100ms to 120s.
var LLMBuckets = []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120}

var (
	// GenerationsTotal counts finished generations by outcome.
	GenerationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aisdk_generations_total",
			Help: "Finished generations",
		},
		[]string{"provider", "model", "outcome"},
	)

	// GenerationDuration records end-to-end generation duration in
	// seconds, including all loop steps and tool executions.
	GenerationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "aisdk_generation_duration_seconds",
			Help:    "Generation duration",
			Buckets: LLMBuckets,
		},
		[]string{"provider", "model"},
	)

	// TokensTotal counts tokens by direction (input/output).
	TokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aisdk_tokens_total",
			Help: "Token count",
		},
		[]string{"provider", "model", "direction"},
	)

	// StreamEventsTotal counts canonical stream events by type.
	StreamEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aisdk_stream_events_total",
			Help: "Canonical stream events",
		},
		[]string{"type"},
	)

	// ActiveStreams tracks the number of in-flight streaming generations.
	ActiveStreams = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "aisdk_active_streams",
			Help: "Active streaming generations",
		},
	)

	// ToolExecutionsTotal counts tool executions by name and outcome.
	ToolExecutionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aisdk_tool_executions_total",
			Help: "Tool executions",
		},
		[]string{"tool", "outcome"},
	)

	// ToolDuration records tool execution duration in seconds.
	ToolDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "aisdk_tool_duration_seconds",
			Help:    "Tool execution duration",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"tool"},
	)

	// CacheRequestsTotal counts cache middleware operations by outcome.
	CacheRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aisdk_cache_requests_total",
			Help: "Cache operations",
		},
		[]string{"op", "outcome"},
	)

	// ChainRequestsTotal counts requests through the metrics middleware.
	// Unlike GenerationsTotal it includes requests served by outer
	// middlewares such as cache hits.
	ChainRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aisdk_chain_requests_total",
			Help: "Requests through the middleware chain",
		},
		[]string{"op", "outcome"},
	)

	// ChainRequestDuration records chain request duration in seconds.
	ChainRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "aisdk_chain_request_duration_seconds",
			Help:    "Middleware chain request duration",
			Buckets: LLMBuckets,
		},
		[]string{"op"},
	)
)

func init() {
	prometheus.MustRegister(
		GenerationsTotal,
		GenerationDuration,
		TokensTotal,
		StreamEventsTotal,
		ActiveStreams,
		ToolExecutionsTotal,
		ToolDuration,
		CacheRequestsTotal,
		ChainRequestsTotal,
		ChainRequestDuration,
	)
}

// Handler returns an http.Handler serving the default registry in
// Prometheus exposition format, for embedders that expose a /metrics
// endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
