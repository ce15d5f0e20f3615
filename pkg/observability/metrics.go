// Package observability provides Prometheus metrics and OpenTelemetry
// tracing for the MCP server.
package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsConfig configures the metrics set.
type MetricsConfig struct {
	ServiceName    string
	ServiceVersion string

	Namespace        string    // default: mcp
	HistogramBuckets []float64 // request latency buckets in seconds
	ConstLabels      prometheus.Labels
}

// Metrics holds the server's Prometheus collectors. Each instance owns
// its registry so tests never collide on global state.
type Metrics struct {
	registry *prometheus.Registry

	requestTotal      *prometheus.CounterVec
	requestDuration   *prometheus.HistogramVec
	toolCallTotal     *prometheus.CounterVec
	toolCallDuration  *prometheus.HistogramVec
	activeConnections *prometheus.GaugeVec
	errorTotal        *prometheus.CounterVec
}

// NewMetrics builds and registers the server metric set.
func NewMetrics(config MetricsConfig) *Metrics {
	if config.Namespace == "" {
		config.Namespace = "mcp"
	}
	if config.HistogramBuckets == nil {
		config.HistogramBuckets = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
	}
	if config.ConstLabels == nil {
		config.ConstLabels = prometheus.Labels{}
	}
	if config.ServiceName != "" {
		config.ConstLabels["service"] = config.ServiceName
	}
	if config.ServiceVersion != "" {
		config.ConstLabels["version"] = config.ServiceVersion
	}

	m := &Metrics{registry: prometheus.NewRegistry()}

	m.requestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "requests_total",
			Help:        "Total number of MCP requests handled",
			ConstLabels: config.ConstLabels,
		},
		[]string{"method", "transport", "status"},
	)

	m.requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Name:        "request_duration_seconds",
			Help:        "Duration of MCP request handling in seconds",
			Buckets:     config.HistogramBuckets,
			ConstLabels: config.ConstLabels,
		},
		[]string{"method", "transport"},
	)

	m.toolCallTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "tool_calls_total",
			Help:        "Total number of tool invocations",
			ConstLabels: config.ConstLabels,
		},
		[]string{"tool", "status"},
	)

	m.toolCallDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Name:        "tool_call_duration_seconds",
			Help:        "Duration of tool invocations in seconds",
			Buckets:     config.HistogramBuckets,
			ConstLabels: config.ConstLabels,
		},
		[]string{"tool"},
	)

	m.activeConnections = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Name:        "connections_active",
			Help:        "Number of active client connections per transport",
			ConstLabels: config.ConstLabels,
		},
		[]string{"transport"},
	)

	m.errorTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "errors_total",
			Help:        "Total number of errors by category",
			ConstLabels: config.ConstLabels,
		},
		[]string{"category", "method"},
	)

	m.registry.MustRegister(
		m.requestTotal,
		m.requestDuration,
		m.toolCallTotal,
		m.toolCallDuration,
		m.activeConnections,
		m.errorTotal,
	)

	return m
}

// RecordRequest records a handled request.
func (m *Metrics) RecordRequest(method, transport, status string, duration time.Duration) {
	m.requestTotal.WithLabelValues(method, transport, status).Inc()
	m.requestDuration.WithLabelValues(method, transport).Observe(duration.Seconds())
}

// RecordToolCall records a tool invocation.
func (m *Metrics) RecordToolCall(tool, status string, duration time.Duration) {
	m.toolCallTotal.WithLabelValues(tool, status).Inc()
	m.toolCallDuration.WithLabelValues(tool).Observe(duration.Seconds())
}

// RecordError records an error by taxonomy category.
func (m *Metrics) RecordError(category, method string) {
	m.errorTotal.WithLabelValues(category, method).Inc()
}

// ConnectionOpened bumps the active connection gauge for a transport.
func (m *Metrics) ConnectionOpened(transport string) {
	m.activeConnections.WithLabelValues(transport).Inc()
}

// ConnectionClosed decrements the active connection gauge.
func (m *Metrics) ConnectionClosed(transport string) {
	m.activeConnections.WithLabelValues(transport).Dec()
}

// Handler returns the HTTP handler serving this metric set.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
