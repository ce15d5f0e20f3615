package observability

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsRecordRequest(t *testing.T) {
	m := NewMetrics(MetricsConfig{ServiceName: "payload-mcp", ServiceVersion: "1.0.0"})

	m.RecordRequest("tools/call", "stdio", "ok", 5*time.Millisecond)
	m.RecordRequest("tools/call", "stdio", "ok", 7*time.Millisecond)
	m.RecordRequest("tools/call", "http", "error", time.Millisecond)

	assert.Equal(t, float64(2), testutil.ToFloat64(
		m.requestTotal.WithLabelValues("tools/call", "stdio", "ok")))
	assert.Equal(t, float64(1), testutil.ToFloat64(
		m.requestTotal.WithLabelValues("tools/call", "http", "error")))
}

func TestMetricsConnections(t *testing.T) {
	m := NewMetrics(MetricsConfig{})

	m.ConnectionOpened("tcp")
	m.ConnectionOpened("tcp")
	m.ConnectionClosed("tcp")

	assert.Equal(t, float64(1), testutil.ToFloat64(
		m.activeConnections.WithLabelValues("tcp")))
}

func TestMetricsHandlerServesRegistry(t *testing.T) {
	m := NewMetrics(MetricsConfig{})
	m.RecordToolCall("validate", "ok", time.Millisecond)
	m.RecordError("validation", "tools/call")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Result().Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), "mcp_tool_calls_total"))
	assert.True(t, strings.Contains(string(body), "mcp_errors_total"))
}

func TestMetricsIsolatedRegistries(t *testing.T) {
	a := NewMetrics(MetricsConfig{})
	b := NewMetrics(MetricsConfig{})

	a.RecordToolCall("echo", "ok", time.Millisecond)

	assert.Equal(t, float64(1), testutil.ToFloat64(a.toolCallTotal.WithLabelValues("echo", "ok")))
	assert.Equal(t, float64(0), testutil.ToFloat64(b.toolCallTotal.WithLabelValues("echo", "ok")))
}

func TestTracingProviderNoop(t *testing.T) {
	tp, err := NewTracingProvider(TracingConfig{
		ServiceName:  "payload-mcp",
		ExporterType: ExporterTypeNoop,
	})
	require.NoError(t, err)
	defer tp.Shutdown(context.Background())

	ctx, span := tp.StartMethodSpan(context.Background(), "tools/list", "stdio")
	require.NotNil(t, span)
	tp.RecordError(ctx, assert.AnError)
	span.End()
}

func TestTracingProviderUnknownExporter(t *testing.T) {
	_, err := NewTracingProvider(TracingConfig{ExporterType: "zipkin"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "zipkin")
}
