package instrumentation

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newTestMetrics(t *testing.T, detailed bool) (*Metrics, *sdkmetric.ManualReader) {
	t.Helper()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	m, err := NewMetrics(mp.Meter("test"), detailed)
	require.NoError(t, err)
	return m, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := map[string]metricdata.Metrics{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func sumPoints(t *testing.T, m metricdata.Metrics) []metricdata.DataPoint[int64] {
	t.Helper()

	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "metric %s is not an int64 sum", m.Name)
	return sum.DataPoints
}

func TestMetrics_RecordToolInvocation(t *testing.T) {
	m, reader := newTestMetrics(t, false)
	ctx := context.Background()

	m.RecordToolInvocation(ctx, "hlf-list-peers", "hlf", StatusSuccess, 20*time.Millisecond)
	m.RecordToolInvocation(ctx, "hlf-list-peers", "hlf", StatusSuccess, 30*time.Millisecond)
	m.RecordToolInvocation(ctx, "k8s-get-pod", "kubernetes", StatusError, time.Millisecond)

	got := collect(t, reader)
	require.Contains(t, got, "mcp_tool_invocations_total")
	require.Contains(t, got, "mcp_tool_invocation_duration_seconds")

	counts := map[string]int64{}
	for _, dp := range sumPoints(t, got["mcp_tool_invocations_total"]) {
		tool, _ := dp.Attributes.Value(attribute.Key(attrTool))
		status, _ := dp.Attributes.Value(attribute.Key(attrStatus))
		counts[tool.AsString()+"/"+status.AsString()] = dp.Value
	}
	assert.Equal(t, map[string]int64{
		"hlf-list-peers/success": 2,
		"k8s-get-pod/error":      1,
	}, counts)
}

func TestMetrics_Sessions(t *testing.T) {
	m, reader := newTestMetrics(t, false)
	ctx := context.Background()

	m.SessionOpened(ctx, "http")
	m.SessionOpened(ctx, "http")
	m.SessionClosed(ctx, "http")

	got := collect(t, reader)

	total := sumPoints(t, got["mcp_sessions_total"])
	require.Len(t, total, 1)
	assert.Equal(t, int64(2), total[0].Value)

	active := sumPoints(t, got["mcp_active_sessions"])
	require.Len(t, active, 1)
	assert.Equal(t, int64(1), active[0].Value)
}

func TestMetrics_RecordK8sOperation_Labels(t *testing.T) {
	tests := []struct {
		name     string
		detailed bool
		wantKeys []string
	}{
		{name: "low cardinality", detailed: false, wantKeys: []string{attrOperation, attrStatus}},
		{name: "detailed", detailed: true, wantKeys: []string{attrOperation, attrStatus, attrResourceType, attrNamespace}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, reader := newTestMetrics(t, tt.detailed)
			m.RecordK8sOperation(context.Background(), "list", "fabricpeers", "fabric", StatusSuccess, time.Millisecond)

			points := sumPoints(t, collect(t, reader)["kubernetes_operations_total"])
			require.Len(t, points, 1)

			var keys []string
			for _, kv := range points[0].Attributes.ToSlice() {
				keys = append(keys, string(kv.Key))
			}
			assert.ElementsMatch(t, tt.wantKeys, keys)
		})
	}
}

func TestMetrics_RecordHTTPRequest(t *testing.T) {
	m, reader := newTestMetrics(t, false)

	m.RecordHTTPRequest(context.Background(), "POST", "/mcp", 200, 5*time.Millisecond)

	points := sumPoints(t, collect(t, reader)["http_requests_total"])
	require.Len(t, points, 1)
	status, _ := points[0].Attributes.Value(attribute.Key(attrStatus))
	assert.Equal(t, "200", status.AsString())
}

func TestMetrics_NilReceiver(t *testing.T) {
	var m *Metrics
	ctx := context.Background()

	assert.NotPanics(t, func() {
		m.RecordToolInvocation(ctx, "t", "g", StatusSuccess, time.Second)
		m.RecordHTTPRequest(ctx, "GET", "/healthz", 200, time.Second)
		m.RecordK8sOperation(ctx, "list", "pods", "default", StatusSuccess, time.Second)
		m.SessionOpened(ctx, "stdio")
		m.SessionClosed(ctx, "stdio")
	})
}

func TestMetrics_ConcurrentRecording(t *testing.T) {
	m, reader := newTestMetrics(t, false)
	ctx := context.Background()

	const goroutines = 50
	var wg sync.WaitGroup
	wg.Add(goroutines)
	for range goroutines {
		go func() {
			defer wg.Done()
			m.RecordToolInvocation(ctx, "parse-yaml", "utility", StatusSuccess, time.Millisecond)
		}()
	}
	wg.Wait()

	points := sumPoints(t, collect(t, reader)["mcp_tool_invocations_total"])
	require.Len(t, points, 1)
	assert.Equal(t, int64(goroutines), points[0].Value)
}
