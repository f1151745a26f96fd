package instrumentation

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Status label values.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

const (
	attrMethod       = "method"
	attrPath         = "path"
	attrStatus       = "status"
	attrTool         = "tool"
	attrGroup        = "group"
	attrTransport    = "transport"
	attrOperation    = "operation"
	attrResourceType = "resource_type"
	attrNamespace    = "namespace"
)

var durationBuckets = []float64{0.001, 0.01, 0.1, 0.5, 1.0, 2.5, 5.0, 10.0}

// Metrics records the gateway's metrics. All methods are safe on a nil
// receiver, which is what callers get when instrumentation is disabled.
type Metrics struct {
	toolInvocationsTotal   metric.Int64Counter
	toolInvocationDuration metric.Float64Histogram

	httpRequestsTotal   metric.Int64Counter
	httpRequestDuration metric.Float64Histogram

	sessionsTotal  metric.Int64Counter
	activeSessions metric.Int64UpDownCounter

	k8sOperationsTotal   metric.Int64Counter
	k8sOperationDuration metric.Float64Histogram

	// detailedLabels adds namespace and resource_type to Kubernetes
	// operation metrics. Off by default to bound cardinality.
	detailedLabels bool
}

// NewMetrics creates every instrument on meter.
func NewMetrics(meter metric.Meter, detailedLabels bool) (*Metrics, error) {
	m := &Metrics{detailedLabels: detailedLabels}

	var err error

	m.toolInvocationsTotal, err = meter.Int64Counter(
		"mcp_tool_invocations_total",
		metric.WithDescription("Total number of MCP tool invocations"),
		metric.WithUnit("{invocation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mcp_tool_invocations_total counter: %w", err)
	}

	m.toolInvocationDuration, err = meter.Float64Histogram(
		"mcp_tool_invocation_duration_seconds",
		metric.WithDescription("MCP tool invocation duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBuckets...),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mcp_tool_invocation_duration_seconds histogram: %w", err)
	}

	m.httpRequestsTotal, err = meter.Int64Counter(
		"http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create http_requests_total counter: %w", err)
	}

	m.httpRequestDuration, err = meter.Float64Histogram(
		"http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBuckets...),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create http_request_duration_seconds histogram: %w", err)
	}

	m.sessionsTotal, err = meter.Int64Counter(
		"mcp_sessions_total",
		metric.WithDescription("Total number of transport sessions opened"),
		metric.WithUnit("{session}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mcp_sessions_total counter: %w", err)
	}

	m.activeSessions, err = meter.Int64UpDownCounter(
		"mcp_active_sessions",
		metric.WithDescription("Number of transport sessions currently open"),
		metric.WithUnit("{session}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mcp_active_sessions gauge: %w", err)
	}

	m.k8sOperationsTotal, err = meter.Int64Counter(
		"kubernetes_operations_total",
		metric.WithDescription("Total number of Kubernetes operations"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create kubernetes_operations_total counter: %w", err)
	}

	m.k8sOperationDuration, err = meter.Float64Histogram(
		"kubernetes_operation_duration_seconds",
		metric.WithDescription("Kubernetes operation duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBuckets...),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create kubernetes_operation_duration_seconds histogram: %w", err)
	}

	return m, nil
}

// RecordToolInvocation records one tool call. status is StatusSuccess or
// StatusError; a result flagged isError counts as an error.
func (m *Metrics) RecordToolInvocation(ctx context.Context, tool, group, status string, duration time.Duration) {
	if m == nil || m.toolInvocationsTotal == nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String(attrTool, tool),
		attribute.String(attrGroup, group),
		attribute.String(attrStatus, status),
	)
	m.toolInvocationsTotal.Add(ctx, 1, attrs)
	m.toolInvocationDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordHTTPRequest records an HTTP request with method, path, status code, and duration.
func (m *Metrics) RecordHTTPRequest(ctx context.Context, method, path string, statusCode int, duration time.Duration) {
	if m == nil || m.httpRequestsTotal == nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String(attrMethod, method),
		attribute.String(attrPath, path),
		attribute.String(attrStatus, strconv.Itoa(statusCode)),
	)
	m.httpRequestsTotal.Add(ctx, 1, attrs)
	m.httpRequestDuration.Record(ctx, duration.Seconds(), attrs)
}

// SessionOpened counts a new transport session and marks it active.
func (m *Metrics) SessionOpened(ctx context.Context, transport string) {
	if m == nil || m.sessionsTotal == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String(attrTransport, transport))
	m.sessionsTotal.Add(ctx, 1, attrs)
	m.activeSessions.Add(ctx, 1, attrs)
}

// SessionClosed marks a transport session as no longer active.
func (m *Metrics) SessionClosed(ctx context.Context, transport string) {
	if m == nil || m.activeSessions == nil {
		return
	}
	m.activeSessions.Add(ctx, -1, metric.WithAttributes(attribute.String(attrTransport, transport)))
}

// RecordK8sOperation records a Kubernetes API call.
//
// Without detailed labels only operation and status are recorded; namespace
// and resource_type are left to traces.
func (m *Metrics) RecordK8sOperation(ctx context.Context, operation, resourceType, namespace, status string, duration time.Duration) {
	if m == nil || m.k8sOperationsTotal == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrOperation, operation),
		attribute.String(attrStatus, status),
	}
	if m.detailedLabels {
		attrs = append(attrs,
			attribute.String(attrResourceType, resourceType),
			attribute.String(attrNamespace, namespace),
		)
	}

	m.k8sOperationsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.k8sOperationDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}
