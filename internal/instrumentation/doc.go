// Package instrumentation provides OpenTelemetry metrics and tracing for the
// gateway.
//
// # Metrics
//
//   - mcp_tool_invocations_total{tool,group,status}: tool calls, where a
//     result flagged isError counts as status="error"
//   - mcp_tool_invocation_duration_seconds: tool call latency
//   - mcp_sessions_total{transport} and mcp_active_sessions: transport sessions
//   - http_requests_total, http_request_duration_seconds: HTTP transport traffic
//   - kubernetes_operations_total, kubernetes_operation_duration_seconds:
//     API server calls, labelled by operation and status (plus namespace and
//     resource_type when METRICS_DETAILED_LABELS=true)
//
// # Tracing
//
// Spans are named tool.<name> for tool invocations, prompt.<name> for prompt
// renders, mcp.message for each transport message (tagged with the session)
// and k8s.<operation> for API server calls.
//
// # Configuration
//
// Instrumentation is off unless INSTRUMENTATION_ENABLED=true. Other variables:
//   - METRICS_EXPORTER: prometheus (default), otlp, stdout
//   - TRACING_EXPORTER: none (default), otlp, stdout
//   - OTEL_EXPORTER_OTLP_ENDPOINT, OTEL_EXPORTER_OTLP_INSECURE
//   - OTEL_TRACES_SAMPLER_ARG: sampling ratio, default 0.1
//   - OTEL_SERVICE_NAME: default bevel-mcp-server
//
// # Example Usage
//
//	cfg, err := instrumentation.LoadConfig()
//	if err != nil {
//		return err
//	}
//	provider, err := instrumentation.NewProvider(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer provider.Shutdown(ctx)
//
//	provider.Metrics().RecordToolInvocation(ctx, "k8s-list-pods", "kubernetes", "success", time.Since(start))
package instrumentation
