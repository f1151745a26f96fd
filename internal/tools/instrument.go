package tools

import (
	"context"
	"log/slog"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"go.opentelemetry.io/otel/attribute"

	"github.com/GeorgeNiotis/bevel-operator-fabric/internal/dispatch"
	"github.com/GeorgeNiotis/bevel-operator-fabric/internal/instrumentation"
	"github.com/GeorgeNiotis/bevel-operator-fabric/internal/logging"
)

// Instrument returns middleware recording a span, an invocation metric and a
// log line for every tool call. metrics may be nil.
func Instrument(metrics *instrumentation.Metrics, logger *slog.Logger) dispatch.CapabilityMiddleware {
	if logger == nil {
		logger = logging.Discard()
	}

	return func(c dispatch.Capability) dispatch.Capability {
		next := c.Handler
		name, group := c.Name(), c.Group.String()
		log := logging.WithTool(logger, name).With(slog.String(logging.KeyGroup, group))

		c.Handler = func(ctx context.Context, req mcp.CallToolRequest) (out any, err error) {
			ctx, span := instrumentation.StartToolSpan(ctx, name, group)
			defer span.End()

			start := time.Now()
			out, err = next(ctx, req)
			elapsed := time.Since(start)

			status := instrumentation.StatusSuccess
			if failed(out, err) {
				status = instrumentation.StatusError
			}
			metrics.RecordToolInvocation(ctx, name, group, status, elapsed)

			if status == instrumentation.StatusError {
				if err != nil {
					instrumentation.SetSpanError(span, err)
				} else {
					span.SetAttributes(attribute.Bool(instrumentation.SpanAttrToolError, true))
				}
				log.Info("Tool call failed", logging.Duration(elapsed), logging.SanitizedErr(err))
				return out, err
			}

			instrumentation.SetSpanSuccess(span)
			log.Debug("Tool call completed", logging.Duration(elapsed))
			return out, err
		}
		return c
	}
}

func failed(out any, err error) bool {
	if err != nil {
		return true
	}
	r, ok := out.(*mcp.CallToolResult)
	return ok && r != nil && r.IsError
}
