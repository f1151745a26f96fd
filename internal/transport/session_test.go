package transport

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/GeorgeNiotis/bevel-operator-fabric/internal/instrumentation"
	"github.com/GeorgeNiotis/bevel-operator-fabric/internal/logging"
)

func TestSessionHandleRecordsSpan(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(previous)
		_ = tp.Shutdown(context.Background())
	})

	sess := newSession(context.Background(), TransportStdio, logging.Discard(), nil)
	defer sess.Close()

	_, err := sess.handle(sess.ctx, newEchoHandler(), json.RawMessage(`{"jsonrpc":"2.0","id":1,"method":"ping"}`))
	require.NoError(t, err)

	failing := handlerFunc(func(context.Context, json.RawMessage) (json.RawMessage, error) { return nil, errEngine })
	_, err = sess.handle(sess.ctx, failing, json.RawMessage(`{}`))
	require.ErrorIs(t, err, errEngine)

	spans := exporter.GetSpans()
	require.Len(t, spans, 2)
	for _, span := range spans {
		assert.Equal(t, "mcp.message", span.Name)
		attrs := map[string]string{}
		for _, kv := range span.Attributes {
			attrs[string(kv.Key)] = kv.Value.AsString()
		}
		assert.Equal(t, sess.id, attrs[instrumentation.SpanAttrSession])
		assert.Equal(t, TransportStdio, attrs[instrumentation.SpanAttrTransport])
	}
	assert.Equal(t, codes.Error, spans[1].Status.Code)
}
