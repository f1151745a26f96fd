package transport

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/GeorgeNiotis/bevel-operator-fabric/internal/instrumentation"
	"github.com/GeorgeNiotis/bevel-operator-fabric/internal/logging"
)

// Transport names used in logs and metrics.
const (
	TransportStdio = "stdio"
	TransportHTTP  = "http"
)

// MessageHandler processes one raw JSON-RPC message or batch. A nil response
// means nothing is sent back. An error means no response could be produced.
type MessageHandler interface {
	HandleMessage(ctx context.Context, raw json.RawMessage) (json.RawMessage, error)
}

type sessionKey struct{}

// SessionIDFromContext returns the id of the transport session ctx belongs to.
func SessionIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(sessionKey{}).(string)
	return id, ok
}

// session scopes one logical client connection.
type session struct {
	id        string
	transport string
	ctx       context.Context
	cancel    context.CancelFunc
	started   time.Time
	logger    *slog.Logger
	metrics   *instrumentation.Metrics
	closeOnce sync.Once
}

func newSession(parent context.Context, transport string, logger *slog.Logger, metrics *instrumentation.Metrics) *session {
	id := uuid.NewString()
	ctx, cancel := context.WithCancel(context.WithValue(parent, sessionKey{}, id))

	s := &session{
		id:        id,
		transport: transport,
		ctx:       ctx,
		cancel:    cancel,
		started:   time.Now(),
		logger:    logging.WithSession(logger, id),
		metrics:   metrics,
	}
	metrics.SessionOpened(ctx, transport)
	s.logger.Debug("Session opened", slog.String("transport", transport))
	return s
}

// Close releases the session. It is safe to call more than once.
func (s *session) Close() {
	s.closeOnce.Do(func() {
		s.cancel()
		s.metrics.SessionClosed(context.WithoutCancel(s.ctx), s.transport)
		s.logger.Debug("Session closed",
			slog.String("transport", s.transport),
			logging.Duration(time.Since(s.started)))
	})
}

// handle passes one message to h inside a span tagged with the session.
func (s *session) handle(ctx context.Context, h MessageHandler, raw json.RawMessage) (json.RawMessage, error) {
	ctx, span := instrumentation.StartSpan(ctx, "mcp.message",
		attribute.String(instrumentation.SpanAttrSession, s.id),
		attribute.String(instrumentation.SpanAttrTransport, s.transport))
	defer span.End()

	resp, err := h.HandleMessage(ctx, raw)
	instrumentation.SetSpanError(span, err)
	return resp, err
}

// Canned error bodies written when the engine could not produce a response.
var (
	methodNotAllowedBody = []byte(`{"jsonrpc":"2.0","error":{"code":-32000,"message":"Method not allowed."},"id":null}`)
	internalErrorBody    = []byte(`{"jsonrpc":"2.0","error":{"code":-32603,"message":"Internal server error"},"id":null}`)
	parseErrorBody       = []byte(`{"jsonrpc":"2.0","error":{"code":-32700,"message":"Parse error"},"id":null}`)
	bodyTooLargeBody     = []byte(`{"jsonrpc":"2.0","error":{"code":-32600,"message":"Request body too large"},"id":null}`)
)
