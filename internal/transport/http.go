package transport

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/GeorgeNiotis/bevel-operator-fabric/internal/instrumentation"
	"github.com/GeorgeNiotis/bevel-operator-fabric/internal/logging"
)

// DefaultEndpoint is the path the MCP handler is mounted on.
const DefaultEndpoint = "/mcp"

// StatelessHandler serves JSON-RPC over HTTP POST with no state kept between
// requests.
type StatelessHandler struct {
	handler MessageHandler
	logger  *slog.Logger
	metrics *instrumentation.Metrics
	maxBody int64
}

// HTTPOption configures a StatelessHandler.
type HTTPOption func(*StatelessHandler)

// WithHTTPLogger sets the logger.
func WithHTTPLogger(logger *slog.Logger) HTTPOption {
	return func(h *StatelessHandler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithHTTPMetrics records session metrics.
func WithHTTPMetrics(m *instrumentation.Metrics) HTTPOption {
	return func(h *StatelessHandler) { h.metrics = m }
}

// WithMaxBodyBytes caps the request body size.
func WithMaxBodyBytes(n int64) HTTPOption {
	return func(h *StatelessHandler) {
		if n > 0 {
			h.maxBody = n
		}
	}
}

// NewStatelessHandler returns an http.Handler dispatching request bodies to h.
func NewStatelessHandler(h MessageHandler, opts ...HTTPOption) *StatelessHandler {
	s := &StatelessHandler{
		handler: h,
		logger:  logging.Discard(),
		maxBody: DefaultMaxMessageBytes,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (h *StatelessHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeBody(w, http.StatusMethodNotAllowed, methodNotAllowedBody)
		return
	}
	h.servePost(w, r)
}

func (h *StatelessHandler) servePost(w http.ResponseWriter, r *http.Request) {
	sess := newSession(r.Context(), TransportHTTP, h.logger, h.metrics)
	defer sess.Close()

	tw := &trackingWriter{ResponseWriter: w}
	defer func() {
		if rec := recover(); rec != nil {
			sess.logger.Error("Panic while handling request", slog.Any("panic", rec))
			if !tw.wroteHeader {
				writeBody(tw, http.StatusInternalServerError, internalErrorBody)
			}
		}
	}()

	body, err := io.ReadAll(http.MaxBytesReader(tw, r.Body, h.maxBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeBody(tw, http.StatusRequestEntityTooLarge, bodyTooLargeBody)
			return
		}
		sess.logger.Debug("Failed to read request body", logging.Err(err))
		writeBody(tw, http.StatusBadRequest, parseErrorBody)
		return
	}

	resp, err := sess.handle(sess.ctx, h.handler, body)
	if err != nil {
		sess.logger.Error("Failed to handle request", logging.Err(err))
		if !tw.wroteHeader {
			writeBody(tw, http.StatusInternalServerError, internalErrorBody)
		}
		return
	}
	if resp == nil {
		tw.WriteHeader(http.StatusAccepted)
		return
	}
	writeBody(tw, http.StatusOK, resp)
}

func writeBody(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// trackingWriter remembers whether the status line went out.
type trackingWriter struct {
	http.ResponseWriter
	wroteHeader bool
}

func (w *trackingWriter) WriteHeader(status int) {
	w.wroteHeader = true
	w.ResponseWriter.WriteHeader(status)
}

func (w *trackingWriter) Write(b []byte) (int, error) {
	w.wroteHeader = true
	return w.ResponseWriter.Write(b)
}

func (w *trackingWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
