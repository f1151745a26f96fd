package middleware

import (
	"net/http"
	"time"

	"github.com/GeorgeNiotis/bevel-operator-fabric/internal/instrumentation"
)

// UnmatchedRoute labels requests no mux route claimed.
const UnmatchedRoute = "unmatched"

// HTTPMetrics counts and times every response of the gateway's HTTP surface.
// Series are keyed by the ServeMux route that served the request, so the MCP
// endpoint and the health endpoints each get one label and every stray URL
// shares UnmatchedRoute. Install it outside the mux. A nil or disabled
// provider leaves the handler untouched.
func HTTPMetrics(provider *instrumentation.Provider) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if provider == nil || !provider.Enabled() {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sr := &statusRecorder{ResponseWriter: w}
			next.ServeHTTP(sr, r)
			provider.Metrics().RecordHTTPRequest(r.Context(), r.Method, routeLabel(r), sr.Status(), time.Since(start))
		})
	}
}

// routeLabel reads the pattern ServeMux stored on r while routing it.
func routeLabel(r *http.Request) string {
	if r.Pattern == "" {
		return UnmatchedRoute
	}
	return r.Pattern
}

// statusRecorder remembers the first status sent through it.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

// Status is 200 for handlers that wrote a body without a header, and for
// handlers that wrote nothing at all.
func (s *statusRecorder) Status() int {
	if s.status == 0 {
		return http.StatusOK
	}
	return s.status
}

func (s *statusRecorder) WriteHeader(code int) {
	if s.status == 0 {
		s.status = code
	}
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	if s.status == 0 {
		s.status = http.StatusOK
	}
	return s.ResponseWriter.Write(b)
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (s *statusRecorder) Unwrap() http.ResponseWriter {
	return s.ResponseWriter
}

func (s *statusRecorder) Flush() {
	if f, ok := s.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
