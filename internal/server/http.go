package server

import (
	"net/http"
	"time"

	"github.com/GeorgeNiotis/bevel-operator-fabric/internal/server/middleware"
	"github.com/GeorgeNiotis/bevel-operator-fabric/internal/transport"
)

const (
	// DefaultReadHeaderTimeout is the default timeout for reading request headers.
	DefaultReadHeaderTimeout = 10 * time.Second

	// DefaultWriteTimeout covers slow tool calls such as exec and log reads.
	DefaultWriteTimeout = 120 * time.Second

	// DefaultIdleTimeout is the default idle timeout for keepalive connections.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultShutdownTimeout is the default timeout for graceful server shutdown.
	DefaultShutdownTimeout = 30 * time.Second
)

// HTTPConfig configures the streamable HTTP front end.
type HTTPConfig struct {
	Addr     string
	Endpoint string

	// MaxBodyBytes caps one POST body. Zero keeps the transport default.
	MaxBodyBytes int64

	EnableHSTS     bool
	AllowedOrigins []string
}

// NewHTTPHandler assembles the HTTP surface: the stateless MCP endpoint,
// the health endpoints and the middleware chain around them.
func NewHTTPHandler(sc *ServerContext, cfg HTTPConfig, health *HealthChecker) http.Handler {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = transport.DefaultEndpoint
	}

	opts := []transport.HTTPOption{
		transport.WithHTTPLogger(sc.Logger()),
		transport.WithHTTPMetrics(sc.Metrics()),
	}
	if cfg.MaxBodyBytes > 0 {
		opts = append(opts, transport.WithMaxBodyBytes(cfg.MaxBodyBytes))
	}

	mux := http.NewServeMux()
	mux.Handle(endpoint, transport.NewStatelessHandler(sc.Engine(), opts...))
	health.RegisterHealthEndpoints(mux)

	var handler http.Handler = mux
	if len(cfg.AllowedOrigins) > 0 {
		handler = middleware.CORS(cfg.AllowedOrigins)(handler)
	}
	handler = middleware.SecurityHeaders(middleware.SecurityHeadersConfig{EnableHSTS: cfg.EnableHSTS})(handler)
	handler = middleware.HTTPMetrics(sc.InstrumentationProvider())(handler)
	return handler
}

// NewHTTPServer wraps handler in an http.Server with the default timeouts.
func NewHTTPServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: DefaultReadHeaderTimeout,
		WriteTimeout:      DefaultWriteTimeout,
		IdleTimeout:       DefaultIdleTimeout,
	}
}
