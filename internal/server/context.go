package server

import (
	"context"
	"log/slog"
	"sync"

	"github.com/GeorgeNiotis/bevel-operator-fabric/internal/dispatch"
	"github.com/GeorgeNiotis/bevel-operator-fabric/internal/instrumentation"
	"github.com/GeorgeNiotis/bevel-operator-fabric/internal/k8s"
)

// ServerContext encapsulates the dependencies shared by both transports.
// It is populated once at startup and read concurrently afterwards.
type ServerContext struct {
	engine                  *dispatch.Engine
	k8sClient               k8s.Client
	logger                  *slog.Logger
	config                  *Config
	instrumentationProvider *instrumentation.Provider

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.RWMutex
	shutdown bool
}

// NewServerContext creates a ServerContext with the given options. An engine
// and a logger are required.
func NewServerContext(ctx context.Context, opts ...Option) (*ServerContext, error) {
	ctx, cancel := context.WithCancel(ctx)

	sc := &ServerContext{
		config: NewDefaultConfig(),
		ctx:    ctx,
		cancel: cancel,
	}

	for _, opt := range opts {
		if err := opt(sc); err != nil {
			cancel()
			return nil, err
		}
	}

	if err := sc.validate(); err != nil {
		cancel()
		return nil, err
	}

	return sc, nil
}

// Context returns the server's root context. It is cancelled on Shutdown.
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// Engine returns the dispatch engine.
func (sc *ServerContext) Engine() *dispatch.Engine {
	return sc.engine
}

// K8sClient returns the Kubernetes client, or nil when none was configured.
func (sc *ServerContext) K8sClient() k8s.Client {
	return sc.k8sClient
}

// Logger returns the server logger.
func (sc *ServerContext) Logger() *slog.Logger {
	return sc.logger
}

// Config returns the server configuration.
func (sc *ServerContext) Config() *Config {
	return sc.config
}

// InstrumentationProvider returns the OpenTelemetry provider, which may be nil.
func (sc *ServerContext) InstrumentationProvider() *instrumentation.Provider {
	return sc.instrumentationProvider
}

// Metrics returns the metric recorder, or nil when instrumentation is off.
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	if sc.instrumentationProvider == nil {
		return nil
	}
	return sc.instrumentationProvider.Metrics()
}

// Shutdown cancels the server context. It is idempotent.
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.logger.Info("Shutting down server context")
	sc.cancel()
	sc.shutdown = true
	return nil
}

// IsShutdown reports whether Shutdown has been called.
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

func (sc *ServerContext) validate() error {
	if sc.engine == nil {
		return ErrMissingEngine
	}
	if sc.logger == nil {
		return ErrMissingLogger
	}
	return nil
}

// Config holds the server identity and the transport selection.
type Config struct {
	ServerName string `json:"serverName"`
	Version    string `json:"version"`

	// Transport is either "stdio" or "streamable-http".
	Transport string `json:"transport"`
}

// NewDefaultConfig creates a configuration with sensible defaults.
func NewDefaultConfig() *Config {
	return &Config{
		ServerName: DefaultServerName,
		Version:    "dev",
		Transport:  "stdio",
	}
}

// Clone returns a copy of the configuration.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	clone := *c
	return &clone
}
