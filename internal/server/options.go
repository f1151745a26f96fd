package server

import (
	"errors"
	"log/slog"

	"github.com/GeorgeNiotis/bevel-operator-fabric/internal/dispatch"
	"github.com/GeorgeNiotis/bevel-operator-fabric/internal/instrumentation"
	"github.com/GeorgeNiotis/bevel-operator-fabric/internal/k8s"
)

// DefaultServerName is the name announced in the initialize handshake.
const DefaultServerName = "bevel-operator-fabric"

// Option is a functional option for configuring ServerContext.
type Option func(*ServerContext) error

// WithEngine sets the dispatch engine both transports feed.
func WithEngine(engine *dispatch.Engine) Option {
	return func(sc *ServerContext) error {
		if engine == nil {
			return ErrMissingEngine
		}
		sc.engine = engine
		return nil
	}
}

// WithK8sClient sets the Kubernetes client. It is consulted by the detailed
// health endpoint only; tools hold their own reference.
func WithK8sClient(client k8s.Client) Option {
	return func(sc *ServerContext) error {
		sc.k8sClient = client
		return nil
	}
}

// WithLogger sets the logger for the ServerContext.
func WithLogger(logger *slog.Logger) Option {
	return func(sc *ServerContext) error {
		if logger == nil {
			return ErrMissingLogger
		}
		sc.logger = logger
		return nil
	}
}

// WithConfig sets the configuration for the ServerContext.
func WithConfig(config *Config) Option {
	return func(sc *ServerContext) error {
		if config == nil {
			return ErrMissingConfig
		}
		sc.config = config.Clone()
		return nil
	}
}

// WithInstrumentationProvider sets the OpenTelemetry instrumentation provider.
func WithInstrumentationProvider(provider *instrumentation.Provider) Option {
	return func(sc *ServerContext) error {
		sc.instrumentationProvider = provider
		return nil
	}
}

// Error definitions for ServerContext validation.
var (
	ErrMissingEngine = errors.New("dispatch engine is required")
	ErrMissingLogger = errors.New("logger is required")
	ErrMissingConfig = errors.New("configuration is required")
)
