package instrumentation

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
)

// Exporter names accepted by Config.
const (
	ExporterPrometheus = "prometheus"
	ExporterOTLP       = "otlp"
	ExporterStdout     = "stdout"
	ExporterNone       = "none"
)

// DefaultMetricInterval is the push interval for the OTLP and stdout metric exporters.
const DefaultMetricInterval = 10 * time.Second

// Config holds the configuration for OpenTelemetry instrumentation.
type Config struct {
	ServiceName    string `env:"OTEL_SERVICE_NAME" envDefault:"bevel-mcp-server"`
	ServiceVersion string

	// Enabled determines if instrumentation is active. When false the
	// provider hands out a nil *Metrics and tracing stays a no-op.
	Enabled bool `env:"INSTRUMENTATION_ENABLED" envDefault:"false"`

	MetricsExporter string `env:"METRICS_EXPORTER" envDefault:"prometheus" validate:"oneof=prometheus otlp stdout"`
	TracingExporter string `env:"TRACING_EXPORTER" envDefault:"none" validate:"oneof=otlp stdout none"`

	// OTLPEndpoint is the collector URL, for example http://localhost:4318.
	OTLPEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`

	// OTLPInsecure disables TLS towards the collector. Local development only.
	OTLPInsecure bool `env:"OTEL_EXPORTER_OTLP_INSECURE"`

	TraceSamplingRate float64 `env:"OTEL_TRACES_SAMPLER_ARG" envDefault:"0.1" validate:"gte=0,lte=1"`

	// DetailedLabels adds namespace and resource labels to Kubernetes
	// operation metrics.
	DetailedLabels bool `env:"METRICS_DETAILED_LABELS"`
}

var configValidator = validator.New(validator.WithRequiredStructEnabled())

// LoadConfig reads the instrumentation settings from the environment.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse instrumentation env: %w", err)
	}
	return cfg, nil
}

// Validate checks the exporter selection. A disabled configuration is always valid.
func (c Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if err := configValidator.Struct(c); err != nil {
		return fmt.Errorf("invalid instrumentation config: %w", err)
	}
	if c.OTLPEndpoint == "" && (c.MetricsExporter == ExporterOTLP || c.TracingExporter == ExporterOTLP) {
		return errors.New("invalid instrumentation config: OTEL_EXPORTER_OTLP_ENDPOINT is required for the otlp exporter")
	}
	return nil
}
