package cmd

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/GeorgeNiotis/bevel-operator-fabric/internal/instrumentation"
	"github.com/GeorgeNiotis/bevel-operator-fabric/internal/k8s"
	"github.com/GeorgeNiotis/bevel-operator-fabric/internal/server/middleware"
)

// Transport type constants for the MCP server.
const (
	transportStdio          = "stdio"
	transportStreamableHTTP = "streamable-http"
)

// defaultEnvFile is loaded when present and --env-file is not given.
const defaultEnvFile = ".env"

// ServeConfig holds the serve command settings read from the environment
// and overridden by flags.
type ServeConfig struct {
	Transport    string `env:"MCP_TRANSPORT" envDefault:"stdio" validate:"oneof=stdio streamable-http"`
	Port         int    `env:"PORT" envDefault:"3000" validate:"min=1,max=65535"`
	HTTPAddr     string `env:"MCP_HTTP_ADDR"`
	HTTPEndpoint string `env:"MCP_HTTP_ENDPOINT" envDefault:"/mcp" validate:"startswith=/"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn warning error"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text" validate:"oneof=text json"`
	Debug     bool   `env:"DEBUG"`

	MetricsAddr   string `env:"METRICS_ADDR" envDefault:":9090"`
	EnableMetrics bool   `env:"ENABLE_METRICS" envDefault:"true"`

	AllowedOrigins string `env:"ALLOWED_ORIGINS"`
	EnableHSTS     bool   `env:"ENABLE_HSTS"`

	StdioConcurrency int   `env:"MCP_STDIO_CONCURRENCY" envDefault:"8" validate:"min=1,max=256"`
	MaxMessageBytes  int64 `env:"MCP_MAX_MESSAGE_BYTES" envDefault:"4194304" validate:"min=1024"`
}

// serveSettings bundles everything runServe needs.
type serveSettings struct {
	Serve           ServeConfig
	Bootstrap       k8s.BootstrapConfig
	Instrumentation instrumentation.Config
	Origins         []string
}

// serveFlags are the raw flag values. A flag only wins over the environment
// when it was set explicitly.
type serveFlags struct {
	transport     string
	httpAddr      string
	httpEndpoint  string
	kubeconfig    string
	kubeContext   string
	inCluster     bool
	qps           float32
	burst         int
	timeout       time.Duration
	debug         bool
	envFile       string
	metricsAddr   string
	enableMetrics bool
	logLevel      string
	logFormat     string
}

var configValidator = validator.New(validator.WithRequiredStructEnabled())

// loadEnvFile loads an explicit env file, failing when it is missing, or
// the default .env when one exists. Existing variables are never overridden.
func loadEnvFile(path string) error {
	if path != "" {
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("load env file %s: %w", path, err)
		}
		return nil
	}
	if _, err := os.Stat(defaultEnvFile); err == nil {
		if err := godotenv.Load(defaultEnvFile); err != nil {
			return fmt.Errorf("load env file %s: %w", defaultEnvFile, err)
		}
	}
	return nil
}

// loadServeSettings resolves the configuration: env file, then environment,
// then explicitly set flags, then derived defaults and validation.
func loadServeSettings(cmd *cobra.Command, f serveFlags) (serveSettings, error) {
	if err := loadEnvFile(f.envFile); err != nil {
		return serveSettings{}, err
	}

	var s serveSettings
	if err := env.Parse(&s.Serve); err != nil {
		return serveSettings{}, fmt.Errorf("parse env: %w", err)
	}

	var err error
	if s.Bootstrap, err = k8s.LoadBootstrapConfig(); err != nil {
		return serveSettings{}, err
	}
	if s.Instrumentation, err = instrumentation.LoadConfig(); err != nil {
		return serveSettings{}, err
	}

	applyFlags(cmd, f, &s)

	if s.Serve.Debug {
		s.Serve.LogLevel = "debug"
		s.Bootstrap.Debug = true
	}
	if s.Serve.HTTPAddr == "" {
		s.Serve.HTTPAddr = ":" + strconv.Itoa(s.Serve.Port)
	}

	if err := validateServeSettings(&s); err != nil {
		return serveSettings{}, err
	}
	return s, nil
}

func applyFlags(cmd *cobra.Command, f serveFlags, s *serveSettings) {
	changed := cmd.Flags().Changed

	if changed("transport") {
		s.Serve.Transport = f.transport
	}
	if changed("http-addr") {
		s.Serve.HTTPAddr = f.httpAddr
	}
	if changed("http-endpoint") {
		s.Serve.HTTPEndpoint = f.httpEndpoint
	}
	if changed("debug") {
		s.Serve.Debug = f.debug
	}
	if changed("log-level") {
		s.Serve.LogLevel = f.logLevel
	}
	if changed("log-format") {
		s.Serve.LogFormat = f.logFormat
	}
	if changed("metrics-addr") {
		s.Serve.MetricsAddr = f.metricsAddr
	}
	if changed("enable-metrics") {
		s.Serve.EnableMetrics = f.enableMetrics
	}

	if changed("kubeconfig") {
		s.Bootstrap.KubeconfigPath = f.kubeconfig
	}
	if changed("context") {
		s.Bootstrap.Context = f.kubeContext
	}
	if changed("in-cluster") {
		s.Bootstrap.InCluster = f.inCluster
	}
	if changed("qps") {
		s.Bootstrap.QPSLimit = f.qps
	}
	if changed("burst") {
		s.Bootstrap.BurstLimit = f.burst
	}
	if changed("timeout") {
		s.Bootstrap.Timeout = f.timeout
	}
}

func validateServeSettings(s *serveSettings) error {
	if err := configValidator.Struct(s.Serve); err != nil {
		return fmt.Errorf("invalid serve configuration: %w", err)
	}

	if s.Serve.Transport == transportStreamableHTTP {
		if _, _, err := net.SplitHostPort(s.Serve.HTTPAddr); err != nil {
			return fmt.Errorf("invalid --http-addr %q: %w", s.Serve.HTTPAddr, err)
		}
		origins, err := middleware.ValidateAllowedOrigins(s.Serve.AllowedOrigins)
		if err != nil {
			return fmt.Errorf("invalid ALLOWED_ORIGINS: %w", err)
		}
		s.Origins = origins
	}

	if s.Bootstrap.InCluster && s.Bootstrap.KubeconfigPath != "" {
		return errors.New("--in-cluster and --kubeconfig are mutually exclusive")
	}

	return s.Instrumentation.Validate()
}
