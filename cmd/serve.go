package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/GeorgeNiotis/bevel-operator-fabric/internal/dispatch"
	"github.com/GeorgeNiotis/bevel-operator-fabric/internal/instrumentation"
	"github.com/GeorgeNiotis/bevel-operator-fabric/internal/k8s"
	"github.com/GeorgeNiotis/bevel-operator-fabric/internal/logging"
	"github.com/GeorgeNiotis/bevel-operator-fabric/internal/prompts"
	"github.com/GeorgeNiotis/bevel-operator-fabric/internal/server"
	"github.com/GeorgeNiotis/bevel-operator-fabric/internal/tools"
	"github.com/GeorgeNiotis/bevel-operator-fabric/internal/tools/hlf"
	"github.com/GeorgeNiotis/bevel-operator-fabric/internal/tools/kubernetes"
	"github.com/GeorgeNiotis/bevel-operator-fabric/internal/tools/utility"
)

// newServeCmd creates the Cobra command for starting the MCP server.
func newServeCmd() *cobra.Command {
	var f serveFlags

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP gateway",
		Long: `Start the MCP gateway for Kubernetes and Hyperledger Fabric using the
Model Context Protocol.

Supported transports:
  - stdio: newline-delimited JSON-RPC on stdin/stdout (default)
  - streamable-http: stateless JSON-RPC over HTTP POST

Configuration is read from the environment (and an optional .env file);
flags set on the command line take precedence. Set K8S_DISABLED=true to run
without a cluster.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := loadServeSettings(cmd, f)
			if err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			return runServe(ctx, settings, cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.transport, "transport", transportStdio, "Transport type: stdio or streamable-http (env MCP_TRANSPORT)")
	flags.StringVar(&f.httpAddr, "http-addr", "", "HTTP listen address (default :$PORT, PORT defaults to 3000)")
	flags.StringVar(&f.httpEndpoint, "http-endpoint", "/mcp", "HTTP endpoint path for the streamable-http transport")
	flags.StringVar(&f.kubeconfig, "kubeconfig", "", "Path to the kubeconfig file (default $KUBECONFIG or ~/.kube/config)")
	flags.StringVar(&f.kubeContext, "context", "", "Kubeconfig context to use (default current-context)")
	flags.BoolVar(&f.inCluster, "in-cluster", false, "Use the pod service account instead of a kubeconfig")
	flags.Float32Var(&f.qps, "qps", k8s.DefaultQPSLimit, "QPS limit for Kubernetes API calls")
	flags.IntVar(&f.burst, "burst", k8s.DefaultBurstLimit, "Burst limit for Kubernetes API calls")
	flags.DurationVar(&f.timeout, "timeout", k8s.DefaultTimeout, "Timeout for Kubernetes API calls")
	flags.BoolVar(&f.debug, "debug", false, "Enable debug logging (env DEBUG)")
	flags.StringVar(&f.logLevel, "log-level", "info", "Log level: debug, info, warn or error (env LOG_LEVEL)")
	flags.StringVar(&f.logFormat, "log-format", "text", "Log format: text or json (env LOG_FORMAT)")
	flags.StringVar(&f.envFile, "env-file", "", "Load environment variables from this file (default .env when present)")
	flags.StringVar(&f.metricsAddr, "metrics-addr", server.DefaultMetricsAddr, "Listen address of the Prometheus metrics server")
	flags.BoolVar(&f.enableMetrics, "enable-metrics", true, "Serve /metrics when INSTRUMENTATION_ENABLED=true and the prometheus exporter is used")

	return cmd
}

// runServe bootstraps the cluster connection, builds the engine and runs the
// selected transport until ctx is cancelled. Logs go to stderr only.
func runServe(ctx context.Context, s serveSettings, stdin io.Reader, stdout, stderr io.Writer) error {
	logger, err := logging.New(stderr, s.Serve.LogLevel, s.Serve.LogFormat)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	s.Bootstrap.Logger = logger
	conn, err := k8s.Bootstrap(s.Bootstrap)
	if err != nil {
		return fmt.Errorf("bootstrap kubernetes connection: %w", err)
	}

	s.Instrumentation.ServiceVersion = rootCmd.Version
	provider, err := instrumentation.NewProvider(ctx, s.Instrumentation)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		if err := provider.Shutdown(context.Background()); err != nil {
			logger.Error("Instrumentation shutdown failed", logging.Err(err))
		}
	}()
	if provider.Enabled() {
		logger.Info("OpenTelemetry instrumentation enabled",
			slog.String("metrics", s.Instrumentation.MetricsExporter),
			slog.String("tracing", s.Instrumentation.TracingExporter))
	}

	client := k8s.NewClient(conn, k8s.WithLogger(logger), k8s.WithMetrics(provider.Metrics()))

	engine, err := buildEngine(client, logger, provider.Metrics(), rootCmd.Version)
	if err != nil {
		return err
	}

	serverContext, err := server.NewServerContext(ctx,
		server.WithEngine(engine),
		server.WithK8sClient(client),
		server.WithLogger(logger),
		server.WithInstrumentationProvider(provider),
		server.WithConfig(&server.Config{
			ServerName: server.DefaultServerName,
			Version:    rootCmd.Version,
			Transport:  s.Serve.Transport,
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to create server context: %w", err)
	}
	defer func() {
		_ = serverContext.Shutdown()
	}()

	metricsServer, err := startMetricsServer(s.Serve, provider, logger)
	if err != nil {
		return err
	}
	if metricsServer != nil {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
			defer cancel()
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				logger.Error("Metrics server shutdown failed", logging.Err(err))
			}
		}()
	}

	logger.Info("Starting MCP gateway",
		slog.String("transport", s.Serve.Transport),
		slog.Int("tools", len(engine.ListCapabilities().Tools)),
		slog.Int("prompts", len(engine.ListPrompts().Prompts)),
		slog.Bool("kubernetes_disabled", conn.Context.Disabled))

	switch s.Serve.Transport {
	case transportStdio:
		return runStdioServer(ctx, serverContext, s.Serve, stdin, stdout)
	case transportStreamableHTTP:
		return runStreamableHTTPServer(ctx, serverContext, s)
	default:
		return fmt.Errorf("unsupported transport type: %s (supported: stdio, streamable-http)", s.Serve.Transport)
	}
}

// buildEngine registers every capability group and prompt and puts the
// mcp-go core behind the engine for initialize, ping and notifications.
func buildEngine(client k8s.Client, logger *slog.Logger, metrics *instrumentation.Metrics, version string) (*dispatch.Engine, error) {
	catalogue, err := prompts.Load()
	if err != nil {
		return nil, fmt.Errorf("load prompts: %w", err)
	}

	registries := dispatch.NewRegistries(logger, tools.Instrument(metrics, logger))
	registries.RegisterContributors(
		kubernetes.New(client),
		hlf.New(client),
		utility.New(client),
	)
	registries.RegisterPromptSources(catalogue)

	core := mcpserver.NewMCPServer(server.DefaultServerName, version,
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithPromptCapabilities(true),
		mcpserver.WithRecovery(),
	)

	return dispatch.NewEngine(registries, core, dispatch.WithEngineLogger(logger)), nil
}

// startMetricsServer starts the dedicated metrics listener when metrics are
// enabled and exported through Prometheus. It returns nil otherwise.
func startMetricsServer(cfg ServeConfig, provider *instrumentation.Provider, logger *slog.Logger) (*server.MetricsServer, error) {
	if !cfg.EnableMetrics || !provider.Enabled() || provider.Metrics() == nil {
		return nil, nil
	}

	metricsServer, err := server.NewMetricsServer(server.MetricsServerConfig{
		Addr:                    cfg.MetricsAddr,
		Enabled:                 cfg.EnableMetrics,
		InstrumentationProvider: provider,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics server: %w", err)
	}

	go func() {
		if err := metricsServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Metrics server error", logging.Err(err))
		}
	}()

	logger.Info("Metrics server started", slog.String("addr", metricsServer.Addr()), slog.String("endpoint", "/metrics"))
	return metricsServer, nil
}
