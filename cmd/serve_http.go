package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/GeorgeNiotis/bevel-operator-fabric/internal/logging"
	"github.com/GeorgeNiotis/bevel-operator-fabric/internal/server"
)

// runStreamableHTTPServer serves the stateless MCP endpoint and the health
// endpoints until ctx is cancelled, then drains in-flight requests.
func runStreamableHTTPServer(ctx context.Context, sc *server.ServerContext, s serveSettings) error {
	healthChecker := server.NewHealthChecker(sc)
	handler := server.NewHTTPHandler(sc, server.HTTPConfig{
		Addr:           s.Serve.HTTPAddr,
		Endpoint:       s.Serve.HTTPEndpoint,
		MaxBodyBytes:   s.Serve.MaxMessageBytes,
		EnableHSTS:     s.Serve.EnableHSTS,
		AllowedOrigins: s.Origins,
	}, healthChecker)

	httpServer := server.NewHTTPServer(s.Serve.HTTPAddr, handler)
	logger := sc.Logger()

	logger.Info("Streamable HTTP server starting",
		slog.String("addr", s.Serve.HTTPAddr),
		slog.String("endpoint", s.Serve.HTTPEndpoint),
		slog.Any("health_endpoints", []string{"/healthz", "/readyz", "/healthz/detailed"}),
		slog.Int("allowed_origins", len(s.Origins)))

	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverDone <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received, stopping HTTP server")
		healthChecker.SetReady(false)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown failed", logging.Err(err))
			return fmt.Errorf("error shutting down HTTP server: %w", err)
		}
		logger.Info("HTTP server stopped")
		return nil
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("HTTP server stopped with error: %w", err)
		}
		return nil
	}
}
