package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/GeorgeNiotis/bevel-operator-fabric/internal/server"
	"github.com/GeorgeNiotis/bevel-operator-fabric/internal/transport"
)

// runStdioServer serves newline-delimited JSON-RPC on stdin/stdout until
// stdin closes or ctx is cancelled. Nothing but protocol frames may be
// written to stdout.
func runStdioServer(ctx context.Context, sc *server.ServerContext, cfg ServeConfig, stdin io.Reader, stdout io.Writer) error {
	stdio := transport.NewStdioServer(sc.Engine(),
		transport.WithStdioLogger(sc.Logger()),
		transport.WithStdioMetrics(sc.Metrics()),
		transport.WithStdioConcurrency(cfg.StdioConcurrency),
		transport.WithMaxLineBytes(int(cfg.MaxMessageBytes)),
	)

	if err := stdio.Serve(ctx, stdin, stdout); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("server stopped with error: %w", err)
	}
	return nil
}
