// Package server holds the process-level plumbing shared by both transports.
//
// ServerContext carries the dispatch engine, the cluster client, the logger,
// the instrumentation provider and the server identity. It is built once
// with functional options:
//
//	sc, err := server.NewServerContext(ctx,
//		server.WithEngine(engine),
//		server.WithK8sClient(client),
//		server.WithLogger(logger),
//		server.WithInstrumentationProvider(provider),
//	)
//	if err != nil {
//		return err
//	}
//	defer sc.Shutdown()
//
// For the streamable HTTP transport the package also assembles the handler
// tree (NewHTTPHandler): the stateless MCP endpoint, /healthz, /readyz and
// /healthz/detailed, wrapped in request metrics, security headers and
// optional CORS. Prometheus metrics are served by a separate MetricsServer.
package server
