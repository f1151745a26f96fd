// Package logging provides structured logging utilities for the gateway.
//
// It centralizes attribute naming and logger construction on top of the
// standard library's slog package, so every component emits the same keys
// for tools, sessions, protocol methods and errors.
//
// Create a logger and attach per-call attributes:
//
//	logger, err := logging.New(os.Stderr, "info", logging.FormatJSON)
//	if err != nil {
//		return err
//	}
//	logging.WithTool(logger, "k8s-list-pods").Info("tool invoked",
//		logging.Namespace("default"),
//		logging.Status(logging.StatusSuccess))
//
// API server URLs and error messages coming back from the cluster should be
// logged through Host and SanitizedErr, which redact IP addresses.
package logging
