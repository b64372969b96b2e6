// Package logging builds the application's log/slog loggers and carries
// request-scoped fields (request ID, trace ID) through context.
//
// Example usage:
//
//	logger := logging.NewLogger(os.Stdout, cfg.LogLevel)
//	slog.SetDefault(logger)
//
//	func handle(ctx context.Context) {
//	    logging.WithRequestID(ctx, logger).Info("summarizing", slog.Int("reviews", n))
//	}
package logging
