// Package tracing provides OpenTelemetry tracing integration.
//
// Init installs a global tracer provider. Spans are exported over OTLP/gRPC
// when OTEL_EXPORTER_OTLP_ENDPOINT is set and to stdout otherwise. When tracing
// is disabled the global no-op provider stays in place and spans cost nothing.
//
// Example usage:
//
//	shutdown, err := tracing.Init(ctx, tracing.Config{Enabled: true, ServiceName: "review-summarizer"})
//	if err != nil {
//	    return err
//	}
//	defer shutdown(context.Background())
//
//	ctx, span := tracing.GetTracer().Start(ctx, "summarize.chunk")
//	defer span.End()
package tracing
