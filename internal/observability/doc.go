// Package observability groups the service's logging, metrics and tracing
// infrastructure.
//
// Subpackages:
//   - logging: slog JSON logger and request-scoped fields
//   - metrics: Prometheus metrics for summarization requests
//   - tracing: OpenTelemetry provider setup and HTTP middleware
package observability
