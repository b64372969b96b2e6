package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"review-summarizer/internal/observability/tracing"
	"review-summarizer/internal/resilience/circuitbreaker"
)

// FallbackConfig configures a FallbackClient.
type FallbackConfig struct {
	// Models are tried in order until one succeeds. Must not be empty.
	Models []string

	// AttemptTimeout bounds a single model attempt. Zero leaves the request
	// context as the only deadline.
	AttemptTimeout time.Duration

	// Breaker builds the circuit breaker config per model.
	// Defaults to circuitbreaker.ModelConfig.
	Breaker func(provider, model string) circuitbreaker.Config

	// Metrics defaults to the Prometheus recorder.
	Metrics UpstreamMetricsRecorder
}

// FallbackClient completes a prompt by trying each configured model in order.
//
// Per call the client moves through NOT_STARTED → TRYING(model_i) →
// SUCCESS | TRY_NEXT(model_i+1) | ALL_FAILED. A model is never retried;
// after the last model fails, the last recorded *Error is returned as-is.
type FallbackClient struct {
	provider       Provider
	models         []string
	breakers       map[string]*circuitbreaker.CircuitBreaker
	attemptTimeout time.Duration
	metrics        UpstreamMetricsRecorder
}

// NewFallbackClient creates a client over provider.
func NewFallbackClient(provider Provider, cfg FallbackConfig) (*FallbackClient, error) {
	if provider == nil {
		return nil, errors.New("provider is required")
	}

	models := make([]string, 0, len(cfg.Models))
	for _, m := range cfg.Models {
		if m = strings.TrimSpace(m); m != "" {
			models = append(models, m)
		}
	}
	if len(models) == 0 {
		return nil, errors.New("at least one model is required")
	}

	if cfg.Breaker == nil {
		cfg.Breaker = circuitbreaker.ModelConfig
	}
	if cfg.Metrics == nil {
		cfg.Metrics = NewPrometheusUpstreamMetrics()
	}

	breakers := make(map[string]*circuitbreaker.CircuitBreaker, len(models))
	for _, m := range models {
		if _, ok := breakers[m]; !ok {
			bc := cfg.Breaker(provider.Name(), m)
			if bc.IsSuccessful == nil {
				bc.IsSuccessful = healthyOutcome
			}
			breakers[m] = circuitbreaker.New(bc)
		}
	}

	return &FallbackClient{
		provider:       provider,
		models:         models,
		breakers:       breakers,
		attemptTimeout: cfg.AttemptTimeout,
		metrics:        cfg.Metrics,
	}, nil
}

// Models returns the configured fallback order.
func (c *FallbackClient) Models() []string {
	return append([]string(nil), c.models...)
}

// Complete returns the first non-empty completion among the configured models.
func (c *FallbackClient) Complete(ctx context.Context, prompt Prompt) (string, error) {
	if err := c.provider.Configured(); err != nil {
		slog.ErrorContext(ctx, "upstream provider is not configured",
			slog.String("provider", c.provider.Name()),
			slog.String("error", err.Error()))
		return "", &Error{
			Kind:       KindConfig,
			StatusCode: http.StatusInternalServerError,
			Provider:   c.provider.Name(),
			Message:    err.Error(),
			Err:        err,
		}
	}

	var last *Error
	for i, model := range c.models {
		if err := ctx.Err(); err != nil {
			return "", fmt.Errorf("completion aborted before %s: %w", model, err)
		}

		out, err := c.attempt(ctx, i+1, model, prompt)
		if err == nil {
			if i > 0 {
				slog.InfoContext(ctx, "completion served by fallback model",
					slog.String("provider", c.provider.Name()),
					slog.String("model", model),
					slog.Int("attempt", i+1))
			}
			return out, nil
		}

		last = err
		slog.WarnContext(ctx, "model attempt failed",
			slog.String("provider", c.provider.Name()),
			slog.String("model", model),
			slog.Int("attempt", i+1),
			slog.Int("remaining", len(c.models)-i-1),
			slog.Int("status", err.Status()),
			slog.String("kind", string(err.Kind)),
			slog.String("detail", err.Detail()))
	}

	c.metrics.RecordExhausted(c.provider.Name())
	return "", last
}

// attempt runs one model through its breaker. The returned error is always an *Error.
func (c *FallbackClient) attempt(ctx context.Context, n int, model string, prompt Prompt) (string, *Error) {
	ctx, span := tracing.GetTracer().Start(ctx, "llm.complete",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("llm.provider", c.provider.Name()),
			attribute.String("llm.model", model),
			attribute.Int("llm.attempt", n),
		))
	defer span.End()

	breaker := c.breakers[model]
	start := time.Now()
	result, err := breaker.Execute(func() (interface{}, error) {
		attemptCtx := ctx
		if c.attemptTimeout > 0 {
			var cancel context.CancelFunc
			attemptCtx, cancel = context.WithTimeout(ctx, c.attemptTimeout)
			defer cancel()
		}

		out, err := c.provider.Complete(attemptCtx, model, prompt)
		if err != nil {
			return nil, err
		}
		if strings.TrimSpace(out) == "" {
			return nil, &Error{
				Kind:       KindEmptyResponse,
				StatusCode: http.StatusInternalServerError,
				Provider:   c.provider.Name(),
				Model:      model,
				Message:    "upstream returned an empty completion",
			}
		}
		return out, nil
	})
	duration := time.Since(start)
	c.metrics.RecordBreakerState(c.provider.Name(), model, breaker.IsOpen())

	if err != nil {
		e := c.toError(model, err)
		outcome := OutcomeError
		switch e.Kind {
		case KindEmptyResponse:
			outcome = OutcomeEmpty
		case KindUnavailable:
			outcome = OutcomeUnavailable
		}
		c.metrics.RecordAttempt(c.provider.Name(), model, outcome, duration)

		span.RecordError(e)
		span.SetStatus(codes.Error, e.Message)
		span.SetAttributes(attribute.Int("http.status_code", e.Status()))
		return "", e
	}

	c.metrics.RecordAttempt(c.provider.Name(), model, OutcomeSuccess, duration)
	span.SetStatus(codes.Ok, "")
	return result.(string), nil
}

// toError normalizes whatever came back from the breaker into an *Error.
func (c *FallbackClient) toError(model string, err error) *Error {
	if circuitbreaker.IsRejection(err) {
		cb := c.breakers[model]
		return &Error{
			Kind:       KindUnavailable,
			StatusCode: http.StatusServiceUnavailable,
			Provider:   c.provider.Name(),
			Model:      model,
			Message:    fmt.Sprintf("model temporarily disabled after repeated failures (circuit %s is %s)", cb.Name(), cb.State()),
			Err:        err,
		}
	}
	if e, ok := AsError(err); ok {
		return e
	}
	return &Error{
		Kind:     KindUpstream,
		Provider: c.provider.Name(),
		Model:    model,
		Message:  err.Error(),
		Err:      err,
	}
}

// healthyOutcome reports whether an attempt result says nothing bad about the
// model. Client disconnects and request-side 4xx (bad key, bad request) are
// not model failures; 408 and 429 are.
func healthyOutcome(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return true
	}
	e, ok := AsError(err)
	if !ok || e.Kind != KindUpstream {
		return false
	}
	switch e.StatusCode {
	case http.StatusRequestTimeout, http.StatusTooManyRequests:
		return false
	}
	return e.StatusCode >= 400 && e.StatusCode < 500
}
