// Package summarize turns a batch of normalized review texts into one summary
// using a chunk-then-merge strategy over an LLM completer.
package summarize

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"review-summarizer/internal/domain/review"
	"review-summarizer/internal/infra/llm"
	"review-summarizer/internal/observability/logging"
	"review-summarizer/internal/observability/metrics"
	"review-summarizer/internal/observability/tracing"
)

// Completer returns a completion for a prompt.
// *llm.FallbackClient is the production implementation.
type Completer interface {
	Complete(ctx context.Context, prompt llm.Prompt) (string, error)
}

// Result is a finished summary.
type Result struct {
	Summary string
	// Parts is the number of chunks (partial summaries) the summary was built from.
	Parts int
}

// Service summarizes review batches.
type Service struct {
	completer Completer
	prompts   *Prompts
	limits    review.ChunkLimits
	logger    *slog.Logger
}

// NewService creates a new summarize service. A nil prompts uses DefaultPrompts.
func NewService(completer Completer, prompts *Prompts, limits review.ChunkLimits) (*Service, error) {
	if completer == nil {
		return nil, errors.New("completer is required")
	}
	if err := limits.Validate(); err != nil {
		return nil, err
	}
	if prompts == nil {
		prompts = DefaultPrompts()
	}
	return &Service{
		completer: completer,
		prompts:   prompts,
		limits:    limits,
		logger:    slog.Default(),
	}, nil
}

// Summarize chunks texts, summarizes each chunk in order, then merges the
// partial summaries with one final call. The first failing call aborts the
// whole operation and its error is returned unchanged.
func (s *Service) Summarize(ctx context.Context, texts []string) (res Result, err error) {
	if len(texts) == 0 {
		return Result{}, review.ErrNoUsableInput
	}

	done := metrics.TrackInFlight()
	start := time.Now()
	defer func() {
		done()
		metrics.RecordSummary(err == nil, len(texts), res.Parts, time.Since(start))
	}()

	logger := logging.WithRequestID(ctx, s.logger)
	chunks := review.Split(texts, s.limits)
	logger.Info("summarizing reviews",
		slog.Int("reviews", len(texts)),
		slog.Int("chunks", len(chunks)))

	partials := make([]string, 0, len(chunks))
	for i, chunk := range chunks {
		prompt, err := s.prompts.Partial(i+1, len(chunks), chunk.Text())
		if err != nil {
			return Result{}, err
		}

		out, err := s.complete(ctx, "summarize.chunk", prompt,
			attribute.Int("summarize.chunk_index", i+1),
			attribute.Int("summarize.chunk_total", len(chunks)),
			attribute.Int("summarize.chunk_items", len(chunk.Items)),
			attribute.Int("summarize.chunk_chars", chunk.Chars))
		if err != nil {
			logger.Error("chunk summary failed",
				slog.Int("chunk", i+1),
				slog.Int("total", len(chunks)),
				slog.Any("error", err))
			return Result{}, fmt.Errorf("summarize chunk %d/%d: %w", i+1, len(chunks), err)
		}
		partials = append(partials, out)
	}

	prompt, err := s.prompts.Final(partials)
	if err != nil {
		return Result{}, err
	}
	summary, err := s.complete(ctx, "summarize.final", prompt,
		attribute.Int("summarize.partials", len(partials)))
	if err != nil {
		logger.Error("final summary failed", slog.Any("error", err))
		return Result{}, fmt.Errorf("summarize final: %w", err)
	}

	logger.Info("summary completed",
		slog.Int("parts", len(chunks)),
		slog.Duration("duration", time.Since(start)))

	return Result{Summary: summary, Parts: len(chunks)}, nil
}

func (s *Service) complete(ctx context.Context, spanName, user string, attrs ...attribute.KeyValue) (string, error) {
	ctx, span := tracing.GetTracer().Start(ctx, spanName)
	defer span.End()
	span.SetAttributes(attrs...)

	out, err := s.completer.Complete(ctx, llm.Prompt{System: s.prompts.System, User: user})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "completion failed")
		return "", err
	}
	return out, nil
}
