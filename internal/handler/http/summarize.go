package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"review-summarizer/internal/domain/review"
	"review-summarizer/internal/handler/http/respond"
	"review-summarizer/internal/infra/llm"
	"review-summarizer/internal/observability/logging"
	"review-summarizer/internal/usecase/summarize"
)

// Summarizer is the use case behind POST /summarize.
type Summarizer interface {
	Summarize(ctx context.Context, texts []string) (summarize.Result, error)
}

// sampleSize is how many normalized reviews are echoed in sample_reviews.
const sampleSize = 5

// SummarizeResponse is the success body of POST /summarize.
type SummarizeResponse struct {
	Summary string `json:"summary"`
	Parts   int    `json:"parts"`
	// NumReviews counts the reviews that survived normalization.
	NumReviews    int      `json:"num_reviews"`
	SampleReviews []string `json:"sample_reviews"`
}

// expectedShapes is returned in "expect" on 400 so callers can fix the request.
var expectedShapes = []any{
	map[string]any{"reviews": []any{map[string]any{"text": "Great product"}, "Fast shipping"}},
	map[string]any{"text": "Great product"},
}

// SummarizeHandler handles POST /summarize.
type SummarizeHandler struct {
	Svc       Summarizer
	Normalize review.NormalizeOptions
	Logger    *slog.Logger
}

func (h *SummarizeHandler) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// ServeHTTP decodes the body, normalizes it into review texts and returns the summary.
func (h *SummarizeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !allowMethods(w, r, http.MethodPost) {
		return
	}
	ctx := r.Context()
	logger := logging.WithRequestID(ctx, h.logger())

	body, err := decodeBody(r.Body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			logger.Warn("request body too large", slog.Int64("limit", maxErr.Limit))
			respond.Error(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		msg := "invalid JSON body"
		if errors.Is(err, io.EOF) {
			msg = "empty request body"
		}
		logger.Warn("rejecting request", slog.Int("status", http.StatusBadRequest), slog.String("error", err.Error()))
		respond.Invalid(w, msg, expectedShapes)
		return
	}

	texts, err := review.Normalize(body, h.Normalize)
	if err != nil {
		logger.Warn("rejecting request", slog.Int("status", http.StatusBadRequest), slog.String("error", err.Error()))
		respond.Invalid(w, err.Error(), expectedShapes)
		return
	}

	res, err := h.Svc.Summarize(ctx, texts)
	if err != nil {
		h.writeError(w, logger, err)
		return
	}

	respond.JSON(w, http.StatusOK, SummarizeResponse{
		Summary:       res.Summary,
		Parts:         res.Parts,
		NumReviews:    len(texts),
		SampleReviews: texts[:min(len(texts), sampleSize)],
	})
}

// errTrailingData rejects bodies such as `{"text":"a"} xyz`.
var errTrailingData = errors.New("unexpected data after JSON value")

// decodeBody decodes exactly one JSON value from r.
func decodeBody(r io.Reader) (any, error) {
	dec := json.NewDecoder(r)
	var body any
	if err := dec.Decode(&body); err != nil {
		return nil, err
	}
	var extra json.RawMessage
	switch err := dec.Decode(&extra); {
	case errors.Is(err, io.EOF):
		return body, nil
	case err != nil:
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, err
		}
	}
	return nil, errTrailingData
}

// writeError maps summarize failures onto HTTP. Upstream failures keep the
// upstream status code; anything unrecognized is a 500.
func (h *SummarizeHandler) writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	if review.IsValidation(err) {
		respond.Invalid(w, err.Error(), expectedShapes)
		return
	}

	if e, ok := llm.AsError(err); ok {
		logger.Error("summarize failed",
			slog.Int("status", e.Status()),
			slog.String("kind", string(e.Kind)),
			slog.String("provider", e.Provider),
			slog.String("model", e.Model),
			slog.String("error", respond.SanitizeError(err)))
		respond.ErrorDetail(w, e.Status(), errorMessage(e), e.Detail())
		return
	}

	if errors.Is(err, context.Canceled) {
		// クライアント切断。書き込んでも届かない
		logger.Info("summarize cancelled by client")
		return
	}

	logger.Error("summarize failed",
		slog.Int("status", http.StatusInternalServerError),
		slog.String("error", respond.SanitizeError(err)))
	respond.ErrorDetail(w, http.StatusInternalServerError, "summarization failed", err.Error())
}

func errorMessage(e *llm.Error) string {
	switch e.Kind {
	case llm.KindConfig:
		return "upstream is not configured"
	case llm.KindEmptyResponse:
		return "upstream returned an empty summary"
	case llm.KindUnavailable:
		return "upstream temporarily unavailable"
	default:
		return "upstream request failed"
	}
}
