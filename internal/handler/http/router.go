package http

import (
	"log/slog"
	"net/http"

	"review-summarizer/internal/domain/review"
)

// RouterConfig wires the handlers.
type RouterConfig struct {
	Summarizer Summarizer
	Normalize  review.NormalizeOptions
	Version    string
	Logger     *slog.Logger
}

// NewRouter registers every route on a new ServeMux.
func NewRouter(cfg RouterConfig) *http.ServeMux {
	health := &HealthHandler{}

	mux := http.NewServeMux()
	mux.Handle("/{$}", &RootHandler{Version: cfg.Version})
	mux.Handle("/health", health)
	mux.Handle("/healthz", health)
	mux.Handle("/metrics", MetricsHandler())
	mux.Handle("/summarize", &SummarizeHandler{
		Svc:       cfg.Summarizer,
		Normalize: cfg.Normalize,
		Logger:    cfg.Logger,
	})
	return mux
}
