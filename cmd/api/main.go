package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"review-summarizer/internal/config"
	"review-summarizer/internal/domain/review"
	hhttp "review-summarizer/internal/handler/http"
	"review-summarizer/internal/handler/http/middleware"
	"review-summarizer/internal/handler/http/requestid"
	"review-summarizer/internal/infra/llm"
	"review-summarizer/internal/observability/logging"
	"review-summarizer/internal/observability/tracing"
	"review-summarizer/internal/resilience/circuitbreaker"
	"review-summarizer/internal/usecase/summarize"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger := initLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Init(ctx, tracing.Config{
		Enabled:        cfg.Tracing.Enabled,
		ServiceName:    "review-summarizer",
		ServiceVersion: cfg.Version,
		OTLPEndpoint:   cfg.Tracing.OTLPEndpoint,
		Logger:         logger,
	})
	if err != nil {
		logger.Error("failed to initialize tracing", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Error("failed to shut down tracing", slog.Any("error", err))
		}
	}()

	handler, err := setupServer(logger, cfg)
	if err != nil {
		logger.Error("failed to set up server", slog.Any("error", err))
		os.Exit(1)
	}

	if err := runServer(ctx, logger, cfg, handler); err != nil {
		logger.Error("server failed", slog.Any("error", err))
		os.Exit(1)
	}
}

// initLogger initializes the JSON logger and makes it the process default.
func initLogger(cfg *config.Config) *slog.Logger {
	logger := logging.NewLogger(os.Stdout, cfg.LogLevel)
	slog.SetDefault(logger)
	return logger
}

// newProvider builds the upstream provider selected by LLM_PROVIDER.
// The API key may be empty; the first completion then fails with a config error.
func newProvider(cfg config.LLMConfig) llm.Provider {
	switch cfg.Provider {
	case config.ProviderClaude:
		return llm.NewClaude(llm.ClaudeConfig{
			APIKey:      cfg.Credential(),
			BaseURL:     cfg.BaseURL,
			Temperature: cfg.Temperature,
			MaxTokens:   cfg.MaxTokens,
		})
	case config.ProviderNoOp:
		return llm.NewNoOp()
	default:
		return llm.NewOpenAI(llm.OpenAIConfig{
			APIKey:      cfg.Credential(),
			BaseURL:     cfg.BaseURL,
			Temperature: float32(cfg.Temperature),
			MaxTokens:   cfg.MaxTokens,
		})
	}
}

// breakerConfig applies the LLM_CB_* settings to every model breaker.
func breakerConfig(cb config.CircuitBreakerConfig) func(provider, model string) circuitbreaker.Config {
	return func(provider, model string) circuitbreaker.Config {
		return circuitbreaker.Config{
			Name:             provider + "/" + model,
			MaxRequests:      cb.MaxRequests,
			Interval:         cb.Interval,
			Timeout:          cb.Timeout,
			FailureThreshold: cb.FailureThreshold,
			MinRequests:      cb.MinRequests,
		}
	}
}

// loadPrompts returns the default prompts or those of PROMPT_CONFIG_FILE.
func loadPrompts(logger *slog.Logger, path string) (*summarize.Prompts, error) {
	if path == "" {
		return summarize.DefaultPrompts(), nil
	}
	profile, err := config.LoadPromptProfile(path)
	if err != nil {
		return nil, err
	}
	logger.Info("prompt profile loaded", slog.String("path", path))
	return summarize.NewPrompts(profile)
}

// setupServer wires the summarize pipeline and returns the HTTP handler with all middleware.
func setupServer(logger *slog.Logger, cfg *config.Config) (http.Handler, error) {
	provider := newProvider(cfg.LLM)
	if err := provider.Configured(); err != nil {
		// 起動は継続する。/summarize が設定エラーを返す
		logger.Warn("upstream credential missing", slog.String("provider", provider.Name()), slog.Any("error", err))
	}

	client, err := llm.NewFallbackClient(provider, llm.FallbackConfig{
		Models:         cfg.LLM.ModelList(),
		AttemptTimeout: cfg.LLM.Timeout,
		Breaker:        breakerConfig(cfg.LLM.CircuitBreaker),
	})
	if err != nil {
		return nil, err
	}

	prompts, err := loadPrompts(logger, cfg.PromptConfigFile)
	if err != nil {
		return nil, err
	}

	svc, err := summarize.NewService(client, prompts, review.ChunkLimits{
		MaxItems: cfg.Review.ChunkMaxItems,
		MaxChars: cfg.Review.ChunkMaxChars,
	})
	if err != nil {
		return nil, err
	}

	corsConfig, err := middleware.NewCORSConfig(cfg.CORSAllowedOrigins, logger)
	if err != nil {
		return nil, err
	}

	logger.Info("summarizer configured",
		slog.String("provider", provider.Name()),
		slog.Any("models", client.Models()),
		slog.Duration("attempt_timeout", cfg.LLM.Timeout),
		slog.Int("chunk_max_items", cfg.Review.ChunkMaxItems),
		slog.Int("chunk_max_chars", cfg.Review.ChunkMaxChars),
		slog.Any("cors_allowed_origins", corsConfig.AllowedOrigins))

	mux := hhttp.NewRouter(hhttp.RouterConfig{
		Summarizer: svc,
		Normalize: review.NormalizeOptions{
			MaxLength:   cfg.Review.MaxLength,
			StripMarkup: cfg.Review.StripHTML,
		},
		Version: cfg.Version,
		Logger:  logger,
	})

	// Middleware order: CORS → Request ID → Tracing → Recovery → Logging → Body Limit → Metrics
	return hhttp.Chain(mux,
		hhttp.Middleware(middleware.CORS(corsConfig)),
		requestid.Middleware,
		tracing.Middleware,
		hhttp.Recover(logger),
		hhttp.Logging(logger),
		hhttp.LimitRequestBody(cfg.MaxBodyBytes),
		hhttp.MetricsMiddleware,
	), nil
}

// runServer serves until ctx is cancelled, then shuts down gracefully.
func runServer(ctx context.Context, logger *slog.Logger, cfg *config.Config, handler http.Handler) error {
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second, // Prevent Slowloris attacks
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("server starting",
			slog.String("addr", srv.Addr),
			slog.String("version", cfg.Version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		logger.Info("server stopped")
		return nil
	})

	return g.Wait()
}
