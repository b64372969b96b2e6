package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"review-summarizer/internal/utils/text"
)

// ClaudeConfig holds configuration parameters for the Claude provider.
type ClaudeConfig struct {
	// APIKey is the Anthropic API key. An empty key is reported by Configured.
	APIKey string

	// BaseURL overrides the API root.
	BaseURL string

	// Temperature is the sampling temperature.
	Temperature float64

	// MaxTokens is the maximum number of tokens for the response. Required by the API.
	MaxTokens int

	// HTTPClient replaces the SDK's default client when set.
	HTTPClient *http.Client
}

// Claude implements Provider using Anthropic's messages API.
type Claude struct {
	client anthropic.Client
	config ClaudeConfig
}

// NewClaude creates a new Claude provider.
// SDK-level retries are disabled; failover happens across models instead.
func NewClaude(cfg ClaudeConfig) *Claude {
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 1024
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}

	slog.Info("Initialized Claude provider",
		slog.Int("max_tokens", cfg.MaxTokens),
		slog.Bool("api_key_set", cfg.APIKey != ""))

	return &Claude{
		client: anthropic.NewClient(opts...),
		config: cfg,
	}
}

// Name implements Provider.
func (c *Claude) Name() string { return "claude" }

// Configured implements Provider.
func (c *Claude) Configured() error {
	if strings.TrimSpace(c.config.APIKey) == "" {
		return fmt.Errorf("%w: set ANTHROPIC_API_KEY", ErrMissingCredential)
	}
	return nil
}

// Complete implements Provider.
func (c *Claude) Complete(ctx context.Context, model string, prompt Prompt) (string, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: int64(c.config.MaxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt.User)),
		},
		Temperature: anthropic.Float(c.config.Temperature),
	}
	if prompt.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: prompt.System}}
	}

	start := time.Now()
	message, err := c.client.Messages.New(ctx, params)
	duration := time.Since(start)

	if err != nil {
		slog.ErrorContext(ctx, "Claude completion failed",
			slog.String("model", model),
			slog.Duration("duration", duration),
			slog.String("error", err.Error()))
		return "", c.classify(model, err)
	}

	var b strings.Builder
	for _, block := range message.Content {
		if tb, ok := block.AsAny().(anthropic.TextBlock); ok {
			b.WriteString(tb.Text)
		}
	}
	content := strings.TrimSpace(b.String())

	slog.DebugContext(ctx, "Claude completion finished",
		slog.String("model", model),
		slog.Int("output_length", text.CountRunes(content)),
		slog.Duration("duration", duration))

	return content, nil
}

// classify converts SDK errors into *Error, keeping the upstream status and body.
func (c *Claude) classify(model string, err error) *Error {
	e := &Error{Kind: KindUpstream, Provider: c.Name(), Model: model, Err: err}

	var apiErr *anthropic.Error
	switch {
	case errors.As(err, &apiErr):
		e.StatusCode = apiErr.StatusCode
		e.Message = "claude api error"
		e.Body = apiErr.RawJSON()
	case errors.Is(err, context.DeadlineExceeded):
		e.StatusCode = http.StatusGatewayTimeout
		e.Message = "claude request timed out"
	default:
		e.Message = err.Error()
	}
	return e
}
