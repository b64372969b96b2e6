package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"review-summarizer/internal/utils/text"
)

// OpenAIConfig holds configuration parameters for the OpenAI provider.
type OpenAIConfig struct {
	// APIKey is the bearer credential. An empty key is reported by Configured.
	APIKey string

	// BaseURL overrides the API root (default https://api.openai.com/v1).
	// Useful for OpenAI-compatible gateways and for tests.
	BaseURL string

	// Temperature is the sampling temperature. Default: 0.3.
	Temperature float32

	// MaxTokens is the maximum number of tokens for the response.
	MaxTokens int

	// HTTPClient replaces the SDK's default client when set.
	HTTPClient *http.Client
}

// OpenAI implements Provider using the chat completions API.
type OpenAI struct {
	client *openai.Client
	config OpenAIConfig
}

// NewOpenAI creates a new OpenAI provider. The key is not validated here so the
// server can start without it; the first completion fails with a config error.
func NewOpenAI(cfg OpenAIConfig) *OpenAI {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	if cfg.HTTPClient != nil {
		clientCfg.HTTPClient = cfg.HTTPClient
	}

	slog.Info("Initialized OpenAI provider",
		slog.String("base_url", clientCfg.BaseURL),
		slog.Bool("api_key_set", cfg.APIKey != ""))

	return &OpenAI{
		client: openai.NewClientWithConfig(clientCfg),
		config: cfg,
	}
}

// Name implements Provider.
func (o *OpenAI) Name() string { return "openai" }

// Configured implements Provider.
func (o *OpenAI) Configured() error {
	if strings.TrimSpace(o.config.APIKey) == "" {
		return fmt.Errorf("%w: set OPENAI_API_KEY", ErrMissingCredential)
	}
	return nil
}

// Complete implements Provider.
func (o *OpenAI) Complete(ctx context.Context, model string, prompt Prompt) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if prompt.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: prompt.System,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: prompt.User,
	})

	start := time.Now()
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       model,
		Messages:    messages,
		Temperature: o.config.Temperature,
		MaxTokens:   o.config.MaxTokens,
	})
	duration := time.Since(start)

	if err != nil {
		slog.ErrorContext(ctx, "OpenAI completion failed",
			slog.String("model", model),
			slog.Duration("duration", duration),
			slog.String("error", err.Error()))
		return "", o.classify(model, err)
	}

	// 空の choices はフォールバック側で空レスポンスとして扱う
	if len(resp.Choices) == 0 {
		return "", nil
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	slog.DebugContext(ctx, "OpenAI completion finished",
		slog.String("model", model),
		slog.Int("output_length", text.CountRunes(content)),
		slog.Int("total_tokens", resp.Usage.TotalTokens),
		slog.Duration("duration", duration))

	return content, nil
}

// classify converts SDK errors into *Error, keeping the upstream status and body.
func (o *OpenAI) classify(model string, err error) *Error {
	e := &Error{Kind: KindUpstream, Provider: o.Name(), Model: model, Err: err}

	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		e.StatusCode = apiErr.HTTPStatusCode
		e.Message = "openai api error"
		e.Body = apiErrorBody(apiErr)
	case errors.As(err, &reqErr):
		e.StatusCode = reqErr.HTTPStatusCode
		e.Message = "openai request failed"
		e.Body = strings.TrimSpace(string(reqErr.Body))
		if e.Body == "" && reqErr.Err != nil {
			e.Body = reqErr.Err.Error()
		}
	case errors.Is(err, context.DeadlineExceeded):
		e.StatusCode = http.StatusGatewayTimeout
		e.Message = "openai request timed out"
	default:
		e.Message = err.Error()
	}
	return e
}

// apiErrorBody rebuilds the {"error": {...}} envelope the SDK decoded, so the
// detail keeps type and code alongside the message.
func apiErrorBody(apiErr *openai.APIError) string {
	b, err := json.Marshal(struct {
		Error *openai.APIError `json:"error"`
	}{apiErr})
	if err != nil {
		return apiErr.Message
	}
	return string(b)
}
