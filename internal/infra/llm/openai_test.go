package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newOpenAIServer serves /v1/chat/completions with the given handler.
func newOpenAIServer(t *testing.T, h http.HandlerFunc) *OpenAI {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/chat/completions", h)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return NewOpenAI(OpenAIConfig{
		APIKey:      "test-key",
		BaseURL:     srv.URL + "/v1",
		Temperature: 0.3,
		MaxTokens:   256,
	})
}

func chatCompletionJSON(content string) string {
	b, _ := json.Marshal(map[string]any{
		"id":      "chatcmpl-1",
		"object":  "chat.completion",
		"created": 1,
		"model":   "gpt-4o-mini",
		"choices": []map[string]any{{
			"index":         0,
			"message":       map[string]any{"role": "assistant", "content": content},
			"finish_reason": "stop",
		}},
		"usage": map[string]any{"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15},
	})
	return string(b)
}

func TestOpenAI_Complete(t *testing.T) {
	var got struct {
		Model       string  `json:"model"`
		Temperature float64 `json:"temperature"`
		MaxTokens   int     `json:"max_tokens"`
		Messages    []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	var auth string

	p := newOpenAIServer(t, func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(chatCompletionJSON("  Positives: fast shipping.  ")))
	})

	out, err := p.Complete(context.Background(), "gpt-4o-mini", Prompt{System: "be brief", User: "review A\nreview B"})

	require.NoError(t, err)
	assert.Equal(t, "Positives: fast shipping.", out)
	assert.Equal(t, "Bearer test-key", auth)
	assert.Equal(t, "gpt-4o-mini", got.Model)
	assert.InDelta(t, 0.3, got.Temperature, 1e-6)
	assert.Equal(t, 256, got.MaxTokens)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "be brief", got.Messages[0].Content)
	assert.Equal(t, "user", got.Messages[1].Role)
	assert.Equal(t, "review A\nreview B", got.Messages[1].Content)
}

func TestOpenAI_CompleteWithoutSystemMessage(t *testing.T) {
	var roles []string
	p := newOpenAIServer(t, func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Messages []struct {
				Role string `json:"role"`
			} `json:"messages"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		for _, m := range req.Messages {
			roles = append(roles, m.Role)
		}
		_, _ = w.Write([]byte(chatCompletionJSON("ok")))
	})

	_, err := p.Complete(context.Background(), "gpt-4o-mini", Prompt{User: "hi"})
	require.NoError(t, err)
	assert.Equal(t, []string{"user"}, roles)
}

func TestOpenAI_NoChoicesIsEmpty(t *testing.T) {
	p := newOpenAIServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"x","object":"chat.completion","choices":[]}`))
	})

	out, err := p.Complete(context.Background(), "gpt-4o-mini", Prompt{User: "hi"})
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestOpenAI_ErrorKeepsUpstreamStatus(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantDetail []string
	}{
		{
			name:       "json error body",
			status:     http.StatusTooManyRequests,
			body:       `{"error":{"message":"Rate limit reached","type":"requests","code":"rate_limit_exceeded"}}`,
			wantDetail: []string{`"message":"Rate limit reached"`, `"type":"requests"`, `"code":"rate_limit_exceeded"`},
		},
		{
			name:       "invalid key",
			status:     http.StatusUnauthorized,
			body:       `{"error":{"message":"Incorrect API key provided","type":"invalid_request_error","code":"invalid_api_key"}}`,
			wantDetail: []string{`"message":"Incorrect API key provided"`, `"type":"invalid_request_error"`, `"code":"invalid_api_key"`},
		},
		{
			name:       "non-json body",
			status:     http.StatusBadGateway,
			body:       "upstream proxy failure",
			wantDetail: []string{"upstream proxy failure"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newOpenAIServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := p.Complete(context.Background(), "gpt-4o-mini", Prompt{User: "hi"})

			require.Error(t, err)
			e, ok := AsError(err)
			require.True(t, ok)
			assert.Equal(t, KindUpstream, e.Kind)
			assert.Equal(t, tt.status, e.Status())
			assert.Equal(t, "gpt-4o-mini", e.Model)
			for _, want := range tt.wantDetail {
				assert.Contains(t, e.Detail(), want)
			}
		})
	}
}

func TestOpenAI_DeadlineIsGatewayTimeout(t *testing.T) {
	release := make(chan struct{})
	p := newOpenAIServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := p.Complete(ctx, "gpt-4o-mini", Prompt{User: "hi"})

	e, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusGatewayTimeout, e.Status())
}

func TestOpenAI_Configured(t *testing.T) {
	assert.NoError(t, NewOpenAI(OpenAIConfig{APIKey: "k"}).Configured())

	err := NewOpenAI(OpenAIConfig{APIKey: "  "}).Configured()
	assert.ErrorIs(t, err, ErrMissingCredential)
	assert.Contains(t, err.Error(), "OPENAI_API_KEY")
}
