// Package config loads the relay configuration from environment variables and
// the optional YAML prompt profile.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Supported upstream providers.
const (
	ProviderOpenAI = "openai"
	ProviderClaude = "claude"
	ProviderNoOp   = "noop"
)

// defaultModels is the fallback order used when LLM_MODELS is not set.
var defaultModels = map[string][]string{
	ProviderOpenAI: {"gpt-4o-mini", "gpt-4o", "gpt-3.5-turbo"},
	ProviderClaude: {"claude-3-5-haiku-latest", "claude-sonnet-4-5"},
	ProviderNoOp:   {"noop"},
}

// Config is the process configuration.
type Config struct {
	// Port is the listen port. Default: 3000
	Port string `env:"PORT" envDefault:"3000"`

	Version  string `env:"VERSION" envDefault:"dev"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// MaxBodyBytes caps the request body. Default: 1 MiB
	MaxBodyBytes int64 `env:"MAX_BODY_BYTES" envDefault:"1048576"`

	// CORSAllowedOrigins is a comma list; "*" allows any origin. Default: "*"
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`

	// PromptConfigFile points at an optional YAML prompt profile.
	PromptConfigFile string `env:"PROMPT_CONFIG_FILE"`

	LLM     LLMConfig
	Review  ReviewConfig
	Tracing TracingConfig
}

// LLMConfig configures the upstream completion API.
type LLMConfig struct {
	// Provider is one of openai, claude, noop. Default: openai
	Provider string `env:"LLM_PROVIDER" envDefault:"openai"`

	// 鍵は空でも起動できる（最初の補完呼び出しで設定エラーになる）
	OpenAIAPIKey    string `env:"OPENAI_API_KEY"`
	AnthropicAPIKey string `env:"ANTHROPIC_API_KEY"`

	// BaseURL overrides the provider API root.
	BaseURL string `env:"LLM_BASE_URL"`

	// Models is the fallback order. Empty selects the provider default.
	Models []string `env:"LLM_MODELS" envSeparator:","`

	Temperature float64 `env:"LLM_TEMPERATURE" envDefault:"0.3"`
	MaxTokens   int     `env:"LLM_MAX_TOKENS" envDefault:"1024"`

	// Timeout bounds one model attempt. 0 disables. Default: 60s
	Timeout time.Duration `env:"LLM_TIMEOUT" envDefault:"60s"`

	CircuitBreaker CircuitBreakerConfig
}

// CircuitBreakerConfig configures the per-model breakers.
type CircuitBreakerConfig struct {
	// MaxRequests in half-open state.
	MaxRequests uint32 `env:"LLM_CB_MAX_REQUESTS" envDefault:"3"`

	// Interval for clearing failure counts.
	Interval time.Duration `env:"LLM_CB_INTERVAL" envDefault:"30s"`

	// Timeout before transitioning from open to half-open.
	Timeout time.Duration `env:"LLM_CB_TIMEOUT" envDefault:"30s"`

	// FailureThreshold ratio to trip circuit (0.0 to 1.0).
	FailureThreshold float64 `env:"LLM_CB_FAILURE_THRESHOLD" envDefault:"0.6"`

	// MinRequests before calculating failure ratio.
	MinRequests uint32 `env:"LLM_CB_MIN_REQUESTS" envDefault:"5"`
}

// ReviewConfig configures normalization and chunking.
type ReviewConfig struct {
	MaxLength     int  `env:"REVIEW_MAX_LENGTH" envDefault:"300"`
	StripHTML     bool `env:"REVIEW_STRIP_HTML" envDefault:"false"`
	ChunkMaxItems int  `env:"CHUNK_MAX_ITEMS" envDefault:"30"`
	ChunkMaxChars int  `env:"CHUNK_MAX_CHARS" envDefault:"5500"`
}

// TracingConfig configures OpenTelemetry export.
type TracingConfig struct {
	Enabled      bool   `env:"TRACING_ENABLED" envDefault:"false"`
	OTLPEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
}

// Load parses the environment and validates the result.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	cfg.LLM.Provider = strings.ToLower(strings.TrimSpace(cfg.LLM.Provider))
	cfg.LLM.Models = trimAll(cfg.LLM.Models)
	cfg.CORSAllowedOrigins = trimAll(cfg.CORSAllowedOrigins)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks configuration correctness. A missing API key is not an
// error here.
func (c *Config) Validate() error {
	var errs []error

	if c.Port == "" {
		errs = append(errs, errors.New("PORT is required"))
	}
	if _, ok := defaultModels[c.LLM.Provider]; !ok {
		errs = append(errs, fmt.Errorf("LLM_PROVIDER %q is not one of openai, claude, noop", c.LLM.Provider))
	}
	if c.LLM.BaseURL != "" {
		if u, err := url.Parse(c.LLM.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Errorf("LLM_BASE_URL %q must be an absolute URL", c.LLM.BaseURL))
		}
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		errs = append(errs, fmt.Errorf("LLM_TEMPERATURE must be between 0 and 2, got %v", c.LLM.Temperature))
	}
	if c.LLM.MaxTokens <= 0 {
		errs = append(errs, errors.New("LLM_MAX_TOKENS must be positive"))
	}
	if c.LLM.Timeout < 0 {
		errs = append(errs, errors.New("LLM_TIMEOUT must not be negative"))
	}
	if t := c.LLM.CircuitBreaker.FailureThreshold; t <= 0 || t > 1 {
		errs = append(errs, fmt.Errorf("LLM_CB_FAILURE_THRESHOLD must be in (0, 1], got %v", t))
	}
	if c.Review.MaxLength < 0 {
		errs = append(errs, errors.New("REVIEW_MAX_LENGTH must not be negative"))
	}
	if c.Review.ChunkMaxItems <= 0 {
		errs = append(errs, errors.New("CHUNK_MAX_ITEMS must be positive"))
	}
	if c.Review.ChunkMaxChars <= 0 {
		errs = append(errs, errors.New("CHUNK_MAX_CHARS must be positive"))
	}
	if c.MaxBodyBytes <= 0 {
		errs = append(errs, errors.New("MAX_BODY_BYTES must be positive"))
	}

	return errors.Join(errs...)
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return ":" + c.Port
}

// ModelList returns the configured fallback order or the provider default.
func (c *LLMConfig) ModelList() []string {
	if len(c.Models) > 0 {
		return append([]string(nil), c.Models...)
	}
	return append([]string(nil), defaultModels[c.Provider]...)
}

// Credential returns the API key for the selected provider.
func (c *LLMConfig) Credential() string {
	switch c.Provider {
	case ProviderOpenAI:
		return c.OpenAIAPIKey
	case ProviderClaude:
		return c.AnthropicAPIKey
	default:
		return ""
	}
}

func trimAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
