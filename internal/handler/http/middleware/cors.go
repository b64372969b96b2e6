// Package middleware provides cross-cutting HTTP middleware.
package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// AnyOrigin allows every origin without credentials.
const AnyOrigin = "*"

// CORSConfig holds the configuration for CORS middleware.
type CORSConfig struct {
	// AllowedOrigins is a whitelist of permitted origins, or ["*"].
	AllowedOrigins []string

	// AllowedMethods default: GET, POST, OPTIONS
	AllowedMethods []string

	// AllowedHeaders default: Content-Type, X-Request-ID, traceparent
	AllowedHeaders []string

	// MaxAge is the preflight cache duration in seconds. Default: 86400
	MaxAge int

	Logger *slog.Logger
}

// NewCORSConfig validates origins and fills the remaining defaults.
//
// Each origin must be "*" or an http(s) URL without path, query, fragment or
// trailing slash. "*" cannot be combined with explicit origins.
func NewCORSConfig(origins []string, logger *slog.Logger) (CORSConfig, error) {
	cleaned := make([]string, 0, len(origins))
	for _, o := range origins {
		o = strings.TrimSpace(o)
		if o == "" {
			continue
		}
		if o != AnyOrigin {
			if err := validateOrigin(o); err != nil {
				return CORSConfig{}, err
			}
			o = strings.ToLower(o)
		}
		cleaned = append(cleaned, o)
	}

	if len(cleaned) == 0 {
		return CORSConfig{}, fmt.Errorf("at least one origin must be configured in CORS_ALLOWED_ORIGINS")
	}
	if len(cleaned) > 1 {
		for _, o := range cleaned {
			if o == AnyOrigin {
				return CORSConfig{}, fmt.Errorf("CORS_ALLOWED_ORIGINS: %q cannot be combined with explicit origins", AnyOrigin)
			}
		}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return CORSConfig{
		AllowedOrigins: cleaned,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "X-Request-ID", "traceparent"},
		MaxAge:         86400,
		Logger:         logger,
	}, nil
}

func validateOrigin(origin string) error {
	u, err := url.Parse(origin)
	if err != nil {
		return fmt.Errorf("invalid origin URL '%s': %w", origin, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("origin must use http or https scheme: %s", origin)
	}
	if u.Host == "" {
		return fmt.Errorf("origin must include a host: %s", origin)
	}
	if strings.HasSuffix(origin, "/") {
		return fmt.Errorf("origin must not have trailing slash: %s", origin)
	}
	if u.Path != "" {
		return fmt.Errorf("origin must not include path: %s", origin)
	}
	if u.RawQuery != "" || u.Fragment != "" {
		return fmt.Errorf("origin must not include query string or fragment: %s", origin)
	}
	return nil
}

func (c CORSConfig) wildcard() bool {
	return len(c.AllowedOrigins) == 1 && c.AllowedOrigins[0] == AnyOrigin
}

func (c CORSConfig) isAllowed(origin string) bool {
	origin = strings.ToLower(strings.TrimSuffix(strings.TrimSpace(origin), "/"))
	for _, allowed := range c.AllowedOrigins {
		if origin == allowed {
			return true
		}
	}
	return false
}

// CORS returns middleware that answers preflight requests and sets
// Access-Control-Allow-Origin on actual requests from allowed origins.
//
// Behavior:
//   - No Origin header: passed through untouched (same-origin request)
//   - Origin not allowed: passed through without CORS headers; the browser blocks it
//   - OPTIONS from an allowed origin: 204 with preflight headers, next is not called
func CORS(config CORSConfig) func(http.Handler) http.Handler {
	methods := strings.Join(config.AllowedMethods, ", ")
	headers := strings.Join(config.AllowedHeaders, ", ")
	maxAge := strconv.Itoa(config.MaxAge)
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == "" {
				next.ServeHTTP(w, r)
				return
			}

			switch {
			case config.wildcard():
				w.Header().Set("Access-Control-Allow-Origin", AnyOrigin)
			case config.isAllowed(origin):
				// 許可されたオリジンをそのまま返す
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Add("Vary", "Origin")
			default:
				logger.Warn("CORS: origin not allowed",
					slog.String("origin", origin),
					slog.String("path", r.URL.Path),
					slog.String("method", r.Method))
				next.ServeHTTP(w, r)
				return
			}

			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				w.Header().Set("Access-Control-Allow-Methods", methods)
				w.Header().Set("Access-Control-Allow-Headers", headers)
				w.Header().Set("Access-Control-Max-Age", maxAge)
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
