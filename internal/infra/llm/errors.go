package llm

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrMissingCredential indicates the provider has no API key configured.
var ErrMissingCredential = errors.New("missing upstream credential")

// Kind classifies an upstream failure.
type Kind string

const (
	// KindConfig is a local misconfiguration detected before any network call.
	KindConfig Kind = "config"
	// KindUpstream is a non-success answer (or transport failure) from the model API.
	KindUpstream Kind = "upstream"
	// KindEmptyResponse is a success answer without extractable text.
	KindEmptyResponse Kind = "empty_response"
	// KindUnavailable means the model's circuit breaker rejected the call.
	KindUnavailable Kind = "unavailable"
)

// Error carries an HTTP status code alongside the failure message through
// the whole summarization path. The HTTP layer answers with StatusCode.
type Error struct {
	Kind       Kind
	StatusCode int
	Provider   string
	Model      string
	// Message is a short human-readable description.
	Message string
	// Body is the upstream response body, when one was received.
	Body string
	Err  error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Model != "" {
		return fmt.Sprintf("%s %s/%s (status %d): %s", e.Kind, e.Provider, e.Model, e.Status(), e.Message)
	}
	return fmt.Sprintf("%s %s (status %d): %s", e.Kind, e.Provider, e.Status(), e.Message)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Status returns the HTTP status to surface to the caller, 500 when none is known.
func (e *Error) Status() int {
	if e.StatusCode < 400 || e.StatusCode > 599 {
		return http.StatusInternalServerError
	}
	return e.StatusCode
}

// Detail returns the upstream body if present, otherwise the message.
func (e *Error) Detail() string {
	if e.Body != "" {
		return e.Body
	}
	return e.Message
}

// AsError extracts an *Error from err's chain.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
