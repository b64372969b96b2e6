// Package llm talks to third-party completion APIs. Providers wrap one vendor
// SDK each; FallbackClient walks an ordered model list on top of a provider.
package llm

import "context"

// Prompt is a single-turn completion request.
type Prompt struct {
	// System is an optional instruction message.
	System string
	// User carries the task and the review material.
	User string
}

// Provider performs one completion against one model, without retries.
type Provider interface {
	// Name identifies the provider in logs, metrics and errors.
	Name() string

	// Configured reports a configuration problem (for example a missing API key)
	// that makes every call fail. It must not perform network I/O.
	Configured() error

	// Complete returns the completion text for prompt on model.
	// Upstream failures are returned as *Error.
	Complete(ctx context.Context, model string, prompt Prompt) (string, error)
}
