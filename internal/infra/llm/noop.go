package llm

import (
	"context"
	"strings"

	"review-summarizer/internal/utils/text"
)

// NoOp is a provider that never leaves the process. It answers with the first
// lines of the prompt, which is enough to exercise the relay end to end during
// local development.
type NoOp struct{}

// NewNoOp creates a new NoOp provider.
func NewNoOp() *NoOp {
	return &NoOp{}
}

// Name implements Provider.
func (n *NoOp) Name() string { return "noop" }

// Configured implements Provider.
func (n *NoOp) Configured() error { return nil }

// Complete returns up to three non-empty prompt lines as bullets.
func (n *NoOp) Complete(_ context.Context, _ string, prompt Prompt) (string, error) {
	const maxLines = 3
	var bullets []string
	for _, line := range strings.Split(prompt.User, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		bullets = append(bullets, "- "+text.Truncate(line, 120))
		if len(bullets) == maxLines {
			break
		}
	}
	return strings.Join(bullets, "\n"), nil
}
