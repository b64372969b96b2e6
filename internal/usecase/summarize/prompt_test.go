package summarize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"review-summarizer/internal/config"
)

func profile(system, partial, final string, bullets int) *config.PromptProfile {
	p := &config.PromptProfile{}
	p.Prompts.System = system
	p.Prompts.Partial = partial
	p.Prompts.Final = final
	p.Prompts.FinalBullets = bullets
	return p
}

func TestDefaultPrompts(t *testing.T) {
	p := DefaultPrompts()

	partial, err := p.Partial(2, 3, "a\nb")
	require.NoError(t, err)
	assert.Contains(t, partial, "part 2 of 3")
	assert.Contains(t, partial, "Reviews:\na\nb")

	final, err := p.Final([]string{"- x", "- y"})
	require.NoError(t, err)
	assert.Contains(t, final, "at most 6 bullets")
	assert.Contains(t, final, "Partial summary 1:\n- x")
	assert.Contains(t, final, "Partial summary 2:\n- y")
}

func TestNewPrompts_ProfileOverrides(t *testing.T) {
	p, err := NewPrompts(profile(
		"Yorumları Türkçe özetle.",
		"Bölüm {{.Index}}/{{.Total}}:\n{{.Reviews}}",
		`{{.Bullets}} madde: {{join .Partials " | "}}`,
		4,
	))
	require.NoError(t, err)

	assert.Equal(t, "Yorumları Türkçe özetle.", p.System)

	partial, err := p.Partial(1, 2, "iyi")
	require.NoError(t, err)
	assert.Equal(t, "Bölüm 1/2:\niyi", partial)

	final, err := p.Final([]string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, "4 madde: a | b", final)
}

func TestNewPrompts_EmptyFieldsKeepDefaults(t *testing.T) {
	p, err := NewPrompts(profile("", "  ", "", 0))
	require.NoError(t, err)

	assert.Equal(t, defaultSystem, p.System)
	assert.Equal(t, DefaultFinalBullets, p.Bullets)
}

func TestNewPrompts_InvalidTemplates(t *testing.T) {
	tests := []struct {
		name    string
		profile *config.PromptProfile
		wantErr string
	}{
		{name: "partial syntax", profile: profile("", "{{.Index", "", 0), wantErr: "parse partial prompt"},
		{name: "final syntax", profile: profile("", "", "{{range}}", 0), wantErr: "parse final prompt"},
		{name: "unknown partial field", profile: profile("", "{{.Product}}", "", 0), wantErr: "render partial prompt"},
		{name: "unknown final field", profile: profile("", "", "{{.Summary}}", 0), wantErr: "render final prompt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPrompts(tt.profile)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
