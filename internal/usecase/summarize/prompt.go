package summarize

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"review-summarizer/internal/config"
)

// DefaultFinalBullets is the bullet cap of the final synthesis.
const DefaultFinalBullets = 6

const defaultSystem = "You are an assistant that summarizes customer product reviews. " +
	"Cover positive points, negative points and the overall opinion. " +
	"Only use information present in the reviews."

const defaultPartial = `The following is part {{.Index}} of {{.Total}} of a set of customer reviews, one review per line.
Summarize this part as a short bulleted list (at most 5 bullets) covering positives, negatives and recurring themes.

Reviews:
{{.Reviews}}`

const defaultFinal = `Below are partial summaries of customer reviews for a single product.
Merge them, remove duplicated points, and write a final summary of at most {{.Bullets}} bullets covering positives, negatives and the overall opinion.
{{range $i, $p := .Partials}}
Partial summary {{inc $i}}:
{{$p}}
{{end}}`

// PartialData is the data passed to the partial prompt template.
type PartialData struct {
	// Index is 1-based.
	Index   int
	Total   int
	Reviews string
}

// FinalData is the data passed to the final prompt template.
type FinalData struct {
	Bullets  int
	Partials []string
}

// Prompts renders the system message and both prompt templates.
type Prompts struct {
	System  string
	Bullets int
	partial *template.Template
	final   *template.Template
}

var funcs = template.FuncMap{
	"inc":  func(i int) int { return i + 1 },
	"join": strings.Join,
}

// DefaultPrompts returns the built-in English prompts.
func DefaultPrompts() *Prompts {
	p, err := NewPrompts(nil)
	if err != nil {
		panic(fmt.Sprintf("summarize: default prompts do not parse: %v", err))
	}
	return p
}

// NewPrompts builds prompts from an optional profile. Empty profile fields
// keep the defaults.
func NewPrompts(profile *config.PromptProfile) (*Prompts, error) {
	system, partialSrc, finalSrc, bullets := defaultSystem, defaultPartial, defaultFinal, DefaultFinalBullets
	if profile != nil {
		if s := strings.TrimSpace(profile.Prompts.System); s != "" {
			system = s
		}
		if s := strings.TrimSpace(profile.Prompts.Partial); s != "" {
			partialSrc = s
		}
		if s := strings.TrimSpace(profile.Prompts.Final); s != "" {
			finalSrc = s
		}
		if profile.Prompts.FinalBullets > 0 {
			bullets = profile.Prompts.FinalBullets
		}
	}

	partial, err := template.New("partial").Funcs(funcs).Option("missingkey=error").Parse(partialSrc)
	if err != nil {
		return nil, fmt.Errorf("parse partial prompt: %w", err)
	}
	final, err := template.New("final").Funcs(funcs).Option("missingkey=error").Parse(finalSrc)
	if err != nil {
		return nil, fmt.Errorf("parse final prompt: %w", err)
	}

	p := &Prompts{System: system, Bullets: bullets, partial: partial, final: final}

	// 起動時に一度描画して、存在しないフィールド参照などを検出する
	if _, err := p.Partial(1, 1, "sample"); err != nil {
		return nil, err
	}
	if _, err := p.Final([]string{"sample"}); err != nil {
		return nil, err
	}
	return p, nil
}

// Partial renders the prompt for one chunk.
func (p *Prompts) Partial(index, total int, reviews string) (string, error) {
	var buf bytes.Buffer
	if err := p.partial.Execute(&buf, PartialData{Index: index, Total: total, Reviews: reviews}); err != nil {
		return "", fmt.Errorf("render partial prompt: %w", err)
	}
	return strings.TrimSpace(buf.String()), nil
}

// Final renders the synthesis prompt over all partial summaries.
func (p *Prompts) Final(partials []string) (string, error) {
	var buf bytes.Buffer
	if err := p.final.Execute(&buf, FinalData{Bullets: p.Bullets, Partials: partials}); err != nil {
		return "", fmt.Errorf("render final prompt: %w", err)
	}
	return strings.TrimSpace(buf.String()), nil
}
