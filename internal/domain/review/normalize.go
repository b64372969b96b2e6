// Package review holds the request-scoped review model: turning loosely shaped
// JSON bodies into clean review texts and packing them into bounded chunks.
package review

import (
	"strings"

	"review-summarizer/internal/utils/text"
)

// DefaultMaxLength is the per-review character cap.
const DefaultMaxLength = 300

// NormalizeOptions controls how review texts are cleaned.
type NormalizeOptions struct {
	// MaxLength truncates each review to this many characters. Zero disables truncation.
	MaxLength int

	// StripMarkup removes HTML tags and collapses whitespace before trimming.
	StripMarkup bool
}

// DefaultNormalizeOptions returns the options used when nothing is configured.
func DefaultNormalizeOptions() NormalizeOptions {
	return NormalizeOptions{MaxLength: DefaultMaxLength}
}

// Normalize extracts review texts from a decoded JSON body.
//
// Accepted shapes:
//
//	{"reviews": [{"text": "..."}, ...]}
//	{"reviews": ["...", "..."]}
//	{"text": "..."}
//
// A "reviews" array wins over "text". Elements that are neither strings nor
// objects with a string "text" field are skipped, as are blank strings.
// Line breaks inside a review become spaces.
// The input order is preserved. When nothing survives ErrNoUsableInput is returned.
func Normalize(body any, opts NormalizeOptions) ([]string, error) {
	obj, ok := body.(map[string]any)
	if !ok {
		return nil, ErrNoUsableInput
	}

	var raw []string
	if reviews, ok := obj["reviews"].([]any); ok {
		raw = make([]string, 0, len(reviews))
		for _, item := range reviews {
			if s, ok := reviewText(item); ok {
				raw = append(raw, s)
			}
		}
	} else if s, ok := obj["text"].(string); ok {
		raw = []string{s}
	}

	out := NormalizeTexts(raw, opts)
	if len(out) == 0 {
		return nil, ErrNoUsableInput
	}
	return out, nil
}

// lineBreaks flattens a review onto one line. Chunks join reviews with "\n",
// so a review must never contain one itself.
var lineBreaks = strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ")

// NormalizeTexts cleans an already flat list of texts.
// Normalizing its own output returns the same slice contents.
func NormalizeTexts(texts []string, opts NormalizeOptions) []string {
	out := make([]string, 0, len(texts))
	for _, s := range texts {
		if opts.StripMarkup {
			s = StripMarkup(s)
		}
		s = lineBreaks.Replace(s)
		// 切り詰めで末尾が空白になることがあるので再度トリムする
		s = strings.TrimSpace(text.Truncate(strings.TrimSpace(s), opts.MaxLength))
		if s == "" {
			continue
		}
		out = append(out, s)
	}
	return out
}

// reviewText maps a single "reviews" element to its text.
func reviewText(item any) (string, bool) {
	switch v := item.(type) {
	case string:
		return v, true
	case map[string]any:
		s, ok := v["text"].(string)
		return s, ok
	default:
		return "", false
	}
}
