// Package text provides rune-aware helpers shared by review normalization,
// chunking and upstream logging.
package text

import (
	"strings"
	"unicode"
)

// CountRunes counts the number of Unicode characters (runes) in the given text.
// Review caps are expressed in characters, so multi-byte text (Turkish, Japanese,
// emoji) must be counted by rune rather than by byte.
//
// Examples:
//
//	CountRunes("hello")   // 5
//	CountRunes("güzel")   // 5
//	CountRunes("Hello👋") // 6
func CountRunes(text string) int {
	return len([]rune(text))
}

// Truncate returns the first max runes of s. A non-positive max disables truncation.
func Truncate(s string, max int) string {
	if max <= 0 {
		return s
	}
	count := 0
	for i := range s {
		if count == max {
			return s[:i]
		}
		count++
	}
	return s
}

// CollapseWhitespace replaces every run of whitespace (including newlines and
// carriage returns) with a single space and trims both ends.
func CollapseWhitespace(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	space := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			space = true
			continue
		}
		if space && b.Len() > 0 {
			b.WriteByte(' ')
		}
		space = false
		b.WriteRune(r)
	}
	return b.String()
}
