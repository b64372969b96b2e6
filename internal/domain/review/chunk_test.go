package review_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"review-summarizer/internal/domain/review"
	"review-summarizer/internal/utils/text"
)

// fixedWidthReviews returns n distinct reviews of exactly width characters.
func fixedWidthReviews(n, width int) []string {
	out := make([]string, n)
	for i := range out {
		prefix := fmt.Sprintf("review-%03d ", i)
		out[i] = prefix + strings.Repeat("x", width-len(prefix))
	}
	return out
}

func TestSplit_SingleText(t *testing.T) {
	chunks := review.Split([]string{"Great product"}, review.DefaultChunkLimits())

	require.Len(t, chunks, 1)
	assert.Equal(t, "Great product", chunks[0].Text())
	assert.Equal(t, 13, chunks[0].Chars)
}

func TestSplit_ItemCapClosesChunk(t *testing.T) {
	texts := fixedWidthReviews(45, 50)

	chunks := review.Split(texts, review.DefaultChunkLimits())

	require.Len(t, chunks, 2)
	assert.Len(t, chunks[0].Items, 30)
	assert.Len(t, chunks[1].Items, 15)
}

func TestSplit_CharCapClosesChunk(t *testing.T) {
	// 10 texts of 100 chars; 3 fit in 302 chars (100*3 + 2 separators).
	texts := fixedWidthReviews(10, 100)

	chunks := review.Split(texts, review.ChunkLimits{MaxItems: 30, MaxChars: 302})

	require.Len(t, chunks, 4)
	for _, c := range chunks[:3] {
		assert.Len(t, c.Items, 3)
		assert.Equal(t, 302, c.Chars)
	}
	assert.Len(t, chunks[3].Items, 1)
}

func TestSplit_SeparatorsCountTowardBudget(t *testing.T) {
	// Two 50-char texts need 101 chars once joined.
	texts := fixedWidthReviews(2, 50)

	chunks := review.Split(texts, review.ChunkLimits{MaxItems: 30, MaxChars: 100})

	require.Len(t, chunks, 2)
}

func TestSplit_OversizedTextGetsOwnChunk(t *testing.T) {
	texts := []string{"a", strings.Repeat("b", 20), "c"}

	chunks := review.Split(texts, review.ChunkLimits{MaxItems: 30, MaxChars: 10})

	require.Len(t, chunks, 3)
	assert.Equal(t, []string{"a"}, chunks[0].Items)
	assert.Equal(t, []string{strings.Repeat("b", 20)}, chunks[1].Items)
	assert.Equal(t, []string{"c"}, chunks[2].Items)
}

func TestSplit_Empty(t *testing.T) {
	assert.Empty(t, review.Split(nil, review.DefaultChunkLimits()))
	assert.Empty(t, review.Split([]string{"", ""}, review.DefaultChunkLimits()))
}

func TestSplit_Properties(t *testing.T) {
	limitsList := []review.ChunkLimits{
		review.DefaultChunkLimits(),
		{MaxItems: 1, MaxChars: 5500},
		{MaxItems: 7, MaxChars: 400},
		{MaxItems: 100, MaxChars: 301},
	}
	inputs := [][]string{
		fixedWidthReviews(45, 50),
		fixedWidthReviews(200, 300),
		fixedWidthReviews(3, 12),
		{"ğüşıöç", "短い", "👍👍👍", "a", "b"},
		review.NormalizeTexts([]string{"two\nlines", "crlf\r\nreview", "plain", "\nlead"}, review.DefaultNormalizeOptions()),
	}

	for _, limits := range limitsList {
		for _, in := range inputs {
			name := fmt.Sprintf("items=%d chars=%d n=%d", limits.MaxItems, limits.MaxChars, len(in))
			t.Run(name, func(t *testing.T) {
				chunks := review.Split(in, limits)

				var rejoined []string
				for _, c := range chunks {
					require.NotEmpty(t, c.Items, "chunk must not be empty")
					assert.LessOrEqual(t, len(c.Items), limits.MaxItems)
					assert.LessOrEqual(t, text.CountRunes(c.Text()), limits.MaxChars)
					assert.Equal(t, text.CountRunes(c.Text()), c.Chars)
					rejoined = append(rejoined, strings.Split(c.Text(), "\n")...)
				}

				if diff := cmp.Diff(in, rejoined); diff != "" {
					t.Errorf("order not preserved (-want +got):\n%s", diff)
				}
			})
		}
	}
}

func TestChunkLimits_Validate(t *testing.T) {
	assert.NoError(t, review.DefaultChunkLimits().Validate())
	assert.ErrorIs(t, review.ChunkLimits{MaxItems: 0, MaxChars: 10}.Validate(), review.ErrInvalidLimits)
	assert.ErrorIs(t, review.ChunkLimits{MaxItems: 10, MaxChars: -1}.Validate(), review.ErrInvalidLimits)
}
