package review_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"review-summarizer/internal/domain/review"
	"review-summarizer/internal/utils/text"
)

// decode parses a JSON literal the same way the HTTP handler does.
func decode(t *testing.T, s string) any {
	t.Helper()
	var body any
	require.NoError(t, json.Unmarshal([]byte(s), &body))
	return body
}

func TestNormalize_AcceptedShapes(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []string
	}{
		{
			name: "single text",
			body: `{"text": "Great product"}`,
			want: []string{"Great product"},
		},
		{
			name: "review objects",
			body: `{"reviews": [{"text": "fast shipping"}, {"text": "poor packaging"}]}`,
			want: []string{"fast shipping", "poor packaging"},
		},
		{
			name: "review strings",
			body: `{"reviews": ["good", "bad"]}`,
			want: []string{"good", "bad"},
		},
		{
			name: "blanks dropped",
			body: `{"reviews": ["a", "", "  ", "b"]}`,
			want: []string{"a", "b"},
		},
		{
			name: "mixed elements keep order",
			body: `{"reviews": [{"text": " one "}, "two", 3, null, {"rating": 5}, {"text": 4}, ["x"], "three"]}`,
			want: []string{"one", "two", "three"},
		},
		{
			name: "reviews wins over text",
			body: `{"reviews": ["from reviews"], "text": "from text"}`,
			want: []string{"from reviews"},
		},
		{
			name: "text used when reviews is not an array",
			body: `{"reviews": "oops", "text": "fallback"}`,
			want: []string{"fallback"},
		},
		{
			name: "line breaks inside a review are flattened",
			body: `{"reviews": ["first line\nsecond line", {"text": "a\r\nb"}, "c\rd"]}`,
			want: []string{"first line second line", "a b", "c d"},
		},
		{
			name: "text is trimmed",
			body: `{"text": "\n\t  kargo hızlıydı  \n"}`,
			want: []string{"kargo hızlıydı"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := review.Normalize(decode(t, tt.body), review.DefaultNormalizeOptions())
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Normalize() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestNormalize_NoUsableInput(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "empty reviews", body: `{"reviews": []}`},
		{name: "only blanks", body: `{"reviews": ["", "   ", {"text": "\n"}]}`},
		{name: "no known keys", body: `{"comments": ["nice"]}`},
		{name: "text not a string", body: `{"text": 42}`},
		{name: "empty object", body: `{}`},
		{name: "top-level array", body: `["a", "b"]`},
		{name: "top-level string", body: `"a"`},
		{name: "null", body: `null`},
		{name: "empty reviews ignores text", body: `{"reviews": [], "text": "ignored"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := review.Normalize(decode(t, tt.body), review.DefaultNormalizeOptions())
			require.Error(t, err)
			assert.ErrorIs(t, err, review.ErrNoUsableInput)
			assert.True(t, review.IsValidation(err))
			assert.Empty(t, got)
		})
	}
}

func TestNormalize_Truncation(t *testing.T) {
	long := strings.Repeat("x", 450)
	body := map[string]any{"reviews": []any{long, "short"}}

	got, err := review.Normalize(body, review.DefaultNormalizeOptions())

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, review.DefaultMaxLength, text.CountRunes(got[0]))
	assert.Equal(t, "short", got[1])
}

func TestNormalize_TruncationCountsRunes(t *testing.T) {
	body := map[string]any{"text": strings.Repeat("ğ", 20)}

	got, err := review.Normalize(body, review.NormalizeOptions{MaxLength: 7})

	require.NoError(t, err)
	assert.Equal(t, []string{strings.Repeat("ğ", 7)}, got)
}

func TestNormalizeTexts_Idempotent(t *testing.T) {
	inputs := [][]string{
		{"Great product", "  spaced  ", "", "ok"},
		{strings.Repeat("longreview", 48)},
		{"<b>bold</b> claim", "tab\tseparated"},
		{"abc def", "ab  cd", "x\n\ny z"},
		{strings.Repeat("a", 299) + " tail"},
	}

	for _, opts := range []review.NormalizeOptions{
		review.DefaultNormalizeOptions(),
		{MaxLength: 50, StripMarkup: true},
		{MaxLength: 4},
	} {
		for _, in := range inputs {
			once := review.NormalizeTexts(in, opts)
			twice := review.NormalizeTexts(once, opts)
			if diff := cmp.Diff(once, twice); diff != "" {
				t.Errorf("normalizing twice changed the result (-once +twice):\n%s", diff)
			}
		}
	}
}

func TestNormalizeTexts_TruncationAtWhitespace(t *testing.T) {
	got := review.NormalizeTexts([]string{"abc def", "abc   ", strings.Repeat("b", 299) + " end"},
		review.NormalizeOptions{MaxLength: 4})

	assert.Equal(t, []string{"abc", "abc", "bbbb"}, got)

	got = review.NormalizeTexts([]string{strings.Repeat("b", 299) + " end"}, review.DefaultNormalizeOptions())
	assert.Equal(t, []string{strings.Repeat("b", 299)}, got)
}

func TestNormalize_StripMarkup(t *testing.T) {
	body := decode(t, `{"reviews": ["<p>Çok <b>güzel</b></p>", "line<br>break", "a &amp; b", "<div> </div>", "plain   text"]}`)

	got, err := review.Normalize(body, review.NormalizeOptions{MaxLength: 300, StripMarkup: true})

	require.NoError(t, err)
	assert.Equal(t, []string{"Çok güzel", "line break", "a & b", "plain text"}, got)
}

func TestNormalize_MarkupKeptByDefault(t *testing.T) {
	got, err := review.Normalize(map[string]any{"text": "<b>bold</b>"}, review.DefaultNormalizeOptions())

	require.NoError(t, err)
	assert.Equal(t, []string{"<b>bold</b>"}, got)
}
