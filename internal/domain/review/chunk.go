package review

import (
	"fmt"
	"strings"

	"review-summarizer/internal/utils/text"
)

const (
	// DefaultChunkMaxItems is the maximum number of reviews in one chunk.
	DefaultChunkMaxItems = 30

	// DefaultChunkMaxChars is the maximum character length of one chunk's text.
	DefaultChunkMaxChars = 5500

	chunkSeparator = "\n"
)

// ChunkLimits caps a chunk by item count and by character length.
// Whichever cap is hit first closes the chunk.
type ChunkLimits struct {
	MaxItems int
	MaxChars int
}

// DefaultChunkLimits returns the 30 item / 5500 character caps.
func DefaultChunkLimits() ChunkLimits {
	return ChunkLimits{MaxItems: DefaultChunkMaxItems, MaxChars: DefaultChunkMaxChars}
}

// Validate checks that both caps are positive.
func (l ChunkLimits) Validate() error {
	if l.MaxItems <= 0 {
		return fmt.Errorf("%w: max items must be positive, got %d", ErrInvalidLimits, l.MaxItems)
	}
	if l.MaxChars <= 0 {
		return fmt.Errorf("%w: max chars must be positive, got %d", ErrInvalidLimits, l.MaxChars)
	}
	return nil
}

// Chunk is an ordered, non-empty group of review texts.
type Chunk struct {
	Items []string
	// Chars is the character length of Text().
	Chars int
}

// Text joins the chunk items with newlines.
func (c Chunk) Text() string {
	return strings.Join(c.Items, chunkSeparator)
}

// Split packs texts into chunks greedily in a single pass.
//
// The character budget counts the joined text, separators included, so a
// chunk's Text() never exceeds MaxChars. A single text longer than MaxChars
// cannot be split and is emitted as its own chunk. Empty texts are skipped.
func Split(texts []string, limits ChunkLimits) []Chunk {
	var (
		chunks  []Chunk
		current []string
		chars   int
	)

	flush := func() {
		if len(current) == 0 {
			return
		}
		chunks = append(chunks, Chunk{Items: current, Chars: chars})
		current = nil
		chars = 0
	}

	for _, t := range texts {
		if t == "" {
			continue
		}
		n := text.CountRunes(t)

		added := n
		if len(current) > 0 {
			added += len(chunkSeparator)
		}

		if len(current) > 0 && (len(current)+1 > limits.MaxItems || chars+added > limits.MaxChars) {
			flush()
			added = n
		}

		current = append(current, t)
		chars += added
	}
	flush()

	return chunks
}
