// Package chunker provides fixed-size sliding-window text chunking with
// overlap and best-effort boundary snapping.
package chunker

import (
	"fmt"
	"unicode"

	"github.com/repoqa-labs/repoqa-cli/internal/core/domain"
)

// Piece is one window of the input text with its rune offsets, half-open
// [Start, End).
type Piece struct {
	Text  string
	Start int
	End   int
}

// Chunker splits text into overlapping fixed-size windows.
// Window boundaries snap to nearby sentence or whitespace boundaries so
// chunks are not cut mid-word; when no clean boundary exists within the
// search radius, a hard character cut is used.
type Chunker struct {
	chunkSize int
	overlap   int
	radius    int
}

// New creates a chunker. chunkSize must be positive and overlap must be
// in [0, chunkSize); violations fail with domain.ErrConfiguration rather
// than looping or producing duplicate chunks.
func New(chunkSize, overlap int) (*Chunker, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("%w: chunk size must be positive, got %d", domain.ErrConfiguration, chunkSize)
	}
	if overlap < 0 || overlap >= chunkSize {
		return nil, fmt.Errorf("%w: overlap must be in [0, chunk size), got %d with chunk size %d",
			domain.ErrConfiguration, overlap, chunkSize)
	}

	return &Chunker{
		chunkSize: chunkSize,
		overlap:   overlap,
		radius:    chunkSize / 8,
	}, nil
}

// FromConfig creates a chunker from a retrieval configuration.
func FromConfig(cfg domain.RetrievalConfig) (*Chunker, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return New(cfg.ChunkSize, cfg.Overlap)
}

// Split divides text into ordered overlapping pieces. Empty text yields
// zero pieces; text no longer than the advance (chunk size minus overlap)
// yields exactly one. The output is deterministic for a given input and
// configuration.
func (c *Chunker) Split(text string) []Piece {
	if text == "" {
		return nil
	}

	runes := []rune(text)
	n := len(runes)

	pieces := make([]Piece, 0, n/(c.chunkSize-c.overlap)+1)

	start := 0
	for start < n {
		end := start + c.chunkSize
		clipped := end >= n
		if clipped {
			end = n
		} else {
			end = c.snap(runes, start, end)
		}

		pieces = append(pieces, Piece{
			Text:  string(runes[start:end]),
			Start: start,
			End:   end,
		})

		if clipped {
			// A window clipped at the text end keeps the fixed stride,
			// so the trailing overlap still gets its own window before
			// the starts run past the end.
			start += c.chunkSize - c.overlap
		} else {
			// The next window re-covers the last overlap runes of this
			// one, so coverage has no gaps even after snapping.
			start = end - c.overlap
		}
	}

	return pieces
}

// snap moves a window end backward to the nearest clean boundary within
// the search radius. Sentence enders are preferred over whitespace. The
// end never moves past the window midpoint and always leaves the next
// window a positive advance.
func (c *Chunker) snap(runes []rune, start, end int) int {
	// Lower bound for a snapped end: keep progress and stay past the
	// window midpoint.
	min := end - c.radius
	if m := start + c.overlap + 1; min < m {
		min = m
	}
	if m := start + c.chunkSize/2; min < m {
		min = m
	}
	if min >= end {
		return end
	}

	// First pass: sentence boundaries. Cut just after the ender.
	for i := end - 1; i >= min; i-- {
		if isSentenceEnd(runes[i]) {
			return i + 1
		}
	}

	// Second pass: whitespace. Cut before the word that would be split.
	for i := end - 1; i >= min; i-- {
		if unicode.IsSpace(runes[i]) {
			return i + 1
		}
	}

	// Hard character cut.
	return end
}

func isSentenceEnd(r rune) bool {
	return r == '.' || r == '!' || r == '?' || r == '\n'
}
