// Package chunker splits extracted notes into overlapping passages for
// retrieval.
package chunker

import (
	"errors"
	"strconv"
	"strings"
	"unicode"
)

// ErrInvalidChunkSize is returned when an invalid chunk size is specified.
var ErrInvalidChunkSize = errors.New("chunk size must be greater than 0")

// Chunk is one passage of a document.
type Chunk struct {
	// ID is "<document id>#<index>".
	ID string
	// DocumentID identifies the source document.
	DocumentID string
	// Document is the source document's display name.
	Document string
	Content  string
	Index    int
}

// Options configures the chunking behavior.
type Options struct {
	// Size is the maximum number of characters per chunk.
	Size int `mapstructure:"size"`
	// Overlap is the number of characters repeated from the previous chunk.
	Overlap int `mapstructure:"overlap"`
}

// DefaultOptions returns passages that fit the question context as a whole.
func DefaultOptions() Options {
	return Options{
		Size:    1000,
		Overlap: 200,
	}
}

// Chunker splits documents into overlapping text chunks.
type Chunker struct {
	opts Options
}

// New creates a Chunker. An overlap that is negative or not smaller than the
// size is reset to a quarter of the size.
func New(opts Options) (*Chunker, error) {
	if opts.Size <= 0 {
		return nil, ErrInvalidChunkSize
	}
	if opts.Overlap < 0 || opts.Overlap >= opts.Size {
		opts.Overlap = opts.Size / 4
	}
	return &Chunker{opts: opts}, nil
}

// Split cuts text into chunks of at most Size characters. A cut that would
// land inside a word moves back to the preceding space when one exists in the
// second half of the window.
func (c *Chunker) Split(documentID, document, text string) []Chunk {
	runes := []rune(strings.TrimSpace(text))
	chunks := []Chunk{}

	for start := 0; start < len(runes); {
		end := min(start+c.opts.Size, len(runes))
		if end < len(runes) {
			end = wordBoundary(runes, start, end)
		}

		if content := strings.TrimSpace(string(runes[start:end])); content != "" {
			idx := len(chunks)
			chunks = append(chunks, Chunk{
				ID:         documentID + "#" + strconv.Itoa(idx),
				DocumentID: documentID,
				Document:   document,
				Content:    content,
				Index:      idx,
			})
		}
		if end == len(runes) {
			break
		}

		// The overlap starts on a word.
		next := end - c.opts.Overlap
		for next < end && next > 0 && !unicode.IsSpace(runes[next-1]) {
			next++
		}
		if next <= start {
			next = end
		}
		start = next
	}
	return chunks
}

func wordBoundary(runes []rune, start, end int) int {
	if unicode.IsSpace(runes[end]) {
		return end
	}
	half := start + (end-start)/2
	for i := end - 1; i > half; i-- {
		if unicode.IsSpace(runes[i]) {
			return i
		}
	}
	return end
}
