package chunker

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name        string
		opts        Options
		wantErr     bool
		wantOverlap int
	}{
		{name: "defaults", opts: DefaultOptions(), wantOverlap: 200},
		{name: "zero size", opts: Options{Size: 0}, wantErr: true},
		{name: "negative overlap reset", opts: Options{Size: 100, Overlap: -1}, wantOverlap: 25},
		{name: "overlap too large reset", opts: Options{Size: 100, Overlap: 100}, wantOverlap: 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(tt.opts)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidChunkSize)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantOverlap, c.opts.Overlap)
		})
	}
}

func TestSplit(t *testing.T) {
	c, err := New(Options{Size: 20, Overlap: 5})
	require.NoError(t, err)

	t.Run("empty", func(t *testing.T) {
		assert.Empty(t, c.Split("doc-1", "a.pdf", "   "))
	})

	t.Run("short text is one chunk", func(t *testing.T) {
		chunks := c.Split("doc-1", "a.pdf", "  Newton's laws  ")
		require.Len(t, chunks, 1)
		assert.Equal(t, Chunk{ID: "doc-1#0", DocumentID: "doc-1", Document: "a.pdf", Content: "Newton's laws", Index: 0}, chunks[0])
	})

	t.Run("long text overlaps and respects size", func(t *testing.T) {
		text := strings.Repeat("entropy rises ", 10)
		chunks := c.Split("doc-2", "thermo.pdf", text)
		require.Greater(t, len(chunks), 1)

		for i, ch := range chunks {
			assert.Equal(t, i, ch.Index)
			assert.LessOrEqual(t, utf8.RuneCountInString(ch.Content), 20)
			assert.Equal(t, "thermo.pdf", ch.Document)
			assert.NotEmpty(t, ch.Content)
		}
		assert.Equal(t, "doc-2#1", chunks[1].ID)
	})

	t.Run("cuts at word boundaries", func(t *testing.T) {
		chunks := c.Split("doc-3", "a.pdf", "alpha beta gamma delta epsilon zeta")
		for _, ch := range chunks {
			for _, word := range strings.Fields(ch.Content) {
				assert.Contains(t, []string{"alpha", "beta", "gamma", "delta", "epsilon", "zeta"}, word)
			}
		}
	})

	t.Run("unbroken text still advances", func(t *testing.T) {
		chunks := c.Split("doc-4", "a.pdf", strings.Repeat("x", 50))
		require.NotEmpty(t, chunks)
		assert.Equal(t, strings.Repeat("x", 20), chunks[0].Content)
	})
}
