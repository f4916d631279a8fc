package library

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notesai/notesai/internal/config"
	"github.com/notesai/notesai/internal/graph"
	"github.com/notesai/notesai/internal/llm"
	"github.com/notesai/notesai/internal/reader"
)

func newTestLibrary(t *testing.T) *Library {
	t.Helper()
	cfg := &config.Config{
		Embedder: config.EmbedderConfig{Dimensions: 256},
		Library:  config.LibraryConfig{TopK: 2},
	}
	cfg.Library.Chunk.Size = 200
	cfg.Library.Chunk.Overlap = 20

	lib, err := NewFromConfig(cfg, nil)
	require.NoError(t, err)
	return lib
}

func TestLibrary_AddAndSearch(t *testing.T) {
	lib := newTestLibrary(t)
	ctx := context.Background()

	bio, err := lib.Add(ctx, reader.Document{Name: "biology.pdf", Content: "Photosynthesis turns light into chemical energy.", OriginalLength: 48}, nil)
	require.NoError(t, err)
	calc, err := lib.Add(ctx, reader.Document{Name: "calculus.pdf", Content: "A derivative is the rate of change of a function."}, nil)
	require.NoError(t, err)

	assert.NotEmpty(t, bio.ID)
	assert.NotEqual(t, bio.ID, calc.ID)
	assert.Equal(t, 1, bio.Chunks)
	assert.Equal(t, 48, bio.Chars)
	assert.Equal(t, 2, lib.Len())

	entries := lib.Entries()
	require.Len(t, entries, 2)
	assert.ElementsMatch(t, []string{"biology.pdf", "calculus.pdf"}, []string{entries[0].Name, entries[1].Name})

	passages, err := lib.Search(ctx, "what does photosynthesis do with light")
	require.NoError(t, err)
	require.NotEmpty(t, passages)
	assert.Equal(t, "biology.pdf", passages[0].Document)
	assert.Equal(t, bio.ID, passages[0].DocumentID)
	assert.Contains(t, passages[0].Content, "Photosynthesis")

	only, err := lib.Search(ctx, "photosynthesis", calc.ID)
	require.NoError(t, err)
	require.Len(t, only, 1)
	assert.Equal(t, "calculus.pdf", only[0].Document)
}

func TestLibrary_Flowchart(t *testing.T) {
	lib := newTestLibrary(t)
	ctx := context.Background()

	_, err := lib.Flowchart(ctx, nil)
	require.ErrorIs(t, err, ErrEmpty)

	_, err = lib.Add(ctx, reader.Document{Name: "raw.pdf", Content: "Unanalyzed notes"}, nil)
	require.NoError(t, err)
	_, err = lib.Flowchart(ctx, nil)
	require.ErrorIs(t, err, graph.ErrNoTopics)

	_, err = lib.Add(ctx, reader.Document{Name: "mech.pdf", Content: "Velocity and acceleration"}, &llm.Analysis{Topics: []string{"Velocity", "Acceleration"}})
	require.NoError(t, err)

	fc, err := lib.Flowchart(ctx, nil)
	require.NoError(t, err)
	require.Len(t, fc.Topics, 2)
	assert.Equal(t, "Acceleration", fc.Topics[0].Name)
	assert.Equal(t, []string{"mech.pdf"}, fc.Topics[0].Documents)
	assert.Equal(t, []graph.Connection{{From: "Acceleration", To: "Velocity", Strength: 0.5}}, fc.Connections)
}

func TestNewFromConfig_Invalid(t *testing.T) {
	_, err := NewFromConfig(nil, nil)
	assert.ErrorIs(t, err, config.ErrNilConfig)

	_, err = NewFromConfig(&config.Config{}, nil)
	assert.Error(t, err)
}
