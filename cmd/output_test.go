package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notesai/notesai/internal/config"
	"github.com/notesai/notesai/internal/graph"
	"github.com/notesai/notesai/internal/llm"
	"github.com/notesai/notesai/internal/pdftext"
	"github.com/notesai/notesai/internal/reader"
)

func TestCheckFormat(t *testing.T) {
	for _, f := range []string{"text", "json", "yaml"} {
		assert.NoError(t, checkFormat(f))
	}
	assert.Error(t, checkFormat("xml"))
}

func TestWriteStructured(t *testing.T) {
	doc := reader.Document{Name: "a.pdf", Content: "Hello World", Strategy: pdftext.StrategyStructured, OriginalLength: 11}

	var js bytes.Buffer
	require.NoError(t, writeStructured(&js, formatJSON, doc))
	assert.Contains(t, js.String(), `"strategy": "structured"`)
	assert.Contains(t, js.String(), `"text": "Hello World"`)

	var ym bytes.Buffer
	require.NoError(t, writeStructured(&ym, formatYAML, doc))
	assert.Contains(t, ym.String(), "strategy: structured")
	assert.Contains(t, ym.String(), "original_length: 11")

	assert.Error(t, writeStructured(&bytes.Buffer{}, formatText, doc))
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "short", preview("short", 10))
	assert.Equal(t, "abcdefg...", preview("abcdefghijklmnop", 10))
}

func TestSourceNames(t *testing.T) {
	got := sourceNames([]llm.Passage{
		{Document: "bio.pdf"},
		{Document: "chem.pdf"},
		{Document: "bio.pdf"},
	})
	assert.Equal(t, []string{"bio.pdf", "chem.pdf"}, got)
	assert.Empty(t, sourceNames(nil))
}

func TestPrintFlowchart(t *testing.T) {
	var buf bytes.Buffer
	printFlowchart(&buf, graph.Flowchart{
		Topics: []graph.Node{
			{ID: "topic-0", Name: "Limits", Documents: []string{"calc1.pdf", "calc2.pdf"}},
			{ID: "topic-1", Name: "Derivatives", Documents: []string{"calc2.pdf"}},
		},
		Connections: []graph.Connection{{From: "Limits", To: "Derivatives", Strength: 0.9}},
	})

	got := buf.String()
	assert.Contains(t, got, "Limits (calc1.pdf, calc2.pdf)")
	assert.Contains(t, got, "Limits -> Derivatives (0.90)")
}

func TestEmbeddingLabel(t *testing.T) {
	assert.Equal(t, "local hash, 512 dims", embeddingLabel(config.EmbedderConfig{}))
	assert.Equal(t, "local hash, 64 dims", embeddingLabel(config.EmbedderConfig{Dimensions: 64}))
	assert.Equal(t, "text-embedding-3-small", embeddingLabel(config.EmbedderConfig{
		BaseURL: "https://api.openai.com/v1",
		APIKey:  "k",
		Model:   "text-embedding-3-small",
	}))
}

func TestWorkersOr(t *testing.T) {
	cfg := &config.Config{}
	cfg.Extraction.Workers = 4
	assert.Equal(t, 4, workersOr(0, cfg))
	assert.Equal(t, 2, workersOr(2, cfg))
}
