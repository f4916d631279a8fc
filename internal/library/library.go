// Package library keeps extracted notes in memory so they can be searched
// for question answering and mapped by topic.
package library

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phuslu/log"

	"github.com/notesai/notesai/internal/chunker"
	"github.com/notesai/notesai/internal/config"
	"github.com/notesai/notesai/internal/graph"
	"github.com/notesai/notesai/internal/llm"
	"github.com/notesai/notesai/internal/logging"
	"github.com/notesai/notesai/internal/reader"
	"github.com/notesai/notesai/internal/vector"
)

// ErrEmpty is returned when an operation needs documents and there are none.
var ErrEmpty = errors.New("no documents found")

// Entry describes a stored document.
type Entry struct {
	ID       string        `json:"id" yaml:"id"`
	Name     string        `json:"name" yaml:"name"`
	Chars    int           `json:"chars" yaml:"chars"`
	Chunks   int           `json:"chunks" yaml:"chunks"`
	Analysis *llm.Analysis `json:"analysis,omitempty" yaml:"analysis,omitempty"`
	Added    time.Time     `json:"added" yaml:"added"`
}

// Library indexes documents for retrieval and their topics for the flowchart.
type Library struct {
	chunker *chunker.Chunker
	store   *vector.Store
	graph   *graph.DB
	topK    int
	log     *log.Logger

	mu      sync.RWMutex
	entries map[string]Entry
}

// New creates a Library. topK is the number of passages Search returns by
// default. A nil logger discards all events.
func New(ch *chunker.Chunker, store *vector.Store, g *graph.DB, topK int, logger *log.Logger) *Library {
	if logger == nil {
		logger = logging.Discard()
	}
	if topK <= 0 {
		topK = 5
	}
	return &Library{
		chunker: ch,
		store:   store,
		graph:   g,
		topK:    topK,
		log:     logger,
		entries: map[string]Entry{},
	}
}

// NewFromConfig builds a Library and its stores from cfg. Passages are
// embedded remotely when an embedder API key is set and locally otherwise.
func NewFromConfig(cfg *config.Config, logger *log.Logger) (*Library, error) {
	if cfg == nil {
		return nil, config.ErrNilConfig
	}
	ch, err := chunker.New(cfg.Library.Chunk)
	if err != nil {
		return nil, fmt.Errorf("create chunker: %w", err)
	}

	embed := vector.HashEmbedding(cfg.Embedder.Dimensions)
	if cfg.Embedder.Remote() {
		embedder, err := llm.NewEmbedder(&cfg.Embedder)
		if err != nil {
			return nil, fmt.Errorf("create embedder: %w", err)
		}
		embed = embedder.Embed
	}

	store, err := vector.NewStore(embed)
	if err != nil {
		return nil, fmt.Errorf("create vector store: %w", err)
	}
	g, err := graph.NewDB()
	if err != nil {
		return nil, fmt.Errorf("create topic graph: %w", err)
	}
	return New(ch, store, g, cfg.Library.TopK, logger), nil
}

// Add stores doc under a new ID and returns its entry. When analysis is not
// nil its topics are recorded in the topic graph.
func (l *Library) Add(ctx context.Context, doc reader.Document, analysis *llm.Analysis) (Entry, error) {
	entry := Entry{
		ID:       uuid.NewString(),
		Name:     doc.Name,
		Chars:    doc.OriginalLength,
		Analysis: analysis,
		Added:    time.Now().UTC(),
	}

	chunks := l.chunker.Split(entry.ID, entry.Name, doc.Content)
	if err := l.store.AddChunks(ctx, chunks); err != nil {
		return Entry{}, fmt.Errorf("index %q: %w", doc.Name, err)
	}
	entry.Chunks = len(chunks)

	if analysis != nil {
		if err := l.graph.AddDocumentTopics(ctx, entry.Name, analysis.Topics); err != nil {
			return Entry{}, fmt.Errorf("record topics of %q: %w", doc.Name, err)
		}
	}

	l.mu.Lock()
	l.entries[entry.ID] = entry
	l.mu.Unlock()

	l.log.Info().Str("id", entry.ID).Str("name", entry.Name).Int("chunks", entry.Chunks).Msg("added document to library")
	return entry, nil
}

// Entries returns every stored document, oldest first.
func (l *Library) Entries() []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Entry, 0, len(l.entries))
	for _, e := range l.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Added.Equal(out[j].Added) {
			return out[i].Added.Before(out[j].Added)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Len returns the number of stored documents.
func (l *Library) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// Search returns the passages most relevant to question, limited to
// documentIDs when any are given.
func (l *Library) Search(ctx context.Context, question string, documentIDs ...string) ([]llm.Passage, error) {
	results, err := l.store.Query(ctx, question, l.topK, documentIDs...)
	if err != nil {
		return nil, err
	}
	passages := make([]llm.Passage, len(results))
	for i, r := range results {
		passages[i] = llm.Passage{
			DocumentID: r.DocumentID,
			Document:   r.Document,
			Content:    r.Content,
			Similarity: r.Similarity,
		}
	}
	return passages, nil
}

// Flowchart maps the topics of every analyzed document. connector may be nil.
func (l *Library) Flowchart(ctx context.Context, connector graph.Connector) (graph.Flowchart, error) {
	if l.Len() == 0 {
		return graph.Flowchart{}, ErrEmpty
	}
	return graph.BuildFlowchart(ctx, l.graph, connector)
}
