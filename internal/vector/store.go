// Package vector indexes note passages in an in-memory chromem-go collection
// for question answering.
package vector

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	chromem "github.com/philippgille/chromem-go"

	"github.com/notesai/notesai/internal/chunker"
)

// ErrNilEmbedding is returned when no embedding function is provided.
var ErrNilEmbedding = errors.New("embedding function is nil")

// ErrEmptyQuery is returned when a query is blank.
var ErrEmptyQuery = errors.New("query cannot be empty")

const collectionName = "notes"

// SearchResult is a passage ranked by similarity to a query.
type SearchResult struct {
	ChunkID    string
	DocumentID string
	Document   string
	Content    string
	Similarity float32
}

// Store wraps a chromem-go collection of note passages.
type Store struct {
	db         *chromem.DB
	collection *chromem.Collection
}

// NewStore creates an in-memory Store that embeds with embed.
func NewStore(embed chromem.EmbeddingFunc) (*Store, error) {
	if embed == nil {
		return nil, ErrNilEmbedding
	}

	db := chromem.NewDB()
	collection, err := db.CreateCollection(collectionName, nil, embed)
	if err != nil {
		return nil, fmt.Errorf("create collection: %w", err)
	}
	return &Store{db: db, collection: collection}, nil
}

// AddChunks embeds and stores a batch of passages.
func (s *Store) AddChunks(ctx context.Context, chunks []chunker.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	docs := make([]chromem.Document, len(chunks))
	for i, ch := range chunks {
		docs[i] = chromem.Document{
			ID:      ch.ID,
			Content: ch.Content,
			Metadata: map[string]string{
				"document_id": ch.DocumentID,
				"document":    ch.Document,
			},
		}
	}

	if err := s.collection.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return fmt.Errorf("add passages: %w", err)
	}
	return nil
}

// Query returns up to topK passages most similar to query. When documentIDs
// is non-empty only passages of those documents are considered.
func (s *Store) Query(ctx context.Context, query string, topK int, documentIDs ...string) ([]SearchResult, error) {
	if query == "" {
		return nil, ErrEmptyQuery
	}
	if topK <= 0 {
		topK = 5
	}

	total := s.collection.Count()
	if total == 0 {
		return []SearchResult{}, nil
	}

	// chromem rejects nResults above the collection size. A document filter
	// is applied after ranking, so it needs the full ranking.
	n := min(topK, total)
	if len(documentIDs) > 0 {
		n = total
	}

	results, err := s.collection.Query(ctx, query, n, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("vector query: %w", err)
	}

	allowed := make(map[string]struct{}, len(documentIDs))
	for _, id := range documentIDs {
		allowed[id] = struct{}{}
	}

	out := make([]SearchResult, 0, topK)
	for _, r := range results {
		docID := r.Metadata["document_id"]
		if len(allowed) > 0 {
			if _, ok := allowed[docID]; !ok {
				continue
			}
		}
		out = append(out, SearchResult{
			ChunkID:    r.ID,
			DocumentID: docID,
			Document:   r.Metadata["document"],
			Content:    r.Content,
			Similarity: r.Similarity,
		})
		if len(out) == topK {
			break
		}
	}
	return out, nil
}

// Count returns the number of stored passages.
func (s *Store) Count() int {
	return s.collection.Count()
}
