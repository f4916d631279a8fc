// Package graph stores which documents cover which topics, and how topics
// relate, in an in-memory cayley quad store.
package graph

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/cayleygraph/cayley"
	_ "github.com/cayleygraph/cayley/graph/memstore"
	"github.com/cayleygraph/quad"

	"github.com/notesai/notesai/internal/llm"
)

// ErrEmptyName is returned when a document or topic name is blank.
var ErrEmptyName = errors.New("name cannot be empty")

const (
	predCovers    = "covers"
	predRelatedTo = "related_to"
)

// Connection is a weighted topic-to-topic link.
type Connection = llm.Connection

// Topic is a topic and the documents that cover it.
type Topic struct {
	Name      string   `json:"name" yaml:"name"`
	Documents []string `json:"documents" yaml:"documents"`
}

// DB wraps a cayley graph database.
type DB struct {
	store *cayley.Handle

	// mu serializes writes against iteration. The quad writer rejects
	// duplicates, so inserts are filtered through seen first.
	mu   sync.RWMutex
	seen map[string]struct{}
}

// NewDB creates a new in-memory graph DB.
func NewDB() (*DB, error) {
	store, err := cayley.NewMemoryGraph()
	if err != nil {
		return nil, fmt.Errorf("create memory graph: %w", err)
	}
	return &DB{store: store, seen: map[string]struct{}{}}, nil
}

// AddDocumentTopics records that document covers each of topics.
func (db *DB) AddDocumentTopics(_ context.Context, document string, topics []string) error {
	document = normalise(document)
	if document == "" {
		return ErrEmptyName
	}

	quads := make([]quad.Quad, 0, len(topics))
	for _, t := range topics {
		if t = normalise(t); t != "" {
			quads = append(quads, quad.Make(document, predCovers, t, nil))
		}
	}
	return db.add(quads)
}

// AddConnections stores topic links. The strength is kept as the quad label;
// a pair that is already linked keeps its first strength.
func (db *DB) AddConnections(_ context.Context, conns []Connection) error {
	quads := make([]quad.Quad, 0, len(conns))
	for _, c := range conns {
		from, to := normalise(c.From), normalise(c.To)
		if from == "" || to == "" || from == to {
			continue
		}
		quads = append(quads, quad.Make(from, predRelatedTo, to, c.Strength))
	}
	return db.add(quads)
}

func (db *DB) add(quads []quad.Quad) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	fresh := make([]quad.Quad, 0, len(quads))
	for _, q := range quads {
		key := quadKey(q)
		if _, dup := db.seen[key]; dup {
			continue
		}
		db.seen[key] = struct{}{}
		fresh = append(fresh, q)
	}
	if len(fresh) == 0 {
		return nil
	}

	if err := db.store.AddQuadSet(fresh); err != nil {
		for _, q := range fresh {
			delete(db.seen, quadKey(q))
		}
		return fmt.Errorf("add quads: %w", err)
	}
	return nil
}

// Topics returns every covered topic sorted by name, each with the sorted
// documents that cover it.
func (db *DB) Topics(ctx context.Context) ([]Topic, error) {
	byTopic := map[string][]string{}
	err := db.each(ctx, predCovers, func(subj, obj string, _ quad.Value) {
		byTopic[obj] = append(byTopic[obj], subj)
	})
	if err != nil {
		return nil, err
	}

	topics := make([]Topic, 0, len(byTopic))
	for name, docs := range byTopic {
		sort.Strings(docs)
		topics = append(topics, Topic{Name: name, Documents: docs})
	}
	sort.Slice(topics, func(i, j int) bool { return topics[i].Name < topics[j].Name })
	return topics, nil
}

// Connections returns every stored topic link ordered by strength, strongest
// first, then by endpoints.
func (db *DB) Connections(ctx context.Context) ([]Connection, error) {
	conns := []Connection{}
	err := db.each(ctx, predRelatedTo, func(subj, obj string, label quad.Value) {
		var strength float64
		if f, ok := label.(quad.Float); ok {
			strength = float64(f)
		}
		conns = append(conns, Connection{From: subj, To: obj, Strength: strength})
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(conns, func(i, j int) bool {
		if conns[i].Strength != conns[j].Strength {
			return conns[i].Strength > conns[j].Strength
		}
		if conns[i].From != conns[j].From {
			return conns[i].From < conns[j].From
		}
		return conns[i].To < conns[j].To
	})
	return conns, nil
}

// each calls fn for every quad with the given predicate.
func (db *DB) each(ctx context.Context, predicate string, fn func(subj, obj string, label quad.Value)) error {
	db.mu.RLock()
	defer db.mu.RUnlock()

	it := db.store.QuadsAllIterator()
	defer it.Close()

	for it.Next(ctx) {
		q := db.store.Quad(it.Result())
		if quadValueStr(q.Predicate) != predicate {
			continue
		}
		fn(quadValueStr(q.Subject), quadValueStr(q.Object), q.Label)
	}
	if err := it.Err(); err != nil {
		return fmt.Errorf("iterate quads: %w", err)
	}
	return nil
}

// Count returns the number of quads in the graph.
func (db *DB) Count() int64 {
	stats, err := db.store.Stats(context.Background(), false)
	if err != nil {
		return 0
	}
	return stats.Quads.Size
}

// Close shuts down the graph store.
func (db *DB) Close() error {
	return db.store.Close()
}

func normalise(s string) string {
	return strings.TrimSpace(s)
}

func quadKey(q quad.Quad) string {
	return quadValueStr(q.Subject) + "\x00" + quadValueStr(q.Predicate) + "\x00" + quadValueStr(q.Object)
}

func quadValueStr(v quad.Value) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(quad.String); ok {
		return strings.TrimSpace(string(s))
	}
	s := quad.StringOf(v)
	s = strings.TrimPrefix(s, "\"")
	s = strings.TrimSuffix(s, "\"")
	return strings.TrimSpace(s)
}
