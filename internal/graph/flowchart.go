package graph

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/notesai/notesai/internal/llm"
)

// ErrNoTopics is returned when no document in the graph has topics.
var ErrNoTopics = errors.New("no topics found in documents")

// defaultStrength links consecutive topics when nothing better is known.
const defaultStrength = 0.5

// layoutRadius is the radius of the ring used for topics without a
// suggested position.
const layoutRadius = 5.0

// Connector suggests how a set of topics relate.
type Connector interface {
	ConnectTopics(ctx context.Context, topics []string) (llm.TopicMap, error)
}

// Node is a topic placed in 3D space.
type Node struct {
	ID        string     `json:"id" yaml:"id"`
	Name      string     `json:"name" yaml:"name"`
	Documents []string   `json:"documents" yaml:"documents"`
	Position  [3]float64 `json:"position" yaml:"position"`
}

// Flowchart is the topic map of every document in the graph.
type Flowchart struct {
	Topics      []Node       `json:"topics" yaml:"topics"`
	Connections []Connection `json:"connections" yaml:"connections"`
}

// BuildFlowchart lays out every topic in db and links them. With a non-nil
// connector, its suggested links between known topics are stored first; topic
// names are matched case-insensitively. When no link between current topics
// exists afterwards, consecutive topics are chained with strength 0.5.
func BuildFlowchart(ctx context.Context, db *DB, connector Connector) (Flowchart, error) {
	topics, err := db.Topics(ctx)
	if err != nil {
		return Flowchart{}, err
	}
	if len(topics) == 0 {
		return Flowchart{}, ErrNoTopics
	}

	canonical := make(map[string]string, len(topics))
	names := make([]string, len(topics))
	for i, t := range topics {
		names[i] = t.Name
		canonical[strings.ToLower(t.Name)] = t.Name
	}
	lookup := func(name string) (string, bool) {
		n, ok := canonical[strings.ToLower(strings.TrimSpace(name))]
		return n, ok
	}

	suggested := map[string][3]float64{}
	if connector != nil {
		m, err := connector.ConnectTopics(ctx, names)
		if err != nil {
			return Flowchart{}, fmt.Errorf("generate flowchart: %w", err)
		}

		conns := make([]Connection, 0, len(m.Connections))
		for _, c := range m.Connections {
			from, okFrom := lookup(c.From)
			to, okTo := lookup(c.To)
			if okFrom && okTo {
				conns = append(conns, Connection{From: from, To: to, Strength: c.Strength})
			}
		}
		if err := db.AddConnections(ctx, conns); err != nil {
			return Flowchart{}, err
		}

		for _, t := range m.Topics {
			name, ok := lookup(t.Name)
			if ok && len(t.Position) == 3 {
				suggested[name] = [3]float64{t.Position[0], t.Position[1], t.Position[2]}
			}
		}
	}

	stored, err := db.Connections(ctx)
	if err != nil {
		return Flowchart{}, err
	}
	conns := make([]Connection, 0, len(stored))
	for _, c := range stored {
		_, okFrom := canonical[strings.ToLower(c.From)]
		_, okTo := canonical[strings.ToLower(c.To)]
		if okFrom && okTo {
			conns = append(conns, c)
		}
	}
	if len(conns) == 0 {
		for i := 0; i+1 < len(names); i++ {
			conns = append(conns, Connection{From: names[i], To: names[i+1], Strength: defaultStrength})
		}
	}

	nodes := make([]Node, len(topics))
	for i, t := range topics {
		pos, ok := suggested[t.Name]
		if !ok {
			pos = ringPosition(i, len(topics))
		}
		nodes[i] = Node{
			ID:        fmt.Sprintf("topic-%d", i),
			Name:      t.Name,
			Documents: t.Documents,
			Position:  pos,
		}
	}

	return Flowchart{Topics: nodes, Connections: conns}, nil
}

// ringPosition spreads n topics on a ring in the XY plane, alternating
// heights so neighbours stay apart.
func ringPosition(i, n int) [3]float64 {
	angle := 2 * math.Pi * float64(i) / float64(n)
	return [3]float64{
		round2(layoutRadius * math.Cos(angle)),
		round2(layoutRadius * math.Sin(angle)),
		float64(i%3 - 1),
	}
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
