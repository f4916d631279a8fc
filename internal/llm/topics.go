package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrNoTopics is returned when there is nothing to connect.
var ErrNoTopics = errors.New("no topics to connect")

const topicMapSystemPrompt = "You are a helpful AI that analyzes relationships between academic topics and creates 3D flowchart data. Always return valid JSON."

const topicMapPrompt = `Given these topics from study materials: %s,
analyze their relationships and create a JSON structure with:
1. Topics as nodes with positions in 3D space
2. Connections between related topics with strength values (0-1)
Consider:
- Prerequisites and dependencies
- Conceptual relationships
- Topic hierarchies
Return only the JSON structure in this exact format:
{
  "topics": [
    {
      "name": "topic name",
      "position": [x, y, z]
    }
  ],
  "connections": [
    {
      "from": "topic name",
      "to": "topic name",
      "strength": 0.5
    }
  ]
}`

// Connection is a weighted link between two topics.
type Connection struct {
	From     string  `json:"from" yaml:"from"`
	To       string  `json:"to" yaml:"to"`
	Strength float64 `json:"strength" yaml:"strength"`
}

// TopicPosition is the model's suggested placement of a topic.
type TopicPosition struct {
	Name     string
	Position []float64
}

// TopicMap is the model's reading of how a set of topics relate.
type TopicMap struct {
	Topics      []TopicPosition
	Connections []Connection
}

// ConnectTopics asks the model how the given topics relate. Unlike
// AnalyzeNotes, an unusable reply is an error: there is no sensible default
// map to fall back to at this level.
func (c *Client) ConnectTopics(ctx context.Context, topics []string) (TopicMap, error) {
	if len(topics) == 0 {
		return TopicMap{}, ErrNoTopics
	}

	raw, err := c.Complete(ctx, topicMapSystemPrompt, fmt.Sprintf(topicMapPrompt, strings.Join(topics, ", ")))
	if err != nil {
		return TopicMap{}, fmt.Errorf("connect topics: %w", err)
	}

	m, err := parseTopicMap(raw)
	if err != nil {
		c.log.Warn().Err(err).Int("reply_bytes", len(raw)).Msg("could not parse topic map reply")
		return TopicMap{}, fmt.Errorf("connect topics: %w", err)
	}
	c.log.Debug().Int("topics", len(m.Topics)).Int("connections", len(m.Connections)).Msg("connected topics")
	return m, nil
}

var errInvalidTopicMap = errors.New("topic map reply must have topics and connections arrays")

// parseTopicMap decodes a topic map reply. Connections without both ends or
// without a numeric strength are dropped; strengths are clamped to [0, 1].
func parseTopicMap(raw string) (TopicMap, error) {
	var reply struct {
		Topics []struct {
			Name     string    `json:"name"`
			Position []float64 `json:"position"`
		} `json:"topics"`
		Connections []struct {
			From     string   `json:"from"`
			To       string   `json:"to"`
			Strength *float64 `json:"strength"`
		} `json:"connections"`
	}
	if err := decodeReply(raw, &reply); err != nil {
		return TopicMap{}, err
	}
	if reply.Topics == nil || reply.Connections == nil {
		return TopicMap{}, errInvalidTopicMap
	}

	m := TopicMap{
		Topics:      make([]TopicPosition, 0, len(reply.Topics)),
		Connections: make([]Connection, 0, len(reply.Connections)),
	}
	for _, t := range reply.Topics {
		m.Topics = append(m.Topics, TopicPosition{Name: strings.TrimSpace(t.Name), Position: t.Position})
	}
	for _, conn := range reply.Connections {
		from, to := strings.TrimSpace(conn.From), strings.TrimSpace(conn.To)
		if from == "" || to == "" || conn.Strength == nil {
			continue
		}
		m.Connections = append(m.Connections, Connection{From: from, To: to, Strength: clamp01(*conn.Strength)})
	}
	return m, nil
}

func clamp01(f float64) float64 {
	return min(max(f, 0), 1)
}
