package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/phuslu/log"
	"github.com/sashabaranov/go-openai"

	"github.com/notesai/notesai/internal/config"
	"github.com/notesai/notesai/internal/logging"
)

// ErrNilConfig is returned when a nil config is provided.
var ErrNilConfig = errors.New("llm config is nil")

// ErrEmptyResponse is returned when the LLM returns an empty response.
var ErrEmptyResponse = errors.New("llm returned empty response")

// maxAnalysisChars is how much of the extracted text is sent for analysis.
const maxAnalysisChars = 8000

const notesSystemPrompt = "You are a helpful AI assistant specialized in analyzing student notes."

const analysisPrompt = `Analyze the following student notes. Please do the following:
1. Identify and list the main topics covered.
2. Create a brief summary of the content.
3. Determine the most likely academic subject for these notes (e.g., Mathematics, Physics, Computer Science, etc.)
4. If possible, determine a course code that might be associated with these notes (e.g., CS101, MATH201, etc.)

Return your response in valid JSON format with the following structure:
{
  "topics": ["topic1", "topic2", "topic3"],
  "summary": "A concise summary of the notes",
  "subject": "The determined subject",
  "courseCode": "The determined course code or null if not applicable"
}

Here are the notes to analyze:
%s`

// Client wraps the OpenAI client for LLM interactions.
type Client struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
	log         *log.Logger
}

// NewClient creates a new LLM client from a ProviderConfig.
func NewClient(cfg *config.ProviderConfig, logger *log.Logger) (*Client, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}
	if err := config.ValidateLLM(*cfg); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.Discard()
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	clientCfg.BaseURL = cfg.BaseURL

	return &Client{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		log:         logger,
	}, nil
}

// Complete sends a single user message and returns the assistant response text.
func (c *Client) Complete(ctx context.Context, systemPrompt, userMessage string) (string, error) {
	messages := []openai.ChatCompletionMessage{}
	if systemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: systemPrompt,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: userMessage,
	})

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", ErrEmptyResponse
	}
	return resp.Choices[0].Message.Content, nil
}

// AnalyzeNotes asks the model for the topics, summary, subject and course code
// of extracted notes. Only the first 8,000 characters are sent. A reply that
// cannot be parsed yields DefaultAnalysis and no error; transport failures are
// returned.
func (c *Client) AnalyzeNotes(ctx context.Context, text string) (Analysis, error) {
	prompt := fmt.Sprintf(analysisPrompt, prefix(text, maxAnalysisChars))

	raw, err := c.Complete(ctx, notesSystemPrompt, prompt)
	if err != nil {
		return Analysis{}, fmt.Errorf("analyze notes: %w", err)
	}

	analysis, err := parseAnalysis(raw)
	if err != nil {
		c.log.Warn().Err(err).Int("reply_bytes", len(raw)).Msg("could not parse analysis reply")
		return DefaultAnalysis(), nil
	}
	c.log.Debug().Str("subject", analysis.Subject).Int("topics", len(analysis.Topics)).Msg("analyzed notes")
	return analysis, nil
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.model
}

func prefix(s string, n int) string {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
