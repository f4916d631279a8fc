package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyQuestion is returned when a question is blank.
var ErrEmptyQuestion = errors.New("question is required")

const (
	// NoDocumentsAnswer is the reply when nothing has been uploaded yet.
	NoDocumentsAnswer = "You haven't uploaded any documents yet. Please upload some notes first."
	// FallbackAnswer is the reply when the provider could not be reached.
	FallbackAnswer = "I'm sorry, I encountered an error while processing your question. Please try again later."
)

// maxPassageChars bounds each passage placed in the question context.
const maxPassageChars = 1000

const questionPrompt = `Answer the following question based on the provided documents.
If the information isn't in the documents, acknowledge that and provide a general response.
Cite which document(s) you used for your answer.

Question: %s`

// Passage is a piece of a document offered as context for a question.
type Passage struct {
	DocumentID string  `json:"document_id" yaml:"document_id"`
	Document   string  `json:"document" yaml:"document"`
	Content    string  `json:"-" yaml:"-"`
	Similarity float32 `json:"similarity" yaml:"similarity"`
}

// AnswerQuestion answers question from the given passages. With no passages
// it returns NoDocumentsAnswer without calling the provider.
func (c *Client) AnswerQuestion(ctx context.Context, question string, passages []Passage) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", ErrEmptyQuestion
	}
	if len(passages) == 0 {
		return NoDocumentsAnswer, nil
	}

	system := notesSystemPrompt + " Use the following context to answer the question: " + questionContext(passages)
	answer, err := c.Complete(ctx, system, fmt.Sprintf(questionPrompt, question))
	if err != nil {
		return "", fmt.Errorf("answer question: %w", err)
	}
	c.log.Debug().Int("passages", len(passages)).Int("answer_chars", len(answer)).Msg("answered question")
	return answer, nil
}

func questionContext(passages []Passage) string {
	var sb strings.Builder
	for _, p := range passages {
		fmt.Fprintf(&sb, "Document title: %s\nContent: %s...\n\n", p.Document, prefix(p.Content, maxPassageChars))
	}
	return sb.String()
}
