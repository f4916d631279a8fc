package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/notesai/notesai/internal/config"
	"github.com/notesai/notesai/internal/display"
	"github.com/notesai/notesai/internal/library"
	"github.com/notesai/notesai/internal/llm"
	"github.com/notesai/notesai/internal/reader"
)

var (
	askFormat  string
	askWorkers int
)

var askCmd = &cobra.Command{
	Use:   "ask <question> <file|dir>...",
	Short: "Answer a question from your lecture notes",
	Long: `Extracts the given PDFs, indexes their text and asks the configured LLM
to answer the question from the most relevant passages.

Requires LLM_API_KEY (or llm.api_key in the config file).`,
	Args: cobra.MinimumNArgs(2),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVarP(&askFormat, "format", "f", formatText, "output format: text, json or yaml")
	askCmd.Flags().IntVarP(&askWorkers, "workers", "w", 0, "parallel extractions for directories (default: extraction.workers)")
	rootCmd.AddCommand(askCmd)
}

type askResult struct {
	Question string        `json:"question" yaml:"question"`
	Answer   string        `json:"answer" yaml:"answer"`
	Sources  []llm.Passage `json:"sources" yaml:"sources"`
}

func runAsk(cmd *cobra.Command, args []string) error {
	if err := checkFormat(askFormat); err != nil {
		return err
	}
	question := strings.TrimSpace(args[0])
	if question == "" {
		return llm.ErrEmptyQuestion
	}
	a, err := loadApp()
	if err != nil {
		return err
	}
	if err := config.ValidateLLM(a.cfg.LLM); err != nil {
		return err
	}
	client, err := llm.NewClient(&a.cfg.LLM, a.log)
	if err != nil {
		return fmt.Errorf("create LLM client: %w", err)
	}
	lib, err := library.NewFromConfig(a.cfg, a.log)
	if err != nil {
		return fmt.Errorf("create notes library: %w", err)
	}

	ctx := cmd.Context()
	docs, _ := collect(ctx, a.loader, args[1:], workersOr(askWorkers, a.cfg))
	if len(docs) == 0 {
		return errors.New("no text could be extracted")
	}
	if err := indexDocuments(cmd, lib, docs, nil); err != nil {
		return err
	}

	passages, err := lib.Search(ctx, question)
	if err != nil {
		return fmt.Errorf("search notes: %w", err)
	}
	display.Info(fmt.Sprintf("answering from %d passage(s) with %s", len(passages), client.Model()))
	answer, err := client.AnswerQuestion(ctx, question, passages)
	if err != nil {
		display.Warn("could not answer: " + err.Error())
		answer = llm.FallbackAnswer
	}

	if askFormat != formatText {
		return writeStructured(os.Stdout, askFormat, askResult{Question: question, Answer: answer, Sources: passages})
	}
	fmt.Fprintln(os.Stdout, answer)
	if len(passages) > 0 {
		fmt.Fprintln(os.Stdout)
		fmt.Fprintln(os.Stdout, "Sources:")
		for _, p := range sourceNames(passages) {
			fmt.Fprintf(os.Stdout, "  - %s\n", p)
		}
	}
	return nil
}

// indexDocuments adds docs to lib. analyze, when not nil, is called for each
// document before it is added and its analysis recorded alongside.
func indexDocuments(cmd *cobra.Command, lib *library.Library, docs []reader.Document, analyze func(reader.Document) *llm.Analysis) error {
	for _, doc := range docs {
		var analysis *llm.Analysis
		if analyze != nil {
			analysis = analyze(doc)
		}
		if _, err := lib.Add(cmd.Context(), doc, analysis); err != nil {
			return err
		}
	}
	return nil
}

// sourceNames lists each passage's document once, in ranking order.
func sourceNames(passages []llm.Passage) []string {
	seen := make(map[string]bool, len(passages))
	var names []string
	for _, p := range passages {
		if seen[p.Document] {
			continue
		}
		seen[p.Document] = true
		names = append(names, p.Document)
	}
	return names
}

func workersOr(flag int, cfg *config.Config) int {
	if flag > 0 {
		return flag
	}
	return cfg.Extraction.Workers
}
