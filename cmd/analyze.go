package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/notesai/notesai/internal/config"
	"github.com/notesai/notesai/internal/display"
	"github.com/notesai/notesai/internal/llm"
	"github.com/notesai/notesai/internal/reader"
)

var analyzeFormat string

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Extract a PDF and summarize it with the configured LLM",
	Long: `Extracts the PDF's text and asks an OpenAI-compatible provider
(Perplexity by default) for topics, a summary, the subject and a course code.

Requires LLM_API_KEY (or llm.api_key in the config file).`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeFormat, "format", "f", formatText, "output format: text, json or yaml")
	rootCmd.AddCommand(analyzeCmd)
}

type analyzeResult struct {
	reader.Document `yaml:",inline"`
	Analysis        llm.Analysis `json:"analysis" yaml:"analysis"`
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	if err := checkFormat(analyzeFormat); err != nil {
		return err
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

	ctx := cmd.Context()

	progress := display.NewProgress(2)
	progress.Next("Extracting", args[0])
	doc, err := a.loader.LoadFile(ctx, args[0])
	if err != nil {
		return err
	}
	progress.Extracted(doc)
	progress.Done()

	progress.Next("Analyzing with", client.Model())
	analysis, err := client.AnalyzeNotes(ctx, doc.Content)
	if err != nil {
		progress.Skipped("analysis", err)
		analysis = llm.DefaultAnalysis()
	} else {
		progress.Result("Subject", analysis.Subject)
	}
	progress.Done()

	if analyzeFormat != formatText {
		return writeStructured(os.Stdout, analyzeFormat, analyzeResult{Document: doc, Analysis: analysis})
	}

	fmt.Fprintf(os.Stdout, "Subject:     %s\n", analysis.Subject)
	if analysis.CourseCode != "" {
		fmt.Fprintf(os.Stdout, "Course code: %s\n", analysis.CourseCode)
	}
	fmt.Fprintf(os.Stdout, "Topics:      %s\n", strings.Join(analysis.Topics, ", "))
	fmt.Fprintf(os.Stdout, "Summary:     %s\n", analysis.Summary)
	return nil
}
