package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/notesai/notesai/internal/config"
	"github.com/notesai/notesai/internal/display"
	"github.com/notesai/notesai/internal/graph"
	"github.com/notesai/notesai/internal/library"
	"github.com/notesai/notesai/internal/llm"
	"github.com/notesai/notesai/internal/reader"
)

var (
	flowchartFormat  string
	flowchartWorkers int
)

var flowchartCmd = &cobra.Command{
	Use:   "flowchart <file|dir>...",
	Short: "Map how the topics of your lecture notes connect",
	Long: `Extracts the given PDFs, asks the configured LLM for each document's
topics and then for the connections between them.

Requires LLM_API_KEY (or llm.api_key in the config file).`,
	Args: cobra.MinimumNArgs(1),
	RunE: runFlowchart,
}

func init() {
	flowchartCmd.Flags().StringVarP(&flowchartFormat, "format", "f", formatText, "output format: text, json or yaml")
	flowchartCmd.Flags().IntVarP(&flowchartWorkers, "workers", "w", 0, "parallel extractions for directories (default: extraction.workers)")
	rootCmd.AddCommand(flowchartCmd)
}

func runFlowchart(cmd *cobra.Command, args []string) error {
	if err := checkFormat(flowchartFormat); err != nil {
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
	lib, err := library.NewFromConfig(a.cfg, a.log)
	if err != nil {
		return fmt.Errorf("create notes library: %w", err)
	}

	ctx := cmd.Context()
	docs, _ := collect(ctx, a.loader, args, workersOr(flowchartWorkers, a.cfg))
	if len(docs) == 0 {
		return errors.New("no text could be extracted")
	}

	progress := display.NewProgress(len(docs))
	err = indexDocuments(cmd, lib, docs, func(doc reader.Document) *llm.Analysis {
		progress.Next("Analyzing", doc.Name)
		defer progress.Done()
		analysis, err := client.AnalyzeNotes(ctx, doc.Content)
		if err != nil {
			progress.Skipped(doc.Name, err)
			analysis = llm.DefaultAnalysis()
		}
		progress.Result("Topics", len(analysis.Topics))
		return &analysis
	})
	if err != nil {
		return err
	}

	fc, err := lib.Flowchart(ctx, client)
	if err != nil {
		return fmt.Errorf("build flowchart: %w", err)
	}
	if flowchartFormat != formatText {
		return writeStructured(os.Stdout, flowchartFormat, fc)
	}
	printFlowchart(os.Stdout, fc)
	return nil
}

func printFlowchart(w io.Writer, fc graph.Flowchart) {
	fmt.Fprintln(w, "Topics:")
	for _, n := range fc.Topics {
		fmt.Fprintf(w, "  %-10s %s (%s)\n", n.ID, n.Name, strings.Join(n.Documents, ", "))
	}
	fmt.Fprintln(w, "Connections:")
	for _, c := range fc.Connections {
		fmt.Fprintf(w, "  %s -> %s (%.2f)\n", c.From, c.To, c.Strength)
	}
}
