package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/notesai/notesai/internal/display"
	"github.com/notesai/notesai/internal/reader"
)

var (
	extractFormat  string
	extractWorkers int
)

var extractCmd = &cobra.Command{
	Use:   "extract <file|dir>...",
	Short: "Extract plain text from PDF files",
	Long: `Extracts normalized plain text from each PDF. Directories are scanned
for *.pdf files, several at a time.

Text goes to stdout; progress and warnings go to stderr.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().StringVarP(&extractFormat, "format", "f", formatText, "output format: text, json or yaml")
	extractCmd.Flags().IntVarP(&extractWorkers, "workers", "w", 0, "parallel extractions for directories (default: extraction.workers)")
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	if err := checkFormat(extractFormat); err != nil {
		return err
	}
	a, err := loadApp()
	if err != nil {
		return err
	}
	workers := extractWorkers
	if workers <= 0 {
		workers = a.cfg.Extraction.Workers
	}

	docs, failed := collect(cmd.Context(), a.loader, args, workers)
	if len(docs) == 0 {
		return errors.New("no text could be extracted")
	}
	if err := printDocuments(docs); err != nil {
		return err
	}
	if failed > 0 {
		display.Warn(fmt.Sprintf("%d file(s) could not be extracted", failed))
		return nil
	}
	display.Success(fmt.Sprintf("extracted %d document(s)", len(docs)))
	return nil
}

// collect extracts every file and directory in paths, reporting progress,
// and returns the documents plus the number of inputs that failed.
func collect(ctx context.Context, loader *reader.Loader, paths []string, workers int) ([]reader.Document, int) {
	var (
		docs   []reader.Document
		failed int
	)
	progress := display.NewProgress(len(paths))
	for _, path := range paths {
		progress.Next("Extracting", path)

		loaded, failures, err := loadPath(ctx, loader, path, workers)
		if err != nil {
			progress.Skipped(path, err)
			failed++
			continue
		}
		for _, f := range failures {
			progress.Skipped(f.Path, f.Err)
		}
		failed += len(failures)
		for _, doc := range loaded {
			progress.Extracted(doc)
		}
		progress.Done()
		docs = append(docs, loaded...)
	}
	return docs, failed
}

// loadPath extracts a single file or every PDF in a directory.
func loadPath(ctx context.Context, loader *reader.Loader, path string, workers int) ([]reader.Document, []reader.Failure, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, nil, err
	}
	if info.IsDir() {
		return loader.LoadDirectory(ctx, path, workers)
	}

	doc, err := loader.LoadFile(ctx, path)
	if err != nil {
		if hint := doc.Info.Hint(); hint != "" {
			return nil, nil, fmt.Errorf("%w (%s)", err, hint)
		}
		return nil, nil, err
	}
	return []reader.Document{doc}, nil, nil
}

func printDocuments(docs []reader.Document) error {
	if extractFormat != formatText {
		if len(docs) == 1 {
			return writeStructured(os.Stdout, extractFormat, docs[0])
		}
		return writeStructured(os.Stdout, extractFormat, docs)
	}

	for i, doc := range docs {
		if len(docs) > 1 {
			if i > 0 {
				fmt.Fprintln(os.Stdout)
			}
			fmt.Fprintf(os.Stdout, "==> %s <==\n", doc.Name)
		}
		fmt.Fprintln(os.Stdout, strings.TrimSpace(doc.Content))
	}
	return nil
}
