package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/notesai/notesai/internal/display"
	"github.com/notesai/notesai/internal/pdftext"
	"github.com/notesai/notesai/internal/reader"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <file>",
	Short: "Show how a PDF would be extracted",
	Long: `Checks the PDF signature, parses the document structure with pdfcpu and
runs the extraction cascade, then reports which scanner succeeded.`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(_ *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}

	path := args[0]
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read file %q: %w", path, err)
	}

	display.Header("Inspecting " + path)
	display.Fact("Size", fmt.Sprintf("%d bytes", len(data)), display.Plain)

	if err := pdftext.ValidateSignature(data); err != nil {
		display.Fact("Signature", pdftext.ReasonOf(err), display.Bad)
		return err
	}
	display.Fact("Signature", "ok", display.Good)

	if info, err := reader.InspectPDF(data); err != nil {
		display.Fact("Structure", "unreadable: "+err.Error(), display.Caution)
	} else {
		display.Fact("Version", info.Version, display.Plain)
		display.Fact("Pages", info.PageCount, display.Plain)
		display.Fact("Encrypted", info.Encrypted, display.Plain)
	}

	res, err := a.ex.Parse(data)
	if err != nil {
		display.Fact("Extraction", pdftext.ReasonOf(err), display.Bad)
		return err
	}
	display.Fact("Strategy", res.Strategy, display.Accent)
	display.Fact("Characters", res.OriginalLength, display.Good)
	display.Fact("Truncated", res.Truncated, display.Plain)
	display.Fact("Preview", preview(res.Text, 80), display.Muted)
	return nil
}

func preview(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
