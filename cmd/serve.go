package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/notesai/notesai/internal/config"
	"github.com/notesai/notesai/internal/display"
	"github.com/notesai/notesai/internal/library"
	"github.com/notesai/notesai/internal/llm"
	"github.com/notesai/notesai/internal/server"
	"github.com/notesai/notesai/internal/vector"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the PDF extraction HTTP server",
	Long: `Starts the HTTP server on port 8000 (or server.port, or $PORT).

Endpoints:
  POST /v1/extract   - upload a PDF (multipart field "file" or raw body with ?name=)
  POST /v1/analyze   - extract, then summarize with the configured LLM
  GET  /v1/documents - list the notes uploaded since the server started
  POST /v1/chat      - answer a question from the uploaded notes
  GET  /v1/flowchart - map the topics of the uploaded notes
  GET  /health       - liveness check

Notes analysis, chat and flowchart connections are enabled when LLM_API_KEY
is set. Passages are embedded remotely when EMBEDDER_API_KEY is set and with
a local hashing embedder otherwise.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port to listen on (default: server.port)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}

	port := a.cfg.Server.Port
	// PORT is set by most container platforms
	if envPort := os.Getenv("PORT"); envPort != "" {
		p, err := strconv.Atoi(envPort)
		if err != nil {
			return fmt.Errorf("invalid PORT %q: %w", envPort, err)
		}
		port = p
	}
	if servePort > 0 {
		port = servePort
	}

	var assistant server.Assistant
	if a.cfg.LLM.Enabled() {
		client, err := llm.NewClient(&a.cfg.LLM, a.log)
		if err != nil {
			return fmt.Errorf("create LLM client: %w", err)
		}
		assistant = client
	}

	lib, err := library.NewFromConfig(a.cfg, a.log)
	if err != nil {
		return fmt.Errorf("create notes library: %w", err)
	}

	srv := server.New(a.cfg.Server, a.loader, lib, assistant, a.log)

	display.PrintBanner(display.ServerInfo{
		Version:        resolvedVersion(),
		MaxTextLength:  a.cfg.Extraction.MaxTextLength,
		Timeout:        a.cfg.Extraction.Timeout.String(),
		MaxUploadBytes: a.cfg.Server.MaxUploadBytes,
		LLMEnabled:     assistant != nil,
		LLMModel:       a.cfg.LLM.Model,
		LLMBaseURL:     a.cfg.LLM.BaseURL,
		Embedding:      embeddingLabel(a.cfg.Embedder),
		TopK:           a.cfg.Library.TopK,
		Port:           port,
	})

	if err := srv.Run(cmd.Context(), fmt.Sprintf(":%d", port)); err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	display.Success("server stopped")
	return nil
}

func embeddingLabel(cfg config.EmbedderConfig) string {
	if cfg.Remote() {
		return cfg.Model
	}
	dims := cfg.Dimensions
	if dims <= 0 {
		dims = vector.DefaultDimensions
	}
	return fmt.Sprintf("local hash, %d dims", dims)
}
