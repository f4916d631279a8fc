package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/phuslu/log"

	"github.com/notesai/notesai/internal/config"
	"github.com/notesai/notesai/internal/graph"
	"github.com/notesai/notesai/internal/library"
	"github.com/notesai/notesai/internal/llm"
	"github.com/notesai/notesai/internal/logging"
	"github.com/notesai/notesai/internal/pdftext"
	"github.com/notesai/notesai/internal/reader"
)

const defaultUploadName = "upload.pdf"

// Assistant is the LLM behind analysis, question answering and the topic
// flowchart.
type Assistant interface {
	AnalyzeNotes(ctx context.Context, text string) (llm.Analysis, error)
	AnswerQuestion(ctx context.Context, question string, passages []llm.Passage) (string, error)
	graph.Connector
}

// Server is the NotesAI extraction HTTP service.
type Server struct {
	cfg       config.ServerConfig
	loader    *reader.Loader
	library   *library.Library
	assistant Assistant
	log       *log.Logger
	router    chi.Router
}

// New creates a Server. assistant may be nil, in which case /v1/analyze and
// /v1/chat answer 503. lib may be nil, in which case uploads are not kept and
// the library endpoints answer 503.
func New(cfg config.ServerConfig, loader *reader.Loader, lib *library.Library, assistant Assistant, logger *log.Logger) *Server {
	if logger == nil {
		logger = logging.Discard()
	}
	s := &Server{
		cfg:       cfg,
		loader:    loader,
		library:   lib,
		assistant: assistant,
		log:       logger,
	}
	s.router = s.routes()
	return s
}

// Handler returns the HTTP handler for the server.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		errc <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	}
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLog)
	r.Use(middleware.Recoverer)
	if s.cfg.RequestTimeout > 0 {
		r.Use(middleware.Timeout(s.cfg.RequestTimeout))
	}

	origins := s.cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)
	r.Route("/v1", func(v1 chi.Router) {
		v1.Post("/extract", s.handleExtract)
		v1.Post("/analyze", s.handleAnalyze)
		v1.Get("/documents", s.handleDocuments)
		v1.Post("/chat", s.handleChat)
		v1.Get("/flowchart", s.handleFlowchart)
	})
	return r
}

// extractResponse is the body of a successful extraction.
type extractResponse struct {
	ID             string           `json:"id"`
	Name           string           `json:"name"`
	Text           string           `json:"text"`
	Strategy       pdftext.Strategy `json:"strategy"`
	OriginalLength int              `json:"original_length"`
	Truncated      bool             `json:"truncated"`
	Analysis       *llm.Analysis    `json:"analysis,omitempty"`
}

type errorResponse struct {
	Error   string          `json:"error"`
	Reason  string          `json:"reason,omitempty"`
	Details string          `json:"details,omitempty"`
	PDF     *reader.PDFInfo `json:"pdf,omitempty"`
	Hint    string          `json:"hint,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	docs := 0
	if s.library != nil {
		docs = s.library.Len()
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"llm":       s.assistant != nil,
		"documents": docs,
		"time":      time.Now().UTC().Format(time.RFC3339),
	})
}

// handleExtract handles POST /v1/extract.
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.extract(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.keep(r, doc, nil))
}

// handleAnalyze handles POST /v1/analyze. An analysis failure falls back to
// the default analysis instead of failing the upload.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if s.assistant == nil {
		writeJSON(w, http.StatusServiceUnavailable, errLLMUnavailable)
		return
	}

	doc, ok := s.extract(w, r)
	if !ok {
		return
	}

	analysis, err := s.assistant.AnalyzeNotes(r.Context(), doc.Content)
	if err != nil {
		s.log.Warn().Str("request_id", middleware.GetReqID(r.Context())).Err(err).Msg("notes analysis failed, using defaults")
		analysis = llm.DefaultAnalysis()
	}

	writeJSON(w, http.StatusOK, s.keep(r, doc, &analysis))
}

// keep adds doc to the library, when there is one, and builds the response.
// A library failure is logged and does not fail the upload.
func (s *Server) keep(r *http.Request, doc reader.Document, analysis *llm.Analysis) extractResponse {
	resp := newExtractResponse(doc)
	resp.Analysis = analysis
	if s.library == nil {
		return resp
	}

	entry, err := s.library.Add(r.Context(), doc, analysis)
	if err != nil {
		s.log.Warn().Str("request_id", middleware.GetReqID(r.Context())).Str("name", doc.Name).Err(err).Msg("could not add document to library")
		return resp
	}
	resp.ID = entry.ID
	return resp
}

// extract reads the upload and runs it through the loader. It writes the
// error response itself and reports whether the caller should continue.
func (s *Server) extract(w http.ResponseWriter, r *http.Request) (reader.Document, bool) {
	name, data, err := s.readUpload(w, r)
	if err != nil {
		status, reason := http.StatusBadRequest, "bad_request"
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			status, reason = http.StatusRequestEntityTooLarge, "too_large"
		}
		writeJSON(w, status, errorResponse{Error: err.Error(), Reason: reason})
		return reader.Document{}, false
	}

	doc, err := s.loader.LoadBytes(r.Context(), name, data)
	if err != nil {
		status, reason, msg := classify(err)
		s.log.Info().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("name", name).
			Int("bytes", len(data)).
			Str("reason", reason).
			Msg("extraction failed")
		writeJSON(w, status, errorResponse{Error: msg, Reason: reason, PDF: doc.Info, Hint: doc.Info.Hint()})
		return reader.Document{}, false
	}
	return doc, true
}

// readUpload accepts either a multipart form with a "file" field or a raw
// request body named by the "name" query parameter.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (string, []byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(s.cfg.MaxUploadBytes); err != nil {
			return "", nil, fmt.Errorf("read form: %w", err)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			return "", nil, errors.New("file is required")
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			return "", nil, fmt.Errorf("read file: %w", err)
		}
		return header.Filename, data, nil
	}

	name := r.URL.Query().Get("name")
	if name == "" {
		name = defaultUploadName
	}
	data, err := io.ReadAll(r.Body)
	if err != nil {
		return "", nil, fmt.Errorf("read body: %w", err)
	}
	return name, data, nil
}

// classify maps a loader error to a status code, a reason and a client-safe
// message.
func classify(err error) (int, string, string) {
	switch {
	case errors.Is(err, reader.ErrUnsupportedFormat):
		return http.StatusBadRequest, "unsupported_format", "Only PDF files are supported"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "timeout", "PDF extraction timed out"
	case errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable, "cancelled", "request was cancelled"
	}

	reason := pdftext.ReasonOf(err)
	msg := err.Error()
	var sentinel error
	switch reason {
	case pdftext.ReasonEmptyBuffer:
		return http.StatusBadRequest, string(reason), pdftext.ErrEmptyBuffer.Error()
	case pdftext.ReasonBufferTooSmall:
		sentinel = pdftext.ErrBufferTooSmall
	case pdftext.ReasonInvalidSignature:
		sentinel = pdftext.ErrInvalidSignature
	case pdftext.ReasonNoExtractableText:
		sentinel = pdftext.ErrNoExtractableText
	default:
		var internal *pdftext.InternalError
		if errors.As(err, &internal) {
			msg = internal.Error()
		} else {
			msg = "failed to process the PDF file"
		}
		return http.StatusInternalServerError, string(pdftext.ReasonInternal), msg
	}
	return http.StatusUnprocessableEntity, string(reason), sentinel.Error()
}

func newExtractResponse(doc reader.Document) extractResponse {
	return extractResponse{
		ID:             uuid.NewString(),
		Name:           doc.Name,
		Text:           doc.Content,
		Strategy:       doc.Strategy,
		OriginalLength: doc.OriginalLength,
		Truncated:      doc.Truncated,
	}
}

func (s *Server) requestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Info().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("took", time.Since(start)).
			Str("remote", r.RemoteAddr).
			Msg("http request")
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
