package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/notesai/notesai/internal/graph"
	"github.com/notesai/notesai/internal/library"
	"github.com/notesai/notesai/internal/llm"
)

// maxChatBody bounds the JSON body of a chat request.
const maxChatBody = 64 << 10

var (
	errLLMUnavailable = errorResponse{
		Error:  "notes analysis is not configured",
		Reason: "llm_unavailable",
	}
	errLibraryUnavailable = errorResponse{
		Error:  "notes library is not enabled",
		Reason: "library_unavailable",
	}
)

type chatRequest struct {
	Question    string   `json:"question"`
	DocumentIDs []string `json:"document_ids"`
}

type chatResponse struct {
	Answer  string        `json:"answer"`
	Sources []llm.Passage `json:"sources"`
}

// handleDocuments handles GET /v1/documents.
func (s *Server) handleDocuments(w http.ResponseWriter, _ *http.Request) {
	if s.library == nil {
		writeJSON(w, http.StatusServiceUnavailable, errLibraryUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": s.library.Entries()})
}

// handleChat handles POST /v1/chat. A provider failure still answers 200 with
// an apology so that the conversation can continue.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxChatBody)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body", Reason: "bad_request"})
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Question is required", Reason: "bad_request"})
		return
	}
	if s.assistant == nil {
		writeJSON(w, http.StatusServiceUnavailable, errLLMUnavailable)
		return
	}
	if s.library == nil {
		writeJSON(w, http.StatusServiceUnavailable, errLibraryUnavailable)
		return
	}
	if s.library.Len() == 0 {
		writeJSON(w, http.StatusOK, chatResponse{Answer: llm.NoDocumentsAnswer, Sources: []llm.Passage{}})
		return
	}

	passages, err := s.library.Search(r.Context(), req.Question, req.DocumentIDs...)
	if err != nil {
		s.log.Error().Str("request_id", middleware.GetReqID(r.Context())).Err(err).Msg("library search failed")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Failed to process question", Reason: "internal_error"})
		return
	}

	answer, err := s.assistant.AnswerQuestion(r.Context(), req.Question, passages)
	if err != nil {
		s.log.Warn().Str("request_id", middleware.GetReqID(r.Context())).Err(err).Msg("question answering failed")
		answer = llm.FallbackAnswer
	}
	writeJSON(w, http.StatusOK, chatResponse{Answer: answer, Sources: passages})
}

// handleFlowchart handles GET /v1/flowchart.
func (s *Server) handleFlowchart(w http.ResponseWriter, r *http.Request) {
	if s.library == nil {
		writeJSON(w, http.StatusServiceUnavailable, errLibraryUnavailable)
		return
	}

	var connector graph.Connector
	if s.assistant != nil {
		connector = s.assistant
	}

	fc, err := s.library.Flowchart(r.Context(), connector)
	switch {
	case errors.Is(err, library.ErrEmpty):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "No documents found", Reason: "no_documents"})
	case errors.Is(err, graph.ErrNoTopics):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "No topics found in documents", Reason: "no_topics"})
	case err != nil:
		s.log.Error().Str("request_id", middleware.GetReqID(r.Context())).Err(err).Msg("flowchart generation failed")
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error:   "Failed to generate flowchart",
			Reason:  "internal_error",
			Details: err.Error(),
		})
	default:
		writeJSON(w, http.StatusOK, fc)
	}
}
