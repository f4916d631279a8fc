package server

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notesai/notesai/internal/graph"
	"github.com/notesai/notesai/internal/library"
	"github.com/notesai/notesai/internal/llm"
)

type documentsBody struct {
	Documents []library.Entry `json:"documents"`
}

func upload(t *testing.T, ts *httptest.Server, path, name, text string) extractBody {
	t.Helper()
	resp, err := http.Post(ts.URL+path+"?name="+name, "application/pdf", bytes.NewReader(notesPDF(t, text)))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	return decode[extractBody](t, resp)
}

func postChat(t *testing.T, ts *httptest.Server, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(ts.URL+"/v1/chat", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	return resp
}

func TestDocuments_ListsUploads(t *testing.T) {
	ts := newTestServer(t, nil)
	first := upload(t, ts, "/v1/extract", "week1.pdf", "Vectors and matrices")
	upload(t, ts, "/v1/extract", "week2.pdf", "Eigenvalues and eigenvectors")

	resp, err := http.Get(ts.URL + "/v1/documents")
	require.NoError(t, err)
	got := decode[documentsBody](t, resp)
	require.Len(t, got.Documents, 2)

	ids := []string{got.Documents[0].ID, got.Documents[1].ID}
	assert.Contains(t, ids, first.ID)

	health, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	assert.Equal(t, float64(2), decode[map[string]any](t, health)["documents"])
}

func TestChat(t *testing.T) {
	assistant := &fakeAssistant{
		analysis: llm.Analysis{Topics: []string{"Photosynthesis"}, Summary: "s", Subject: "Biology"},
		answer:   "In the chloroplasts (biology.pdf).",
	}
	ts := newTestServer(t, assistant)
	doc := upload(t, ts, "/v1/analyze", "biology.pdf", "Photosynthesis happens in chloroplasts")

	resp := postChat(t, ts, `{"question":"Where does photosynthesis happen?"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	got := decode[chatResponse](t, resp)
	assert.Equal(t, "In the chloroplasts (biology.pdf).", got.Answer)
	require.NotEmpty(t, got.Sources)
	assert.Equal(t, doc.ID, got.Sources[0].DocumentID)
	assert.Equal(t, "biology.pdf", got.Sources[0].Document)
	assert.Equal(t, "Where does photosynthesis happen?", assistant.received())

	assistant.mu.Lock()
	defer assistant.mu.Unlock()
	require.NotEmpty(t, assistant.passages)
	assert.Contains(t, assistant.passages[0].Content, "Photosynthesis happens in chloroplasts")
}

func TestChat_ProviderFailureApologizes(t *testing.T) {
	ts := newTestServer(t, &fakeAssistant{answerErr: errors.New("provider down")})
	upload(t, ts, "/v1/extract", "notes.pdf", "Some lecture notes")

	resp := postChat(t, ts, `{"question":"What is this about?"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, llm.FallbackAnswer, decode[chatResponse](t, resp).Answer)
}

func TestChat_Errors(t *testing.T) {
	tests := []struct {
		name       string
		assistant  Assistant
		body       string
		wantStatus int
		wantError  string
	}{
		{name: "invalid json", assistant: &fakeAssistant{}, body: `{`, wantStatus: http.StatusBadRequest, wantError: "invalid JSON body"},
		{name: "missing question", assistant: &fakeAssistant{}, body: `{"question":"  "}`, wantStatus: http.StatusBadRequest, wantError: "Question is required"},
		{name: "no llm", assistant: nil, body: `{"question":"why?"}`, wantStatus: http.StatusServiceUnavailable, wantError: "notes analysis is not configured"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postChat(t, newTestServer(t, tt.assistant), tt.body)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.Equal(t, tt.wantError, decode[errorResponse](t, resp).Error)
		})
	}
}

func TestChat_NoDocuments(t *testing.T) {
	ts := newTestServer(t, &fakeAssistant{answer: "unused"})

	resp := postChat(t, ts, `{"question":"What did I upload?"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, llm.NoDocumentsAnswer, decode[chatResponse](t, resp).Answer)
}

func TestFlowchart(t *testing.T) {
	assistant := &fakeAssistant{
		analysis: llm.Analysis{Topics: []string{"Limits", "Derivatives"}, Summary: "s", Subject: "Mathematics"},
		topicMap: llm.TopicMap{Connections: []llm.Connection{{From: "Limits", To: "Derivatives", Strength: 0.9}}},
	}
	ts := newTestServer(t, assistant)
	upload(t, ts, "/v1/analyze", "calc.pdf", "Limits lead to derivatives")

	resp, err := http.Get(ts.URL + "/v1/flowchart")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	got := decode[graph.Flowchart](t, resp)
	require.Len(t, got.Topics, 2)
	assert.Equal(t, "Derivatives", got.Topics[0].Name)
	assert.Equal(t, []string{"calc.pdf"}, got.Topics[0].Documents)
	assert.Equal(t, []graph.Connection{{From: "Limits", To: "Derivatives", Strength: 0.9}}, got.Connections)
}

func TestFlowchart_Errors(t *testing.T) {
	t.Run("no documents", func(t *testing.T) {
		resp, err := http.Get(newTestServer(t, nil).URL + "/v1/flowchart")
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "No documents found", decode[errorResponse](t, resp).Error)
	})

	t.Run("no topics", func(t *testing.T) {
		ts := newTestServer(t, nil)
		upload(t, ts, "/v1/extract", "raw.pdf", "Unanalyzed lecture notes")

		resp, err := http.Get(ts.URL + "/v1/flowchart")
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "no_topics", decode[errorResponse](t, resp).Reason)
	})

	t.Run("provider failure", func(t *testing.T) {
		ts := newTestServer(t, &fakeAssistant{
			analysis: llm.Analysis{Topics: []string{"Graphs"}},
			mapErr:   errors.New("provider down"),
		})
		upload(t, ts, "/v1/analyze", "cs.pdf", "Graphs and trees")

		resp, err := http.Get(ts.URL + "/v1/flowchart")
		require.NoError(t, err)
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		got := decode[errorResponse](t, resp)
		assert.Equal(t, "Failed to generate flowchart", got.Error)
		assert.Contains(t, got.Details, "provider down")
	})
}

func TestLibraryEndpoints_Disabled(t *testing.T) {
	h := newServer(t, nil, &fakeAssistant{}).Handler()

	for _, tt := range []struct{ method, path, body string }{
		{http.MethodGet, "/v1/documents", ""},
		{http.MethodGet, "/v1/flowchart", ""},
		{http.MethodPost, "/v1/chat", `{"question":"why?"}`},
	} {
		req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code, tt.path)
	}
}
