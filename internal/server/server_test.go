package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notesai/notesai/internal/chunker"
	"github.com/notesai/notesai/internal/config"
	"github.com/notesai/notesai/internal/library"
	"github.com/notesai/notesai/internal/llm"
	"github.com/notesai/notesai/internal/pdftext"
	"github.com/notesai/notesai/internal/reader"
)

type fakeAssistant struct {
	analysis llm.Analysis
	err      error

	answer    string
	answerErr error
	topicMap  llm.TopicMap
	mapErr    error

	mu       sync.Mutex
	got      string
	passages []llm.Passage
}

func (f *fakeAssistant) AnalyzeNotes(_ context.Context, text string) (llm.Analysis, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.got = text
	return f.analysis, f.err
}

func (f *fakeAssistant) AnswerQuestion(_ context.Context, question string, passages []llm.Passage) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.got = question
	f.passages = passages
	return f.answer, f.answerErr
}

func (f *fakeAssistant) ConnectTopics(_ context.Context, _ []string) (llm.TopicMap, error) {
	return f.topicMap, f.mapErr
}

func (f *fakeAssistant) received() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.got
}

func notesPDF(t *testing.T, text string) []byte {
	t.Helper()
	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetCompression(false)
	doc.AddPage()
	doc.SetFont("Helvetica", "", 12)
	doc.Cell(40, 10, text)
	var buf bytes.Buffer
	require.NoError(t, doc.Output(&buf))
	return buf.Bytes()
}

func newLibrary(t *testing.T) *library.Library {
	t.Helper()
	cfg := &config.Config{
		Embedder: config.EmbedderConfig{Dimensions: 128},
		Library:  config.LibraryConfig{Chunk: chunker.DefaultOptions(), TopK: 3},
	}
	lib, err := library.NewFromConfig(cfg, nil)
	require.NoError(t, err)
	return lib
}

func newServer(t *testing.T, lib *library.Library, assistant Assistant) *Server {
	t.Helper()
	ex, err := pdftext.New(pdftext.DefaultOptions(), nil)
	require.NoError(t, err)

	cfg := config.ServerConfig{
		MaxUploadBytes: 1 << 20,
		RequestTimeout: 10 * time.Second,
		AllowedOrigins: []string{"*"},
	}
	return New(cfg, reader.NewLoader(ex, 5*time.Second, nil), lib, assistant, nil)
}

func newHandler(t *testing.T, assistant Assistant) http.Handler {
	t.Helper()
	return newServer(t, newLibrary(t), assistant).Handler()
}

func newTestServer(t *testing.T, assistant Assistant) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(newHandler(t, assistant))
	t.Cleanup(ts.Close)
	return ts
}

func multipartBody(t *testing.T, filename string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &body, mw.FormDataContentType()
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

type extractBody struct {
	ID             string        `json:"id"`
	Name           string        `json:"name"`
	Text           string        `json:"text"`
	Strategy       string        `json:"strategy"`
	OriginalLength int           `json:"original_length"`
	Truncated      bool          `json:"truncated"`
	Analysis       *llm.Analysis `json:"analysis"`
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, nil)

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := decode[map[string]any](t, resp)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, false, body["llm"])
}

func TestExtract_Multipart(t *testing.T) {
	ts := newTestServer(t, nil)
	body, contentType := multipartBody(t, "lecture.pdf", notesPDF(t, "Photosynthesis and respiration"))

	resp, err := http.Post(ts.URL+"/v1/extract", contentType, body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	got := decode[extractBody](t, resp)
	assert.NotEmpty(t, got.ID)
	assert.Equal(t, "lecture.pdf", got.Name)
	assert.Contains(t, got.Text, "Photosynthesis and respiration")
	assert.Equal(t, "structured", got.Strategy)
	assert.False(t, got.Truncated)
	assert.Nil(t, got.Analysis)
}

func TestExtract_RawBody(t *testing.T) {
	ts := newTestServer(t, nil)

	resp, err := http.Post(ts.URL+"/v1/extract?name=week1.pdf", "application/pdf", bytes.NewReader(notesPDF(t, "Vectors and matrices")))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	got := decode[extractBody](t, resp)
	assert.Equal(t, "week1.pdf", got.Name)
	assert.Contains(t, got.Text, "Vectors and matrices")
}

func TestExtract_Errors(t *testing.T) {
	h := newHandler(t, nil)

	tests := []struct {
		name       string
		path       string
		body       []byte
		wantStatus int
		wantReason string
	}{
		{name: "empty body", path: "/v1/extract?name=a.pdf", body: nil, wantStatus: http.StatusBadRequest, wantReason: "empty_buffer"},
		{name: "too small", path: "/v1/extract?name=a.pdf", body: []byte("%PD"), wantStatus: http.StatusUnprocessableEntity, wantReason: "buffer_too_small"},
		{name: "bad signature", path: "/v1/extract?name=a.pdf", body: []byte("hello, this is not a pdf"), wantStatus: http.StatusUnprocessableEntity, wantReason: "invalid_signature"},
		{name: "no text", path: "/v1/extract?name=a.pdf", body: []byte("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n"), wantStatus: http.StatusUnprocessableEntity, wantReason: "no_extractable_text"},
		{name: "not a pdf name", path: "/v1/extract?name=notes.docx", body: []byte("%PDF-1.4"), wantStatus: http.StatusBadRequest, wantReason: "unsupported_format"},
		{name: "too large", path: "/v1/extract?name=a.pdf", body: bytes.Repeat([]byte("a"), 2<<20), wantStatus: http.StatusRequestEntityTooLarge, wantReason: "too_large"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, tt.path, bytes.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/pdf")
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.wantStatus, rec.Code)

			var got errorResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
			assert.Equal(t, tt.wantReason, got.Reason)
			assert.NotEmpty(t, got.Error)
		})
	}
}

func TestExtract_UnsupportedMessage(t *testing.T) {
	ts := newTestServer(t, nil)
	body, contentType := multipartBody(t, "notes.txt", []byte("plain"))

	resp, err := http.Post(ts.URL+"/v1/extract", contentType, body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Only PDF files are supported", decode[errorResponse](t, resp).Error)
}

func TestExtract_MissingFileField(t *testing.T) {
	ts := newTestServer(t, nil)
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("title", "Week 1"))
	require.NoError(t, mw.Close())

	resp, err := http.Post(ts.URL+"/v1/extract", mw.FormDataContentType(), &body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "file is required", decode[errorResponse](t, resp).Error)
}

func TestAnalyze_NotConfigured(t *testing.T) {
	ts := newTestServer(t, nil)

	resp, err := http.Post(ts.URL+"/v1/analyze?name=a.pdf", "application/pdf", bytes.NewReader(notesPDF(t, "Some notes")))
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "llm_unavailable", decode[errorResponse](t, resp).Reason)
}

func TestAnalyze(t *testing.T) {
	assistant := &fakeAssistant{analysis: llm.Analysis{
		Topics:     []string{"Algorithms"},
		Summary:    "Sorting and searching.",
		Subject:    "Computer Science",
		CourseCode: "CS101",
	}}
	ts := newTestServer(t, assistant)

	resp, err := http.Post(ts.URL+"/v1/analyze?name=algo.pdf", "application/pdf", bytes.NewReader(notesPDF(t, "Quicksort partitions arrays")))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	got := decode[extractBody](t, resp)
	require.NotNil(t, got.Analysis)
	assert.Equal(t, "Computer Science", got.Analysis.Subject)
	assert.Equal(t, "CS101", got.Analysis.CourseCode)
	assert.Contains(t, assistant.received(), "Quicksort partitions arrays")
}

func TestAnalyze_FailureFallsBack(t *testing.T) {
	ts := newTestServer(t, &fakeAssistant{err: errors.New("provider down")})

	resp, err := http.Post(ts.URL+"/v1/analyze?name=a.pdf", "application/pdf", bytes.NewReader(notesPDF(t, "Some lecture notes")))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	got := decode[extractBody](t, resp)
	require.NotNil(t, got.Analysis)
	assert.Equal(t, llm.DefaultAnalysis().Summary, got.Analysis.Summary)
	assert.Equal(t, "General", got.Analysis.Subject)
	assert.Contains(t, got.Text, "Some lecture notes")
}

func TestAnalyze_ExtractionErrorSkipsAnalyzer(t *testing.T) {
	assistant := &fakeAssistant{}
	ts := newTestServer(t, assistant)

	resp, err := http.Post(ts.URL+"/v1/analyze?name=a.pdf", "application/pdf", bytes.NewReader([]byte("NOTAPDF!")))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Empty(t, assistant.received())
}

func TestCORSPreflight(t *testing.T) {
	ts := newTestServer(t, nil)

	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/v1/extract", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantReason string
	}{
		{name: "deadline", err: context.DeadlineExceeded, wantStatus: http.StatusGatewayTimeout, wantReason: "timeout"},
		{name: "internal", err: &pdftext.InternalError{Detail: "index out of range"}, wantStatus: http.StatusInternalServerError, wantReason: "internal_error"},
		{name: "unknown", err: errors.New("disk on fire"), wantStatus: http.StatusInternalServerError, wantReason: "internal_error"},
		{name: "no text", err: pdftext.ErrNoExtractableText, wantStatus: http.StatusUnprocessableEntity, wantReason: "no_extractable_text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, reason, msg := classify(tt.err)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantReason, reason)
			assert.NotContains(t, msg, "index out of range")
			assert.NotContains(t, msg, "disk on fire")
		})
	}
}

func TestExtract_DeadlinePassed(t *testing.T) {
	ex, err := pdftext.New(pdftext.DefaultOptions(), nil)
	require.NoError(t, err)
	srv := New(config.ServerConfig{MaxUploadBytes: 1 << 20}, reader.NewLoader(ex, 0, nil), nil, nil, nil)

	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()
	req := httptest.NewRequest(http.MethodPost, "/v1/extract?name=a.pdf", bytes.NewReader(notesPDF(t, "Late notes"))).WithContext(ctx)
	rec := httptest.NewRecorder()

	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
}
