package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/studykit/studykit-go/internal/ingestion"
	"github.com/studykit/studykit-go/internal/llm"
	"github.com/studykit/studykit-go/internal/rag"
	"github.com/studykit/studykit-go/internal/registry"
)

// ---------------------------------------------------------------------------
// Fakes
// ---------------------------------------------------------------------------

type fakeIngester struct {
	meta *ingestion.DocumentMetadata
	err  error

	gotFileName string
	gotData     []byte
}

func (f *fakeIngester) Ingest(_ context.Context, fileName string, data []byte) (*ingestion.DocumentMetadata, error) {
	f.gotFileName = fileName
	f.gotData = data
	if f.err != nil {
		return nil, f.err
	}
	return f.meta, nil
}

type fakeRetriever struct {
	chunks []string
	err    error
}

func (f *fakeRetriever) Retrieve(_ context.Context, _, _ string) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.chunks, nil
}

type fakeGenerator struct {
	summary   string
	questions []string
	err       error

	gotType llm.QuestionsType
}

func (f *fakeGenerator) Summarize(_ context.Context, _ string, _ []string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.summary, nil
}

func (f *fakeGenerator) Questions(_ context.Context, _ string, _ []string, qt llm.QuestionsType) ([]string, error) {
	f.gotType = qt
	if f.err != nil {
		return nil, f.err
	}
	return f.questions, nil
}

// newTestServer builds a *Server wired with the given fakes and a private
// metrics registry.
func newTestServer(t *testing.T, ing ingester, ret retriever, gen generator, reg registry.Registry) *Server {
	t.Helper()
	s, err := New(ing, ret, gen, &Config{
		Logger:   slog.New(slog.DiscardHandler),
		Registry: reg,
		Metrics:  prometheus.NewRegistry(),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(s.stopRL)
	return s
}

// multipartPDF builds a multipart body with one "file" part.
func multipartPDF(t *testing.T, fileName string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", fileName)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fw.Write(content); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

// ---------------------------------------------------------------------------
// POST /api/ingest
// ---------------------------------------------------------------------------

func TestHandleIngest_OK(t *testing.T) {
	t.Parallel()

	ing := &fakeIngester{meta: &ingestion.DocumentMetadata{ID: "doc-1", FileName: "notes.pdf", Chunks: 12}}
	s := newTestServer(t, ing, &fakeRetriever{}, &fakeGenerator{}, nil)

	body, contentType := multipartPDF(t, "notes.pdf", []byte("%PDF-1.4 content"))
	req := httptest.NewRequest(http.MethodPost, "/api/ingest", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()

	s.handleIngest(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp ingestResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.ID != "doc-1" || resp.FileName != "notes.pdf" || resp.Chunks != 12 {
		t.Errorf("response: got %+v", resp)
	}
	if ing.gotFileName != "notes.pdf" {
		t.Errorf("pipeline got file name %q", ing.gotFileName)
	}
	if string(ing.gotData) != "%PDF-1.4 content" {
		t.Errorf("pipeline got data %q", ing.gotData)
	}
}

func TestHandleIngest_RejectsNonPDF(t *testing.T) {
	t.Parallel()

	ing := &fakeIngester{meta: &ingestion.DocumentMetadata{ID: "doc-1"}}
	s := newTestServer(t, ing, &fakeRetriever{}, &fakeGenerator{}, nil)

	body, contentType := multipartPDF(t, "notes.docx", []byte("word doc"))
	req := httptest.NewRequest(http.MethodPost, "/api/ingest", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()

	s.handleIngest(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for non-PDF upload, got %d", w.Code)
	}
	if ing.gotFileName != "" {
		t.Error("pipeline was called for a rejected upload")
	}
}

func TestHandleIngest_MissingFilePart(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, &fakeIngester{}, &fakeRetriever{}, &fakeGenerator{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/ingest", strings.NewReader("no multipart"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	s.handleIngest(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestHandleIngest_PipelineFailure(t *testing.T) {
	t.Parallel()

	ing := &fakeIngester{err: &ingestion.IngestionError{FileName: "notes.pdf", Err: errors.New("boom")}}
	s := newTestServer(t, ing, &fakeRetriever{}, &fakeGenerator{}, nil)

	body, contentType := multipartPDF(t, "notes.pdf", []byte("%PDF"))
	req := httptest.NewRequest(http.MethodPost, "/api/ingest", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()

	s.handleIngest(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", w.Code)
	}
}

// ---------------------------------------------------------------------------
// POST /api/summary
// ---------------------------------------------------------------------------

func TestHandleSummary_OK(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, &fakeIngester{},
		&fakeRetriever{chunks: []string{"chunk1", "chunk2"}},
		&fakeGenerator{summary: "A summary."}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/summary",
		strings.NewReader(`{"topic":"photosynthesis","document_id":"doc-1"}`))
	w := httptest.NewRecorder()

	s.handleSummary(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp summaryResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Summary != "A summary." || resp.DocumentID != "doc-1" {
		t.Errorf("response: got %+v", resp)
	}
}

func TestHandleSummary_Validation(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, &fakeIngester{}, &fakeRetriever{}, &fakeGenerator{}, nil)

	tests := []struct {
		name string
		body string
	}{
		{"invalid json", `not-json`},
		{"missing topic", `{"document_id":"doc-1"}`},
		{"missing document_id", `{"topic":"algebra"}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			req := httptest.NewRequest(http.MethodPost, "/api/summary", strings.NewReader(tc.body))
			w := httptest.NewRecorder()

			s.handleSummary(w, req)

			if w.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", w.Code)
			}
		})
	}
}

func TestHandleSummary_UnknownDocument(t *testing.T) {
	t.Parallel()

	ret := &fakeRetriever{err: &rag.RetrievalError{
		Topic: "algebra", Collection: "no-such-doc", Err: rag.ErrCollectionNotFound,
	}}
	s := newTestServer(t, &fakeIngester{}, ret, &fakeGenerator{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/summary",
		strings.NewReader(`{"topic":"algebra","document_id":"no-such-doc"}`))
	w := httptest.NewRecorder()

	s.handleSummary(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown document, got %d", w.Code)
	}
}

func TestHandleSummary_GenerationFailure(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, &fakeIngester{},
		&fakeRetriever{chunks: []string{"chunk"}},
		&fakeGenerator{err: errors.New("model unavailable")}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/summary",
		strings.NewReader(`{"topic":"algebra","document_id":"doc-1"}`))
	w := httptest.NewRecorder()

	s.handleSummary(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", w.Code)
	}
}

// ---------------------------------------------------------------------------
// POST /api/questions
// ---------------------------------------------------------------------------

func TestHandleQuestions_OK(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{questions: []string{"Q1", "Q2"}}
	s := newTestServer(t, &fakeIngester{}, &fakeRetriever{chunks: []string{"chunk"}}, gen, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/questions",
		strings.NewReader(`{"topic":"algebra","document_id":"doc-1","questions_type":"multiple-choice"}`))
	w := httptest.NewRecorder()

	s.handleQuestions(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp questionsResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Questions) != 2 || resp.QuestionsType != "multiple-choice" {
		t.Errorf("response: got %+v", resp)
	}
	if gen.gotType != llm.QuestionsMultipleChoice {
		t.Errorf("generator got type %q", gen.gotType)
	}
}

func TestHandleQuestions_UnknownType(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, &fakeIngester{}, &fakeRetriever{}, &fakeGenerator{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/questions",
		strings.NewReader(`{"topic":"algebra","document_id":"doc-1","questions_type":"essay"}`))
	w := httptest.NewRecorder()

	s.handleQuestions(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown questions type, got %d", w.Code)
	}
}

func TestHandleQuestions_UnknownDocument(t *testing.T) {
	t.Parallel()

	ret := &fakeRetriever{err: &rag.RetrievalError{
		Topic: "algebra", Collection: "gone", Err: rag.ErrCollectionNotFound,
	}}
	s := newTestServer(t, &fakeIngester{}, ret, &fakeGenerator{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/questions",
		strings.NewReader(`{"topic":"algebra","document_id":"gone","questions_type":"fill-in-the-blank"}`))
	w := httptest.NewRecorder()

	s.handleQuestions(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

// ---------------------------------------------------------------------------
// GET /api/documents
// ---------------------------------------------------------------------------

func TestHandleDocuments_OK(t *testing.T) {
	t.Parallel()

	reg, err := registry.Open(":memory:")
	if err != nil {
		t.Fatalf("open registry: %v", err)
	}
	t.Cleanup(func() { _ = reg.Close() })
	if err := reg.Record(context.Background(), "doc-1", "notes.pdf"); err != nil {
		t.Fatalf("record: %v", err)
	}

	s := newTestServer(t, &fakeIngester{}, &fakeRetriever{}, &fakeGenerator{}, reg)

	req := httptest.NewRequest(http.MethodGet, "/api/documents", nil)
	w := httptest.NewRecorder()

	s.handleDocuments(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp documentsResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Documents) != 1 || resp.Documents[0].ID != "doc-1" {
		t.Errorf("documents: got %+v", resp.Documents)
	}
}

func TestHandleDocuments_RegistryDisabled(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, &fakeIngester{}, &fakeRetriever{}, &fakeGenerator{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/documents", nil)
	w := httptest.NewRecorder()

	s.handleDocuments(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503 when registry is disabled, got %d", w.Code)
	}
}

// ---------------------------------------------------------------------------
// GET /api/health
// ---------------------------------------------------------------------------

func TestHandleHealth(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, &fakeIngester{}, &fakeRetriever{}, &fakeGenerator{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	w := httptest.NewRecorder()

	s.handleHealth(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "ok") {
		t.Errorf("body: %s", w.Body.String())
	}
}
