package server

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/studykit/studykit-go/internal/llm"
	"github.com/studykit/studykit-go/internal/logging"
	"github.com/studykit/studykit-go/internal/rag"
	"github.com/studykit/studykit-go/internal/registry"
)

// handleIngest handles POST /api/ingest. The request is a multipart form
// with one "file" part holding a PDF. The response carries the document ID
// used by all subsequent requests.
func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())
	start := time.Now()

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, "file too large", http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, `multipart form with a "file" part is required`, http.StatusBadRequest)
		return
	}
	defer file.Close()

	if !strings.EqualFold(filepath.Ext(header.Filename), ".pdf") {
		http.Error(w, "only PDF files are supported", http.StatusBadRequest)
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, "failed to read upload", http.StatusBadRequest)
		return
	}
	if len(data) == 0 {
		http.Error(w, "uploaded file is empty", http.StatusBadRequest)
		return
	}

	meta, err := s.ingester.Ingest(r.Context(), header.Filename, data)
	if err != nil {
		log.Error("ingestion failed",
			slog.String("file_name", header.Filename),
			slog.Any("error", err),
		)
		s.metrics.observeIngest("error", time.Since(start))
		http.Error(w, "ingestion failed", http.StatusInternalServerError)
		return
	}

	s.metrics.observeIngest("ok", time.Since(start))
	s.metrics.ingestChunks.Observe(float64(meta.Chunks))
	writeJSON(w, http.StatusOK, ingestResponse{ID: meta.ID, FileName: meta.FileName, Chunks: meta.Chunks})
}

// handleSummary handles POST /api/summary. It retrieves the chunks most
// relevant to the topic from the document's collection and generates a
// summary from them.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())
	start := time.Now()

	var req summaryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Topic == "" {
		http.Error(w, "topic is required", http.StatusBadRequest)
		return
	}
	if req.DocumentID == "" {
		http.Error(w, "document_id is required", http.StatusBadRequest)
		return
	}

	chunks, err := s.retriever.Retrieve(r.Context(), req.Topic, req.DocumentID)
	if err != nil {
		s.respondRetrievalError(w, r, "summary", req.DocumentID, err, start)
		return
	}

	summary, err := s.generator.Summarize(r.Context(), req.Topic, chunks)
	if err != nil {
		log.Error("summary generation failed",
			slog.String("document_id", req.DocumentID),
			slog.Any("error", err),
		)
		s.metrics.observeGenerate("summary", "error", time.Since(start))
		http.Error(w, "summary generation failed", http.StatusInternalServerError)
		return
	}

	s.metrics.observeGenerate("summary", "ok", time.Since(start))
	writeJSON(w, http.StatusOK, summaryResponse{
		Topic:      req.Topic,
		DocumentID: req.DocumentID,
		Summary:    summary,
	})
}

// handleQuestions handles POST /api/questions. Same retrieval flow as
// summaries, but the output is a typed practice question set.
func (s *Server) handleQuestions(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())
	start := time.Now()

	var req questionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Topic == "" {
		http.Error(w, "topic is required", http.StatusBadRequest)
		return
	}
	if req.DocumentID == "" {
		http.Error(w, "document_id is required", http.StatusBadRequest)
		return
	}
	qt, err := llm.ParseQuestionsType(req.QuestionsType)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	chunks, err := s.retriever.Retrieve(r.Context(), req.Topic, req.DocumentID)
	if err != nil {
		s.respondRetrievalError(w, r, "questions", req.DocumentID, err, start)
		return
	}

	questions, err := s.generator.Questions(r.Context(), req.Topic, chunks, qt)
	if err != nil {
		log.Error("question generation failed",
			slog.String("document_id", req.DocumentID),
			slog.Any("error", err),
		)
		s.metrics.observeGenerate("questions", "error", time.Since(start))
		http.Error(w, "question generation failed", http.StatusInternalServerError)
		return
	}

	s.metrics.observeGenerate("questions", "ok", time.Since(start))
	writeJSON(w, http.StatusOK, questionsResponse{
		Topic:         req.Topic,
		DocumentID:    req.DocumentID,
		QuestionsType: string(qt),
		Questions:     questions,
	})
}

// handleDocuments handles GET /api/documents, listing ingested documents
// from the registry.
func (s *Server) handleDocuments(w http.ResponseWriter, r *http.Request) {
	if s.registry == nil {
		http.Error(w, "document registry is disabled", http.StatusServiceUnavailable)
		return
	}

	docs, err := s.registry.List(r.Context())
	if err != nil {
		logging.FromContext(r.Context()).Error("registry list failed", slog.Any("error", err))
		http.Error(w, "failed to list documents", http.StatusInternalServerError)
		return
	}
	if docs == nil {
		docs = []registry.Document{}
	}

	writeJSON(w, http.StatusOK, documentsResponse{Documents: docs})
}

// handleHealth handles GET /api/health for liveness checks.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// respondRetrievalError maps a retrieval failure to the right HTTP status:
// 404 when the document is unknown, 500 for anything else.
func (s *Server) respondRetrievalError(w http.ResponseWriter, r *http.Request, kind, documentID string, err error, start time.Time) {
	log := logging.FromContext(r.Context())

	if errors.Is(err, rag.ErrCollectionNotFound) {
		s.metrics.observeGenerate(kind, "not_found", time.Since(start))
		http.Error(w, "document not found", http.StatusNotFound)
		return
	}

	log.Error("retrieval failed",
		slog.String("document_id", documentID),
		slog.Any("error", err),
	)
	s.metrics.observeGenerate(kind, "error", time.Since(start))
	http.Error(w, "retrieval failed", http.StatusInternalServerError)
}

// writeJSON encodes v as the JSON response body with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
