package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/studykit/studykit-go/internal/ingestion"
	"github.com/studykit/studykit-go/internal/llm"
	"github.com/studykit/studykit-go/internal/registry"
)

// Config holds the HTTP server configuration.
type Config struct {
	// Host is the address to bind to (default: 127.0.0.1).
	Host string
	// Port is the TCP port to listen on (default: 8080).
	Port int
	// ReadTimeout is the maximum duration for reading the request.
	ReadTimeout time.Duration
	// WriteTimeout is the maximum duration for writing the response.
	WriteTimeout time.Duration
	// ShutdownTimeout is the maximum duration for a graceful shutdown.
	ShutdownTimeout time.Duration
	// Logger is the structured logger used by the server and its handlers.
	// If nil, slog.Default is used.
	Logger *slog.Logger
	// Pingers is the ordered list of dependency probes run by GET /api/ready.
	// If empty, /api/ready returns 200 with no checks (liveness-only mode).
	Pingers []Pinger
	// RateLimit is the sustained request rate allowed per IP on rate-limited
	// endpoints (requests/second). Defaults to 10 if zero.
	RateLimit float64
	// RateBurst is the maximum instantaneous burst per IP. Defaults to 20 if zero.
	RateBurst int
	// APIKey is the Bearer token required on all protected /api/* routes.
	// If empty, authentication is disabled (development mode).
	APIKey string
	// MaxUploadBytes caps the size of an uploaded document. Defaults to
	// 32 MiB if zero.
	MaxUploadBytes int64
	// Registry backs GET /api/documents. May be nil when disabled.
	Registry registry.Registry
	// Metrics is the Prometheus registry metrics are registered against and
	// served from GET /metrics. If nil, a private registry is created.
	Metrics *prometheus.Registry
}

// ingester is the interface handleIngest calls to process an upload.
// *ingestion.Pipeline satisfies it; tests inject a fake.
type ingester interface {
	Ingest(ctx context.Context, fileName string, data []byte) (*ingestion.DocumentMetadata, error)
}

// retriever is the interface the generation handlers call to fetch relevant
// chunks. rag.DefaultRetriever satisfies it; tests inject a fake.
type retriever interface {
	Retrieve(ctx context.Context, topic, collectionID string) ([]string, error)
}

// generator is the interface the generation handlers call to produce study
// material. *llm.Generator satisfies it; tests inject a fake.
type generator interface {
	Summarize(ctx context.Context, topic string, chunks []string) (string, error)
	Questions(ctx context.Context, topic string, chunks []string, qt llm.QuestionsType) ([]string, error)
}

// Server is the HTTP server exposing the ingestion and study material API.
type Server struct {
	// ingester processes document uploads.
	ingester ingester
	// retriever fetches relevant chunks for generation requests.
	retriever retriever
	// generator produces summaries and question sets.
	generator generator
	// registry backs the document listing endpoint. May be nil.
	registry registry.Registry
	// cfg holds the resolved server configuration.
	cfg *Config
	// httpServer is the underlying net/http server.
	httpServer *http.Server
	// log is the structured logger for this server instance.
	log *slog.Logger
	// pingers is the ordered list of dependency probes for GET /api/ready.
	pingers []Pinger
	// metrics holds the Prometheus instruments owned by this server.
	metrics *serverMetrics
	// stopRL stops the rate limiter's background eviction goroutine on shutdown.
	stopRL func()
}

// ingestResponse is the JSON response for POST /api/ingest.
type ingestResponse struct {
	// ID is the document identifier to use in subsequent requests.
	ID string `json:"id"`
	// FileName is the original upload file name.
	FileName string `json:"file_name"`
	// Chunks is the number of chunks stored for the document.
	Chunks int `json:"chunks"`
}

// summaryRequest is the JSON body for POST /api/summary.
type summaryRequest struct {
	// Topic is the subject to summarize.
	Topic string `json:"topic"`
	// DocumentID is the identifier returned by ingestion.
	DocumentID string `json:"document_id"`
}

// summaryResponse is the JSON response for POST /api/summary.
type summaryResponse struct {
	Topic      string `json:"topic"`
	DocumentID string `json:"document_id"`
	Summary    string `json:"summary"`
}

// questionsRequest is the JSON body for POST /api/questions.
type questionsRequest struct {
	// Topic is the subject to generate questions about.
	Topic string `json:"topic"`
	// DocumentID is the identifier returned by ingestion.
	DocumentID string `json:"document_id"`
	// QuestionsType selects the question style: "multiple-choice" or
	// "fill-in-the-blank".
	QuestionsType string `json:"questions_type"`
}

// questionsResponse is the JSON response for POST /api/questions.
type questionsResponse struct {
	Topic         string   `json:"topic"`
	DocumentID    string   `json:"document_id"`
	QuestionsType string   `json:"questions_type"`
	Questions     []string `json:"questions"`
}

// documentsResponse is the JSON response for GET /api/documents.
type documentsResponse struct {
	Documents []registry.Document `json:"documents"`
}
