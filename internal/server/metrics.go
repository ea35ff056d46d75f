// Prometheus metrics for the HTTP server, plus the helpers handlers and
// middleware use to record them.
package server

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// labelHandler partitions HTTP metrics by logical endpoint name rather than
// the raw URL path.
const labelHandler = "handler"

// serverMetrics holds all Prometheus metrics owned by the HTTP server.
// A single instance is created in New and stored on Server so that tests can
// inject a fresh prometheus.Registry without polluting the default one.
type serverMetrics struct {
	// ingestRequestsTotal counts completed /api/ingest requests, partitioned
	// by outcome: "ok" or "error".
	ingestRequestsTotal *prometheus.CounterVec

	// ingestDurationSeconds records the wall-clock duration of each ingest
	// from upload receipt to upsert completion.
	ingestDurationSeconds *prometheus.HistogramVec

	// generateRequestsTotal counts completed generation requests, partitioned
	// by kind ("summary", "questions") and outcome ("ok", "not_found", "error").
	generateRequestsTotal *prometheus.CounterVec

	// generateDurationSeconds records the duration of generation requests,
	// retrieval included.
	generateDurationSeconds *prometheus.HistogramVec

	// ingestChunks records the number of chunks produced per successfully
	// ingested document.
	ingestChunks prometheus.Histogram

	// httpRequestsTotal counts all HTTP requests handled by the mux,
	// partitioned by method, handler, and status code.
	httpRequestsTotal *prometheus.CounterVec

	// httpDurationSeconds records the latency of all HTTP requests.
	httpDurationSeconds *prometheus.HistogramVec
}

// newServerMetrics registers all server metrics against reg and returns the
// populated serverMetrics. promauto.With(reg) registers into the provided
// registry rather than the global default, keeping unit tests hermetic.
func newServerMetrics(reg prometheus.Registerer) *serverMetrics {
	factory := promauto.With(reg)

	return &serverMetrics{
		ingestRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "studykit",
			Subsystem: "ingest",
			Name:      "requests_total",
			Help:      "Total number of /api/ingest requests completed, partitioned by outcome.",
		}, []string{"outcome"}),

		ingestDurationSeconds: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "studykit",
			Subsystem: "ingest",
			Name:      "duration_seconds",
			Help:      "Wall-clock duration of document ingestion from upload to upsert.",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300},
		}, []string{"outcome"}),

		generateRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "studykit",
			Subsystem: "generate",
			Name:      "requests_total",
			Help:      "Total number of generation requests completed, partitioned by kind and outcome.",
		}, []string{"kind", "outcome"}),

		generateDurationSeconds: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "studykit",
			Subsystem: "generate",
			Name:      "duration_seconds",
			Help:      "Duration of generation requests, retrieval included.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60},
		}, []string{"kind", "outcome"}),

		ingestChunks: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "studykit",
			Subsystem: "ingest",
			Name:      "chunks_per_document",
			Help:      "Number of chunks produced per successfully ingested document.",
			Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		}),

		httpRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "studykit",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled by the server, partitioned by method, handler, and status code.",
		}, []string{"method", labelHandler, "code"}),

		httpDurationSeconds: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "studykit",
			Subsystem: "http",
			Name:      "duration_seconds",
			Help:      "Latency of HTTP requests handled by the server.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", labelHandler}),
	}
}

// observeIngest records one completed ingest request.
func (m *serverMetrics) observeIngest(outcome string, d time.Duration) {
	m.ingestRequestsTotal.WithLabelValues(outcome).Inc()
	m.ingestDurationSeconds.WithLabelValues(outcome).Observe(d.Seconds())
}

// observeGenerate records one completed generation request.
func (m *serverMetrics) observeGenerate(kind, outcome string, d time.Duration) {
	m.generateRequestsTotal.WithLabelValues(kind, outcome).Inc()
	m.generateDurationSeconds.WithLabelValues(kind, outcome).Observe(d.Seconds())
}
