package server

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

// newRoutedServer builds a server with auth enabled and returns its full
// handler chain so routing and middleware composition can be exercised.
func newRoutedServer(t *testing.T) *Server {
	t.Helper()
	s, err := New(&fakeIngester{}, &fakeRetriever{}, &fakeGenerator{}, &Config{
		Logger:  slog.New(slog.DiscardHandler),
		APIKey:  "secret",
		Metrics: prometheus.NewRegistry(),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(s.stopRL)
	return s
}

func TestRouting_ProtectedRouteRequiresAuth(t *testing.T) {
	t.Parallel()

	s := newRoutedServer(t)
	req := httptest.NewRequest(http.MethodPost, "/api/summary",
		strings.NewReader(`{"topic":"t","document_id":"d"}`))
	w := httptest.NewRecorder()

	s.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without credentials, got %d", w.Code)
	}
}

func TestRouting_HealthIsUnprotected(t *testing.T) {
	t.Parallel()

	s := newRoutedServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	w := httptest.NewRecorder()

	s.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200 for /api/health without credentials, got %d", w.Code)
	}
}

func TestRouting_MetricsEndpointServed(t *testing.T) {
	t.Parallel()

	s := newRoutedServer(t)

	// Drive one authenticated request through the full chain so the HTTP
	// counters have something to report.
	req := httptest.NewRequest(http.MethodGet, "/api/documents", nil)
	req.Header.Set("Authorization", "Bearer secret")
	s.Handler().ServeHTTP(httptest.NewRecorder(), req)

	mreq := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, mreq)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 from /metrics, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "studykit_http_requests_total") {
		t.Error("metrics output missing studykit_http_requests_total")
	}
}

func TestNew_NilDependenciesRejected(t *testing.T) {
	t.Parallel()

	if _, err := New(nil, &fakeRetriever{}, &fakeGenerator{}, nil); err == nil {
		t.Error("nil ingester accepted")
	}
	if _, err := New(&fakeIngester{}, nil, &fakeGenerator{}, nil); err == nil {
		t.Error("nil retriever accepted")
	}
	if _, err := New(&fakeIngester{}, &fakeRetriever{}, nil, nil); err == nil {
		t.Error("nil generator accepted")
	}
}
