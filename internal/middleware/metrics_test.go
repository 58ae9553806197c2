package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"attrcatalog/internal/metrics"
)

func TestMetricsUsesRoutePattern(t *testing.T) {
	c := metrics.NewCollector()

	r := chi.NewRouter()
	r.Use(Metrics(c))
	r.Get("/api/categories/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for _, id := range []string{"a", "b"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/categories/"+id, nil))
	}

	got := testutil.ToFloat64(c.HTTPRequests.WithLabelValues("GET", "/api/categories/{id}", "404"))
	if got != 2 {
		t.Errorf("requests: got %v, want 2", got)
	}
}

func TestMetricsUnmatchedRoute(t *testing.T) {
	c := metrics.NewCollector()
	handler := Metrics(c)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	got := testutil.ToFloat64(c.HTTPRequests.WithLabelValues("GET", "unmatched", "200"))
	if got != 1 {
		t.Errorf("requests: got %v, want 1", got)
	}
}
