package observability

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	jobmetrics "github.com/shiv-furniture/shiverp/internal/jobs"
)

func TestMiddlewareRecordsRequestMetrics(t *testing.T) {
	metrics := NewMetrics()

	r := chi.NewRouter()
	r.Use(metrics.Middleware)
	r.Get("/products/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/products/42", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	body := rr.Body.String()
	if !strings.Contains(body, "shiverp_http_requests_total") {
		t.Fatalf("expected request counter in body, got: %s", body)
	}
	if !strings.Contains(body, `route="/products/{id}"`) {
		t.Fatalf("expected route pattern label, got: %s", body)
	}
}

func TestJobMetricsRegisterAgainstRegistry(t *testing.T) {
	metrics := NewMetrics()
	jobs := jobmetrics.NewMetrics(metrics.Registerer())
	_ = jobs.Track("mail:send").End(nil)

	rr := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	body := rr.Body.String()
	if !strings.Contains(body, "shiverp_jobs_total") {
		t.Fatalf("expected job counter in body, got: %s", body)
	}
}
