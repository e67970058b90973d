package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/simplycomply/compliance-api/internal/core/domain"
)

func TestNormalizePath(t *testing.T) {
	cases := map[string]string{
		"/api/compliance/items/0b6f4a1e-3c0d-4d7e-9f55-7f3b0c2d1a90":      "/api/compliance/items/{id}",
		"/api/employees/0b6f4a1e-3c0d-4d7e-9f55-7f3b0c2d1a90/requirements": "/api/employees/{id}/requirements",
		"/api/subscription/status/cs_test_123":                             "/api/subscription/status/{session_id}",
		"/api/dashboard/stats":                                             "/api/dashboard/stats",
		"/metrics":                                                         "/metrics",
	}
	for in, want := range cases {
		if got := normalizePath(in); got != want {
			t.Fatalf("normalizePath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestMiddlewareAndDomainCounters(t *testing.T) {
	m := NewHTTPServerMetrics("compliance-api")
	handler := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/compliance/items/0b6f4a1e-3c0d-4d7e-9f55-7f3b0c2d1a90", nil))
	if rr.Code != http.StatusTeapot {
		t.Fatalf("status = %d", rr.Code)
	}

	m.RecordScore(domain.StatusNeedsAttention, 42)
	m.RecordSeeded("compliance_items", 9)
	m.RecordSeeded("employee_requirements", 0)
	m.RecordWebhook("paid")
	m.ObserveBreaker("s3.put", "closed", "open")

	body := scrape(t, m)
	for _, want := range []string{
		`simplycomply_http_requests_total{method="GET",path="/api/compliance/items/{id}",service="compliance-api",status="418"} 1`,
		`simplycomply_compliance_score_computations_total{label="needs_attention",service="compliance-api"} 1`,
		`simplycomply_compliance_seeded_records_total{kind="compliance_items",service="compliance-api"} 9`,
		`simplycomply_payments_webhook_events_total{outcome="paid",service="compliance-api"} 1`,
		`simplycomply_resilience_breaker_state{operation="s3.put",service="compliance-api"} 2`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("metrics output missing %q", want)
		}
	}
	if strings.Contains(body, "employee_requirements") {
		t.Fatalf("zero seed count must not create a series")
	}
}

func scrape(t *testing.T, m *HTTPServerMetrics) string {
	t.Helper()
	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	raw, err := io.ReadAll(rr.Body)
	if err != nil {
		t.Fatalf("read metrics: %v", err)
	}
	return string(raw)
}
