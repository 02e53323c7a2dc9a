package metrics

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRegistry_AnalysisCounters(t *testing.T) {
	r := newWith(prometheus.NewRegistry())

	r.ObserveAttempt("schema_error")
	r.ObserveAttempt("")
	r.ObserveAnalysis(OutcomeSuccess, 2*time.Second)
	r.ObserveAnalysis(OutcomeFallback, time.Second)
	r.ObserveCache("hit")

	if got := testutil.ToFloat64(r.AnalysisAttemptsTotal.WithLabelValues("schema_error")); got != 1 {
		t.Errorf("schema_error attempts = %v", got)
	}
	if got := testutil.ToFloat64(r.AnalysisAttemptsTotal.WithLabelValues("ok")); got != 1 {
		t.Errorf("ok attempts = %v", got)
	}
	if got := testutil.ToFloat64(r.AnalysisOutcomesTotal.WithLabelValues(OutcomeFallback)); got != 1 {
		t.Errorf("fallback outcomes = %v", got)
	}
	if got := testutil.ToFloat64(r.CacheLookupsTotal.WithLabelValues("hit")); got != 1 {
		t.Errorf("cache hits = %v", got)
	}
}

func TestRegistry_ProviderRecorder(t *testing.T) {
	r := newWith(prometheus.NewRegistry())
	ctx := context.Background()

	r.RecordOperation(ctx, "gemini-llm", "execute", "ok", 300*time.Millisecond)
	r.RecordOperation(ctx, "gemini-llm", "execute", "error", time.Second)
	r.RecordError(ctx, "execute", "gemini-llm")

	if got := testutil.ToFloat64(r.ProviderCallsTotal.WithLabelValues("gemini-llm", "execute", "error")); got != 1 {
		t.Errorf("error calls = %v", got)
	}
	if got := testutil.ToFloat64(r.ProviderErrorsTotal.WithLabelValues("execute", "gemini-llm")); got != 1 {
		t.Errorf("errors = %v", got)
	}
}

func TestRegistry_Handler(t *testing.T) {
	r := New()
	r.ObserveHTTP("POST", "/api/ai/analyze", 200, 10*time.Millisecond)

	srv := httptest.NewServer(r.Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	if !strings.Contains(string(body), `meetingmind_http_requests_total{method="POST",route="/api/ai/analyze",status="200"} 1`) {
		t.Errorf("exposition missing http counter:\n%s", body)
	}
	if !strings.Contains(string(body), "go_goroutines") {
		t.Error("runtime collector not registered")
	}
}
