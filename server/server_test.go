package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/meetingmind/analysis"
	"github.com/kbukum/meetingmind/component"
	"github.com/kbukum/meetingmind/logger"
	"github.com/kbukum/meetingmind/metrics"
)

func newTestServer(t *testing.T, mutate func(*Config), checker func(context.Context) []component.Health) (*Server, *metrics.Registry) {
	t.Helper()
	cfg := Config{Host: "127.0.0.1"}
	cfg.ApplyDefaults()
	if mutate != nil {
		mutate(&cfg)
	}
	reg := metrics.New()
	srv := New(cfg, logger.Nop())
	srv.ApplyMiddleware(reg)
	srv.RegisterDefaultEndpoints("meetingmind", "test", checker, reg.Handler())
	fa := &fakeAnalyzer{outcome: analysis.Outcome{Result: sampleResult(), Attempts: 1}, summary: "ok"}
	srv.RegisterAPI("meetingmind", NewAIHandler(fa, AIConfig{MinTranscriptLength: cfg.MinTranscriptLength}, logger.Nop()))
	return srv, reg
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestHealth(t *testing.T) {
	tests := []struct {
		name       string
		components []component.Health
		wantCode   int
		wantStatus component.HealthStatus
	}{
		{"no components", nil, http.StatusOK, component.StatusHealthy},
		{"degraded", []component.Health{{Name: "redis", Status: component.StatusDegraded}}, http.StatusOK, component.StatusDegraded},
		{"unhealthy", []component.Health{
			{Name: "redis", Status: component.StatusDegraded},
			{Name: "llm", Status: component.StatusUnhealthy},
		}, http.StatusServiceUnavailable, component.StatusUnhealthy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newTestServer(t, nil, func(context.Context) []component.Health { return tt.components })
			rr := serve(srv.Handler(), httptest.NewRequest(http.MethodGet, "/health", http.NoBody))

			if rr.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d", rr.Code, tt.wantCode)
			}
			var body map[string]any
			if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
				t.Fatal(err)
			}
			if body["status"] != string(tt.wantStatus) {
				t.Errorf("status field = %v", body["status"])
			}
			if body["environment"] != "test" {
				t.Errorf("environment = %v", body["environment"])
			}
			if _, ok := body["uptime"].(float64); !ok {
				t.Errorf("uptime = %v", body["uptime"])
			}
			if _, err := time.Parse(time.RFC3339, body["timestamp"].(string)); err != nil {
				t.Errorf("timestamp: %v", err)
			}
		})
	}
}

func TestReadiness(t *testing.T) {
	down := func(context.Context) []component.Health {
		return []component.Health{{Name: "redis", Status: component.StatusUnhealthy}}
	}
	srv, _ := newTestServer(t, nil, down)
	h := srv.Handler()

	if rr := serve(h, httptest.NewRequest(http.MethodGet, "/health/ready", http.NoBody)); rr.Code != http.StatusServiceUnavailable {
		t.Errorf("ready = %d", rr.Code)
	}
	if rr := serve(h, httptest.NewRequest(http.MethodGet, "/health/live", http.NoBody)); rr.Code != http.StatusOK {
		t.Errorf("live = %d", rr.Code)
	}
}

func TestRequestIDIsEchoed(t *testing.T) {
	srv, _ := newTestServer(t, nil, nil)
	h := srv.Handler()

	rr := serve(h, httptest.NewRequest(http.MethodGet, "/info", http.NoBody))
	if rr.Header().Get("X-Request-Id") == "" {
		t.Error("expected a generated X-Request-Id")
	}

	req := httptest.NewRequest(http.MethodGet, "/info", http.NoBody)
	req.Header.Set("X-Request-Id", "abc-123")
	if got := serve(h, req).Header().Get("X-Request-Id"); got != "abc-123" {
		t.Errorf("X-Request-Id = %q", got)
	}
}

func TestCORSPreflight(t *testing.T) {
	srv, _ := newTestServer(t, nil, nil)
	h := srv.Handler()

	req := httptest.NewRequest(http.MethodOptions, "/api/ai/analyze", http.NoBody)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rr := serve(h, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("status = %d", rr.Code)
	}
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Errorf("allow origin = %q", got)
	}
	if rr.Header().Get("Access-Control-Allow-Credentials") != "true" {
		t.Error("expected credentials to be allowed")
	}

	req = httptest.NewRequest(http.MethodGet, "/info", http.NoBody)
	req.Header.Set("Origin", "http://evil.example")
	if got := serve(h, req).Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("foreign origin allowed: %q", got)
	}
}

func TestAPIRateLimit(t *testing.T) {
	now := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	srv, _ := newTestServer(t, func(c *Config) {
		c.RateLimit.Requests = 2
		c.RateLimit.Window = time.Minute
		c.RateLimit.Now = func() time.Time { return now }
	}, nil)
	h := srv.Handler()

	for i := 0; i < 2; i++ {
		if rr := serve(h, httptest.NewRequest(http.MethodGet, "/api", http.NoBody)); rr.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d", i, rr.Code)
		}
	}
	rr := serve(h, httptest.NewRequest(http.MethodGet, "/api", http.NoBody))
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("third request status = %d", rr.Code)
	}
	if rr.Header().Get("Retry-After") != "30" {
		t.Errorf("Retry-After = %q", rr.Header().Get("Retry-After"))
	}

	// System routes are not limited.
	if rr := serve(h, httptest.NewRequest(http.MethodGet, "/health", http.NoBody)); rr.Code != http.StatusOK {
		t.Errorf("health limited: %d", rr.Code)
	}

	now = now.Add(31 * time.Second)
	if rr := serve(h, httptest.NewRequest(http.MethodGet, "/api", http.NoBody)); rr.Code != http.StatusOK {
		t.Errorf("after refill: status = %d", rr.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, nil, nil)
	h := srv.Handler()

	serve(h, httptest.NewRequest(http.MethodPost, "/api/ai/summarize", strings.NewReader(`{"transcript":"x"}`)))
	rr := serve(h, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	want := `meetingmind_http_requests_total{method="POST",route="/api/ai/summarize",status="200"} 1`
	if !strings.Contains(rr.Body.String(), want) {
		t.Errorf("metrics output missing %s", want)
	}
}

func TestNotFoundAndRecovery(t *testing.T) {
	srv, _ := newTestServer(t, nil, nil)
	srv.GinEngine().GET("/boom", func(*gin.Context) { panic("boom") })
	h := srv.Handler()

	rr := serve(h, httptest.NewRequest(http.MethodGet, "/nope", http.NoBody))
	if rr.Code != http.StatusNotFound || errorCode(t, rr) != "NOT_FOUND" {
		t.Errorf("not found: status = %d body = %s", rr.Code, rr.Body.String())
	}

	rr = serve(h, httptest.NewRequest(http.MethodGet, "/boom", http.NoBody))
	if rr.Code != http.StatusInternalServerError || errorCode(t, rr) != "INTERNAL_ERROR" {
		t.Errorf("panic: status = %d body = %s", rr.Code, rr.Body.String())
	}
}

func TestBodySizeLimit(t *testing.T) {
	srv, _ := newTestServer(t, func(c *Config) { c.MaxBodySize = "1KB" }, nil)
	body := `{"transcript":"` + strings.Repeat("a", 2048) + `"}`
	rr := serve(srv.Handler(), httptest.NewRequest(http.MethodPost, "/api/ai/analyze", strings.NewReader(body)))
	if rr.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
}

func TestComponent_StartStop(t *testing.T) {
	srv, _ := newTestServer(t, func(c *Config) { c.Port = 0 }, nil)
	comp := NewComponent(srv)

	if h := comp.Health(context.Background()); h.Status != component.StatusUnhealthy {
		t.Errorf("health before start = %s", h.Status)
	}
	if err := comp.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if h := comp.Health(context.Background()); h.Status != component.StatusHealthy {
		t.Errorf("health after start = %s", h.Status)
	}

	resp, err := http.Get(fmt.Sprintf("http://%s/health", srv.Addr()))
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("live /health = %d", resp.StatusCode)
	}

	if err := comp.Stop(context.Background()); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if srv.Serving() {
		t.Error("still serving after Stop")
	}
}

func TestComponent_Routes(t *testing.T) {
	srv, _ := newTestServer(t, nil, nil)
	routes := NewComponent(srv).Routes()
	if len(routes) == 0 {
		t.Fatal("no routes")
	}

	first := routes[0]
	if isSystemPath(first.Path) {
		t.Errorf("system route sorted first: %+v", first)
	}
	var analyze *component.Route
	for i := range routes {
		if routes[i].Path == "/api/ai/analyze" {
			analyze = &routes[i]
		}
	}
	if analyze == nil || analyze.Method != http.MethodPost || analyze.Handler != "AIHandler.Analyze" {
		t.Errorf("analyze route = %+v", analyze)
	}
	if last := routes[len(routes)-1]; !isSystemPath(last.Path) || !strings.HasSuffix(last.Handler, "(system)") {
		t.Errorf("last route = %+v", last)
	}
}

func TestFormatHandlerName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"github.com/kbukum/meetingmind/server.(*AIHandler).Analyze-fm", "AIHandler.Analyze"},
		{"github.com/kbukum/meetingmind/server.(*Server).RegisterAPI.func1", "registerapi"},
		{"github.com/kbukum/meetingmind/server/endpoint.Health.func1", "health"},
	}
	for _, tt := range tests {
		if got := formatHandlerName(tt.in); got != tt.want {
			t.Errorf("formatHandlerName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestConfig(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()
	if cfg.Port != 3001 || cfg.MinTranscriptLength != 50 {
		t.Errorf("defaults = %+v", cfg)
	}
	if cfg.RateLimit.Requests != 100 || cfg.RateLimit.Window != 15*time.Minute {
		t.Errorf("rate limit defaults = %+v", cfg.RateLimit)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
	cfg.Port = 70000
	if err := cfg.Validate(); err == nil {
		t.Error("expected port error")
	}
}
