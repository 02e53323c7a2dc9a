package middleware_test

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/meetingmind/logger"
	"github.com/kbukum/meetingmind/server/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func ok(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// ---------------------------------------------------------------------------
// Recovery
// ---------------------------------------------------------------------------

func TestRecovery_NoPanic(t *testing.T) {
	handler := middleware.Recovery(logger.Nop())(http.HandlerFunc(ok))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/", http.NoBody))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}

func TestRecovery_Panic(t *testing.T) {
	handler := middleware.Recovery(logger.Nop())(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		panic("test panic")
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/test", http.NoBody))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}

	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not valid JSON: %v", err)
	}
	if body.Error.Code != "INTERNAL_ERROR" {
		t.Fatalf("unexpected error code: %s", body.Error.Code)
	}
}

// ---------------------------------------------------------------------------
// RequestID
// ---------------------------------------------------------------------------

func TestRequestID_GeneratesID(t *testing.T) {
	var seen string
	handler := middleware.RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = middleware.GetRequestID(r.Context())
		if r.Header.Get("X-Request-Id") != seen {
			t.Error("request header and context disagree")
		}
		w.WriteHeader(http.StatusOK)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/", http.NoBody))

	if seen == "" {
		t.Fatal("expected a request id in the context")
	}
	if rr.Header().Get("X-Request-Id") != seen {
		t.Errorf("response id = %q, want %q", rr.Header().Get("X-Request-Id"), seen)
	}
}

func TestRequestID_PreservesExisting(t *testing.T) {
	handler := middleware.RequestID()(http.HandlerFunc(ok))

	req := httptest.NewRequest("GET", "/", http.NoBody)
	req.Header.Set("X-Request-Id", "existing-id")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if got := rr.Header().Get("X-Request-Id"); got != "existing-id" {
		t.Errorf("expected existing-id, got %s", got)
	}
}

// ---------------------------------------------------------------------------
// RequestLogger
// ---------------------------------------------------------------------------

func TestRequestLogger(t *testing.T) {
	tests := []struct {
		name      string
		path      string
		status    int
		wantLevel string
	}{
		{"server error", "/api/ai/analyze", http.StatusBadGateway, "error"},
		{"client error", "/api/ai/analyze", http.StatusBadRequest, "warn"},
		{"success", "/api/ai/summarize", http.StatusOK, "debug"},
		{"health skipped", "/health", http.StatusOK, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf strings.Builder
			log := logger.NewWithWriter(&buf, &logger.Config{Level: "debug", Format: "json"}, "test")
			chain := middleware.Chain(middleware.RequestID(), middleware.RequestLogger(log))
			handler := chain(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
			}))

			handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("POST", tt.path, http.NoBody))

			out := buf.String()
			if tt.wantLevel == "" {
				if out != "" {
					t.Errorf("expected no log, got %s", out)
				}
				return
			}
			var entry map[string]any
			if err := json.Unmarshal([]byte(strings.TrimSpace(out)), &entry); err != nil {
				t.Fatalf("log line is not JSON: %v (%s)", err, out)
			}
			if entry["level"] != tt.wantLevel {
				t.Errorf("level = %v, want %s", entry["level"], tt.wantLevel)
			}
			if int(entry["status"].(float64)) != tt.status {
				t.Errorf("status = %v", entry["status"])
			}
			if entry["request_id"] == nil || entry["request_id"] == "" {
				t.Error("expected request_id in log entry")
			}
		})
	}
}

// ---------------------------------------------------------------------------
// CORS
// ---------------------------------------------------------------------------

func TestCORS(t *testing.T) {
	cfg := middleware.CORSConfig{
		AllowedOrigins:   []string{"http://localhost:5173"},
		AllowedMethods:   []string{"GET", "POST"},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
	}
	handler := middleware.CORS(cfg)(http.HandlerFunc(ok))

	tests := []struct {
		name       string
		method     string
		origin     string
		preflight  bool
		wantCode   int
		wantOrigin string
	}{
		{"allowed origin", "GET", "http://localhost:5173", false, http.StatusOK, "http://localhost:5173"},
		{"foreign origin", "GET", "http://evil.example", false, http.StatusOK, ""},
		{"preflight", "OPTIONS", "http://localhost:5173", true, http.StatusNoContent, "http://localhost:5173"},
		{"plain options", "OPTIONS", "", false, http.StatusOK, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/api/ai/analyze", http.NoBody)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			if tt.preflight {
				req.Header.Set("Access-Control-Request-Method", "POST")
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if rr.Code != tt.wantCode {
				t.Errorf("status = %d, want %d", rr.Code, tt.wantCode)
			}
			if got := rr.Header().Get("Access-Control-Allow-Origin"); got != tt.wantOrigin {
				t.Errorf("allow origin = %q, want %q", got, tt.wantOrigin)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// BodySizeLimit
// ---------------------------------------------------------------------------

func TestParseSize(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"10MB", 10 * 1024 * 1024},
		{"512kb", 512 * 1024},
		{"1GB", 1024 * 1024 * 1024},
		{"2048", 2048},
		{"100B", 100},
		{"", 7},
		{"lots", 7},
		{"-5MB", 7},
	}
	for _, tt := range tests {
		if got := middleware.ParseSize(tt.in, 7); got != tt.want {
			t.Errorf("ParseSize(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestBodySizeLimit(t *testing.T) {
	handler := middleware.BodySizeLimit("8B")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf := make([]byte, 64)
		var total int
		for {
			n, err := r.Body.Read(buf)
			total += n
			if err != nil {
				if !errors.Is(err, io.EOF) {
					w.WriteHeader(http.StatusRequestEntityTooLarge)
					return
				}
				break
			}
		}
		w.WriteHeader(http.StatusOK)
	}))

	for body, want := range map[string]int{"small": http.StatusOK, "much too large": http.StatusRequestEntityTooLarge} {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest("POST", "/", strings.NewReader(body)))
		if rr.Code != want {
			t.Errorf("body %q: status = %d, want %d", body, rr.Code, want)
		}
	}
}

// ---------------------------------------------------------------------------
// RateLimit
// ---------------------------------------------------------------------------

func TestRateLimit_PerKey(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	r := gin.New()
	r.Use(middleware.RateLimit(middleware.RateLimitConfig{
		Requests: 1,
		Window:   time.Minute,
		KeyFunc:  func(c *gin.Context) string { return c.GetHeader("X-Client") },
		Now:      func() time.Time { return now },
	}))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	call := func(client string) int {
		req := httptest.NewRequest("GET", "/", http.NoBody)
		req.Header.Set("X-Client", client)
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)
		return rr.Code
	}

	if got := call("a"); got != http.StatusOK {
		t.Fatalf("a first = %d", got)
	}
	if got := call("a"); got != http.StatusTooManyRequests {
		t.Fatalf("a second = %d", got)
	}
	if got := call("b"); got != http.StatusOK {
		t.Fatalf("b first = %d", got)
	}

	now = now.Add(2 * time.Minute)
	if got := call("a"); got != http.StatusOK {
		t.Fatalf("a after window = %d", got)
	}
}

// ---------------------------------------------------------------------------
// Metrics
// ---------------------------------------------------------------------------

type observed struct {
	method, route string
	status        int
}

type recorder struct{ calls []observed }

func (r *recorder) ObserveHTTP(method, route string, status int, _ time.Duration) {
	r.calls = append(r.calls, observed{method, route, status})
}

func TestMetrics_UsesRouteTemplate(t *testing.T) {
	rec := &recorder{}
	r := gin.New()
	r.Use(middleware.Metrics(rec))
	r.GET("/meetings/:id", func(c *gin.Context) { c.Status(http.StatusAccepted) })

	for _, path := range []string{"/meetings/1", "/meetings/2", "/missing"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", path, http.NoBody))
	}

	want := []observed{
		{"GET", "/meetings/:id", http.StatusAccepted},
		{"GET", "/meetings/:id", http.StatusAccepted},
		{"GET", "unmatched", http.StatusNotFound},
	}
	if len(rec.calls) != len(want) {
		t.Fatalf("calls = %+v", rec.calls)
	}
	for i := range want {
		if rec.calls[i] != want[i] {
			t.Errorf("call %d = %+v, want %+v", i, rec.calls[i], want[i])
		}
	}
}
