package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/meetingmind/analysis"
	"github.com/kbukum/meetingmind/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const longTranscript = "Speaker A: we should ship by Friday. Speaker B: agreed, I will own the release."

// fakeAnalyzer returns a fixed outcome. When gate is set, Run blocks until
// it is closed and reports entry on started.
type fakeAnalyzer struct {
	outcome analysis.Outcome
	summary string
	gate    chan struct{}
	started chan struct{}

	mu          sync.Mutex
	transcripts []string
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, transcript string) (analysis.Result, error) {
	o := f.Run(ctx, transcript)
	if o.Err != nil {
		return o.Result, o.Err
	}
	return o.Result, nil
}

func (f *fakeAnalyzer) Run(_ context.Context, transcript string) analysis.Outcome {
	f.mu.Lock()
	f.transcripts = append(f.transcripts, transcript)
	f.mu.Unlock()
	if f.gate != nil {
		f.started <- struct{}{}
		<-f.gate
	}
	return f.outcome
}

func (f *fakeAnalyzer) QuickSummarize(context.Context, string) string {
	return f.summary
}

func (f *fakeAnalyzer) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.transcripts)
}

func sampleResult() analysis.Result {
	r := analysis.FallbackResult()
	r.Summary.Executive = "The team agreed to ship by Friday."
	return r
}

func newAIRouter(a analysis.Analyzer, cfg AIConfig) *gin.Engine {
	r := gin.New()
	NewAIHandler(a, cfg, logger.Nop()).Register(r.Group("/api/ai"))
	return r
}

func postJSON(t *testing.T, h http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func errorCode(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("error body is not JSON: %v (%s)", err, rr.Body.String())
	}
	return body.Error.Code
}

func TestAnalyze_Success(t *testing.T) {
	fa := &fakeAnalyzer{outcome: analysis.Outcome{Result: sampleResult(), Attempts: 2}}
	rr := postJSON(t, newAIRouter(fa, AIConfig{}), "/api/ai/analyze", `{"transcript":"`+longTranscript+`"}`)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
	var body map[string]json.RawMessage
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"summary", "actionItems", "decisions", "topics", "sentiment", "meta"} {
		if _, ok := body[key]; !ok {
			t.Errorf("response missing %q: %s", key, rr.Body.String())
		}
	}
	var meta AnalyzeMeta
	if err := json.Unmarshal(body["meta"], &meta); err != nil {
		t.Fatal(err)
	}
	if meta.Attempts != 2 || meta.Fallback {
		t.Errorf("meta = %+v", meta)
	}
	if fa.transcripts[0] != longTranscript {
		t.Errorf("analyzer got %q", fa.transcripts[0])
	}
}

func TestAnalyze_RejectsShortTranscript(t *testing.T) {
	fa := &fakeAnalyzer{}
	router := newAIRouter(fa, AIConfig{})

	tests := []struct {
		name string
		body string
	}{
		{"too short", `{"transcript":"hello"}`},
		{"missing", `{}`},
		{"empty body", ``},
		{"49 chars", `{"transcript":"` + strings.Repeat("a", 49) + `"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := postJSON(t, router, "/api/ai/analyze", tt.body)
			if rr.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rr.Code)
			}
			if !strings.Contains(rr.Body.String(), "Transcript too short for analysis") {
				t.Errorf("body = %s", rr.Body.String())
			}
		})
	}
	if fa.calls() != 0 {
		t.Errorf("analyzer called %d times for rejected requests", fa.calls())
	}
}

func TestAnalyze_ExactlyMinimumLength(t *testing.T) {
	fa := &fakeAnalyzer{outcome: analysis.Outcome{Result: sampleResult(), Attempts: 1}}
	rr := postJSON(t, newAIRouter(fa, AIConfig{}), "/api/ai/analyze", `{"transcript":"`+strings.Repeat("é", 50)+`"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
}

func TestAnalyze_MalformedJSON(t *testing.T) {
	rr := postJSON(t, newAIRouter(&fakeAnalyzer{}, AIConfig{}), "/api/ai/analyze", `{"transcript":`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rr.Code)
	}
	if got := errorCode(t, rr); got != "INVALID_INPUT" {
		t.Errorf("code = %s", got)
	}
}

func TestAnalyze_Fallback(t *testing.T) {
	fa := &fakeAnalyzer{outcome: analysis.Outcome{
		Result:   analysis.FallbackResult(),
		Attempts: 3,
		Fallback: true,
		Err:      &analysis.Error{Kind: analysis.KindProvider, Attempts: 3, Err: errors.New("quota")},
	}}
	rr := postJSON(t, newAIRouter(fa, AIConfig{}), "/api/ai/analyze", `{"transcript":"`+longTranscript+`"}`)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var resp AnalyzeResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if !resp.Meta.Fallback || resp.Meta.Attempts != 3 || resp.Meta.Error != "provider_error" {
		t.Errorf("meta = %+v", resp.Meta)
	}
	if resp.Summary.Executive != analysis.FallbackResult().Summary.Executive {
		t.Errorf("summary = %q", resp.Summary.Executive)
	}
}

func TestAnalyze_StrictFailure(t *testing.T) {
	fa := &fakeAnalyzer{outcome: analysis.Outcome{
		Attempts: 3,
		Err:      &analysis.Error{Kind: analysis.KindSchema, Fields: []string{"sentiment.score"}, Attempts: 3},
	}}
	rr := postJSON(t, newAIRouter(fa, AIConfig{}), "/api/ai/analyze", `{"transcript":"`+longTranscript+`"}`)

	if rr.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rr.Code)
	}
	if got := errorCode(t, rr); got != "SCHEMA_ERROR" {
		t.Errorf("code = %s", got)
	}
}

type inFlightCounter struct {
	mu     sync.Mutex
	cur    int
	peak   int
	events int
}

func (c *inFlightCounter) TrackInFlight(delta int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cur += delta
	c.events++
	if c.cur > c.peak {
		c.peak = c.cur
	}
}

func TestAnalyze_BulkheadRejectsWhenFull(t *testing.T) {
	fa := &fakeAnalyzer{
		outcome: analysis.Outcome{Result: sampleResult(), Attempts: 1},
		gate:    make(chan struct{}),
		started: make(chan struct{}, 1),
	}
	counter := &inFlightCounter{}
	router := newAIRouter(fa, AIConfig{MaxConcurrent: 1, InFlight: counter})
	body := `{"transcript":"` + longTranscript + `"}`

	first := make(chan *httptest.ResponseRecorder, 1)
	go func() { first <- postJSON(t, router, "/api/ai/analyze", body) }()
	<-fa.started

	rr := postJSON(t, router, "/api/ai/analyze", body)
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("second request status = %d, want 503", rr.Code)
	}
	if got := errorCode(t, rr); got != "SERVICE_UNAVAILABLE" {
		t.Errorf("code = %s", got)
	}

	close(fa.gate)
	if rr := <-first; rr.Code != http.StatusOK {
		t.Errorf("first request status = %d", rr.Code)
	}
	if counter.peak != 1 || counter.cur != 0 || counter.events != 2 {
		t.Errorf("in-flight tracking = %+v", counter)
	}
}

func TestSummarize(t *testing.T) {
	fa := &fakeAnalyzer{summary: "Shipping Friday."}
	router := newAIRouter(fa, AIConfig{})

	rr := postJSON(t, router, "/api/ai/summarize", `{"transcript":"short one"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var resp SummarizeResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Summary != "Shipping Friday." {
		t.Errorf("summary = %q", resp.Summary)
	}

	rr = postJSON(t, router, "/api/ai/summarize", `{"transcript":""}`)
	if rr.Code != http.StatusBadRequest || !strings.Contains(rr.Body.String(), "Transcript required") {
		t.Errorf("empty transcript: status = %d body = %s", rr.Code, rr.Body.String())
	}
}

func TestSummarize_PlaceholderOnProviderFailure(t *testing.T) {
	eng := analysis.NewEngine(analysis.ProviderFunc(func(context.Context, analysis.GenerateRequest) (string, error) {
		return "", errors.New("unavailable")
	}), analysis.WithLogger(logger.Nop()))

	rr := postJSON(t, newAIRouter(eng, AIConfig{}), "/api/ai/summarize", `{"transcript":"`+longTranscript+`"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var resp SummarizeResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Summary != analysis.SummaryPlaceholder {
		t.Errorf("summary = %q", resp.Summary)
	}
}
