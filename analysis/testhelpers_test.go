package analysis

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"
)

func validReply() map[string]any {
	return map[string]any{
		"summary": map[string]any{
			"executive":    "The team agreed to ship by Friday.",
			"detailed":     "Speaker A proposed shipping by Friday and Speaker B agreed to own the release.",
			"bulletPoints": []any{"Ship by Friday", "Speaker B owns the release"},
		},
		"actionItems": []any{
			map[string]any{
				"description": "Ship by Friday",
				"assignee":    "Speaker B",
				"dueDate":     nil,
				"priority":    "high",
			},
		},
		"decisions": []any{
			map[string]any{"description": "Ship by Friday", "consensus": "unanimous"},
		},
		"topics": []any{
			map[string]any{"name": "Release", "relevance": 0.9},
			map[string]any{"name": "Ownership", "relevance": 0.4},
		},
		"sentiment": map[string]any{
			"score":          0.6,
			"magnitude":      0.5,
			"primaryEmotion": "positive",
		},
		"suggestedTitle": "Release planning",
	}
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return string(data)
}

// scriptedProvider replays replies in order; the last reply repeats.
type scriptedProvider struct {
	mu       sync.Mutex
	replies  []reply
	requests []GenerateRequest
}

type reply struct {
	text string
	err  error
}

func (p *scriptedProvider) Generate(_ context.Context, req GenerateRequest) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	i := len(p.requests)
	p.requests = append(p.requests, req)
	if i >= len(p.replies) {
		i = len(p.replies) - 1
	}
	return p.replies[i].text, p.replies[i].err
}

func (p *scriptedProvider) calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.requests)
}

type sleepRecorder struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (s *sleepRecorder) sleep(_ context.Context, d time.Duration) error {
	s.mu.Lock()
	s.delays = append(s.delays, d)
	s.mu.Unlock()
	return nil
}
