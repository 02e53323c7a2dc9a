package analysis

import (
	"context"
	"testing"

	"github.com/kbukum/meetingmind/llm"
	"github.com/kbukum/meetingmind/provider"
)

func TestLLMProvider_MapsRequest(t *testing.T) {
	var got llm.CompletionRequest
	completion := provider.Func("stub", func(_ context.Context, req llm.CompletionRequest) (llm.CompletionResponse, error) {
		got = req
		return llm.CompletionResponse{Content: mustJSON(t, validReply())}, nil
	})
	p := NewLLMProvider(completion)

	if p.Name() != "stub" || !p.IsAvailable(context.Background()) {
		t.Errorf("name = %q", p.Name())
	}

	e, _ := newTestEngine(p)
	if _, err := e.Analyze(context.Background(), shipTranscript); err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	if len(got.Messages) != 1 || got.Messages[0].Role != llm.RoleUser {
		t.Fatalf("messages = %+v", got.Messages)
	}
	if got.Messages[0].Content != BuildPrompt(shipTranscript) {
		t.Error("prompt not forwarded")
	}
	if !got.JSON || got.Temperature == nil || *got.Temperature != DefaultTemperature {
		t.Errorf("request = %+v", got)
	}
}
