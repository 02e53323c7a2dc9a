package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kbukum/meetingmind/llm"
)

func TestDialect_BuildRequest(t *testing.T) {
	body, err := Dialect{}.BuildRequest(llm.CompletionRequest{
		Model:        "llama3",
		SystemPrompt: "sys",
		Messages:     []llm.Message{{Role: llm.RoleUser, Content: "hi"}},
		JSON:         true,
		MaxTokens:    64,
	})
	if err != nil {
		t.Fatalf("BuildRequest: %v", err)
	}
	req := body.(chatRequest)
	if req.Format != "json" || req.Stream {
		t.Errorf("format=%q stream=%v", req.Format, req.Stream)
	}
	if len(req.Messages) != 2 || req.Messages[0].Role != llm.RoleSystem {
		t.Errorf("messages = %+v", req.Messages)
	}
	if req.Options == nil || req.Options.NumPredict != 64 {
		t.Errorf("options = %+v", req.Options)
	}

	if _, err := (Dialect{}).BuildRequest(llm.CompletionRequest{}); err == nil {
		t.Error("expected error without model")
	}
}

func TestAdapter_Chat(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("path = %s", r.URL.Path)
		}
		var req chatRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		_ = json.NewEncoder(w).Encode(chatResponse{
			Model:           req.Model,
			Message:         chatMessage{Role: "assistant", Content: "pong"},
			Done:            true,
			PromptEvalCount: 4,
			EvalCount:       1,
		})
	}))
	defer srv.Close()

	a, err := llm.New(llm.Config{Dialect: Name, BaseURL: srv.URL, Model: "llama3"})
	if err != nil {
		t.Fatalf("llm.New: %v", err)
	}
	resp, err := a.Execute(context.Background(), llm.UserPrompt("ping"))
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if resp.Content != "pong" || resp.Usage.TotalTokens != 5 {
		t.Errorf("resp = %+v", resp)
	}
}

func TestDialect_ParseResponse_Empty(t *testing.T) {
	if _, err := (Dialect{}).ParseResponse([]byte(`{"done":true}`)); err == nil {
		t.Error("expected empty response error")
	}
}
