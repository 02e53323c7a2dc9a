// Package ollama implements the llm.Dialect for a local Ollama server's
// /api/chat endpoint. Importing it registers the "ollama" dialect.
package ollama

import (
	"encoding/json"
	"fmt"

	"github.com/kbukum/meetingmind/httpclient"
	"github.com/kbukum/meetingmind/llm"
)

const (
	// Name is the registered dialect name.
	Name = "ollama"

	// DefaultBaseURL is the default local Ollama address.
	DefaultBaseURL = "http://localhost:11434"
)

func init() {
	llm.RegisterDialect(Name, Dialect{})
}

// Dialect maps llm requests to Ollama chat calls.
type Dialect struct{}

var _ llm.Dialect = Dialect{}

// Name returns "ollama".
func (Dialect) Name() string { return Name }

// DefaultBaseURL returns the local server address.
func (Dialect) DefaultBaseURL() string { return DefaultBaseURL }

// ChatPath returns /api/chat; the model travels in the body.
func (Dialect) ChatPath(string) string { return "/api/chat" }

// HealthPath lists local models.
func (Dialect) HealthPath() string { return "/api/tags" }

// Auth sends a bearer token, for Ollama behind an authenticating proxy.
func (Dialect) Auth(apiKey string) *httpclient.AuthConfig {
	return httpclient.BearerAuth(apiKey)
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatOptions struct {
	Temperature *float64 `json:"temperature,omitempty"`
	NumPredict  int      `json:"num_predict,omitempty"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
	Format   string        `json:"format,omitempty"`
	Options  *chatOptions  `json:"options,omitempty"`
}

type chatResponse struct {
	Model           string      `json:"model"`
	Message         chatMessage `json:"message"`
	Done            bool        `json:"done"`
	DoneReason      string      `json:"done_reason,omitempty"`
	PromptEvalCount int         `json:"prompt_eval_count,omitempty"`
	EvalCount       int         `json:"eval_count,omitempty"`
}

// BuildRequest creates a non-streaming chat request. JSON mode sets
// format to "json".
func (Dialect) BuildRequest(req llm.CompletionRequest) (any, error) {
	if req.Model == "" {
		return nil, fmt.Errorf("ollama: model is required")
	}

	msgs := make([]chatMessage, 0, len(req.Messages)+1)
	if req.SystemPrompt != "" {
		msgs = append(msgs, chatMessage{Role: llm.RoleSystem, Content: req.SystemPrompt})
	}
	for _, m := range req.Messages {
		msgs = append(msgs, chatMessage{Role: m.Role, Content: m.Content})
	}

	body := chatRequest{Model: req.Model, Messages: msgs}
	if req.JSON {
		body.Format = "json"
	}
	if req.Temperature != nil || req.MaxTokens > 0 {
		body.Options = &chatOptions{Temperature: req.Temperature, NumPredict: req.MaxTokens}
	}
	return body, nil
}

// ParseResponse reads the assistant message.
func (Dialect) ParseResponse(data []byte) (*llm.CompletionResponse, error) {
	var resp chatResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("ollama: decode response: %w", err)
	}
	if resp.Message.Content == "" {
		return nil, llm.ErrEmptyResponse
	}
	return &llm.CompletionResponse{
		Content:      resp.Message.Content,
		Model:        resp.Model,
		FinishReason: resp.DoneReason,
		Usage: llm.Usage{
			PromptTokens:     resp.PromptEvalCount,
			CompletionTokens: resp.EvalCount,
			TotalTokens:      resp.PromptEvalCount + resp.EvalCount,
		},
	}, nil
}
