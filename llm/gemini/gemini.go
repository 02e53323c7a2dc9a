// Package gemini implements the llm.Dialect for the Google Gemini
// generateContent API. Importing it registers the "gemini" dialect.
package gemini

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kbukum/meetingmind/httpclient"
	"github.com/kbukum/meetingmind/llm"
)

const (
	// Name is the registered dialect name.
	Name = "gemini"

	// DefaultBaseURL is the public Generative Language API endpoint.
	DefaultBaseURL = "https://generativelanguage.googleapis.com"

	apiKeyHeader = "x-goog-api-key"
	jsonMimeType = "application/json"
)

func init() {
	llm.RegisterDialect(Name, Dialect{})
}

// Dialect maps llm requests to generateContent calls.
type Dialect struct{}

var _ llm.Dialect = Dialect{}

// Name returns "gemini".
func (Dialect) Name() string { return Name }

// DefaultBaseURL returns the public API endpoint.
func (Dialect) DefaultBaseURL() string { return DefaultBaseURL }

// ChatPath returns the generateContent path for model.
func (Dialect) ChatPath(model string) string {
	return "/v1beta/models/" + strings.TrimPrefix(model, "models/") + ":generateContent"
}

// HealthPath lists models, which also checks the API key.
func (Dialect) HealthPath() string { return "/v1beta/models" }

// Auth sends the key in the x-goog-api-key header.
func (Dialect) Auth(apiKey string) *httpclient.AuthConfig {
	return httpclient.APIKeyAuthHeader(apiKey, apiKeyHeader)
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generationConfig struct {
	Temperature      *float64 `json:"temperature,omitempty"`
	MaxOutputTokens  int      `json:"maxOutputTokens,omitempty"`
	ResponseMimeType string   `json:"responseMimeType,omitempty"`
}

type generateRequest struct {
	Contents          []content         `json:"contents"`
	SystemInstruction *content          `json:"systemInstruction,omitempty"`
	GenerationConfig  *generationConfig `json:"generationConfig,omitempty"`
}

type candidate struct {
	Content      content `json:"content"`
	FinishReason string  `json:"finishReason"`
}

type usageMetadata struct {
	PromptTokenCount     int `json:"promptTokenCount"`
	CandidatesTokenCount int `json:"candidatesTokenCount"`
	TotalTokenCount      int `json:"totalTokenCount"`
}

type generateResponse struct {
	Candidates     []candidate   `json:"candidates"`
	UsageMetadata  usageMetadata `json:"usageMetadata"`
	ModelVersion   string        `json:"modelVersion"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback,omitempty"`
}

// BuildRequest maps the universal request to a generateContent body.
// Assistant turns use Gemini's "model" role.
func (Dialect) BuildRequest(req llm.CompletionRequest) (any, error) {
	if len(req.Messages) == 0 {
		return nil, fmt.Errorf("gemini: at least one message is required")
	}

	body := generateRequest{Contents: make([]content, 0, len(req.Messages))}
	system := req.SystemPrompt
	for _, m := range req.Messages {
		switch m.Role {
		case llm.RoleSystem:
			system = strings.TrimSpace(system + "\n\n" + m.Content)
		case llm.RoleAssistant:
			body.Contents = append(body.Contents, content{Role: "model", Parts: []part{{Text: m.Content}}})
		default:
			body.Contents = append(body.Contents, content{Role: "user", Parts: []part{{Text: m.Content}}})
		}
	}
	if system != "" {
		body.SystemInstruction = &content{Parts: []part{{Text: system}}}
	}

	gc := generationConfig{Temperature: req.Temperature, MaxOutputTokens: req.MaxTokens}
	if req.JSON {
		gc.ResponseMimeType = jsonMimeType
	}
	if gc != (generationConfig{}) {
		body.GenerationConfig = &gc
	}
	return body, nil
}

// ParseResponse concatenates the text parts of the first candidate.
func (Dialect) ParseResponse(data []byte) (*llm.CompletionResponse, error) {
	var resp generateResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("gemini: decode response: %w", err)
	}
	if len(resp.Candidates) == 0 {
		if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
			return nil, fmt.Errorf("gemini: prompt blocked: %s", resp.PromptFeedback.BlockReason)
		}
		return nil, llm.ErrEmptyResponse
	}

	c := resp.Candidates[0]
	var sb strings.Builder
	for _, p := range c.Content.Parts {
		sb.WriteString(p.Text)
	}
	if sb.Len() == 0 {
		return nil, llm.ErrEmptyResponse
	}

	return &llm.CompletionResponse{
		Content:      sb.String(),
		Model:        resp.ModelVersion,
		FinishReason: c.FinishReason,
		Usage: llm.Usage{
			PromptTokens:     resp.UsageMetadata.PromptTokenCount,
			CompletionTokens: resp.UsageMetadata.CandidatesTokenCount,
			TotalTokens:      resp.UsageMetadata.TotalTokenCount,
		},
	}, nil
}
