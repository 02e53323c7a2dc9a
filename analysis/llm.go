package analysis

import (
	"context"

	"github.com/kbukum/meetingmind/llm"
	"github.com/kbukum/meetingmind/provider"
)

// LLMProvider generates analysis text through an LLM completion provider,
// typically an *llm.Adapter wrapped with provider middleware.
type LLMProvider struct {
	rr provider.RequestResponse[GenerateRequest, string]
}

var _ Provider = (*LLMProvider)(nil)

// NewLLMProvider adapts a completion provider to Provider.
func NewLLMProvider(completion provider.RequestResponse[llm.CompletionRequest, llm.CompletionResponse]) *LLMProvider {
	rr := provider.Adapt(completion, completion.Name(),
		func(_ context.Context, req GenerateRequest) (llm.CompletionRequest, error) {
			out := llm.UserPrompt(req.Prompt)
			out.JSON = req.JSON
			out.Temperature = llm.Float(req.Temperature)
			return out, nil
		},
		func(resp llm.CompletionResponse) (string, error) {
			return resp.Content, nil
		},
	)
	return &LLMProvider{rr: rr}
}

// Name returns the underlying provider name.
func (p *LLMProvider) Name() string { return p.rr.Name() }

// IsAvailable reports whether the backend answers its health check.
func (p *LLMProvider) IsAvailable(ctx context.Context) bool { return p.rr.IsAvailable(ctx) }

// Generate sends the prompt and returns the raw reply text.
func (p *LLMProvider) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	return p.rr.Execute(ctx, req)
}
