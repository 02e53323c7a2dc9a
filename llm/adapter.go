package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/kbukum/meetingmind/httpclient"
)

// ErrNoDialect is returned by NewWithDialect for a nil dialect.
var ErrNoDialect = errors.New("llm: dialect is required")

// ErrEmptyResponse is returned when a provider answers without any text.
var ErrEmptyResponse = errors.New("llm: empty response")

// Adapter is a config-driven LLM client that works with any provider via
// the Dialect pattern. It composes the resilient httpclient with a Dialect
// that handles provider-specific request/response mapping.
//
// Adapter implements provider.RequestResponse[CompletionRequest, CompletionResponse].
type Adapter struct {
	name      string
	client    *httpclient.Client
	dialect   Dialect
	model     string
	temp      float64
	maxTokens int
}

// New creates an LLM adapter from config using the global dialect registry.
func New(cfg Config) (*Adapter, error) {
	cfg.ApplyDefaults()
	dialect, err := GetDialect(cfg.Dialect)
	if err != nil {
		return nil, err
	}
	return newAdapter(dialect, cfg)
}

// NewWithDialect creates an LLM adapter with an explicit dialect instance.
func NewWithDialect(dialect Dialect, cfg Config) (*Adapter, error) {
	if dialect == nil {
		return nil, ErrNoDialect
	}
	if cfg.Dialect == "" {
		cfg.Dialect = dialect.Name()
	}
	cfg.ApplyDefaults()
	return newAdapter(dialect, cfg)
}

func newAdapter(dialect Dialect, cfg Config) (*Adapter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	client, err := httpclient.New(cfg.httpConfig(dialect))
	if err != nil {
		return nil, fmt.Errorf("llm: create http client: %w", err)
	}
	return &Adapter{
		name:      cfg.Name,
		client:    client,
		dialect:   dialect,
		model:     cfg.Model,
		temp:      cfg.Temperature,
		maxTokens: cfg.MaxTokens,
	}, nil
}

// Name returns the adapter name.
func (a *Adapter) Name() string { return a.name }

// Model returns the default model.
func (a *Adapter) Model() string { return a.model }

// Dialect returns the dialect used by this adapter.
func (a *Adapter) Dialect() Dialect { return a.dialect }

// IsAvailable checks the dialect's health endpoint. Dialects without one
// are assumed available.
func (a *Adapter) IsAvailable(ctx context.Context) bool {
	hp := a.dialect.HealthPath()
	if hp == "" {
		return true
	}
	_, err := a.client.Do(ctx, httpclient.Request{Method: http.MethodGet, Path: hp})
	return err == nil
}

// Execute sends a completion request and returns the full response.
func (a *Adapter) Execute(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
	a.applyDefaults(&req)

	body, err := a.dialect.BuildRequest(req)
	if err != nil {
		return CompletionResponse{}, fmt.Errorf("llm: build request: %w", err)
	}

	resp, err := a.client.Do(ctx, httpclient.Request{
		Method: http.MethodPost,
		Path:   a.dialect.ChatPath(req.Model),
		Body:   body,
	})
	if err != nil {
		return CompletionResponse{}, fmt.Errorf("llm: %s: %w", a.dialect.Name(), err)
	}

	result, err := a.dialect.ParseResponse(resp.Body)
	if err != nil {
		return CompletionResponse{}, fmt.Errorf("llm: parse response: %w", err)
	}
	if result.Model == "" {
		result.Model = req.Model
	}
	return *result, nil
}

func (a *Adapter) applyDefaults(req *CompletionRequest) {
	if req.Model == "" {
		req.Model = a.model
	}
	if req.Temperature == nil {
		req.Temperature = Float(a.temp)
	}
	if req.MaxTokens == 0 {
		req.MaxTokens = a.maxTokens
	}
}
