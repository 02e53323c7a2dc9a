package llm

import (
	"fmt"
	"time"

	"github.com/kbukum/meetingmind/httpclient"
	"github.com/kbukum/meetingmind/resilience"
	"github.com/kbukum/meetingmind/security"
)

const (
	defaultTimeout     = 60 * time.Second
	defaultTemperature = 0.2
)

// Config holds configuration for creating an LLM adapter.
// The Dialect field selects the provider mapping.
type Config struct {
	// Name identifies this adapter instance. Defaults to "<dialect>-llm".
	Name string `yaml:"name" mapstructure:"name"`

	// Dialect selects the provider mapping ("gemini" or "ollama").
	Dialect string `yaml:"dialect" mapstructure:"dialect" validate:"required"`

	// BaseURL overrides the dialect's default API base URL.
	BaseURL string `yaml:"base_url" mapstructure:"base_url" validate:"omitempty,url"`

	// Model is the default model (e.g., "gemini-2.0-flash").
	Model string `yaml:"model" mapstructure:"model" validate:"required"`

	// APIKey is sent the way the dialect requires.
	APIKey string `yaml:"api_key" mapstructure:"api_key"`

	// Temperature is the default sampling temperature.
	Temperature float64 `yaml:"temperature" mapstructure:"temperature" validate:"gte=0,lte=2"`

	// MaxTokens is the default maximum tokens for responses. 0 means provider default.
	MaxTokens int `yaml:"max_tokens" mapstructure:"max_tokens" validate:"gte=0"`

	// Timeout bounds each HTTP request.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	// TLS customizes verification of the provider endpoint, e.g. a
	// self-hosted Ollama behind a private CA.
	TLS *security.TLSConfig `yaml:"tls" mapstructure:"tls"`

	// Headers are additional HTTP headers sent with every request.
	Headers map[string]string `yaml:"headers" mapstructure:"headers"`

	// RequestsPerSecond enables an outbound rate limit when positive.
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`

	// CircuitBreaker enables breaker protection on the transport.
	CircuitBreaker bool `yaml:"circuit_breaker" mapstructure:"circuit_breaker"`
}

// ApplyDefaults sets default values for unset config fields.
func (c *Config) ApplyDefaults() {
	if c.Dialect == "" {
		c.Dialect = "gemini"
	}
	if c.Model == "" && c.Dialect == "gemini" {
		c.Model = "gemini-2.0-flash"
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.Temperature == 0 {
		c.Temperature = defaultTemperature
	}
	if c.Name == "" {
		c.Name = c.Dialect + "-llm"
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Dialect == "" {
		return fmt.Errorf("llm: dialect is required")
	}
	if c.Model == "" {
		return fmt.Errorf("llm: model is required")
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("llm: temperature must be within [0, 2], got %v", c.Temperature)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("llm: timeout must be positive")
	}
	if err := c.TLS.Validate(); err != nil {
		return fmt.Errorf("llm: %w", err)
	}
	return nil
}

func (c *Config) httpConfig(d Dialect) httpclient.Config {
	hc := httpclient.Config{
		BaseURL: c.BaseURL,
		Timeout: c.Timeout,
		TLS:     c.TLS,
		Headers: c.Headers,
	}
	if hc.BaseURL == "" {
		hc.BaseURL = d.DefaultBaseURL()
	}
	if c.APIKey != "" {
		hc.Auth = d.Auth(c.APIKey)
	}
	if c.RequestsPerSecond > 0 {
		rl := resilience.DefaultRateLimiterConfig(c.Name)
		rl.Rate = c.RequestsPerSecond
		rl.Burst = 1
		hc.RateLimiter = &rl
	}
	if c.CircuitBreaker {
		hc.CircuitBreaker = httpclient.DefaultCircuitBreakerConfig(c.Name)
	}
	return hc
}
