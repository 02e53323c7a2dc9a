package httpclient

import (
	"errors"
	"fmt"
	"time"

	"github.com/kbukum/meetingmind/resilience"
	"github.com/kbukum/meetingmind/security"
)

// DefaultTimeout applies when Config.Timeout is unset.
const DefaultTimeout = 30 * time.Second

// Config configures a Client. The resilience policies are wired in code,
// not from files, and are off when nil.
type Config struct {
	BaseURL string              `yaml:"base_url" mapstructure:"base_url"`
	Timeout time.Duration       `yaml:"timeout" mapstructure:"timeout"`
	Headers map[string]string   `yaml:"headers" mapstructure:"headers"`
	TLS     *security.TLSConfig `yaml:"tls" mapstructure:"tls"`

	// Auth applies to requests that do not set their own.
	Auth *AuthConfig `yaml:"-" mapstructure:"-"`

	Retry          *resilience.RetryConfig          `yaml:"-" mapstructure:"-"`
	CircuitBreaker *resilience.CircuitBreakerConfig `yaml:"-" mapstructure:"-"`
	RateLimiter    *resilience.RateLimiterConfig    `yaml:"-" mapstructure:"-"`
}

func (c *Config) ApplyDefaults() {
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
}

func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return errors.New("httpclient: timeout must be positive")
	}
	if err := c.TLS.Validate(); err != nil {
		return fmt.Errorf("httpclient: %w", err)
	}
	return nil
}

// DefaultRetryConfig retries only errors IsRetryable accepts.
func DefaultRetryConfig() *resilience.RetryConfig {
	rc := resilience.DefaultRetryConfig()
	rc.RetryIf = IsRetryable
	return &rc
}

// DefaultCircuitBreakerConfig counts only retryable errors as failures,
// so 4xx replies never open the breaker.
func DefaultCircuitBreakerConfig(name string) *resilience.CircuitBreakerConfig {
	cb := resilience.DefaultCircuitBreakerConfig(name)
	cb.IsFailure = IsRetryable
	return &cb
}
