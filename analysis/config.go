package analysis

import (
	"fmt"
	"time"

	"github.com/kbukum/meetingmind/validation"
)

// Policy decides what Analyze does once every attempt has failed.
type Policy string

// Policies.
const (
	// PolicyFallback returns FallbackResult and a nil error.
	PolicyFallback Policy = "fallback"
	// PolicyStrict returns a typed *Error.
	PolicyStrict Policy = "strict"
)

// Defaults.
const (
	DefaultMaxAttempts    = 3
	DefaultInitialBackoff = time.Second
	DefaultMaxBackoff     = 10 * time.Second
	DefaultAttemptTimeout = 30 * time.Second
	DefaultTemperature    = 0.2
	DefaultMaxConcurrent  = 4
	DefaultCacheTTL       = 24 * time.Hour
	DefaultCacheEntries   = 1000
)

// Config is the analysis section of the application config.
type Config struct {
	MaxAttempts    int           `yaml:"max_attempts" mapstructure:"max_attempts" validate:"gte=1,lte=10"`
	InitialBackoff time.Duration `yaml:"initial_backoff" mapstructure:"initial_backoff"`
	MaxBackoff     time.Duration `yaml:"max_backoff" mapstructure:"max_backoff"`
	AttemptTimeout time.Duration `yaml:"attempt_timeout" mapstructure:"attempt_timeout"`
	Policy         Policy        `yaml:"policy" mapstructure:"policy" validate:"oneof=fallback strict"`
	MaxConcurrent  int           `yaml:"max_concurrent" mapstructure:"max_concurrent" validate:"gte=1"`
	Cache          CacheConfig   `yaml:"cache" mapstructure:"cache"`
}

// CacheConfig configures result caching.
type CacheConfig struct {
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	// Backend is "memory" or "redis".
	Backend string        `yaml:"backend" mapstructure:"backend" validate:"omitempty,oneof=memory redis"`
	TTL     time.Duration `yaml:"ttl" mapstructure:"ttl"`
	// MaxEntries bounds the memory backend; negative means unbounded.
	MaxEntries int `yaml:"max_entries" mapstructure:"max_entries"`
}

// ApplyDefaults fills zero values.
func (c *Config) ApplyDefaults() {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = DefaultMaxAttempts
	}
	if c.InitialBackoff <= 0 {
		c.InitialBackoff = DefaultInitialBackoff
	}
	if c.MaxBackoff <= 0 {
		c.MaxBackoff = DefaultMaxBackoff
	}
	if c.AttemptTimeout <= 0 {
		c.AttemptTimeout = DefaultAttemptTimeout
	}
	if c.Policy == "" {
		c.Policy = PolicyFallback
	}
	if c.MaxConcurrent <= 0 {
		c.MaxConcurrent = DefaultMaxConcurrent
	}
	if c.Cache.Backend == "" {
		c.Cache.Backend = "memory"
	}
	if c.Cache.TTL <= 0 {
		c.Cache.TTL = DefaultCacheTTL
	}
	if c.Cache.MaxEntries == 0 {
		c.Cache.MaxEntries = DefaultCacheEntries
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	v := validation.New().
		OneOf("policy", string(c.Policy), []string{string(PolicyFallback), string(PolicyStrict)}).
		Range("max_attempts", c.MaxAttempts, 1, 10).
		Positive("attempt_timeout", c.AttemptTimeout).
		Custom(c.MaxBackoff >= c.InitialBackoff, "max_backoff",
			fmt.Sprintf("%s is below initial_backoff %s", c.MaxBackoff, c.InitialBackoff))
	if c.Policy == "" {
		v.AddError("policy", "is required")
	}
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

// Options converts the configuration into Engine options.
func (c Config) Options() []Option {
	return []Option{
		WithMaxAttempts(c.MaxAttempts),
		WithBackoff(c.InitialBackoff, c.MaxBackoff),
		WithAttemptTimeout(c.AttemptTimeout),
		WithPolicy(c.Policy),
	}
}
