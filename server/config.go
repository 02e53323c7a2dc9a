package server

import (
	"time"

	"github.com/kbukum/meetingmind/server/middleware"
	"github.com/kbukum/meetingmind/validation"
)

// DefaultMinTranscriptLength is the shortest transcript accepted by the
// analyze route.
const DefaultMinTranscriptLength = 50

// Config holds HTTP server configuration.
type Config struct {
	Host         string                     `yaml:"host" mapstructure:"host"`
	Port         int                        `yaml:"port" mapstructure:"port"`
	ReadTimeout  int                        `yaml:"read_timeout" mapstructure:"read_timeout"`   // seconds
	WriteTimeout int                        `yaml:"write_timeout" mapstructure:"write_timeout"` // seconds
	IdleTimeout  int                        `yaml:"idle_timeout" mapstructure:"idle_timeout"`   // seconds
	MaxBodySize  string                     `yaml:"max_body_size" mapstructure:"max_body_size"` // e.g. "10MB"
	CORS         middleware.CORSConfig      `yaml:"cors" mapstructure:"cors"`
	RateLimit    middleware.RateLimitConfig `yaml:"rate_limit" mapstructure:"rate_limit"`
	// MinTranscriptLength is measured in characters.
	MinTranscriptLength int  `yaml:"min_transcript_length" mapstructure:"min_transcript_length"`
	Enabled             bool `yaml:"enabled" mapstructure:"enabled"`
}

// ApplyDefaults sets sensible default values for unset fields.
func (c *Config) ApplyDefaults() {
	if c.Port == 0 {
		c.Port = 3001
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = 15
	}
	// Analysis can run three 30s attempts plus backoff.
	if c.WriteTimeout == 0 {
		c.WriteTimeout = 120
	}
	if c.IdleTimeout == 0 {
		c.IdleTimeout = 60
	}
	if c.MaxBodySize == "" {
		c.MaxBodySize = "10MB"
	}
	if c.MinTranscriptLength == 0 {
		c.MinTranscriptLength = DefaultMinTranscriptLength
	}
	if len(c.CORS.AllowedOrigins) == 0 {
		c.CORS.AllowedOrigins = []string{"http://localhost:5173"}
		c.CORS.AllowCredentials = true
	}
	if len(c.CORS.AllowedMethods) == 0 {
		c.CORS.AllowedMethods = []string{"GET", "POST", "OPTIONS"}
	}
	if len(c.CORS.AllowedHeaders) == 0 {
		c.CORS.AllowedHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-Id"}
	}
	if c.RateLimit.Requests == 0 {
		c.RateLimit.Requests = 100
	}
	if c.RateLimit.Window == 0 {
		c.RateLimit.Window = 15 * time.Minute
	}
}

// Validate reports every out-of-range value at once.
func (c *Config) Validate() error {
	v := validation.New().
		Range("port", c.Port, 0, 65535).
		Custom(c.ReadTimeout >= 0, "read_timeout", "must be non-negative").
		Custom(c.WriteTimeout >= 0, "write_timeout", "must be non-negative").
		Custom(c.IdleTimeout >= 0, "idle_timeout", "must be non-negative").
		Custom(c.MinTranscriptLength >= 0, "min_transcript_length", "must be non-negative").
		Custom(c.RateLimit.Requests >= 0, "rate_limit.requests", "must be non-negative").
		Custom(c.RateLimit.Window >= 0, "rate_limit.window", "must be non-negative")
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}
