package app

import (
	"fmt"

	"github.com/kbukum/meetingmind/analysis"
	"github.com/kbukum/meetingmind/config"
	"github.com/kbukum/meetingmind/llm"
	"github.com/kbukum/meetingmind/observability"
	"github.com/kbukum/meetingmind/recording"
	"github.com/kbukum/meetingmind/redis"
	"github.com/kbukum/meetingmind/server"
	"github.com/kbukum/meetingmind/validation"
	"github.com/kbukum/meetingmind/version"
)

// ServiceName is the config and keyring namespace of the binary.
const ServiceName = "meetingmind"

// EnvPrefix prefixes every environment override, e.g. MEETINGMIND_SERVER_PORT.
const EnvPrefix = "MEETINGMIND"

// Config is the complete application configuration.
type Config struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	LLM           llm.Config           `yaml:"llm" mapstructure:"llm"`
	Analysis      analysis.Config      `yaml:"analysis" mapstructure:"analysis"`
	Redis         redis.Config         `yaml:"redis" mapstructure:"redis"`
	Server        server.Config        `yaml:"server" mapstructure:"server"`
	Recording     recording.Config     `yaml:"recording" mapstructure:"recording"`
	Observability observability.Config `yaml:"observability" mapstructure:"observability"`
}

// Load reads config.yml, .env and the environment into a Config. Besides
// MEETINGMIND_* overrides, GEMINI_API_KEY and GEMINI_MODEL are honored and
// PORT sets the server port. Defaults are applied by the caller.
func Load(opts ...config.LoaderOption) (*Config, error) {
	base := []config.LoaderOption{
		config.WithEnvPrefix(EnvPrefix),
		config.WithEnvAlias("llm.api_key", "GEMINI_API_KEY"),
		config.WithEnvAlias("llm.model", "GEMINI_MODEL"),
		config.WithEnvAlias("server.port", "PORT"),
	}
	cfg := &Config{}
	if err := config.LoadConfig(ServiceName, cfg, append(base, opts...)...); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyDefaults fills every section.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = ServiceName
	}
	if c.Version == "" {
		c.Version = version.GetShortVersion()
	}
	c.ServiceConfig.ApplyDefaults()
	c.LLM.ApplyDefaults()
	c.Analysis.ApplyDefaults()
	c.Redis.ApplyDefaults()
	c.Server.ApplyDefaults()
	c.Recording.ApplyDefaults()
	c.Observability.ApplyDefaults()

	c.Observability.ServiceName = c.Name
	c.Observability.ServiceVersion = c.Version
	c.Observability.Environment = c.Environment
}

// Validate checks struct tags first, then each section's own rules.
func (c *Config) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if err := validation.Validate(c); err != nil {
		return err
	}

	sections := []struct {
		name     string
		validate func() error
	}{
		{"llm", c.LLM.Validate},
		{"analysis", c.Analysis.Validate},
		{"redis", c.Redis.Validate},
		{"server", c.Server.Validate},
		{"observability", c.Observability.Validate},
	}
	for _, s := range sections {
		if err := s.validate(); err != nil {
			return fmt.Errorf("config.%s: %w", s.name, err)
		}
	}

	if c.Analysis.Cache.Enabled && c.Analysis.Cache.Backend == "redis" && !c.Redis.Enabled {
		return fmt.Errorf("config.analysis.cache: backend redis requires redis.enabled")
	}
	return nil
}
