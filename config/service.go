package config

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/kbukum/meetingmind/logger"
)

// Environments accepted in the environment key.
var Environments = []string{"development", "staging", "production"}

// ServiceConfig is the top of every config.yml. Application configs embed
// it with `mapstructure:",squash"` so name, environment and logging sit at
// the root.
type ServiceConfig struct {
	Name        string        `yaml:"name" mapstructure:"name"`
	Environment string        `yaml:"environment" mapstructure:"environment"`
	Version     string        `yaml:"version" mapstructure:"version"`
	Debug       bool          `yaml:"debug" mapstructure:"debug"`
	Logging     logger.Config `yaml:"logging" mapstructure:"logging"`
}

// ApplyDefaults turns debug on in development, and debug turns the log
// level down to debug unless one is set.
func (c *ServiceConfig) ApplyDefaults() {
	c.Environment = cmp.Or(c.Environment, "development")
	c.Debug = c.Debug || c.Environment == "development"
	if c.Debug {
		c.Logging.Level = cmp.Or(c.Logging.Level, "debug")
	}
	c.Logging.ApplyDefaults()
}

func (c *ServiceConfig) Validate() error {
	switch {
	case c.Name == "":
		return fmt.Errorf("config.name is required")
	case !slices.Contains(Environments, c.Environment):
		return fmt.Errorf("config.environment must be one of %v, got %q", Environments, c.Environment)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("config.%w", err)
	}
	return nil
}

// GetServiceConfig lets bootstrap reach the embedded block of any
// application config.
func (c *ServiceConfig) GetServiceConfig() *ServiceConfig { return c }
