package recording

import (
	"time"

	"github.com/kbukum/meetingmind/logger"
)

// Defaults.
const (
	DefaultMeterInterval = 50 * time.Millisecond
	DefaultTickInterval  = time.Second
)

// Option configures a Controller.
type Option func(*Controller)

// WithMeterInterval sets how often the input level is sampled.
func WithMeterInterval(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.meterInterval = d
		}
	}
}

// WithTickInterval sets the elapsed-seconds counter period.
func WithTickInterval(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.tickInterval = d
		}
	}
}

// WithTickerFactory replaces time.NewTicker.
func WithTickerFactory(f TickerFactory) Option {
	return func(c *Controller) {
		if f != nil {
			c.newTicker = f
		}
	}
}

// WithLogger sets the controller logger.
func WithLogger(l *logger.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.log = l.WithComponent("recording")
		}
	}
}

// Config is the recording section of the application config.
type Config struct {
	MeterInterval time.Duration `yaml:"meter_interval" mapstructure:"meter_interval"`
	TickInterval  time.Duration `yaml:"tick_interval" mapstructure:"tick_interval"`
}

// ApplyDefaults fills zero values.
func (c *Config) ApplyDefaults() {
	if c.MeterInterval <= 0 {
		c.MeterInterval = DefaultMeterInterval
	}
	if c.TickInterval <= 0 {
		c.TickInterval = DefaultTickInterval
	}
}

// Options converts the configuration into Controller options.
func (c Config) Options() []Option {
	return []Option{WithMeterInterval(c.MeterInterval), WithTickInterval(c.TickInterval)}
}
