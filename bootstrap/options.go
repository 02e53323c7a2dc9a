package bootstrap

import (
	"io"
	"time"

	"github.com/kbukum/meetingmind/logger"
)

// Option customizes NewApp.
type Option func(*settings)

type settings struct {
	log        *logger.Logger
	grace      time.Duration
	summaryOut io.Writer
}

func newSettings(opts []Option) settings {
	s := settings{grace: DefaultGracefulTimeout}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// WithLogger replaces the logger built from the config's logging section.
func WithLogger(l *logger.Logger) Option {
	return func(s *settings) { s.log = l }
}

// WithGracefulTimeout bounds OnStop hooks plus component shutdown.
// Non-positive values keep the default.
func WithGracefulTimeout(d time.Duration) Option {
	return func(s *settings) {
		if d > 0 {
			s.grace = d
		}
	}
}

// WithSummaryOutput sends the startup banner to w; io.Discard silences it.
func WithSummaryOutput(w io.Writer) Option {
	return func(s *settings) { s.summaryOut = w }
}
