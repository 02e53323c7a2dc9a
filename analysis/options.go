package analysis

import (
	"context"
	"time"

	"github.com/kbukum/meetingmind/logger"
	"github.com/kbukum/meetingmind/resilience"
)

// Option configures an Engine.
type Option func(*Engine)

// WithMaxAttempts sets the attempt budget, including the first attempt.
func WithMaxAttempts(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.retry.MaxAttempts = n
		}
	}
}

// WithBackoff sets the delay after the first failure and its cap. The
// delay doubles after each further failure.
func WithBackoff(initial, max time.Duration) Option {
	return func(e *Engine) {
		e.retry.InitialBackoff = initial
		e.retry.MaxBackoff = max
	}
}

// WithJitter randomizes each backoff by up to ±fraction.
func WithJitter(fraction float64) Option {
	return func(e *Engine) { e.retry.Jitter = fraction }
}

// WithAttemptTimeout bounds each provider call. Zero disables the bound.
func WithAttemptTimeout(d time.Duration) Option {
	return func(e *Engine) { e.retry.AttemptTimeout = d }
}

// WithSleep replaces the backoff wait, letting tests record delays
// without sleeping.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(e *Engine) { e.retry.Sleep = sleep }
}

// WithRetryConfig replaces the whole retry configuration. RetryIf is
// always reset to retry everything except cancellation.
func WithRetryConfig(cfg resilience.RetryConfig) Option {
	return func(e *Engine) { e.retry = cfg }
}

// WithPolicy sets what happens once every attempt has failed.
func WithPolicy(p Policy) Option {
	return func(e *Engine) { e.policy = p }
}

// WithTemperature sets the sampling temperature sent to the provider.
func WithTemperature(t float64) Option {
	return func(e *Engine) { e.temperature = t }
}

// WithOnAttempt registers a hook called once per attempt: with a nil error
// on success, with the failure and the upcoming wait before a retry, and
// with a zero wait for the final failure.
func WithOnAttempt(fn func(attempt int, err error, wait time.Duration)) Option {
	return func(e *Engine) { e.onAttempt = fn }
}

// WithObserver records attempt and run metrics.
func WithObserver(o Observer) Option {
	return func(e *Engine) {
		if o != nil {
			e.observer = o
		}
	}
}

// WithLogger sets the engine logger.
func WithLogger(l *logger.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l.WithComponent("analysis")
		}
	}
}

// WithClock overrides the clock used for durations.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}
