package resilience

import (
	"context"
	"errors"
	"time"

	"golang.org/x/time/rate"
)

// ErrRateLimited is returned by Execute when no token is available.
var ErrRateLimited = errors.New("rate limit exceeded")

// RateLimiterConfig sizes a token bucket.
type RateLimiterConfig struct {
	Name string
	// Rate is the refill rate in tokens per second.
	Rate float64
	// Burst is the bucket size. Defaults to Rate, and at least 1.
	Burst int
	// OnLimit runs whenever Allow or Execute rejects a call.
	OnLimit func(name string)
	// Now overrides the clock for tests.
	Now func() time.Time
}

// DefaultRateLimiterConfig allows 10 calls per second with bursts of 20.
func DefaultRateLimiterConfig(name string) RateLimiterConfig {
	return RateLimiterConfig{Name: name, Rate: 10, Burst: 20}
}

// RateLimiter is a token bucket backed by golang.org/x/time/rate. The
// bucket starts full.
type RateLimiter struct {
	name    string
	lim     *rate.Limiter
	now     func() time.Time
	onLimit func(string)
}

// NewRateLimiter builds a limiter from config.
func NewRateLimiter(config RateLimiterConfig) *RateLimiter {
	if config.Rate <= 0 {
		config.Rate = 10
	}
	if config.Burst <= 0 {
		config.Burst = max(1, int(config.Rate))
	}
	if config.Now == nil {
		config.Now = time.Now
	}
	lim := rate.NewLimiter(rate.Limit(config.Rate), config.Burst)
	// Pin the bucket's clock origin to the injected clock.
	lim.SetLimitAt(config.Now(), rate.Limit(config.Rate))
	return &RateLimiter{name: config.Name, lim: lim, now: config.Now, onLimit: config.OnLimit}
}

// Allow takes a token if one is available.
func (rl *RateLimiter) Allow() bool {
	if rl.lim.AllowN(rl.now(), 1) {
		return true
	}
	if rl.onLimit != nil {
		rl.onLimit(rl.name)
	}
	return false
}

// Wait blocks until a token is available or ctx is done. A cancelled
// wait returns its token to the bucket.
func (rl *RateLimiter) Wait(ctx context.Context) error {
	now := rl.now()
	r := rl.lim.ReserveN(now, 1)
	if !r.OK() {
		return ErrRateLimited
	}
	delay := r.DelayFrom(now)
	if delay <= 0 {
		return nil
	}
	if err := SleepContext(ctx, delay); err != nil {
		r.CancelAt(rl.now())
		return err
	}
	return nil
}

// Execute runs fn if a token is available and returns ErrRateLimited
// otherwise.
func (rl *RateLimiter) Execute(fn func() error) error {
	if !rl.Allow() {
		return ErrRateLimited
	}
	return fn()
}

// Tokens reports the tokens currently in the bucket.
func (rl *RateLimiter) Tokens() float64 {
	return rl.lim.TokensAt(rl.now())
}
