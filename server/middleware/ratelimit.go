package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "github.com/kbukum/meetingmind/errors"
	"github.com/kbukum/meetingmind/resilience"
)

// RateLimitConfig configures the per-client rate limiting middleware.
type RateLimitConfig struct {
	// Requests is the number of requests a client may make per Window.
	Requests int `yaml:"requests" mapstructure:"requests"`
	// Window is the period over which Requests refill.
	Window time.Duration `yaml:"window" mapstructure:"window"`
	// KeyFunc extracts the rate limit key from a request. Defaults to client IP.
	KeyFunc func(*gin.Context) string `yaml:"-" mapstructure:"-"`
	// Now overrides the clock.
	Now func() time.Time `yaml:"-" mapstructure:"-"`
}

// RateLimit returns a Gin middleware that gives every key its own token
// bucket holding Requests tokens and refilling over Window.
func RateLimit(cfg RateLimitConfig) gin.HandlerFunc {
	if cfg.Requests <= 0 {
		cfg.Requests = 100
	}
	if cfg.Window <= 0 {
		cfg.Window = 15 * time.Minute
	}
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = IPBasedKey
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	kl := &keyedLimiter{
		cfg:       cfg,
		limiters:  make(map[string]*limiterEntry),
		lastSweep: cfg.Now(),
	}

	return func(c *gin.Context) {
		if !kl.allow(cfg.KeyFunc(c)) {
			appErr := apperrors.RateLimited()
			c.Header("Retry-After", retryAfter(cfg))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, appErr.ToResponse())
			return
		}
		c.Next()
	}
}

// IPBasedKey extracts the client IP for use as a rate limit key.
func IPBasedKey(c *gin.Context) string {
	return c.ClientIP()
}

type limiterEntry struct {
	limiter *resilience.RateLimiter
	seen    time.Time
}

type keyedLimiter struct {
	cfg RateLimitConfig

	mu        sync.Mutex
	limiters  map[string]*limiterEntry
	lastSweep time.Time
}

func (kl *keyedLimiter) allow(key string) bool {
	kl.mu.Lock()
	defer kl.mu.Unlock()

	now := kl.cfg.Now()
	kl.sweep(now)

	e, ok := kl.limiters[key]
	if !ok {
		e = &limiterEntry{limiter: resilience.NewRateLimiter(resilience.RateLimiterConfig{
			Name:  "http:" + key,
			Rate:  float64(kl.cfg.Requests) / kl.cfg.Window.Seconds(),
			Burst: kl.cfg.Requests,
			Now:   kl.cfg.Now,
		})}
		kl.limiters[key] = e
	}
	e.seen = now
	return e.limiter.Allow()
}

// sweep drops keys idle for a whole window; their buckets would be full again.
func (kl *keyedLimiter) sweep(now time.Time) {
	if now.Sub(kl.lastSweep) < kl.cfg.Window {
		return
	}
	for key, e := range kl.limiters {
		if now.Sub(e.seen) >= kl.cfg.Window {
			delete(kl.limiters, key)
		}
	}
	kl.lastSweep = now
}

// retryAfter is the time for one token to refill, in whole seconds.
func retryAfter(cfg RateLimitConfig) string {
	secs := int(cfg.Window.Seconds()/float64(cfg.Requests) + 0.999)
	if secs < 1 {
		secs = 1
	}
	return strconv.Itoa(secs)
}
