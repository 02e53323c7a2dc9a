package provider

import (
	"context"
	"errors"

	apperrors "github.com/kbukum/meetingmind/errors"
	"github.com/kbukum/meetingmind/resilience"
)

// ResilienceConfig selects the policies WithResilience applies. Nil
// fields are off.
type ResilienceConfig struct {
	CircuitBreaker *resilience.CircuitBreakerConfig
	Retry          *resilience.RetryConfig
	RateLimiter    *resilience.RateLimiterConfig
	Bulkhead       *resilience.BulkheadConfig
}

// IsEmpty reports whether no policy is set.
func (c ResilienceConfig) IsEmpty() bool {
	return c == ResilienceConfig{}
}

// WithResilience guards calls with the configured policies, outermost
// first: rate limiter, bulkhead, circuit breaker, retry. Rejections by a
// policy surface as *apperrors.AppError. An empty config is a no-op.
func WithResilience[I, O any](cfg ResilienceConfig) Middleware[I, O] {
	return func(next RequestResponse[I, O]) RequestResponse[I, O] {
		if cfg.IsEmpty() {
			return next
		}
		g := &guarded[I, O]{RequestResponse: next, retry: cfg.Retry}
		if cfg.RateLimiter != nil {
			g.limiter = resilience.NewRateLimiter(*cfg.RateLimiter)
		}
		if cfg.Bulkhead != nil {
			g.bulkhead = resilience.NewBulkhead(*cfg.Bulkhead)
		}
		if cfg.CircuitBreaker != nil {
			g.breaker = resilience.NewCircuitBreaker(*cfg.CircuitBreaker)
		}
		return g
	}
}

type guarded[I, O any] struct {
	RequestResponse[I, O]
	limiter  *resilience.RateLimiter
	bulkhead *resilience.Bulkhead
	breaker  *resilience.CircuitBreaker
	retry    *resilience.RetryConfig
}

func (g *guarded[I, O]) Execute(ctx context.Context, in I) (O, error) {
	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			var zero O
			return zero, g.policyError(err)
		}
	}
	if g.bulkhead == nil {
		return g.broken(ctx, in)
	}
	out, err := resilience.ExecuteWithResult(ctx, g.bulkhead, func() (O, error) {
		return g.broken(ctx, in)
	})
	if errors.Is(err, resilience.ErrBulkheadFull) || errors.Is(err, resilience.ErrBulkheadTimeout) {
		err = g.policyError(err)
	}
	return out, err
}

// broken runs the call through the circuit breaker.
func (g *guarded[I, O]) broken(ctx context.Context, in I) (O, error) {
	if g.breaker == nil {
		return g.retried(ctx, in)
	}
	var (
		out     O
		callErr error
	)
	err := g.breaker.Execute(func() error {
		out, callErr = g.retried(ctx, in)
		return callErr
	})
	if errors.Is(err, resilience.ErrCircuitOpen) && callErr == nil {
		return out, g.policyError(err)
	}
	return out, callErr
}

func (g *guarded[I, O]) retried(ctx context.Context, in I) (O, error) {
	if g.retry == nil {
		return g.RequestResponse.Execute(ctx, in)
	}
	return resilience.Retry(ctx, *g.retry, func(ctx context.Context, _ int) (O, error) {
		return g.RequestResponse.Execute(ctx, in)
	})
}

// policyError maps resilience sentinels to AppErrors naming the provider.
func (g *guarded[I, O]) policyError(err error) error {
	name := g.Name()
	switch {
	case errors.Is(err, resilience.ErrCircuitOpen):
		return apperrors.ServiceUnavailable(name).WithCause(err)
	case errors.Is(err, resilience.ErrRateLimited):
		return apperrors.RateLimited().WithCause(err)
	case errors.Is(err, resilience.ErrBulkheadFull), errors.Is(err, resilience.ErrBulkheadTimeout):
		return apperrors.ServiceUnavailable(name).WithCause(err).WithDetail("reason", "concurrency limit reached")
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return apperrors.Timeout(name).WithCause(err)
	}
	return err
}
