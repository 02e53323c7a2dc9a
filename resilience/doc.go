// Package resilience provides the fault-tolerance primitives used around
// the generative provider and the HTTP host.
//
//   - Retry: sequential attempts with exponential backoff and a per-attempt timeout
//
//   - CircuitBreaker: fails fast while the provider keeps failing
//
//   - RateLimiter: token bucket shared by outbound calls and inbound requests
//
//   - Bulkhead: caps concurrent analyses
//
//     out, err := resilience.Retry(ctx, cfg, func(ctx context.Context, attempt int) (string, error) {
//     return provider.Generate(ctx, req)
//     })
package resilience
