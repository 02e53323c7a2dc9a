// Package provider wraps backends behind a small generic interface so that
// cross-cutting behavior composes around them.
//
// RequestResponse[I, O] is a provider that takes one input and returns one
// output. Middleware[I, O] wraps one; Chain composes several, outermost
// first:
//
//	wrapped := provider.Chain(
//	    provider.WithLogging[In, Out](log),
//	    provider.WithMetrics[In, Out](rec),
//	    provider.WithTracing[In, Out]("meetingmind"),
//	    provider.WithResilience[In, Out](provider.ResilienceConfig{RateLimiter: &rl}),
//	)(raw)
//
// Adapt bridges a backend with types [BI, BO] to a domain interface [I, O].
//
// ContextStore[C] is a typed key/value persistence interface; MemoryStore is
// the in-process implementation and redis.TypedStore the shared one.
package provider
