// Package server is the HTTP host for meeting analysis. It runs a Gin
// engine with HTTP/2 cleartext (h2c) support and follows the component
// pattern for lifecycle management.
//
// # Routes
//
//   - POST /api/ai/analyze: structured analysis of a transcript of at least
//     50 characters, bounded by a bulkhead
//   - POST /api/ai/summarize: a short plain-text summary
//   - /health, /health/live, /health/ready, /info, /version, /metrics
//
// The /api group is rate limited per client IP (100 requests per 15
// minutes by default).
//
// # Middleware
//
// Server-level (server/middleware, standard http.Handler wrappers):
// RequestID, RequestLogger, Recovery, CORS, BodySizeLimit. Gin-level:
// RateLimit and Metrics.
package server
