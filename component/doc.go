// Package component defines lifecycle-managed infrastructure (the Redis
// cache, the HTTP server, the LLM backend) and a Registry that starts them
// in order, stops them in reverse and aggregates their health.
package component
