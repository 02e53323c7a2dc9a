// Package httpclient is the outbound HTTP layer used by the LLM dialects.
// It applies auth, default headers, and optional retry, circuit breaking
// and rate limiting, and classifies failures into typed errors.
package httpclient
