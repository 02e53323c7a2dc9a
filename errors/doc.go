// Package errors provides structured application errors with HTTP status
// mapping and retryable detection.
package errors
