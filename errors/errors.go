// Package errors provides the structured error type shared by the analysis
// host, the capture controller and the CLI. Errors carry a machine-readable
// code, an HTTP status mapping and retryable detection.
package errors

import (
	"fmt"
	"maps"
	"net/http"
)

// AppError is an error with a stable code and a user-facing message.
// Details and Code reach API clients; Cause stays in the logs.
type AppError struct {
	Code       ErrorCode      `json:"code"`
	Message    string         `json:"message"`
	Retryable  bool           `json:"retryable"`
	HTTPStatus int            `json:"-"`
	Details    map[string]any `json:"details,omitempty"`
	Cause      error          `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause == nil {
		return string(e.Code) + ": " + e.Message
	}
	return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
}

func (e *AppError) Unwrap() error { return e.Cause }

// WithCause attaches the underlying error.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetails merges details into the error.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any, len(details))
	}
	maps.Copy(e.Details, details)
	return e
}

// WithDetail sets one detail.
func (e *AppError) WithDetail(key string, value any) *AppError {
	return e.WithDetails(map[string]any{key: value})
}

// New returns an AppError whose Retryable flag follows code.
func New(code ErrorCode, message string, httpStatus int) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: httpStatus, Retryable: IsRetryableCode(code)}
}

// detailed is New plus alternating key/value details.
func detailed(code ErrorCode, status int, message string, kv ...any) *AppError {
	e := New(code, message, status)
	for i := 0; i+1 < len(kv); i += 2 {
		e.WithDetail(kv[i].(string), kv[i+1])
	}
	return e
}

// Request errors.

// Validation reports a request that failed validation.
func Validation(message string) *AppError {
	return New(ErrCodeInvalidInput, message, http.StatusBadRequest)
}

// InvalidInput reports a bad field value.
func InvalidInput(field, reason string) *AppError {
	e := New(ErrCodeInvalidInput, "Invalid input: "+reason, http.StatusBadRequest)
	if field != "" {
		e.WithDetail("field", field)
	}
	return e
}

// MissingField reports an absent required field.
func MissingField(field string) *AppError {
	return detailed(ErrCodeMissingField, http.StatusBadRequest, "Missing required field: "+field, "field", field)
}

// NotFound reports an unknown resource; id may be empty.
func NotFound(resource, id string) *AppError {
	e := detailed(ErrCodeNotFound, http.StatusNotFound, fmt.Sprintf("The requested %s was not found.", resource), "resource", resource)
	if id != "" {
		e.WithDetail("id", id)
	}
	return e
}

// Availability errors.

// ServiceUnavailable reports a dependency that is down or saturated.
func ServiceUnavailable(service string) *AppError {
	return detailed(ErrCodeServiceUnavailable, http.StatusServiceUnavailable,
		fmt.Sprintf("The %s is temporarily unavailable. Please try again.", service), "service", service)
}

// Timeout reports an operation that ran out of time.
func Timeout(operation string) *AppError {
	return detailed(ErrCodeTimeout, http.StatusGatewayTimeout,
		"The request took too long. Please try again.", "operation", operation)
}

// RateLimited reports a rejected burst.
func RateLimited() *AppError {
	return New(ErrCodeRateLimited, "Too many requests. Please wait a moment and try again.", http.StatusTooManyRequests)
}

// Analysis errors.

// ProviderError reports a generative provider call that failed outright.
func ProviderError(provider string, cause error) *AppError {
	return detailed(ErrCodeProvider, http.StatusBadGateway,
		fmt.Sprintf("The %s provider failed to respond.", provider), "provider", provider).WithCause(cause)
}

// DecodeError reports provider output with no usable JSON.
func DecodeError(cause error) *AppError {
	return New(ErrCodeDecode, "The provider response could not be decoded as JSON.", http.StatusBadGateway).WithCause(cause)
}

// SchemaError lists the result fields that failed validation.
func SchemaError(fields []string) *AppError {
	return detailed(ErrCodeSchema, http.StatusBadGateway,
		fmt.Sprintf("The provider response violated the result schema (%d fields).", len(fields)), "fields", fields)
}

// Capture device errors.

// PermissionDenied reports a refused microphone.
func PermissionDenied(device string) *AppError {
	return detailed(ErrCodePermissionDenied, http.StatusForbidden,
		"Microphone access was denied. Allow access and try again.", "device", device)
}

// DeviceNotFound reports that no microphone is present.
func DeviceNotFound(device string) *AppError {
	return detailed(ErrCodeDeviceNotFound, http.StatusNotFound,
		"No microphone was found. Connect one and try again.", "device", device)
}

// DeviceError reports a microphone that failed mid-stream.
func DeviceError(device string, cause error) *AppError {
	return detailed(ErrCodeDevice, http.StatusInternalServerError,
		"The recording device failed.", "device", device).WithCause(cause)
}

// Internal errors.

// Internal wraps an unexpected failure behind a generic message.
func Internal(cause error) *AppError {
	return New(ErrCodeInternal, "An unexpected error occurred. Please try again or contact support.", http.StatusInternalServerError).WithCause(cause)
}

// ExternalServiceError reports a non-provider dependency failure, such as Redis.
func ExternalServiceError(service string, cause error) *AppError {
	return detailed(ErrCodeExternalService, http.StatusBadGateway,
		fmt.Sprintf("The %s service encountered an error. Please try again.", service), "service", service).WithCause(cause)
}
