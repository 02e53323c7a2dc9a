package errors

import (
	stderrors "errors"
	"net/http"
)

// ErrorResponse is the envelope every failed API call returns:
//
//	{"error": {"code": "INVALID_INPUT", "message": "...", "retryable": false}}
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody is the client-visible part of an AppError. Cause never leaves
// the process.
type ErrorBody struct {
	Code      ErrorCode      `json:"code"`
	Message   string         `json:"message"`
	Retryable bool           `json:"retryable"`
	Details   map[string]any `json:"details,omitempty"`
}

// ToResponse builds the envelope for e.
func (e *AppError) ToResponse() ErrorResponse {
	return ErrorResponse{Error: ErrorBody{
		Code:      e.Code,
		Message:   e.Message,
		Retryable: e.Retryable,
		Details:   e.Details,
	}}
}

// AsAppError finds an *AppError in err's chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	ok := stderrors.As(err, &appErr)
	return appErr, ok
}

// From converts any error into an AppError. AppErrors pass through,
// oversized request bodies map to 413 and anything else becomes Internal.
func From(err error) *AppError {
	if appErr, ok := AsAppError(err); ok {
		return appErr
	}
	var tooLarge *http.MaxBytesError
	if stderrors.As(err, &tooLarge) {
		return New(ErrCodeInvalidInput, "Request body too large", http.StatusRequestEntityTooLarge).
			WithDetail("limit", tooLarge.Limit).
			WithCause(err)
	}
	return Internal(err)
}
