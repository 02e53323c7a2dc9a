package errors

// ErrorCode is the machine-readable "error" field of an error response.
type ErrorCode string

const (
	ErrCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
	ErrCodeTimeout            ErrorCode = "TIMEOUT"
	ErrCodeRateLimited        ErrorCode = "RATE_LIMITED"

	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	ErrCodeMissingField ErrorCode = "MISSING_FIELD"
	ErrCodeNotFound     ErrorCode = "NOT_FOUND"

	// Analysis failures. The model may answer differently next time.
	ErrCodeProvider ErrorCode = "PROVIDER_ERROR"
	ErrCodeDecode   ErrorCode = "DECODE_ERROR"
	ErrCodeSchema   ErrorCode = "SCHEMA_ERROR"

	// Capture device failures need the user to act.
	ErrCodePermissionDenied ErrorCode = "PERMISSION_DENIED"
	ErrCodeDeviceNotFound   ErrorCode = "DEVICE_NOT_FOUND"
	ErrCodeDevice           ErrorCode = "DEVICE_ERROR"

	ErrCodeInternal        ErrorCode = "INTERNAL_ERROR"
	ErrCodeExternalService ErrorCode = "EXTERNAL_SERVICE_ERROR"
)

// IsRetryableCode reports whether the same call may succeed if repeated.
func IsRetryableCode(code ErrorCode) bool {
	switch code {
	case ErrCodeServiceUnavailable, ErrCodeTimeout, ErrCodeRateLimited,
		ErrCodeProvider, ErrCodeDecode, ErrCodeSchema,
		ErrCodeExternalService:
		return true
	}
	return false
}
