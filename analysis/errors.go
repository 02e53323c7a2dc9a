package analysis

import (
	"fmt"
	"strings"

	apperrors "github.com/kbukum/meetingmind/errors"
)

// ErrorKind classifies why an analysis attempt failed.
type ErrorKind string

// Error kinds.
const (
	KindDecode   ErrorKind = "decode_error"
	KindSchema   ErrorKind = "schema_error"
	KindProvider ErrorKind = "provider_error"
)

// Error is the failure of an analysis. Fields is set only for KindSchema.
// Attempts is the number of provider calls made before giving up.
type Error struct {
	Kind     ErrorKind
	Fields   []string
	Attempts int
	Err      error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("analysis: ")
	b.WriteString(string(e.Kind))
	if len(e.Fields) > 0 {
		fmt.Fprintf(&b, " [%s]", strings.Join(e.Fields, ", "))
	}
	if e.Attempts > 0 {
		fmt.Fprintf(&b, " after %d attempt(s)", e.Attempts)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// AppError maps the failure onto the shared error taxonomy.
func (e *Error) AppError() *apperrors.AppError {
	var appErr *apperrors.AppError
	switch e.Kind {
	case KindSchema:
		appErr = apperrors.SchemaError(e.Fields)
	case KindDecode:
		appErr = apperrors.DecodeError(e.Err)
	default:
		appErr = apperrors.ProviderError("llm", e.Err)
	}
	if e.Attempts > 0 {
		appErr = appErr.WithDetail("attempts", e.Attempts)
	}
	return appErr
}
