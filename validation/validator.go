package validation

import (
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/kbukum/meetingmind/errors"
)

// FieldError is one violation, addressed by JSON path.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func fieldsError(fields []FieldError) *errors.AppError {
	msgs := make([]string, len(fields))
	for i, f := range fields {
		msgs[i] = f.Field + ": " + f.Message
	}
	return errors.Validation(strings.Join(msgs, "; ")).WithDetail("fields", fields)
}

// Validator accumulates checks that tags cannot express. Methods chain:
//
//	if err := validation.New().
//		Required("transcript", req.Transcript).
//		MinLength("transcript", req.Transcript, 50).
//		Validate(); err != nil {
//		return err
//	}
type Validator struct {
	errs []FieldError
}

func New() *Validator { return &Validator{} }

// AddError records a violation.
func (v *Validator) AddError(field, message string) {
	v.errs = append(v.errs, FieldError{Field: field, Message: message})
}

func (v *Validator) HasErrors() bool      { return len(v.errs) > 0 }
func (v *Validator) Errors() []FieldError { return v.errs }

// Validate returns nil, or an INVALID_INPUT error listing every violation.
func (v *Validator) Validate() *errors.AppError {
	if len(v.errs) == 0 {
		return nil
	}
	return fieldsError(v.errs)
}

// Custom records message unless ok holds.
func (v *Validator) Custom(ok bool, field, message string) *Validator {
	if !ok {
		v.AddError(field, message)
	}
	return v
}

// Required rejects blank strings.
func (v *Validator) Required(field, value string) *Validator {
	return v.Custom(strings.TrimSpace(value) != "", field, "is required")
}

// MinLength counts runes of the trimmed value. Blank values pass; pair it
// with Required.
func (v *Validator) MinLength(field, value string, n int) *Validator {
	value = strings.TrimSpace(value)
	return v.Custom(value == "" || utf8.RuneCountInString(value) >= n, field,
		fmt.Sprintf("must be at least %d characters", n))
}

// MaxLength bounds the byte length.
func (v *Validator) MaxLength(field, value string, n int) *Validator {
	return v.Custom(len(value) <= n, field, fmt.Sprintf("must be %d characters or less", n))
}

func (v *Validator) Range(field string, value, lo, hi int) *Validator {
	return v.Custom(value >= lo && value <= hi, field, fmt.Sprintf("must be between %d and %d", lo, hi))
}

func (v *Validator) Positive(field string, d time.Duration) *Validator {
	return v.Custom(d > 0, field, "must be greater than zero")
}

// OneOf accepts the empty string.
func (v *Validator) OneOf(field, value string, allowed []string) *Validator {
	return v.Custom(value == "" || slices.Contains(allowed, value), field,
		"must be one of: "+strings.Join(allowed, ", "))
}

// Merge folds in the violations carried by err. Other errors become a
// violation with an empty field.
func (v *Validator) Merge(err error) *Validator {
	if err == nil {
		return v
	}
	appErr, ok := errors.AsAppError(err)
	if !ok {
		v.AddError("", err.Error())
		return v
	}
	if fields, ok := appErr.Details["fields"].([]FieldError); ok {
		v.errs = append(v.errs, fields...)
		return v
	}
	v.AddError("", appErr.Message)
	return v
}
