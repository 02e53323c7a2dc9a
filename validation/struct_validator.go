package validation

import (
	stderrors "errors"
	"reflect"
	"strings"
	"sync"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"

	"github.com/kbukum/meetingmind/errors"
)

// engine is shared; validator.Validate caches struct metadata.
var engine = sync.OnceValue(func() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("notblank", validators.NotBlank)
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return snake(f.Name)
		}
		return name
	})
	return v
})

// Validate checks s against its `validate` tags. Failures come back as one
// INVALID_INPUT AppError whose "fields" detail holds a FieldError per
// violation, keyed by JSON path such as "topics[1].relevance".
func Validate(s any) error {
	err := engine().Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !stderrors.As(err, &verrs) {
		return errors.Validation("validation failed").WithCause(err)
	}
	fields := make([]FieldError, len(verrs))
	for i, fe := range verrs {
		fields[i] = FieldError{Field: jsonPath(fe), Message: describe(fe)}
	}
	return fieldsError(fields)
}

// FieldsOf returns the paths recorded by Validate or Validator.Validate.
func FieldsOf(err error) []string {
	appErr, ok := errors.AsAppError(err)
	if !ok {
		return nil
	}
	fields, _ := appErr.Details["fields"].([]FieldError)
	if len(fields) == 0 {
		return nil
	}
	paths := make([]string, len(fields))
	for i, f := range fields {
		paths[i] = f.Field
	}
	return paths
}

func jsonPath(fe validator.FieldError) string {
	if _, rest, ok := strings.Cut(fe.Namespace(), "."); ok {
		return rest
	}
	return snake(fe.Field())
}

func describe(fe validator.FieldError) string {
	p := fe.Param()
	switch fe.Tag() {
	case "required":
		return "is required"
	case "notblank":
		return "must not be blank"
	case "min":
		if k := fe.Kind(); k == reflect.Slice || k == reflect.Array || k == reflect.Map {
			return "must have at least " + p + " items"
		}
		return "must be at least " + p + " characters"
	case "max":
		return "must be at most " + p + " characters"
	case "gt":
		return "must be greater than " + p
	case "gte":
		return "must be greater than or equal to " + p
	case "lte":
		return "must be less than or equal to " + p
	case "oneof":
		return "must be one of: " + p
	case "datetime":
		return "must be a date in the form " + p
	case "url":
		return "must be a valid URL"
	}
	return "is invalid"
}

func snake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}
