// Package validation provides struct-tag validation (go-playground
// validator) and a programmatic collector for ad-hoc checks.
//
// # Struct Tag Validation
//
//	type Topic struct {
//	    Name      string   `json:"name" validate:"required"`
//	    Relevance *float64 `json:"relevance" validate:"required,gte=0,lte=1"`
//	}
//	err := validation.Validate(topic)
//	paths := validation.FieldsOf(err) // ["relevance"]
//
// # Programmatic Validation
//
//	v := validation.New()
//	v.Required("transcript", req.Transcript).MinLength("transcript", req.Transcript, 50)
//	if appErr := v.Validate(); appErr != nil { ... }
package validation
