package api

import "github.com/go-playground/validator/v10"

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks a decoded request struct against its `validate` tags.
// Request bodies are typed and validated at the boundary; handlers never see
// partially-defined input.
func Validate(v any) error {
	return validate.Struct(v)
}
