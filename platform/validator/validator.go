// Package validator wraps go-playground struct validation behind a small
// injectable type so handlers do not import the library directly.
// This is part of the platform layer and contains no business logic.
package validator

import "github.com/go-playground/validator/v10"

// Validator validates request DTOs against their `validate` tags.
type Validator struct {
	v *validator.Validate
}

// New creates a validator with the library's default tag set.
func New() *Validator {
	return &Validator{
		v: validator.New(),
	}
}

// Struct validates a struct's tagged fields.
func (val *Validator) Struct(s interface{}) error {
	return val.v.Struct(s)
}
