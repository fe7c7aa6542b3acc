package dto

import (
	"github.com/fadilmartias/skillwise/internal/skill"
	"github.com/go-playground/validator/v10"
)

// IsKnownRole reports whether role is a predefined role or the custom role
// option.
func IsKnownRole(role string) bool {
	return role == OtherRole || skill.IsPredefined(role)
}

// NewValidator returns a validator with the request rules of this package
// registered. The "role" tag accepts only IsKnownRole values.
func NewValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("role", func(fl validator.FieldLevel) bool {
		return IsKnownRole(fl.Field().String())
	})
	return v
}
