package auth

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/go-playground/validator/v10"
)

// Validator checks forms before anything is sent to the backend. Struct
// fields use `validate` rules plus the custom "password" rule, and a `label`
// tag naming the field in messages.
type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if l := f.Tag.Get("label"); l != "" {
			return l
		}
		return f.Name
	})
	// RegisterValidation only fails for an empty or reserved tag name.
	_ = v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		return ValidatePassword(fl.Field().String())
	})
	return &Validator{validate: v}
}

func (v *Validator) Validate(form any) error {
	return v.validate.Struct(form)
}

// Message turns a validation error into the text shown to the user. Only the
// first failing field is reported.
func Message(err error) string {
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) || len(ves) == 0 {
		return err.Error()
	}
	fe := ves[0]
	switch fe.Tag() {
	case "password":
		return PasswordPolicyMessage
	case "required":
		return fmt.Sprintf("%s is required.", fe.Field())
	case "email":
		return "Please enter a valid email address."
	case "url":
		return fmt.Sprintf("%s must be a valid URL.", fe.Field())
	case "gte":
		return fmt.Sprintf("%s must be at least %s.", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid.", fe.Field())
	}
}
