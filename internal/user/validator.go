package user

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// fieldRules maps each accepted payload field to its validator tag.
var fieldRules = map[string]string{
	FieldFirstname: "required,min=1,max=100",
	FieldLastname:  "required,min=1,max=100",
	FieldEmail:     "required,email",
	FieldPassword:  "required",
}

// Validator checks create and update payloads.
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a Validator.
func NewValidator() *Validator {
	return &Validator{validate: validator.New()}
}

// Validate checks the known fields of record. With strict set every
// known field must be present; otherwise only the fields present are
// checked. Unknown fields are ignored. The result is nil or a
// *ValidationError.
func (v *Validator) Validate(record map[string]any, strict bool) error {
	fields := make(map[string]string)

	for name, tag := range fieldRules {
		raw, ok := record[name]
		if !ok {
			if strict {
				fields[name] = "This field is required"
			}
			continue
		}

		value, ok := raw.(string)
		if !ok {
			fields[name] = "Must be a string"
			continue
		}

		if err := v.validate.Var(value, tag); err != nil {
			fields[name] = message(err)
		}
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// message renders the first failed rule of err.
func message(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err.Error()
	}

	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return "Must not be empty"
	case "min":
		return fmt.Sprintf("Must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("Must be at most %s characters", fe.Param())
	case "email":
		return "Must be a valid email address"
	default:
		return fmt.Sprintf("Failed %s validation", fe.Tag())
	}
}
