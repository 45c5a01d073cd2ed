// Package validation checks console forms before any request is sent.
// Failures are reported as *ValidationError so callers can show the message
// inline and skip the network call.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var monthYearPattern = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

var (
	Validator = newValidator()
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Field names in messages come from the label tag, then json, then the Go name.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if label := f.Tag.Get("label"); label != "" {
			return label
		}
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})

	_ = v.RegisterValidation("monthyear", func(fl validator.FieldLevel) bool {
		return monthYearPattern.MatchString(fl.Field().String())
	})

	return v
}

// ValidationError is a client-side form error. Field may be empty for
// errors that are not tied to a single input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// New returns a ValidationError for field with the given message.
func New(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// IsMonthYear reports whether s has the YYYY-MM form.
func IsMonthYear(s string) bool {
	return monthYearPattern.MatchString(s)
}

// ValidateStruct validates s and returns the first failure as *ValidationError.
func ValidateStruct(s any) error {
	err := Validator.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}

	fe := verrs[0]
	return &ValidationError{Field: fe.Field(), Message: message(fe)}
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_if":
		return fmt.Sprintf("%s required", fe.Field())
	case "eqfield":
		return fmt.Sprintf("%s does not match", fe.Field())
	case "email":
		return "Enter a valid email address"
	case "monthyear":
		return fmt.Sprintf("%s must be in YYYY-MM format", fe.Field())
	case "gte", "min":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
	case "numeric":
		return fmt.Sprintf("%s must be a number", fe.Field())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}
