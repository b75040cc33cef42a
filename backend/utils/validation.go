package utils

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/ellavondegurechaff/holopack/internal/domain"
	"github.com/ellavondegurechaff/holopack/internal/domain/accounts"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "query"} {
			name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return f.Name
	})
	_ = v.RegisterValidation("accountid", func(fl validator.FieldLevel) bool {
		return accounts.ValidateID(fl.Field().String()) == nil
	})
	return v
}

// ValidationError carries per-field messages. It matches domain.ErrValidation.
type ValidationError struct {
	Details map[string]string
}

func (e *ValidationError) Error() string {
	return "validation failed"
}

func (e *ValidationError) Is(target error) bool {
	return target == domain.ErrValidation
}

// Validate returns a *ValidationError when v fails its validate tags.
func Validate(v any) error {
	if details := ValidateStruct(v); details != nil {
		return &ValidationError{Details: details}
	}
	return nil
}

// ValidateStruct runs the validate tags and returns field -> message, or nil
// when the value is valid.
func ValidateStruct(v any) map[string]string {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return map[string]string{"request": err.Error()}
	}

	details := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		details[fieldPath(fe)] = describe(fe)
	}
	return details
}

// fieldPath drops the struct name prefix: CollectRequest.cards[0].id -> cards[0].id
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	case "accountid":
		return "must be 1-64 letters, digits, '-' or '_'"
	default:
		return fmt.Sprintf("failed on '%s'", fe.Tag())
	}
}
