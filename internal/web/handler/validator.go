package handler

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// XValidator validates request bodies with struct tags.
type XValidator struct {
	validate *validator.Validate
}

// Validator is the validator shared by the API handlers.
var Validator = NewValidator() //nolint:gochecknoglobals

// NewValidator returns a validator reporting fields by their json names.
func NewValidator() *XValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0] //nolint:mnd
		if name == "-" || name == "" {
			return f.Name
		}

		return name
	})

	return &XValidator{validate: v}
}

// Validate returns the first failed field as a readable error.
func (x *XValidator) Validate(data interface{}) error {
	err := x.validate.Struct(data)
	if err == nil {
		return nil
	}

	var errs validator.ValidationErrors
	if !errors.As(err, &errs) || len(errs) == 0 {
		return err
	}

	fe := errs[0]
	switch fe.Tag() {
	case "required", "required_without":
		return errors.New(fe.Field() + " is required")
	case "oneof":
		return errors.New(fe.Field() + " must be one of " + fe.Param())
	default:
		return errors.New(fe.Field() + " is invalid")
	}
}
