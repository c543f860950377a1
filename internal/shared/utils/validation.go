package utils

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/civicwatch/civicwatch/internal/shared/errors"
)

var validate *validator.Validate

func init() {
	validate = validator.New()

	// Report errors under the json (or form) field name the client sent.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})
}

// ValidateStruct validates s and returns a validation AppError with one
// message per failing field.
func ValidateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok || len(validationErrors) == 0 {
		return errors.NewValidationError("Validation failed", err.Error())
	}

	fields := make(map[string]string, len(validationErrors))
	for _, fe := range validationErrors {
		if _, seen := fields[fe.Field()]; !seen {
			fields[fe.Field()] = fieldErrorMessage(fe)
		}
	}
	return errors.NewFieldsValidationError(fields)
}

func fieldErrorMessage(fe validator.FieldError) string {
	field := strings.ReplaceAll(fe.Field(), "_", " ")
	param := fe.Param()

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("The %s field is required.", field)
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("The %s may not be greater than %s characters.", field, param)
		}
		return fmt.Sprintf("The %s may not be greater than %s.", field, param)
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("The %s must be at least %s characters.", field, param)
		}
		return fmt.Sprintf("The %s must be at least %s.", field, param)
	case "gt":
		return fmt.Sprintf("The %s must be greater than %s.", field, param)
	case "gte":
		return fmt.Sprintf("The %s must be at least %s.", field, param)
	case "lte":
		return fmt.Sprintf("The %s may not be greater than %s.", field, param)
	case "latitude":
		return fmt.Sprintf("The %s must be a valid latitude.", field)
	case "longitude":
		return fmt.Sprintf("The %s must be a valid longitude.", field)
	case "oneof":
		return fmt.Sprintf("The %s must be one of [%s].", field, param)
	case "dive":
		return fmt.Sprintf("The %s contains an invalid value.", field)
	default:
		return fmt.Sprintf("The %s field is invalid.", field)
	}
}
