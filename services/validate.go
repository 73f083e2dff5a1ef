package services

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"citycompass/apperror"

	"github.com/go-playground/validator/v10"
)

// validate checks the `validate` tags of service inputs. Field names in
// messages come from the json tags.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// validateStruct runs the tag checks on s and reports failures as a
// Validation error. Missing fields are listed together.
func validateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &apperror.Error{Kind: apperror.KindUnhandled, Message: "validate input", Err: err}
	}

	var missing []string
	for _, fe := range verrs {
		if fe.Tag() == "required" {
			missing = append(missing, fe.Field())
		}
	}
	if len(missing) > 0 {
		return apperror.Validation("Required fields missing: %s", strings.Join(missing, ", "))
	}
	return apperror.Validation("%s", fieldMessage(verrs[0]))
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "email":
		return "invalid email address"
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}
