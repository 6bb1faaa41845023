// Package validation checks request schemas before they reach the services.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"employee-management-system/internal/common"
	"employee-management-system/internal/model"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	// report fields by their JSON names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("employee_status", func(fl validator.FieldLevel) bool {
		return model.EmployeeStatus(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("user_role", func(fl validator.FieldLevel) bool {
		return model.Role(fl.Field().String()).Valid()
	})
	return v
}

// Struct validates s against its `validate` tags. Failures come back as a
// common ValidationError naming the first offending field.
func Struct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return common.Wrap(common.KindValidation, "Invalid input", err)
	}
	return common.Validation(message(verrs[0]))
}

// Email reports whether addr is a well-formed email address.
func Email(addr string) bool {
	return validate.Var(addr, "required,email") == nil
}

func message(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return "Please enter a valid email address"
	case "min":
		if fe.Kind() == reflect.Slice {
			return field + " must contain at least " + fe.Param() + " item(s)"
		}
		return field + " must be at least " + fe.Param() + " characters"
	case "employee_status":
		return fmt.Sprintf("%s must be one of %s", field, statusList())
	case "user_role":
		return field + " must be admin or employee"
	default:
		return field + " is invalid"
	}
}

func statusList() string {
	names := make([]string, len(model.EmployeeStatuses))
	for i, s := range model.EmployeeStatuses {
		names[i] = string(s)
	}
	return strings.Join(names, ", ")
}
