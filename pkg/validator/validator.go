package validator

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"anoa.com/unibot/pkg/apperror"
	"github.com/go-playground/validator/v10"
)

var (
	instance *validator.Validate
	once     sync.Once
)

func get() *validator.Validate {
	once.Do(func() {
		instance = validator.New(validator.WithRequiredStructEnabled())
	})
	return instance
}

// Struct validates s against its `validate` tags and returns a validation_error AppError
// describing every failed field.
func Struct(s interface{}) error {
	if err := get().Struct(s); err != nil {
		return apperror.Validation(FormatValidationError(err))
	}
	return nil
}

func FormatValidationError(err error) string {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		var messages []string
		for _, fieldError := range validationErrors {
			message := getFieldErrorMessage(fieldError)
			messages = append(messages, message)
		}
		return strings.Join(messages, "; ")
	}
	return err.Error()
}

func getFieldErrorMessage(fe validator.FieldError) string {
	field := getFieldName(fe.Field())

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		if fe.Kind().String() == "string" {
			return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		if fe.Kind().String() == "string" {
			return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

func getFieldName(field string) string {
	fieldNames := map[string]string{
		"UserID":      "external_id",
		"AdminID":     "admin_external_id",
		"BroadcastID": "broadcast_id",
		"RequestID":   "request_id",
		"Type":        "type",
		"Text":        "text",
		"Phone":       "phone",
		"Kind":        "kind",
		"URL":         "url",
		"Group":       "group",
		"Name":        "name",
		"Query":       "query",
	}

	if name, ok := fieldNames[field]; ok {
		return name
	}
	return field
}
