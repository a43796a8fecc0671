// Файл: pkg/customvalidator/validator.go

package customvalidator

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "rep-admin/pkg/errors"
	"rep-admin/pkg/utils"
	"rep-admin/pkg/validation"
)

var urlRegexp = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.\-]*://[^\s/?#]+[^\s]*$`)

var industryTypes = []string{"Mortgage", "Real Estate", "Title Insurance", "Others"}

// RegisterCustomValidations регистрирует наши правила в переданном валидаторе.
func RegisterCustomValidations(v *validator.Validate) error {
	if err := v.RegisterValidation("us_phone", isUSPhone); err != nil {
		return err
	}
	if err := v.RegisterValidation("scheme_url", isSchemeURL); err != nil {
		return err
	}
	if err := v.RegisterValidation("industry_type", isIndustryType); err != nil {
		return err
	}
	return nil
}

// IsValidURL - пустая строка допустима, все поля-ссылки необязательные.
func IsValidURL(raw string) bool {
	raw = strings.TrimSpace(raw)
	return raw == "" || urlRegexp.MatchString(raw)
}

func isSchemeURL(fl validator.FieldLevel) bool {
	return IsValidURL(fl.Field().String())
}

func isUSPhone(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	return value == "" || utils.IsValidPhone(value)
}

func isIndustryType(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	for _, t := range industryTypes {
		if t == value {
			return true
		}
	}
	return false
}

// CustomValidator - обёртка для Echo, которая сразу отдаёт ошибки по полям.
type CustomValidator struct {
	validator *validator.Validate
}

func New() (*CustomValidator, error) {
	v := validator.New()
	v.RegisterTagNameFunc(jsonFieldName)
	validation.RegisterNullTypes(v)
	if err := RegisterCustomValidations(v); err != nil {
		return nil, err
	}
	return &CustomValidator{validator: v}, nil
}

// Validate реализует интерфейс echo.Validator.
func (cv *CustomValidator) Validate(i interface{}) error {
	if fields := cv.FieldErrors(i); len(fields) > 0 {
		return apperrors.NewClientValidationError(fields)
	}
	return nil
}

// FieldErrors проверяет структуру и возвращает ошибки по json-именам полей.
func (cv *CustomValidator) FieldErrors(i interface{}) apperrors.FieldErrors {
	err := cv.validator.Struct(i)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return apperrors.FieldErrors{"non_field_errors": {err.Error()}}
	}

	fields := make(apperrors.FieldErrors, len(validationErrors))
	for _, fe := range validationErrors {
		fields[fe.Field()] = append(fields[fe.Field()], Message(fe))
	}
	return fields
}

// Message переводит ошибку валидатора в текст в стиле бэкенда.
func Message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "scheme_url", "url":
		return "Enter a valid URL."
	case "us_phone":
		return "Enter a valid phone number."
	case "email":
		return "Enter a valid email address."
	case "oneof", "industry_type":
		return "Select a valid choice."
	case "numeric":
		return "Enter a whole number."
	case "gte":
		return fmt.Sprintf("Ensure this value is greater than or equal to %s.", fe.Param())
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Ensure this field has at least %s characters.", fe.Param())
		}
		return fmt.Sprintf("Ensure this value is greater than or equal to %s.", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Ensure this field has no more than %s characters.", fe.Param())
		}
		return fmt.Sprintf("Ensure this value is less than or equal to %s.", fe.Param())
	}
	return "Invalid value."
}

func jsonFieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return fld.Name
	}
	return name
}
