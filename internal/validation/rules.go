// Package validation provides custom validation rules for the application.
package validation

import (
	"net/url"
	"strings"

	validation "github.com/jellydator/validation"

	apperrors "github.com/mapan1908/notification-service/internal/errors"
)

// WrapValidationError wraps validation errors as domain ErrInvalidInput
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// NotBlank validates that a string is not empty after trimming whitespace.
var NotBlank = validation.By(func(value interface{}) error {
	s, ok := value.(string)
	if !ok {
		return validation.NewError("validation_not_blank_type", "must be a string")
	}
	if s == "" {
		return nil // Let Required handle empty strings
	}
	if strings.TrimSpace(s) == "" {
		return validation.NewError("validation_not_blank", "must not be blank")
	}
	return nil
})

// HTTPURL validates that a string is an absolute http or https URL.
var HTTPURL = validation.By(func(value interface{}) error {
	s, ok := value.(string)
	if !ok {
		return validation.NewError("validation_http_url_type", "must be a string")
	}
	if s == "" {
		return nil // Let Required handle empty strings
	}
	u, err := url.Parse(s)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return validation.NewError("validation_http_url", "must be a valid http(s) URL")
	}
	return nil
})
