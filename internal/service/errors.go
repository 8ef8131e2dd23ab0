package service

import (
	"errors"
	"fmt"
)

// ErrCompanyRequired is returned when a contact cannot be tied to a persisted company.
var ErrCompanyRequired = errors.New("contact requires an existing company")

// ValidationError reports an invalid field in a request.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, message string) error {
	return ValidationError{Field: field, Message: message}
}
