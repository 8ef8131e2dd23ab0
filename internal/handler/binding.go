package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// RequestValidator adapts validator/v10 to echo's Validator interface.
type RequestValidator struct {
	validate *validator.Validate
}

// NewRequestValidator builds the validator installed on the echo instance.
func NewRequestValidator() *RequestValidator {
	return &RequestValidator{validate: validator.New(validator.WithRequiredStructEnabled())}
}

// Validate checks struct tags and reports the first failing field.
func (v *RequestValidator) Validate(i any) error {
	err := v.validate.Struct(i)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return fmt.Errorf("%s failed %s validation", strings.ToLower(fe.Field()), fe.Tag())
	}
	return err
}

// bind decodes the body and runs the installed validator. It writes the 400
// response itself and returns false when the request is unusable.
func bind(c echo.Context, req any) (bool, error) {
	if err := c.Bind(req); err != nil {
		return false, Error(c, http.StatusBadRequest, "invalid payload")
	}
	if c.Echo().Validator != nil {
		if err := c.Validate(req); err != nil {
			return false, Error(c, http.StatusBadRequest, err.Error())
		}
	}
	return true, nil
}

// pathUUID parses a uuid route parameter.
func pathUUID(c echo.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(strings.TrimSpace(c.Param(name)))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

func parseIntDefault(input string, fallback int) int {
	if input == "" {
		return fallback
	}
	if value, err := strconv.Atoi(input); err == nil {
		return value
	}
	return fallback
}
