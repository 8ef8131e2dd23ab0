package middleware

import (
	"github.com/labstack/echo/v4"
)

// Context keys used to store caller metadata on the echo context.
const (
	ContextKeyUserID    = "user_id"
	ContextKeyUserEmail = "user_email"
	ContextKeyUserRole  = "user_role"
	ContextKeyRequestID = "request_id"
)

// UserID returns the authenticated user id, empty before JWT has run.
func UserID(c echo.Context) string {
	v, _ := c.Get(ContextKeyUserID).(string)
	return v
}

// UserRole returns the application role of the caller.
func UserRole(c echo.Context) string {
	v, _ := c.Get(ContextKeyUserRole).(string)
	return v
}

// deny writes the API error envelope. The handler package owns the envelope
// type, so it is spelled out here to keep the import graph one-way.
func deny(c echo.Context, status int, message string) error {
	return c.JSON(status, map[string]string{"status": "error", "message": message})
}
