package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	authpkg "github.com/octobees/leadgenius/api/internal/auth"
)

// JWT verifies the provider access token and stores the caller on the context.
func JWT(manager *authpkg.JWTManager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			scheme, token, found := strings.Cut(c.Request().Header.Get(echo.HeaderAuthorization), " ")
			switch {
			case scheme == "":
				return deny(c, http.StatusUnauthorized, "missing authorization header")
			case !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "":
				return deny(c, http.StatusUnauthorized, "invalid authorization header")
			}

			claims, err := manager.ParseToken(strings.TrimSpace(token))
			if errors.Is(err, authpkg.ErrTokenExpired) {
				c.Response().Header().Set(echo.HeaderWWWAuthenticate, `Bearer error="invalid_token", error_description="token expired"`)
				return deny(c, http.StatusUnauthorized, "token expired")
			}
			if err != nil {
				return deny(c, http.StatusUnauthorized, "invalid token")
			}

			c.Set(ContextKeyUserID, claims.Subject)
			c.Set(ContextKeyUserEmail, claims.Email)
			c.Set(ContextKeyUserRole, claims.AppRole())

			return next(c)
		}
	}
}
