package middleware

import (
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"
)

// Logging writes one structured line per HTTP request.
func Logging(logger *slog.Logger) echo.MiddlewareFunc {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			latency := time.Since(start)

			if err != nil {
				c.Error(err)
			}

			attrs := []any{
				slog.String("request_id", RequestIDFromContext(c)),
				slog.String("method", c.Request().Method),
				slog.String("path", c.Request().URL.Path),
				slog.Int("status", c.Response().Status),
				slog.Duration("latency", latency),
			}
			if uid := UserID(c); uid != "" {
				attrs = append(attrs, slog.String("user_id", uid))
			}
			if err != nil {
				attrs = append(attrs, slog.String("error", err.Error()))
				logger.Warn("http request", attrs...)
			} else {
				logger.Info("http request", attrs...)
			}

			return err
		}
	}
}
