// Package middleware provides Echo middleware for the bridge server.
package middleware

import (
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"
)

// RequestLogger returns an Echo middleware that logs each bridge request with
// slog. Server errors are logged at warn level, everything else at info.
func RequestLogger(logger *slog.Logger) echo.MiddlewareFunc {
	logger = logger.With("component", "bridge_server")
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			status := responseStatus(c, err)
			level := slog.LevelInfo
			if status >= 500 {
				level = slog.LevelWarn
			}

			req := c.Request()
			logger.Log(req.Context(), level, "request",
				"method", req.Method,
				"path", req.URL.Path,
				"status", status,
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", c.Response().Header().Get(echo.HeaderXRequestID),
				"origin", req.Header.Get(echo.HeaderOrigin),
				"bytes_out", c.Response().Size,
			)

			return err
		}
	}
}
