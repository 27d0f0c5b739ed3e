package middleware

import (
	"net"
	"net/http"

	"github.com/labstack/echo/v4"
)

// SecurityHeaders returns an Echo middleware that marks every response as
// non-sniffable, non-frameable and non-cacheable.
func SecurityHeaders() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Response().Header()
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Cache-Control", "no-store")
			return next(c)
		}
	}
}

// LoopbackOnly returns an Echo middleware that rejects requests whose peer
// address is not a loopback address. The peer is taken from the connection,
// never from forwarding headers.
func LoopbackOnly() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			host, _, err := net.SplitHostPort(c.Request().RemoteAddr)
			if err != nil {
				host = c.Request().RemoteAddr
			}
			if ip := net.ParseIP(host); ip == nil || !ip.IsLoopback() {
				return echo.NewHTTPError(http.StatusForbidden, "bridge accepts loopback clients only")
			}
			return next(c)
		}
	}
}
