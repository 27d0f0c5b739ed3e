package middleware

import (
	"errors"

	"github.com/labstack/echo/v4"
)

// responseStatus resolves the status a request ends with. When a handler
// returns an *echo.HTTPError nothing has been written yet; Echo's error
// handler writes the code later, so it is read from the error.
func responseStatus(c echo.Context, err error) int {
	if err != nil {
		var he *echo.HTTPError
		if errors.As(err, &he) {
			return he.Code
		}
	}
	return c.Response().Status
}
