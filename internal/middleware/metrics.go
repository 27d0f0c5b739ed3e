package middleware

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"webview-bridge/internal/metrics"
)

// Metrics returns an Echo middleware that records Prometheus metrics for each
// bridge server request.
func Metrics(m *metrics.Metrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			m.Bridge.InFlight.Inc()
			defer m.Bridge.InFlight.Dec()

			start := time.Now()
			err := next(c)

			labels := []string{
				metrics.NormalizeMethod(c.Request().Method),
				strconv.Itoa(responseStatus(c, err)),
				metrics.NormalizePath(c.Request().URL.Path),
			}
			m.Bridge.Requests.WithLabelValues(labels...).Inc()
			m.Bridge.Duration.WithLabelValues(labels...).Observe(time.Since(start).Seconds())

			return err
		}
	}
}
