// Package handler serves the bridge server's HTTP endpoints.
package handler

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"webview-bridge/internal/config"
	"webview-bridge/internal/metrics"
)

// RegisterRoutes wires all route handlers onto the Echo instance.
func RegisterRoutes(e *echo.Echo, cfg *config.Config, m *metrics.Metrics, bridge *BridgeHandler, health *HealthHandler) {
	e.GET("/healthz", health.Healthz)
	e.GET("/bridge/status", health.Status)
	e.POST("/bridge/http_proxy", bridge.HTTPProxy)

	if cfg.Metrics.Enabled {
		e.GET(cfg.Metrics.Path, echo.WrapHandler(promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})))
	}
}
