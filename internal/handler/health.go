package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"webview-bridge/internal/window"
)

// Version is a string type for dependency injection of the build version.
type Version string

// HealthHandler serves health and status endpoints.
type HealthHandler struct {
	sizer   *window.Sizer
	version Version
}

// NewHealthHandler creates a HealthHandler.
func NewHealthHandler(sizer *window.Sizer, v Version) *HealthHandler {
	return &HealthHandler{sizer: sizer, version: v}
}

// Healthz returns a simple OK response for liveness probes.
func (h *HealthHandler) Healthz(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}

type statusResponse struct {
	Status  string           `json:"status"`
	Version string           `json:"version"`
	Window  *window.Geometry `json:"window"`
}

// Status reports the build version and the geometry the window was given
// at startup (null if sizing was skipped or has not run).
func (h *HealthHandler) Status(c echo.Context) error {
	return c.JSON(http.StatusOK, statusResponse{
		Status:  "ok",
		Version: string(h.version),
		Window:  h.sizer.Applied(),
	})
}
