package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"webview-bridge/internal/model"
	"webview-bridge/internal/service"
)

// BridgeHandler exposes the forwarder over HTTP with the same contract as the
// bound desktop command.
type BridgeHandler struct {
	service *service.ProxyService
	logger  *slog.Logger
}

// NewBridgeHandler creates a BridgeHandler.
func NewBridgeHandler(svc *service.ProxyService, logger *slog.Logger) *BridgeHandler {
	return &BridgeHandler{
		service: svc,
		logger:  logger.With("component", "bridge_handler"),
	}
}

// HTTPProxy binds a ProxyRequest from the JSON body, forwards it, and replies
// with the serialized ProxyResponse.
func (h *BridgeHandler) HTTPProxy(c echo.Context) error {
	var pr model.ProxyRequest
	if err := c.Bind(&pr); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "request body must be a JSON object {url, method, headers?, body?}",
		})
	}

	out, err := h.service.Forward(c.Request().Context(), &pr)
	if err != nil {
		return h.mapError(c, err)
	}

	return c.Blob(http.StatusOK, echo.MIMEApplicationJSON, []byte(out))
}

func (h *BridgeHandler) mapError(c echo.Context, err error) error {
	status := http.StatusBadGateway
	if errors.Is(err, service.ErrUnsupportedMethod) || errors.Is(err, service.ErrHeaderParse) {
		status = http.StatusBadRequest
	}

	h.logger.Warn("forward failed",
		"kind", service.Kind(err),
		"status", status,
		"err", err,
	)

	return c.JSON(status, map[string]string{
		"error": err.Error(),
	})
}
