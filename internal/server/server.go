// Package server builds the loopback bridge server and ties it to the fx lifecycle.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/fx"
	"golang.org/x/time/rate"

	"webview-bridge/internal/config"
	"webview-bridge/internal/metrics"
	"webview-bridge/internal/middleware"
)

// New returns an Echo instance carrying the bridge middleware stack.
func New(cfg *config.Config, logger *slog.Logger, m *metrics.Metrics) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Server.ReadTimeout = 30 * time.Second
	// Forwarded calls have no deadline of their own, so writes are not bounded either.
	e.Server.WriteTimeout = 0
	e.Server.IdleTimeout = 120 * time.Second
	e.Server.ReadHeaderTimeout = 10 * time.Second

	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger(logger))
	e.Use(middleware.Metrics(m))
	e.Use(middleware.LoopbackOnly())
	e.Use(echomw.BodyLimit(fmt.Sprintf("%dB", cfg.Bridge.BodyMaxBytes)))
	e.Use(middleware.SecurityHeaders())

	if len(cfg.Bridge.AllowedOrigins) > 0 {
		e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
			AllowOrigins: cfg.Bridge.AllowedOrigins,
			AllowMethods: []string{http.MethodGet, http.MethodPost},
			AllowHeaders: []string{echo.HeaderContentType},
		}))
	}

	if cfg.Bridge.RateLimit.Enabled {
		store := echomw.NewRateLimiterMemoryStore(rate.Limit(cfg.Bridge.RateLimit.RequestsPerSecond))
		e.Use(echomw.RateLimiter(store))
		logger.Info("bridge rate limiter enabled", "rps", cfg.Bridge.RateLimit.RequestsPerSecond)
	}

	return e
}

// Start serves e on the configured loopback address for the lifetime of the
// fx application. It does nothing when the bridge is disabled.
func Start(lc fx.Lifecycle, e *echo.Echo, cfg *config.Config, logger *slog.Logger) {
	if !cfg.Bridge.Enabled {
		return
	}

	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			addr := cfg.Bridge.Addr()
			ln, err := net.Listen("tcp", addr)
			if err != nil {
				return fmt.Errorf("bind %s: %w", addr, err)
			}
			logger.Info("starting bridge server", "addr", ln.Addr().String())
			go func() {
				if err := e.Server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("bridge server error", "err", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("shutting down bridge server")
			return e.Shutdown(ctx)
		},
	})
}
