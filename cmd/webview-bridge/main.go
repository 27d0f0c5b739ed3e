package main

import (
	"context"
	"embed"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"webview-bridge/internal/client"
	"webview-bridge/internal/config"
	"webview-bridge/internal/desktop"
	"webview-bridge/internal/handler"
	"webview-bridge/internal/metrics"
	"webview-bridge/internal/server"
	"webview-bridge/internal/service"
	"webview-bridge/internal/window"
)

//go:embed all:frontend/dist
var assets embed.FS

// Set by ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	var cli config.CLI
	kong.Parse(&cli,
		kong.Name("webview-bridge"),
		kong.Description("Desktop shell with an HTTP bridge for its web front-end."),
		kong.Vars{"version": fmt.Sprintf("%s (%s, %s)", version, commit, date)},
	)

	var (
		app    *desktop.App
		logger *slog.Logger
	)
	fxApp := fx.New(
		fx.WithLogger(func(l *slog.Logger) fxevent.Logger {
			return &fxevent.SlogLogger{Logger: l.With("component", "fx")}
		}),
		fx.Provide(
			func() *config.CLI { return &cli },
			func() handler.Version { return handler.Version(version) },
			config.Load,
			newLogger,
			metrics.New,
			client.NewClient,
			service.NewProxyService,
			newSizer,
			desktop.NewApp,
			server.New,
			handler.NewBridgeHandler,
			handler.NewHealthHandler,
		),
		fx.Invoke(handler.RegisterRoutes, server.Start),
		fx.Populate(&app, &logger),
	)

	startCtx, cancel := context.WithTimeout(context.Background(), fxApp.StartTimeout())
	defer cancel()
	if err := fxApp.Start(startCtx); err != nil {
		fmt.Fprintln(os.Stderr, "startup failed:", err)
		os.Exit(1)
	}

	// Wails owns the main goroutine until the window closes.
	runErr := wails.Run(&options.App{
		Title:     "webview-bridge",
		Width:     1024,
		Height:    576,
		MinWidth:  800,
		MinHeight: 450,
		AssetServer: &assetserver.Options{
			Assets: assets,
		},
		BackgroundColour: &options.RGBA{R: 24, G: 24, B: 27, A: 1},
		OnStartup:        desktop.StartupHook(app),
		Bind: []interface{}{
			app,
		},
	})

	stopCtx, cancelStop := context.WithTimeout(context.Background(), fxApp.StopTimeout())
	defer cancelStop()
	if err := fxApp.Stop(stopCtx); err != nil {
		logger.Error("shutdown failed", "err", err)
	}

	if runErr != nil {
		logger.Error("application error", "err", runErr)
		os.Exit(1)
	}
}

func newLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(cfg.Log.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}

	var h slog.Handler
	switch strings.ToLower(cfg.Log.Format) {
	case "json":
		h = slog.NewJSONHandler(os.Stderr, opts)
	default:
		h = slog.NewTextHandler(os.Stderr, opts)
	}

	return slog.New(h)
}

func newSizer(cfg *config.Config, logger *slog.Logger) *window.Sizer {
	return window.NewSizer(window.BoundsFromConfig(cfg), logger)
}
