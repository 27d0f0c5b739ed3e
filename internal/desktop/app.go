// Package desktop binds the forwarder and window sizer to the Wails runtime.
package desktop

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"webview-bridge/internal/model"
	"webview-bridge/internal/service"
	"webview-bridge/internal/window"
)

// App is bound into Wails; its exported methods are the commands the
// front-end can call.
type App struct {
	ctx    context.Context
	proxy  *service.ProxyService
	sizer  *window.Sizer
	logger *slog.Logger

	windowFor func(ctx context.Context) window.Window
	fatal     func(err error)
}

// NewApp creates the App bound to the Wails runtime.
func NewApp(proxy *service.ProxyService, sizer *window.Sizer, logger *slog.Logger) *App {
	a := &App{
		proxy:     proxy,
		sizer:     sizer,
		logger:    logger.With("component", "desktop"),
		windowFor: newWailsWindow,
	}
	a.fatal = a.exit
	return a
}

// StartupHook returns the Wails OnStartup hook for a. The hook keeps the
// runtime context and sizes the main window; a sizing failure aborts the process.
func StartupHook(a *App) func(ctx context.Context) {
	return a.startup
}

func (a *App) startup(ctx context.Context) {
	a.ctx = ctx

	var w window.Window
	if ctx != nil {
		w = a.windowFor(ctx)
	}
	if err := a.sizer.Apply(w); err != nil {
		a.fatal(fmt.Errorf("size main window: %w", err))
	}
}

// HTTPProxy performs an HTTP request on behalf of the front-end, outside the
// webview's cross-origin restrictions. It resolves to the JSON string
// {status, body, headers}; a returned error rejects the JS promise with its message.
func (a *App) HTTPProxy(args model.ProxyRequest) (string, error) {
	ctx := a.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	return a.proxy.Forward(ctx, &args)
}

func (a *App) exit(err error) {
	a.logger.Error("startup failed", "err", err)
	os.Exit(1)
}
