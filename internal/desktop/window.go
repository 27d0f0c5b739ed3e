package desktop

import (
	"context"

	"github.com/wailsapp/wails/v2/pkg/runtime"

	"webview-bridge/internal/window"
)

// wailsWindow drives the single Wails main window through the runtime context.
type wailsWindow struct {
	ctx context.Context
}

func newWailsWindow(ctx context.Context) window.Window {
	return wailsWindow{ctx: ctx}
}

func (w wailsWindow) CurrentScreen() (window.Screen, bool, error) {
	screens, err := runtime.ScreenGetAll(w.ctx)
	if err != nil {
		return window.Screen{}, false, err
	}
	for _, s := range screens {
		if s.IsCurrent {
			return screenOf(s), true, nil
		}
	}
	return window.Screen{}, false, nil
}

func (w wailsWindow) SetSize(width, height int) {
	runtime.WindowSetSize(w.ctx, width, height)
}

func (w wailsWindow) Center() {
	runtime.WindowCenter(w.ctx)
}

// screenOf converts a Wails screen. Wails reports both the logical and the
// physical size; their ratio is the scale factor.
func screenOf(s runtime.Screen) window.Screen {
	widthPx := s.PhysicalSize.Width
	if widthPx == 0 {
		widthPx = s.Size.Width
	}

	scale := 1.0
	if s.Size.Width > 0 && s.PhysicalSize.Width > 0 {
		scale = float64(s.PhysicalSize.Width) / float64(s.Size.Width)
	}

	return window.Screen{WidthPx: widthPx, ScaleFactor: scale}
}
