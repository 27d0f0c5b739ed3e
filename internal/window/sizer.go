package window

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync/atomic"
)

// ErrNoWindow is returned when there is no main window to size.
var ErrNoWindow = errors.New("main window not available")

// Window is the part of the GUI runtime the sizer drives.
type Window interface {
	// CurrentScreen reports the monitor the window is on. ok is false when
	// the runtime does not know it.
	CurrentScreen() (s Screen, ok bool, err error)
	// SetSize resizes the window, in logical pixels.
	SetSize(width, height int)
	Center()
}

// Sizer applies the startup geometry once.
type Sizer struct {
	bounds  Bounds
	logger  *slog.Logger
	applied atomic.Pointer[Geometry]
}

// NewSizer creates a Sizer for the given bounds.
func NewSizer(b Bounds, logger *slog.Logger) *Sizer {
	return &Sizer{
		bounds: b,
		logger: logger.With("component", "window_sizer"),
	}
}

// Apply sizes and centers w on its current screen. When no screen is reported
// the window keeps its default size and Apply returns nil.
func (s *Sizer) Apply(w Window) error {
	if w == nil {
		return ErrNoWindow
	}

	screen, ok, err := w.CurrentScreen()
	if err != nil {
		return fmt.Errorf("query current screen: %w", err)
	}
	if !ok {
		s.logger.Info("no current screen reported; keeping default window size")
		return nil
	}

	g := Fit(screen, s.bounds)
	w.SetSize(int(math.Round(g.Width)), int(math.Round(g.Height)))
	w.Center()

	s.applied.Store(&g)
	s.logger.Info("window sized",
		"screen_width_px", screen.WidthPx,
		"scale_factor", screen.ScaleFactor,
		"width", g.Width,
		"height", g.Height,
	)
	return nil
}

// Applied returns the geometry set by Apply, or nil if none was set.
func (s *Sizer) Applied() *Geometry {
	return s.applied.Load()
}
