// Package window computes and applies the startup size of the main window.
package window

import (
	"math"

	"webview-bridge/internal/config"
)

// Bounds constrains the computed window size.
type Bounds struct {
	MinWidth         float64 // logical pixels
	MaxWidthFraction float64 // of the physical screen width
	AspectRatio      float64 // width / height
}

// BoundsFromConfig returns the window bounds carried by cfg.
func BoundsFromConfig(cfg *config.Config) Bounds {
	return Bounds{
		MinWidth:         cfg.Window.MinWidth,
		MaxWidthFraction: cfg.Window.MaxWidthFraction,
		AspectRatio:      cfg.Window.AspectRatio,
	}
}

// Screen describes the monitor a window is on.
type Screen struct {
	WidthPx     int
	ScaleFactor float64
}

// Geometry is a window size in logical pixels.
type Geometry struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Fit returns the window size for screen s: the scale-adjusted fraction of
// the screen width, never below the minimum width, at the fixed aspect ratio.
func Fit(s Screen, b Bounds) Geometry {
	scale := s.ScaleFactor
	if scale <= 0 {
		scale = 1
	}

	maxWidth := float64(s.WidthPx) * b.MaxWidthFraction / scale
	width := math.Max(maxWidth, b.MinWidth)

	return Geometry{
		Width:  width,
		Height: width / b.AspectRatio,
	}
}
