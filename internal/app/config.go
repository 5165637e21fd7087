package app

import (
	"errors"
	"fmt"
	"time"

	"ocr-viewer/internal/viewport"
)

// Config holds the viewer settings shared by both surfaces.
type Config struct {
	Viewport viewport.Config `json:"viewport"`

	HandleSize        float64       `json:"handle_size"`
	WindowedPadding   float64       `json:"windowed_padding"`
	FullscreenPadding float64       `json:"fullscreen_padding"`
	MaxCanvasWidth    float64       `json:"max_canvas_width"`
	MaxCanvasHeight   float64       `json:"max_canvas_height"`
	FullscreenInset   float64       `json:"fullscreen_inset"`
	LabelMinZoom      float64       `json:"label_min_zoom"`
	HighlightDuration time.Duration `json:"highlight_duration"`
}

// DefaultConfig returns the stock viewer settings.
func DefaultConfig() Config {
	return Config{
		Viewport:          viewport.DefaultConfig(),
		HandleSize:        8,
		WindowedPadding:   100,
		FullscreenPadding: 150,
		MaxCanvasWidth:    800,
		MaxCanvasHeight:   600,
		FullscreenInset:   40,
		LabelMinZoom:      0.3,
		HighlightDuration: 2 * time.Second,
	}
}

// Validate checks the configuration for consistency.
func (c Config) Validate() error {
	if err := c.Viewport.Validate(); err != nil {
		return fmt.Errorf("viewport: %w", err)
	}
	if c.HandleSize <= 0 {
		return errors.New("handle_size must be positive")
	}
	if c.WindowedPadding < 0 || c.FullscreenPadding < 0 || c.FullscreenInset < 0 {
		return errors.New("padding and inset must not be negative")
	}
	if c.MaxCanvasWidth <= 0 || c.MaxCanvasHeight <= 0 {
		return fmt.Errorf("max canvas size %gx%g must be positive", c.MaxCanvasWidth, c.MaxCanvasHeight)
	}
	if c.HighlightDuration < 0 {
		return errors.New("highlight_duration must not be negative")
	}
	return nil
}
