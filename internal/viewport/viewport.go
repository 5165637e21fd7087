// Package viewport manages zoom and pan for one drawing surface and maps
// points between screen, canvas and image space.
//
// Image space is the pixel grid of the source raster. Canvas space is the
// image scaled to its displayed size, before zoom and pan. Screen space is
// canvas space after zoom and pan: screen = canvas*zoom + pan.
package viewport

import (
	"errors"
	"fmt"
	"math"

	"ocr-viewer/pkg/geometry"
)

// Config holds the zoom limits and step.
type Config struct {
	MinZoom  float64 `json:"min_zoom"`
	MaxZoom  float64 `json:"max_zoom"`
	ZoomStep float64 `json:"zoom_step"`
}

// DefaultConfig returns the stock zoom limits.
func DefaultConfig() Config {
	return Config{
		MinZoom:  0.1,
		MaxZoom:  10,
		ZoomStep: 0.1,
	}
}

// Validate checks the configuration for consistency.
func (c Config) Validate() error {
	if c.MinZoom <= 0 {
		return errors.New("min_zoom must be positive")
	}
	if c.MaxZoom < c.MinZoom {
		return fmt.Errorf("max_zoom (%g) must be >= min_zoom (%g)", c.MaxZoom, c.MinZoom)
	}
	if c.ZoomStep <= 0 {
		return errors.New("zoom_step must be positive")
	}
	return nil
}

// Viewport is the zoom/pan state of one surface.
// zoom stays within [MinZoom, MaxZoom] at all times.
type Viewport struct {
	cfg Config

	zoom float64
	panX float64
	panY float64

	canvas geometry.Size
	image  geometry.Size
}

// New creates a viewport at zoom 1 with no pan.
func New(cfg Config) *Viewport {
	return &Viewport{cfg: cfg, zoom: 1}
}

// Config returns the zoom limits.
func (v *Viewport) Config() Config { return v.cfg }

// Zoom returns the current zoom factor.
func (v *Viewport) Zoom() float64 { return v.zoom }

// Pan returns the current pan offset in screen pixels.
func (v *Viewport) Pan() (x, y float64) { return v.panX, v.panY }

// Canvas returns the displayed canvas size.
func (v *Viewport) Canvas() geometry.Size { return v.canvas }

// Image returns the natural image size.
func (v *Viewport) Image() geometry.Size { return v.image }

// SetCanvas sets the displayed canvas size.
func (v *Viewport) SetCanvas(size geometry.Size) { v.canvas = size }

// SetImage sets the natural image size.
func (v *Viewport) SetImage(size geometry.Size) { v.image = size }

// DisplayScale returns the canvas-per-image scale on each axis.
func (v *Viewport) DisplayScale() (sx, sy float64) {
	sx, sy = 1, 1
	if v.image.Width > 0 {
		sx = v.canvas.Width / v.image.Width
	}
	if v.image.Height > 0 {
		sy = v.canvas.Height / v.image.Height
	}
	return sx, sy
}

// Transform returns the canvas-to-screen transform.
func (v *Viewport) Transform() geometry.AffineTransform {
	return geometry.Translation(v.panX, v.panY).Compose(geometry.Scale(v.zoom, v.zoom))
}

// ImageTransform returns the image-to-screen transform.
func (v *Viewport) ImageTransform() geometry.AffineTransform {
	sx, sy := v.DisplayScale()
	return v.Transform().Compose(geometry.Scale(sx, sy))
}

// ScreenToCanvas undoes pan and zoom.
func (v *Viewport) ScreenToCanvas(sx, sy float64) geometry.Point {
	return geometry.Point{
		X: (sx - v.panX) / v.zoom,
		Y: (sy - v.panY) / v.zoom,
	}
}

// ScreenToImage undoes pan and zoom, then the display scale.
func (v *Viewport) ScreenToImage(sx, sy float64) geometry.Point {
	c := v.ScreenToCanvas(sx, sy)
	scaleX, scaleY := v.DisplayScale()
	return geometry.Point{X: c.X / scaleX, Y: c.Y / scaleY}
}

// ImageToCanvas applies the display scale.
func (v *Viewport) ImageToCanvas(p geometry.Point) geometry.Point {
	sx, sy := v.DisplayScale()
	return p.ScaleXY(sx, sy)
}

// CanvasToScreen applies zoom and pan.
func (v *Viewport) CanvasToScreen(p geometry.Point) geometry.Point {
	return v.Transform().Apply(p)
}

// ImageToScreen maps an image point all the way to the screen.
func (v *Viewport) ImageToScreen(p geometry.Point) geometry.Point {
	return v.CanvasToScreen(v.ImageToCanvas(p))
}

func (v *Viewport) clamp(z float64) float64 {
	return math.Max(v.cfg.MinZoom, math.Min(v.cfg.MaxZoom, z))
}

// ZoomAt changes zoom by delta, keeping the screen point (fx, fy) over the
// same canvas point. It reports whether the zoom changed.
func (v *Viewport) ZoomAt(fx, fy, delta float64) bool {
	old := v.zoom
	v.zoom = v.clamp(v.zoom + delta)
	if v.zoom == old {
		return false
	}
	ratio := v.zoom / old
	v.panX = fx - (fx-v.panX)*ratio
	v.panY = fy - (fy-v.panY)*ratio
	return true
}

// ZoomIn zooms one step toward the canvas center.
func (v *Viewport) ZoomIn() bool {
	return v.ZoomAt(v.canvas.Width/2, v.canvas.Height/2, v.cfg.ZoomStep)
}

// ZoomOut zooms one step away from the canvas center.
func (v *Viewport) ZoomOut() bool {
	return v.ZoomAt(v.canvas.Width/2, v.canvas.Height/2, -v.cfg.ZoomStep)
}

// CanZoomIn reports whether zoom is below the maximum.
func (v *Viewport) CanZoomIn() bool { return v.zoom < v.cfg.MaxZoom }

// CanZoomOut reports whether zoom is above the minimum.
func (v *Viewport) CanZoomOut() bool { return v.zoom > v.cfg.MinZoom }

// Reset returns to zoom 1 with no pan.
func (v *Viewport) Reset() {
	v.zoom = 1
	v.panX, v.panY = 0, 0
}

// PanBy shifts the pan offset by a screen-space delta.
func (v *Viewport) PanBy(dx, dy float64) {
	v.panX += dx
	v.panY += dy
}

// Percent formats the zoom as a whole percentage.
func (v *Viewport) Percent() string {
	return fmt.Sprintf("%d%%", int(math.Round(v.zoom*100)))
}

// FitToBoundingBox zooms so that bbox fills the canvas less padding and
// centers it. A zero-width or zero-height box zooms to the maximum.
// Malformed boxes leave the viewport unchanged and return false.
func (v *Viewport) FitToBoundingBox(bbox geometry.Polygon, padding float64) bool {
	if !bbox.IsQuad() {
		return false
	}
	r := geometry.ToRect(bbox)
	sx, sy := v.DisplayScale()
	canvasBox := r.Scale(sx, sy)
	center := canvasBox.Center()

	target := v.cfg.MaxZoom
	if w, h := canvasBox.Width(), canvasBox.Height(); w > 0 && h > 0 {
		target = math.Min(math.Min((v.canvas.Width-padding)/w, (v.canvas.Height-padding)/h), v.cfg.MaxZoom)
	}

	v.zoom = v.clamp(target)
	v.panX = v.canvas.Width/2 - center.X*v.zoom
	v.panY = v.canvas.Height/2 - center.Y*v.zoom
	return true
}

// Center returns the canvas-space center of bbox.
func (v *Viewport) Center(bbox geometry.Polygon) (geometry.Point, bool) {
	if !bbox.IsQuad() {
		return geometry.Point{}, false
	}
	return v.ImageToCanvas(geometry.ToRect(bbox).Center()), true
}
