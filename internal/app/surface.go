package app

import (
	"time"

	"ocr-viewer/internal/hittest"
	"ocr-viewer/internal/image"
	"ocr-viewer/internal/interact"
	"ocr-viewer/internal/render"
	"ocr-viewer/internal/viewport"
	"ocr-viewer/pkg/geometry"

	"github.com/sirupsen/logrus"
)

// SurfaceKind names one of the two drawing surfaces.
type SurfaceKind int

const (
	Windowed SurfaceKind = iota
	Fullscreen
)

func (k SurfaceKind) String() string {
	if k == Fullscreen {
		return "fullscreen"
	}
	return "windowed"
}

// Sink receives the frames rendered for a surface.
type Sink interface {
	Show(f render.Frame)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(f render.Frame)

// Show calls f(frame).
func (f SinkFunc) Show(frame render.Frame) { f(frame) }

// Surface is one view of the shared data set with its own zoom, pan,
// selection and gesture state.
type Surface struct {
	Kind    SurfaceKind
	View    *viewport.Viewport
	Machine *interact.Machine
	Style   render.SurfaceStyle
	Padding float64

	container      geometry.Size
	highlight      *geometry.Point
	highlightUntil time.Time

	sink  Sink
	dirty bool
}

func newSurface(kind SurfaceKind, cfg Config, log logrus.FieldLogger) *Surface {
	style := render.WindowedStyle()
	padding := cfg.WindowedPadding
	if kind == Fullscreen {
		style = render.FullscreenStyle()
		padding = cfg.FullscreenPadding
	}
	style.HandleSize = cfg.HandleSize
	style.LabelMinZoom = cfg.LabelMinZoom

	log = log.WithField("surface", kind.String())
	return &Surface{
		Kind:    kind,
		View:    viewport.New(cfg.Viewport),
		Machine: interact.New(hittest.New(cfg.HandleSize), log),
		Style:   style,
		Padding: padding,
		dirty:   true,
	}
}

// SetSink attaches the frame consumer. The next render pass paints it.
func (s *Surface) SetSink(sink Sink) {
	s.sink = sink
	s.dirty = true
}

// Invalidate schedules a repaint.
func (s *Surface) Invalidate() { s.dirty = true }

// Container returns the space last reported for the surface.
func (s *Surface) Container() geometry.Size { return s.container }

// Highlight returns the screen-space highlight center, if one is showing.
// It stays put while the view pans or zooms underneath it.
func (s *Surface) Highlight() (geometry.Point, bool) {
	if s.highlight == nil {
		return geometry.Point{}, false
	}
	return *s.highlight, true
}

// display sizes the canvas for img: fitted into the configured maximum
// when windowed, into the container less the inset when fullscreen. A
// fullscreen surface with no known container shows the image unscaled.
func (s *Surface) display(img *image.Image, cfg Config) {
	size := img.Size()
	canvas := viewport.FitWithin(size, cfg.MaxCanvasWidth, cfg.MaxCanvasHeight)
	if s.Kind == Fullscreen {
		canvas = size
		if s.container.Width > 0 && s.container.Height > 0 {
			canvas = viewport.FitContainer(size, s.container, cfg.FullscreenInset)
		}
	}
	s.View.SetImage(size)
	s.View.SetCanvas(canvas)
	s.dirty = true
}

func (s *Surface) showHighlight(center geometry.Point, until time.Time) {
	s.highlight = &center
	s.highlightUntil = until
	s.dirty = true
}

func (s *Surface) clearHighlight() {
	if s.highlight != nil {
		s.highlight = nil
		s.dirty = true
	}
}

// expire drops the highlight once its time has passed.
func (s *Surface) expire(now time.Time) {
	if s.highlight != nil && !now.Before(s.highlightUntil) {
		s.clearHighlight()
	}
}

// Coordinator owns both surfaces and keeps exactly one of them active
// for input.
type Coordinator struct {
	surfaces [2]*Surface
	active   SurfaceKind
}

// NewCoordinator creates the windowed and fullscreen surfaces with the
// windowed one active.
func NewCoordinator(cfg Config, log logrus.FieldLogger) *Coordinator {
	return &Coordinator{
		surfaces: [2]*Surface{
			newSurface(Windowed, cfg, log),
			newSurface(Fullscreen, cfg, log),
		},
	}
}

// Surface returns the surface of kind k.
func (c *Coordinator) Surface(k SurfaceKind) *Surface {
	if k == Fullscreen {
		return c.surfaces[Fullscreen]
	}
	return c.surfaces[Windowed]
}

// Surfaces returns both surfaces, windowed first.
func (c *Coordinator) Surfaces() []*Surface { return c.surfaces[:] }

// Active returns the surface that receives input.
func (c *Coordinator) Active() *Surface { return c.surfaces[c.active] }

// ActiveKind returns which surface receives input.
func (c *Coordinator) ActiveKind() SurfaceKind { return c.active }

// IsFullscreen reports whether the fullscreen surface is active.
func (c *Coordinator) IsFullscreen() bool { return c.active == Fullscreen }

// Input returns the surface for an input event, or nil when the event
// came from the inactive surface.
func (c *Coordinator) Input(k SurfaceKind) *Surface {
	if k != c.active {
		return nil
	}
	return c.Active()
}

// enterFullscreen activates the fullscreen surface with its viewport and
// gesture state reset.
func (c *Coordinator) enterFullscreen() bool {
	if c.active == Fullscreen {
		return false
	}
	fs := c.surfaces[Fullscreen]
	fs.View.Reset()
	fs.Machine.Reset()
	fs.clearHighlight()
	c.surfaces[Windowed].Machine.PointerUp()
	c.active = Fullscreen
	return true
}

func (c *Coordinator) exitFullscreen() bool {
	if c.active == Windowed {
		return false
	}
	c.surfaces[Fullscreen].Machine.PointerUp()
	c.active = Windowed
	return true
}
