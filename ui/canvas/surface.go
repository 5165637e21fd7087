// Package canvas provides the fyne widget that shows one viewer surface
// and turns pointer input into dispatcher events.
package canvas

import (
	"image"
	"image/color"
	"sync"

	"ocr-viewer/internal/app"
	"ocr-viewer/internal/render"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
	"github.com/sirupsen/logrus"
)

// Poster accepts events for the dispatch loop.
type Poster interface {
	Post(e app.Event)
}

// SurfaceCanvas shows the frames of one surface. It implements app.Sink;
// Show may be called from any goroutine.
type SurfaceCanvas struct {
	widget.BaseWidget

	kind   app.SurfaceKind
	events Poster
	keys   *KeyState
	log    logrus.FieldLogger

	rast *render.Rasterizer
	view *surfaceView

	mu       sync.Mutex
	lastSize fyne.Size
}

var _ app.Sink = (*SurfaceCanvas)(nil)

// NewSurfaceCanvas creates the widget for surface kind. keys supplies the
// Ctrl state for wheel zoom.
func NewSurfaceCanvas(kind app.SurfaceKind, events Poster, keys *KeyState, log logrus.FieldLogger) *SurfaceCanvas {
	sc := &SurfaceCanvas{
		kind:   kind,
		events: events,
		keys:   keys,
		log:    log.WithFields(logrus.Fields{"component": "canvas", "surface": kind.String()}),
		rast:   render.NewRasterizer(color.NRGBA{R: 0xec, G: 0xf0, B: 0xf1, A: 0xff}),
	}
	sc.view = newSurfaceView(sc)
	sc.ExtendBaseWidget(sc)
	return sc
}

// Show rasterizes f and displays it.
func (sc *SurfaceCanvas) Show(f render.Frame) {
	img := sc.rast.Rasterize(f)
	sc.view.setFrame(img, f)
}

// Editing reports whether the text overlay has focus.
func (sc *SurfaceCanvas) Editing() bool {
	return sc.view.entry.focused()
}

func (sc *SurfaceCanvas) post(e app.Event) {
	if sc.events != nil {
		sc.events.Post(e)
	}
}

// layoutChanged reports the available space to the dispatcher when it
// changes.
func (sc *SurfaceCanvas) layoutChanged(size fyne.Size) {
	sc.mu.Lock()
	changed := size != sc.lastSize
	sc.lastSize = size
	sc.mu.Unlock()
	if changed && size.Width > 0 && size.Height > 0 {
		sc.post(app.Resize{Surface: sc.kind, W: float64(size.Width), H: float64(size.Height)})
	}
}

// CreateRenderer implements fyne.Widget.
func (sc *SurfaceCanvas) CreateRenderer() fyne.WidgetRenderer {
	return &surfaceCanvasRenderer{canvas: sc}
}

type surfaceCanvasRenderer struct {
	canvas *SurfaceCanvas
}

// Layout centers the view in the available space.
func (r *surfaceCanvasRenderer) Layout(size fyne.Size) {
	v := r.canvas.view
	min := v.MinSize()
	v.Resize(min)
	v.Move(fyne.NewPos((size.Width-min.Width)/2, (size.Height-min.Height)/2))
	r.canvas.layoutChanged(size)
}

func (r *surfaceCanvasRenderer) MinSize() fyne.Size {
	return fyne.NewSize(100, 100)
}

func (r *surfaceCanvasRenderer) Refresh() {
	r.Layout(r.canvas.Size())
	r.canvas.view.Refresh()
}

func (r *surfaceCanvasRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.canvas.view}
}

func (r *surfaceCanvasRenderer) Destroy() {}

// surfaceView is the frame-sized area that receives pointer input. Its
// coordinates are surface screen coordinates.
type surfaceView struct {
	widget.BaseWidget
	owner *SurfaceCanvas

	image *fynecanvas.Image
	entry *editEntry

	mu   sync.Mutex
	size fyne.Size
	edit *render.EditBox
}

func newSurfaceView(owner *SurfaceCanvas) *surfaceView {
	v := &surfaceView{owner: owner}
	v.image = fynecanvas.NewImageFromImage(nil)
	v.image.FillMode = fynecanvas.ImageFillStretch
	v.image.ScaleMode = fynecanvas.ImageScalePixels
	v.entry = newEditEntry(
		func() { owner.post(app.BeginEdit{Surface: owner.kind}) },
		func(text string) { owner.post(app.TextCommit{Surface: owner.kind, Text: text}) },
	)
	v.entry.Hide()
	v.ExtendBaseWidget(v)
	return v
}

func (v *surfaceView) setFrame(img image.Image, f render.Frame) {
	v.mu.Lock()
	v.size = fyne.NewSize(float32(f.Size.Width), float32(f.Size.Height))
	v.edit = f.Edit
	v.mu.Unlock()

	v.image.Image = img
	v.entry.bind(f.Edit)
	v.owner.Refresh()
}

func (v *surfaceView) frameSize() fyne.Size {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.size
}

func (v *surfaceView) editBox() *render.EditBox {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.edit
}

func (v *surfaceView) MinSize() fyne.Size {
	return v.frameSize()
}

// MouseDown starts a gesture.
func (v *surfaceView) MouseDown(ev *desktop.MouseEvent) {
	if ev.Button != desktop.MouseButtonPrimary {
		return
	}
	v.owner.post(app.PointerDown{Surface: v.owner.kind, X: float64(ev.Position.X), Y: float64(ev.Position.Y)})
}

// MouseUp ends a gesture.
func (v *surfaceView) MouseUp(ev *desktop.MouseEvent) {
	v.owner.post(app.PointerUp{Surface: v.owner.kind, X: float64(ev.Position.X), Y: float64(ev.Position.Y)})
}

func (v *surfaceView) MouseIn(*desktop.MouseEvent) {}

// MouseMoved advances the gesture in progress.
func (v *surfaceView) MouseMoved(ev *desktop.MouseEvent) {
	v.owner.post(app.PointerMove{Surface: v.owner.kind, X: float64(ev.Position.X), Y: float64(ev.Position.Y)})
}

// MouseOut ends any gesture, as a release would.
func (v *surfaceView) MouseOut() {
	v.owner.post(app.PointerLeave{Surface: v.owner.kind})
}

// Tapped selects under the pointer. The release is posted first so the
// gesture is closed whatever order the driver delivers events in.
func (v *surfaceView) Tapped(ev *fyne.PointEvent) {
	x, y := float64(ev.Position.X), float64(ev.Position.Y)
	v.owner.post(app.PointerUp{Surface: v.owner.kind, X: x, Y: y})
	v.owner.post(app.Click{Surface: v.owner.kind, X: x, Y: y})
}

// Scrolled zooms around the pointer while Ctrl is held. fyne reports
// wheel-up as positive DY.
func (v *surfaceView) Scrolled(ev *fyne.ScrollEvent) {
	v.owner.post(app.Scroll{
		Surface: v.owner.kind,
		X:       float64(ev.Position.X),
		Y:       float64(ev.Position.Y),
		DeltaY:  -float64(ev.Scrolled.DY),
		Ctrl:    v.owner.keys != nil && v.owner.keys.Ctrl(),
	})
}

func (v *surfaceView) CreateRenderer() fyne.WidgetRenderer {
	return &surfaceViewRenderer{view: v}
}

type surfaceViewRenderer struct {
	view *surfaceView
}

func (r *surfaceViewRenderer) Layout(size fyne.Size) {
	r.view.image.Resize(size)
	r.view.image.Move(fyne.NewPos(0, 0))

	e := r.view.editBox()
	if e == nil {
		return
	}
	entry := r.view.entry
	w := float32(e.Rect.Width())
	if min := entry.MinSize().Width; w < min {
		w = min
	}
	entry.Resize(fyne.NewSize(w, entry.MinSize().Height))
	entry.Move(fyne.NewPos(float32(e.Rect.MinX), float32(e.Rect.MinY)))
}

func (r *surfaceViewRenderer) MinSize() fyne.Size {
	return r.view.frameSize()
}

func (r *surfaceViewRenderer) Refresh() {
	r.Layout(r.view.Size())
	r.view.image.Refresh()
	r.view.entry.Refresh()
}

func (r *surfaceViewRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.view.image, r.view.entry}
}

func (r *surfaceViewRenderer) Destroy() {}
