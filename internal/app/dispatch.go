package app

import (
	"context"
	"fmt"
	"time"

	"ocr-viewer/internal/annotation"
	"ocr-viewer/internal/interact"
	"ocr-viewer/internal/render"

	"github.com/sirupsen/logrus"
)

// Dispatcher applies events to the State and the surfaces one at a time
// and renders every surface the event touched exactly once afterwards.
// All state is owned by the goroutine calling Run or Dispatch.
type Dispatcher struct {
	state *State
	coord *Coordinator
	queue chan Event
	log   logrus.FieldLogger

	// TickInterval is how often Run advances timers.
	TickInterval time.Duration

	now func() time.Time
}

// NewDispatcher creates a dispatcher over state.
func NewDispatcher(state *State, log logrus.FieldLogger) *Dispatcher {
	return &Dispatcher{
		state:        state,
		coord:        NewCoordinator(state.Config, log),
		queue:        make(chan Event, 256),
		log:          log.WithField("component", "dispatcher"),
		TickInterval: 100 * time.Millisecond,
		now:          time.Now,
	}
}

// State returns the application state.
func (d *Dispatcher) State() *State { return d.state }

// Coordinator returns the surfaces.
func (d *Dispatcher) Coordinator() *Coordinator { return d.coord }

// Post queues e for Run. It blocks while the queue is full.
func (d *Dispatcher) Post(e Event) {
	d.queue <- e
}

// Run processes queued events until ctx is done. Errors are published as
// EventError.
func (d *Dispatcher) Run(ctx context.Context) error {
	ticker := time.NewTicker(d.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case e := <-d.queue:
			if err := d.Dispatch(e); err != nil {
				d.log.WithError(err).Debug("event rejected")
				d.state.Emit(EventError, err)
			}
		case <-ticker.C:
			d.Dispatch(Tick{})
		}
	}
}

// Dispatch applies e and renders the surfaces it changed.
func (d *Dispatcher) Dispatch(e Event) error {
	err := d.apply(e)
	d.render()
	return err
}

// Frame builds the current frame of surface k without publishing it.
func (d *Dispatcher) Frame(k SurfaceKind) render.Frame {
	return render.Build(d.scene(d.coord.Surface(k)), d.log)
}

func (d *Dispatcher) render() {
	for _, s := range d.coord.Surfaces() {
		if !s.dirty || s.sink == nil {
			continue
		}
		s.dirty = false
		s.sink.Show(render.Build(d.scene(s), d.log))
	}
}

func (d *Dispatcher) scene(s *Surface) render.Scene {
	cur := d.state.CurrentImageIndex()
	sc := render.Scene{
		View:        s.View,
		Annotations: d.state.Annotations(),
		Candidates:  d.state.Candidates(cur),
		Hits:        d.state.Hits(cur),
		Selected:    s.Machine.Selected(),
		Highlight:   s.highlight,
		Style:       s.Style,
	}
	if img, ok := d.state.CurrentImage(); ok {
		sc.Image = img.Image
	}
	return sc
}

func (d *Dispatcher) interactScene(s *Surface) interact.Scene {
	return interact.Scene{
		Annotations: d.state.Annotations(),
		Candidates:  d.state.Candidates(d.state.CurrentImageIndex()),
		View:        s.View,
	}
}

func (d *Dispatcher) apply(e Event) error {
	switch e := e.(type) {
	case Load:
		return d.load(e)

	case PointerDown:
		if s := d.coord.Input(e.Surface); s != nil {
			s.Machine.PointerDown(d.interactScene(s), e.X, e.Y)
		}

	case PointerMove:
		if s := d.coord.Input(e.Surface); s != nil {
			d.pointerMove(s, e)
		}

	case PointerUp:
		if s := d.coord.Input(e.Surface); s != nil {
			s.Machine.PointerUp()
		}

	case PointerLeave:
		if s := d.coord.Input(e.Surface); s != nil {
			s.Machine.PointerUp()
		}

	case Click:
		if s := d.coord.Input(e.Surface); s != nil && s.Machine.Click(d.interactScene(s), e.X, e.Y) {
			s.dirty = true
			d.emitSelection(s)
		}

	case Scroll:
		if s := d.coord.Input(e.Surface); s != nil && e.Ctrl {
			step := s.View.Config().ZoomStep
			if e.DeltaY > 0 {
				step = -step
			}
			if s.View.ZoomAt(e.X, e.Y, step) {
				s.dirty = true
				d.emitZoom()
			}
		}

	case Key:
		if next := MapKey(e, d.coord.IsFullscreen()); next != nil {
			return d.apply(next)
		}

	case FocusSearch:
		d.state.Emit(EventFocusSearch, d.coord.ActiveKind())

	case Search:
		return d.search(e.Term)

	case ClearSearch:
		d.clearSearch()

	case SelectResult:
		return d.jumpTo(e.Index)

	case Navigate:
		d.navigate(e.Delta)

	case ZoomIn:
		d.zoom(func(s *Surface) bool { return s.View.ZoomIn() })

	case ZoomOut:
		d.zoom(func(s *Surface) bool { return s.View.ZoomOut() })

	case ZoomReset:
		d.zoom(func(s *Surface) bool { s.View.Reset(); return true })

	case EnterFullscreen:
		if d.coord.enterFullscreen() {
			d.redisplay(d.coord.Active())
			d.log.Info("entered fullscreen")
			d.state.Emit(EventSurfaceChanged, Fullscreen)
			d.emitZoom()
		}

	case ExitFullscreen:
		if d.coord.exitFullscreen() {
			d.redisplay(d.coord.Active())
			d.log.Info("exited fullscreen")
			d.state.Emit(EventSurfaceChanged, Windowed)
			d.emitZoom()
		}

	case BeginEdit:
		s := d.coord.Surface(e.Surface)
		s.Machine.BeginEdit()

	case TextCommit:
		s := d.coord.Surface(e.Surface)
		h := s.Machine.Editing()
		if s.Machine.CommitText(d.state.Annotations(), e.Text) {
			d.invalidateAll()
			d.state.Emit(EventAnnotationEdited, h)
		}

	case Resize:
		s := d.coord.Surface(e.Surface)
		s.container.Width, s.container.Height = e.W, e.H
		d.redisplay(s)

	case Tick:
		now := d.now()
		for _, s := range d.coord.Surfaces() {
			s.expire(now)
		}

	case Export:
		return d.export(e.Path)

	default:
		return fmt.Errorf("unknown event %T", e)
	}
	return nil
}

func (d *Dispatcher) pointerMove(s *Surface, e PointerMove) {
	if !s.Machine.PointerMove(d.interactScene(s), e.X, e.Y) {
		return
	}
	if s.Machine.Mode() == interact.Panning {
		s.dirty = true
		return
	}
	// Geometry edits are shared with the other surface.
	d.invalidateAll()
	d.state.Emit(EventAnnotationEdited, s.Machine.Selected())
}

func (d *Dispatcher) invalidateAll() {
	for _, s := range d.coord.Surfaces() {
		s.dirty = true
	}
}

func (d *Dispatcher) load(e Load) error {
	if len(e.Images) == 0 && len(e.Files) == 0 {
		return ErrNoFilesSelected
	}
	if len(e.Images) == 0 {
		return ErrNoImages
	}

	// Handles from the previous collection must not resolve into the new one.
	for _, s := range d.coord.Surfaces() {
		s.Machine.Abandon()
	}
	d.state.setFiles(e.Images, e.Files)
	c := d.state.Annotations()
	d.log.WithFields(logrus.Fields{
		"images":      len(e.Images),
		"files":       c.Len(),
		"annotations": c.Count(),
	}).Info("files loaded")

	d.state.Emit(EventFilesLoaded, LoadInfo{Images: len(e.Images), Files: c.Len(), Annotations: c.Count()})
	d.state.Emit(EventSearchChanged, SearchInfo{Summary: d.state.SearchInfo()})
	d.showImage(0)
	return nil
}

// showImage switches to image i on both surfaces, resetting their zoom,
// pan, selection and highlight.
func (d *Dispatcher) showImage(i int) bool {
	if !d.state.setCurrentImage(i) {
		return false
	}
	for _, s := range d.coord.Surfaces() {
		s.View.Reset()
		s.Machine.Reset()
		s.clearHighlight()
		d.redisplay(s)
	}

	img, _ := d.state.CurrentImage()
	d.state.Emit(EventImageChanged, ImageInfo{
		Index:  i,
		Count:  d.state.ImageCount(),
		Name:   img.Name,
		Width:  img.Width,
		Height: img.Height,
		Label:  d.state.NavigationLabel(),
	})
	d.emitZoom()
	return true
}

// redisplay recomputes the canvas size of s for the current image.
func (d *Dispatcher) redisplay(s *Surface) {
	if img, ok := d.state.CurrentImage(); ok {
		s.display(img, d.state.Config)
	}
	s.dirty = true
}

func (d *Dispatcher) navigate(delta int) {
	target := d.state.CurrentImageIndex() + delta
	if target < 0 || target >= d.state.ImageCount() {
		return
	}
	d.showImage(target)
}

func (d *Dispatcher) zoom(op func(s *Surface) bool) {
	s := d.coord.Active()
	if op(s) {
		s.dirty = true
		d.emitZoom()
	}
}

func (d *Dispatcher) search(term string) error {
	c := d.state.Annotations()
	if c.Len() == 0 {
		return ErrNoFilesSelected
	}
	results, err := annotation.Search(c, d.state.ImageNames(), term)
	if err != nil {
		return err
	}

	d.state.setResults(results)
	d.invalidateAll()
	d.log.WithFields(logrus.Fields{
		"term":    annotation.NormalizeTerm(term),
		"results": len(results),
	}).Info("search")
	d.state.Emit(EventSearchChanged, SearchInfo{Results: d.state.Results(), Summary: d.state.SearchInfo()})

	if len(results) > 0 {
		return d.jumpTo(0)
	}
	return nil
}

func (d *Dispatcher) clearSearch() {
	d.state.setResults(nil)
	d.invalidateAll()
	d.state.Emit(EventSearchChanged, SearchInfo{Summary: d.state.SearchInfo()})
}

// jumpTo makes result i current: its image is shown on the active
// surface, which then zooms onto the annotation and marks it with a
// highlight. An annotation with a malformed box only switches the image.
func (d *Dispatcher) jumpTo(i int) error {
	r, err := d.state.result(i)
	if err != nil {
		return err
	}
	d.showImage(r.ImageIndex)

	s := d.coord.Active()
	c := d.state.Annotations()
	if a, ok := c.Get(r.Handle); ok && s.View.FitToBoundingBox(a.BBox, s.Padding) {
		if center, ok := s.View.Center(a.BBox); ok {
			s.showHighlight(s.View.CanvasToScreen(center), d.now().Add(d.state.Config.HighlightDuration))
		}
		s.dirty = true
		d.log.WithFields(logrus.Fields{
			"text": r.Text,
			"zoom": s.View.Percent(),
		}).Info("zoomed to result")
		d.emitZoom()
	}

	details, _ := DetailsFor(c, r.Handle, r.ImageName)
	d.state.Emit(EventResultSelected, ResultInfo{
		Index:    i,
		Position: d.state.ResultPosition(),
		Details:  details,
	})
	return nil
}

func (d *Dispatcher) export(path string) error {
	if err := annotation.Save(path, d.state.Annotations()); err != nil {
		return fmt.Errorf("failed to export annotations: %w", err)
	}
	d.log.WithField("path", path).Info("annotations exported")
	d.state.Emit(EventExported, path)
	return nil
}

func (d *Dispatcher) emitSelection(s *Surface) {
	h := s.Machine.Selected()
	name := ""
	if img, ok := d.state.CurrentImage(); ok {
		name = img.Name
	}
	details, ok := DetailsFor(d.state.Annotations(), h, name)
	if !ok {
		d.state.Emit(EventSelectionChanged, nil)
		return
	}
	d.state.Emit(EventSelectionChanged, details)
}

func (d *Dispatcher) emitZoom() {
	s := d.coord.Active()
	d.state.Emit(EventZoomChanged, ZoomInfo{
		Surface: s.Kind,
		Percent: s.View.Percent(),
		CanIn:   s.View.CanZoomIn(),
		CanOut:  s.View.CanZoomOut(),
	})
}
