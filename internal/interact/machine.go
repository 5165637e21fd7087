// Package interact implements the pointer and text-edit state machine for
// one drawing surface.
package interact

import (
	"ocr-viewer/internal/annotation"
	"ocr-viewer/internal/hittest"
	"ocr-viewer/internal/viewport"
	"ocr-viewer/pkg/geometry"

	"github.com/sirupsen/logrus"
)

// Mode is the current gesture. Modes are mutually exclusive.
type Mode int

const (
	Idle Mode = iota
	Panning
	Dragging
	Resizing
	EditingText
)

var modeNames = [...]string{"idle", "panning", "dragging", "resizing", "editing-text"}

func (m Mode) String() string {
	if int(m) < len(modeNames) {
		return modeNames[m]
	}
	return "unknown"
}

// Scene is what a pointer event acts on: the annotation store, the
// annotations of the current image in list order, and the surface viewport.
type Scene struct {
	Annotations *annotation.Collection
	Candidates  []annotation.Handle
	View        *viewport.Viewport
}

// Machine holds the mode, the selection and the scratch state of the
// gesture in progress.
type Machine struct {
	mode     Mode
	selected annotation.Handle
	editing  annotation.Handle

	vertex     int
	anchor     geometry.Point // last drag sample, image space
	lastScreen geometry.Point // last pan sample, screen space
	moved      bool

	tester hittest.Tester
	log    logrus.FieldLogger
}

// New creates an idle machine with no selection.
func New(tester hittest.Tester, log logrus.FieldLogger) *Machine {
	return &Machine{
		selected: annotation.NoHandle,
		editing:  annotation.NoHandle,
		vertex:   -1,
		tester:   tester,
		log:      log,
	}
}

// Mode returns the current mode.
func (m *Machine) Mode() Mode { return m.mode }

// Selected returns the selected annotation, or annotation.NoHandle.
func (m *Machine) Selected() annotation.Handle { return m.selected }

// Editing returns the annotation whose text overlay is open.
func (m *Machine) Editing() annotation.Handle { return m.editing }

// ActiveVertex returns the handle index being resized, or -1.
func (m *Machine) ActiveVertex() int { return m.vertex }

// Select sets the selection directly.
func (m *Machine) Select(h annotation.Handle) {
	m.selected = h
}

// ClearSelection drops the selection. Used on image change.
func (m *Machine) ClearSelection() {
	m.selected = annotation.NoHandle
}

func (m *Machine) setMode(next Mode) {
	if next != m.mode {
		m.log.WithFields(logrus.Fields{"from": m.mode, "to": next}).Debug("interaction mode")
	}
	m.mode = next
}

// PointerDown starts a gesture at screen point (sx, sy): resizing when a
// handle of the selection is hit, dragging when the selection's body is
// hit, panning otherwise.
func (m *Machine) PointerDown(s Scene, sx, sy float64) Mode {
	p := s.View.ScreenToImage(sx, sy)
	hit := m.tester.Resolve(s.Annotations, s.Candidates, m.selected, p, s.View)
	m.moved = false

	switch {
	case hit.Kind == hittest.Handle:
		m.vertex = hit.Vertex
		m.setMode(Resizing)
	case hit.Kind == hittest.Body && hit.Target == m.selected:
		m.anchor = p
		m.setMode(Dragging)
	default:
		m.lastScreen = geometry.Pt(sx, sy)
		m.setMode(Panning)
	}
	return m.mode
}

// PointerMove advances the active gesture. It reports whether anything
// visible changed.
func (m *Machine) PointerMove(s Scene, sx, sy float64) bool {
	switch m.mode {
	case Resizing:
		a, ok := s.Annotations.Get(m.selected)
		if !ok || !a.HasValidBBox() || m.vertex < 0 {
			return false
		}
		a.BBox[m.vertex] = s.View.ScreenToImage(sx, sy)
		m.moved = true
		return true

	case Dragging:
		a, ok := s.Annotations.Get(m.selected)
		if !ok || !a.HasValidBBox() {
			return false
		}
		p := s.View.ScreenToImage(sx, sy)
		a.BBox.Translate(p.Sub(m.anchor))
		m.anchor = p
		m.moved = true
		return true

	case Panning:
		cur := geometry.Pt(sx, sy)
		d := cur.Sub(m.lastScreen)
		m.lastScreen = cur
		if d.X == 0 && d.Y == 0 {
			return false
		}
		s.View.PanBy(d.X, d.Y)
		m.moved = true
		return true
	}
	return false
}

// PointerUp ends any gesture. Pointer-leave is handled the same way.
func (m *Machine) PointerUp() {
	if m.mode == Panning || m.mode == Dragging || m.mode == Resizing {
		m.setMode(Idle)
	}
	m.vertex = -1
	m.anchor = geometry.Point{}
	m.lastScreen = geometry.Point{}
}

// Click handles a completed press-and-release at (sx, sy). A gesture that
// moved anything is not a click. Otherwise the first annotation under the
// pointer in list order becomes the selection, or the selection is
// cleared on a miss. It reports whether the selection changed.
func (m *Machine) Click(s Scene, sx, sy float64) bool {
	if m.moved || m.mode == Panning || m.mode == Dragging || m.mode == Resizing {
		m.moved = false
		return false
	}
	p := s.View.ScreenToImage(sx, sy)
	h, _ := hittest.Pick(s.Annotations, s.Candidates, p)
	changed := h != m.selected
	m.selected = h
	if !h.IsNone() {
		m.log.WithFields(logrus.Fields{"file": h.File, "index": h.Index}).Debug("annotation selected")
	}
	return changed
}

// BeginEdit opens the text overlay for the selection. The rendering layer
// calls this when its overlay gains focus.
func (m *Machine) BeginEdit() bool {
	if m.selected.IsNone() {
		return false
	}
	m.editing = m.selected
	m.setMode(EditingText)
	return true
}

// CommitText writes the overlay text verbatim into the annotation being
// edited and closes the overlay. It reports whether a record was written.
func (m *Machine) CommitText(c *annotation.Collection, text string) bool {
	h := m.editing
	m.editing = annotation.NoHandle
	if m.mode == EditingText {
		m.setMode(Idle)
	}
	a, ok := c.Get(h)
	if !ok {
		return false
	}
	a.Text = text
	return true
}

// Abandon drops the gesture, the selection and any open text overlay
// without writing it. Used when the annotation collection is replaced and
// outstanding handles no longer name the same records.
func (m *Machine) Abandon() {
	m.editing = annotation.NoHandle
	m.Reset()
	m.setMode(Idle)
}

// Reset drops the gesture and selection. An open overlay stays bound to
// its annotation until committed.
func (m *Machine) Reset() {
	m.PointerUp()
	m.moved = false
	m.ClearSelection()
	if m.mode != EditingText {
		m.setMode(Idle)
	}
}
