// Package hittest resolves what a pointer position is over: a resize
// handle of the selected annotation, an annotation body, or nothing.
//
// Priority is fixed: handles of the selected annotation in vertex order,
// then the selected annotation's body, then other bodies in list order.
// The first match wins; there is no occlusion or area ordering.
package hittest

import (
	"ocr-viewer/internal/annotation"
	"ocr-viewer/pkg/geometry"
)

// DefaultHandleSize is the on-screen edge length of a resize handle.
const DefaultHandleSize = 8.0

// Kind classifies a hit.
type Kind int

const (
	None Kind = iota
	Handle
	Body
)

func (k Kind) String() string {
	switch k {
	case Handle:
		return "handle"
	case Body:
		return "body"
	default:
		return "none"
	}
}

// Hit is the resolved target under the pointer.
type Hit struct {
	Kind   Kind
	Target annotation.Handle
	Vertex int // handle index for Kind == Handle
}

// Miss is the empty-canvas result.
var Miss = Hit{Kind: None, Target: annotation.NoHandle, Vertex: -1}

// Space describes the current view so that a fixed screen-size handle can
// be converted into image units.
type Space interface {
	Zoom() float64
	DisplayScale() (sx, sy float64)
}

// Tester performs hit tests in image space.
type Tester struct {
	HandleSize float64
}

// New creates a tester with the given handle size in screen pixels.
func New(handleSize float64) Tester {
	return Tester{HandleSize: handleSize}
}

// halfExtent returns half the handle size in image units per axis.
func (t Tester) halfExtent(space Space) (hx, hy float64) {
	canvasSize := t.HandleSize / space.Zoom()
	sx, sy := space.DisplayScale()
	return canvasSize / sx / 2, canvasSize / sy / 2
}

// HandleAt returns the index of the first vertex of bbox whose handle
// square contains p. Malformed boxes have no handles.
func (t Tester) HandleAt(bbox geometry.Polygon, p geometry.Point, space Space) (int, bool) {
	if !bbox.IsQuad() {
		return -1, false
	}
	hx, hy := t.halfExtent(space)
	for i, v := range bbox {
		r := geometry.Rect{MinX: v.X - hx, MinY: v.Y - hy, MaxX: v.X + hx, MaxY: v.Y + hy}
		if r.Contains(p) {
			return i, true
		}
	}
	return -1, false
}

// BodyAt reports whether p is over the body of bbox. Malformed boxes are
// never hit.
func BodyAt(bbox geometry.Polygon, p geometry.Point) bool {
	return bbox.IsQuad() && geometry.ContainsPoint(bbox, p)
}

// Resolve finds the target under p among candidates, given the current
// selection. p is in image space.
func (t Tester) Resolve(c *annotation.Collection, candidates []annotation.Handle, selected annotation.Handle, p geometry.Point, space Space) Hit {
	if sel, ok := c.Get(selected); ok {
		if i, ok := t.HandleAt(sel.BBox, p, space); ok {
			return Hit{Kind: Handle, Target: selected, Vertex: i}
		}
		if BodyAt(sel.BBox, p) {
			return Hit{Kind: Body, Target: selected, Vertex: -1}
		}
	}
	if h, ok := Pick(c, candidates, p); ok {
		return Hit{Kind: Body, Target: h, Vertex: -1}
	}
	return Miss
}

// Pick returns the first candidate, in list order, whose body contains p.
func Pick(c *annotation.Collection, candidates []annotation.Handle, p geometry.Point) (annotation.Handle, bool) {
	for _, h := range candidates {
		a, ok := c.Get(h)
		if !ok {
			continue
		}
		if BodyAt(a.BBox, p) {
			return h, true
		}
	}
	return annotation.NoHandle, false
}
