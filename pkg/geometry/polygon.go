package geometry

import (
	"gonum.org/v1/gonum/floats"
)

// QuadPoints is the number of vertices in a well-formed bounding box.
const QuadPoints = 4

// Polygon is an ordered list of vertices. Annotation bounding boxes are
// quadrilaterals, conventionally top-left, top-right, bottom-right,
// bottom-left, but neither order nor convexity is enforced.
type Polygon []Point

// IsQuad reports whether the polygon has exactly four vertices.
// Everything that edits, draws or hit-tests a bounding box skips
// polygons for which this is false.
func (poly Polygon) IsQuad() bool {
	return len(poly) == QuadPoints
}

// Clone returns a copy of the polygon.
func (poly Polygon) Clone() Polygon {
	if poly == nil {
		return nil
	}
	out := make(Polygon, len(poly))
	copy(out, poly)
	return out
}

// Bounds returns the componentwise min/max over all vertices.
// ok is false for an empty polygon.
func Bounds(poly Polygon) (r Rect, ok bool) {
	if len(poly) == 0 {
		return Rect{}, false
	}
	xs := make([]float64, len(poly))
	ys := make([]float64, len(poly))
	for i, p := range poly {
		xs[i], ys[i] = p.X, p.Y
	}
	return Rect{
		MinX: floats.Min(xs),
		MinY: floats.Min(ys),
		MaxX: floats.Max(xs),
		MaxY: floats.Max(ys),
	}, true
}

// ContainsPoint reports whether p lies within the axis-aligned bounding
// rectangle of poly. This is a deliberate approximation of point-in-polygon:
// annotations are treated as rectangles for hit purposes even when stored as
// general quadrilaterals. Switching to an exact test would change which
// annotation a click resolves to for skewed boxes.
func ContainsPoint(poly Polygon, p Point) bool {
	r, ok := Bounds(poly)
	if !ok {
		return false
	}
	return r.Contains(p)
}

// ToRect returns the axis-aligned rectangle enclosing poly.
func ToRect(poly Polygon) Rect {
	r, _ := Bounds(poly)
	return r
}

// ToPolygon returns the four corners of r in top-left, top-right,
// bottom-right, bottom-left order.
func ToPolygon(r Rect) Polygon {
	return Polygon{
		{X: r.MinX, Y: r.MinY},
		{X: r.MaxX, Y: r.MinY},
		{X: r.MaxX, Y: r.MaxY},
		{X: r.MinX, Y: r.MaxY},
	}
}

// Translate moves every vertex by d in place.
func (poly Polygon) Translate(d Point) {
	for i := range poly {
		poly[i] = poly[i].Add(d)
	}
}

// ScaleXY returns a copy of poly with each axis scaled independently.
func (poly Polygon) ScaleXY(sx, sy float64) Polygon {
	out := make(Polygon, len(poly))
	for i, p := range poly {
		out[i] = p.ScaleXY(sx, sy)
	}
	return out
}

// Transform returns a copy of poly with t applied to every vertex.
func (poly Polygon) Transform(t AffineTransform) Polygon {
	out := make(Polygon, len(poly))
	for i, p := range poly {
		out[i] = t.Apply(p)
	}
	return out
}
