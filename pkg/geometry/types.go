// Package geometry provides the basic geometric types shared by the viewer:
// points in image space, axis-aligned rectangles, quadrilateral bounding
// boxes and affine transforms between coordinate spaces.
package geometry

import (
	"encoding/json"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Point is a 2D point with floating-point coordinates.
// It serializes as a two element JSON array: [x, y].
type Point struct {
	X float64
	Y float64
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Vec returns the point as a gonum vector.
func (p Point) Vec() r2.Vec {
	return r2.Vec{X: p.X, Y: p.Y}
}

// FromVec converts a gonum vector to a Point.
func FromVec(v r2.Vec) Point {
	return Point{X: v.X, Y: v.Y}
}

// Add returns the sum of two points.
func (p Point) Add(other Point) Point {
	return FromVec(r2.Add(p.Vec(), other.Vec()))
}

// Sub returns the difference of two points.
func (p Point) Sub(other Point) Point {
	return FromVec(r2.Sub(p.Vec(), other.Vec()))
}

// Scale returns the point scaled by a factor.
func (p Point) Scale(factor float64) Point {
	return FromVec(r2.Scale(factor, p.Vec()))
}

// ScaleXY scales each axis independently.
func (p Point) ScaleXY(sx, sy float64) Point {
	return Point{X: p.X * sx, Y: p.Y * sy}
}

// Distance returns the Euclidean distance to another point.
func (p Point) Distance(other Point) float64 {
	return r2.Norm(r2.Sub(p.Vec(), other.Vec()))
}

// MarshalJSON encodes the point as [x, y].
func (p Point) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{p.X, p.Y})
}

// UnmarshalJSON decodes a point from [x, y]. Extra elements are ignored.
func (p *Point) UnmarshalJSON(data []byte) error {
	var coords []float64
	if err := json.Unmarshal(data, &coords); err != nil {
		return fmt.Errorf("point: %w", err)
	}
	if len(coords) < 2 {
		return fmt.Errorf("point: expected [x, y], got %d values", len(coords))
	}
	p.X, p.Y = coords[0], coords[1]
	return nil
}

// Rect is an axis-aligned rectangle stored by its extremes.
type Rect struct {
	MinX, MinY float64
	MaxX, MaxY float64
}

// Width returns the horizontal extent.
func (r Rect) Width() float64 { return r.MaxX - r.MinX }

// Height returns the vertical extent.
func (r Rect) Height() float64 { return r.MaxY - r.MinY }

// Center returns the center point of the rectangle.
func (r Rect) Center() Point {
	return Point{X: (r.MinX + r.MaxX) / 2, Y: (r.MinY + r.MaxY) / 2}
}

// Contains reports whether p lies inside r, edges included.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.MinX && p.X <= r.MaxX &&
		p.Y >= r.MinY && p.Y <= r.MaxY
}

// Scale scales both axes of the rectangle.
func (r Rect) Scale(sx, sy float64) Rect {
	return Rect{MinX: r.MinX * sx, MinY: r.MinY * sy, MaxX: r.MaxX * sx, MaxY: r.MaxY * sy}
}

// Size represents a 2D size.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// AffineTransform represents a 2x3 affine transformation matrix.
// [a b tx]
// [c d ty]
type AffineTransform struct {
	A, B, TX float64
	C, D, TY float64
}

// Identity returns the identity transform.
func Identity() AffineTransform {
	return AffineTransform{A: 1, D: 1}
}

// Translation returns a translation transform.
func Translation(tx, ty float64) AffineTransform {
	return AffineTransform{A: 1, D: 1, TX: tx, TY: ty}
}

// Scale returns a scaling transform.
func Scale(sx, sy float64) AffineTransform {
	return AffineTransform{A: sx, D: sy}
}

// Apply applies the transform to a point.
func (t AffineTransform) Apply(p Point) Point {
	return Point{
		X: t.A*p.X + t.B*p.Y + t.TX,
		Y: t.C*p.X + t.D*p.Y + t.TY,
	}
}

// Compose returns this transform composed with another (this * other).
// The result applies other first.
func (t AffineTransform) Compose(other AffineTransform) AffineTransform {
	return AffineTransform{
		A:  t.A*other.A + t.B*other.C,
		B:  t.A*other.B + t.B*other.D,
		TX: t.A*other.TX + t.B*other.TY + t.TX,
		C:  t.C*other.A + t.D*other.C,
		D:  t.C*other.B + t.D*other.D,
		TY: t.C*other.TX + t.D*other.TY + t.TY,
	}
}

// Inverse returns the inverse transform, if it exists.
func (t AffineTransform) Inverse() (AffineTransform, bool) {
	det := t.A*t.D - t.B*t.C
	if math.Abs(det) < 1e-10 {
		return AffineTransform{}, false
	}

	invDet := 1.0 / det
	return AffineTransform{
		A:  t.D * invDet,
		B:  -t.B * invDet,
		TX: (t.B*t.TY - t.D*t.TX) * invDet,
		C:  -t.C * invDet,
		D:  t.A * invDet,
		TY: (t.C*t.TX - t.A*t.TY) * invDet,
	}, true
}
