package render

import (
	"image"
	"image/color"
	"math"

	"ocr-viewer/pkg/geometry"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/f64"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

// kappa places cubic control points for a quarter circle.
const kappa = 0.5522847498

// Rasterizer paints frames into RGBA images.
type Rasterizer struct {
	Background color.Color
	Resampler  xdraw.Transformer

	vec *vector.Rasterizer
}

// NewRasterizer creates a rasterizer that clears to background.
func NewRasterizer(background color.Color) *Rasterizer {
	return &Rasterizer{
		Background: background,
		Resampler:  xdraw.ApproxBiLinear,
		vec:        vector.NewRasterizer(0, 0),
	}
}

// Rasterize paints f into a new image of f.Size.
func (r *Rasterizer) Rasterize(f Frame) *image.RGBA {
	w := int(math.Ceil(f.Size.Width))
	h := int(math.Ceil(f.Size.Height))
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	r.Draw(dst, f)
	return dst
}

// Draw paints f into dst: background, image under zoom and pan, the
// canvas-space display list, then the screen-space overlay.
func (r *Rasterizer) Draw(dst *image.RGBA, f Frame) {
	if r.Background != nil {
		xdraw.Draw(dst, dst.Bounds(), image.NewUniform(r.Background), image.Point{}, xdraw.Src)
	}
	if f.Image != nil {
		r.drawImage(dst, f)
	}
	for _, c := range f.Commands {
		r.drawCommand(dst, c, f.Transform, f.Zoom)
	}
	for _, c := range f.Overlay {
		r.drawCommand(dst, c, geometry.Identity(), 1)
	}
}

func (r *Rasterizer) drawImage(dst *image.RGBA, f Frame) {
	b := f.Image.Bounds()
	if b.Empty() {
		return
	}
	m := f.Transform.
		Compose(geometry.Scale(f.Size.Width/float64(b.Dx()), f.Size.Height/float64(b.Dy()))).
		Compose(geometry.Translation(-float64(b.Min.X), -float64(b.Min.Y)))
	s2d := f64.Aff3{m.A, m.B, m.TX, m.C, m.D, m.TY}
	r.Resampler.Transform(dst, s2d, f.Image, b, xdraw.Over, nil)
}

func (r *Rasterizer) drawCommand(dst *image.RGBA, c Command, t geometry.AffineTransform, zoom float64) {
	switch c.Op {
	case OpPolygon:
		pts := c.Points.Transform(t)
		r.fillPath(dst, c.Fill, func(z *vector.Rasterizer) { polygonPath(z, pts) })
		r.strokePolygon(dst, pts, c.LineWidth*zoom, c.Stroke)

	case OpRect:
		pts := geometry.ToPolygon(c.Rect).Transform(t)
		r.fillPath(dst, c.Fill, func(z *vector.Rasterizer) { polygonPath(z, pts) })

	case OpText:
		at := t.Apply(c.Anchor)
		d := font.Drawer{
			Dst:  dst,
			Src:  image.NewUniform(c.Fill),
			Face: basicfont.Face7x13,
			Dot:  fixed.P(int(math.Round(at.X)), int(math.Round(at.Y))),
		}
		d.DrawString(c.Text)

	case OpCircle:
		center := t.Apply(c.Center)
		radius := c.Radius * zoom
		half := c.LineWidth * zoom / 2
		r.fillPath(dst, c.Fill, func(z *vector.Rasterizer) {
			circlePath(z, center, radius, false)
		})
		r.fillPath(dst, c.Stroke, func(z *vector.Rasterizer) {
			circlePath(z, center, radius+half, false)
			circlePath(z, center, math.Max(0, radius-half), true)
		})
	}
}

func (r *Rasterizer) fillPath(dst *image.RGBA, col color.NRGBA, path func(z *vector.Rasterizer)) {
	if col.A == 0 {
		return
	}
	b := dst.Bounds()
	r.vec.Reset(b.Dx(), b.Dy())
	path(r.vec)
	r.vec.Draw(dst, b, image.NewUniform(col), image.Point{})
}

// strokePolygon draws each closed edge as a quad of the given width with
// square ends so that corners join.
func (r *Rasterizer) strokePolygon(dst *image.RGBA, pts geometry.Polygon, width float64, col color.NRGBA) {
	if width <= 0 || len(pts) < 2 {
		return
	}
	half := width / 2
	for i := range pts {
		p, q := pts[i], pts[(i+1)%len(pts)]
		d := q.Sub(p)
		length := p.Distance(q)
		if length == 0 {
			continue
		}
		dir := d.Scale(half / length)
		n := geometry.Pt(-dir.Y, dir.X)
		a, b := p.Sub(dir), q.Add(dir)
		quad := geometry.Polygon{a.Add(n), b.Add(n), b.Sub(n), a.Sub(n)}
		r.fillPath(dst, col, func(z *vector.Rasterizer) { polygonPath(z, quad) })
	}
}

func polygonPath(z *vector.Rasterizer, pts geometry.Polygon) {
	if len(pts) == 0 {
		return
	}
	z.MoveTo(float32(pts[0].X), float32(pts[0].Y))
	for _, p := range pts[1:] {
		z.LineTo(float32(p.X), float32(p.Y))
	}
	z.ClosePath()
}

// circlePath appends a circle as four cubic segments. reverse winds it the
// other way, which cuts a hole when combined with a forward circle.
func circlePath(z *vector.Rasterizer, c geometry.Point, radius float64, reverse bool) {
	if radius <= 0 {
		return
	}
	k := radius * kappa
	sign := 1.0
	if reverse {
		sign = -1
	}
	cx, cy := c.X, c.Y
	f := func(v float64) float32 { return float32(v) }

	z.MoveTo(f(cx+radius), f(cy))
	z.CubeTo(f(cx+radius), f(cy+sign*k), f(cx+k), f(cy+sign*radius), f(cx), f(cy+sign*radius))
	z.CubeTo(f(cx-k), f(cy+sign*radius), f(cx-radius), f(cy+sign*k), f(cx-radius), f(cy))
	z.CubeTo(f(cx-radius), f(cy-sign*k), f(cx-k), f(cy-sign*radius), f(cx), f(cy-sign*radius))
	z.CubeTo(f(cx+k), f(cy-sign*radius), f(cx+radius), f(cy-sign*k), f(cx+radius), f(cy))
	z.ClosePath()
}
