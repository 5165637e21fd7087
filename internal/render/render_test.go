package render

import (
	"image"
	"image/color"
	"testing"

	"ocr-viewer/internal/annotation"
	"ocr-viewer/internal/viewport"
	"ocr-viewer/pkg/colorutil"
	"ocr-viewer/pkg/geometry"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rect(x0, y0, x1, y1 float64) geometry.Polygon {
	return geometry.ToPolygon(geometry.Rect{MinX: x0, MinY: y0, MaxX: x1, MaxY: y1})
}

func scene(t *testing.T) Scene {
	t.Helper()
	c := annotation.NewCollection(annotation.File{Name: "img.json", Data: []annotation.Annotation{
		{Text: "plain text that is definitely long", BBox: rect(20, 20, 60, 40)},
		{Text: "hit", BBox: rect(100, 100, 140, 120)},
		{Text: "chosen", BBox: rect(150, 20, 190, 40)},
		{Text: "broken", BBox: geometry.Polygon{geometry.Pt(1, 1), geometry.Pt(2, 2), geometry.Pt(3, 3)}},
		{Text: "", BBox: rect(0, 150, 10, 160)},
	}})
	v := viewport.New(viewport.DefaultConfig())
	v.SetImage(geometry.Size{Width: 400, Height: 400})
	v.SetCanvas(geometry.Size{Width: 200, Height: 200})
	hs := c.Handles(0)
	return Scene{
		View:        v,
		Annotations: c,
		Candidates:  hs,
		Hits:        map[annotation.Handle]bool{hs[1]: true, hs[2]: true},
		Selected:    hs[2],
		Style:       WindowedStyle(),
	}
}

func commandsFor(f Frame, h annotation.Handle, op Op) []Command {
	var out []Command
	for _, c := range f.Commands {
		if c.Target == h && c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

func TestBuildStylesByRole(t *testing.T) {
	s := scene(t)
	log, hook := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)
	f := Build(s, log)
	hs := s.Candidates

	assert.Equal(t, []annotation.Handle{hs[0], hs[1], hs[2], hs[4]}, f.Targets(), "malformed bbox skipped")
	require.Len(t, hook.AllEntries(), 1)
	assert.Equal(t, f.Targets(), Build(s, log).Targets(), "callable on a returned frame")

	plain := commandsFor(f, hs[0], OpPolygon)[0]
	assert.Equal(t, colorutil.Red, plain.Stroke)
	assert.Equal(t, 2.0, plain.LineWidth)
	assert.Equal(t, rect(10, 10, 30, 20), plain.Points, "image points scaled to canvas")

	hit := commandsFor(f, hs[1], OpPolygon)[0]
	assert.Equal(t, colorutil.Orange, hit.Stroke)
	assert.Equal(t, 4.0, hit.LineWidth)

	sel := commandsFor(f, hs[2], OpPolygon)[0]
	assert.Equal(t, colorutil.Blue, sel.Stroke)
	assert.Equal(t, colorutil.WithAlpha(colorutil.Blue, 0.3), sel.Fill)
}

func TestBuildLabels(t *testing.T) {
	s := scene(t)
	log, _ := test.NewNullLogger()
	f := Build(s, log)
	hs := s.Candidates

	labels := commandsFor(f, hs[0], OpText)
	require.Len(t, labels, 1)
	assert.Equal(t, "plain text that is d...", labels[0].Text)
	assert.Equal(t, colorutil.Red, labels[0].Fill)
	assert.Equal(t, geometry.Pt(10, 5), labels[0].Anchor)
	assert.Equal(t, 12.0, labels[0].FontSize)

	// Selected search hit: editable full text in blue plus an orange label.
	selTexts := commandsFor(f, hs[2], OpText)
	require.Len(t, selTexts, 2)
	assert.Equal(t, colorutil.Blue, selTexts[0].Fill)
	assert.Equal(t, colorutil.Orange, selTexts[1].Fill)

	assert.Empty(t, commandsFor(f, hs[4], OpText), "empty text has no label")
}

func TestBuildFullscreenLabelMetrics(t *testing.T) {
	s := scene(t)
	s.Style = FullscreenStyle()
	s.Selected = annotation.NoHandle
	s.View.ZoomAt(0, 0, 1) // zoom 2
	log, _ := test.NewNullLogger()
	f := Build(s, log)

	label := commandsFor(f, s.Candidates[0], OpText)[0]
	assert.Equal(t, "plain text that is defini...", label.Text)
	assert.Equal(t, 7.0, label.FontSize)
	assert.Equal(t, geometry.Pt(10, 6), label.Anchor)
	assert.Equal(t, 1.0, commandsFor(f, s.Candidates[0], OpPolygon)[0].LineWidth)
	assert.Nil(t, f.Edit)
}

func TestBuildHidesTextAtLowZoom(t *testing.T) {
	s := scene(t)
	s.View.ZoomAt(0, 0, -0.75) // zoom 0.25, below the label threshold
	log, _ := test.NewNullLogger()
	f := Build(s, log)
	for _, c := range f.Commands {
		assert.NotEqual(t, OpText, c.Op)
	}
	assert.Nil(t, f.Edit)
}

func TestBuildHandlesAndEditBox(t *testing.T) {
	s := scene(t)
	log, _ := test.NewNullLogger()
	f := Build(s, log)
	sel := s.Candidates[2]

	rects := commandsFor(f, sel, OpRect)
	require.Len(t, rects, 5, "edit background plus four handles")
	handles := rects[1:]
	for i, p := range rect(75, 10, 95, 20) {
		assert.Equal(t, p, handles[i].Rect.Center())
		assert.InDelta(t, 8, handles[i].Rect.Width(), 1e-9)
		assert.Equal(t, colorutil.Blue, handles[i].Fill)
	}

	require.NotNil(t, f.Edit)
	assert.Equal(t, sel, f.Edit.Target)
	assert.Equal(t, "chosen", f.Edit.Text)
	assert.InDelta(t, 75, f.Edit.Rect.MinX, 1e-9)
	assert.InDelta(t, 5, f.Edit.Rect.MaxY, 1e-9)
	assert.InDelta(t, TextWidth("chosen", 12), f.Edit.Rect.Width(), 1e-9)
}

func TestBuildHighlightInScreenSpace(t *testing.T) {
	s := scene(t)
	s.View.PanBy(10, 20)
	s.View.ZoomAt(0, 0, 1)
	center := geometry.Pt(50, 50)
	s.Highlight = &center
	log, _ := test.NewNullLogger()
	f := Build(s, log)

	require.Len(t, f.Overlay, 1)
	assert.Equal(t, OpCircle, f.Overlay[0].Op)
	assert.Equal(t, geometry.Pt(50, 50), f.Overlay[0].Center, "pan and zoom do not move the marker")
	assert.Equal(t, HighlightRadius, f.Overlay[0].Radius)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 20))
	assert.Equal(t, "twelve-chars", Truncate("twelve-chars", 12))
	assert.Equal(t, "ab...", Truncate("abc", 2))
	assert.Equal(t, "ü...", Truncate("üü", 1))
}

func TestRasterizeFillsPolygonsAndImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 40, 40))
	for y := 0; y < 40; y++ {
		for x := 0; x < 40; x++ {
			img.Set(x, y, color.RGBA{G: 200, A: 255})
		}
	}

	v := viewport.New(viewport.DefaultConfig())
	v.SetImage(geometry.Size{Width: 40, Height: 40})
	v.SetCanvas(geometry.Size{Width: 80, Height: 80})
	c := annotation.NewCollection(annotation.File{Name: "g.json", Data: []annotation.Annotation{
		{Text: "", BBox: rect(20, 20, 30, 30)},
	}})
	log, _ := test.NewNullLogger()
	f := Build(Scene{
		Image:       img,
		View:        v,
		Annotations: c,
		Candidates:  c.Handles(0),
		Selected:    annotation.NoHandle,
		Style:       WindowedStyle(),
	}, log)

	out := NewRasterizer(color.White).Rasterize(f)
	require.Equal(t, image.Rect(0, 0, 80, 80), out.Bounds())

	// Outside the box: image pixels, scaled up 2x.
	bg := out.RGBAAt(10, 10)
	assert.Equal(t, uint8(200), bg.G)
	assert.Equal(t, uint8(0), bg.R)

	// Inside the box (canvas 40..60): faint red tint over the image.
	inside := out.RGBAAt(50, 50)
	assert.Greater(t, inside.R, uint8(0))
	assert.Less(t, inside.G, uint8(200))

	// On the edge: solid stroke color.
	edge := out.RGBAAt(40, 50)
	assert.InDelta(t, float64(colorutil.Red.R), float64(edge.R), 2)
}

func TestRasterizeOverlayCircle(t *testing.T) {
	f := Frame{
		Size:      geometry.Size{Width: 100, Height: 100},
		Zoom:      1,
		Transform: geometry.Identity(),
		Overlay: []Command{{
			Op: OpCircle, Center: geometry.Pt(50, 50), Radius: 20,
			Fill: colorutil.WithAlpha(colorutil.Orange, 0.3), Stroke: colorutil.Orange, LineWidth: 3,
		}},
	}
	out := NewRasterizer(color.Black).Rasterize(f)

	ring := out.RGBAAt(70, 50)
	assert.InDelta(t, float64(colorutil.Orange.R), float64(ring.R), 2)

	inside := out.RGBAAt(50, 50)
	assert.Greater(t, inside.R, uint8(0))
	assert.Less(t, inside.R, colorutil.Orange.R)

	outside := out.RGBAAt(5, 5)
	assert.Equal(t, color.RGBA{A: 255}, outside)
}
