package viewport

import (
	"math/rand"
	"testing"

	"ocr-viewer/pkg/geometry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats/scalar"
)

func newTestViewport() *Viewport {
	v := New(DefaultConfig())
	v.SetImage(geometry.Size{Width: 1600, Height: 1200})
	v.SetCanvas(geometry.Size{Width: 800, Height: 600})
	return v
}

func TestDefaultConfigValid(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())
	assert.Error(t, Config{MinZoom: 0, MaxZoom: 1, ZoomStep: 0.1}.Validate())
	assert.Error(t, Config{MinZoom: 2, MaxZoom: 1, ZoomStep: 0.1}.Validate())
	assert.Error(t, Config{MinZoom: 0.1, MaxZoom: 1, ZoomStep: 0}.Validate())
}

func TestScreenToImageTwoStage(t *testing.T) {
	v := newTestViewport()
	v.ZoomAt(0, 0, 1) // zoom 2, pan stays at origin
	v.PanBy(30, -10)

	p := v.ScreenToImage(230, 190)
	// canvas: ((230-30)/2, (190+10)/2) = (100, 100); image: canvas * 2
	assert.InDelta(t, 200, p.X, 1e-9)
	assert.InDelta(t, 200, p.Y, 1e-9)

	back := v.ImageToScreen(p)
	assert.InDelta(t, 230, back.X, 1e-9)
	assert.InDelta(t, 190, back.Y, 1e-9)
}

func TestZoomTowardCursorKeepsFocalPoint(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 200; i++ {
		v := newTestViewport()
		v.ZoomAt(0, 0, rng.Float64()*5)
		v.PanBy(rng.Float64()*400-200, rng.Float64()*400-200)

		fx, fy := rng.Float64()*800, rng.Float64()*600
		before := v.ScreenToImage(fx, fy)

		delta := rng.Float64()*2 - 1
		if !v.ZoomAt(fx, fy, delta) {
			continue
		}
		after := v.ImageToScreen(before)
		assert.True(t, scalar.EqualWithinAbs(fx, after.X, 1e-6), "x: %v vs %v", fx, after.X)
		assert.True(t, scalar.EqualWithinAbs(fy, after.Y, 1e-6), "y: %v vs %v", fy, after.Y)
	}
}

func TestZoomClamps(t *testing.T) {
	v := newTestViewport()
	for i := 0; i < 500; i++ {
		v.ZoomAt(100, 100, 0.37)
		assert.LessOrEqual(t, v.Zoom(), 10.0)
	}
	assert.Equal(t, 10.0, v.Zoom())
	assert.False(t, v.CanZoomIn())
	assert.False(t, v.ZoomAt(100, 100, 1), "no change at the limit")

	for i := 0; i < 500; i++ {
		v.ZoomAt(100, 100, -0.53)
		assert.GreaterOrEqual(t, v.Zoom(), 0.1)
	}
	assert.Equal(t, 0.1, v.Zoom())
	assert.False(t, v.CanZoomOut())
}

func TestZoomInOutAroundCenter(t *testing.T) {
	v := newTestViewport()
	require.True(t, v.ZoomIn())
	assert.InDelta(t, 1.1, v.Zoom(), 1e-9)
	c := v.ScreenToCanvas(400, 300)
	assert.InDelta(t, 400, c.X, 1e-9)
	assert.InDelta(t, 300, c.Y, 1e-9)
	assert.Equal(t, "110%", v.Percent())

	v.ZoomOut()
	v.ZoomOut()
	assert.Equal(t, "90%", v.Percent())

	v.Reset()
	x, y := v.Pan()
	assert.Equal(t, 1.0, v.Zoom())
	assert.Zero(t, x)
	assert.Zero(t, y)
}

func TestFitToBoundingBox(t *testing.T) {
	v := newTestViewport()
	// 200x100 image px -> 100x50 canvas px centered at canvas (150, 125).
	bbox := geometry.ToPolygon(geometry.Rect{MinX: 200, MinY: 200, MaxX: 400, MaxY: 300})
	require.True(t, v.FitToBoundingBox(bbox, 100))

	// min((800-100)/100, (600-100)/50, 10) = 7
	assert.InDelta(t, 7, v.Zoom(), 1e-9)
	center := v.ImageToScreen(geometry.Pt(300, 250))
	assert.InDelta(t, 400, center.X, 1e-9)
	assert.InDelta(t, 300, center.Y, 1e-9)
}

func TestFitToBoundingBoxDegenerate(t *testing.T) {
	v := newTestViewport()
	line := geometry.Polygon{geometry.Pt(10, 50), geometry.Pt(90, 50), geometry.Pt(90, 50), geometry.Pt(10, 50)}
	require.True(t, v.FitToBoundingBox(line, 100))
	assert.Equal(t, 10.0, v.Zoom())

	v.Reset()
	assert.False(t, v.FitToBoundingBox(geometry.Polygon{geometry.Pt(0, 0)}, 100))
	assert.False(t, v.FitToBoundingBox(nil, 100))
	assert.Equal(t, 1.0, v.Zoom())
}

func TestFitToBoundingBoxClampsToMin(t *testing.T) {
	v := newTestViewport()
	huge := geometry.ToPolygon(geometry.Rect{MinX: 0, MinY: 0, MaxX: 1e6, MaxY: 1e6})
	require.True(t, v.FitToBoundingBox(huge, 100))
	assert.Equal(t, 0.1, v.Zoom())
}

func TestFitWithin(t *testing.T) {
	assert.Equal(t, geometry.Size{Width: 800, Height: 600}, FitWithin(geometry.Size{Width: 1600, Height: 1200}, 800, 600))
	assert.Equal(t, geometry.Size{Width: 400, Height: 300}, FitWithin(geometry.Size{Width: 400, Height: 300}, 800, 600))
	assert.Equal(t, geometry.Size{Width: 500, Height: 600}, FitWithin(geometry.Size{Width: 1000, Height: 1200}, 800, 600))
}

func TestFitContainer(t *testing.T) {
	container := geometry.Size{Width: 1040, Height: 840}
	assert.Equal(t, geometry.Size{Width: 1000, Height: 750}, FitContainer(geometry.Size{Width: 2000, Height: 1500}, container, 40))
	assert.Equal(t, geometry.Size{Width: 100, Height: 50}, FitContainer(geometry.Size{Width: 100, Height: 50}, container, 40))
	assert.Equal(t, geometry.Size{}, FitContainer(geometry.Size{}, container, 40))
}
