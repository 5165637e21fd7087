package app

import (
	"context"
	goimage "image"
	"path/filepath"
	"testing"
	"time"

	"ocr-viewer/internal/annotation"
	"ocr-viewer/internal/image"
	"ocr-viewer/internal/interact"
	"ocr-viewer/internal/render"
	"ocr-viewer/pkg/colorutil"
	"ocr-viewer/pkg/geometry"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func box(x0, y0, x1, y1 float64) geometry.Polygon {
	return geometry.ToPolygon(geometry.Rect{MinX: x0, MinY: y0, MaxX: x1, MaxY: y1})
}

func mustImage(t *testing.T, name string, w, h int) *image.Image {
	t.Helper()
	img, err := image.New(name, goimage.NewRGBA(goimage.Rect(0, 0, w, h)))
	require.NoError(t, err)
	return img
}

type recorder struct {
	frames []render.Frame
}

func (r *recorder) Show(f render.Frame) { r.frames = append(r.frames, f) }

func (r *recorder) last() render.Frame { return r.frames[len(r.frames)-1] }

type fixture struct {
	d        *Dispatcher
	windowed *recorder
	full     *recorder
	clock    time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log, _ := test.NewNullLogger()
	f := &fixture{
		d:        NewDispatcher(NewState(DefaultConfig()), log),
		windowed: &recorder{},
		full:     &recorder{},
		clock:    time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}
	f.d.now = func() time.Time { return f.clock }
	f.d.Coordinator().Surface(Windowed).SetSink(f.windowed)
	f.d.Coordinator().Surface(Fullscreen).SetSink(f.full)

	err := f.d.Dispatch(Load{
		Images: []*image.Image{
			mustImage(t, "page1.png", 400, 300),
			mustImage(t, "page2.png", 1600, 1200),
		},
		Files: []annotation.File{
			{Name: "page1.json", Data: []annotation.Annotation{
				{Text: "Hello World", Confidence: 0.9, BBox: box(10, 10, 110, 60)},
				{Text: "other", BBox: box(200, 100, 300, 150)},
			}},
			{Name: "page2_final.json", Data: []annotation.Annotation{
				{Text: "hello again", BBox: box(0, 0, 100, 100)},
				{Text: "bad", BBox: geometry.Polygon{geometry.Pt(0, 0), geometry.Pt(1, 1), geometry.Pt(2, 2)}},
			}},
		},
	})
	require.NoError(t, err)
	return f
}

func (f *fixture) surface(k SurfaceKind) *Surface { return f.d.Coordinator().Surface(k) }

func (f *fixture) click(t *testing.T, k SurfaceKind, x, y float64) {
	t.Helper()
	require.NoError(t, f.d.Dispatch(PointerDown{Surface: k, X: x, Y: y}))
	require.NoError(t, f.d.Dispatch(PointerUp{Surface: k, X: x, Y: y}))
	require.NoError(t, f.d.Dispatch(Click{Surface: k, X: x, Y: y}))
}

func polygonOf(fr render.Frame, h annotation.Handle) (render.Command, bool) {
	for _, c := range fr.Commands {
		if c.Op == render.OpPolygon && c.Target == h {
			return c, true
		}
	}
	return render.Command{}, false
}

func labelOf(fr render.Frame, h annotation.Handle) string {
	for _, c := range fr.Commands {
		if c.Op == render.OpText && c.Target == h {
			return c.Text
		}
	}
	return ""
}

func TestConfigValidate(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())

	cfg := DefaultConfig()
	cfg.HandleSize = 0
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Viewport.MaxZoom = 0.05
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "viewport")
}

func TestLoadRejectsEmptySelections(t *testing.T) {
	log, _ := test.NewNullLogger()
	d := NewDispatcher(NewState(DefaultConfig()), log)

	assert.ErrorIs(t, d.Dispatch(Load{}), ErrNoFilesSelected)
	assert.ErrorIs(t, d.Dispatch(Load{Files: []annotation.File{{Name: "a.json"}}}), ErrNoImages)
	assert.Equal(t, 0, d.State().ImageCount())
}

func TestLoadShowsFirstImage(t *testing.T) {
	f := newFixture(t)
	st := f.d.State()

	assert.Equal(t, "1 / 2", st.NavigationLabel())
	assert.Equal(t, "Ready to search", st.SearchInfo())
	assert.Equal(t, -1, st.CurrentResultIndex())

	fr := f.windowed.last()
	assert.Equal(t, geometry.Size{Width: 400, Height: 300}, fr.Size)
	assert.Equal(t, []annotation.Handle{{File: 0, Index: 0}, {File: 0, Index: 1}}, fr.Targets())
}

func TestOneRenderPerEvent(t *testing.T) {
	f := newFixture(t)
	before := len(f.windowed.frames)

	// A search touches hits, image, zoom and highlight but paints once.
	require.NoError(t, f.d.Dispatch(Search{Term: "hello"}))
	assert.Len(t, f.windowed.frames, before+1)

	// Nothing changed, nothing painted.
	require.NoError(t, f.d.Dispatch(Navigate{Delta: -5}))
	assert.Len(t, f.windowed.frames, before+1)
}

func TestSearchJumpsToFirstResult(t *testing.T) {
	f := newFixture(t)
	var selected []ResultInfo
	f.d.State().On(EventResultSelected, func(data interface{}) {
		selected = append(selected, data.(ResultInfo))
	})

	require.NoError(t, f.d.Dispatch(Search{Term: "  HELLO "}))
	st := f.d.State()
	results := st.Results()
	require.Len(t, results, 2)
	assert.Equal(t, annotation.Handle{File: 0, Index: 0}, results[0].Handle)
	assert.Equal(t, annotation.Handle{File: 1, Index: 0}, results[1].Handle)
	assert.Equal(t, "Found 2 result(s)", st.SearchInfo())
	assert.Equal(t, "Showing result 1 of 2", st.ResultPosition())

	w := f.surface(Windowed)
	assert.InDelta(t, 3, w.View.Zoom(), 1e-9)
	px, py := w.View.Pan()
	assert.InDelta(t, 20, px, 1e-9)
	assert.InDelta(t, 45, py, 1e-9)

	// Box center (60,35) in canvas space lands mid-screen.
	center, ok := w.Highlight()
	require.True(t, ok)
	assert.Equal(t, geometry.Pt(200, 150), center)

	fr := f.windowed.last()
	require.Len(t, fr.Overlay, 1)
	hit, ok := polygonOf(fr, results[0].Handle)
	require.True(t, ok)
	assert.Equal(t, colorutil.Orange, hit.Stroke)

	require.Len(t, selected, 1)
	assert.Equal(t, "Hello World", selected[0].Details.Text)
	assert.Equal(t, "90%", selected[0].Details.Confidence)
}

func TestSelectResultSwitchesImage(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.d.Dispatch(Search{Term: "hello"}))
	require.NoError(t, f.d.Dispatch(SelectResult{Index: 1}))

	st := f.d.State()
	assert.Equal(t, 1, st.CurrentImageIndex())
	assert.Equal(t, "2 / 2", st.NavigationLabel())

	w := f.surface(Windowed)
	assert.Equal(t, geometry.Size{Width: 800, Height: 600}, w.View.Canvas())
	assert.InDelta(t, 10, w.View.Zoom(), 1e-9)
	px, py := w.View.Pan()
	assert.InDelta(t, 150, px, 1e-9)
	assert.InDelta(t, 50, py, 1e-9)

	// The malformed record on page2 is never drawn.
	assert.Equal(t, []annotation.Handle{{File: 1, Index: 0}}, f.windowed.last().Targets())

	assert.ErrorIs(t, f.d.Dispatch(SelectResult{Index: 2}), ErrNoResults)
	assert.Equal(t, 1, st.CurrentResultIndex())
}

func TestSearchRejections(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.d.Dispatch(Search{Term: "hello"}))

	assert.ErrorIs(t, f.d.Dispatch(Search{Term: "   "}), annotation.ErrEmptySearchTerm)
	assert.Len(t, f.d.State().Results(), 2, "rejected search leaves results alone")

	log, _ := test.NewNullLogger()
	d := NewDispatcher(NewState(DefaultConfig()), log)
	require.NoError(t, d.Dispatch(Load{Images: []*image.Image{mustImage(t, "a.png", 10, 10)}}))
	assert.ErrorIs(t, d.Dispatch(Search{Term: "x"}), ErrNoFilesSelected)
}

func TestSearchWithoutMatches(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.d.Dispatch(Search{Term: "zebra"}))
	assert.Empty(t, f.d.State().Results())
	assert.Equal(t, "No results found", f.d.State().SearchInfo())
	assert.Equal(t, -1, f.d.State().CurrentResultIndex())
}

func TestClearSearch(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.d.Dispatch(Search{Term: "hello"}))
	require.NoError(t, f.d.Dispatch(ClearSearch{}))

	st := f.d.State()
	assert.Empty(t, st.Results())
	assert.Equal(t, -1, st.CurrentResultIndex())
	assert.Equal(t, "Ready to search", st.SearchInfo())
	assert.Empty(t, st.ResultPosition())

	c, ok := polygonOf(f.windowed.last(), annotation.Handle{File: 0, Index: 0})
	require.True(t, ok)
	assert.Equal(t, colorutil.Red, c.Stroke)
}

func TestHighlightExpires(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.d.Dispatch(Search{Term: "hello"}))
	w := f.surface(Windowed)

	f.clock = f.clock.Add(time.Second)
	require.NoError(t, f.d.Dispatch(Tick{}))
	_, ok := w.Highlight()
	assert.True(t, ok)

	f.clock = f.clock.Add(time.Second)
	require.NoError(t, f.d.Dispatch(Tick{}))
	_, ok = w.Highlight()
	assert.False(t, ok)
	assert.Empty(t, f.windowed.last().Overlay)
}

func TestHighlightStaysOnScreenWhilePanning(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.d.Dispatch(Search{Term: "hello"}))
	w := f.surface(Windowed)

	// Pan from a point off the zoomed-in box.
	require.NoError(t, f.d.Dispatch(PointerDown{Surface: Windowed, X: 5, Y: 5}))
	require.Equal(t, interact.Panning, w.Machine.Mode())
	require.NoError(t, f.d.Dispatch(PointerMove{Surface: Windowed, X: 45, Y: 25}))
	require.NoError(t, f.d.Dispatch(PointerUp{Surface: Windowed, X: 45, Y: 25}))
	px, py := w.View.Pan()
	assert.InDelta(t, 60, px, 1e-9)
	assert.InDelta(t, 65, py, 1e-9)

	fr := f.windowed.last()
	require.Len(t, fr.Overlay, 1)
	assert.Equal(t, geometry.Pt(200, 150), fr.Overlay[0].Center)
}

func TestNavigateResetsView(t *testing.T) {
	f := newFixture(t)
	w := f.surface(Windowed)
	f.click(t, Windowed, 50, 30)
	require.Equal(t, annotation.Handle{File: 0, Index: 0}, w.Machine.Selected())
	require.NoError(t, f.d.Dispatch(ZoomIn{}))

	require.NoError(t, f.d.Dispatch(Navigate{Delta: 1}))
	assert.Equal(t, 1, f.d.State().CurrentImageIndex())
	assert.Equal(t, 1.0, w.View.Zoom())
	assert.True(t, w.Machine.Selected().IsNone())

	require.NoError(t, f.d.Dispatch(Navigate{Delta: 1}))
	assert.Equal(t, 1, f.d.State().CurrentImageIndex(), "no next image")
	prev, next := f.d.State().CanNavigate()
	assert.True(t, prev)
	assert.False(t, next)
}

func TestClickSelectsAndDragMoves(t *testing.T) {
	f := newFixture(t)
	w := f.surface(Windowed)
	var details []interface{}
	f.d.State().On(EventSelectionChanged, func(data interface{}) { details = append(details, data) })

	f.click(t, Windowed, 50, 30)
	h := annotation.Handle{File: 0, Index: 0}
	require.Equal(t, h, w.Machine.Selected())
	require.Len(t, details, 1)
	assert.Equal(t, "(10, 10) → (110, 10) → (110, 60) → (10, 60)", details[0].(Details).Coordinates)

	require.NoError(t, f.d.Dispatch(PointerDown{Surface: Windowed, X: 50, Y: 30}))
	assert.Equal(t, interact.Dragging, w.Machine.Mode())
	require.NoError(t, f.d.Dispatch(PointerMove{Surface: Windowed, X: 60, Y: 50}))
	require.NoError(t, f.d.Dispatch(PointerLeave{Surface: Windowed}))
	assert.Equal(t, interact.Idle, w.Machine.Mode())

	a, _ := f.d.State().Annotations().Get(h)
	assert.Equal(t, box(20, 30, 120, 80), a.BBox)

	// Click on empty canvas clears the selection.
	f.click(t, Windowed, 390, 290)
	assert.True(t, w.Machine.Selected().IsNone())
	assert.Nil(t, details[len(details)-1])
}

func TestScrollZoomNeedsCtrl(t *testing.T) {
	f := newFixture(t)
	w := f.surface(Windowed)

	require.NoError(t, f.d.Dispatch(Scroll{Surface: Windowed, X: 100, Y: 100, DeltaY: -1}))
	assert.Equal(t, 1.0, w.View.Zoom())

	require.NoError(t, f.d.Dispatch(Scroll{Surface: Windowed, X: 100, Y: 100, DeltaY: -1, Ctrl: true}))
	assert.InDelta(t, 1.1, w.View.Zoom(), 1e-9)
	p := w.View.ScreenToCanvas(100, 100)
	assert.InDelta(t, 100, p.X, 1e-9)

	require.NoError(t, f.d.Dispatch(Scroll{Surface: Windowed, X: 100, Y: 100, DeltaY: 3, Ctrl: true}))
	assert.InDelta(t, 1.0, w.View.Zoom(), 1e-9)
}

func TestFullscreenOwnsInput(t *testing.T) {
	f := newFixture(t)
	var surfaces []interface{}
	f.d.State().On(EventSurfaceChanged, func(data interface{}) { surfaces = append(surfaces, data) })

	fs := f.surface(Fullscreen)
	fs.View.ZoomIn()
	require.NoError(t, f.d.Dispatch(Resize{Surface: Fullscreen, W: 1000, H: 800}))
	require.NoError(t, f.d.Dispatch(Key{Name: KeyF11}))
	require.True(t, f.d.Coordinator().IsFullscreen())
	assert.Equal(t, 1.0, fs.View.Zoom(), "entering resets the fullscreen viewport")
	assert.Equal(t, geometry.Size{Width: 400, Height: 300}, fs.View.Canvas())

	f.click(t, Windowed, 50, 30)
	assert.True(t, f.surface(Windowed).Machine.Selected().IsNone(), "inactive surface ignores input")

	f.click(t, Fullscreen, 50, 30)
	h := annotation.Handle{File: 0, Index: 0}
	require.Equal(t, h, fs.Machine.Selected())
	require.NotNil(t, f.full.last().Edit)

	wBefore := len(f.windowed.frames)
	require.NoError(t, f.d.Dispatch(BeginEdit{Surface: Fullscreen}))
	assert.Equal(t, interact.EditingText, fs.Machine.Mode())
	require.NoError(t, f.d.Dispatch(TextCommit{Surface: Fullscreen, Text: "Edited"}))

	a, _ := f.d.State().Annotations().Get(h)
	assert.Equal(t, "Edited", a.Text)
	assert.Len(t, f.windowed.frames, wBefore+1, "edit repaints the other surface")
	assert.Equal(t, "Edited", labelOf(f.windowed.last(), h))

	require.NoError(t, f.d.Dispatch(Key{Name: KeyRight}))
	assert.Equal(t, 1, f.d.State().CurrentImageIndex())
	require.NoError(t, f.d.Dispatch(Key{Name: KeyLeft, InputFocused: true}))
	assert.Equal(t, 1, f.d.State().CurrentImageIndex())

	require.NoError(t, f.d.Dispatch(Key{Name: KeyEscape}))
	assert.False(t, f.d.Coordinator().IsFullscreen())
	assert.Equal(t, []interface{}{Fullscreen, Windowed}, surfaces)
}

func TestReloadDropsOpenEdit(t *testing.T) {
	f := newFixture(t)
	f.click(t, Windowed, 50, 30)
	require.Equal(t, annotation.Handle{File: 0, Index: 0}, f.surface(Windowed).Machine.Selected())
	require.NoError(t, f.d.Dispatch(BeginEdit{Surface: Windowed}))

	require.NoError(t, f.d.Dispatch(Load{
		Images: []*image.Image{mustImage(t, "other.png", 400, 300)},
		Files: []annotation.File{{Name: "other.json", Data: []annotation.Annotation{
			{Text: "untouched", BBox: box(10, 10, 110, 60)},
		}}},
	}))
	for _, s := range f.d.Coordinator().Surfaces() {
		assert.True(t, s.Machine.Editing().IsNone())
		assert.Equal(t, interact.Idle, s.Machine.Mode())
	}

	var edited []interface{}
	f.d.State().On(EventAnnotationEdited, func(data interface{}) { edited = append(edited, data) })
	require.NoError(t, f.d.Dispatch(TextCommit{Surface: Windowed, Text: "typed for page1"}))

	a, ok := f.d.State().Annotations().Get(annotation.Handle{File: 0, Index: 0})
	require.True(t, ok)
	assert.Equal(t, "untouched", a.Text)
	assert.Empty(t, edited)
}

func TestMapKey(t *testing.T) {
	tests := []struct {
		name       string
		key        Key
		fullscreen bool
		want       Event
	}{
		{"escape exits", Key{Name: KeyEscape}, true, ExitFullscreen{}},
		{"escape windowed", Key{Name: KeyEscape}, false, nil},
		{"left", Key{Name: KeyLeft}, true, Navigate{Delta: -1}},
		{"right", Key{Name: KeyRight}, true, Navigate{Delta: 1}},
		{"arrow in input", Key{Name: KeyRight, InputFocused: true}, true, nil},
		{"ctrl f focuses search", Key{Name: KeyF, Ctrl: true}, true, FocusSearch{}},
		{"plain f", Key{Name: KeyF}, true, nil},
		{"f11", Key{Name: KeyF11}, false, EnterFullscreen{}},
		{"ctrl shift f", Key{Name: KeyF, Ctrl: true, Shift: true}, false, EnterFullscreen{}},
		{"ctrl f windowed", Key{Name: KeyF, Ctrl: true}, false, nil},
		{"f11 in fullscreen", Key{Name: KeyF11}, true, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MapKey(tt.key, tt.fullscreen))
		})
	}
}

func TestExportRoundTrip(t *testing.T) {
	f := newFixture(t)
	f.click(t, Windowed, 50, 30)
	require.NoError(t, f.d.Dispatch(BeginEdit{Surface: Windowed}))
	require.NoError(t, f.d.Dispatch(TextCommit{Surface: Windowed, Text: ""}))

	path := filepath.Join(t.TempDir(), annotation.ExportFileName)
	var exported []interface{}
	f.d.State().On(EventExported, func(data interface{}) { exported = append(exported, data) })
	require.NoError(t, f.d.Dispatch(Export{Path: path}))
	assert.Equal(t, []interface{}{path}, exported)

	log, _ := test.NewNullLogger()
	files, err := annotation.Load(path, log)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "", files[0].Data[0].Text)
	assert.Equal(t, f.d.State().Annotations().Files()[1].Data[0], files[1].Data[0])
}

func TestRunAppliesPostedEvents(t *testing.T) {
	log, _ := test.NewNullLogger()
	d := NewDispatcher(NewState(DefaultConfig()), log)
	errs := make(chan error, 1)
	d.State().On(EventError, func(data interface{}) { errs <- data.(error) })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()

	d.Post(Load{})
	select {
	case err := <-errs:
		assert.ErrorIs(t, err, ErrNoFilesSelected)
	case <-time.After(5 * time.Second):
		t.Fatal("no error published")
	}

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop")
	}
}
