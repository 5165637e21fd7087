package app

import (
	"ocr-viewer/internal/annotation"
	"ocr-viewer/internal/image"
)

// Event is one unit of input for the Dispatcher.
type Event interface {
	event()
}

// Pointer events carry screen coordinates relative to the surface.
type (
	PointerDown struct {
		Surface SurfaceKind
		X, Y    float64
	}
	PointerMove struct {
		Surface SurfaceKind
		X, Y    float64
	}
	PointerUp struct {
		Surface SurfaceKind
		X, Y    float64
	}
	PointerLeave struct {
		Surface SurfaceKind
	}
	Click struct {
		Surface SurfaceKind
		X, Y    float64
	}
	// Scroll zooms around (X, Y) when Ctrl is held.
	Scroll struct {
		Surface SurfaceKind
		X, Y    float64
		DeltaY  float64
		Ctrl    bool
	}
)

// Key is a key press. Name uses the desktop key names ("Escape", "Left",
// "Right", "F11", "F").
type Key struct {
	Name         string
	Ctrl, Shift  bool
	InputFocused bool
}

type (
	Search       struct{ Term string }
	ClearSearch  struct{}
	SelectResult struct{ Index int }
	Navigate     struct{ Delta int }
	ZoomIn       struct{}
	ZoomOut      struct{}
	ZoomReset    struct{}
	FocusSearch  struct{}

	EnterFullscreen struct{}
	ExitFullscreen  struct{}

	// BeginEdit is sent when the text overlay of a surface gains focus.
	BeginEdit struct{ Surface SurfaceKind }
	// TextCommit is sent when the text overlay loses focus.
	TextCommit struct {
		Surface SurfaceKind
		Text    string
	}

	// Resize reports the space available to a surface.
	Resize struct {
		Surface SurfaceKind
		W, H    float64
	}

	// Tick advances timers such as the result highlight.
	Tick struct{}

	// Load replaces the data set.
	Load struct {
		Images []*image.Image
		Files  []annotation.File
	}

	// Export writes the annotation collection to Path.
	Export struct{ Path string }
)

func (PointerDown) event()     {}
func (PointerMove) event()     {}
func (PointerUp) event()       {}
func (PointerLeave) event()    {}
func (Click) event()           {}
func (Scroll) event()          {}
func (Key) event()             {}
func (Search) event()          {}
func (ClearSearch) event()     {}
func (SelectResult) event()    {}
func (Navigate) event()        {}
func (ZoomIn) event()          {}
func (ZoomOut) event()         {}
func (ZoomReset) event()       {}
func (FocusSearch) event()     {}
func (EnterFullscreen) event() {}
func (ExitFullscreen) event()  {}
func (BeginEdit) event()       {}
func (TextCommit) event()      {}
func (Resize) event()          {}
func (Tick) event()            {}
func (Load) event()            {}
func (Export) event()          {}
