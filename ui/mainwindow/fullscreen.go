package mainwindow

import (
	"sync"

	"ocr-viewer/internal/app"
	"ocr-viewer/ui/canvas"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/sirupsen/logrus"
)

// fullscreenWindow hosts the fullscreen surface with its own copy of the
// search, navigation and zoom controls.
type fullscreenWindow struct {
	win      fyne.Window
	canvas   *canvas.SurfaceCanvas
	controls *controls

	mu      sync.Mutex
	visible bool
}

func newFullscreenWindow(fyneApp fyne.App, d *app.Dispatcher, keys *canvas.KeyState, log logrus.FieldLogger) *fullscreenWindow {
	win := fyneApp.NewWindow("OCR Viewer - Fullscreen")
	fw := &fullscreenWindow{win: win}

	fw.canvas = canvas.NewSurfaceCanvas(app.Fullscreen, d, keys, log)
	d.Coordinator().Surface(app.Fullscreen).SetSink(fw.canvas)

	fw.controls = newControls(app.Fullscreen, d, win)
	fw.controls.bind(d.State())

	exit := widget.NewButtonWithIcon("Exit Fullscreen", theme.ViewRestoreIcon(), func() {
		d.Post(app.ExitFullscreen{})
	})
	top := container.NewBorder(nil, nil, nil, exit, fw.controls.navBar())

	split := container.NewHSplit(fw.canvas, fw.controls.sidePanel())
	split.Offset = 0.78
	win.SetContent(container.NewBorder(top, nil, nil, nil, split))

	// Closing the window only leaves fullscreen mode.
	win.SetCloseIntercept(func() {
		d.Post(app.ExitFullscreen{})
	})
	bindKeys(win, keys, d)
	return fw
}

func (fw *fullscreenWindow) show() {
	fw.mu.Lock()
	fw.visible = true
	fw.mu.Unlock()
	fw.win.SetFullScreen(true)
	fw.win.Show()
	fw.win.RequestFocus()
}

func (fw *fullscreenWindow) hide() {
	fw.mu.Lock()
	fw.visible = false
	fw.mu.Unlock()
	fw.win.SetFullScreen(false)
	fw.win.Hide()
}

func (fw *fullscreenWindow) shown() bool {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	return fw.visible
}

func (fw *fullscreenWindow) focusSearch() {
	fw.win.Canvas().Focus(fw.controls.search)
}
