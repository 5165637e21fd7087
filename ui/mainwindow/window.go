// Package mainwindow provides the main application window.
package mainwindow

import (
	"fmt"
	"path/filepath"

	"ocr-viewer/internal/annotation"
	"ocr-viewer/internal/app"
	"ocr-viewer/internal/version"
	"ocr-viewer/ui/canvas"
	"ocr-viewer/ui/prefs"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/sirupsen/logrus"
)

// MainWindow is the primary application window. It hosts the windowed
// surface; the fullscreen surface lives in its own window.
type MainWindow struct {
	fyne.Window
	app        fyne.App
	dispatcher *app.Dispatcher
	state      *app.State
	prefs      *prefs.Prefs
	log        logrus.FieldLogger

	keys       *canvas.KeyState
	canvas     *canvas.SurfaceCanvas
	controls   *controls
	fullscreen *fullscreenWindow
	statusBar  *widget.Label

	imageDir      *widget.Label
	annotationDir *widget.Label
}

// New creates the main window and attaches both surfaces to d. It must be
// called before d.Run.
func New(fyneApp fyne.App, d *app.Dispatcher, p *prefs.Prefs, log logrus.FieldLogger) *MainWindow {
	win := fyneApp.NewWindow("OCR Viewer")

	mw := &MainWindow{
		Window:     win,
		app:        fyneApp,
		dispatcher: d,
		state:      d.State(),
		prefs:      p,
		log:        log.WithField("component", "mainwindow"),
		keys:       &canvas.KeyState{},
	}

	mw.setupUI()
	mw.setupMenus()
	mw.setupEventHandlers()
	bindKeys(mw.Window, mw.keys, d)
	mw.fullscreen = newFullscreenWindow(fyneApp, d, mw.keys, log)

	mw.Resize(fyne.NewSize(1280, 860))
	mw.SetMaster()
	return mw
}

// setupUI creates the main UI layout.
func (mw *MainWindow) setupUI() {
	mw.canvas = canvas.NewSurfaceCanvas(app.Windowed, mw.dispatcher, mw.keys, mw.log)
	mw.dispatcher.Coordinator().Surface(app.Windowed).SetSink(mw.canvas)

	mw.controls = newControls(app.Windowed, mw.dispatcher, mw.Window)
	mw.controls.bind(mw.state)

	mw.statusBar = widget.NewLabel("Ready")
	mw.imageDir = widget.NewLabel(mw.prefs.String(prefs.KeyLastImageDir))
	mw.annotationDir = widget.NewLabel(mw.prefs.String(prefs.KeyLastAnnotationDir))

	canvasArea := container.NewBorder(
		nil,
		mw.controls.navBar(),
		nil,
		nil,
		mw.canvas,
	)

	split := container.NewHSplit(canvasArea, mw.controls.sidePanel())
	split.Offset = 0.7

	mw.SetContent(container.NewBorder(
		mw.createToolbar(),
		mw.statusBar,
		nil,
		nil,
		split,
	))
}

// createToolbar builds the file selection row.
func (mw *MainWindow) createToolbar() fyne.CanvasObject {
	return container.NewVBox(
		container.NewBorder(nil, nil,
			widget.NewButtonWithIcon("Images...", theme.FolderOpenIcon(), mw.onChooseImages),
			nil,
			mw.imageDir,
		),
		container.NewBorder(nil, nil,
			widget.NewButtonWithIcon("Annotations...", theme.FolderOpenIcon(), mw.onChooseAnnotations),
			container.NewHBox(
				widget.NewButtonWithIcon("Load", theme.DocumentIcon(), mw.onLoad),
				widget.NewButtonWithIcon("Fullscreen", theme.ViewFullScreenIcon(), func() {
					mw.dispatcher.Post(app.EnterFullscreen{})
				}),
			),
			mw.annotationDir,
		),
	)
}

// setupMenus creates the application menus.
func (mw *MainWindow) setupMenus() {
	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("Open Folder...", mw.onOpenFolder),
		fyne.NewMenuItem("Choose Image Folder...", mw.onChooseImages),
		fyne.NewMenuItem("Choose Annotation Folder...", mw.onChooseAnnotations),
		fyne.NewMenuItem("Load", mw.onLoad),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Export Annotations...", mw.onExport),
	)

	viewMenu := fyne.NewMenu("View",
		fyne.NewMenuItem("Zoom In", func() { mw.dispatcher.Post(app.ZoomIn{}) }),
		fyne.NewMenuItem("Zoom Out", func() { mw.dispatcher.Post(app.ZoomOut{}) }),
		fyne.NewMenuItem("Reset Zoom", func() { mw.dispatcher.Post(app.ZoomReset{}) }),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Previous Image", func() { mw.dispatcher.Post(app.Navigate{Delta: -1}) }),
		fyne.NewMenuItem("Next Image", func() { mw.dispatcher.Post(app.Navigate{Delta: 1}) }),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Fullscreen", func() { mw.dispatcher.Post(app.EnterFullscreen{}) }),
	)

	helpMenu := fyne.NewMenu("Help",
		fyne.NewMenuItem("About", mw.onAbout),
	)

	mw.SetMainMenu(fyne.NewMainMenu(fileMenu, viewMenu, helpMenu))
}

// setupEventHandlers registers for application events.
func (mw *MainWindow) setupEventHandlers() {
	mw.state.On(app.EventFilesLoaded, func(data interface{}) {
		info := data.(app.LoadInfo)
		mw.updateStatus(fmt.Sprintf("Loaded %d images and %d annotation files (%d annotations)",
			info.Images, info.Files, info.Annotations))
	})

	mw.state.On(app.EventImageChanged, func(data interface{}) {
		info := data.(app.ImageInfo)
		mw.SetTitle("OCR Viewer - " + info.Name)
		mw.updateStatus(fmt.Sprintf("%s (%d x %d)", info.Name, info.Width, info.Height))
	})

	mw.state.On(app.EventSurfaceChanged, func(data interface{}) {
		if data.(app.SurfaceKind) == app.Fullscreen {
			mw.fullscreen.show()
		} else {
			mw.fullscreen.hide()
			mw.RequestFocus()
		}
	})

	mw.state.On(app.EventFocusSearch, func(data interface{}) {
		if data.(app.SurfaceKind) == app.Fullscreen {
			mw.fullscreen.focusSearch()
		} else {
			mw.Canvas().Focus(mw.controls.search)
		}
	})

	mw.state.On(app.EventExported, func(data interface{}) {
		mw.updateStatus("Exported annotations to " + data.(string))
	})

	mw.state.On(app.EventError, func(data interface{}) {
		err, ok := data.(error)
		if !ok {
			return
		}
		mw.updateStatus(err.Error())
		dialog.ShowError(err, mw.activeWindow())
	})
}

func (mw *MainWindow) activeWindow() fyne.Window {
	if mw.fullscreen.shown() {
		return mw.fullscreen.win
	}
	return mw.Window
}

// updateStatus updates the status bar text.
func (mw *MainWindow) updateStatus(text string) {
	mw.statusBar.SetText(text)
}

// OpenFolder selects dir for both images and annotations and loads it.
func (mw *MainWindow) OpenFolder(dir string) {
	mw.setImageDir(dir)
	mw.setAnnotationDir(dir)
	mw.onLoad()
}

// lastDir returns the remembered directory under key as a ListableURI,
// or nil.
func (mw *MainWindow) lastDir(key string) fyne.ListableURI {
	path := mw.prefs.String(key)
	if path == "" {
		return nil
	}
	listable, err := storage.ListerForURI(storage.NewFileURI(path))
	if err != nil {
		return nil
	}
	return listable
}

func (mw *MainWindow) rememberDir(key, dir string) {
	mw.prefs.SetString(key, dir)
	if err := mw.prefs.Save(); err != nil {
		mw.log.WithError(err).Warn("failed to save preferences")
	}
}

func (mw *MainWindow) setImageDir(dir string) {
	mw.imageDir.SetText(dir)
	mw.rememberDir(prefs.KeyLastImageDir, dir)
}

func (mw *MainWindow) setAnnotationDir(dir string) {
	mw.annotationDir.SetText(dir)
	mw.rememberDir(prefs.KeyLastAnnotationDir, dir)
}

func (mw *MainWindow) chooseFolder(key string, done func(dir string)) {
	fd := dialog.NewFolderOpen(func(uri fyne.ListableURI, err error) {
		if err != nil {
			dialog.ShowError(err, mw.Window)
			return
		}
		if uri == nil {
			return
		}
		done(uri.Path())
	}, mw.Window)
	if dir := mw.lastDir(key); dir != nil {
		fd.SetLocation(dir)
	}
	fd.Show()
}

func (mw *MainWindow) onOpenFolder() {
	mw.chooseFolder(prefs.KeyLastImageDir, mw.OpenFolder)
}

func (mw *MainWindow) onChooseImages() {
	mw.chooseFolder(prefs.KeyLastImageDir, mw.setImageDir)
}

func (mw *MainWindow) onChooseAnnotations() {
	mw.chooseFolder(prefs.KeyLastAnnotationDir, mw.setAnnotationDir)
}

// onLoad reads the chosen folders off the UI thread and hands the result
// to the dispatcher.
func (mw *MainWindow) onLoad() {
	imageDir := mw.imageDir.Text
	annotationDir := mw.annotationDir.Text
	if imageDir == "" {
		imageDir = annotationDir
	}
	if imageDir == "" {
		dialog.ShowError(app.ErrNoFilesSelected, mw.Window)
		return
	}

	mw.updateStatus("Loading...")
	go func() {
		load, err := app.LoadFolders(imageDir, annotationDir, mw.log)
		if err != nil {
			mw.updateStatus(err.Error())
			dialog.ShowError(err, mw.Window)
			return
		}
		mw.dispatcher.Post(load)
	}()
}

func (mw *MainWindow) onExport() {
	if mw.state.Annotations().Len() == 0 {
		dialog.ShowError(app.ErrNoFilesSelected, mw.Window)
		return
	}
	fd := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil {
			dialog.ShowError(err, mw.Window)
			return
		}
		if writer == nil {
			return
		}
		path := writer.URI().Path()
		writer.Close()

		mw.rememberDir(prefs.KeyLastExportDir, filepath.Dir(path))
		mw.dispatcher.Post(app.Export{Path: path})
	}, mw.Window)
	fd.SetFileName(annotation.ExportFileName)
	fd.SetFilter(storage.NewExtensionFileFilter([]string{".json"}))
	if dir := mw.lastDir(prefs.KeyLastExportDir); dir != nil {
		fd.SetLocation(dir)
	}
	fd.Show()
}

func (mw *MainWindow) onAbout() {
	dialog.ShowInformation("About OCR Viewer",
		fmt.Sprintf("OCR Viewer v%s\n\n"+
			"Browse, search and correct OCR annotations.\n\n"+
			"Built: %s\n"+
			"Commit: %s",
			version.Version, version.BuildTime, version.GitCommit),
		mw.Window)
}

// bindKeys routes the keyboard of win to the dispatcher. Modifier state is
// tracked in keys so that wheel zoom can see Ctrl.
func bindKeys(win fyne.Window, keys *canvas.KeyState, events canvas.Poster) {
	c := win.Canvas()
	if dc, ok := c.(desktop.Canvas); ok {
		dc.SetOnKeyDown(keys.KeyDown)
		dc.SetOnKeyUp(keys.KeyUp)
	}
	c.SetOnTypedKey(func(ev *fyne.KeyEvent) {
		events.Post(app.Key{
			Name:         string(ev.Name),
			Ctrl:         keys.Ctrl(),
			Shift:        keys.Shift(),
			InputFocused: c.Focused() != nil,
		})
	})
	c.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyF, Modifier: fyne.KeyModifierControl},
		func(fyne.Shortcut) {
			events.Post(app.Key{Name: app.KeyF, Ctrl: true, InputFocused: c.Focused() != nil})
		})
	c.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyF, Modifier: fyne.KeyModifierControl | fyne.KeyModifierShift},
		func(fyne.Shortcut) {
			events.Post(app.Key{Name: app.KeyF, Ctrl: true, Shift: true, InputFocused: c.Focused() != nil})
		})
}
