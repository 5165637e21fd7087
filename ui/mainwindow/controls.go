package mainwindow

import (
	"fmt"
	"strings"
	"sync"

	"ocr-viewer/internal/annotation"
	"ocr-viewer/internal/app"
	"ocr-viewer/ui/canvas"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

// controls is the search, results, details, navigation and zoom panel.
// Each surface window builds its own; both follow the same state events.
type controls struct {
	kind   app.SurfaceKind
	events canvas.Poster
	win    fyne.Window

	search     *widget.Entry
	searchInfo *widget.Label
	position   *widget.Label
	results    *widget.List
	details    *widget.Label
	navLabel   *widget.Label
	prev, next *widget.Button
	zoomLabel  *widget.Label
	zoomIn     *widget.Button
	zoomOut    *widget.Button

	mu      sync.Mutex
	items   []annotation.Result
	current *app.Details
	syncing bool
}

func newControls(kind app.SurfaceKind, events canvas.Poster, win fyne.Window) *controls {
	c := &controls{kind: kind, events: events, win: win}

	c.search = widget.NewEntry()
	c.search.SetPlaceHolder("Search text...")
	c.search.OnSubmitted = func(term string) {
		c.events.Post(app.Search{Term: term})
	}

	c.searchInfo = widget.NewLabel("Ready to search")
	c.position = widget.NewLabel("")

	c.results = widget.NewList(
		func() int {
			c.mu.Lock()
			defer c.mu.Unlock()
			return len(c.items)
		},
		func() fyne.CanvasObject {
			return widget.NewLabel("")
		},
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			c.mu.Lock()
			defer c.mu.Unlock()
			if id < len(c.items) {
				obj.(*widget.Label).SetText(resultLabel(c.items[id]))
			}
		},
	)
	c.results.OnSelected = func(id widget.ListItemID) {
		c.mu.Lock()
		syncing := c.syncing
		c.mu.Unlock()
		if !syncing {
			c.events.Post(app.SelectResult{Index: id})
		}
	}

	c.details = widget.NewLabel(detailsText(nil))
	c.details.Wrapping = fyne.TextWrapWord

	c.navLabel = widget.NewLabel("No images loaded")
	c.prev = widget.NewButtonWithIcon("", theme.NavigateBackIcon(), func() {
		c.events.Post(app.Navigate{Delta: -1})
	})
	c.next = widget.NewButtonWithIcon("", theme.NavigateNextIcon(), func() {
		c.events.Post(app.Navigate{Delta: 1})
	})
	c.prev.Disable()
	c.next.Disable()

	c.zoomLabel = widget.NewLabel("100%")
	c.zoomOut = widget.NewButtonWithIcon("", theme.ZoomOutIcon(), func() {
		c.events.Post(app.ZoomOut{})
	})
	c.zoomIn = widget.NewButtonWithIcon("", theme.ZoomInIcon(), func() {
		c.events.Post(app.ZoomIn{})
	})
	return c
}

// searchBar is the entry with its search and clear buttons.
func (c *controls) searchBar() fyne.CanvasObject {
	buttons := container.NewHBox(
		widget.NewButtonWithIcon("Search", theme.SearchIcon(), func() {
			c.events.Post(app.Search{Term: c.search.Text})
		}),
		widget.NewButtonWithIcon("Clear", theme.ContentClearIcon(), func() {
			c.search.SetText("")
			c.events.Post(app.ClearSearch{})
		}),
	)
	return container.NewBorder(nil, nil, nil, buttons, c.search)
}

// navBar holds the image navigation and zoom controls.
func (c *controls) navBar() fyne.CanvasObject {
	return container.NewHBox(
		c.prev, c.navLabel, c.next,
		widget.NewSeparator(),
		c.zoomOut, c.zoomLabel, c.zoomIn,
		widget.NewButtonWithIcon("", theme.ViewRestoreIcon(), func() {
			c.events.Post(app.ZoomReset{})
		}),
	)
}

// sidePanel stacks the result list over the details card.
func (c *controls) sidePanel() fyne.CanvasObject {
	copyText := widget.NewButtonWithIcon("Copy Text", theme.ContentCopyIcon(), func() {
		if d := c.selected(); d != nil {
			c.win.Clipboard().SetContent(d.Text)
		}
	})
	copyCoords := widget.NewButtonWithIcon("Copy Coordinates", theme.ContentCopyIcon(), func() {
		if d := c.selected(); d != nil {
			c.win.Clipboard().SetContent(d.Coordinates)
		}
	})
	header := container.NewVBox(c.searchBar(), c.searchInfo, c.position)
	detailsCard := widget.NewCard("Details", "", container.NewVBox(
		c.details,
		container.NewHBox(copyText, copyCoords),
	))
	split := container.NewVSplit(c.results, container.NewVScroll(detailsCard))
	split.Offset = 0.6
	return container.NewBorder(header, nil, nil, nil, split)
}

func (c *controls) selected() *app.Details {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// bind subscribes the panel to state events.
func (c *controls) bind(state *app.State) {
	state.On(app.EventImageChanged, func(data interface{}) {
		info := data.(app.ImageInfo)
		c.navLabel.SetText(info.Label)
		setEnabled(c.prev, info.Index > 0)
		setEnabled(c.next, info.Index < info.Count-1)
	})

	state.On(app.EventSearchChanged, func(data interface{}) {
		info := data.(app.SearchInfo)
		c.mu.Lock()
		c.items = info.Results
		c.mu.Unlock()
		c.searchInfo.SetText(info.Summary)
		c.position.SetText("")
		c.results.UnselectAll()
		c.results.Refresh()
	})

	state.On(app.EventResultSelected, func(data interface{}) {
		info := data.(app.ResultInfo)
		c.position.SetText(info.Position)
		c.mu.Lock()
		c.syncing = true
		c.mu.Unlock()
		c.results.Select(info.Index)
		c.results.ScrollTo(info.Index)
		c.mu.Lock()
		c.syncing = false
		c.mu.Unlock()
		c.showDetails(&info.Details)
	})

	state.On(app.EventSelectionChanged, func(data interface{}) {
		d, ok := data.(app.Details)
		if !ok {
			c.showDetails(nil)
			return
		}
		c.showDetails(&d)
	})

	state.On(app.EventAnnotationEdited, func(interface{}) {
		c.results.Refresh()
	})

	state.On(app.EventZoomChanged, func(data interface{}) {
		info := data.(app.ZoomInfo)
		if info.Surface != c.kind {
			return
		}
		c.zoomLabel.SetText(info.Percent)
		setEnabled(c.zoomIn, info.CanIn)
		setEnabled(c.zoomOut, info.CanOut)
	})
}

func (c *controls) showDetails(d *app.Details) {
	c.mu.Lock()
	c.current = d
	c.mu.Unlock()
	c.details.SetText(detailsText(d))
}

func setEnabled(b *widget.Button, on bool) {
	if on {
		b.Enable()
	} else {
		b.Disable()
	}
}

// resultLabel is the list row of a search result.
func resultLabel(r annotation.Result) string {
	return fmt.Sprintf("%q  %s  %s", r.Text, r.ImageName, annotation.FormatConfidence(r.Confidence))
}

// detailsText renders the details card body.
func detailsText(d *app.Details) string {
	if d == nil {
		return "Select an annotation to see its details."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Text: %s\n", d.Text)
	fmt.Fprintf(&b, "Image: %s\n", d.ImageName)
	fmt.Fprintf(&b, "Confidence: %s\n", d.Confidence)
	fmt.Fprintf(&b, "Coordinates: %s\n", d.Coordinates)
	fmt.Fprintf(&b, "Orientation: %g°", d.Orientation)
	return b.String()
}
