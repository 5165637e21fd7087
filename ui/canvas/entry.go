package canvas

import (
	"sync"

	"ocr-viewer/internal/annotation"
	"ocr-viewer/internal/render"

	"fyne.io/fyne/v2/widget"
)

// editEntry is the text overlay of the selected annotation. Gaining focus
// opens the edit; losing focus commits the text.
type editEntry struct {
	widget.Entry

	onFocus func()
	onBlur  func(text string)

	mu     sync.Mutex
	target annotation.Handle
	hasFoc bool
}

func newEditEntry(onFocus func(), onBlur func(text string)) *editEntry {
	e := &editEntry{onFocus: onFocus, onBlur: onBlur, target: annotation.NoHandle}
	e.ExtendBaseWidget(e)
	return e
}

// bind shows the entry for box, or hides it when box is nil. The text is
// left alone while the user is typing into the same annotation.
func (e *editEntry) bind(box *render.EditBox) {
	e.mu.Lock()
	focused := e.hasFoc
	same := box != nil && box.Target == e.target
	if box != nil {
		e.target = box.Target
	} else if !focused {
		e.target = annotation.NoHandle
	}
	e.mu.Unlock()

	if box == nil {
		if !focused {
			e.Hide()
		}
		return
	}
	if !(focused && same) {
		e.SetText(box.Text)
	}
	e.Show()
}

func (e *editEntry) focused() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.hasFoc
}

// FocusGained implements fyne.Focusable.
func (e *editEntry) FocusGained() {
	e.mu.Lock()
	e.hasFoc = true
	e.mu.Unlock()
	e.Entry.FocusGained()
	if e.onFocus != nil {
		e.onFocus()
	}
}

// FocusLost implements fyne.Focusable.
func (e *editEntry) FocusLost() {
	e.mu.Lock()
	e.hasFoc = false
	e.mu.Unlock()
	e.Entry.FocusLost()
	if e.onBlur != nil {
		e.onBlur(e.Text)
	}
}
