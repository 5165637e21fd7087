package canvas

import (
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
)

// KeyState tracks the held modifier keys from desktop key events.
type KeyState struct {
	mu    sync.Mutex
	ctrl  int
	shift int
}

// KeyDown records a pressed key.
func (k *KeyState) KeyDown(ev *fyne.KeyEvent) {
	k.mu.Lock()
	defer k.mu.Unlock()
	switch ev.Name {
	case desktop.KeyControlLeft, desktop.KeyControlRight:
		k.ctrl++
	case desktop.KeyShiftLeft, desktop.KeyShiftRight:
		k.shift++
	}
}

// KeyUp records a released key.
func (k *KeyState) KeyUp(ev *fyne.KeyEvent) {
	k.mu.Lock()
	defer k.mu.Unlock()
	switch ev.Name {
	case desktop.KeyControlLeft, desktop.KeyControlRight:
		if k.ctrl > 0 {
			k.ctrl--
		}
	case desktop.KeyShiftLeft, desktop.KeyShiftRight:
		if k.shift > 0 {
			k.shift--
		}
	}
}

// Ctrl reports whether a Control key is held.
func (k *KeyState) Ctrl() bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.ctrl > 0
}

// Shift reports whether a Shift key is held.
func (k *KeyState) Shift() bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.shift > 0
}
