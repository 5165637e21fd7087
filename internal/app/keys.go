package app

// Key names as delivered by the desktop driver.
const (
	KeyEscape = "Escape"
	KeyLeft   = "Left"
	KeyRight  = "Right"
	KeyF11    = "F11"
	KeyF      = "F"
)

// MapKey translates a key press into an event for the given surface mode,
// or nil when the key does nothing there.
//
// Fullscreen: Escape leaves, Left/Right navigate unless a text input has
// focus, Ctrl+F focuses the search box. Windowed: F11 or Ctrl+Shift+F
// enters fullscreen.
func MapKey(k Key, fullscreen bool) Event {
	if fullscreen {
		switch k.Name {
		case KeyEscape:
			return ExitFullscreen{}
		case KeyLeft:
			if !k.InputFocused {
				return Navigate{Delta: -1}
			}
		case KeyRight:
			if !k.InputFocused {
				return Navigate{Delta: 1}
			}
		case KeyF:
			if k.Ctrl {
				return FocusSearch{}
			}
		}
		return nil
	}

	if k.Name == KeyF11 || (k.Name == KeyF && k.Ctrl && k.Shift) {
		return EnterFullscreen{}
	}
	return nil
}
