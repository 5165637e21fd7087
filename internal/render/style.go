package render

import (
	"image/color"

	"ocr-viewer/pkg/colorutil"
)

// Role selects the style of an annotation.
type Role int

const (
	Plain Role = iota
	SearchHit
	Selected
)

func (r Role) String() string {
	switch r {
	case SearchHit:
		return "search-hit"
	case Selected:
		return "selected"
	default:
		return "plain"
	}
}

// Style is the stroke and fill of an annotation box. Width is in screen
// pixels and is divided by zoom when emitted.
type Style struct {
	Stroke color.NRGBA
	Fill   color.NRGBA
	Width  float64
}

// StyleFor returns the box style for a role.
func StyleFor(r Role) Style {
	switch r {
	case Selected:
		return Style{Stroke: colorutil.Blue, Fill: colorutil.WithAlpha(colorutil.Blue, 0.3), Width: 4}
	case SearchHit:
		return Style{Stroke: colorutil.Orange, Fill: colorutil.WithAlpha(colorutil.Orange, 0.2), Width: 4}
	default:
		return Style{Stroke: colorutil.Red, Fill: colorutil.WithAlpha(colorutil.Red, 0.1), Width: 2}
	}
}

// LabelColor is the label color for an annotation. Labels follow search-hit
// status only, so a selected hit keeps an orange label.
func LabelColor(isHit bool) color.NRGBA {
	if isHit {
		return colorutil.Orange
	}
	return colorutil.Red
}

// SurfaceStyle holds the per-surface label metrics. Sizes are screen pixels.
type SurfaceStyle struct {
	LabelMaxChars int
	FontSize      float64
	LabelOffset   float64
	LabelMinZoom  float64
	HandleSize    float64
	HandleColor   color.NRGBA
	EditFill      color.NRGBA
	EditText      color.NRGBA
}

// WindowedStyle is used for the windowed surface.
func WindowedStyle() SurfaceStyle {
	return SurfaceStyle{
		LabelMaxChars: 20,
		FontSize:      12,
		LabelOffset:   5,
		LabelMinZoom:  0.3,
		HandleSize:    8,
		HandleColor:   colorutil.Blue,
		EditFill:      colorutil.WithAlpha(colorutil.Orange, 0.2),
		EditText:      colorutil.Blue,
	}
}

// FullscreenStyle is used for the fullscreen surface.
func FullscreenStyle() SurfaceStyle {
	s := WindowedStyle()
	s.LabelMaxChars = 25
	s.FontSize = 14
	s.LabelOffset = 8
	return s
}

// Highlight marker metrics, screen pixels.
const (
	HighlightRadius = 20.0
	HighlightWidth  = 3.0
)

// HighlightStyle is the pulse marker shown after jumping to a result.
func HighlightStyle() Style {
	return Style{
		Stroke: colorutil.Orange,
		Fill:   colorutil.WithAlpha(colorutil.Orange, 0.3),
		Width:  HighlightWidth,
	}
}

// Truncate shortens text to max runes followed by "...".
func Truncate(text string, max int) string {
	r := []rune(text)
	if len(r) <= max {
		return text
	}
	return string(r[:max]) + "..."
}
