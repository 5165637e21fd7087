// Package colorutil provides the annotation palette and small color helpers.
package colorutil

import (
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"
)

// Annotation palette.
var (
	Red    = MustHex("#e74c3c") // plain annotation
	Orange = MustHex("#f39c12") // search hit
	Blue   = MustHex("#3498db") // selection and handles
	White  = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	Gray   = color.NRGBA{R: 0x2c, G: 0x3e, B: 0x50, A: 255}
)

// Hex parses "#rrggbb" into an opaque color.
func Hex(s string) (color.NRGBA, error) {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return color.NRGBA{}, fmt.Errorf("invalid hex color %q", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid hex color %q: %w", s, err)
	}
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, nil
}

// MustHex is Hex for package-level constants.
func MustHex(s string) color.NRGBA {
	c, err := Hex(s)
	if err != nil {
		panic(err)
	}
	return c
}

// WithAlpha returns c with alpha in [0,1].
func WithAlpha(c color.NRGBA, alpha float64) color.NRGBA {
	alpha = math.Max(0, math.Min(1, alpha))
	c.A = uint8(math.Round(alpha * 255))
	return c
}
