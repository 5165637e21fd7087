package viewport

import (
	"math"

	"ocr-viewer/pkg/geometry"
)

// FitWithin scales img down to fit inside maxW x maxH, keeping aspect.
// Images that already fit keep their natural size. The result is
// truncated to whole pixels.
func FitWithin(img geometry.Size, maxW, maxH float64) geometry.Size {
	w, h := img.Width, img.Height
	if w > maxW || h > maxH {
		scale := math.Min(maxW/w, maxH/h)
		w *= scale
		h *= scale
	}
	return geometry.Size{Width: math.Floor(w), Height: math.Floor(h)}
}

// FitContainer scales img to fit a container shrunk by inset on each
// axis, never upscaling.
func FitContainer(img geometry.Size, container geometry.Size, inset float64) geometry.Size {
	if img.Width <= 0 || img.Height <= 0 {
		return geometry.Size{}
	}
	cw := math.Max(0, container.Width-inset)
	ch := math.Max(0, container.Height-inset)
	scale := math.Min(math.Min(cw/img.Width, ch/img.Height), 1)
	return geometry.Size{
		Width:  math.Floor(img.Width * scale),
		Height: math.Floor(img.Height * scale),
	}
}
