// Package render turns a viewport, an image and an annotation set into a
// display list, and rasterizes display lists into RGBA images.
package render

import (
	"image"
	"image/color"

	"ocr-viewer/internal/annotation"
	"ocr-viewer/pkg/geometry"
)

// Op is a drawing operation.
type Op int

const (
	OpPolygon Op = iota // closed polygon, filled then stroked
	OpRect              // filled axis-aligned rectangle
	OpText              // single line of text, anchor at the baseline start
	OpCircle            // filled and stroked circle
)

var opNames = [...]string{"polygon", "rect", "text", "circle"}

func (op Op) String() string {
	if int(op) < len(opNames) {
		return opNames[op]
	}
	return "unknown"
}

// Command is one entry of a display list. Geometry is in canvas space for
// Frame.Commands and in screen space for Frame.Overlay. Sizes follow the
// same space; zoom-compensated sizes are pre-divided by zoom.
type Command struct {
	Op Op

	Points geometry.Polygon // OpPolygon
	Rect   geometry.Rect    // OpRect
	Center geometry.Point   // OpCircle
	Radius float64          // OpCircle

	Text     string         // OpText
	Anchor   geometry.Point // OpText
	FontSize float64        // OpText

	Fill      color.NRGBA
	Stroke    color.NRGBA
	LineWidth float64

	Target annotation.Handle // annotation that produced the command
}

// EditBox locates the text-edit overlay in screen space.
type EditBox struct {
	Target   annotation.Handle
	Text     string
	Rect     geometry.Rect
	FontSize float64 // screen pixels
}

// Frame is everything needed to paint one surface once.
type Frame struct {
	Size      geometry.Size // surface size in screen pixels
	Zoom      float64
	Transform geometry.AffineTransform // canvas to screen
	Image     image.Image              // drawn over canvas rect (0,0)-(Size)
	Commands  []Command                // canvas space, drawn under Transform
	Overlay   []Command                // screen space, drawn last
	Edit      *EditBox
}

// Targets returns the annotations that produced a polygon, in draw order.
func (f Frame) Targets() []annotation.Handle {
	var hs []annotation.Handle
	for _, c := range f.Commands {
		if c.Op == OpPolygon {
			hs = append(hs, c.Target)
		}
	}
	return hs
}
