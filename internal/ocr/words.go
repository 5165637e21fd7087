package ocr

import (
	"strings"

	"ocr-viewer/internal/annotation"
	"ocr-viewer/pkg/geometry"

	"github.com/otiai10/gosseract/v2"
)

// fromBoxes converts Tesseract word boxes found on an image scaled by
// scale into annotations in the original pixel grid. Confidence is mapped
// from 0..100 to 0..1; empty words and words below minConfidence are
// dropped.
func fromBoxes(boxes []gosseract.BoundingBox, scale, minConfidence float64) []annotation.Annotation {
	if scale <= 0 {
		scale = 1
	}
	out := make([]annotation.Annotation, 0, len(boxes))
	for _, b := range boxes {
		text := strings.Join(strings.Fields(b.Word), " ")
		if text == "" {
			continue
		}
		conf := b.Confidence / 100
		if conf < minConfidence {
			continue
		}
		r := geometry.Rect{
			MinX: float64(b.Box.Min.X),
			MinY: float64(b.Box.Min.Y),
			MaxX: float64(b.Box.Max.X),
			MaxY: float64(b.Box.Max.Y),
		}.Scale(1/scale, 1/scale)

		out = append(out, annotation.Annotation{
			Text:       text,
			Confidence: conf,
			BBox:       geometry.ToPolygon(r),
		})
	}
	return out
}
