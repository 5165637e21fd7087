package app

import (
	"ocr-viewer/internal/annotation"
)

// Details describes one annotation for the details panel.
type Details struct {
	Handle      annotation.Handle
	Text        string
	ImageName   string
	Confidence  string
	Coordinates string
	Orientation float64
}

// DetailsFor builds the details of the annotation at h, shown on imageName.
func DetailsFor(c *annotation.Collection, h annotation.Handle, imageName string) (Details, bool) {
	a, ok := c.Get(h)
	if !ok {
		return Details{}, false
	}
	return Details{
		Handle:      h,
		Text:        a.Text,
		ImageName:   imageName,
		Confidence:  annotation.FormatConfidence(a.Confidence),
		Coordinates: annotation.FormatCoordinates(a.BBox),
		Orientation: a.Orientation,
	}, true
}

// ImageInfo describes the displayed image.
type ImageInfo struct {
	Index  int
	Count  int
	Name   string
	Width  int
	Height int
	Label  string // "i / n"
}

// ZoomInfo describes the zoom of the active surface.
type ZoomInfo struct {
	Surface SurfaceKind
	Percent string
	CanIn   bool
	CanOut  bool
}

// LoadInfo summarizes a completed load.
type LoadInfo struct {
	Images      int
	Files       int
	Annotations int
}

// SearchInfo is published when the result list changes.
type SearchInfo struct {
	Results []annotation.Result
	Summary string
}

// ResultInfo is published when a result becomes current.
type ResultInfo struct {
	Index    int
	Position string
	Details  Details
}
