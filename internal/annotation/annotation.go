// Package annotation holds OCR annotation records and the collection that
// owns them. Records are addressed by Handle so that selection, search
// results and rendering all refer to the same stored value: editing a
// record through the collection is visible everywhere it is referenced.
package annotation

import (
	"encoding/json"

	"ocr-viewer/pkg/geometry"
)

// Annotation is a single recognized text region.
type Annotation struct {
	Text        string
	Confidence  float64
	BBox        geometry.Polygon
	Orientation float64
}

// HasValidBBox reports whether the bounding box is a 4-point quadrilateral.
func (a *Annotation) HasValidBBox() bool {
	return a != nil && a.BBox.IsQuad()
}

// UnmarshalJSON decodes an annotation record leniently. Missing confidence
// and orientation default to 0. A bbox that is absent, null or not a list
// of [x, y] pairs leaves BBox nil so the record is kept but treated as
// malformed by geometry operations. Unknown fields are ignored.
func (a *Annotation) UnmarshalJSON(data []byte) error {
	var raw struct {
		Text        json.RawMessage `json:"text"`
		Confidence  json.RawMessage `json:"confidence"`
		BBox        json.RawMessage `json:"bbox"`
		Orientation json.RawMessage `json:"orientation"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*a = Annotation{}
	if len(raw.Text) > 0 {
		_ = json.Unmarshal(raw.Text, &a.Text)
	}
	if len(raw.Confidence) > 0 {
		_ = json.Unmarshal(raw.Confidence, &a.Confidence)
	}
	if len(raw.Orientation) > 0 {
		_ = json.Unmarshal(raw.Orientation, &a.Orientation)
	}
	if len(raw.BBox) > 0 {
		var poly geometry.Polygon
		if err := json.Unmarshal(raw.BBox, &poly); err == nil {
			a.BBox = poly
		}
	}
	return nil
}

// File is one annotation document, notionally paired with one image by
// file-name stem.
type File struct {
	Name string
	Data []Annotation
}

// Handle addresses an annotation inside a Collection.
type Handle struct {
	File  int
	Index int
}

// NoHandle is the zero selection.
var NoHandle = Handle{File: -1, Index: -1}

// IsNone reports whether h is NoHandle.
func (h Handle) IsNone() bool {
	return h == NoHandle
}

// Collection owns every loaded annotation file. It is replaced wholesale
// when a new file set is loaded; records are never deleted individually.
type Collection struct {
	files []File
}

// NewCollection creates a collection from files, in order.
func NewCollection(files ...File) *Collection {
	c := &Collection{}
	c.files = append(c.files, files...)
	return c
}

// Len returns the number of files.
func (c *Collection) Len() int {
	return len(c.files)
}

// File returns the file at index i.
func (c *Collection) File(i int) (*File, bool) {
	if i < 0 || i >= len(c.files) {
		return nil, false
	}
	return &c.files[i], true
}

// Files returns the files in load order. The slice is shared with the
// collection.
func (c *Collection) Files() []File {
	return c.files
}

// Names returns the file names in load order.
func (c *Collection) Names() []string {
	names := make([]string, len(c.files))
	for i := range c.files {
		names[i] = c.files[i].Name
	}
	return names
}

// Get resolves a handle. The returned pointer aliases the stored record.
func (c *Collection) Get(h Handle) (*Annotation, bool) {
	f, ok := c.File(h.File)
	if !ok || h.Index < 0 || h.Index >= len(f.Data) {
		return nil, false
	}
	return &f.Data[h.Index], true
}

// Handles returns handles for every record of file i, in record order.
func (c *Collection) Handles(i int) []Handle {
	f, ok := c.File(i)
	if !ok {
		return nil
	}
	hs := make([]Handle, len(f.Data))
	for j := range f.Data {
		hs[j] = Handle{File: i, Index: j}
	}
	return hs
}

// Count returns the total number of records across all files.
func (c *Collection) Count() int {
	n := 0
	for i := range c.files {
		n += len(c.files[i].Data)
	}
	return n
}
