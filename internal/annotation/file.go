package annotation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"ocr-viewer/pkg/geometry"

	"github.com/sirupsen/logrus"
)

// ExportFileName is the default name of an exported collection.
const ExportFileName = "modified_annotations.json"

// record is the exported projection of an Annotation. Field order is the
// order written to disk.
type record struct {
	Text        string           `json:"text"`
	Confidence  float64          `json:"confidence"`
	BBox        geometry.Polygon `json:"bbox"`
	Orientation float64          `json:"orientation"`
}

type exportedFile struct {
	Name string   `json:"name"`
	Data []record `json:"data"`
}

// Parse decodes an annotation document named name. A plain list of
// annotation records yields a single File. A previously exported
// collection ([{name, data}, ...]) yields one File per entry so that
// exports can be loaded back. Unparseable input yields a single empty File
// and a warning; it never fails the batch.
func Parse(name string, data []byte, log logrus.FieldLogger) []File {
	if docs, ok := parseExport(data); ok {
		return docs
	}

	var records []Annotation
	if err := json.Unmarshal(data, &records); err != nil {
		log.WithFields(logrus.Fields{
			"file":  name,
			"error": err,
		}).Warn("Error parsing annotation JSON")
		return []File{{Name: name, Data: []Annotation{}}}
	}
	return []File{{Name: name, Data: records}}
}

// parseExport recognizes the exported collection layout: a non-empty list
// whose every element carries both "name" and "data" keys.
func parseExport(data []byte) ([]File, bool) {
	var entries []map[string]json.RawMessage
	if err := json.Unmarshal(data, &entries); err != nil || len(entries) == 0 {
		return nil, false
	}

	files := make([]File, 0, len(entries))
	for _, e := range entries {
		rawName, hasName := e["name"]
		rawData, hasData := e["data"]
		if !hasName || !hasData {
			return nil, false
		}
		var f File
		if err := json.Unmarshal(rawName, &f.Name); err != nil {
			return nil, false
		}
		if err := json.Unmarshal(rawData, &f.Data); err != nil {
			f.Data = []Annotation{}
		}
		files = append(files, f)
	}
	return files, true
}

// Load reads and parses an annotation document from disk. Only I/O errors
// are returned; parse failures degrade as in Parse.
func Load(path string, log logrus.FieldLogger) ([]File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read annotations: %w", err)
	}
	return Parse(filepath.Base(path), data, log), nil
}

// Export writes the collection as [{name, data: [{text, confidence, bbox,
// orientation}]}] with two-space indentation. Fields other than those four
// are not written.
func Export(w io.Writer, c *Collection) error {
	out := make([]exportedFile, 0, c.Len())
	for _, f := range c.Files() {
		out = append(out, exportedFile{Name: f.Name, Data: toRecords(f.Data)})
	}
	return encode(w, out)
}

// Save exports the collection to path.
func Save(path string, c *Collection) error {
	var buf bytes.Buffer
	if err := Export(&buf, c); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}

// SaveRecords writes data to path as a plain list of records, the layout
// produced by OCR tools.
func SaveRecords(path string, data []Annotation) error {
	var buf bytes.Buffer
	if err := encode(&buf, toRecords(data)); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}

// FileNameFor returns the annotation file name that pairs with imageName.
func FileNameFor(imageName string) string {
	return ImageStem(imageName) + ".json"
}

func encode(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to write annotations: %w", err)
	}
	return nil
}

func toRecords(data []Annotation) []record {
	out := make([]record, 0, len(data))
	for _, a := range data {
		out = append(out, toRecord(a))
	}
	return out
}

func toRecord(a Annotation) record {
	return record{
		Text:        a.Text,
		Confidence:  a.Confidence,
		BBox:        a.BBox,
		Orientation: a.Orientation,
	}
}
