package annotation

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"ocr-viewer/pkg/geometry"
)

// ErrEmptySearchTerm is returned for a blank search term.
var ErrEmptySearchTerm = errors.New("please enter a search term")

// Result is one search hit. It refers to the matched record by handle.
type Result struct {
	Text            string
	Handle          Handle
	ImageIndex      int
	ImageName       string
	AnnotationIndex int
	Confidence      float64
}

// NormalizeTerm trims and lowercases a raw search term.
func NormalizeTerm(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// Search finds every record whose text contains term, case-insensitively.
// Results are in file order, then record order. Files that pair with no
// image contribute nothing.
func Search(c *Collection, imageNames []string, rawTerm string) ([]Result, error) {
	term := NormalizeTerm(rawTerm)
	if term == "" {
		return nil, ErrEmptySearchTerm
	}

	results := []Result{}
	for fi, f := range c.Files() {
		imageIndex := -1
		resolved := false
		for ai, a := range f.Data {
			if a.Text == "" || !strings.Contains(strings.ToLower(a.Text), term) {
				continue
			}
			if !resolved {
				imageIndex = MatchImage(f.Name, imageNames)
				resolved = true
			}
			if imageIndex == -1 {
				break
			}
			results = append(results, Result{
				Text:            a.Text,
				Handle:          Handle{File: fi, Index: ai},
				ImageIndex:      imageIndex,
				ImageName:       imageNames[imageIndex],
				AnnotationIndex: ai,
				Confidence:      a.Confidence,
			})
		}
	}
	return results, nil
}

// Summary describes a result list the way the search info line shows it.
func Summary(results []Result) string {
	if len(results) == 0 {
		return "No results found"
	}
	return fmt.Sprintf("Found %d result(s)", len(results))
}

// FormatCoordinates renders a bounding box as "(x, y) → (x, y) → ...".
func FormatCoordinates(bbox geometry.Polygon) string {
	if !bbox.IsQuad() {
		return "Invalid coordinates"
	}
	parts := make([]string, len(bbox))
	for i, p := range bbox {
		parts[i] = "(" + formatNumber(p.X) + ", " + formatNumber(p.Y) + ")"
	}
	return strings.Join(parts, " → ")
}

// FormatConfidence renders a confidence in [0,1] as a rounded percentage.
func FormatConfidence(c float64) string {
	return fmt.Sprintf("%d%%", int(math.Round(c*100)))
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
