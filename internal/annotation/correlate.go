package annotation

import (
	"regexp"
	"strings"
)

var (
	imageExt      = regexp.MustCompile(`(?i)\.(jpg|jpeg|png|bmp)$`)
	annotationExt = regexp.MustCompile(`(?i)(_final)?\.json$`)
)

// ImageStem strips a known image extension from name.
func ImageStem(name string) string {
	return imageExt.ReplaceAllString(name, "")
}

// AnnotationStem strips ".json" and an optional "_final" suffix from name.
func AnnotationStem(name string) string {
	return annotationExt.ReplaceAllString(name, "")
}

// stemsMatch is the pairing heuristic between an image and an annotation
// file: equal stems, the annotation file name containing the image stem,
// or the image stem containing the annotation stem. It is fuzzy on
// purpose and can pair similarly named files; callers take the first
// match in list order.
func stemsMatch(imageName, annotationName string) bool {
	imgStem := ImageStem(imageName)
	annStem := AnnotationStem(annotationName)
	return annStem == imgStem ||
		strings.Contains(annotationName, imgStem) ||
		strings.Contains(imgStem, annStem)
}

// MatchFile returns the index of the first annotation file paired with
// imageName, or -1.
func MatchFile(imageName string, annotationNames []string) int {
	for i, name := range annotationNames {
		if stemsMatch(imageName, name) {
			return i
		}
	}
	return -1
}

// MatchImage returns the index of the first image paired with the
// annotation file annotationName, or -1.
func MatchImage(annotationName string, imageNames []string) int {
	for i, name := range imageNames {
		if stemsMatch(name, annotationName) {
			return i
		}
	}
	return -1
}

// ForImage returns the index of the annotation file paired with imageName
// in c, or -1 when the image has no annotations.
func (c *Collection) ForImage(imageName string) int {
	return MatchFile(imageName, c.Names())
}
