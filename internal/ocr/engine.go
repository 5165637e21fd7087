// Package ocr produces annotation records from images with Tesseract.
package ocr

import (
	"errors"
	"fmt"
	"path/filepath"

	"ocr-viewer/internal/annotation"

	"github.com/otiai10/gosseract/v2"
	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"
)

// ErrEmptyImage is returned when an image could not be read or has no pixels.
var ErrEmptyImage = errors.New("empty image")

// Options configures recognition.
type Options struct {
	Language      string  // Tesseract language, e.g. "eng"
	Whitelist     string  // restrict recognized characters, empty for all
	MinConfidence float64 // words below this confidence (0..1) are dropped
	Preprocess    bool    // grayscale, CLAHE and Otsu threshold before recognition
	MinHeight     int     // images shorter than this are upscaled first
}

// DefaultOptions returns settings suited to scanned documents.
func DefaultOptions() Options {
	return Options{
		Language:      "eng",
		MinConfidence: 0.3,
		Preprocess:    true,
		MinHeight:     150,
	}
}

// Engine wraps a Tesseract client.
type Engine struct {
	client *gosseract.Client
	opts   Options
	log    logrus.FieldLogger
}

// NewEngine creates a new OCR engine.
func NewEngine(opts Options, log logrus.FieldLogger) (*Engine, error) {
	client := gosseract.NewClient()

	if err := client.SetLanguage(opts.Language); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set OCR language: %w", err)
	}
	// Sparse text finds scattered words without assuming a page layout.
	if err := client.SetPageSegMode(gosseract.PSM_SPARSE_TEXT); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set PSM: %w", err)
	}
	if opts.Whitelist != "" {
		if err := client.SetWhitelist(opts.Whitelist); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to set whitelist: %w", err)
		}
	}

	return &Engine{
		client: client,
		opts:   opts,
		log:    log.WithField("component", "ocr"),
	}, nil
}

// Close releases OCR resources.
func (e *Engine) Close() error {
	if e.client != nil {
		return e.client.Close()
	}
	return nil
}

// Recognize finds the words in img and returns one annotation per word
// with its box in img's pixel coordinates.
func (e *Engine) Recognize(img gocv.Mat) ([]annotation.Annotation, error) {
	if img.Empty() {
		return nil, ErrEmptyImage
	}

	processed, scale := prepare(img, e.opts)
	defer processed.Close()

	buf, err := gocv.IMEncode(gocv.PNGFileExt, processed)
	if err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	defer buf.Close()

	if err := e.client.SetImageFromBytes(buf.GetBytes()); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}

	boxes, err := e.client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, fmt.Errorf("failed to get boxes: %w", err)
	}

	out := fromBoxes(boxes, scale, e.opts.MinConfidence)
	e.log.WithFields(logrus.Fields{"boxes": len(boxes), "words": len(out)}).Debug("recognized")
	return out, nil
}

// RecognizeFile reads the image at path and returns an annotation file
// named to pair with it.
func (e *Engine) RecognizeFile(path string) (annotation.File, error) {
	img := gocv.IMRead(path, gocv.IMReadColor)
	defer img.Close()
	if img.Empty() {
		return annotation.File{}, fmt.Errorf("failed to open image %s: %w", path, ErrEmptyImage)
	}

	data, err := e.Recognize(img)
	if err != nil {
		return annotation.File{}, fmt.Errorf("%s: %w", path, err)
	}
	return annotation.File{
		Name: annotation.FileNameFor(filepath.Base(path)),
		Data: data,
	}, nil
}
