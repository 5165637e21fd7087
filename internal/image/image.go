// Package image loads raster images for display and exposes their pixel size.
package image

import (
	"errors"
	"fmt"
	goimage "image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"path/filepath"
	"sync"

	"ocr-viewer/pkg/geometry"

	"github.com/disintegration/imaging"
	"github.com/sirupsen/logrus"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrEmptyImage is returned for images without pixels.
var ErrEmptyImage = errors.New("image has no pixels")

// Image is a decoded raster with the name it was loaded under.
type Image struct {
	Name   string // base file name, used for annotation correlation
	Path   string // source path, empty for in-memory images
	Image  goimage.Image
	Width  int
	Height int
}

// New wraps a decoded raster. Width and height must be positive.
func New(name string, img goimage.Image) (*Image, error) {
	if img == nil {
		return nil, ErrEmptyImage
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, fmt.Errorf("%s: %w", name, ErrEmptyImage)
	}
	return &Image{Name: name, Image: img, Width: b.Dx(), Height: b.Dy()}, nil
}

// Load reads and decodes an image file, applying EXIF orientation.
func Load(path string) (*Image, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	out, err := New(filepath.Base(path), img)
	if err != nil {
		return nil, err
	}
	out.Path = path
	return out, nil
}

// Decode reads an image from r under the given name.
func Decode(name string, r io.Reader) (*Image, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", name, err)
	}
	return New(name, img)
}

// LoadAll decodes paths concurrently, one goroutine per file. The result
// keeps the order of paths; files that fail to load are logged and left
// out.
func LoadAll(paths []string, log logrus.FieldLogger) []*Image {
	loaded := make([]*Image, len(paths))
	var wg sync.WaitGroup
	for i, p := range paths {
		wg.Add(1)
		go func(i int, p string) {
			defer wg.Done()
			img, err := Load(p)
			if err != nil {
				log.WithFields(logrus.Fields{"file": p, "error": err}).Warn("skipping image")
				return
			}
			loaded[i] = img
		}(i, p)
	}
	wg.Wait()

	out := loaded[:0]
	for _, img := range loaded {
		if img != nil {
			out = append(out, img)
		}
	}
	return out
}

// Size returns the pixel dimensions.
func (i *Image) Size() geometry.Size {
	return geometry.Size{Width: float64(i.Width), Height: float64(i.Height)}
}

// Thumbnail scales the image to fit within w x h.
func (i *Image) Thumbnail(w, h int) *goimage.NRGBA {
	return imaging.Fit(i.Image, w, h, imaging.Lanczos)
}

// Names returns the names of imgs in order.
func Names(imgs []*Image) []string {
	names := make([]string, len(imgs))
	for i, img := range imgs {
		names[i] = img.Name
	}
	return names
}
