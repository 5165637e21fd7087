package app

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"ocr-viewer/internal/annotation"
	"ocr-viewer/internal/image"

	"github.com/sirupsen/logrus"
)

var imageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".bmp":  true,
	".tif":  true,
	".tiff": true,
	".webp": true,
}

// ScanDir lists the image and annotation files directly inside dir, in
// name order.
func ScanDir(dir string) (images, annotations []string, err error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read folder: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		path := filepath.Join(dir, e.Name())
		switch {
		case imageExts[ext]:
			images = append(images, path)
		case ext == ".json":
			annotations = append(annotations, path)
		}
	}
	return images, annotations, nil
}

// LoadFolders decodes the images of imageDir and the annotation files of
// annotationDir into a Load event. An empty annotationDir means imageDir. Files that fail to load are logged and
// skipped.
func LoadFolders(imageDir, annotationDir string, log logrus.FieldLogger) (Load, error) {
	imgPaths, annPaths, err := ScanDir(imageDir)
	if err != nil {
		return Load{}, err
	}
	if annotationDir != "" && annotationDir != imageDir {
		if _, annPaths, err = ScanDir(annotationDir); err != nil {
			return Load{}, err
		}
	}
	if len(imgPaths) == 0 && len(annPaths) == 0 {
		return Load{}, ErrNoFilesSelected
	}

	load := Load{Images: image.LoadAll(imgPaths, log)}
	for _, p := range annPaths {
		files, err := annotation.Load(p, log)
		if err != nil {
			log.WithFields(logrus.Fields{"file": p, "error": err}).Warn("skipping annotation file")
			continue
		}
		load.Files = append(load.Files, files...)
	}
	return load, nil
}
