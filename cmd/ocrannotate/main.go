// Command ocrannotate runs Tesseract over a folder of images and writes
// one annotation file per image, named so the viewer pairs them.
//
// Usage: ocrannotate -images <dir> [-out <dir>] [options]
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"ocr-viewer/internal/annotation"
	"ocr-viewer/internal/app"
	"ocr-viewer/internal/logging"
	"ocr-viewer/internal/ocr"
	"ocr-viewer/internal/version"
)

var (
	flagImages        = flag.String("images", "", "Folder with the images to recognize")
	flagOut           = flag.String("out", "", "Output folder for annotation files (default: -images)")
	flagLang          = flag.String("lang", "eng", "Tesseract language")
	flagWhitelist     = flag.String("whitelist", "", "Only recognize these characters")
	flagMinConfidence = flag.Float64("min-confidence", 0.3, "Drop words below this confidence (0-1)")
	flagNoPreprocess  = flag.Bool("no-preprocess", false, "Skip grayscale, CLAHE and threshold")
	flagMinHeight     = flag.Int("min-height", 150, "Upscale images shorter than this")
	flagOverwrite     = flag.Bool("overwrite", false, "Replace existing annotation files")
	flagLogLevel      = flag.String("log-level", "info", "Log level")
	flagVersion       = flag.Bool("version", false, "Print the version and exit")
)

func main() {
	flag.Parse()

	if *flagVersion {
		fmt.Println(version.String("ocrannotate"))
		return
	}
	if *flagImages == "" {
		fmt.Println("Usage: ocrannotate -images <dir> [-out <dir>] [-lang eng] [-min-confidence 0.3]")
		os.Exit(1)
	}
	out := *flagOut
	if out == "" {
		out = *flagImages
	}

	log, err := logging.New(*flagLogLevel, os.Stderr)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	images, _, err := app.ScanDir(*flagImages)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	if len(images) == 0 {
		fmt.Fprintf(os.Stderr, "No images in %s\n", *flagImages)
		os.Exit(1)
	}
	if err := os.MkdirAll(out, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create output folder: %v\n", err)
		os.Exit(1)
	}

	opts := ocr.DefaultOptions()
	opts.Language = *flagLang
	opts.Whitelist = *flagWhitelist
	opts.MinConfidence = *flagMinConfidence
	opts.Preprocess = !*flagNoPreprocess
	opts.MinHeight = *flagMinHeight

	engine, err := ocr.NewEngine(opts, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start OCR: %v\n", err)
		os.Exit(1)
	}
	defer engine.Close()

	failed := 0
	for i, path := range images {
		target := filepath.Join(out, annotation.FileNameFor(filepath.Base(path)))
		fmt.Printf("[%d/%d] %s\n", i+1, len(images), filepath.Base(path))
		if !*flagOverwrite {
			if _, err := os.Stat(target); err == nil {
				fmt.Printf("  exists, skipping %s\n", target)
				continue
			}
		}

		start := time.Now()
		file, err := engine.RecognizeFile(path)
		if err != nil {
			fmt.Printf("  ERROR: %v\n", err)
			failed++
			continue
		}
		if err := annotation.SaveRecords(target, file.Data); err != nil {
			fmt.Printf("  ERROR: %v\n", err)
			failed++
			continue
		}
		fmt.Printf("  %d words -> %s (%s)\n", len(file.Data), target, time.Since(start).Round(time.Millisecond))
	}

	if failed > 0 {
		fmt.Printf("\n%d of %d images failed\n", failed, len(images))
		os.Exit(1)
	}
}
