// Command annorender renders annotated images to PNG files without a
// display. With -search it renders one zoomed frame per search result.
package main

import (
	"flag"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strings"

	"ocr-viewer/internal/annotation"
	"ocr-viewer/internal/app"
	"ocr-viewer/internal/image"
	"ocr-viewer/internal/logging"
	"ocr-viewer/internal/render"
	"ocr-viewer/internal/version"

	"github.com/disintegration/imaging"
	"github.com/sirupsen/logrus"
)

func main() {
	imageDir := flag.String("images", "", "Folder with the images")
	annotationDir := flag.String("annotations", "", "Folder with the annotation files (default: -images)")
	outDir := flag.String("out", "rendered", "Output folder for PNG files")
	term := flag.String("search", "", "Render only the matches of this search term")
	fullscreen := flag.Bool("fullscreen", false, "Render with the fullscreen surface metrics")
	width := flag.Float64("width", 1600, "Fullscreen surface width")
	height := flag.Float64("height", 1000, "Fullscreen surface height")
	zoomSteps := flag.Int("zoom-steps", 0, "Zoom in this many steps around the center before rendering each image")
	thumbSize := flag.Int("thumb", 0, "Also write thumbnails fitting this many pixels per side")
	export := flag.String("export", "", "Also write the loaded annotations to this JSON file")
	level := flag.String("log-level", "warn", "Log level")
	showVersion := flag.Bool("version", false, "Print the version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String("annorender"))
		return
	}
	if *imageDir == "" {
		fmt.Println("Usage: annorender -images <dir> [-annotations <dir>] [-out <dir>] [-search <term>] [-fullscreen]")
		os.Exit(1)
	}

	log, err := logging.New(*level, os.Stderr)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	d := app.NewDispatcher(app.NewState(app.DefaultConfig()), log)
	load, err := app.LoadFolders(*imageDir, *annotationDir, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load: %v\n", err)
		os.Exit(1)
	}
	if err := d.Dispatch(load); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load: %v\n", err)
		os.Exit(1)
	}
	state := d.State()
	fmt.Printf("Loaded %d images, %d annotation files (%d annotations)\n",
		state.ImageCount(), state.Annotations().Len(), state.Annotations().Count())

	surface := app.Windowed
	if *fullscreen {
		surface = app.Fullscreen
		mustDispatch(d, app.EnterFullscreen{})
		mustDispatch(d, app.Resize{Surface: app.Fullscreen, W: *width, H: *height})
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create output folder: %v\n", err)
		os.Exit(1)
	}
	r := &renderer{
		d:         d,
		surface:   surface,
		rast:      render.NewRasterizer(color.NRGBA{R: 0xec, G: 0xf0, B: 0xf1, A: 0xff}),
		outDir:    *outDir,
		zoomSteps: *zoomSteps,
		thumbSize: *thumbSize,
		log:       log,
	}

	if *term != "" {
		err = r.renderResults(*term)
	} else {
		err = r.renderImages()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Render failed: %v\n", err)
		os.Exit(1)
	}

	if *export != "" {
		mustDispatch(d, app.Export{Path: *export})
		fmt.Printf("Exported annotations to %s\n", *export)
	}
}

func mustDispatch(d *app.Dispatcher, e app.Event) {
	if err := d.Dispatch(e); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

type renderer struct {
	d         *app.Dispatcher
	surface   app.SurfaceKind
	rast      *render.Rasterizer
	outDir    string
	zoomSteps int
	thumbSize int
	log       logrus.FieldLogger
}

// renderImages writes one frame per loaded image.
func (r *renderer) renderImages() error {
	state := r.d.State()
	for i := 0; i < state.ImageCount(); i++ {
		if i > 0 {
			if err := r.d.Dispatch(app.Navigate{Delta: 1}); err != nil {
				return err
			}
		}
		for z := 0; z < r.zoomSteps; z++ {
			if err := r.d.Dispatch(app.ZoomIn{}); err != nil {
				return err
			}
		}
		img, _ := state.CurrentImage()
		name := annotation.ImageStem(img.Name) + "_annotated.png"
		if err := r.save(name); err != nil {
			return err
		}
		fmt.Printf("%-40s %4d annotations\n", name, len(state.Candidates(i)))
	}
	return nil
}

// renderResults searches for term and writes one zoomed frame per match.
func (r *renderer) renderResults(term string) error {
	if err := r.d.Dispatch(app.Search{Term: term}); err != nil {
		return err
	}
	state := r.d.State()
	results := state.Results()
	fmt.Println(state.SearchInfo())

	for i, res := range results {
		if err := r.d.Dispatch(app.SelectResult{Index: i}); err != nil {
			return err
		}
		name := fmt.Sprintf("%s_result%03d.png", annotation.ImageStem(res.ImageName), i+1)
		if err := r.save(name); err != nil {
			return err
		}
		fmt.Printf("%-40s %-30q %s\n", name, res.Text, annotation.FormatConfidence(res.Confidence))
	}
	return nil
}

func (r *renderer) save(name string) error {
	out := r.rast.Rasterize(r.d.Frame(r.surface))
	path := filepath.Join(r.outDir, name)
	if err := imaging.Save(out, path); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	r.log.WithField("file", path).Debug("frame written")

	if r.thumbSize <= 0 {
		return nil
	}
	frame, err := image.New(name, out)
	if err != nil {
		return err
	}
	thumbPath := filepath.Join(r.outDir, strings.TrimSuffix(name, ".png")+"_thumb.png")
	if err := imaging.Save(frame.Thumbnail(r.thumbSize, r.thumbSize), thumbPath); err != nil {
		return fmt.Errorf("failed to save %s: %w", thumbPath, err)
	}
	return nil
}
