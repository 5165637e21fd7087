// Package main provides the entry point for the OCR Viewer application.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"ocr-viewer/internal/app"
	"ocr-viewer/internal/logging"
	"ocr-viewer/internal/version"
	"ocr-viewer/ui/mainwindow"
	"ocr-viewer/ui/prefs"

	fyneapp "fyne.io/fyne/v2/app"
)

const appID = "io.github.ocrviewer"

func main() {
	level := flag.String("log-level", "", "log level (debug, info, warn, error)")
	showVersion := flag.Bool("version", false, "print the version and exit")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] [folder]\n\n", os.Args[0])
		fmt.Fprintln(os.Stderr, "Opens the viewer, loading images and annotations from folder if given.")
		flag.PrintDefaults()
	}
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String("ocr-viewer"))
		return
	}

	appPrefs := prefs.Load()
	if *level == "" {
		*level = appPrefs.String(prefs.KeyLogLevel)
	}
	log, err := logging.New(*level, os.Stderr)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	log.WithField("version", version.Version).Info("starting ocr-viewer")

	cfg := appPrefs.Apply(app.DefaultConfig())
	state := app.NewState(cfg)
	dispatcher := app.NewDispatcher(state, log)

	fyneApp := fyneapp.NewWithID(appID)
	fyneApp.Settings().SetTheme(&mainwindow.ViewerTheme{})

	win := mainwindow.New(fyneApp, dispatcher, appPrefs, log)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		if err := dispatcher.Run(ctx); err != nil && ctx.Err() == nil {
			log.WithError(err).Error("dispatcher stopped")
		}
	}()

	if flag.NArg() > 0 {
		win.OpenFolder(flag.Arg(0))
	}

	fyneApp.Lifecycle().SetOnStopped(func() {
		appPrefs.Remember(cfg)
		if err := appPrefs.Save(); err != nil {
			log.WithError(err).Warn("failed to save preferences")
		}
	})

	win.ShowAndRun()
	cancel()
}
