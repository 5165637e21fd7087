// Package app holds the viewer state, the windowed and fullscreen
// surfaces, and the event loop that applies input to them.
package app

import (
	"errors"
	"fmt"
	"sync"

	"ocr-viewer/internal/annotation"
	"ocr-viewer/internal/image"
)

var (
	// ErrNoFilesSelected is returned when there are no annotation files to work on.
	ErrNoFilesSelected = errors.New("please select annotation files first")
	// ErrNoImages is returned when a load carries no images.
	ErrNoImages = errors.New("no images loaded")
	// ErrNoResults is returned when selecting a result that does not exist.
	ErrNoResults = errors.New("no such search result")
)

// State holds the loaded images and annotations, the search results and
// the current positions in both lists. It is written only by the
// Dispatcher; accessors are safe to call from other goroutines.
type State struct {
	mu sync.RWMutex

	Config Config

	images        []*image.Image
	annotations   *annotation.Collection
	results       []annotation.Result
	searched      bool
	currentImage  int
	currentResult int

	// Event listeners
	listeners map[EventType][]EventListener
}

// EventType identifies different application events.
type EventType int

const (
	EventFilesLoaded EventType = iota
	EventImageChanged
	EventSearchChanged
	EventResultSelected
	EventSelectionChanged
	EventAnnotationEdited
	EventZoomChanged
	EventSurfaceChanged
	EventFocusSearch
	EventExported
	EventError
)

// EventListener is called when an event occurs.
type EventListener func(data interface{})

// NewState creates an empty application state.
func NewState(cfg Config) *State {
	return &State{
		Config:        cfg,
		annotations:   annotation.NewCollection(),
		currentResult: -1,
		listeners:     make(map[EventType][]EventListener),
	}
}

// On registers an event listener for the specified event type.
func (s *State) On(event EventType, listener EventListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners[event] = append(s.listeners[event], listener)
}

// Emit triggers all listeners for the specified event type.
func (s *State) Emit(event EventType, data interface{}) {
	s.mu.RLock()
	listeners := s.listeners[event]
	s.mu.RUnlock()

	for _, listener := range listeners {
		listener(data)
	}
}

// setFiles replaces the loaded data set and drops search state.
func (s *State) setFiles(images []*image.Image, files []annotation.File) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.images = images
	s.annotations = annotation.NewCollection(files...)
	s.results = nil
	s.searched = false
	s.currentImage = 0
	s.currentResult = -1
}

// Images returns the loaded images in load order.
func (s *State) Images() []*image.Image {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*image.Image(nil), s.images...)
}

// ImageNames returns the names of the loaded images in load order.
func (s *State) ImageNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return image.Names(s.images)
}

// ImageCount returns the number of loaded images.
func (s *State) ImageCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.images)
}

// Annotations returns the annotation store.
func (s *State) Annotations() *annotation.Collection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.annotations
}

// CurrentImageIndex returns the index of the displayed image.
func (s *State) CurrentImageIndex() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentImage
}

// CurrentImage returns the displayed image.
func (s *State) CurrentImage() (*image.Image, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.currentImage < 0 || s.currentImage >= len(s.images) {
		return nil, false
	}
	return s.images[s.currentImage], true
}

func (s *State) setCurrentImage(i int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.images) {
		return false
	}
	s.currentImage = i
	return true
}

// Results returns the current search results.
func (s *State) Results() []annotation.Result {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]annotation.Result(nil), s.results...)
}

// CurrentResultIndex returns the selected result, or -1.
func (s *State) CurrentResultIndex() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentResult
}

func (s *State) setResults(results []annotation.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = results
	s.searched = results != nil
	s.currentResult = -1
}

func (s *State) result(i int) (annotation.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.results) {
		return annotation.Result{}, fmt.Errorf("result %d: %w", i, ErrNoResults)
	}
	s.currentResult = i
	return s.results[i], nil
}

// Candidates returns the annotations of image i in list order. Images
// without a matching annotation file have none.
func (s *State) Candidates(i int) []annotation.Handle {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i < 0 || i >= len(s.images) {
		return nil
	}
	return s.annotations.Handles(s.annotations.ForImage(s.images[i].Name))
}

// Hits returns the search results that fall on image i.
func (s *State) Hits(i int) map[annotation.Handle]bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	hits := make(map[annotation.Handle]bool)
	for _, r := range s.results {
		if r.ImageIndex == i {
			hits[r.Handle] = true
		}
	}
	return hits
}

// NavigationLabel renders the image counter, "i / n".
func (s *State) NavigationLabel() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.images) == 0 {
		return "No images loaded"
	}
	return fmt.Sprintf("%d / %d", s.currentImage+1, len(s.images))
}

// CanNavigate reports whether previous and next images exist.
func (s *State) CanNavigate() (prev, next bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentImage > 0, s.currentImage < len(s.images)-1
}

// SearchInfo renders the search status line.
func (s *State) SearchInfo() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.searched {
		return "Ready to search"
	}
	return annotation.Summary(s.results)
}

// ResultPosition renders "Showing result i of N", or "" with no selection.
func (s *State) ResultPosition() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.currentResult < 0 || s.currentResult >= len(s.results) {
		return ""
	}
	return fmt.Sprintf("Showing result %d of %d", s.currentResult+1, len(s.results))
}
