// Package prefs persists viewer preferences as a JSON key/value file.
package prefs

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"ocr-viewer/internal/app"
)

const prefsFile = "preferences.json"

// Preference keys.
const (
	KeyHandleSize        = "handle_size"
	KeyZoomStep          = "zoom_step"
	KeyHighlightSeconds  = "highlight_seconds"
	KeyLastImageDir      = "last_image_dir"
	KeyLastAnnotationDir = "last_annotation_dir"
	KeyLastExportDir     = "last_export_dir"
	KeyLogLevel          = "log_level"
)

// Prefs stores application preferences as a key-value map.
type Prefs struct {
	mu     sync.RWMutex
	values map[string]interface{}
	path   string
}

// DefaultPath returns ~/.config/ocr-viewer/preferences.json or the
// platform equivalent.
func DefaultPath() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return filepath.Join(configDir, "ocr-viewer", prefsFile)
}

// Load reads preferences from DefaultPath.
func Load() *Prefs {
	return Open(DefaultPath())
}

// Open reads preferences from path. A missing or unreadable file yields
// empty preferences that will be written to path on Save.
func Open(path string) *Prefs {
	p := &Prefs{
		values: make(map[string]interface{}),
		path:   path,
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return p
	}
	_ = json.Unmarshal(data, &p.values)
	return p
}

// Path returns the file the preferences are saved to.
func (p *Prefs) Path() string { return p.path }

// Save writes preferences to disk.
func (p *Prefs) Save() error {
	p.mu.RLock()
	data, err := json.MarshalIndent(p.values, "", "  ")
	p.mu.RUnlock()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(p.path), 0o755); err != nil {
		return fmt.Errorf("failed to create preferences dir: %w", err)
	}
	return os.WriteFile(p.path, data, 0o644)
}

// FloatWithFallback returns a float64 preference, or fallback if not set.
func (p *Prefs) FloatWithFallback(key string, fallback float64) float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if n, ok := p.values[key].(float64); ok {
		return n
	}
	return fallback
}

// SetFloat stores a float64 preference.
func (p *Prefs) SetFloat(key string, val float64) {
	p.mu.Lock()
	p.values[key] = val
	p.mu.Unlock()
}

// String returns a string preference, or "" if not set.
func (p *Prefs) String(key string) string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	s, _ := p.values[key].(string)
	return s
}

// SetString stores a string preference.
func (p *Prefs) SetString(key string, val string) {
	p.mu.Lock()
	p.values[key] = val
	p.mu.Unlock()
}

// Apply overlays the stored viewer settings onto cfg. Values that would
// make the configuration invalid are ignored.
func (p *Prefs) Apply(cfg app.Config) app.Config {
	out := cfg
	out.HandleSize = p.FloatWithFallback(KeyHandleSize, cfg.HandleSize)
	out.Viewport.ZoomStep = p.FloatWithFallback(KeyZoomStep, cfg.Viewport.ZoomStep)
	secs := p.FloatWithFallback(KeyHighlightSeconds, cfg.HighlightDuration.Seconds())
	out.HighlightDuration = time.Duration(secs * float64(time.Second))
	if out.Validate() != nil {
		return cfg
	}
	return out
}

// Remember stores the viewer settings of cfg.
func (p *Prefs) Remember(cfg app.Config) {
	p.SetFloat(KeyHandleSize, cfg.HandleSize)
	p.SetFloat(KeyZoomStep, cfg.Viewport.ZoomStep)
	p.SetFloat(KeyHighlightSeconds, cfg.HighlightDuration.Seconds())
}
