package image

import (
	goimage "image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePNG(t *testing.T, dir, name string, w, h int) string {
	t.Helper()
	img := goimage.NewRGBA(goimage.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
	return path
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := writePNG(t, dir, "page_1.png", 30, 20)

	img, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "page_1.png", img.Name)
	assert.Equal(t, path, img.Path)
	assert.Equal(t, 30, img.Width)
	assert.Equal(t, 20, img.Height)
	assert.Equal(t, 30.0, img.Size().Width)
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.png"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open image")
}

func TestNewRejectsEmpty(t *testing.T) {
	_, err := New("x.png", goimage.NewRGBA(goimage.Rect(0, 0, 0, 5)))
	assert.ErrorIs(t, err, ErrEmptyImage)
	_, err = New("x.png", nil)
	assert.ErrorIs(t, err, ErrEmptyImage)
}

func TestLoadAllKeepsOrder(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		writePNG(t, dir, "c.png", 3, 3),
		filepath.Join(dir, "missing.png"),
		writePNG(t, dir, "a.png", 1, 1),
		writePNG(t, dir, "b.png", 2, 2),
	}
	log, hook := test.NewNullLogger()

	imgs := LoadAll(paths, log)
	assert.Equal(t, []string{"c.png", "a.png", "b.png"}, Names(imgs))
	require.Len(t, hook.AllEntries(), 1)
	assert.Equal(t, paths[1], hook.LastEntry().Data["file"])
}

func TestThumbnail(t *testing.T) {
	img, err := New("wide.png", goimage.NewRGBA(goimage.Rect(0, 0, 200, 100)))
	require.NoError(t, err)
	th := img.Thumbnail(50, 50)
	assert.Equal(t, goimage.Rect(0, 0, 50, 25), th.Bounds())
}
