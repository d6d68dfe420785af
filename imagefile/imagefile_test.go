package imagefile

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeTestImage(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8(x * 16),
				G: uint8(y * 16),
				B: uint8(x + y),
				A: 255,
			})
		}
	}
	return img
}

func TestSaveThenLoad(t *testing.T) {
	for _, format := range []string{"png", "bmp"} {
		t.Run(format, func(t *testing.T) {
			dir := t.TempDir()
			name := "out." + format

			require.NoError(t, Save(makeTestImage(12, 8), format, dir, name))

			img, imgType, err := Load(filepath.Join(dir, name))
			require.NoError(t, err)
			assert.Equal(t, format, imgType)
			assert.Equal(t, image.Rect(0, 0, 12, 8), img.Bounds())
		})
	}
}

func TestSaveUnsupportedFormatLeavesNoFile(t *testing.T) {
	dir := t.TempDir()

	err := Save(makeTestImage(4, 4), "webp", dir, "out.webp")
	require.ErrorIs(t, err, ErrEncode)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestLoadRejectsGarbage(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "junk.png")
	require.NoError(t, os.WriteFile(path, []byte("not an image at all"), 0o644))

	_, _, err := Load(path)
	require.ErrorIs(t, err, ErrDecode)
}

func TestLoadMissingFile(t *testing.T) {
	_, _, err := Load(filepath.Join(t.TempDir(), "nope.png"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrDecode)
}

func TestEncodableFormat(t *testing.T) {
	assert.Equal(t, "jpeg", EncodableFormat("jpeg"))
	assert.Equal(t, "tiff", EncodableFormat("tiff"))
	assert.Equal(t, "png", EncodableFormat("webp"))
	assert.Equal(t, "png", EncodableFormat("vp8l"))
}
