package convert

import (
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"pixelate/imagefile"
	"pixelate/parallel"
	"pixelate/pixel"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeTestImage(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8((x * 29) ^ (y * 3)),
				G: uint8(x * 5),
				B: uint8(y * 7),
				A: 255,
			})
		}
	}
	return img
}

func TestDefaultOutputName(t *testing.T) {
	got := defaultOutputName(filepath.Join("pics", "cat.jpg"), 16, pixel.ModeNearest, "jpeg")
	assert.Equal(t, filepath.Join("pics", "cat_res16_nearest.jpeg"), got)

	got = defaultOutputName("noext", 3, pixel.ModeAverage, "png")
	assert.Equal(t, "noext_res3_average.png", got)
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "in.png")
	require.NoError(t, imagefile.Save(makeTestImage(8, 8), "png", dir, "in.png"))

	cmd := CLICmd{Input: input, Resolution: 4}
	assert.NoError(t, cmd.Validate(nil))

	cmd = CLICmd{Input: filepath.Join(dir, "missing.png"), Resolution: 4}
	assert.Error(t, cmd.Validate(nil))

	cmd = CLICmd{Input: input, Resolution: 0}
	assert.Error(t, cmd.Validate(nil))

	cmd = CLICmd{Input: input, Resolution: 4, Blur: -1}
	assert.Error(t, cmd.Validate(nil))

	cmd = CLICmd{Input: input, Resolution: 4, Width: -2}
	assert.Error(t, cmd.Validate(nil))
}

func TestRunWritesDerivedOutput(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, imagefile.Save(makeTestImage(20, 10), "png", dir, "in.png"))

	cmd := CLICmd{
		Input:      filepath.Join(dir, "in.png"),
		Resolution: 4,
		Mode:       "nearest",
		Format:     "same",
	}

	pool := parallel.Start(2)
	err := cmd.Run(pool)
	pool.Wait(true)
	require.NoError(t, err)

	img, imgType, err := imagefile.Load(filepath.Join(dir, "in_res4_nearest.png"))
	require.NoError(t, err)
	assert.Equal(t, "png", imgType)
	assert.Equal(t, image.Rect(0, 0, 20, 10), img.Bounds())
}

func TestRunHonorsExplicitOutputAndSize(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, imagefile.Save(makeTestImage(10, 10), "png", dir, "in.png"))

	output := filepath.Join(dir, "out", "small.bmp")
	cmd := CLICmd{
		Input:      filepath.Join(dir, "in.png"),
		Output:     output,
		Resolution: 2,
		Mode:       "average",
		Format:     "bmp",
		Width:      6,
		Height:     6,
	}

	pool := parallel.Start(1)
	err := cmd.Run(pool)
	pool.Wait(true)
	require.NoError(t, err)

	img, imgType, err := imagefile.Load(output)
	require.NoError(t, err)
	assert.Equal(t, "bmp", imgType)
	assert.Equal(t, image.Rect(0, 0, 6, 6), img.Bounds())
}

func TestRunRejectsUnparsableMode(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, imagefile.Save(makeTestImage(8, 8), "png", dir, "in.png"))

	cmd := CLICmd{Input: filepath.Join(dir, "in.png"), Resolution: 2, Mode: "bilinear"}
	pool := parallel.Start(1)
	err := cmd.Run(pool)
	pool.Wait(true)
	require.ErrorIs(t, err, pixel.ErrUnsupportedMode)
}
