package convert

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"pixelate/imagefile"
	"pixelate/parallel"
	"pixelate/pixel"

	"github.com/alecthomas/kong"
	"github.com/anthonynsimon/bild/blur"
)

type CLICmd struct {
	Input      string  `help:"Source image file" short:"i" required:"" env:"PIXELATE_INPUT"`
	Output     string  `help:"Destination file. Derived from the input name if not given" short:"o"`
	Resolution int     `help:"Number of grid cells along the longer image axis" short:"r" required:"" env:"PIXELATE_RESOLUTION"`
	Mode       string  `help:"How each cell picks its color" enum:"nearest,average" default:"nearest" short:"m" env:"PIXELATE_MODE"`
	Square     bool    `help:"Use a square grid instead of matching the image aspect ratio" default:"false"`
	Width      int     `help:"Output width. Defaults to the source width" default:"0"`
	Height     int     `help:"Output height. Defaults to the source height" default:"0"`
	Blur       float64 `help:"Gaussian blur sigma applied before sampling" default:"0"`
	Format     string  `help:"Output format" enum:"same,gif,jpeg,png,bmp,tiff" default:"same"`
}

func (c *CLICmd) Validate(kctx *kong.Context) error {
	info, err := os.Stat(c.Input)
	if err != nil {
		return fmt.Errorf("invalid input path %q: %w", c.Input, err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("input %q is not a regular file", c.Input)
	}

	if c.Resolution < 1 {
		return fmt.Errorf("invalid resolution: %d", c.Resolution)
	}
	if (c.Width < 0) || (c.Height < 0) {
		return fmt.Errorf("invalid output size: %dx%d", c.Width, c.Height)
	}
	if c.Blur < 0 {
		return fmt.Errorf("invalid blur sigma: %g", c.Blur)
	}

	return nil
}

func (c *CLICmd) Run(pool *parallel.Pool) error {
	mode, err := pixel.ParseMode(c.Mode)
	if err != nil {
		return err
	}

	logger := slog.Default().With("file", c.Input)

	img, imgType, err := imagefile.Load(c.Input)
	if err != nil {
		return err
	}

	if c.Blur > 0 {
		logger.Info("blurring", "sigma", c.Blur)
		img = blur.Gaussian(img, c.Blur)
	}

	logger.Info("pixelating", "resolution", c.Resolution, "mode", mode)
	out, err := pixel.Transform(img, pixel.Options{
		Resolution: c.Resolution,
		Mode:       mode,
		Square:     c.Square,
		Width:      c.Width,
		Height:     c.Height,
		Pool:       pool,
	})
	if err != nil {
		return err
	}

	format := c.Format
	if format == "same" {
		format = imagefile.EncodableFormat(imgType)
	}

	output := c.Output
	if output == "" {
		output = defaultOutputName(c.Input, c.Resolution, mode, format)
	}

	destDir := filepath.Dir(output)
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return fmt.Errorf("unable to create destination folder %q: %w", destDir, err)
	}

	if err := imagefile.Save(out, format, destDir, filepath.Base(output)); err != nil {
		return err
	}

	logger.Info("saved", "output", output)
	return nil
}

// defaultOutputName derives "<stem>_res<N>_<mode>.<format>" next to the
// input file.
func defaultOutputName(input string, resolution int, mode pixel.Mode, format string) string {
	base := filepath.Base(input)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	name := fmt.Sprintf("%s_res%d_%s.%s", stem, resolution, mode, format)
	return filepath.Join(filepath.Dir(input), name)
}
