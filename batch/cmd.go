package batch

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"

	"pixelate/imagefile"
	"pixelate/parallel"
	"pixelate/pixel"

	"github.com/alecthomas/kong"
	"github.com/anthonynsimon/bild/blur"
)

type CLICmd struct {
	Scan       string  `help:"Source folder to scan" default:"."`
	Dest       string  `help:"Destination folder for pixelated pictures. Relative to scan dir if not absolute. If same as scan dir, will overwrite source files." default:"pixelated"`
	Resolution int     `help:"Number of grid cells along the longer image axis" short:"r" required:"" env:"PIXELATE_RESOLUTION"`
	Mode       string  `help:"How each cell picks its color" enum:"nearest,average" default:"nearest" env:"PIXELATE_MODE"`
	Square     bool    `help:"Use a square grid instead of matching the image aspect ratio" default:"false"`
	Blur       float64 `help:"Gaussian blur sigma applied before sampling" default:"0"`
}

func (c *CLICmd) Validate(kctx *kong.Context) error {
	scanDir, err := filepath.Abs(c.Scan)
	var info os.FileInfo
	if err == nil {
		if info, err = os.Stat(scanDir); err == nil && !info.IsDir() {
			err = fmt.Errorf("not a directory")
		}
	}
	if err != nil {
		return fmt.Errorf("invalid scan path %q: %w", c.Scan, err)
	}
	c.Scan = scanDir

	if !filepath.IsAbs(c.Dest) {
		c.Dest = filepath.Join(scanDir, c.Dest)
	}

	if c.Resolution < 1 {
		return fmt.Errorf("invalid resolution: %d", c.Resolution)
	}
	if c.Blur < 0 {
		return fmt.Errorf("invalid blur sigma: %g", c.Blur)
	}
	if _, err := pixel.ParseMode(c.Mode); err != nil {
		return err
	}

	return nil
}

// Run pushes every regular file in the scan folder through the stateless
// transform, one pool task per file. Output keeps the source format and the
// source file name.
func (c *CLICmd) Run(pool *parallel.Pool) error {
	mode, err := pixel.ParseMode(c.Mode)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(c.Dest, 0o755); err != nil {
		return fmt.Errorf("unable to create destination folder %q: %w", c.Dest, err)
	}

	files, err := os.ReadDir(c.Scan)
	if err != nil {
		return fmt.Errorf("unable to read folder %q: %w", c.Scan, err)
	}

	var processedCount, errCount atomic.Uint64
	for _, file := range files {
		if file.IsDir() {
			continue
		}

		pool.Do(func(fileName string) func() {
			return func() {
				filePath := filepath.Join(c.Scan, fileName)
				logger := slog.Default().With("file", filePath)

				img, imgType, err := imagefile.Load(filePath)
				if err != nil {
					errCount.Add(1)
					logger.Error("could not load image", "error", err)
					return
				}

				if c.Blur > 0 {
					img = blur.Gaussian(img, c.Blur)
				}

				// workers are occupied by files here, so the transform
				// itself runs serial (nil pool) to avoid queueing row tasks
				// behind file tasks
				out, err := pixel.Transform(img, pixel.Options{
					Resolution: c.Resolution,
					Mode:       mode,
					Square:     c.Square,
				})
				if err != nil {
					errCount.Add(1)
					logger.Error("could not pixelate image", "error", err)
					return
				}

				format := imagefile.EncodableFormat(imgType)
				destName := fileName
				if format != imgType {
					oldExt := filepath.Ext(fileName)
					destName = fmt.Sprintf("%s.%s", fileName[:len(fileName)-len(oldExt)], format)
				}

				if err = imagefile.Save(out, format, c.Dest, destName); err != nil {
					errCount.Add(1)
					logger.Error("could not save image", "dir", c.Dest, "error", err)
					return
				}
				processedCount.Add(1)
			}
		}(file.Name()))
	}

	pool.Wait(true)

	processed := processedCount.Load()
	errors := errCount.Load()
	slog.Info("stats", "processed", processed, "errors", errors,
		"total", processed+errors)

	if errors > 0 {
		return fmt.Errorf("error processing %d files", errors)
	}
	return nil
}
