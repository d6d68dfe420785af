package imagefile

import (
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/vp8l"
	_ "golang.org/x/image/webp"
)

var (
	ErrDecode = errors.New("decode error")
	ErrEncode = errors.New("encode error")
)

// Load decodes the image at path and reports the format it was stored in.
func Load(path string) (image.Image, string, error) {
	imgFile, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("could not open image %q: %w", path, err)
	}
	defer func() {
		if close_err := imgFile.Close(); close_err != nil {
			slog.Error("could not close image", "file", path, "error", close_err)
		}
	}()

	img, imgType, err := image.Decode(imgFile)
	if err != nil {
		return nil, "", fmt.Errorf("%w: could not decode %q: %w", ErrDecode, path, err)
	}

	return img, imgType, nil
}

// Save encodes img in the given format as destDir/destName. The image is
// written to a temporary file first and only renamed into place after a
// complete encode, so a failure never leaves a partial output behind.
func Save(img image.Image, format, destDir, destName string) (err error) {
	outFile, err := os.CreateTemp(destDir, destName)
	if err != nil {
		return fmt.Errorf("could not create temporary destination %q: %w", destName, err)
	}
	canRename := false
	defer func() {
		if defErr := outFile.Sync(); defErr != nil && canRename {
			err = fmt.Errorf("could not flush temporary destination %q: %w", destName, defErr)
			canRename = false
		}
		if defErr := outFile.Close(); defErr != nil && canRename {
			err = fmt.Errorf("could not close temporary destination %q: %w", destName, defErr)
			canRename = false
		}

		if canRename {
			if defErr := os.Rename(outFile.Name(), filepath.Join(destDir, destName)); defErr != nil {
				err = fmt.Errorf("could not rename destination file %q: %w", destName, defErr)
			}
		} else if defErr := os.Remove(outFile.Name()); defErr != nil {
			slog.Error("could not remove temporary destination", "name", outFile.Name(), "error", defErr)
		}
	}()

	switch format {
	case "gif":
		if err = gif.Encode(outFile, img, nil); err != nil {
			return fmt.Errorf("%w: could not encode GIF destination %q: %w", ErrEncode, destName, err)
		}
	case "jpeg":
		if err = jpeg.Encode(outFile, img, &jpeg.Options{Quality: 100}); err != nil {
			return fmt.Errorf("%w: could not encode JPEG destination %q: %w", ErrEncode, destName, err)
		}
	case "png":
		enc := png.Encoder{
			CompressionLevel: png.BestCompression,
			BufferPool:       pngPool,
		}
		if err = enc.Encode(outFile, img); err != nil {
			return fmt.Errorf("%w: could not encode PNG destination %q: %w", ErrEncode, destName, err)
		}
	case "bmp":
		if err = bmp.Encode(outFile, img); err != nil {
			return fmt.Errorf("%w: could not encode BMP destination %q: %w", ErrEncode, destName, err)
		}
	case "tiff":
		if err = tiff.Encode(outFile, img, nil); err != nil {
			return fmt.Errorf("%w: could not encode TIFF destination %q: %w", ErrEncode, destName, err)
		}
	default:
		return fmt.Errorf("%w: unsupported output format: %s", ErrEncode, format)
	}

	canRename = true
	return err
}

// EncodableFormat maps a decoded image type to a format Save can write.
// Decode-only formats (webp, vp8l) fall back to png.
func EncodableFormat(imgType string) string {
	switch imgType {
	case "gif", "jpeg", "png", "bmp", "tiff":
		return imgType
	}
	return "png"
}

type pngEncoderBufferPool struct {
	pool sync.Pool
}

func (p *pngEncoderBufferPool) Get() *png.EncoderBuffer {
	return p.pool.Get().(*png.EncoderBuffer)
}

func (p *pngEncoderBufferPool) Put(buf *png.EncoderBuffer) {
	p.pool.Put(buf)
}

var pngPool = &pngEncoderBufferPool{
	pool: sync.Pool{
		New: func() any {
			return &png.EncoderBuffer{}
		},
	},
}
