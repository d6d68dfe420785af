package pixel

import (
	"fmt"
	"image"
	"image/color"

	"pixelate/parallel"
)

// Options control a single Transform call.
type Options struct {
	// Resolution is the number of grid cells along the longer image axis.
	Resolution int
	// Mode selects how each cell picks its representative color.
	Mode Mode
	// Square forces a Resolution x Resolution grid instead of scaling the
	// shorter axis to preserve the image aspect ratio.
	Square bool
	// Width and Height override the output size. Zero means source size.
	Width, Height int
	// Pool, when set, runs the upscale stage row-partitioned across its
	// workers. Leave nil when the caller already holds a pool worker.
	Pool *parallel.Pool
}

// Transform downsamples img onto a coarse virtual grid and expands every
// cell back into a solid block. The result has the source dimensions unless
// Options overrides them. Pure function of (img, opts), no I/O.
func Transform(img image.Image, opts Options) (image.Image, error) {
	if img == nil {
		return nil, fmt.Errorf("%w: no image", ErrInvalidImage)
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width < 1 || height < 1 {
		return nil, fmt.Errorf("%w: %dx%d has no pixels", ErrInvalidImage, width, height)
	}

	if opts.Resolution < 1 {
		return nil, fmt.Errorf("%w: resolution must be positive, got %d", ErrInvalidParameter, opts.Resolution)
	}
	if opts.Width < 0 || opts.Height < 0 {
		return nil, fmt.Errorf("%w: negative output size %dx%d", ErrInvalidParameter, opts.Width, opts.Height)
	}

	switch opts.Mode {
	case ModeNearest, ModeAverage:
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedMode, opts.Mode)
	}

	g := makeGrid(width, height, opts.Resolution, opts.Square)
	table := downsample(img, g, opts.Mode)

	outWidth, outHeight := opts.Width, opts.Height
	if outWidth == 0 {
		outWidth = width
	}
	if outHeight == 0 {
		outHeight = height
	}

	return upsample(table, g, outWidth, outHeight, opts.Pool), nil
}

// downsample computes one representative color per grid cell.
func downsample(img image.Image, g grid, mode Mode) []color.NRGBA {
	table := make([]color.NRGBA, g.cellsX*g.cellsY)
	origin := img.Bounds().Min

	for cy := range g.cellsY {
		y0, y1 := g.spanY(cy)
		for cx := range g.cellsX {
			x0, x1 := g.spanX(cx)

			var c color.NRGBA
			switch mode {
			case ModeNearest:
				// (x0+x1)/2 is the round-half-up of the cell center in
				// pixel-index space, (x0+x1-1)/2.0, and always lands inside
				// the cell.
				px, py := (x0+x1)/2, (y0+y1)/2
				c = color.NRGBAModel.Convert(img.At(origin.X+px, origin.Y+py)).(color.NRGBA)
			case ModeAverage:
				var rSum, gSum, bSum, aSum, n uint64
				for y := y0; y < y1; y++ {
					for x := x0; x < x1; x++ {
						p := color.NRGBAModel.Convert(img.At(origin.X+x, origin.Y+y)).(color.NRGBA)
						rSum += uint64(p.R)
						gSum += uint64(p.G)
						bSum += uint64(p.B)
						aSum += uint64(p.A)
						n++
					}
				}
				// round half up, so the mid-gray mean of a black and white
				// checkerboard comes out as 128
				c = color.NRGBA{
					R: uint8((rSum + n/2) / n),
					G: uint8((gSum + n/2) / n),
					B: uint8((bSum + n/2) / n),
					A: uint8((aSum + n/2) / n),
				}
			}

			table[cy*g.cellsX+cx] = c
		}
	}

	return table
}

// upsample paints every output pixel with the color of the cell it falls
// into. Output rows are independent, so when a pool is given the row range
// is partitioned across its workers with no shared writes.
func upsample(table []color.NRGBA, g grid, outWidth, outHeight int, pool *parallel.Pool) *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, outWidth, outHeight))
	baseW := max(outWidth/g.cellsX, 1)
	baseH := max(outHeight/g.cellsY, 1)

	paint := func(yFrom, yTo int) {
		for y := yFrom; y < yTo; y++ {
			row := cellIndex(y, baseH, g.cellsY) * g.cellsX
			off := dst.PixOffset(0, y)
			for x := range outWidth {
				c := table[row+cellIndex(x, baseW, g.cellsX)]
				dst.Pix[off] = c.R
				dst.Pix[off+1] = c.G
				dst.Pix[off+2] = c.B
				dst.Pix[off+3] = c.A
				off += 4
			}
		}
	}

	if pool == nil || pool.Workers < 2 || outHeight < 2*pool.Workers {
		paint(0, outHeight)
		return dst
	}

	chunk := (outHeight + pool.Workers - 1) / pool.Workers
	tasks := make([]func(), 0, pool.Workers)
	for y := 0; y < outHeight; y += chunk {
		yFrom, yTo := y, min(y+chunk, outHeight)
		tasks = append(tasks, func() { paint(yFrom, yTo) })
	}
	pool.Join(tasks)

	return dst
}
