package pixel

// grid is the virtual cell grid overlaid on the source image. Cells are
// base-sized with the last cell on each axis absorbing the remainder, so no
// border pixel is ever left unassigned.
type grid struct {
	width, height  int
	cellsX, cellsY int
	baseW, baseH   int
}

func makeGrid(width, height, resolution int, square bool) grid {
	cellsX, cellsY := resolution, resolution
	if !square {
		// resolution counts cells along the longer axis, the shorter axis
		// gets a proportional count rounded half up, never below one.
		if width >= height {
			cellsY = max((resolution*height+width/2)/width, 1)
		} else {
			cellsX = max((resolution*width+height/2)/height, 1)
		}
	}

	// a finer grid than the image itself degenerates to one-pixel cells
	cellsX = min(cellsX, width)
	cellsY = min(cellsY, height)

	return grid{
		width:  width,
		height: height,
		cellsX: cellsX,
		cellsY: cellsY,
		baseW:  width / cellsX,
		baseH:  height / cellsY,
	}
}

func (g grid) spanX(i int) (x0, x1 int) {
	x0 = i * g.baseW
	x1 = x0 + g.baseW
	if i == g.cellsX-1 {
		x1 = g.width
	}
	return x0, x1
}

func (g grid) spanY(i int) (y0, y1 int) {
	y0 = i * g.baseH
	y1 = y0 + g.baseH
	if i == g.cellsY-1 {
		y1 = g.height
	}
	return y0, y1
}

// cellIndex maps a coordinate to its cell by integer division on the base
// cell size, clamped to the last cell. A float floor of x/(dim/cells) would
// shift the remainder into the first cell instead of the last one and
// misalign the assignment with spanX/spanY.
func cellIndex(x, base, cells int) int {
	i := x / base
	if i >= cells {
		i = cells - 1
	}
	return i
}
