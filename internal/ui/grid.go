package ui

// gridLayout is the poster grid geometry for the current terminal size.
type gridLayout struct {
	cols   int
	rows   int
	thumbW int
	thumbH int
}

func computeGrid(width, height, thumbW, thumbH int) gridLayout {
	if thumbW <= 0 {
		thumbW = DefaultThumbWidth
	}
	if thumbH <= 0 {
		thumbH = DefaultThumbHeight
	}
	// Shrink the thumbnail on tiny terminals so at least one card fits.
	thumbW = clamp(thumbW, 1, maxInt(1, width-cardPadX))
	thumbH = clamp(thumbH, 1, maxInt(1, height-chromeRows-cardPadY))
	return gridLayout{
		cols:   maxInt(1, width/(thumbW+cardPadX)),
		rows:   maxInt(1, (height-chromeRows)/(thumbH+cardPadY)),
		thumbW: thumbW,
		thumbH: thumbH,
	}
}

func (g gridLayout) pageSize() int {
	return g.cols * g.rows
}

// window scrolls by whole rows so selected stays on screen. It returns the
// new first visible row and the half-open item range [start, end).
func (g gridLayout) window(total, selected, offset int) (int, int, int) {
	if total <= 0 {
		return 0, 0, 0
	}
	selected = clamp(selected, 0, total-1)
	lastRow := (total - 1) / g.cols
	row := selected / g.cols

	if row < offset {
		offset = row
	}
	if row >= offset+g.rows {
		offset = row - g.rows + 1
	}
	offset = clamp(offset, 0, maxInt(0, lastRow-g.rows+1))

	start := offset * g.cols
	end := minInt(total, start+g.pageSize())
	return offset, start, end
}

// move applies a cursor delta and clamps it to the item range.
func move(selected, delta, total int) int {
	if total <= 0 {
		return 0
	}
	return clamp(selected+delta, 0, total-1)
}
