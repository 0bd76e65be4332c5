package framecodec

// Grid is the macropixel layout of one frame. Cells are numbered in
// row-major order starting at the top-left corner.
type Grid struct {
	Width  int
	Height int
	Size   int
	Cols   int
	Rows   int
}

// Cells returns the number of bits one frame carries.
func (g Grid) Cells() int {
	return g.Cols * g.Rows
}

// Origin returns the top-left pixel of cell.
func (g Grid) Origin(cell int) (x, y int) {
	return (cell % g.Cols) * g.Size, (cell / g.Cols) * g.Size
}

// Frames returns how many frames totalBits occupy. A stream always has at
// least its 32-bit header, so the result is at least 1 for any real stream.
func (g Grid) Frames(totalBits uint64) int {
	cells := uint64(g.Cells())
	return int((totalBits + cells - 1) / cells)
}
