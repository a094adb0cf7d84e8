package terminal

import "fmt"

// Cell represents a single terminal cell
type Cell struct {
	Rune rune
	Fg   RGB
	Bg   RGB
}

// DefaultCell is a blank white-on-black cell
var DefaultCell = Cell{Rune: ' ', Fg: White, Bg: Black}

// Patch is a single-cell difference between two frames, carrying the new value
type Patch struct {
	Cell Cell
	X    int
	Y    int
}

// Grid is a fixed-size row-major cell buffer: cells[y*width + x]
// Writes outside the grid are dropped, the grid never resizes
type Grid struct {
	cells  []Cell
	width  int
	height int
}

// NewGrid creates a grid filled with DefaultCell
func NewGrid(width, height int) *Grid {
	width = max(width, 0)
	height = max(height, 0)
	g := &Grid{
		cells:  make([]Cell, width*height),
		width:  width,
		height: height,
	}
	g.Clear()
	return g
}

// Width returns the number of columns
func (g *Grid) Width() int { return g.width }

// Height returns the number of rows
func (g *Grid) Height() int { return g.height }

// Cells exposes the backing slice, row-major
func (g *Grid) Cells() []Cell { return g.cells }

// At returns the cell at (x, y), DefaultCell when out of bounds
func (g *Grid) At(x, y int) Cell {
	if !g.inBounds(x, y) {
		return DefaultCell
	}
	return g.cells[y*g.width+x]
}

func (g *Grid) inBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < g.width && y < g.height
}

// PutCell writes one cell, no-op when (x, y) is outside the grid
func (g *Grid) PutCell(r rune, x, y int, fg, bg RGB) {
	if !g.inBounds(x, y) {
		return
	}
	g.cells[y*g.width+x] = Cell{Rune: r, Fg: fg, Bg: bg}
}

// PutRun writes runes left to right from (x, y), truncating at the row's right edge
func (g *Grid) PutRun(runes []rune, x, y int, fg, bg RGB) {
	if y < 0 || y >= g.height {
		return
	}
	for i, r := range runes {
		px := x + i
		if px < 0 {
			continue
		}
		if px >= g.width {
			return
		}
		g.cells[y*g.width+px] = Cell{Rune: r, Fg: fg, Bg: bg}
	}
}

// PutString writes s as a run
func (g *Grid) PutString(s string, x, y int, fg, bg RGB) {
	g.PutRun([]rune(s), x, y, fg, bg)
}

// Clear resets every cell to DefaultCell
func (g *Grid) Clear() {
	for i := range g.cells {
		g.cells[i] = DefaultCell
	}
}

// Diff returns the patches that turn other into g, in ascending index order
// Panics when dimensions differ: both frames must come from the same geometry
func (g *Grid) Diff(other *Grid) []Patch {
	if g.width != other.width || g.height != other.height {
		panic(fmt.Sprintf("terminal: diff of mismatched grids %dx%d vs %dx%d",
			g.width, g.height, other.width, other.height))
	}

	var patches []Patch
	for i, c := range g.cells {
		if c == other.cells[i] {
			continue
		}
		patches = append(patches, Patch{Cell: c, X: i % g.width, Y: i / g.width})
	}
	return patches
}

// Apply writes patches into the grid
func (g *Grid) Apply(patches []Patch) {
	for _, p := range patches {
		g.PutCell(p.Cell.Rune, p.X, p.Y, p.Cell.Fg, p.Cell.Bg)
	}
}

// Equal reports whether both grids have the same geometry and contents
func (g *Grid) Equal(other *Grid) bool {
	if g.width != other.width || g.height != other.height {
		return false
	}
	for i := range g.cells {
		if g.cells[i] != other.cells[i] {
			return false
		}
	}
	return true
}
