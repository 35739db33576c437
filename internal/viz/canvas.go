package viz

import (
	"strings"

	"github.com/san-kum/etmsim/internal/lattice"
)

// Braille cells pack 2x4 dots per terminal character (offset 0x2800):
//
//	1 4
//	2 5
//	3 6
//	7 8
var brailleDots = [4][2]rune{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

// Canvas is a braille dot canvas. Dot space is (width*2) x (height*4).
type Canvas struct {
	width, height int
	cells         []rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{width: w, height: h, cells: make([]rune, w*h)}
	c.Clear()
	return c
}

// DotSize returns the drawable extent in dot coordinates.
func (c *Canvas) DotSize() (w, h int) { return c.width * 2, c.height * 4 }

// Size returns the canvas extent in cells.
func (c *Canvas) Size() (w, h int) { return c.width, c.height }

// CellAt returns the braille rune at a cell position, blank when out of
// range.
func (c *Canvas) CellAt(col, row int) rune {
	if col < 0 || row < 0 || col >= c.width || row >= c.height {
		return 0x2800
	}
	return c.cells[row*c.width+col]
}

// Set lights the dot at (x, y). Out-of-range dots are ignored.
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}
	col, row := x/2, y/4
	if col >= c.width || row >= c.height {
		return
	}
	c.cells[row*c.width+col] |= brailleDots[y%4][x%2]
}

// Clear blanks every cell.
func (c *Canvas) Clear() {
	for i := range c.cells {
		c.cells[i] = 0x2800
	}
}

// Line draws dots from (x0, y0) to (x1, y1) with Bresenham stepping.
func (c *Canvas) Line(x0, y0, x1, y1 int) {
	dx, dy := absInt(x1-x0), absInt(y1-y0)
	sx, sy := -1, -1
	if x0 < x1 {
		sx = 1
	}
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy
	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for row := 0; row < c.height; row++ {
		b.WriteString(string(c.cells[row*c.width : (row+1)*c.width]))
		b.WriteString("\n")
	}
	return b.String()
}

// axisValue picks one component of a coordinate.
func axisValue(c lattice.Coord, axis int) int {
	switch axis % 3 {
	case 0:
		return c.X
	case 1:
		return c.Y
	default:
		return c.Z
	}
}

// PlotTrajectories draws anchor paths projected onto an axis pair, scaled to
// fill the canvas. The vertical axis is flipped so larger values sit higher.
func (c *Canvas) PlotTrajectories(paths [][]lattice.Coord, axisU, axisV int) {
	minU, maxU := 0, 1
	minV, maxV := 0, 1
	first := true
	for _, path := range paths {
		for _, pt := range path {
			u, v := axisValue(pt, axisU), axisValue(pt, axisV)
			if first {
				minU, maxU, minV, maxV = u, u, v, v
				first = false
				continue
			}
			if u < minU {
				minU = u
			}
			if u > maxU {
				maxU = u
			}
			if v < minV {
				minV = v
			}
			if v > maxV {
				maxV = v
			}
		}
	}
	if maxU == minU {
		maxU = minU + 1
	}
	if maxV == minV {
		maxV = minV + 1
	}

	dw, dh := c.DotSize()
	toDot := func(pt lattice.Coord) (int, int) {
		u, v := axisValue(pt, axisU), axisValue(pt, axisV)
		x := (u - minU) * (dw - 1) / (maxU - minU)
		y := (dh - 1) - (v-minV)*(dh-1)/(maxV-minV)
		return x, y
	}

	for _, path := range paths {
		if len(path) == 0 {
			continue
		}
		px, py := toDot(path[0])
		c.Set(px, py)
		for _, pt := range path[1:] {
			x, y := toDot(pt)
			c.Line(px, py, x, y)
			px, py = x, y
		}
	}
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
