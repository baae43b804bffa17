package viz

import (
	"strings"
)

const brailleBlank = 0x2800

// Braille dot bits indexed by [row][col] inside one 2x4 cell.
var pixelMap = [4][2]rune{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

// Canvas is a Braille pixel grid of Width x Height cells, giving
// 2*Width x 4*Height addressable dots.
type Canvas struct {
	Width, Height int
	Grid          [][]rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{Width: w, Height: h, Grid: make([][]rune, h)}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
	}
	c.Clear()
	return c
}

func (c *Canvas) cell(x, y int) (row, col int, ok bool) {
	if x < 0 || y < 0 {
		return 0, 0, false
	}
	col, row = x/2, y/4
	return row, col, col < c.Width && row < c.Height
}

func (c *Canvas) Set(x, y int) {
	if row, col, ok := c.cell(x, y); ok {
		c.Grid[row][col] |= pixelMap[y%4][x%2]
	}
}

func (c *Canvas) IsSet(x, y int) bool {
	row, col, ok := c.cell(x, y)
	return ok && c.Grid[row][col]&pixelMap[y%4][x%2] != 0
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = brailleBlank
		}
	}
}

// DrawLine draws a Bresenham line between two dots.
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
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

// DrawCross marks a 5x5 dot cross centred on (x, y).
func (c *Canvas) DrawCross(x, y int) {
	for d := -2; d <= 2; d++ {
		c.Set(x+d, y)
		c.Set(x, y+d)
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row))
		b.WriteByte('\n')
	}
	return b.String()
}

// Viewport maps world metres onto canvas dots with y pointing up.
type Viewport struct {
	CenterX, CenterY float64
	// Scale is dots per metre.
	Scale float64
	dotsW int
	dotsH int
}

func NewViewport(c *Canvas, cx, cy, scale float64) Viewport {
	return Viewport{CenterX: cx, CenterY: cy, Scale: scale, dotsW: 2 * c.Width, dotsH: 4 * c.Height}
}

// FitViewport centres the bounding box of pts with a margin and picks the
// largest scale that keeps it on canvas.
func FitViewport(c *Canvas, pts [][]float64) Viewport {
	if len(pts) == 0 {
		return NewViewport(c, 0, 0, 1)
	}
	minX, maxX, minY, maxY := pts[0][0], pts[0][0], pts[0][1], pts[0][1]
	for _, p := range pts[1:] {
		minX, maxX = min(minX, p[0]), max(maxX, p[0])
		minY, maxY = min(minY, p[1]), max(maxY, p[1])
	}
	spanX := max(maxX-minX, 0.1) * 1.2
	spanY := max(maxY-minY, 0.1) * 1.2
	scale := min(float64(2*c.Width-1)/spanX, float64(4*c.Height-1)/spanY)
	return NewViewport(c, (minX+maxX)/2, (minY+maxY)/2, scale)
}

func (v Viewport) ToDots(x, y float64) (int, int) {
	px := float64(v.dotsW)/2 + (x-v.CenterX)*v.Scale
	py := float64(v.dotsH)/2 - (y-v.CenterY)*v.Scale
	return int(px), int(py)
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
