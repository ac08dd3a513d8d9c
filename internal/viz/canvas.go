package viz

import (
	"strings"

	"github.com/aram-vel/gravlab/internal/vec"
)

// Braille cells pack 2x4 dots per character, unicode base 0x2800:
//
//	1 4
//	2 5
//	3 6
//	7 8
var brailleDot = [4][2]rune{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

// Canvas is a braille dot grid: Width x Height characters backing a
// (Width*2) x (Height*4) dot raster.
type Canvas struct {
	Width, Height int
	grid          [][]rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{Width: w, Height: h, grid: make([][]rune, h)}
	for i := range c.grid {
		c.grid[i] = make([]rune, w)
	}
	c.Clear()
	return c
}

// Set lights the dot at raster coordinates (x, y).
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}
	col, row := x/2, y/4
	if col >= c.Width || row >= c.Height {
		return
	}
	c.grid[row][col] |= brailleDot[y%4][x%2]
}

func (c *Canvas) Clear() {
	for i := range c.grid {
		for j := range c.grid[i] {
			c.grid[i][j] = 0x2800
		}
	}
}

// Scatter plots xy positions with the world window [-scale, scale]
// mapped onto the full raster, y up. Points outside the window are
// dropped by Set's bounds check.
func (c *Canvas) Scatter(points []vec.V3, scale float64) {
	if scale <= 0 {
		return
	}
	cw, ch := float64(c.Width*2), float64(c.Height*4)
	for _, p := range points {
		x := int((p.X/scale + 1) / 2 * cw)
		y := int((1 - p.Y/scale) / 2 * ch)
		c.Set(x, y)
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.grid {
		b.WriteString(string(row))
		b.WriteByte('\n')
	}
	return b.String()
}
