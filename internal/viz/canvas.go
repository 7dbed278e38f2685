package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Braille Patterns: 2x4 dots
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

const blank = 0x2800

// Canvas is a braille dot grid with one colour per cell.
type Canvas struct {
	Width, Height int
	Grid          [][]rune
	Colors        [][]lipgloss.Color
}

func NewCanvas(w, h int) *Canvas {
	w, h = max(w, 1), max(h, 1)
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
		Colors: make([][]lipgloss.Color, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
		c.Colors[i] = make([]lipgloss.Color, w)
	}
	c.Clear()
	return c
}

// Dots returns the canvas size in sub-pixels, (Width*2) x (Height*4).
func (c *Canvas) Dots() (int, int) { return c.Width * 2, c.Height * 4 }

// Set sets a pixel at (x, y) in sub-pixel coordinates and colours its cell.
func (c *Canvas) Set(x, y int, col lipgloss.Color) {
	if x < 0 || y < 0 {
		return
	}

	cx := x / 2
	cy := y / 4
	if cx >= c.Width || cy >= c.Height {
		return
	}

	c.Grid[cy][cx] |= rune(pixelMap[y%4][x%2])
	if col != "" {
		c.Colors[cy][cx] = col
	}
}

// FillCircle sets every sub-pixel whose centre lies inside the circle.
// Discs smaller than a dot still mark the dot under their centre.
func (c *Canvas) FillCircle(cx, cy, r float64, col lipgloss.Color) {
	w, h := c.Dots()
	x0, x1 := clampInt(int(cx-r), 0, w-1), clampInt(int(cx+r), 0, w-1)
	y0, y1 := clampInt(int(cy-r), 0, h-1), clampInt(int(cy+r), 0, h-1)

	hit := false
	for y := y0; y <= y1; y++ {
		dy := float64(y) + 0.5 - cy
		for x := x0; x <= x1; x++ {
			dx := float64(x) + 0.5 - cx
			if dx*dx+dy*dy <= r*r {
				c.Set(x, y, col)
				hit = true
			}
		}
	}
	if !hit {
		c.Set(int(cx), int(cy), col)
	}
}

// Clear resets the canvas
func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = blank
			c.Colors[i][j] = ""
		}
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row) + "\n")
	}
	return b.String()
}

// Render draws the canvas with cell colours, one style per run of equal
// colour.
func (c *Canvas) Render() string {
	var b strings.Builder
	styles := make(map[lipgloss.Color]lipgloss.Style)
	for i, row := range c.Grid {
		start := 0
		for j := 1; j <= len(row); j++ {
			if j < len(row) && c.Colors[i][j] == c.Colors[i][start] {
				continue
			}
			run := string(row[start:j])
			col := c.Colors[i][start]
			if col == "" {
				b.WriteString(run)
			} else {
				st, ok := styles[col]
				if !ok {
					st = lipgloss.NewStyle().Foreground(col)
					styles[col] = st
				}
				b.WriteString(st.Render(run))
			}
			start = j
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
