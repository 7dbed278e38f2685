package viz

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/san-kum/driftfield/internal/render"
)

// minAlpha hides particles too faint to read as braille dots.
const minAlpha = 0.05

// CanvasRenderer draws scenes onto a braille canvas, fading particle
// colours towards the background by their opacity.
type CanvasRenderer struct {
	Canvas *Canvas
	Style  render.Style

	bg     colorful.Color
	shades map[shadeKey]lipgloss.Color
}

type shadeKey struct {
	r, g, b uint8
	alpha   uint8
}

func NewCanvasRenderer(c *Canvas, st render.Style) *CanvasRenderer {
	bg, _ := colorful.MakeColor(st.Background)
	return &CanvasRenderer{
		Canvas: c,
		Style:  st,
		bg:     bg,
		shades: make(map[shadeKey]lipgloss.Color),
	}
}

func (r *CanvasRenderer) Render(s *render.Scene) {
	c := r.Canvas
	c.Clear()
	if s.Width <= 0 || s.Height <= 0 {
		return
	}

	w, h := c.Dots()
	sx := float64(w) / s.Width
	sy := float64(h) / s.Height

	for i := range s.Particles {
		p := &s.Particles[i]
		a := r.Style.Alpha(p, s)
		if a < minAlpha {
			continue
		}
		c.FillCircle(p.X*sx, p.Y*sy, p.Radius*min(sx, sy), r.shade(p.Color.R, p.Color.G, p.Color.B, a))
	}
}

// shade blends a particle colour over the background, quantising alpha
// so the colour cache stays small.
func (r *CanvasRenderer) shade(cr, cg, cb uint8, alpha float64) lipgloss.Color {
	key := shadeKey{cr, cg, cb, uint8(alpha * 16)}
	if col, ok := r.shades[key]; ok {
		return col
	}
	fg := colorful.Color{R: float64(cr) / 255, G: float64(cg) / 255, B: float64(cb) / 255}
	a := float64(key.alpha) / 16
	col := lipgloss.Color(r.bg.BlendRgb(fg, a).Clamped().Hex())
	r.shades[key] = col
	return col
}
