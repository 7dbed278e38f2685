package gui

import (
	"image/color"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/san-kum/driftfield/internal/render"
)

// Renderer draws scenes straight into the current raylib frame. Render
// must be called between BeginDrawing and EndDrawing on the window thread.
type Renderer struct {
	Style render.Style
}

func NewRenderer(st render.Style) *Renderer {
	return &Renderer{Style: st}
}

func (r *Renderer) Render(s *render.Scene) {
	for i := range s.Particles {
		p := &s.Particles[i]
		a := r.Style.Alpha(p, s)
		if a <= 0 {
			continue
		}
		rl.DrawCircleV(
			rl.NewVector2(float32(p.X), float32(p.Y)),
			float32(p.Radius),
			rl.ColorAlpha(toColor(p.Color), float32(a)))
	}
}

// Background is the clear colour for the window.
func (r *Renderer) Background() rl.Color { return toColor(r.Style.Background) }

func toColor(c color.RGBA) rl.Color {
	return rl.NewColor(c.R, c.G, c.B, c.A)
}

// drawCursor marks the pointer while it is on the canvas.
func drawCursor(x, y, glow float64) {
	cx, cy := int32(x), int32(y)
	rl.DrawCircleLines(cx, cy, 6, rl.NewColor(255, 255, 255, 100))
	if glow > 0 {
		rl.DrawCircleLines(cx, cy, float32(glow), rl.NewColor(255, 255, 255, 24))
	}
}
