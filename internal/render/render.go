// Package render rasterises the particle field. Renderers only read the
// scene; nothing here feeds back into physics.
package render

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/san-kum/driftfield/internal/field"
	"golang.org/x/image/vector"
)

// kappa places cubic control points so four segments approximate a circle.
const kappa = 0.5522847498

// Scene is what a renderer needs to draw one frame.
type Scene struct {
	Particles     []field.Particle
	Width, Height float64
	PixelRatio    float64

	PointerX, PointerY float64
	Dispersion         float64
}

// Renderer consumes one scene per committed tick.
type Renderer interface {
	Render(s *Scene)
}

// Style holds the appearance constants.
type Style struct {
	Background color.RGBA
	BaseAlpha  float64
	GlowRadius float64
	GlowBoost  float64
}

func DefaultStyle() Style {
	return Style{
		Background: color.RGBA{0x0a, 0x0a, 0x0f, 0xff},
		BaseAlpha:  0.6,
		GlowRadius: 150,
		GlowBoost:  0.3,
	}
}

// Alpha returns the opacity of p in [0, 1]. Particles near the pointer
// glow, and the whole field fades out as dispersion approaches 1.
func (st Style) Alpha(p *field.Particle, s *Scene) float64 {
	a := st.BaseAlpha
	if st.GlowRadius > 0 {
		dx := p.X - s.PointerX
		dy := p.Y - s.PointerY
		d2 := dx*dx + dy*dy
		if d2 < st.GlowRadius*st.GlowRadius {
			a += st.GlowBoost * (1 - math.Sqrt(d2)/st.GlowRadius)
		}
	}
	a *= 1 - clamp01(s.Dispersion)
	return clamp01(a)
}

// Raster draws into an RGBA surface sized viewport × pixel ratio.
type Raster struct {
	Style Style

	img *image.RGBA
	z   vector.Rasterizer
	src image.Uniform
}

func NewRaster(st Style) *Raster {
	return &Raster{Style: st}
}

// Image returns the last rendered surface, nil before the first frame.
func (r *Raster) Image() *image.RGBA { return r.img }

func (r *Raster) Render(s *Scene) {
	scale := s.PixelRatio
	if scale <= 0 {
		scale = 1
	}
	w := int(math.Ceil(s.Width * scale))
	h := int(math.Ceil(s.Height * scale))
	if w <= 0 || h <= 0 {
		return
	}
	if r.img == nil || r.img.Rect.Dx() != w || r.img.Rect.Dy() != h {
		r.img = image.NewRGBA(image.Rect(0, 0, w, h))
	}

	draw.Draw(r.img, r.img.Rect, &image.Uniform{C: r.Style.Background}, image.Point{}, draw.Src)

	for i := range s.Particles {
		p := &s.Particles[i]
		a := r.Style.Alpha(p, s)
		if a <= 0 {
			continue
		}
		r.disc(p.X*scale, p.Y*scale, p.Radius*scale, p.Color, a)
	}
}

// disc fills a circle, rasterising only the part of its bounding box that
// lies on the surface.
func (r *Raster) disc(cx, cy, radius float64, c color.RGBA, alpha float64) {
	box := image.Rect(
		int(math.Floor(cx-radius)), int(math.Floor(cy-radius)),
		int(math.Ceil(cx+radius)), int(math.Ceil(cy+radius)),
	)
	clip := box.Intersect(r.img.Rect)
	if clip.Empty() {
		return
	}

	r.z.Reset(clip.Dx(), clip.Dy())
	r.z.DrawOp = draw.Over

	x := float32(cx - float64(clip.Min.X))
	y := float32(cy - float64(clip.Min.Y))
	rr := float32(radius)
	k := rr * kappa

	r.z.MoveTo(x+rr, y)
	r.z.CubeTo(x+rr, y+k, x+k, y+rr, x, y+rr)
	r.z.CubeTo(x-k, y+rr, x-rr, y+k, x-rr, y)
	r.z.CubeTo(x-rr, y-k, x-k, y-rr, x, y-rr)
	r.z.CubeTo(x+k, y-rr, x+rr, y-k, x+rr, y)
	r.z.ClosePath()

	r.src.C = color.NRGBA{R: c.R, G: c.G, B: c.B, A: uint8(math.Round(alpha * 255))}
	dst := r.img.SubImage(clip).(*image.RGBA)
	r.z.Draw(dst, clip, &r.src, image.Point{})
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
