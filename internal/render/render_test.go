package render

import (
	"image/color"
	"math"
	"testing"

	"github.com/san-kum/driftfield/internal/field"
	"github.com/san-kum/driftfield/internal/input"
)

var red = color.RGBA{0xff, 0, 0, 0xff}

func scene(ps ...field.Particle) *Scene {
	return &Scene{
		Particles:  ps,
		Width:      100,
		Height:     80,
		PixelRatio: 1,
		PointerX:   input.OffCanvas,
		PointerY:   input.OffCanvas,
	}
}

func TestRaster_SurfaceSize(t *testing.T) {
	tests := []struct {
		name  string
		ratio float64
		w, h  int
	}{
		{"unit", 1, 100, 80},
		{"retina", 2, 200, 160},
		{"fractional", 1.5, 150, 120},
		{"unset", 0, 100, 80},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRaster(DefaultStyle())
			s := scene()
			s.PixelRatio = tt.ratio
			r.Render(s)
			b := r.Image().Bounds()
			if b.Dx() != tt.w || b.Dy() != tt.h {
				t.Errorf("expected %dx%d, got %dx%d", tt.w, tt.h, b.Dx(), b.Dy())
			}
		})
	}
}

func TestRaster_ZeroViewport(t *testing.T) {
	r := NewRaster(DefaultStyle())
	s := scene()
	s.Width = 0
	r.Render(s)
	if r.Image() != nil {
		t.Error("zero viewport should not allocate a surface")
	}
}

func TestRaster_DrawsDisc(t *testing.T) {
	st := DefaultStyle()
	r := NewRaster(st)
	r.Render(scene(field.Particle{X: 50, Y: 40, Radius: 10, Color: red}))

	img := r.Image()
	centre := img.RGBAAt(50, 40)
	if centre == st.Background {
		t.Fatal("disc centre left at background colour")
	}
	if centre.R <= st.Background.R {
		t.Errorf("expected red tint at centre, got %v", centre)
	}
	if got := img.RGBAAt(5, 5); got != st.Background {
		t.Errorf("corner should be background, got %v", got)
	}
}

func TestRaster_FullDispersionIsBackground(t *testing.T) {
	st := DefaultStyle()
	r := NewRaster(st)
	s := scene(
		field.Particle{X: 50, Y: 40, Radius: 10, Color: red},
		field.Particle{X: 20, Y: 20, Radius: 16, Color: red},
	)
	s.Dispersion = 1
	s.PointerX, s.PointerY = 50, 40
	r.Render(s)

	img := r.Image()
	for y := 0; y < img.Rect.Dy(); y++ {
		for x := 0; x < img.Rect.Dx(); x++ {
			if img.RGBAAt(x, y) != st.Background {
				t.Fatalf("pixel (%d,%d) = %v, expected background", x, y, img.RGBAAt(x, y))
			}
		}
	}
}

func TestRaster_EdgeDisc(t *testing.T) {
	r := NewRaster(DefaultStyle())
	r.Render(scene(
		field.Particle{X: 2, Y: 2, Radius: 12, Color: red},
		field.Particle{X: 98, Y: 79, Radius: 12, Color: red},
		field.Particle{X: -50, Y: -50, Radius: 4, Color: red},
	))
	if got := r.Image().RGBAAt(1, 1); got == DefaultStyle().Background {
		t.Error("clipped disc not drawn at the corner")
	}
}

func TestStyle_Alpha(t *testing.T) {
	st := DefaultStyle()
	p := field.Particle{X: 100, Y: 100, Radius: 8}

	tests := []struct {
		name       string
		px, py     float64
		dispersion float64
		want       float64
	}{
		{"off canvas", input.OffCanvas, input.OffCanvas, 0, st.BaseAlpha},
		{"on pointer", 100, 100, 0, st.BaseAlpha + st.GlowBoost},
		{"half glow", 175, 100, 0, st.BaseAlpha + st.GlowBoost/2},
		{"outside glow", 300, 100, 0, st.BaseAlpha},
		{"half dispersed", input.OffCanvas, input.OffCanvas, 0.5, st.BaseAlpha / 2},
		{"fully dispersed", 100, 100, 1, 0},
		{"over dispersed", 100, 100, 3, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &Scene{PointerX: tt.px, PointerY: tt.py, Dispersion: tt.dispersion}
			if got := st.Alpha(&p, s); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("expected %.3f, got %.3f", tt.want, got)
			}
		})
	}
}

func TestStyle_AlphaBounded(t *testing.T) {
	st := Style{BaseAlpha: 0.9, GlowRadius: 150, GlowBoost: 0.5}
	p := field.Particle{X: 0, Y: 0}
	if got := st.Alpha(&p, &Scene{}); got != 1 {
		t.Errorf("alpha should cap at 1, got %v", got)
	}
}

func BenchmarkRaster(b *testing.B) {
	f := field.New(nil, field.SpawnHome, 1)
	if err := f.Regenerate(200, 1280, 720); err != nil {
		b.Fatal(err)
	}
	r := NewRaster(DefaultStyle())
	s := &Scene{Particles: f.Particles, Width: 1280, Height: 720, PixelRatio: 1, PointerX: 640, PointerY: 360}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r.Render(s)
	}
}
