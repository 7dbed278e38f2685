package field

import (
	"errors"
	"image/color"
	"testing"

	"github.com/san-kum/driftfield/internal/dynamo"
)

func inPalette(c color.RGBA, palette []color.RGBA) bool {
	for _, p := range palette {
		if p == c {
			return true
		}
	}
	return false
}

func TestRegenerate_Count(t *testing.T) {
	tests := []struct {
		name  string
		count int
		w, h  float64
	}{
		{"empty", 0, 800, 600},
		{"small", 10, 500, 500},
		{"typical", 150, 1280, 720},
		{"narrow", 40, 120, 900},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := New(nil, SpawnHome, 7)
			if err := f.Regenerate(tt.count, tt.w, tt.h); err != nil {
				t.Fatalf("regenerate failed: %v", err)
			}
			if f.Len() != tt.count {
				t.Errorf("expected %d particles, got %d", tt.count, f.Len())
			}
		})
	}
}

func TestRegenerate_ParticleAttributes(t *testing.T) {
	f := New(nil, SpawnHome, 42)
	if err := f.Regenerate(200, 800, 600); err != nil {
		t.Fatalf("regenerate failed: %v", err)
	}

	for i, p := range f.Particles {
		if p.Radius < MinRadius || p.Radius >= MaxRadius {
			t.Errorf("particle %d radius %.3f out of [4,16)", i, p.Radius)
		}
		if !inPalette(p.Color, f.Palette()) {
			t.Errorf("particle %d colour %v not in palette", i, p.Color)
		}
		if p.X != p.HomeX || p.Y != p.HomeY {
			t.Errorf("particle %d should start at home", i)
		}
		if p.VX != 0 || p.VY != 0 {
			t.Errorf("particle %d should start at rest", i)
		}
		if p.X < p.Radius || p.X > 800-p.Radius || p.Y < p.Radius || p.Y > 600-p.Radius {
			t.Errorf("particle %d spawned outside containment: (%.1f, %.1f)", i, p.X, p.Y)
		}
	}
}

func TestRegenerate_Rain(t *testing.T) {
	f := New(nil, SpawnRain, 3)
	if err := f.Regenerate(100, 800, 600); err != nil {
		t.Fatalf("regenerate failed: %v", err)
	}
	for i, p := range f.Particles {
		if p.VY <= 0 {
			t.Errorf("particle %d should fall, vy=%.3f", i, p.VY)
		}
		if p.Y > 600*rainBand+p.Radius+1e-9 {
			t.Errorf("particle %d should start in the top band, y=%.1f", i, p.Y)
		}
	}
}

func TestRegenerate_DiscardsOldPopulation(t *testing.T) {
	f := New(nil, SpawnHome, 1)
	if err := f.Regenerate(50, 800, 600); err != nil {
		t.Fatal(err)
	}
	f.Particles[0].X = -1000

	if err := f.Regenerate(20, 400, 300); err != nil {
		t.Fatal(err)
	}
	if f.Len() != 20 || f.Width != 400 || f.Height != 300 {
		t.Fatalf("unexpected field after resize: n=%d %gx%g", f.Len(), f.Width, f.Height)
	}
	if f.Particles[0].X < 0 {
		t.Error("old particle state leaked into new population")
	}
}

func TestRegenerate_EmptyViewport(t *testing.T) {
	f := New(nil, SpawnHome, 1)
	if err := f.Regenerate(10, 500, 500); err != nil {
		t.Fatal(err)
	}

	for _, dims := range [][2]float64{{0, 500}, {500, 0}, {-1, 10}} {
		err := f.Regenerate(10, dims[0], dims[1])
		if !errors.Is(err, dynamo.ErrEmptyViewport) {
			t.Errorf("%v: expected ErrEmptyViewport, got %v", dims, err)
		}
	}
	if f.Len() != 10 || f.Width != 500 {
		t.Error("failed regenerate should leave the field untouched")
	}
}

func TestRegenerate_Deterministic(t *testing.T) {
	a := New(nil, SpawnHome, 99)
	b := New(nil, SpawnHome, 99)
	_ = a.Regenerate(64, 640, 480)
	_ = b.Regenerate(64, 640, 480)

	for i := range a.Particles {
		if a.Particles[i] != b.Particles[i] {
			t.Fatalf("particle %d differs between identical seeds", i)
		}
	}
}

func TestParsePalette(t *testing.T) {
	p, err := ParsePalette([]string{"#ff0000", "#00ff80"})
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if p[0] != (color.RGBA{255, 0, 0, 255}) || p[1] != (color.RGBA{0, 255, 128, 255}) {
		t.Errorf("unexpected palette %v", p)
	}

	if _, err := ParsePalette([]string{"not-a-colour"}); err == nil {
		t.Error("expected error for invalid hex")
	}
}
