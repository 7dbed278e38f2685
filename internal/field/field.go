// Package field owns the particle population and its lifecycle.
package field

import (
	"fmt"
	"image/color"
	"math"
	"math/rand/v2"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/san-kum/driftfield/internal/dynamo"
)

const (
	MinRadius = 4.0
	MaxRadius = 16.0

	// homes sit at homeBase + rand*min(w,h)*homeSpread from the centre
	homeBase   = 50.0
	homeSpread = 0.35

	rainBand = 0.15
)

// DefaultPalette is the six-colour palette particles draw from.
var DefaultPalette = []string{"#6366f1", "#8b5cf6", "#ec4899", "#06b6d4", "#10b981", "#f59e0b"}

// SpawnPolicy selects the initial condition of a regenerated population.
type SpawnPolicy string

const (
	// SpawnHome starts every particle at its home with zero velocity.
	SpawnHome SpawnPolicy = "home"
	// SpawnRain starts particles in the top band of the viewport falling
	// towards their homes.
	SpawnRain SpawnPolicy = "rain"
)

// Particle is a single disc. Radius, Color and the home position are fixed
// at creation.
type Particle struct {
	X, Y         float64
	VX, VY       float64
	HomeX, HomeY float64
	Radius       float64
	Color        color.RGBA
}

// Field is the particle population for one viewport size.
type Field struct {
	Particles []Particle
	Width     float64
	Height    float64

	palette []color.RGBA
	spawn   SpawnPolicy
	rng     *rand.Rand
}

// New creates an empty field. Nothing is spawned until Regenerate.
func New(palette []color.RGBA, spawn SpawnPolicy, seed int64) *Field {
	if len(palette) == 0 {
		palette = MustParsePalette(DefaultPalette)
	}
	if spawn == "" {
		spawn = SpawnHome
	}
	return &Field{
		palette: palette,
		spawn:   spawn,
		rng:     rand.New(rand.NewPCG(uint64(seed), 0x9e3779b97f4a7c15)),
	}
}

// ParsePalette converts hex colour strings ("#rrggbb") into opaque RGBA values.
func ParsePalette(hex []string) ([]color.RGBA, error) {
	out := make([]color.RGBA, 0, len(hex))
	for _, h := range hex {
		c, err := colorful.Hex(h)
		if err != nil {
			return nil, fmt.Errorf("palette colour %q: %w", h, err)
		}
		r, g, b := c.RGB255()
		out = append(out, color.RGBA{R: r, G: g, B: b, A: 255})
	}
	return out, nil
}

// MustParsePalette is ParsePalette for compile-time constant palettes.
func MustParsePalette(hex []string) []color.RGBA {
	p, err := ParsePalette(hex)
	if err != nil {
		panic(err)
	}
	return p
}

func (f *Field) Palette() []color.RGBA { return f.palette }
func (f *Field) Spawn() SpawnPolicy    { return f.spawn }
func (f *Field) Len() int              { return len(f.Particles) }

// Valid reports whether the field has a usable viewport.
func (f *Field) Valid() bool { return f.Width > 0 && f.Height > 0 }

// Regenerate discards the population and spawns count new particles for a
// width×height viewport. A non-positive dimension returns ErrEmptyViewport
// and leaves the field untouched.
func (f *Field) Regenerate(count int, width, height float64) error {
	if width <= 0 || height <= 0 || math.IsNaN(width) || math.IsNaN(height) {
		return fmt.Errorf("regenerate %gx%g: %w", width, height, dynamo.ErrEmptyViewport)
	}
	if count < 0 {
		return &dynamo.ConfigError{Field: "field.count", Value: count, Message: "must not be negative"}
	}

	f.Width, f.Height = width, height
	if cap(f.Particles) >= count {
		f.Particles = f.Particles[:count]
	} else {
		f.Particles = make([]Particle, count)
	}

	cx, cy := width/2, height/2
	span := math.Min(width, height) * homeSpread

	for i := range f.Particles {
		angle := f.rng.Float64() * 2 * math.Pi
		dist := homeBase + f.rng.Float64()*span
		r := MinRadius + f.rng.Float64()*(MaxRadius-MinRadius)

		hx := clampAxis(cx+math.Cos(angle)*dist, r, width)
		hy := clampAxis(cy+math.Sin(angle)*dist, r, height)

		p := Particle{
			X: hx, Y: hy,
			HomeX: hx, HomeY: hy,
			Radius: r,
			Color:  f.palette[f.rng.IntN(len(f.palette))],
		}

		if f.spawn == SpawnRain {
			p.X = clampAxis(hx+(f.rng.Float64()-0.5)*40, r, width)
			p.Y = clampAxis(r+f.rng.Float64()*height*rainBand, r, height)
			p.VX = (f.rng.Float64() - 0.5) * 2
			p.VY = 1 + f.rng.Float64()*2
		}

		f.Particles[i] = p
	}

	return nil
}

// clampAxis keeps v inside [r, dim-r], collapsing to the centre when the
// axis is narrower than the disc.
func clampAxis(v, r, dim float64) float64 {
	lo, hi := r, dim-r
	if lo > hi {
		return dim / 2
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
