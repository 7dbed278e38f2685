package physics

import (
	"math"
	"time"

	"github.com/san-kum/driftfield/internal/field"
	"github.com/san-kum/driftfield/internal/shockwave"
)

// minDistance is the smallest separation an inverse-distance force accepts.
const minDistance = 1e-6

// Source identifies one force contribution.
type Source int

const (
	Home Source = iota
	Dispersion
	Pointer
	Shock
	Collision
	NumSources
)

var sourceNames = [NumSources]string{"home", "dispersion", "pointer", "shock", "collision"}

func (s Source) String() string {
	if s < 0 || s >= NumSources {
		return "unknown"
	}
	return sourceNames[s]
}

// Accel is a 2-D acceleration in px/tick².
type Accel struct {
	X, Y float64
}

func (a Accel) Add(b Accel) Accel { return Accel{a.X + b.X, a.Y + b.Y} }

// Breakdown holds one acceleration per source.
type Breakdown [NumSources]Accel

// Total sums all sources.
func (b Breakdown) Total() Accel {
	var t Accel
	for _, a := range b {
		t = t.Add(a)
	}
	return t
}

// Env is the host input snapshot a tick is evaluated against.
type Env struct {
	Width, Height      float64
	PointerX, PointerY float64
	Dispersion         float64
	Shockwaves         []shockwave.Shockwave
	Now                time.Time
}

// Forces holds the force model constants.
type Forces struct {
	HomeStrength       float64
	DispersionStrength float64
	CursorRepulsion    float64
	CursorRadius       float64
	ShockRadius        float64
	ShockStrength      float64
	ShockLifetime      time.Duration
	CollisionStiffness float64
	CollisionMargin    float64
}

// DefaultForces returns the tuned constants of the field.
func DefaultForces() Forces {
	return Forces{
		HomeStrength:       0.005,
		DispersionStrength: 2.5,
		CursorRepulsion:    8000,
		CursorRadius:       200,
		ShockRadius:        300,
		ShockStrength:      15,
		ShockLifetime:      shockwave.DefaultLifetime,
		CollisionStiffness: 0.3,
		CollisionMargin:    1,
	}
}

// Evaluate computes every contribution for particle i. neighbors are
// candidate indices into ps from the spatial index; i itself may appear
// and is ignored.
func (f *Forces) Evaluate(i int, ps []field.Particle, neighbors []int32, env *Env) Breakdown {
	p := &ps[i]
	var b Breakdown
	b[Home] = f.home(p)
	b[Dispersion] = f.dispersion(p, env)
	b[Pointer] = f.pointer(p, env)
	b[Shock] = f.shock(p, env)
	b[Collision] = f.collision(i, ps, neighbors)
	return b
}

func (f *Forces) home(p *field.Particle) Accel {
	return Accel{
		X: (p.HomeX - p.X) * f.HomeStrength,
		Y: (p.HomeY - p.Y) * f.HomeStrength,
	}
}

func (f *Forces) dispersion(p *field.Particle, env *Env) Accel {
	if env.Dispersion <= 0 {
		return Accel{}
	}
	dx := p.X - env.Width/2
	dy := p.Y - env.Height/2
	dist := math.Sqrt(dx*dx + dy*dy)
	if dist == 0 {
		dist = 1
	}
	mag := env.Dispersion * f.DispersionStrength
	return Accel{X: dx / dist * mag, Y: dy / dist * mag}
}

func (f *Forces) pointer(p *field.Particle, env *Env) Accel {
	dx := p.X - env.PointerX
	dy := p.Y - env.PointerY
	d2 := dx*dx + dy*dy
	if d2 >= f.CursorRadius*f.CursorRadius {
		return Accel{}
	}
	dist := math.Sqrt(d2)
	if dist < minDistance {
		return Accel{}
	}
	mag := f.CursorRepulsion / d2
	return Accel{X: dx / dist * mag, Y: dy / dist * mag}
}

func (f *Forces) shock(p *field.Particle, env *Env) Accel {
	var a Accel
	lifetime := float64(f.ShockLifetime)
	if lifetime <= 0 {
		return a
	}
	for _, sw := range env.Shockwaves {
		age := float64(env.Now.Sub(sw.Born)) / lifetime
		if age >= 1 {
			continue
		}
		if age < 0 {
			age = 0
		}
		dx := p.X - sw.X
		dy := p.Y - sw.Y
		dist := math.Sqrt(dx*dx + dy*dy)
		if dist >= f.ShockRadius || dist < minDistance {
			continue
		}
		mag := (1 - age) * f.ShockStrength * (1 - dist/f.ShockRadius)
		a.X += dx / dist * mag
		a.Y += dy / dist * mag
	}
	return a
}

func (f *Forces) collision(i int, ps []field.Particle, neighbors []int32) Accel {
	var a Accel
	p := &ps[i]
	for _, j := range neighbors {
		if int(j) == i {
			continue
		}
		q := &ps[j]
		dx := p.X - q.X
		dy := p.Y - q.Y
		minDist := p.Radius + q.Radius + f.CollisionMargin
		d2 := dx*dx + dy*dy
		if d2 >= minDist*minDist {
			continue
		}
		dist := math.Sqrt(d2)
		if dist < minDistance {
			continue
		}
		push := (minDist - dist) * f.CollisionStiffness
		a.X += dx / dist * push
		a.Y += dy / dist * push
	}
	return a
}
