package integrators

import (
	"github.com/san-kum/driftfield/internal/field"
	"github.com/san-kum/driftfield/internal/physics"
)

const (
	DefaultDamping     = 0.88
	DefaultRestitution = 0.5
)

// SemiImplicitEuler advances velocity first, then position from the new
// velocity, and softly contains each disc inside the viewport.
type SemiImplicitEuler struct {
	Damping     float64
	Restitution float64
}

func NewSemiImplicitEuler() *SemiImplicitEuler {
	return &SemiImplicitEuler{Damping: DefaultDamping, Restitution: DefaultRestitution}
}

// Step applies acceleration a to p for one tick inside a width×height box.
func (e *SemiImplicitEuler) Step(p *field.Particle, a physics.Accel, width, height float64) {
	p.VX = (p.VX + a.X) * e.Damping
	p.VY = (p.VY + a.Y) * e.Damping
	p.X += p.VX
	p.Y += p.VY

	p.X, p.VX = e.contain(p.X, p.VX, p.Radius, width)
	p.Y, p.VY = e.contain(p.Y, p.VY, p.Radius, height)
}

// StepAll integrates every particle with its accumulated acceleration.
func (e *SemiImplicitEuler) StepAll(ps []field.Particle, acc []physics.Accel, width, height float64) {
	for i := range ps {
		e.Step(&ps[i], acc[i], width, height)
	}
}

// contain clamps pos to [r, dim-r] and bounces the axis velocity when the
// boundary was crossed.
func (e *SemiImplicitEuler) contain(pos, vel, r, dim float64) (float64, float64) {
	lo, hi := r, dim-r
	if lo > hi {
		return dim / 2, -vel * e.Restitution
	}
	if pos < lo {
		return lo, -vel * e.Restitution
	}
	if pos > hi {
		return hi, -vel * e.Restitution
	}
	return pos, vel
}
