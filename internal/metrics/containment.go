package metrics

import "github.com/san-kum/driftfield/internal/sim"

// tolerance absorbs float rounding at the clamp boundary.
const tolerance = 1e-9

// Containment counts particles outside [r, dim-r] after a tick. Anything
// other than zero is a bug.
type Containment struct {
	series
	total int
}

func NewContainment() *Containment {
	return &Containment{series: series{name: "escapes"}}
}

func (c *Containment) Observe(fr *sim.Frame) {
	n := 0
	for i := range fr.Particles {
		p := &fr.Particles[i]
		if outside(p.X, p.Radius, fr.Width) || outside(p.Y, p.Radius, fr.Height) {
			n++
		}
	}
	c.total += n
	c.record(float64(n))
}

// Total is the number of violations since the last Reset.
func (c *Containment) Total() int { return c.total }

func (c *Containment) Reset() {
	c.series.Reset()
	c.total = 0
}

func outside(pos, r, dim float64) bool {
	lo, hi := r, dim-r
	if lo > hi {
		return pos != dim/2
	}
	return pos < lo-tolerance || pos > hi+tolerance
}

// Shockwaves tracks how many shockwaves were live in each tick.
type Shockwaves struct {
	series
}

func NewShockwaves() *Shockwaves {
	return &Shockwaves{series{name: "shockwaves"}}
}

func (s *Shockwaves) Observe(fr *sim.Frame) {
	s.record(float64(fr.Shockwaves))
}
