package metrics

import (
	"math"
	"sort"

	"github.com/san-kum/driftfield/internal/field"
	"github.com/san-kum/driftfield/internal/sim"
)

// MaxOverlap is the deepest pairwise penetration r1+r2+margin-d in a tick,
// zero when no pair is closer than its contact distance.
type MaxOverlap struct {
	series
	margin float64
	order  []int
}

func NewMaxOverlap(margin float64) *MaxOverlap {
	return &MaxOverlap{series: series{name: "overlap"}, margin: margin}
}

func (m *MaxOverlap) Observe(fr *sim.Frame) {
	m.record(m.measure(fr.Particles))
}

// measure sweeps particles sorted by x; only pairs whose x gap is under
// the largest possible contact distance are compared.
func (m *MaxOverlap) measure(ps []field.Particle) float64 {
	m.order = m.order[:0]
	for i := range ps {
		m.order = append(m.order, i)
	}
	sort.Slice(m.order, func(a, b int) bool { return ps[m.order[a]].X < ps[m.order[b]].X })

	window := 2*field.MaxRadius + m.margin
	worst := 0.0
	for a, i := range m.order {
		p := &ps[i]
		for _, j := range m.order[a+1:] {
			q := &ps[j]
			if q.X-p.X >= window {
				break
			}
			d := math.Hypot(p.X-q.X, p.Y-q.Y)
			if o := p.Radius + q.Radius + m.margin - d; o > worst {
				worst = o
			}
		}
	}
	return worst
}
