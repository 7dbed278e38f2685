package sim

import (
	"github.com/san-kum/driftfield/internal/dynamo"
	"github.com/san-kum/driftfield/internal/field"
	"github.com/san-kum/driftfield/internal/physics"
)

// minChunk keeps small populations on one goroutine.
const minChunk = 64

// evaluate fills l.parts and l.acc for every particle from the pre-tick
// snapshot. Workers only write their own index range.
func (l *Loop) evaluate(ps []field.Particle) {
	dynamo.ParallelFor(len(ps), l.workers, minChunk, func(start, end int) {
		buf := l.scratch.Get()
		defer l.scratch.Put(buf)

		for i := start; i < end; i++ {
			p := &ps[i]
			*buf = l.tree.Query(p.X, p.Y, p.Radius, (*buf)[:0])
			l.parts[i] = l.forces.Evaluate(i, ps, *buf, &l.env)
			l.acc[i] = l.parts[i].Total()
		}
	})
}

func (l *Loop) ensureBuffers(n int) {
	if cap(l.acc) < n {
		l.acc = make([]physics.Accel, n)
		l.parts = make([]physics.Breakdown, n)
	}
	l.acc = l.acc[:n]
	l.parts = l.parts[:n]
}
