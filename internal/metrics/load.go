package metrics

import (
	"math"

	"github.com/san-kum/driftfield/internal/physics"
	"github.com/san-kum/driftfield/internal/sim"
)

// ForceLoad is the mean acceleration magnitude one force source applied
// per particle in a tick.
type ForceLoad struct {
	series
	source physics.Source
}

func NewForceLoad(src physics.Source) *ForceLoad {
	return &ForceLoad{series: series{name: src.String()}, source: src}
}

func (f *ForceLoad) Observe(fr *sim.Frame) {
	if len(fr.Forces) == 0 {
		f.record(0)
		return
	}
	var sum float64
	for _, b := range fr.Forces {
		a := b[f.source]
		sum += math.Hypot(a.X, a.Y)
	}
	f.record(sum / float64(len(fr.Forces)))
}
