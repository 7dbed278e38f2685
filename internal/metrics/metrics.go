// Package metrics observes committed ticks and keeps per-tick series for
// storage and plotting.
package metrics

import (
	"github.com/san-kum/driftfield/internal/physics"
	"github.com/san-kum/driftfield/internal/sim"
)

// Series is a metric that also keeps every observed sample.
type Series interface {
	sim.Metric
	Samples() []float64
}

type series struct {
	name    string
	samples []float64
}

func (s *series) Name() string       { return s.name }
func (s *series) Samples() []float64 { return s.samples }
func (s *series) Reset()             { s.samples = s.samples[:0] }

func (s *series) Value() float64 {
	if len(s.samples) == 0 {
		return 0
	}
	return s.samples[len(s.samples)-1]
}

func (s *series) record(v float64) { s.samples = append(s.samples, v) }

// Standard returns the metric set recorded by headless runs.
func Standard(collisionMargin float64) []Series {
	return []Series{
		NewKineticEnergy(),
		NewMaxOverlap(collisionMargin),
		NewContainment(),
		NewShockwaves(),
		NewForceLoad(physics.Shock),
		NewForceLoad(physics.Collision),
	}
}

// Register adds every metric to the loop.
func Register(l *sim.Loop, ms []Series) {
	for _, m := range ms {
		l.AddMetric(m)
	}
}
