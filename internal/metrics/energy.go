package metrics

import "github.com/san-kum/driftfield/internal/sim"

// KineticEnergy is ½Σ|v|² over the field, taking every particle as unit mass.
type KineticEnergy struct {
	series
}

func NewKineticEnergy() *KineticEnergy {
	return &KineticEnergy{series{name: "kinetic"}}
}

func (k *KineticEnergy) Observe(fr *sim.Frame) {
	var e float64
	for i := range fr.Particles {
		p := &fr.Particles[i]
		e += 0.5 * (p.VX*p.VX + p.VY*p.VY)
	}
	k.record(e)
}
