package sim

import (
	"time"

	"github.com/san-kum/driftfield/internal/field"
	"github.com/san-kum/driftfield/internal/input"
	"github.com/san-kum/driftfield/internal/physics"
)

// State is the scheduling state of a Loop.
type State int

const (
	Running State = iota
	Paused
)

func (s State) String() string {
	if s == Paused {
		return "paused"
	}
	return "running"
}

// Input is the host input snapshot a tick is evaluated against.
type Input struct {
	PointerX, PointerY float64
	Dispersion         float64
	Viewport           input.Size
}

// Frame describes one committed tick. Particles and Forces alias loop
// buffers and are only valid for the duration of the callback.
type Frame struct {
	Tick       int
	Now        time.Time
	Width      float64
	Height     float64
	Particles  []field.Particle
	Forces     []physics.Breakdown
	Shockwaves int
	Input      Input
}

type Observer interface {
	OnFrame(fr *Frame)
}

type Metric interface {
	Name() string
	Observe(fr *Frame)
	Value() float64
	Reset()
}
