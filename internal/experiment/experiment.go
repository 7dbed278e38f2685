// Package experiment runs a loop headless on a synthetic clock, optionally
// driven by a script and recorded to a store.
package experiment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/san-kum/driftfield/internal/config"
	"github.com/san-kum/driftfield/internal/field"
	"github.com/san-kum/driftfield/internal/metrics"
	"github.com/san-kum/driftfield/internal/sim"
	"github.com/san-kum/driftfield/internal/storage"
)

// Epoch is the synthetic clock origin of headless runs.
var Epoch = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

// Script feeds host events into a loop before a frame runs.
type Script interface {
	Apply(tick int, now time.Time, l *sim.Loop)
}

type Config struct {
	Sim      *config.Config
	Preset   string
	Scenario string
	Ticks    int
	Script   Script
}

type Result struct {
	RunID     string
	Ticks     int
	Committed int
	End       time.Time
	Particles []field.Particle
	Metrics   map[string]float64
	Summaries map[string]metrics.Summary
}

type Experiment struct {
	cfg    Config
	loop   *sim.Loop
	series []metrics.Series
	run    *storage.Run
}

func New(cfg Config) *Experiment {
	return &Experiment{cfg: cfg}
}

// Setup builds the loop and registers the standard metrics.
func (e *Experiment) Setup(opts ...sim.Option) error {
	if e.cfg.Sim == nil {
		return errors.New("experiment has no simulation config")
	}
	if e.cfg.Ticks < 0 {
		return fmt.Errorf("ticks must not be negative, got %d", e.cfg.Ticks)
	}

	l, err := sim.New(e.cfg.Sim, opts...)
	if err != nil {
		return err
	}
	e.loop = l
	e.series = metrics.Standard(e.cfg.Sim.Physics.CollisionMargin)
	metrics.Register(l, e.series)
	return nil
}

// Record streams samples into a new run of st.
func (e *Experiment) Record(st *storage.Store, now time.Time) error {
	if e.loop == nil {
		return errors.New("experiment not setup")
	}
	prefix := e.cfg.Preset
	if prefix == "" {
		prefix = "run"
	}
	run, err := st.Create(prefix, now)
	if err != nil {
		return err
	}
	run.Track(e.series)
	e.loop.AddObserver(run)
	e.run = run
	return nil
}

// Run advances Ticks frames, applying the script before each one.
func (e *Experiment) Run(ctx context.Context) (*Result, error) {
	if e.loop == nil {
		return nil, errors.New("experiment not setup")
	}

	step := e.cfg.Sim.FrameInterval()
	now := Epoch
	committed := 0
	for tick := 0; tick < e.cfg.Ticks; tick++ {
		if err := ctx.Err(); err != nil {
			return nil, e.abort(err)
		}
		now = now.Add(step)
		if e.cfg.Script != nil {
			e.cfg.Script.Apply(tick, now, e.loop)
		}
		if e.loop.Frame(now) {
			committed++
		}
	}

	res := &Result{
		Ticks:     e.cfg.Ticks,
		Committed: committed,
		End:       now,
		Particles: e.loop.Snapshot(),
		Metrics:   e.loop.Metrics(),
		Summaries: make(map[string]metrics.Summary, len(e.series)),
	}
	for _, m := range e.series {
		res.Summaries[m.Name()] = metrics.Summarize(m.Samples())
	}

	if e.run != nil {
		vp := e.loop.Input().Viewport
		rc := e.cfg.Sim.Render
		meta := storage.RunMetadata{
			Preset:    e.cfg.Preset,
			Scenario:  e.cfg.Scenario,
			Timestamp: time.Now(),
			Seed:      e.cfg.Sim.Seed,
			Ticks:     committed,
			Count:     len(res.Particles),
			Width:     vp.Width,
			Height:    vp.Height,
			FPS:       e.cfg.Sim.Loop.FPS,
			Render:    &rc,
		}
		if err := e.run.Close(meta, res.Particles); err != nil {
			return nil, fmt.Errorf("saving run %s: %w", e.run.ID, err)
		}
		res.RunID = e.run.ID
	}
	return res, nil
}

// abort discards a recorded run that did not finish.
func (e *Experiment) abort(cause error) error {
	if e.run == nil {
		return cause
	}
	run := e.run
	e.run = nil
	if err := run.Abort(); err != nil {
		return errors.Join(cause, err)
	}
	return cause
}

// Loop returns the loop built by Setup.
func (e *Experiment) Loop() *sim.Loop { return e.loop }
