package automation

import (
	"context"
	"fmt"
	"math"
	"os"
	"sort"
	"time"

	"github.com/san-kum/driftfield/internal/config"
	"github.com/san-kum/driftfield/internal/dynamo"
	"github.com/san-kum/driftfield/internal/experiment"
	"github.com/san-kum/driftfield/internal/field"
	"github.com/san-kum/driftfield/internal/sim"
	"gopkg.in/yaml.v3"
)

// Event types understood by a scenario.
const (
	EventPointer = "pointer"
	EventPath    = "path"
	EventLeave   = "leave"
	EventClick   = "click"
	EventScroll  = "scroll"
	EventResize  = "resize"
	EventHide    = "hide"
	EventShow    = "show"
	EventBlur    = "blur"
	EventFocus   = "focus"
)

// Scenario is a scripted sequence of host events replayed on a fixed clock.
type Scenario struct {
	Name        string  `yaml:"name"`
	Description string  `yaml:"description"`
	Preset      string  `yaml:"preset"`
	Seed        *int64  `yaml:"seed"`
	Count       int     `yaml:"count"`
	Width       float64 `yaml:"width"`
	Height      float64 `yaml:"height"`
	Ticks       int     `yaml:"ticks"`
	Events      []Event `yaml:"events"`
}

// Event fires before the frame of tick At. Path events move the pointer
// from (X, Y) to (ToX, ToY) over Over ticks.
type Event struct {
	At      int     `yaml:"at"`
	Type    string  `yaml:"type"`
	X       float64 `yaml:"x"`
	Y       float64 `yaml:"y"`
	ToX     float64 `yaml:"to_x"`
	ToY     float64 `yaml:"to_y"`
	Over    int     `yaml:"over"`
	Offset  float64 `yaml:"offset"`
	Section float64 `yaml:"section"`
	Width   float64 `yaml:"width"`
	Height  float64 `yaml:"height"`
	DPR     float64 `yaml:"dpr"`
}

// LoadScenario loads and validates a scenario from a YAML file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseScenario(data)
}

func ParseScenario(data []byte) (*Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("%w: %v", dynamo.ErrInvalidScenario, err)
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	sort.SliceStable(sc.Events, func(i, j int) bool { return sc.Events[i].At < sc.Events[j].At })
	return &sc, nil
}

func (sc *Scenario) Validate() error {
	if sc.Ticks <= 0 {
		return fmt.Errorf("%w: ticks must be positive, got %d", dynamo.ErrInvalidScenario, sc.Ticks)
	}
	if sc.Count < 0 {
		return fmt.Errorf("%w: count must not be negative", dynamo.ErrInvalidScenario)
	}
	for i, ev := range sc.Events {
		if ev.At < 0 {
			return fmt.Errorf("%w: event %d at negative tick %d", dynamo.ErrInvalidScenario, i, ev.At)
		}
		switch ev.Type {
		case EventPointer, EventLeave, EventClick, EventHide, EventShow, EventBlur, EventFocus:
		case EventPath:
			if ev.Over <= 0 {
				return fmt.Errorf("%w: path event %d needs over > 0", dynamo.ErrInvalidScenario, i)
			}
		case EventScroll:
			if ev.Section <= 0 {
				return fmt.Errorf("%w: scroll event %d needs section > 0", dynamo.ErrInvalidScenario, i)
			}
		case EventResize:
			if ev.Width < 0 || ev.Height < 0 {
				return fmt.Errorf("%w: resize event %d has negative size", dynamo.ErrInvalidScenario, i)
			}
		default:
			return fmt.Errorf("%w: event %d has unknown type %q", dynamo.ErrInvalidScenario, i, ev.Type)
		}
	}
	return nil
}

// Config resolves the simulation config: the preset (default "default")
// with the scenario's overrides applied.
func (sc *Scenario) Config() (*config.Config, error) {
	name := sc.Preset
	if name == "" {
		name = "default"
	}
	cfg, err := config.LoadPreset(name)
	if err != nil {
		return nil, err
	}
	if sc.Seed != nil {
		cfg.Seed = *sc.Seed
	}
	if sc.Count > 0 {
		cfg.Field.Count = sc.Count
	}
	if sc.Width > 0 {
		cfg.Viewport.Width = sc.Width
	}
	if sc.Height > 0 {
		cfg.Viewport.Height = sc.Height
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Apply fires every event due at tick. Path events keep moving the
// pointer on the ticks they span.
func (sc *Scenario) Apply(tick int, now time.Time, l *sim.Loop) {
	for i := range sc.Events {
		ev := &sc.Events[i]
		if ev.Type == EventPath && tick >= ev.At && tick <= ev.At+ev.Over {
			t := float64(tick-ev.At) / float64(ev.Over)
			l.PointerMove(ev.X+(ev.ToX-ev.X)*t, ev.Y+(ev.ToY-ev.Y)*t)
			continue
		}
		if ev.At != tick {
			continue
		}
		switch ev.Type {
		case EventPointer:
			l.PointerMove(ev.X, ev.Y)
		case EventLeave:
			l.PointerLeave()
		case EventClick:
			l.Click(ev.X, ev.Y, now)
		case EventScroll:
			l.Scroll(ev.Offset, ev.Section, now)
		case EventResize:
			l.Resize(ev.Width, ev.Height, ev.DPR, now)
		case EventHide:
			l.SetOnScreen(false)
		case EventShow:
			l.SetOnScreen(true)
		case EventBlur:
			l.SetForeground(false)
		case EventFocus:
			l.SetForeground(true)
		}
	}
}

// RunScenario replays sc on a fresh loop and returns the outcome.
func RunScenario(ctx context.Context, sc *Scenario, opts ...sim.Option) (*experiment.Result, error) {
	cfg, err := sc.Config()
	if err != nil {
		return nil, err
	}
	exp := experiment.New(experiment.Config{
		Sim:      cfg,
		Preset:   sc.Preset,
		Scenario: sc.Name,
		Ticks:    sc.Ticks,
		Script:   sc,
	})
	if err := exp.Setup(opts...); err != nil {
		return nil, err
	}
	return exp.Run(ctx)
}

// Divergence is the largest per-coordinate difference between two
// particle states, +Inf when the populations differ in size.
func Divergence(a, b []field.Particle) float64 {
	if len(a) != len(b) {
		return math.Inf(1)
	}
	worst := 0.0
	for i := range a {
		for _, d := range []float64{a[i].X - b[i].X, a[i].Y - b[i].Y, a[i].VX - b[i].VX, a[i].VY - b[i].VY} {
			worst = math.Max(worst, math.Abs(d))
		}
	}
	return worst
}

// Replay runs sc twice and reports how far the final states diverge.
func Replay(ctx context.Context, sc *Scenario) (float64, error) {
	first, err := RunScenario(ctx, sc)
	if err != nil {
		return 0, err
	}
	second, err := RunScenario(ctx, sc)
	if err != nil {
		return 0, err
	}
	return Divergence(first.Particles, second.Particles), nil
}
