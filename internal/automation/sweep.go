package automation

import (
	"context"
	"fmt"
	"sort"

	"github.com/san-kum/driftfield/internal/config"
	"github.com/san-kum/driftfield/internal/experiment"
)

// tunables maps sweepable parameter names to their config field.
var tunables = map[string]func(*config.Config) *float64{
	"home_strength":       func(c *config.Config) *float64 { return &c.Physics.HomeStrength },
	"dispersion_strength": func(c *config.Config) *float64 { return &c.Physics.DispersionStrength },
	"cursor_repulsion":    func(c *config.Config) *float64 { return &c.Physics.CursorRepulsion },
	"shock_strength":      func(c *config.Config) *float64 { return &c.Physics.ShockStrength },
	"collision_stiffness": func(c *config.Config) *float64 { return &c.Physics.CollisionStiffness },
	"damping":             func(c *config.Config) *float64 { return &c.Physics.Damping },
	"bounce":              func(c *config.Config) *float64 { return &c.Physics.Bounce },
}

// Tunables lists the parameter names a sweep accepts.
func Tunables() []string {
	names := make([]string, 0, len(tunables))
	for name := range tunables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ParameterSweep replays one scenario across evenly spaced values of a
// physics parameter.
type ParameterSweep struct {
	Scenario  *Scenario
	ParamName string
	ParamMin  float64
	ParamMax  float64
	NumSteps  int
}

type SweepResult struct {
	ParamValue  float64
	Kinetic     float64
	PeakKinetic float64
	MaxOverlap  float64
	Escapes     float64
}

func RunSweep(ctx context.Context, sweep *ParameterSweep) ([]SweepResult, error) {
	param, ok := tunables[sweep.ParamName]
	if !ok {
		return nil, fmt.Errorf("unknown parameter %q (available: %v)", sweep.ParamName, Tunables())
	}
	if sweep.NumSteps < 1 {
		return nil, fmt.Errorf("sweep needs at least one step")
	}

	base, err := sweep.Scenario.Config()
	if err != nil {
		return nil, err
	}

	paramStep := 0.0
	if sweep.NumSteps > 1 {
		paramStep = (sweep.ParamMax - sweep.ParamMin) / float64(sweep.NumSteps-1)
	}

	results := make([]SweepResult, 0, sweep.NumSteps)
	for i := 0; i < sweep.NumSteps; i++ {
		cfg := base.Clone()
		v := sweep.ParamMin + float64(i)*paramStep
		*param(cfg) = v
		if err := cfg.Validate(); err != nil {
			return results, fmt.Errorf("%s=%g: %w", sweep.ParamName, v, err)
		}

		exp := experiment.New(experiment.Config{
			Sim:      cfg,
			Preset:   sweep.Scenario.Preset,
			Scenario: sweep.Scenario.Name,
			Ticks:    sweep.Scenario.Ticks,
			Script:   sweep.Scenario,
		})
		if err := exp.Setup(); err != nil {
			return results, err
		}
		res, err := exp.Run(ctx)
		if err != nil {
			return results, err
		}

		results = append(results, SweepResult{
			ParamValue:  v,
			Kinetic:     res.Metrics["kinetic"],
			PeakKinetic: res.Summaries["kinetic"].Max,
			MaxOverlap:  res.Summaries["overlap"].Max,
			Escapes:     res.Summaries["escapes"].Max,
		})
	}
	return results, nil
}
