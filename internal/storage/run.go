package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
	"github.com/san-kum/driftfield/internal/field"
	"github.com/san-kum/driftfield/internal/metrics"
	"github.com/san-kum/driftfield/internal/sim"
)

// Sample is one row of samples.csv.
type Sample struct {
	Tick       int     `csv:"tick"`
	TimeMs     float64 `csv:"time_ms"`
	Kinetic    float64 `csv:"kinetic"`
	Overlap    float64 `csv:"overlap"`
	Escapes    float64 `csv:"escapes"`
	Shockwaves float64 `csv:"shockwaves"`
	Shock      float64 `csv:"shock"`
	Collision  float64 `csv:"collision"`
}

// Series returns the named column of samples.
func Series(samples []Sample, name string) ([]float64, error) {
	pick, ok := columns[name]
	if !ok {
		return nil, fmt.Errorf("unknown series %q", name)
	}
	out := make([]float64, len(samples))
	for i := range samples {
		out[i] = pick(&samples[i])
	}
	return out, nil
}

var columns = map[string]func(*Sample) float64{
	"kinetic":    func(s *Sample) float64 { return s.Kinetic },
	"overlap":    func(s *Sample) float64 { return s.Overlap },
	"escapes":    func(s *Sample) float64 { return s.Escapes },
	"shockwaves": func(s *Sample) float64 { return s.Shockwaves },
	"shock":      func(s *Sample) float64 { return s.Shock },
	"collision":  func(s *Sample) float64 { return s.Collision },
}

// Run is an open run directory. It records one sample per committed tick
// when added to a loop as an observer.
type Run struct {
	ID  string
	Dir string

	samples       *os.File
	headerWritten bool
	tracked       []metrics.Series
	start         int64
	started       bool
	err           error
}

// Track sets the metrics sampled on every frame. Metrics must also be
// registered on the loop so they observe before the run does.
func (r *Run) Track(ms []metrics.Series) {
	r.tracked = ms
}

func (r *Run) OnFrame(fr *sim.Frame) {
	if r.err != nil {
		return
	}
	if !r.started {
		r.start, r.started = fr.Now.UnixNano(), true
	}

	s := Sample{
		Tick:       fr.Tick,
		TimeMs:     float64(fr.Now.UnixNano()-r.start) / 1e6,
		Shockwaves: float64(fr.Shockwaves),
	}
	for _, m := range r.tracked {
		switch m.Name() {
		case "kinetic":
			s.Kinetic = m.Value()
		case "overlap":
			s.Overlap = m.Value()
		case "escapes":
			s.Escapes = m.Value()
		case "shock":
			s.Shock = m.Value()
		case "collision":
			s.Collision = m.Value()
		}
	}

	if err := r.writeSample(s); err != nil {
		r.err = err
	}
}

func (r *Run) writeSample(s Sample) error {
	records := []Sample{s}
	if !r.headerWritten {
		if err := gocsv.Marshal(records, r.samples); err != nil {
			return fmt.Errorf("writing sample: %w", err)
		}
		r.headerWritten = true
		return nil
	}
	if err := gocsv.MarshalWithoutHeaders(records, r.samples); err != nil {
		return fmt.Errorf("writing sample: %w", err)
	}
	return nil
}

// Abort closes the samples file and removes the run directory, for runs
// that end before Close.
func (r *Run) Abort() error {
	closeErr := r.samples.Close()
	if err := os.RemoveAll(r.Dir); err != nil {
		return fmt.Errorf("removing run %s: %w", r.ID, err)
	}
	return closeErr
}

// Close writes metadata and the final particle state, and closes the
// samples file. Summaries of every tracked metric are added to meta.
func (r *Run) Close(meta RunMetadata, particles []field.Particle) error {
	if err := r.samples.Close(); err != nil && r.err == nil {
		r.err = err
	}
	if r.err != nil {
		return r.err
	}

	meta.ID = r.ID
	if meta.Metrics == nil {
		meta.Metrics = make(map[string]float64, len(r.tracked))
	}
	if meta.Summaries == nil {
		meta.Summaries = make(map[string]metrics.Summary, len(r.tracked))
	}
	for _, m := range r.tracked {
		meta.Metrics[m.Name()] = m.Value()
		meta.Summaries[m.Name()] = metrics.Summarize(m.Samples())
	}

	if err := writeJSON(filepath.Join(r.Dir, metadataFile), meta); err != nil {
		return fmt.Errorf("writing %s: %w", metadataFile, err)
	}
	if err := writeParticles(filepath.Join(r.Dir, particlesFile), particles); err != nil {
		return fmt.Errorf("writing %s: %w", particlesFile, err)
	}
	return nil
}
