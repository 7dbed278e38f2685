package storage

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/san-kum/driftfield/internal/field"
)

// ParticleRecord is one row of particles.csv.
type ParticleRecord struct {
	ID     int     `csv:"id"`
	X      float64 `csv:"x"`
	Y      float64 `csv:"y"`
	VX     float64 `csv:"vx"`
	VY     float64 `csv:"vy"`
	HomeX  float64 `csv:"home_x"`
	HomeY  float64 `csv:"home_y"`
	Radius float64 `csv:"radius"`
	Color  string  `csv:"color"`
}

func writeParticles(path string, ps []field.Particle) error {
	records := make([]ParticleRecord, len(ps))
	for i, p := range ps {
		c, _ := colorful.MakeColor(p.Color)
		records[i] = ParticleRecord{
			ID:     i,
			X:      p.X,
			Y:      p.Y,
			VX:     p.VX,
			VY:     p.VY,
			HomeX:  p.HomeX,
			HomeY:  p.HomeY,
			Radius: p.Radius,
			Color:  c.Hex(),
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return gocsv.MarshalFile(&records, f)
}

// LoadParticles reads the final particle state of a run.
func (s *Store) LoadParticles(runID string) ([]field.Particle, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, particlesFile))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var records []ParticleRecord
	if err := gocsv.UnmarshalFile(f, &records); err != nil {
		return nil, fmt.Errorf("reading %s: %w", particlesFile, err)
	}

	ps := make([]field.Particle, len(records))
	for i, r := range records {
		c, err := colorful.Hex(r.Color)
		if err != nil {
			return nil, fmt.Errorf("particle %d: %w", r.ID, err)
		}
		cr, cg, cb := c.RGB255()
		ps[i] = field.Particle{
			X:      r.X,
			Y:      r.Y,
			VX:     r.VX,
			VY:     r.VY,
			HomeX:  r.HomeX,
			HomeY:  r.HomeY,
			Radius: r.Radius,
			Color:  color.RGBA{R: cr, G: cg, B: cb, A: 0xff},
		}
	}
	return ps, nil
}
