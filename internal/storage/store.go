package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/san-kum/driftfield/internal/config"
	"github.com/san-kum/driftfield/internal/metrics"
	"github.com/san-kum/driftfield/internal/render"
)

const (
	metadataFile  = "metadata.json"
	samplesFile   = "samples.csv"
	particlesFile = "particles.csv"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID        string                     `json:"id"`
	Preset    string                     `json:"preset"`
	Scenario  string                     `json:"scenario,omitempty"`
	Timestamp time.Time                  `json:"timestamp"`
	Seed      int64                      `json:"seed"`
	Ticks     int                        `json:"ticks"`
	Count     int                        `json:"count"`
	Width     float64                    `json:"width"`
	Height    float64                    `json:"height"`
	FPS       int                        `json:"fps"`
	Render    *config.RenderConfig       `json:"render,omitempty"`
	Metrics   map[string]float64         `json:"metrics"`
	Summaries map[string]metrics.Summary `json:"summaries,omitempty"`
}

// Style returns the appearance the run was recorded with. Runs saved
// without render settings fall back to their preset, then the default.
func (m *RunMetadata) Style() render.Style {
	if m.Render != nil {
		return m.Render.Style()
	}
	if cfg := config.GetPreset(m.Preset); cfg != nil {
		return cfg.Style()
	}
	return render.DefaultStyle()
}

// Create opens a new run directory named after prefix and the start time.
func (s *Store) Create(prefix string, now time.Time) (*Run, error) {
	if err := s.Init(); err != nil {
		return nil, err
	}

	base := fmt.Sprintf("%s_%d", prefix, now.Unix())
	id := base
	for n := 1; ; n++ {
		err := os.Mkdir(filepath.Join(s.baseDir, id), 0755)
		if err == nil {
			break
		}
		if !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("creating run %s: %w", id, err)
		}
		id = fmt.Sprintf("%s_%d", base, n)
	}

	dir := filepath.Join(s.baseDir, id)
	f, err := os.Create(filepath.Join(dir, samplesFile))
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", samplesFile, err)
	}
	return &Run{ID: id, Dir: dir, samples: f}, nil
}

// List returns stored runs, newest first. Directories without readable
// metadata are skipped.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool {
		if runs[i].Timestamp.Equal(runs[j].Timestamp) {
			return runs[i].ID > runs[j].ID
		}
		return runs[i].Timestamp.After(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	return &meta, nil
}

func (s *Store) LoadSamples(runID string) ([]Sample, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, samplesFile))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	samples := []Sample{}
	if err := gocsv.UnmarshalFile(f, &samples); err != nil {
		if errors.Is(err, gocsv.ErrEmptyCSVFile) {
			return samples, nil
		}
		return nil, fmt.Errorf("reading %s: %w", samplesFile, err)
	}
	return samples, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
