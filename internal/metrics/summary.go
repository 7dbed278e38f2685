package metrics

import (
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary describes a recorded series.
type Summary struct {
	N      int
	Mean   float64
	StdDev float64
	Min    float64
	Max    float64
	P95    float64
	Last   float64
}

// Summarize computes descriptive statistics of xs. xs is not modified.
func Summarize(xs []float64) Summary {
	if len(xs) == 0 {
		return Summary{}
	}
	s := Summary{
		N:    len(xs),
		Mean: stat.Mean(xs, nil),
		Min:  floats.Min(xs),
		Max:  floats.Max(xs),
		Last: xs[len(xs)-1],
	}
	if len(xs) > 1 {
		s.StdDev = stat.StdDev(xs, nil)
	}
	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)
	s.P95 = stat.Quantile(0.95, stat.Empirical, sorted, nil)
	return s
}
