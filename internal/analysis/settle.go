package analysis

import "gonum.org/v1/gonum/floats"

// SettleIndex returns the first index from which every later sample stays
// at or below frac of the series peak. It returns -1 for an empty series
// and 0 when the series never rises above zero.
func SettleIndex(series []float64, frac float64) int {
	if len(series) == 0 {
		return -1
	}
	peak := floats.Max(series)
	if peak <= 0 {
		return 0
	}
	limit := peak * frac
	i := len(series)
	for i > 0 && series[i-1] <= limit {
		i--
	}
	return i
}
