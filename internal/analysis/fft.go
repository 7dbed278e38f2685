package analysis

import (
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/stat"
)

// PowerSpectrum returns the magnitude of each frequency bin of data with
// its mean removed. Bin i is i cycles per len(data) samples.
func PowerSpectrum(data []float64) []float64 {
	if len(data) < 2 {
		return nil
	}
	mean := stat.Mean(data, nil)
	centred := make([]float64, len(data))
	for i, v := range data {
		centred[i] = v - mean
	}

	coeff := fourier.NewFFT(len(data)).Coefficients(nil, centred)
	ps := make([]float64, len(coeff))
	for i, c := range coeff {
		ps[i] = cmplx.Abs(c)
	}
	return ps
}

// DominantFrequency returns the strongest non-zero frequency of data in
// Hz, given sampleRate samples per second, and its magnitude. A flat or
// too short series reports 0.
func DominantFrequency(data []float64, sampleRate float64) (float64, float64) {
	ps := PowerSpectrum(data)
	best, power := 0, 0.0
	for i := 1; i < len(ps); i++ {
		if ps[i] > power {
			best, power = i, ps[i]
		}
	}
	if best == 0 {
		return 0, 0
	}
	return float64(best) * sampleRate / float64(len(data)), power
}
