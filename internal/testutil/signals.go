package testutil

import "math"

// SineMixture sums sinusoids at the given frequencies and amplitudes into a
// single buffer of the requested length. Frequencies that land on exact FFT
// bins for the chosen length and rate produce leakage-free spectra, which
// keeps extraction tests deterministic.
func SineMixture(sampleRate float64, length int, freqsHz, amplitudes []float64) []float64 {
	out := make([]float64, length)
	for j, f := range freqsHz {
		step := 2 * math.Pi * f / sampleRate
		for i := range out {
			out[i] += amplitudes[j] * math.Sin(step*float64(i))
		}
	}

	return out
}
