package testutil

import "math"

// MetallicSpectrum returns n partials in a geometric series of the square
// root of the golden ratio: ratio_i = phi^i, amplitude_i = phi^-i with
// phi = sqrt((sqrt(5)+1)/2). Adjacent partials sit ~416 cents apart and no
// two powers share an exact integer relation, which makes the series a
// worst case for harmonic grouping.
func MetallicSpectrum(n int) (ratios, amplitudes []float64) {
	phi := math.Sqrt((math.Sqrt(5) + 1) / 2)

	ratios = make([]float64, n)
	amplitudes = make([]float64, n)

	r := 1.0
	for i := range ratios {
		ratios[i] = r
		amplitudes[i] = 1 / r
		r *= phi
	}

	return ratios, amplitudes
}

// HarmonicSpectrum returns the integer ratios 1..len(amps) paired with the
// given amplitudes.
func HarmonicSpectrum(amps ...float64) (ratios, amplitudes []float64) {
	ratios = make([]float64, len(amps))
	for i := range ratios {
		ratios[i] = float64(i + 1)
	}

	amplitudes = append([]float64(nil), amps...)

	return ratios, amplitudes
}
