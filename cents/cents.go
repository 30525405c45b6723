// Package cents provides logarithmic pitch-distance math over frequency ratios.
//
// A cent is 1/100 of an equal-tempered semitone, 1/1200 of an octave. All
// functions operate on dimensionless frequency ratios, so they apply equally
// to ratios relative to a fundamental and to absolute frequencies in Hz.
package cents

import "math"

const (
	// PerOctave is the number of cents in one octave.
	PerOctave = 1200.0

	// PerSemitone is the number of cents in one equal-tempered semitone.
	PerSemitone = 100.0

	// Epsilon is the distance below which two pitches are treated as the
	// same pitch. Well below the just-noticeable difference and well above
	// float64 rounding noise on ratio arithmetic.
	Epsilon = 1e-6
)

// Distance returns the absolute pitch distance between two frequency ratios:
//
//	|1200 * log2(a/b)|
//
// It is symmetric, zero only for equal pitches, and grows monotonically with
// the interval between them. If exactly one argument is zero the distance is
// +Inf; the result is never NaN for positive inputs.
func Distance(a, b float64) float64 {
	return math.Abs(PerOctave * log2(a/b))
}

// FromRatio converts a frequency ratio to a signed detuning in cents relative
// to unity. Ratios above 1 map to positive cents.
func FromRatio(r float64) float64 {
	return PerOctave * log2(r)
}

// ToRatio converts a signed detuning in cents to a frequency ratio.
func ToRatio(c float64) float64 {
	return exp2(c / PerOctave)
}
