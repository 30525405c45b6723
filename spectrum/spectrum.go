package spectrum

import (
	"errors"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// Errors returned by spectrum construction and validation.
var (
	ErrLengthMismatch   = errors.New("spectrum: ratio and amplitude counts differ")
	ErrInvalidRatio     = errors.New("spectrum: partial ratio must be positive and finite")
	ErrInvalidAmplitude = errors.New("spectrum: partial amplitude must be finite")
)

// Partial is one spectral component: a frequency ratio relative to a nominal
// fundamental and its amplitude. Ratios need not be integers, need not be
// >= 1, and need not be ordered. Partials are value inputs; no operation in
// this module mutates them.
type Partial struct {
	Ratio     float64
	Amplitude float64
}

// Spectrum is an ordered collection of partials. Earlier partials take
// priority when downstream stages run out of resources.
type Spectrum []Partial

// FromPairs builds a Spectrum from index-aligned ratio and amplitude slices.
// The slice lengths must match and every pair must be valid; on error no
// partial result is returned.
func FromPairs(ratios, amplitudes []float64) (Spectrum, error) {
	if len(ratios) != len(amplitudes) {
		return nil, ErrLengthMismatch
	}

	sp := make(Spectrum, len(ratios))
	for i := range ratios {
		sp[i] = Partial{Ratio: ratios[i], Amplitude: amplitudes[i]}
	}

	err := sp.Validate()
	if err != nil {
		return nil, err
	}

	return sp, nil
}

// Validate checks every partial. Ratios must be positive and finite;
// amplitudes must be finite. An empty spectrum is valid.
func (s Spectrum) Validate() error {
	for _, p := range s {
		if !(p.Ratio > 0) || math.IsInf(p.Ratio, 0) {
			return ErrInvalidRatio
		}

		if math.IsNaN(p.Amplitude) || math.IsInf(p.Amplitude, 0) {
			return ErrInvalidAmplitude
		}
	}

	return nil
}

// Ratios returns the partial ratios as a fresh slice.
func (s Spectrum) Ratios() []float64 {
	out := make([]float64, len(s))
	for i, p := range s {
		out[i] = p.Ratio
	}

	return out
}

// Amplitudes returns the partial amplitudes as a fresh slice.
func (s Spectrum) Amplitudes() []float64 {
	out := make([]float64, len(s))
	for i, p := range s {
		out[i] = p.Amplitude
	}

	return out
}

// TotalAmplitude returns the sum of all partial amplitudes.
func (s Spectrum) TotalAmplitude() float64 {
	return floats.Sum(s.Amplitudes())
}

// SortedByAmplitude returns a copy ordered loudest first. The sort is stable,
// so equal amplitudes keep their original relative order.
func (s Spectrum) SortedByAmplitude() Spectrum {
	out := make(Spectrum, len(s))
	copy(out, s)

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Amplitude > out[j].Amplitude
	})

	return out
}

// SortedByRatio returns a copy ordered lowest ratio first. The sort is
// stable, so equal ratios keep their original relative order.
func (s Spectrum) SortedByRatio() Spectrum {
	out := make(Spectrum, len(s))
	copy(out, s)

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Ratio < out[j].Ratio
	})

	return out
}
