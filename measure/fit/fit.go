// Package fit measures how faithfully a voicing reproduces a spectrum.
//
// Amplitude assignment never drops a partial, however far it sits from the
// nearest harmonic slot. Callers that need a fidelity ceiling inspect the
// pitch errors after the fact; this package is that inspection.
package fit

import (
	"errors"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/xenharmonic-devs/aperiodic-oscillator/spectrum"
	"github.com/xenharmonic-devs/aperiodic-oscillator/voicing"
)

// Errors returned by report evaluation.
var (
	ErrNilVoicing = errors.New("fit: voicing must not be nil")
	ErrTolerance  = errors.New("fit: tolerance must be positive and finite")
)

// PartialFit records where one partial lands on the voicing's harmonic
// grids and how far off it sits.
type PartialFit struct {
	Ratio      float64
	Amplitude  float64
	Voice      int
	Harmonic   int
	ErrorCents float64
}

// Report aggregates per-partial fit quality and amplitude bookkeeping.
type Report struct {
	// Partials holds one entry per input partial, in spectrum order.
	Partials []PartialFit

	// MaxErrorCents, MeanErrorCents, and P95ErrorCents summarize the
	// pitch errors over all partials. They are zero for an empty spectrum.
	MaxErrorCents  float64
	MeanErrorCents float64
	P95ErrorCents  float64

	// WithinTolerance counts partials whose error is at or below the
	// tolerance passed to Evaluate.
	WithinTolerance int

	// InputAmplitude sums the spectrum's amplitudes; AssignedAmplitude
	// sums the voicing's harmonic tables. For a voicing allocated from the
	// same spectrum the two agree up to accumulation error.
	InputAmplitude    float64
	AssignedAmplitude float64

	// VoiceAmplitude holds the per-voice table sums.
	VoiceAmplitude []float64
}

// Evaluate re-scans the spectrum against the voicing's base ratios and
// reports where every partial lands. The scan uses the same nearest-slot
// rule as amplitude assignment, ties included, so the reported cells are
// the cells the partials were assigned to.
func Evaluate(sp spectrum.Spectrum, v *voicing.Voicing, toleranceCents float64) (Report, error) {
	if v == nil {
		return Report{}, ErrNilVoicing
	}

	if !(toleranceCents > 0) || math.IsInf(toleranceCents, 0) {
		return Report{}, ErrTolerance
	}

	err := sp.Validate()
	if err != nil {
		return Report{}, err
	}

	for _, base := range v.Ratios {
		if !(base > 0) || math.IsInf(base, 0) {
			return Report{}, voicing.ErrDegenerateVoice
		}
	}

	if v.NumVoices() == 0 && len(sp) > 0 {
		return Report{}, voicing.ErrNoVoices
	}

	rep := Report{
		Partials:       make([]PartialFit, 0, len(sp)),
		InputAmplitude: sp.TotalAmplitude(),
		VoiceAmplitude: make([]float64, len(v.Tables)),
	}

	for i, table := range v.Tables {
		rep.VoiceAmplitude[i] = floats.Sum(table)
	}

	rep.AssignedAmplitude = floats.Sum(rep.VoiceAmplitude)

	if len(sp) == 0 {
		return rep, nil
	}

	errorsCents := make([]float64, 0, len(sp))

	for _, p := range sp {
		voiceIdx, harmonic, errCents := voicing.NearestSlot(p.Ratio, v.Ratios)

		rep.Partials = append(rep.Partials, PartialFit{
			Ratio:      p.Ratio,
			Amplitude:  p.Amplitude,
			Voice:      voiceIdx,
			Harmonic:   harmonic,
			ErrorCents: errCents,
		})

		errorsCents = append(errorsCents, errCents)

		if errCents <= toleranceCents {
			rep.WithinTolerance++
		}
	}

	sort.Float64s(errorsCents)

	rep.MaxErrorCents = floats.Max(errorsCents)
	rep.MeanErrorCents = stat.Mean(errorsCents, nil)
	rep.P95ErrorCents = stat.Quantile(0.95, stat.Empirical, errorsCents, nil)

	return rep, nil
}

// AmplitudeConserved reports whether the voicing's table total matches the
// spectrum's amplitude total within a relative tolerance. The comparison
// scale is the larger magnitude of the two totals, floored at 1 so that
// near-zero totals compare absolutely.
func AmplitudeConserved(sp spectrum.Spectrum, v *voicing.Voicing, relTol float64) bool {
	if v == nil || !(relTol >= 0) {
		return false
	}

	in := sp.TotalAmplitude()
	out := v.TotalAmplitude()

	scale := math.Max(math.Abs(in), math.Abs(out))
	if scale < 1 {
		scale = 1
	}

	return math.Abs(in-out) <= relTol*scale
}
