package voicing

import (
	"math"

	"github.com/xenharmonic-devs/aperiodic-oscillator/cents"
	"github.com/xenharmonic-devs/aperiodic-oscillator/spectrum"
)

// AllocateRatios greedily reduces the partial ratios, in the order given, to
// at most cfg.MaxVoices base ratios.
//
// Each ratio meets one of four fates: it lies within the effective tolerance
// of an integer harmonic of an existing voice and is absorbed; it absorbs
// into a voice after contracting that voice's base ratio; it founds a new
// voice while capacity remains; or it is passed over. Passed-over ratios are
// not lost: amplitude assignment maps every partial onto the final voices
// regardless.
//
// The effective tolerance is cents.Epsilon while unused capacity remains and
// cfg.ToleranceCents afterwards, so early partials claim voices instead of
// settling for approximate matches. Contraction always gates on the caller's
// tolerance.
func AllocateRatios(ratios []float64, cfg Config) ([]float64, error) {
	err := cfg.Validate()
	if err != nil {
		return nil, err
	}

	for _, r := range ratios {
		if !(r > 0) || math.IsInf(r, 0) {
			return nil, spectrum.ErrInvalidRatio
		}
	}

	voices := make([]float64, 0, cfg.MaxVoices)

	for _, ratio := range ratios {
		tol := cfg.ToleranceCents
		if len(voices) < cfg.MaxVoices {
			tol = cents.Epsilon
		}

		if absorb(voices, ratio, tol, cfg.ToleranceCents) {
			continue
		}

		if len(voices) < cfg.MaxVoices {
			voices = append(voices, ratio)
		}
	}

	// The contraction guard keeps every base ratio above minBaseRatio, so
	// this cannot fire; assert rather than emit NaN detunings downstream.
	for _, base := range voices {
		if !(base > 0) || math.IsInf(base, 0) {
			return nil, ErrDegenerateVoice
		}
	}

	return voices, nil
}

// absorb tries to fold the partial into an existing voice, scanning voices
// in creation order. Reports whether the partial was absorbed; on a
// contraction the voice's base ratio is updated in place.
func absorb(voices []float64, ratio, tol, contractTol float64) bool {
	for i, base := range voices {
		h := math.Round(ratio / base)
		if cents.Distance(h*base, ratio) < tol {
			return true
		}

		if contract(voices, i, ratio, contractTol) {
			return true
		}
	}

	return false
}

// contract searches for a denominator d such that the partial lands within
// tolerance of an integer harmonic of base/d, and on success replaces the
// voice's base ratio with base/d. Harmonics of the contracted voice still
// cover the old base (it is harmonic d of the new one). Denominators stop
// before the contracted base would drop below minBaseRatio.
func contract(voices []float64, i int, ratio, tol float64) bool {
	base := voices[i]

	for den := 2.0; base > minBaseRatio*den; den++ {
		h := math.Round(ratio * den / base)
		if cents.Distance(h*base, ratio*den) < tol {
			voices[i] = base / den
			return true
		}
	}

	return false
}
