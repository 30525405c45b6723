package voicing

import (
	"math"

	"github.com/xenharmonic-devs/aperiodic-oscillator/cents"
	"github.com/xenharmonic-devs/aperiodic-oscillator/spectrum"
)

// maxHarmonic caps the harmonic index so the float-to-int conversion in slot
// selection stays defined for absurd ratio/base combinations.
const maxHarmonic = 1 << 30

// AssignAmplitudes distributes every partial's amplitude onto the harmonic
// grids of the given voices.
//
// Each partial goes to the (voice, harmonic) cell with the smallest pitch
// error, however large that error is; partials sharing a cell accumulate
// additively. Tables grow on demand and stay dense from harmonic 0, so a
// cell is either an assigned sum or an explicit zero. The function is pure:
// repeated calls with the same inputs yield identical tables.
func AssignAmplitudes(sp spectrum.Spectrum, baseRatios []float64) ([][]float64, error) {
	err := sp.Validate()
	if err != nil {
		return nil, err
	}

	for _, base := range baseRatios {
		if !(base > 0) || math.IsInf(base, 0) {
			return nil, ErrDegenerateVoice
		}
	}

	if len(baseRatios) == 0 {
		if len(sp) == 0 {
			return [][]float64{}, nil
		}

		return nil, ErrNoVoices
	}

	tables := make([][]float64, len(baseRatios))

	for _, p := range sp {
		v, h, _ := NearestSlot(p.Ratio, baseRatios)
		tables[v] = growTable(tables[v], h)
		tables[v][h] += p.Amplitude
	}

	return tables, nil
}

// NearestSlot returns the voice index and integer harmonic that minimize
// the pitch error for the given ratio, plus that error in cents.
//
// Every ratio maps somewhere: there is no tolerance gate. A later voice
// displaces an earlier one only with a strictly smaller error, so ties go
// to the lowest voice index. Harmonic 0 is a legal slot for ratios far
// below half the smallest base; it carries amplitude but renders silent.
//
// baseRatios must be non-empty and contain only positive finite values.
func NearestSlot(ratio float64, baseRatios []float64) (voice, harmonic int, errorCents float64) {
	h := math.Round(ratio / baseRatios[0])
	voice, harmonic, errorCents = 0, clampHarmonic(h), cents.Distance(h*baseRatios[0], ratio)

	for j := 1; j < len(baseRatios); j++ {
		h = math.Round(ratio / baseRatios[j])

		if e := cents.Distance(h*baseRatios[j], ratio); e < errorCents {
			voice, harmonic, errorCents = j, clampHarmonic(h), e
		}
	}

	return voice, harmonic, errorCents
}

func clampHarmonic(h float64) int {
	if h > maxHarmonic {
		return maxHarmonic
	}

	return int(h)
}

// growTable extends table with zeros so index h is addressable.
func growTable(table []float64, h int) []float64 {
	if h < len(table) {
		return table
	}

	grown := make([]float64, h+1)
	copy(grown, table)

	return grown
}
