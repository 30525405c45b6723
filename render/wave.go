package render

import (
	"errors"
	"fmt"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"
)

// Errors returned by wavetable construction and bank setup.
var (
	ErrWaveSize     = errors.New("render: wave size must be a power of two and at least twice the harmonic count")
	ErrNilVoicing   = errors.New("render: voicing must not be nil")
	ErrSampleRate   = errors.New("render: sample rate must be positive and finite")
	ErrFundamental  = errors.New("render: fundamental frequency must be positive and finite")
	ErrUnrenderable = errors.New("render: voice frequency at or above Nyquist")
)

// minWaveSize keeps short harmonic series on tables long enough for the
// linear interpolation in Sample to stay well below audibility.
const minWaveSize = 2048

// PeriodicWave is a single-cycle wavetable synthesized from a harmonic
// amplitude series. Harmonic h of the series lands at frequency h relative
// to the cycle; harmonic 0 is silent by construction.
type PeriodicWave struct {
	samples []float64
}

// NewPeriodicWave synthesizes the wavetable x[n] = sum_h a_h*sin(2*pi*h*n/N)
// by inverse FFT. A size of 0 selects the next power of two at or above
// max(2*len(harmonics), 2048); an explicit size must be a power of two with
// room for every harmonic below Nyquist.
func NewPeriodicWave(harmonics []float64, size int) (*PeriodicWave, error) {
	if size == 0 {
		size = defaultWaveSize(len(harmonics))
	}

	if size < 2 || size&(size-1) != 0 || size < 2*len(harmonics) {
		return nil, fmt.Errorf("%w: size %d for %d harmonics", ErrWaveSize, size, len(harmonics))
	}

	plan, err := algofft.NewPlan64(size)
	if err != nil {
		return nil, fmt.Errorf("render: fft plan: %w", err)
	}

	// Sine phase: X[h] = -i*N*a_h/2 with the conjugate mirrored into the
	// upper half, so the 1/N-normalized inverse reproduces the series.
	bins := make([]complex128, size)
	for h := 1; h < len(harmonics); h++ {
		a := harmonics[h]
		if a == 0 {
			continue
		}

		bins[h] = complex(0, -a*float64(size)/2)
		bins[size-h] = complex(0, a*float64(size)/2)
	}

	frame := make([]complex128, size)
	if err := plan.Inverse(frame, bins); err != nil {
		return nil, fmt.Errorf("render: inverse fft: %w", err)
	}

	samples := make([]float64, size)
	for i := range samples {
		samples[i] = real(frame[i])
	}

	return &PeriodicWave{samples: samples}, nil
}

// Size returns the wavetable length.
func (w *PeriodicWave) Size() int {
	return len(w.samples)
}

// Sample evaluates the wave at the given phase in cycles, linearly
// interpolating between table entries. Any finite phase is legal; it wraps
// into [0, 1).
func (w *PeriodicWave) Sample(phase float64) float64 {
	n := len(w.samples)

	p := phase - math.Floor(phase)
	x := p * float64(n)

	// For tiny negative phases the subtraction above rounds p up to
	// exactly 1, so x reaches n; the mask folds that onto index 0.
	i := int(x)
	frac := x - float64(i)
	i &= n - 1
	j := (i + 1) & (n - 1)

	return w.samples[i] + frac*(w.samples[j]-w.samples[i])
}

func defaultWaveSize(harmonicCount int) int {
	size := minWaveSize
	for size < 2*harmonicCount {
		size *= 2
	}

	return size
}
