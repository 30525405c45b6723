package render

import (
	"fmt"
	"math"

	"github.com/xenharmonic-devs/aperiodic-oscillator/voicing"
)

type bankConfig struct {
	gain     float64
	waveSize int
}

// BankOption adjusts bank construction.
type BankOption func(*bankConfig)

// WithGain sets a linear output gain. Zero and negative gains are legal;
// non-finite values are ignored.
func WithGain(gain float64) BankOption {
	return func(cfg *bankConfig) {
		if !math.IsNaN(gain) && !math.IsInf(gain, 0) {
			cfg.gain = gain
		}
	}
}

// WithWaveSize fixes the wavetable length for every voice instead of the
// per-voice default. Values that are not positive are ignored; the size is
// still checked against each voice's harmonic count during construction.
func WithWaveSize(size int) BankOption {
	return func(cfg *bankConfig) {
		if size > 0 {
			cfg.waveSize = size
		}
	}
}

type oscillator struct {
	wave  *PeriodicWave
	phase float64
	step  float64
}

func (o *oscillator) nextSample() float64 {
	s := o.wave.Sample(o.phase)

	o.phase += o.step
	if o.phase >= 1 {
		o.phase--
	}

	return s
}

// Bank renders a voicing as a sum of wavetable oscillators, one per voice.
// Voice i plays its harmonic table at fundamentalHz times the voice ratio.
type Bank struct {
	gain   float64
	voices []oscillator
}

// NewBank builds one oscillator per voice of v. Construction fails if any
// voice frequency reaches the Nyquist limit; quieter degenerate cases such
// as empty harmonic tables render as silence.
func NewBank(v *voicing.Voicing, fundamentalHz, sampleRate float64, opts ...BankOption) (*Bank, error) {
	if v == nil {
		return nil, ErrNilVoicing
	}

	if !(sampleRate > 0) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("%w: got %g", ErrSampleRate, sampleRate)
	}

	if !(fundamentalHz > 0) || math.IsInf(fundamentalHz, 0) {
		return nil, fmt.Errorf("%w: got %g", ErrFundamental, fundamentalHz)
	}

	cfg := bankConfig{gain: 1}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	voices := make([]oscillator, 0, v.NumVoices())

	for i, ratio := range v.Ratios {
		freq := fundamentalHz * ratio
		if freq >= sampleRate/2 {
			return nil, fmt.Errorf("%w: voice %d at %g Hz, sample rate %g Hz", ErrUnrenderable, i, freq, sampleRate)
		}

		wave, err := NewPeriodicWave(v.Tables[i], cfg.waveSize)
		if err != nil {
			return nil, fmt.Errorf("render: voice %d: %w", i, err)
		}

		voices = append(voices, oscillator{wave: wave, step: freq / sampleRate})
	}

	return &Bank{gain: cfg.gain, voices: voices}, nil
}

// NumVoices returns the number of oscillators in the bank.
func (b *Bank) NumVoices() int {
	return len(b.voices)
}

// Process overwrites dst with the next len(dst) output samples.
func (b *Bank) Process(dst []float64) {
	for i := range dst {
		dst[i] = b.nextSample()
	}
}

// Render allocates and fills a buffer of n samples.
func (b *Bank) Render(n int) ([]float64, error) {
	if n < 0 {
		return nil, fmt.Errorf("render: negative sample count %d", n)
	}

	dst := make([]float64, n)
	b.Process(dst)

	return dst, nil
}

// Reset rewinds every oscillator to phase zero, so the next Process call
// reproduces the output of a freshly constructed bank.
func (b *Bank) Reset() {
	for i := range b.voices {
		b.voices[i].phase = 0
	}
}

func (b *Bank) nextSample() float64 {
	var sum float64
	for i := range b.voices {
		sum += b.voices[i].nextSample()
	}

	return sum * b.gain
}
