package voicing

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/xenharmonic-devs/aperiodic-oscillator/cents"
	"github.com/xenharmonic-devs/aperiodic-oscillator/spectrum"
)

// Errors returned by allocation and assignment.
var (
	ErrMaxVoices       = errors.New("voicing: max voices must be positive")
	ErrTolerance       = errors.New("voicing: tolerance must be positive and finite")
	ErrNoVoices        = errors.New("voicing: no voices to assign partials to")
	ErrDegenerateVoice = errors.New("voicing: voice base ratio must be positive and finite")
)

const (
	defaultMaxVoices      = 16
	defaultToleranceCents = 1.0

	// minBaseRatio bounds contraction: a voice never contracts below this
	// fraction of the nominal fundamental.
	minBaseRatio = 0.1
)

// Config holds the allocation budget and match tolerance.
type Config struct {
	// MaxVoices is the hard cap on allocated voices.
	MaxVoices int

	// ToleranceCents is how far, in cents, a partial may sit from an
	// integer harmonic of a voice and still be absorbed by it once the
	// voice budget is spent.
	ToleranceCents float64
}

// Option mutates a Config.
type Option func(*Config)

// DefaultConfig returns allocation defaults suited to host environments
// where oscillators are cheap: a generous voice budget and a tolerance well
// under the just-noticeable pitch difference.
func DefaultConfig() Config {
	return Config{
		MaxVoices:      defaultMaxVoices,
		ToleranceCents: defaultToleranceCents,
	}
}

// WithMaxVoices sets the voice budget.
func WithMaxVoices(n int) Option {
	return func(cfg *Config) {
		if n > 0 {
			cfg.MaxVoices = n
		}
	}
}

// WithTolerance sets the absorption tolerance in cents.
func WithTolerance(c float64) Option {
	return func(cfg *Config) {
		if c > 0 {
			cfg.ToleranceCents = c
		}
	}
}

// ApplyOptions applies zero or more options to the default config.
func ApplyOptions(opts ...Option) Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	return cfg
}

// Validate checks that the Config parameters are valid.
func (c Config) Validate() error {
	if c.MaxVoices <= 0 {
		return ErrMaxVoices
	}

	if !(c.ToleranceCents > 0) || math.IsInf(c.ToleranceCents, 0) {
		return ErrTolerance
	}

	return nil
}

// Voicing is the allocation result: one entry per voice, index aligned
// across all three fields.
type Voicing struct {
	// Ratios are the final base frequency ratios, one per voice, in
	// creation order.
	Ratios []float64

	// Detunings are the base ratios expressed as signed cents relative to
	// the nominal fundamental: Detunings[i] = cents.FromRatio(Ratios[i]).
	Detunings []float64

	// Tables hold the per-voice harmonic amplitudes. Tables[i][h] is the
	// amplitude of integer harmonic h of voice i. Each table is dense from
	// harmonic 0 through the highest assigned harmonic, with explicit
	// zeros in unassigned cells; lengths differ between voices.
	Tables [][]float64
}

// NumVoices returns the number of allocated voices.
func (v *Voicing) NumVoices() int {
	return len(v.Ratios)
}

// TotalAmplitude returns the sum over every harmonic table cell. For a
// voicing produced by Allocate it equals the input spectrum's total
// amplitude up to float accumulation error.
func (v *Voicing) TotalAmplitude() float64 {
	total := 0.0
	for _, table := range v.Tables {
		total += floats.Sum(table)
	}

	return total
}

// Allocate runs ratio allocation and amplitude assignment over the spectrum
// and assembles the result.
//
// The spectrum's order is its priority order: earlier partials anchor voices
// first. Invalid inputs are rejected before any allocation work; on error no
// partial result is returned.
func Allocate(sp spectrum.Spectrum, cfg Config) (*Voicing, error) {
	err := cfg.Validate()
	if err != nil {
		return nil, err
	}

	err = sp.Validate()
	if err != nil {
		return nil, err
	}

	ratios, err := AllocateRatios(sp.Ratios(), cfg)
	if err != nil {
		return nil, err
	}

	tables, err := AssignAmplitudes(sp, ratios)
	if err != nil {
		return nil, err
	}

	detunings := make([]float64, len(ratios))
	for i, r := range ratios {
		detunings[i] = cents.FromRatio(r)
	}

	return &Voicing{Ratios: ratios, Detunings: detunings, Tables: tables}, nil
}
