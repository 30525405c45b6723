package voicing

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/xenharmonic-devs/aperiodic-oscillator/cents"
	"github.com/xenharmonic-devs/aperiodic-oscillator/internal/testutil"
	"github.com/xenharmonic-devs/aperiodic-oscillator/spectrum"
)

func mustSpectrum(t *testing.T, ratios, amps []float64) spectrum.Spectrum {
	t.Helper()

	sp, err := spectrum.FromPairs(ratios, amps)
	if err != nil {
		t.Fatalf("FromPairs: %v", err)
	}

	return sp
}

// slotAmplitude locates the nearest cell for the ratio and returns its
// amplitude along with the slot's pitch error.
func slotAmplitude(t *testing.T, v *Voicing, ratio float64) (float64, float64) {
	t.Helper()

	voice, h, errCents := NearestSlot(ratio, v.Ratios)
	if h >= len(v.Tables[voice]) {
		t.Fatalf("ratio %v: slot (%d, %d) beyond table length %d", ratio, voice, h, len(v.Tables[voice]))
	}

	return v.Tables[voice][h], errCents
}

func TestAllocateHarmonicSeriesCollapsesToOneVoice(t *testing.T) {
	sp := mustSpectrum(t, []float64{1, 2, 3, 4, 5}, []float64{10, 9, 8, 7, 6})

	v, err := Allocate(sp, Config{MaxVoices: 10, ToleranceCents: 0.5})
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}

	if v.NumVoices() != 1 {
		t.Fatalf("got %d voices, want 1", v.NumVoices())
	}

	if v.Ratios[0] != 1 {
		t.Fatalf("base ratio %v, want 1", v.Ratios[0])
	}

	if v.Detunings[0] != 0 {
		t.Fatalf("detuning %v cents, want 0", v.Detunings[0])
	}

	want := []float64{0, 10, 9, 8, 7, 6}
	if !reflect.DeepEqual(v.Tables[0], want) {
		t.Fatalf("table %v, want %v", v.Tables[0], want)
	}
}

func TestAllocateMetallicSpectrumFullBudget(t *testing.T) {
	ratios, amps := testutil.MetallicSpectrum(20)
	sp := mustSpectrum(t, ratios, amps)

	v, err := Allocate(sp, Config{MaxVoices: 9, ToleranceCents: 0.5})
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}

	if v.NumVoices() != 9 {
		t.Fatalf("got %d voices, want 9", v.NumVoices())
	}

	// Nine voices suffice to park every golden-ratio partial within the
	// half-cent tolerance, each in its own cell.
	for i, r := range ratios {
		got, errCents := slotAmplitude(t, v, r)
		if errCents >= 0.5 {
			t.Fatalf("partial %d (ratio %v): slot error %v cents, want < 0.5", i, r, errCents)
		}

		if math.Abs(got-amps[i]) > 1e-9*amps[i] {
			t.Fatalf("partial %d: cell amplitude %v, want %v", i, got, amps[i])
		}
	}
}

func TestAllocateMetallicSpectrumTightBudget(t *testing.T) {
	ratios, amps := testutil.MetallicSpectrum(20)
	sp := mustSpectrum(t, ratios, amps)

	v, err := Allocate(sp, Config{MaxVoices: 6, ToleranceCents: 0.5})
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}

	if v.NumVoices() != 6 {
		t.Fatalf("got %d voices, want 6", v.NumVoices())
	}

	// Six voices cannot hold twenty inharmonic partials to half a cent.
	// Pitch degrades gracefully while every amplitude survives.
	maxErr := 0.0
	beyond := 0

	for i, r := range ratios {
		got, errCents := slotAmplitude(t, v, r)
		if math.Abs(got-amps[i]) > 1e-9*amps[i] {
			t.Fatalf("partial %d: cell amplitude %v, want %v", i, got, amps[i])
		}

		maxErr = max(maxErr, errCents)
		if errCents > 0.5 {
			beyond++
		}
	}

	if beyond == 0 {
		t.Fatal("expected at least one partial beyond the half-cent tolerance")
	}

	if maxErr > 8 {
		t.Fatalf("max slot error %v cents, want <= 8", maxErr)
	}
}

func TestAllocateDeterministic(t *testing.T) {
	ratios, amps := testutil.MetallicSpectrum(20)
	sp := mustSpectrum(t, ratios, amps)
	cfg := Config{MaxVoices: 6, ToleranceCents: 0.5}

	first, err := Allocate(sp, cfg)
	if err != nil {
		t.Fatalf("first Allocate: %v", err)
	}

	second, err := Allocate(sp, cfg)
	if err != nil {
		t.Fatalf("second Allocate: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Fatal("repeated allocation differs")
	}
}

func TestAllocateConservesTotalAmplitude(t *testing.T) {
	ratios, amps := testutil.MetallicSpectrum(20)
	sp := mustSpectrum(t, ratios, amps)

	for _, maxVoices := range []int{1, 3, 6, 9} {
		v, err := Allocate(sp, Config{MaxVoices: maxVoices, ToleranceCents: 0.5})
		if err != nil {
			t.Fatalf("maxVoices=%d: %v", maxVoices, err)
		}

		want := sp.TotalAmplitude()
		if got := v.TotalAmplitude(); math.Abs(got-want) > 1e-9 {
			t.Fatalf("maxVoices=%d: total amplitude %v, want %v", maxVoices, got, want)
		}
	}
}

func TestAllocateRespectsVoiceBudget(t *testing.T) {
	// Golden-angle steps give fifty mutually inharmonic ratios.
	ratios := make([]float64, 50)
	amps := make([]float64, 50)

	for i := range ratios {
		_, frac := math.Modf(float64(i) * 0.6180339887498949)
		ratios[i] = 1 + 4*frac
		amps[i] = 1
	}

	sp := mustSpectrum(t, ratios, amps)

	v, err := Allocate(sp, Config{MaxVoices: 4, ToleranceCents: 3})
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}

	if v.NumVoices() > 4 {
		t.Fatalf("got %d voices, want at most 4", v.NumVoices())
	}

	if got := v.TotalAmplitude(); math.Abs(got-50) > 1e-9 {
		t.Fatalf("total amplitude %v, want 50", got)
	}
}

func TestAllocatePreservesVoiceOrder(t *testing.T) {
	// Three ratios with no integer relations near any admissible
	// denominator: each claims a voice, in spectrum order.
	in := []float64{1, 1.272, 1.618}
	sp := mustSpectrum(t, in, []float64{1, 1, 1})

	v, err := Allocate(sp, Config{MaxVoices: 8, ToleranceCents: 0.5})
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}

	if !reflect.DeepEqual(v.Ratios, in) {
		t.Fatalf("voice ratios %v, want %v", v.Ratios, in)
	}

	for i, r := range v.Ratios {
		if v.Detunings[i] != cents.FromRatio(r) {
			t.Fatalf("voice %d: detuning %v, want %v", i, v.Detunings[i], cents.FromRatio(r))
		}
	}
}

func TestAllocateEmptySpectrum(t *testing.T) {
	v, err := Allocate(spectrum.Spectrum{}, DefaultConfig())
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}

	if v.NumVoices() != 0 {
		t.Fatalf("got %d voices, want 0", v.NumVoices())
	}

	if len(v.Tables) != 0 {
		t.Fatalf("got %d tables, want 0", len(v.Tables))
	}

	if v.TotalAmplitude() != 0 {
		t.Fatalf("total amplitude %v, want 0", v.TotalAmplitude())
	}
}

func TestAllocateRejectsInvalidConfig(t *testing.T) {
	sp := mustSpectrum(t, []float64{1}, []float64{1})

	if _, err := Allocate(sp, Config{MaxVoices: 0, ToleranceCents: 1}); !errors.Is(err, ErrMaxVoices) {
		t.Fatalf("zero voices: got %v, want ErrMaxVoices", err)
	}

	for _, tol := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		if _, err := Allocate(sp, Config{MaxVoices: 4, ToleranceCents: tol}); !errors.Is(err, ErrTolerance) {
			t.Fatalf("tolerance %v: got %v, want ErrTolerance", tol, err)
		}
	}
}

func TestAllocateRejectsInvalidSpectrum(t *testing.T) {
	for _, ratio := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		bad := spectrum.Spectrum{{Ratio: ratio, Amplitude: 1}}
		if _, err := Allocate(bad, DefaultConfig()); !errors.Is(err, spectrum.ErrInvalidRatio) {
			t.Fatalf("ratio %v: got %v, want ErrInvalidRatio", ratio, err)
		}
	}

	bad := spectrum.Spectrum{{Ratio: 1, Amplitude: math.NaN()}}
	if _, err := Allocate(bad, DefaultConfig()); !errors.Is(err, spectrum.ErrInvalidAmplitude) {
		t.Fatalf("NaN amplitude: got %v, want ErrInvalidAmplitude", err)
	}
}

func TestDefaultConfigValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestApplyOptions(t *testing.T) {
	cfg := ApplyOptions(WithMaxVoices(5), WithTolerance(2.5))
	if cfg.MaxVoices != 5 || cfg.ToleranceCents != 2.5 {
		t.Fatalf("got %+v", cfg)
	}

	// Out-of-range values leave the defaults in place.
	cfg = ApplyOptions(WithMaxVoices(-1), WithTolerance(0), nil)
	if !reflect.DeepEqual(cfg, DefaultConfig()) {
		t.Fatalf("got %+v, want defaults", cfg)
	}
}
