package voicing

import (
	"testing"

	"github.com/xenharmonic-devs/aperiodic-oscillator/internal/testutil"
	"github.com/xenharmonic-devs/aperiodic-oscillator/spectrum"
)

func benchSpectrum(b *testing.B, n int) spectrum.Spectrum {
	b.Helper()

	ratios, amps := testutil.MetallicSpectrum(n)

	sp, err := spectrum.FromPairs(ratios, amps)
	if err != nil {
		b.Fatalf("FromPairs: %v", err)
	}

	return sp
}

func BenchmarkAllocate(b *testing.B) {
	sizes := []int{5, 10, 20}
	for _, n := range sizes {
		sp := benchSpectrum(b, n)
		cfg := Config{MaxVoices: 9, ToleranceCents: 0.5}

		b.Run("partials_"+itoa(n), func(b *testing.B) {
			b.ReportAllocs()
			b.ResetTimer()

			for range b.N {
				if _, err := Allocate(sp, cfg); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkAssignAmplitudes(b *testing.B) {
	sp := benchSpectrum(b, 20)

	bases, err := AllocateRatios(sp.Ratios(), Config{MaxVoices: 16, ToleranceCents: 0.5})
	if err != nil {
		b.Fatalf("AllocateRatios: %v", err)
	}

	b.ReportAllocs()
	b.ResetTimer()

	for range b.N {
		if _, err := AssignAmplitudes(sp, bases); err != nil {
			b.Fatal(err)
		}
	}
}

func itoa(v int) string {
	if v == 0 {
		return "0"
	}

	buf := [20]byte{}

	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}

	return string(buf[i:])
}
