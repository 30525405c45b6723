package fit

import (
	"testing"

	"github.com/xenharmonic-devs/aperiodic-oscillator/internal/testutil"
	"github.com/xenharmonic-devs/aperiodic-oscillator/spectrum"
	"github.com/xenharmonic-devs/aperiodic-oscillator/voicing"
)

func BenchmarkEvaluate(b *testing.B) {
	for _, n := range []int{5, 20} {
		b.Run("partials_"+itoa(n), func(b *testing.B) {
			ratios, amps := testutil.MetallicSpectrum(n)

			sp, err := spectrum.FromPairs(ratios, amps)
			if err != nil {
				b.Fatal(err)
			}

			v, err := voicing.Allocate(sp, voicing.Config{MaxVoices: 9, ToleranceCents: 0.5})
			if err != nil {
				b.Fatal(err)
			}

			b.ReportAllocs()
			b.ResetTimer()

			for range b.N {
				if _, err := Evaluate(sp, v, 0.5); err != nil {
					b.Fatal(err)
				}
			}
		})
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
