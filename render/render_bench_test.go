package render

import (
	"testing"

	"github.com/xenharmonic-devs/aperiodic-oscillator/spectrum"
	"github.com/xenharmonic-devs/aperiodic-oscillator/voicing"
)

func BenchmarkNewPeriodicWave(b *testing.B) {
	harmonics := make([]float64, 16)
	for h := 1; h < len(harmonics); h++ {
		harmonics[h] = 1 / float64(h)
	}

	for _, size := range []int{2048, 8192} {
		b.Run("size_"+itoa(size), func(b *testing.B) {
			b.ReportAllocs()
			b.ResetTimer()

			for range b.N {
				if _, err := NewPeriodicWave(harmonics, size); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkBankProcess(b *testing.B) {
	ratios := make([]float64, 8)
	amplitudes := make([]float64, 8)

	for i := range ratios {
		ratios[i] = float64(i + 1)
		amplitudes[i] = 1 / float64(i+1)
	}

	sp, err := spectrum.FromPairs(ratios, amplitudes)
	if err != nil {
		b.Fatal(err)
	}

	v, err := voicing.Allocate(sp, voicing.DefaultConfig())
	if err != nil {
		b.Fatal(err)
	}

	for _, frames := range []int{64, 512, 4096} {
		b.Run("block_"+itoa(frames), func(b *testing.B) {
			bank, err := NewBank(v, 110, 44100)
			if err != nil {
				b.Fatal(err)
			}

			dst := make([]float64, frames)

			b.ReportAllocs()
			b.SetBytes(int64(8 * frames))
			b.ResetTimer()

			for range b.N {
				bank.Process(dst)
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
