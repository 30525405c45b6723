package spectrum

import (
	"errors"
	"math"
	"sort"
	"sync"

	"github.com/cwbudde/algo-vecmath"
	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"
	"gonum.org/v1/gonum/floats"
)

// Errors returned by snapshot extraction.
var (
	ErrEmptySignal       = errors.New("spectrum: signal is empty")
	ErrInvalidSampleRate = errors.New("spectrum: sample rate must be positive")
	ErrTooFewBins        = errors.New("spectrum: too few bins for peak extraction")
	ErrNoPeaks           = errors.New("spectrum: no peaks above the level floor")
)

const (
	defaultMaxPartials = 32
	defaultMinLevel    = 1e-4
)

// ExtractConfig controls snapshot extraction.
type ExtractConfig struct {
	MaxPartials  int     // cap on returned partials
	MinLevel     float64 // relative level floor vs the strongest interior bin
	MinSpacingHz float64 // minimum distance between peaks; 0 means one bin
}

// ExtractOption mutates an ExtractConfig.
type ExtractOption func(*ExtractConfig)

// DefaultExtractConfig returns the extraction defaults.
func DefaultExtractConfig() ExtractConfig {
	return ExtractConfig{
		MaxPartials: defaultMaxPartials,
		MinLevel:    defaultMinLevel,
	}
}

// WithMaxPartials caps the number of returned partials.
func WithMaxPartials(n int) ExtractOption {
	return func(cfg *ExtractConfig) {
		if n > 0 {
			cfg.MaxPartials = n
		}
	}
}

// WithMinLevel sets the relative level floor below which peaks are ignored.
func WithMinLevel(rel float64) ExtractOption {
	return func(cfg *ExtractConfig) {
		if rel > 0 {
			cfg.MinLevel = rel
		}
	}
}

// WithMinSpacingHz sets the minimum frequency distance between kept peaks.
// Weaker peaks inside the spacing of a stronger one are suppressed.
func WithMinSpacingHz(hz float64) ExtractOption {
	return func(cfg *ExtractConfig) {
		if hz > 0 {
			cfg.MinSpacingHz = hz
		}
	}
}

// FromSignal windows the signal, computes its spectrum, and extracts the
// strongest peaks as partials relative to fundamentalHz.
//
// A Hann window is applied to a copy of the signal before the FFT, so
// leakage stays bounded for snapshots that are not exact cycle multiples.
// Arbitrary (non power-of-two) lengths are accepted. See FromBins for the
// remaining semantics.
func FromSignal(samples []float64, sampleRate, fundamentalHz float64, opts ...ExtractOption) (Spectrum, error) {
	if len(samples) == 0 {
		return nil, ErrEmptySignal
	}

	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, ErrInvalidSampleRate
	}

	frame := make([]float64, len(samples))
	copy(frame, samples)

	vecmath.MulBlockInPlace(frame, window.Hann(len(frame)))

	return FromBins(fft.FFTReal(frame), sampleRate, fundamentalHz, opts...)
}

// FromBins extracts the strongest spectral peaks from complex FFT bins and
// returns them as partials relative to fundamentalHz.
//
// bins is a full two-sided spectrum of length N; only the non-negative
// frequencies [0..N/2] are inspected. Peak frequencies and heights are
// refined by parabolic interpolation of the surrounding bins. If
// fundamentalHz is not positive, the strongest peak is taken as the
// fundamental. The result is ordered loudest first.
//
// Amplitudes carry the analysis window's coherent gain. Relative levels
// between partials, which is what downstream allocation consumes, are
// unaffected by it.
func FromBins(bins []complex128, sampleRate, fundamentalHz float64, opts ...ExtractOption) (Spectrum, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, ErrInvalidSampleRate
	}

	if len(bins) < 4 {
		return nil, ErrTooFewBins
	}

	cfg := applyExtractOptions(opts...)

	amps := oneSidedAmplitudes(bins)
	binHz := sampleRate / float64(len(bins))

	peaks := findPeaks(amps, cfg, binHz)
	if len(peaks) == 0 {
		return nil, ErrNoPeaks
	}

	f0 := fundamentalHz
	if !(f0 > 0) {
		f0 = peaks[0].bin * binHz
	}

	if len(peaks) > cfg.MaxPartials {
		peaks = peaks[:cfg.MaxPartials]
	}

	sp := make(Spectrum, 0, len(peaks))
	for _, pk := range peaks {
		sp = append(sp, Partial{
			Ratio:     pk.bin * binHz / f0,
			Amplitude: pk.amp,
		})
	}

	return sp, nil
}

func applyExtractOptions(opts ...ExtractOption) ExtractConfig {
	cfg := DefaultExtractConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	return cfg
}

// peak is a refined spectral maximum with a fractional bin position.
type peak struct {
	bin float64
	amp float64
}

// findPeaks collects interior local maxima above the level floor, keeps the
// strongest within each spacing window, refines them, and returns them
// ordered loudest first.
func findPeaks(amps []float64, cfg ExtractConfig, binHz float64) []peak {
	if len(amps) < 3 {
		return nil
	}

	floor := cfg.MinLevel * floats.Max(amps[1:len(amps)-1])

	cands := make([]int, 0, 16)

	for k := 1; k < len(amps)-1; k++ {
		if amps[k] <= floor {
			continue
		}

		if amps[k] > amps[k-1] && amps[k] > amps[k+1] {
			cands = append(cands, k)
		}
	}

	sort.SliceStable(cands, func(i, j int) bool {
		return amps[cands[i]] > amps[cands[j]]
	})

	spacingBins := 1
	if cfg.MinSpacingHz > 0 && binHz > 0 {
		if s := int(math.Round(cfg.MinSpacingHz / binHz)); s > spacingBins {
			spacingBins = s
		}
	}

	kept := make([]int, 0, len(cands))

	for _, k := range cands {
		conflict := false

		for _, kk := range kept {
			if absInt(k-kk) < spacingBins {
				conflict = true
				break
			}
		}

		if !conflict {
			kept = append(kept, k)
		}
	}

	out := make([]peak, 0, len(kept))
	for _, k := range kept {
		out = append(out, refinePeak(amps, k))
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].amp > out[j].amp
	})

	return out
}

// refinePeak fits a parabola through the bin and its neighbors to estimate
// the true peak position and height between bins.
func refinePeak(amps []float64, k int) peak {
	y1, y2, y3 := amps[k-1], amps[k], amps[k+1]

	denom := y1 - 2*y2 + y3
	if denom == 0 {
		return peak{bin: float64(k), amp: y2}
	}

	delta := 0.5 * (y1 - y3) / denom
	if delta > 0.5 {
		delta = 0.5
	} else if delta < -0.5 {
		delta = -0.5
	}

	return peak{
		bin: float64(k) + delta,
		amp: y2 - 0.25*(y1-y3)*delta,
	}
}

// splitBuf holds pooled scratch for unpacking complex bins into planar form.
type splitBuf struct {
	re, im []float64
}

var splitPool = sync.Pool{
	New: func() any { return &splitBuf{} },
}

func getSplit(n int) *splitBuf {
	buf := splitPool.Get().(*splitBuf)
	if cap(buf.re) < n {
		buf.re = make([]float64, n)
		buf.im = make([]float64, n)
	} else {
		buf.re = buf.re[:n]
		buf.im = buf.im[:n]
	}

	return buf
}

func putSplit(buf *splitBuf) {
	splitPool.Put(buf)
}

// oneSidedAmplitudes converts a two-sided complex spectrum of length N into
// one-sided amplitude estimates: 2|X[k]|/N for interior bins, |X[k]|/N for
// DC and, when N is even, the Nyquist bin. Magnitudes go through the SIMD
// path; scratch buffers are pooled, so in steady state only the output
// slice allocates.
func oneSidedAmplitudes(bins []complex128) []float64 {
	n := len(bins)
	binCount := n/2 + 1

	buf := getSplit(binCount)
	for i := 0; i < binCount; i++ {
		buf.re[i] = real(bins[i])
		buf.im[i] = imag(bins[i])
	}

	out := make([]float64, binCount)
	vecmath.Magnitude(out, buf.re, buf.im)
	putSplit(buf)

	scale := 2 / float64(n)
	for k := range out {
		out[k] *= scale
	}

	out[0] /= 2
	if n%2 == 0 {
		out[binCount-1] /= 2
	}

	return out
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}

	return v
}
