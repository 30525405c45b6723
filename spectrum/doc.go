// Package spectrum models a sound as an ordered collection of weighted
// partials: frequency ratios relative to a nominal fundamental, each with an
// amplitude.
//
// The order of a Spectrum is meaningful. Downstream voice allocation consumes
// partials front to back, so earlier entries win resources first. The sorting
// helpers produce the two common priority orders (loudest first, lowest
// first) without mutating the original.
//
// The package also extracts partial spectra from audio snapshots. It does not
// implement FFT itself; FromSignal delegates to an external FFT backend and
// FromBins accepts complex spectrum bins from any source.
package spectrum
