// Package render hosts a voicing offline: one wavetable oscillator per
// voice, each synthesized from that voice's harmonic amplitude table and
// tuned by the voice's frequency ratio.
//
// Wavetables are single cycles built by inverse FFT with every harmonic in
// sine phase, so a table holding only harmonic 1 reproduces math.Sin up to
// interpolation error. No normalization is applied anywhere: relative voice
// levels follow the assigned amplitudes, and the caller owns headroom.
package render
