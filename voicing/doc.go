// Package voicing approximates an inharmonic spectrum with a small set of
// harmonic-series voices.
//
// Additive synthesis of N arbitrary partials needs N oscillators when each
// partial gets its own. A harmonic-series oscillator, by contrast, renders
// its whole integer overtone stack for the cost of one voice. This package
// chooses at most MaxVoices base frequency ratios such that every partial of
// the input spectrum sits as close as possible to an integer harmonic of
// some voice, then folds the partial amplitudes onto the per-voice harmonic
// grids.
//
// Allocation runs in two stages:
//
//   - AllocateRatios greedily reduces the partial ratios, in priority order,
//     to at most MaxVoices base ratios. A partial either lands on an integer
//     harmonic of an existing voice, contracts an existing voice so that it
//     does, founds a new voice, or is passed over.
//   - AssignAmplitudes maps every partial of the full spectrum, including
//     those passed over in stage one, to the (voice, harmonic) cell with the
//     smallest pitch error and accumulates its amplitude there. No amplitude
//     is ever dropped, only merged.
//
// While unused capacity remains, a partial joins an existing voice only on a
// near-exact harmonic match (within cents.Epsilon); once MaxVoices is
// reached, the caller's tolerance applies. Spending capacity eagerly keeps
// early, high-priority partials exactly in tune and concentrates the
// approximation error in the tail of the spectrum.
//
// Contraction lets one voice serve partials below its base: a voice at ratio
// 3 can contract to 3/2, putting a partial at 1.5 on harmonic 1 and the
// original partial at 3 on harmonic 2 of the same grid. Denominators grow
// until the contracted base would fall below 0.1 of the nominal fundamental.
//
// Both stages are pure and single threaded: no randomness, no shared state,
// identical inputs produce identical outputs.
package voicing
