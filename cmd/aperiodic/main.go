// Command aperiodic allocates oscillator voices for inharmonic additive
// spectra and renders reference audio offline.
//
// Usage:
//
//	aperiodic <command> [flags] <args>
//
// Commands:
//
//	alloc    allocate voices for a spectrum and print the result
//	render   allocate voices and render the spectrum to a WAV file
//	analyze  decode a WAV file, extract its partials, and print the allocation
//
// Spectra are given inline as ratio:amplitude pairs separated by commas, or
// as @file with one "ratio amplitude" pair per line (# starts a comment).
//
// Examples:
//
//	aperiodic alloc -voices 6 '1:1,2.01:0.5,3.02:0.25'
//	aperiodic alloc -order amp '@bell.spec'
//	aperiodic render -f0 220 -dur 2 -out chime.wav '@bell.spec'
//	aperiodic analyze -partials 12 recording.wav
package main

import (
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"text/tabwriter"

	"github.com/xenharmonic-devs/aperiodic-oscillator/measure/fit"
	"github.com/xenharmonic-devs/aperiodic-oscillator/render"
	"github.com/xenharmonic-devs/aperiodic-oscillator/spectrum"
	"github.com/xenharmonic-devs/aperiodic-oscillator/voicing"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error

	switch os.Args[1] {
	case "alloc":
		err = runAlloc(os.Args[2:])
	case "render":
		err = runRender(os.Args[2:])
	case "analyze":
		err = runAnalyze(os.Args[2:])
	case "help", "-h", "-help", "--help":
		usage()
		return
	default:
		fmt.Fprintf(os.Stderr, "error: unknown command %q\n\n", os.Args[1])
		usage()
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: aperiodic <command> [flags] <args>\n\n")
	fmt.Fprintf(os.Stderr, "Commands:\n")
	fmt.Fprintf(os.Stderr, "  alloc    allocate voices for a spectrum and print the result\n")
	fmt.Fprintf(os.Stderr, "  render   allocate voices and render the spectrum to a WAV file\n")
	fmt.Fprintf(os.Stderr, "  analyze  decode a WAV file, extract its partials, and print the allocation\n\n")
	fmt.Fprintf(os.Stderr, "Run 'aperiodic <command> -h' for command flags.\n")
}

func runAlloc(args []string) error {
	fs := flag.NewFlagSet("alloc", flag.ExitOnError)
	voices := fs.Int("voices", 16, "maximum number of voices")
	tolerance := fs.Float64("tolerance", 1, "absorption tolerance in cents")
	order := fs.String("order", "keep", "partial priority: keep, amp (loudest first), or ratio (lowest first)")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: aperiodic alloc [flags] <spectrum>\n\nFlags:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if fs.NArg() != 1 {
		fs.Usage()
		os.Exit(2)
	}

	sp, err := parseSpectrumArg(fs.Arg(0))
	if err != nil {
		return err
	}

	sp, err = reorder(sp, *order)
	if err != nil {
		return err
	}

	cfg := voicing.Config{MaxVoices: *voices, ToleranceCents: *tolerance}

	v, err := voicing.Allocate(sp, cfg)
	if err != nil {
		return err
	}

	rep, err := fit.Evaluate(sp, v, cfg.ToleranceCents)
	if err != nil {
		return err
	}

	if err := printVoicing(os.Stdout, v, rep.VoiceAmplitude); err != nil {
		return err
	}

	printFitSummary(rep, cfg.ToleranceCents)

	return nil
}

func runRender(args []string) error {
	fs := flag.NewFlagSet("render", flag.ExitOnError)
	voices := fs.Int("voices", 16, "maximum number of voices")
	tolerance := fs.Float64("tolerance", 1, "absorption tolerance in cents")
	fundamental := fs.Float64("f0", 220, "fundamental frequency in Hz")
	rate := fs.Int("rate", 44100, "sample rate in Hz")
	dur := fs.Float64("dur", 1, "duration in seconds")
	gain := fs.Float64("gain", 0, "linear output gain (0 = normalize to 0.9 peak)")
	out := fs.String("out", "", "output WAV path (required)")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: aperiodic render [flags] -out file.wav <spectrum>\n\nFlags:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if fs.NArg() != 1 || *out == "" {
		fs.Usage()
		os.Exit(2)
	}

	if *rate <= 0 {
		return fmt.Errorf("sample rate %d must be positive", *rate)
	}

	if !(*dur > 0) {
		return fmt.Errorf("duration %v must be positive", *dur)
	}

	sp, err := parseSpectrumArg(fs.Arg(0))
	if err != nil {
		return err
	}

	v, err := voicing.Allocate(sp, voicing.Config{MaxVoices: *voices, ToleranceCents: *tolerance})
	if err != nil {
		return err
	}

	var opts []render.BankOption
	if *gain > 0 {
		opts = append(opts, render.WithGain(*gain))
	}

	bank, err := render.NewBank(v, *fundamental, float64(*rate), opts...)
	if err != nil {
		return err
	}

	frames := int(math.Round(*dur * float64(*rate)))

	samples, err := bank.Render(frames)
	if err != nil {
		return err
	}

	if *gain <= 0 {
		normalize(samples, 0.9)
	}

	if err := writeMonoWAV(*out, samples, *rate); err != nil {
		return err
	}

	fmt.Printf("wrote %s: %d voices, %d samples at %d Hz\n", *out, v.NumVoices(), frames, *rate)

	return nil
}

func runAnalyze(args []string) error {
	fs := flag.NewFlagSet("analyze", flag.ExitOnError)
	fundamental := fs.Float64("f0", 0, "fundamental frequency in Hz (0 = strongest peak)")
	partials := fs.Int("partials", 16, "maximum number of extracted partials")
	voices := fs.Int("voices", 16, "maximum number of voices")
	tolerance := fs.Float64("tolerance", 1, "absorption tolerance in cents")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: aperiodic analyze [flags] <in.wav>\n\nFlags:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if fs.NArg() != 1 {
		fs.Usage()
		os.Exit(2)
	}

	samples, rate, err := readMonoWAV(fs.Arg(0))
	if err != nil {
		return err
	}

	sp, err := spectrum.FromSignal(samples, rate, *fundamental, spectrum.WithMaxPartials(*partials))
	if err != nil {
		return err
	}

	if len(sp) == 0 {
		return fmt.Errorf("%s: no partials above the level floor", fs.Arg(0))
	}

	cfg := voicing.Config{MaxVoices: *voices, ToleranceCents: *tolerance}

	v, err := voicing.Allocate(sp, cfg)
	if err != nil {
		return err
	}

	rep, err := fit.Evaluate(sp, v, cfg.ToleranceCents)
	if err != nil {
		return err
	}

	fmt.Printf("%s: %d samples at %g Hz, %d partials\n\n", fs.Arg(0), len(samples), rate, len(sp))

	if err := printVoicing(os.Stdout, v, rep.VoiceAmplitude); err != nil {
		return err
	}

	printFitSummary(rep, cfg.ToleranceCents)

	return nil
}

func reorder(sp spectrum.Spectrum, order string) (spectrum.Spectrum, error) {
	switch order {
	case "keep":
		return sp, nil
	case "amp":
		return sp.SortedByAmplitude(), nil
	case "ratio":
		return sp.SortedByRatio(), nil
	default:
		return nil, fmt.Errorf("unknown order %q: want keep, amp, or ratio", order)
	}
}

func printVoicing(w io.Writer, v *voicing.Voicing, voiceAmplitude []float64) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	if _, err := fmt.Fprintf(tw, "Voice\tRatio\tDetune [cents]\tHarmonics\tAmplitude\n"); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(tw, "-----\t-----\t--------------\t---------\t---------\n"); err != nil {
		return err
	}

	for i := range v.Ratios {
		if _, err := fmt.Fprintf(tw, "%d\t%.6g\t%+.2f\t%d\t%.4g\n",
			i,
			v.Ratios[i],
			v.Detunings[i],
			max(len(v.Tables[i])-1, 0),
			voiceAmplitude[i],
		); err != nil {
			return err
		}
	}

	return tw.Flush()
}

func printFitSummary(rep fit.Report, toleranceCents float64) {
	fmt.Printf("\npartials: %d, within %g cents: %d\n", len(rep.Partials), toleranceCents, rep.WithinTolerance)
	fmt.Printf("error cents: max %.3g, mean %.3g, p95 %.3g\n",
		rep.MaxErrorCents, rep.MeanErrorCents, rep.P95ErrorCents)
	fmt.Printf("amplitude: input %.6g, assigned %.6g\n", rep.InputAmplitude, rep.AssignedAmplitude)
}

// normalize scales samples in place so the peak magnitude hits target.
// Silent buffers are left untouched.
func normalize(samples []float64, target float64) {
	peak := 0.0
	for _, s := range samples {
		if a := math.Abs(s); a > peak {
			peak = a
		}
	}

	if peak == 0 {
		return
	}

	scale := target / peak
	for i := range samples {
		samples[i] *= scale
	}
}
