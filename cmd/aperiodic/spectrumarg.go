package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/xenharmonic-devs/aperiodic-oscillator/spectrum"
)

// parseSpectrumArg turns a command line spectrum argument into a Spectrum.
// Inline form: "ratio:amplitude,ratio:amplitude,...". File form: "@path"
// with one "ratio amplitude" pair per line; blank lines and # comments are
// skipped.
func parseSpectrumArg(arg string) (spectrum.Spectrum, error) {
	if path, ok := strings.CutPrefix(arg, "@"); ok {
		return parseSpectrumFile(path)
	}

	return parseSpectrumInline(arg)
}

func parseSpectrumInline(arg string) (spectrum.Spectrum, error) {
	var ratios, amplitudes []float64

	for _, field := range strings.Split(arg, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}

		ratioPart, ampPart, ok := strings.Cut(field, ":")
		if !ok {
			return nil, fmt.Errorf("bad partial %q: want ratio:amplitude", field)
		}

		ratio, err := strconv.ParseFloat(strings.TrimSpace(ratioPart), 64)
		if err != nil {
			return nil, fmt.Errorf("bad ratio in %q: %w", field, err)
		}

		amp, err := strconv.ParseFloat(strings.TrimSpace(ampPart), 64)
		if err != nil {
			return nil, fmt.Errorf("bad amplitude in %q: %w", field, err)
		}

		ratios = append(ratios, ratio)
		amplitudes = append(amplitudes, amp)
	}

	if len(ratios) == 0 {
		return nil, errors.New("empty spectrum argument")
	}

	return spectrum.FromPairs(ratios, amplitudes)
}

func parseSpectrumFile(path string) (spectrum.Spectrum, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var ratios, amplitudes []float64

	sc := bufio.NewScanner(f)

	lineNo := 0
	for sc.Scan() {
		lineNo++

		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) != 2 {
			return nil, fmt.Errorf("%s:%d: want \"ratio amplitude\", got %q", path, lineNo, line)
		}

		ratio, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: bad ratio: %w", path, lineNo, err)
		}

		amp, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: bad amplitude: %w", path, lineNo, err)
		}

		ratios = append(ratios, ratio)
		amplitudes = append(amplitudes, amp)
	}

	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	if len(ratios) == 0 {
		return nil, fmt.Errorf("%s: no partials", path)
	}

	return spectrum.FromPairs(ratios, amplitudes)
}
