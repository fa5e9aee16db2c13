// Command eqinfo inspects equalizer preset files and prints the combined
// frequency response of their 16-band cascades.
//
// Usage:
//
//	eqinfo [flags] preset-file
//
// The preset file holds consecutive 252-byte records in the compact
// little-endian layout produced by the engine codec; the record count is
// inferred from the file size.
//
// Examples:
//
//	eqinfo presets.bin
//	eqinfo -list presets.bin
//	eqinfo -preset 2 -points 48 presets.bin
//	eqinfo -rate 48000 -min 50 -max 16000 presets.bin
package main

import (
	"flag"
	"fmt"
	"math"
	"math/cmplx"
	"os"
	"text/tabwriter"

	"github.com/bennyp/audiofx/dsp/core"
	"github.com/bennyp/audiofx/dsp/eq"
	"github.com/bennyp/audiofx/dsp/filter/biquad"
	"github.com/bennyp/audiofx/dsp/filter/design"
	"github.com/bennyp/audiofx/internal/engine"
	"gonum.org/v1/gonum/floats"
)

func main() {
	rate := flag.Float64("rate", 44100, "sample rate in Hz")
	points := flag.Int("points", 24, "number of log-spaced response points")
	minFreq := flag.Float64("min", 20, "lowest response frequency in Hz")
	maxFreq := flag.Float64("max", 20000, "highest response frequency in Hz")
	preset := flag.Int("preset", -1, "preset index to print, -1 for all")
	list := flag.Bool("list", false, "list preset names and exit")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: eqinfo [flags] preset-file\n\n")
		fmt.Fprintf(os.Stderr, "Prints band tables and frequency responses of equalizer presets.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  eqinfo presets.bin\n")
		fmt.Fprintf(os.Stderr, "  eqinfo -preset 2 -points 48 presets.bin\n")
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	presets, err := loadPresets(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if *list {
		printList(presets)
		return
	}

	selected := presets
	if *preset >= 0 {
		if *preset >= len(presets) {
			fmt.Fprintf(os.Stderr, "error: preset %d out of range (file holds %d)\n", *preset, len(presets))
			os.Exit(1)
		}
		selected = presets[*preset : *preset+1]
	}

	freqs := make([]float64, *points)
	floats.LogSpan(freqs, *minFreq, *maxFreq)

	for i, p := range selected {
		if i > 0 {
			fmt.Println()
		}
		printResponse(p, freqs, *rate)
	}
}

func loadPresets(path string) ([]eq.Preset, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	count := len(buf) / engine.PresetRecordSize
	presets := engine.DecodePresets(buf, count)
	if presets == nil {
		return nil, fmt.Errorf("%s: no complete %d-byte preset records", path, engine.PresetRecordSize)
	}

	return presets, nil
}

func printList(presets []eq.Preset) {
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Index\tName\tCategory\n")
	for i, p := range presets {
		fmt.Fprintf(tw, "%d\t%s\t%d\n", i, p.Name, p.Category)
	}
	if err := tw.Flush(); err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to flush output: %v\n", err)
	}
}

func printResponse(p eq.Preset, freqs []float64, rate float64) {
	coeffs := make([]biquad.Coefficients, eq.NumBands)
	for i, b := range p.Bands {
		coeffs[i] = design.Peak(b.Freq, b.Gain, b.Q, rate)
	}

	fmt.Printf("%s (category %d)\n", p.Name, p.Category)

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Freq [Hz]\tGain [dB]\n")
	for _, f := range freqs {
		fmt.Fprintf(tw, "%.1f\t%+.3f\n", f, cascadeGainDB(coeffs, f, rate))
	}
	if err := tw.Flush(); err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to flush output: %v\n", err)
	}
}

// cascadeGainDB evaluates the combined magnitude of all sections at freq.
func cascadeGainDB(coeffs []biquad.Coefficients, freq, rate float64) float64 {
	w := 2 * math.Pi * freq / rate
	z1 := cmplx.Exp(complex(0, -w))
	z2 := z1 * z1

	h := complex(1, 0)
	for _, c := range coeffs {
		num := complex(c.B0, 0) + complex(c.B1, 0)*z1 + complex(c.B2, 0)*z2
		den := complex(1, 0) + complex(c.A1, 0)*z1 + complex(c.A2, 0)*z2
		h *= num / den
	}

	return core.LinearToDB(cmplx.Abs(h))
}
