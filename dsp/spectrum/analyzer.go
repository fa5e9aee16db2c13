// Package spectrum derives a magnitude spectrum from the equalizer's
// analysis window for host-side spectrum displays.
package spectrum

import (
	"math"

	"github.com/bennyp/audiofx/dsp/analysis"
	algofft "github.com/cwbudde/algo-fft"
	vecmath "github.com/cwbudde/algo-vecmath"
)

// NumBins is the number of magnitude bins produced per frame, covering
// DC through Nyquist of the 512-sample analysis window.
const NumBins = analysis.WindowSize/2 + 1

// Analyzer transforms the raw analysis ring into NumBins linear magnitude
// values. All scratch buffers are allocated once at construction; Compute
// is allocation-free.
type Analyzer struct {
	plan *algofft.Plan[complex128]

	window     [analysis.WindowSize]float64
	windowGain float64

	samples [analysis.WindowSize]float32
	input   []complex128
	output  []complex128
	re      []float64
	im      []float64
	mags    []float64
}

// NewAnalyzer returns an analyzer with a periodic Hann window and a
// prepared FFT plan.
func NewAnalyzer() (*Analyzer, error) {
	plan, err := algofft.NewPlan64(analysis.WindowSize)
	if err != nil {
		return nil, err
	}

	a := &Analyzer{
		plan:   plan,
		input:  make([]complex128, analysis.WindowSize),
		output: make([]complex128, analysis.WindowSize),
		re:     make([]float64, NumBins),
		im:     make([]float64, NumBins),
		mags:   make([]float64, NumBins),
	}

	sum := 0.0
	for i := range a.window {
		w := 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/analysis.WindowSize))
		a.window[i] = w
		sum += w
	}

	a.windowGain = sum / analysis.WindowSize

	return a, nil
}

// Compute windows the current contents of the analysis ring, transforms
// them, and refreshes the magnitude bins. Interior bins carry the mirror
// doubling so a full-scale sine reads close to 1.0 at its bin.
func (a *Analyzer) Compute(win *analysis.Window) error {
	win.CopySamples(a.samples[:])

	for i, s := range a.samples {
		a.input[i] = complex(float64(s)*a.window[i], 0)
	}

	if err := a.plan.Forward(a.output, a.input); err != nil {
		return err
	}

	for k := 0; k < NumBins; k++ {
		a.re[k] = real(a.output[k])
		a.im[k] = imag(a.output[k])
	}

	vecmath.Magnitude(a.mags, a.re, a.im)

	norm := analysis.WindowSize * a.windowGain
	for k := range a.mags {
		a.mags[k] /= norm
		if k > 0 && k < NumBins-1 {
			a.mags[k] *= 2
		}
	}

	return nil
}

// Magnitudes returns the most recent magnitude bins. The slice is owned
// by the analyzer and overwritten by the next Compute.
func (a *Analyzer) Magnitudes() []float64 {
	return a.mags
}
