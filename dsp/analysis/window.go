// Package analysis maintains a rolling window of recent audio and derives
// level and tonal-balance statistics from it.
//
// The statistics drive adaptive preset selection in the equalizer and are
// intentionally cheap: the band energies come from positional bucketing of
// the time-domain window rather than a spectral decomposition. The bucketing
// is canonical behavior, not an approximation to be corrected.
package analysis

import "math"

// WindowSize is the number of samples in one analysis window.
const WindowSize = 512

const centroidFloor = 1e-10

// Analysis is one snapshot of signal statistics over a completed window.
// All values are non-negative.
type Analysis struct {
	RMSLevel         float32
	PeakLevel        float32
	SpectralCentroid float32
	BassEnergy       float32
	MidEnergy        float32
	TrebleEnergy     float32
}

// Window is a fixed 512-sample analysis ring. Feeding it one sample at a
// time produces a fresh Analysis exactly once per WindowSize samples, at
// the moment the write index wraps.
type Window struct {
	samples  [WindowSize]float32
	writePos int
	current  Analysis
}

// NewWindow returns an empty analysis window.
func NewWindow() *Window {
	return &Window{}
}

// Feed stores one sample. It returns true when the window just completed
// and Current was recomputed.
func (w *Window) Feed(sample float32) bool {
	w.samples[w.writePos] = sample
	w.writePos++
	if w.writePos < WindowSize {
		return false
	}

	w.writePos = 0
	w.compute()

	return true
}

// Current returns a pointer to the most recent snapshot. The address is
// stable for the lifetime of the window; values change each time a window
// completes.
func (w *Window) Current() *Analysis {
	return &w.current
}

// CopySamples copies the raw ring contents into dst in storage order and
// returns the number of samples copied.
func (w *Window) CopySamples(dst []float32) int {
	return copy(dst, w.samples[:])
}

// Reset clears the ring and the current snapshot.
func (w *Window) Reset() {
	for i := range w.samples {
		w.samples[i] = 0
	}

	w.writePos = 0
	w.current = Analysis{}
}

// compute derives statistics over the just-completed window.
//
// The three band energies bucket the window by sample position: the first
// eighth counts as bass, the next three eighths as mid, the remaining half
// as treble. Each energy is the mean absolute value over its bucket. The
// centroid maps the mid and treble balance onto a 0-4000 pseudo-frequency
// axis.
func (w *Window) compute() {
	const (
		bassEnd = WindowSize / 8
		midEnd  = WindowSize / 2
	)

	var (
		sumSq  float64
		peak   float64
		bass   float64
		mid    float64
		treble float64
	)

	for i, s := range w.samples {
		v := float64(s)
		sumSq += v * v

		a := math.Abs(v)
		if a > peak {
			peak = a
		}

		switch {
		case i < bassEnd:
			bass += a
		case i < midEnd:
			mid += a
		default:
			treble += a
		}
	}

	bass /= bassEnd
	mid /= midEnd - bassEnd
	treble /= WindowSize - midEnd

	centroid := (mid*1000 + treble*4000) / (bass + mid + treble + centroidFloor)

	w.current = Analysis{
		RMSLevel:         float32(math.Sqrt(sumSq / WindowSize)),
		PeakLevel:        float32(peak),
		SpectralCentroid: float32(centroid),
		BassEnergy:       float32(bass),
		MidEnergy:        float32(mid),
		TrebleEnergy:     float32(treble),
	}
}
