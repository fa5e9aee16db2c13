// Package eq implements a 16-band parametric equalizer with preset
// management, smoothed preset transitions, adaptive preset selection
// driven by signal analysis, and an output safety limiter.
//
// The processor is designed for audio-callback use: Process performs no
// allocation, no locking, and no I/O. Control methods (setters, preset
// loading) are expected to run on the host control thread between process
// calls; the host serializes control and audio access.
package eq

import (
	"math"

	"github.com/bennyp/audiofx/dsp/analysis"
	"github.com/bennyp/audiofx/dsp/core"
	"github.com/bennyp/audiofx/dsp/filter/biquad"
	"github.com/bennyp/audiofx/dsp/filter/design"
)

const (
	defaultSampleRate = 44100.0

	// During a transition band parameters interpolate every sample but
	// coefficients are recomputed only once per this many samples.
	coeffUpdateInterval = 8
)

// Equalizer is a cascade of 16 parametric biquad bands processing mono
// audio in place.
//
// Domain violations on the control surface (out-of-range band index,
// unknown preset index) are silent no-ops; numeric violations are clamped.
// Nothing on the audio path returns an error.
type Equalizer struct {
	sampleRate float64

	sections [NumBands]biquad.Section
	bands    [NumBands]BandParams
	types    [NumBands]design.FilterType

	startBands  [NumBands]BandParams
	targetBands [NumBands]BandParams
	needsUpdate [NumBands]bool

	transitioning      bool
	transitionProgress int
	transitionLength   int
	coeffUpdateCounter int

	presets      []Preset
	activePreset int

	window analysis.Window

	hardLimiter bool
}

// New returns an equalizer for the given sample rate with all bands at
// their neutral defaults. A non-positive or non-finite rate falls back to
// 44100 Hz.
func New(sampleRate float64, opts ...Option) (*Equalizer, error) {
	if sampleRate <= 0 || !core.IsFinite(sampleRate) {
		sampleRate = defaultSampleRate
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	e := &Equalizer{
		sampleRate:       sampleRate,
		transitionLength: cfg.transitionLength,
		activePreset:     -1,
		hardLimiter:      cfg.hardLimiter,
	}

	for i := range e.bands {
		e.bands[i] = DefaultBandParams()
		e.types[i] = design.TypePeaking
		e.updateBand(i)
	}

	return e, nil
}

// SampleRate returns the rate the equalizer was configured with.
func (e *Equalizer) SampleRate() float64 {
	return e.sampleRate
}

// SetBand configures one band and recomputes its coefficients immediately.
// Parameters are clamped to their declared ranges; an out-of-range index
// is a no-op. Setting a band manually detaches it from any transition in
// flight and clears the active preset.
func (e *Equalizer) SetBand(index int, freq, gainDB, q float64, typ design.FilterType) {
	if index < 0 || index >= NumBands {
		return
	}

	e.bands[index] = clampBand(BandParams{Freq: freq, Gain: gainDB, Q: q})
	e.types[index] = typ
	e.needsUpdate[index] = false
	e.updateBand(index)
	e.activePreset = -1
}

// Band returns the live parameters of one band. An out-of-range index
// yields the defaults.
func (e *Equalizer) Band(index int) BandParams {
	if index < 0 || index >= NumBands {
		return DefaultBandParams()
	}

	return e.bands[index]
}

// BandType returns the filter shape of one band. An out-of-range index
// yields peaking.
func (e *Equalizer) BandType(index int) design.FilterType {
	if index < 0 || index >= NumBands {
		return design.TypePeaking
	}

	return e.types[index]
}

// LoadPresets replaces the preset table with a copy of presets and clears
// the active preset. A nil slice leaves the table unchanged; an empty
// non-nil slice clears it.
func (e *Equalizer) LoadPresets(presets []Preset) {
	if presets == nil {
		return
	}

	e.presets = make([]Preset, len(presets))
	copy(e.presets, presets)
	e.activePreset = -1
}

// PresetCount returns the number of loaded presets.
func (e *Equalizer) PresetCount() int {
	return len(e.presets)
}

// PresetName returns the name of a loaded preset, or "" for an
// out-of-range index.
func (e *Equalizer) PresetName(index int) string {
	if index < 0 || index >= len(e.presets) {
		return ""
	}

	return e.presets[index].Name
}

// PresetCategory returns the category byte of a loaded preset, or 0 for
// an out-of-range index.
func (e *Equalizer) PresetCategory(index int) byte {
	if index < 0 || index >= len(e.presets) {
		return 0
	}

	return e.presets[index].Category
}

// ActivePreset returns the index of the preset currently applied, or -1
// when no preset is active.
func (e *Equalizer) ActivePreset() int {
	return e.activePreset
}

// IsTransitioning reports whether a smoothed preset change is in flight.
func (e *Equalizer) IsTransitioning() bool {
	return e.transitioning
}

// TransitionProgress returns how many samples of the current or last
// transition have elapsed. It never exceeds TransitionLength.
func (e *Equalizer) TransitionProgress() int {
	return e.transitionProgress
}

// TransitionLength returns the configured transition duration in samples.
func (e *Equalizer) TransitionLength() int {
	return e.transitionLength
}

// ApplyPreset switches all bands to the given preset. An out-of-range
// index is a no-op.
//
// With withTransition true and a preset already active, the change is
// smoothed over the transition length: live parameters glide from their
// current values to the preset targets along a raised-cosine ease. In all
// other cases the preset is applied immediately.
//
// Preset bands are peaking sections; applying a preset resets every band
// shape accordingly.
func (e *Equalizer) ApplyPreset(index int, withTransition bool) {
	if index < 0 || index >= len(e.presets) {
		return
	}

	p := &e.presets[index]

	if withTransition && e.activePreset >= 0 {
		e.startBands = e.bands
		for i := range e.targetBands {
			e.targetBands[i] = clampBand(p.Bands[i])
			e.types[i] = design.TypePeaking
			e.needsUpdate[i] = true
		}

		e.transitionProgress = 0
		e.coeffUpdateCounter = 0
		e.transitioning = true
	} else {
		for i := range e.bands {
			e.bands[i] = clampBand(p.Bands[i])
			e.types[i] = design.TypePeaking
			e.needsUpdate[i] = false
			e.updateBand(i)
		}

		e.transitioning = false
		e.transitionProgress = 0
	}

	e.activePreset = index
}

// SelectAdaptivePreset scores every loaded preset against the current
// analysis snapshot and returns the index of the best match, or -1 when
// the table is empty. Ties keep the earliest preset.
//
// The score is the dot product of the preset's suitability weights with
// the feature vector {rms, peak, centroid/4000, bass, mid, treble}, each
// feature clamped to [0, 1].
func (e *Equalizer) SelectAdaptivePreset() int {
	if len(e.presets) == 0 {
		return -1
	}

	a := e.window.Current()
	features := [NumSuitabilityWeights]float64{
		clamp01(float64(a.RMSLevel)),
		clamp01(float64(a.PeakLevel)),
		clamp01(float64(a.SpectralCentroid) / 4000),
		clamp01(float64(a.BassEnergy)),
		clamp01(float64(a.MidEnergy)),
		clamp01(float64(a.TrebleEnergy)),
	}

	best := 0
	bestScore := math.Inf(-1)

	for i := range e.presets {
		var score float64
		for k, w := range e.presets[i].SuitabilityWeights {
			score += float64(w) * features[k]
		}

		if score > bestScore {
			best = i
			bestScore = score
		}
	}

	return best
}

// ApplyRelativeGain scales every band's gain by factor, clamped to the
// gain range, and recomputes all coefficients. Any transition in flight
// is cancelled and the active preset is cleared.
func (e *Equalizer) ApplyRelativeGain(factor float64) {
	if !core.IsFinite(factor) {
		return
	}

	for i := range e.bands {
		e.bands[i].Gain = core.Clamp(e.bands[i].Gain*factor, MinGainDB, MaxGainDB)
		e.needsUpdate[i] = false
		e.updateBand(i)
	}

	e.transitioning = false
	e.transitionProgress = 0
	e.activePreset = -1
}

// Process filters mono samples in place. Per sample: the input feeds the
// analysis window, any transition in flight advances, the sample runs
// through all 16 bands in order, and the safety limiter bounds the result.
func (e *Equalizer) Process(buf []float32) {
	for i, s := range buf {
		e.window.Feed(s)

		if e.transitioning {
			e.advanceTransition()
		}

		x := float64(s)
		for j := range e.sections {
			x = e.sections[j].ProcessSample(x)
		}

		if e.hardLimiter {
			x = core.Clamp(x, -1, 1)
		} else {
			x = softLimit(x)
		}

		buf[i] = float32(x)
	}
}

// Analysis returns a pointer to the most recent analysis snapshot. The
// address is stable for the lifetime of the equalizer; values refresh
// once per completed 512-sample window.
func (e *Equalizer) Analysis() *analysis.Analysis {
	return e.window.Current()
}

// Window returns the analysis ring fed by Process, for consumers that
// need the raw samples rather than the derived statistics (the spectrum
// analyzer). Callers must not feed it themselves.
func (e *Equalizer) Window() *analysis.Window {
	return &e.window
}

// Reset clears all filter state, the analysis window, and any transition
// in flight. Band parameters, types, and presets are preserved.
func (e *Equalizer) Reset() {
	for i := range e.sections {
		e.sections[i].Reset()
		e.needsUpdate[i] = false
	}

	e.window.Reset()
	e.transitioning = false
	e.transitionProgress = 0
	e.coeffUpdateCounter = 0
}

// advanceTransition moves the preset transition forward by one sample.
// Band parameters interpolate every sample; coefficients refresh once per
// coeffUpdateInterval samples. The final sample snaps to exact targets.
func (e *Equalizer) advanceTransition() {
	e.transitionProgress++

	if e.transitionProgress >= e.transitionLength {
		for i := range e.bands {
			if !e.needsUpdate[i] {
				continue
			}

			e.bands[i] = e.targetBands[i]
			e.updateBand(i)
			e.needsUpdate[i] = false
		}

		// Progress stays pinned at the full length until the next
		// transition rearms it.
		e.transitioning = false
		e.coeffUpdateCounter = 0

		return
	}

	p := float64(e.transitionProgress) / float64(e.transitionLength)
	t := 0.5 * (1 - math.Cos(math.Pi*p))

	for i := range e.bands {
		if e.needsUpdate[i] {
			e.bands[i] = lerpBand(e.startBands[i], e.targetBands[i], t)
		}
	}

	e.coeffUpdateCounter++
	if e.coeffUpdateCounter >= coeffUpdateInterval {
		e.coeffUpdateCounter = 0

		for i := range e.bands {
			if e.needsUpdate[i] {
				e.updateBand(i)
			}
		}
	}
}

// updateBand derives coefficients for one band from its live parameters.
// A degenerate design falls back to bypass with the band state cleared.
func (e *Equalizer) updateBand(index int) {
	c := design.Design(e.types[index], e.bands[index].Freq, e.bands[index].Gain,
		e.bands[index].Q, e.sampleRate)

	if c == biquad.Bypass() {
		e.sections[index].Reset()
	}

	e.sections[index].Coefficients = c
}

// softLimit saturates samples beyond full scale onto a tanh curve bounded
// at +-1 while passing the linear region untouched.
func softLimit(x float64) float64 {
	a := math.Abs(x)
	if a <= 1 {
		return x
	}

	return math.Copysign(0.7+0.3*math.Tanh(a-1), x)
}

func clamp01(v float64) float64 {
	return core.Clamp(v, 0, 1)
}
