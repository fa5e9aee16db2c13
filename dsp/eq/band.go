package eq

import (
	"github.com/bennyp/audiofx/dsp/core"
)

// NumBands is the number of filter bands in the equalizer cascade.
const NumBands = 16

// NumSuitabilityWeights is the number of per-preset scoring weights, one
// per analysis feature.
const NumSuitabilityWeights = 6

// Parameter ranges enforced at every setter. Values outside these ranges
// are clamped before they reach coefficient computation.
const (
	MinFreq = 20.0
	MaxFreq = 20000.0

	MinGainDB = -24.0
	MaxGainDB = 24.0

	MinQ = 0.1
	MaxQ = 30.0
)

// MaxPresetNameLen is the longest preset name the compact binary layout
// can carry (31 characters plus terminator).
const MaxPresetNameLen = 31

// BandParams describes one parametric band: center/cutoff frequency in Hz,
// gain in dB, and quality factor.
type BandParams struct {
	Freq float64
	Gain float64
	Q    float64
}

// DefaultBandParams returns the neutral band setting: 1 kHz, 0 dB, Q=1.
func DefaultBandParams() BandParams {
	return BandParams{Freq: 1000, Gain: 0, Q: 1}
}

// clampBand forces all parameters into their declared ranges. Non-finite
// inputs fall back to the defaults rather than poisoning the clamp.
func clampBand(p BandParams) BandParams {
	def := DefaultBandParams()

	if !core.IsFinite(p.Freq) {
		p.Freq = def.Freq
	}

	if !core.IsFinite(p.Gain) {
		p.Gain = def.Gain
	}

	if !core.IsFinite(p.Q) {
		p.Q = def.Q
	}

	return BandParams{
		Freq: core.Clamp(p.Freq, MinFreq, MaxFreq),
		Gain: core.Clamp(p.Gain, MinGainDB, MaxGainDB),
		Q:    core.Clamp(p.Q, MinQ, MaxQ),
	}
}

// lerpBand interpolates linearly between two band settings. t is expected
// in [0, 1]; t=0 yields from, t=1 yields to.
func lerpBand(from, to BandParams, t float64) BandParams {
	return BandParams{
		Freq: from.Freq + (to.Freq-from.Freq)*t,
		Gain: from.Gain + (to.Gain-from.Gain)*t,
		Q:    from.Q + (to.Q-from.Q)*t,
	}
}

// Preset is a complete 16-band configuration with scoring weights for
// adaptive selection. Category semantics are opaque to the core; the host
// UI uses it to group presets.
type Preset struct {
	Name     string
	Category byte

	Bands [NumBands]BandParams

	// SuitabilityWeights score the preset against the analysis features
	// {rms, peak, normalized centroid, bass, mid, treble}, in that order.
	SuitabilityWeights [NumSuitabilityWeights]float32
}
