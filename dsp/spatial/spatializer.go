// Package spatial implements a stereo spatializer combining a band-split
// mid/side widener with a small feedback-delay-network reverb.
//
// The widener splits mid and side signals at a configurable crossover with
// 4th-order Linkwitz-Riley filters so the low band can stay narrow while
// the high band widens, keeping bass coherence intact. The reverb is a
// 4-line FDN with Hadamard feedback mixing, exponential decay mapping, and
// one-pole high-frequency damping.
package spatial

import (
	"math"

	"github.com/bennyp/audiofx/dsp/core"
	"github.com/bennyp/audiofx/dsp/delay"
	"github.com/bennyp/audiofx/dsp/filter/biquad"
	"github.com/bennyp/audiofx/dsp/filter/design"
)

// FDNOrder is the number of delay lines in the reverb network.
const FDNOrder = 4

// Parameter ranges enforced at every setter.
const (
	MinWidth = 0.0

	MinDecay = 0.0
	MaxDecay = 1.0

	MinDamping = 0.0
	MaxDamping = 1.0

	MinMix = 0.0
	MaxMix = 1.0

	MinCrossoverFreq = 50.0
	MaxCrossoverFreq = 500.0

	MinLowWidthFactor = 0.0
	MaxLowWidthFactor = 1.0

	MinHighWidthFactor = 0.0
	MaxHighWidthFactor = 3.0
)

const (
	defaultSampleRate = 44100.0

	defaultWidth           = 1.0
	defaultDecay           = 0.5
	defaultDamping         = 0.5
	defaultMix             = 0.25
	defaultCrossoverFreq   = 150.0
	defaultLowWidthFactor  = 1.0
	defaultHighWidthFactor = 1.0

	// Longest delay line in seconds; the tail of the prime ladder maps here.
	maxDelaySeconds = 0.1

	decayFloor = 0.001
)

// basePrimes are mutually prime delay lengths for a diffuse tail, scaled
// so the longest line lands at maxDelaySeconds.
var basePrimes = [FDNOrder]int{1553, 1871, 2083, 2221}

// hadamard is the 4x4 feedback mixing matrix, normalized by hadamardNorm
// (1/sqrt(N) for N=4).
var hadamard = [FDNOrder][FDNOrder]float64{
	{1, 1, 1, 1},
	{1, -1, 1, -1},
	{1, 1, -1, -1},
	{1, -1, -1, 1},
}

const hadamardNorm = 0.5

// Spatializer processes interleaved stereo audio in place. Setters clamp
// and apply immediately without smoothing; spatializer parameters change
// at UI cadence where a step is acceptable.
type Spatializer struct {
	sampleRate float64

	width           float64
	decay           float64
	damping         float64
	mix             float64
	crossoverFreq   float64
	lowWidthFactor  float64
	highWidthFactor float64

	// Crossover: two cascaded 2nd-order Butterworth sections per path,
	// forming a 4th-order Linkwitz-Riley split for mid and side each.
	midLow   *biquad.Chain
	midHigh  *biquad.Chain
	sideLow  *biquad.Chain
	sideHigh *biquad.Chain

	lines   [FDNOrder]*delay.Line
	lengths [FDNOrder]int
	gains   [FDNOrder]float64
	lpState [FDNOrder]float64
}

// New returns a spatializer for the given sample rate with default
// parameters. A non-positive or non-finite rate falls back to 44100 Hz.
func New(sampleRate float64, opts ...Option) (*Spatializer, error) {
	if sampleRate <= 0 || !core.IsFinite(sampleRate) {
		sampleRate = defaultSampleRate
	}

	cfg := defaultSpatializerConfig()
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	s := &Spatializer{
		sampleRate:      sampleRate,
		width:           cfg.width,
		decay:           cfg.decay,
		damping:         cfg.damping,
		mix:             cfg.mix,
		crossoverFreq:   cfg.crossoverFreq,
		lowWidthFactor:  cfg.lowWidthFactor,
		highWidthFactor: cfg.highWidthFactor,
	}

	for i := range s.lines {
		s.lengths[i] = int(float64(basePrimes[i]) / float64(basePrimes[FDNOrder-1]) *
			sampleRate * maxDelaySeconds)

		line, err := delay.New(s.lengths[i] + 2)
		if err != nil {
			return nil, err
		}

		s.lines[i] = line
	}

	s.updateCrossover()
	s.updateGains()

	return s, nil
}

// SampleRate returns the rate the spatializer was configured with.
func (s *Spatializer) SampleRate() float64 {
	return s.sampleRate
}

// SetWidth sets the side-channel scale. 0 collapses to mono, 1 leaves the
// image unchanged, larger values widen. Negative inputs clamp to 0.
func (s *Spatializer) SetWidth(width float64) {
	if !core.IsFinite(width) {
		return
	}

	s.width = math.Max(MinWidth, width)
}

// Width returns the current stereo width.
func (s *Spatializer) Width() float64 {
	return s.width
}

// SetDecay sets the reverb decay amount in [0, 1] and recomputes the
// feedback gains.
func (s *Spatializer) SetDecay(decay float64) {
	if !core.IsFinite(decay) {
		return
	}

	s.decay = core.Clamp(decay, MinDecay, MaxDecay)
	s.updateGains()
}

// Decay returns the current reverb decay amount.
func (s *Spatializer) Decay() float64 {
	return s.decay
}

// SetDamping sets the high-frequency damping amount in [0, 1].
func (s *Spatializer) SetDamping(damping float64) {
	if !core.IsFinite(damping) {
		return
	}

	s.damping = core.Clamp(damping, MinDamping, MaxDamping)
}

// Damping returns the current damping amount.
func (s *Spatializer) Damping() float64 {
	return s.damping
}

// SetMix sets the dry/wet balance in [0, 1]. 0 is fully dry.
func (s *Spatializer) SetMix(mix float64) {
	if !core.IsFinite(mix) {
		return
	}

	s.mix = core.Clamp(mix, MinMix, MaxMix)
}

// Mix returns the current dry/wet balance.
func (s *Spatializer) Mix() float64 {
	return s.mix
}

// SetCrossoverFreq sets the widener band-split frequency in Hz, clamped
// to [50, 500], and reconfigures all crossover filters.
func (s *Spatializer) SetCrossoverFreq(freq float64) {
	if !core.IsFinite(freq) {
		return
	}

	s.crossoverFreq = core.Clamp(freq, MinCrossoverFreq, MaxCrossoverFreq)
	s.updateCrossover()
}

// CrossoverFreq returns the current band-split frequency in Hz.
func (s *Spatializer) CrossoverFreq() float64 {
	return s.crossoverFreq
}

// SetLowWidthFactor sets the width multiplier for the band below the
// crossover, clamped to [0, 1].
func (s *Spatializer) SetLowWidthFactor(factor float64) {
	if !core.IsFinite(factor) {
		return
	}

	s.lowWidthFactor = core.Clamp(factor, MinLowWidthFactor, MaxLowWidthFactor)
}

// LowWidthFactor returns the current low-band width multiplier.
func (s *Spatializer) LowWidthFactor() float64 {
	return s.lowWidthFactor
}

// SetHighWidthFactor sets the width multiplier for the band above the
// crossover, clamped to [0, 3].
func (s *Spatializer) SetHighWidthFactor(factor float64) {
	if !core.IsFinite(factor) {
		return
	}

	s.highWidthFactor = core.Clamp(factor, MinHighWidthFactor, MaxHighWidthFactor)
}

// HighWidthFactor returns the current high-band width multiplier.
func (s *Spatializer) HighWidthFactor() float64 {
	return s.highWidthFactor
}

// Process spatializes interleaved stereo samples (L, R, L, R, ...) in
// place. A trailing odd sample is left untouched.
func (s *Spatializer) Process(buf []float32) {
	frames := len(buf) / 2

	for i := 0; i < frames; i++ {
		dryL := float64(buf[i*2])
		dryR := float64(buf[i*2+1])

		mid := (dryL + dryR) * 0.5
		side := (dryL - dryR) * 0.5

		var midOut, sideOut float64
		if s.lowWidthFactor == s.highWidthFactor {
			// Equal band factors make the split a no-op; skipping it
			// keeps the neutral setting sample-exact instead of
			// smearing phase through the crossover allpass.
			midOut = mid
			sideOut = side * s.width * s.lowWidthFactor
		} else {
			midLow := s.midLow.ProcessSample(mid)
			midHigh := s.midHigh.ProcessSample(mid)
			sideLow := s.sideLow.ProcessSample(side) * s.width * s.lowWidthFactor
			sideHigh := s.sideHigh.ProcessSample(side) * s.width * s.highWidthFactor

			midOut = midLow + midHigh
			sideOut = sideLow + sideHigh
		}

		wideL := midOut + sideOut
		wideR := midOut - sideOut

		wetL, wetR := s.processReverb((wideL + wideR) * 0.5)

		buf[i*2] = float32(wideL*(1-s.mix) + wetL*s.mix)
		buf[i*2+1] = float32(wideR*(1-s.mix) + wetR*s.mix)
	}
}

// processReverb runs one mono sample through the FDN and returns the
// stereo wet contribution for this frame.
func (s *Spatializer) processReverb(input float64) (wetL, wetR float64) {
	var outputs [FDNOrder]float64
	for j := range s.lines {
		outputs[j] = s.lines[j].Read(s.lengths[j])
	}

	var mixed [FDNOrder]float64
	for j := range mixed {
		for k, out := range outputs {
			mixed[j] += out * hadamard[j][k]
		}

		mixed[j] *= hadamardNorm
	}

	for j := range s.lines {
		feedback := mixed[j] * s.gains[j]
		feedback = (1-s.damping)*feedback + s.damping*s.lpState[j]
		s.lpState[j] = core.FlushDenormals(feedback)

		s.lines[j].Write(input + feedback)

		// Alternate taps form the stereo pair.
		if j%2 == 0 {
			wetL += outputs[j]
		} else {
			wetR += outputs[j]
		}
	}

	return wetL * 0.5, wetR * 0.5
}

// Reset clears all crossover filter state, delay-line contents, and
// damping registers. Parameters are preserved.
func (s *Spatializer) Reset() {
	s.midLow.Reset()
	s.midHigh.Reset()
	s.sideLow.Reset()
	s.sideHigh.Reset()

	for j := range s.lines {
		s.lines[j].Reset()
		s.lpState[j] = 0
	}
}

// updateCrossover rebuilds the four Linkwitz-Riley cascades at the
// current crossover frequency. Section state is preserved across retunes.
func (s *Spatializer) updateCrossover() {
	lp := design.LinkwitzRiley4LP(s.crossoverFreq, s.sampleRate)
	hp := design.LinkwitzRiley4HP(s.crossoverFreq, s.sampleRate)

	if s.midLow == nil {
		s.midLow = biquad.NewChain(lp)
		s.midHigh = biquad.NewChain(hp)
		s.sideLow = biquad.NewChain(lp)
		s.sideHigh = biquad.NewChain(hp)

		return
	}

	s.midLow.UpdateCoefficients(lp)
	s.midHigh.UpdateCoefficients(hp)
	s.sideLow.UpdateCoefficients(lp)
	s.sideHigh.UpdateCoefficients(hp)
}

// updateGains maps decay onto per-line feedback gains. The exponential
// mapping reaches -60 dB after decay*sampleRate samples; zero decay kills
// the feedback entirely.
func (s *Spatializer) updateGains() {
	for j := range s.gains {
		if s.decay == 0 {
			s.gains[j] = 0
			continue
		}

		s.gains[j] = math.Pow(decayFloor, float64(s.lengths[j])/(s.decay*s.sampleRate))
	}
}
