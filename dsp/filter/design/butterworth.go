package design

import (
	"math"

	"github.com/bennyp/audiofx/dsp/filter/biquad"
)

// butterworthQ returns the quality factor for a Butterworth filter section.
// index ranges from 0 to (order/2 - 1) for the biquad sections.
func butterworthQ(order, index int) float64 {
	theta := math.Pi * float64(2*index+1) / (2 * float64(order))

	s := math.Sin(theta)
	if s == 0 {
		return defaultQ
	}

	return 1 / (2 * s)
}

// ButterworthLP designs a lowpass Butterworth cascade of even order.
// Each second-order section reuses the RBJ lowpass prototype with the
// section Q from the Butterworth pole angles (Q = 1/sqrt(2) for order 2).
func ButterworthLP(freq float64, order int, sampleRate float64) []biquad.Coefficients {
	if order <= 0 || order%2 != 0 {
		return nil
	}

	sections := make([]biquad.Coefficients, 0, order/2)
	for i := order/2 - 1; i >= 0; i-- {
		q := butterworthQ(order, i)
		sections = append(sections, Lowpass(freq, q, sampleRate))
	}

	return sections
}

// ButterworthHP designs a highpass Butterworth cascade of even order.
func ButterworthHP(freq float64, order int, sampleRate float64) []biquad.Coefficients {
	if order <= 0 || order%2 != 0 {
		return nil
	}

	sections := make([]biquad.Coefficients, 0, order/2)
	for i := order/2 - 1; i >= 0; i-- {
		q := butterworthQ(order, i)
		sections = append(sections, Highpass(freq, q, sampleRate))
	}

	return sections
}

// LinkwitzRiley4LP designs the lowpass half of a 4th-order Linkwitz-Riley
// crossover: two cascaded 2nd-order Butterworth lowpass sections at Q=1/sqrt(2).
// The LP and HP halves sum to an allpass response (flat magnitude) and are
// in phase at the crossover frequency.
func LinkwitzRiley4LP(freq, sampleRate float64) []biquad.Coefficients {
	bw := ButterworthLP(freq, 2, sampleRate)
	if bw == nil {
		return nil
	}

	return append(bw, bw...)
}

// LinkwitzRiley4HP designs the highpass half of a 4th-order Linkwitz-Riley
// crossover: two cascaded 2nd-order Butterworth highpass sections at Q=1/sqrt(2).
func LinkwitzRiley4HP(freq, sampleRate float64) []biquad.Coefficients {
	bw := ButterworthHP(freq, 2, sampleRate)
	if bw == nil {
		return nil
	}

	return append(bw, bw...)
}
