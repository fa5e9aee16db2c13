package design

import "github.com/bennyp/audiofx/dsp/filter/biquad"

// FilterType selects the response shape of a parametric EQ band.
type FilterType int

const (
	TypePeaking FilterType = iota
	TypeLowPass
	TypeHighPass
	TypeLowShelf
	TypeHighShelf
)

// FilterTypeFromInt maps a wire-level integer tag to a FilterType.
// Unknown tags fall back to peaking, matching the legacy behavior of
// the browser build.
func FilterTypeFromInt(tag int) FilterType {
	switch FilterType(tag) {
	case TypePeaking, TypeLowPass, TypeHighPass, TypeLowShelf, TypeHighShelf:
		return FilterType(tag)
	default:
		return TypePeaking
	}
}

// String returns the conventional name of the filter type.
func (t FilterType) String() string {
	switch t {
	case TypeLowPass:
		return "lowpass"
	case TypeHighPass:
		return "highpass"
	case TypeLowShelf:
		return "lowshelf"
	case TypeHighShelf:
		return "highshelf"
	default:
		return "peaking"
	}
}

// Design derives coefficients for the given shape. It is a total function:
// any combination of finite inputs yields finite coefficients or, where the
// transfer function would degenerate, the unity bypass section.
func Design(typ FilterType, freq, gainDB, q, sampleRate float64) biquad.Coefficients {
	switch typ {
	case TypeLowPass:
		return Lowpass(freq, q, sampleRate)
	case TypeHighPass:
		return Highpass(freq, q, sampleRate)
	case TypeLowShelf:
		return LowShelf(freq, gainDB, q, sampleRate)
	case TypeHighShelf:
		return HighShelf(freq, gainDB, q, sampleRate)
	default:
		return Peak(freq, gainDB, q, sampleRate)
	}
}
