package testutil

import "math"

// DeterministicSine32 generates a deterministic single-precision sine wave.
func DeterministicSine32(freqHz, sampleRate, amplitude float64, length int) []float32 {
	out := make([]float32, length)
	step := 2 * math.Pi * freqHz / sampleRate
	for i := range out {
		out[i] = float32(amplitude * math.Sin(step*float64(i)))
	}
	return out
}

// Impulse32 generates a single-precision unit impulse at the given position.
func Impulse32(length, pos int) []float32 {
	out := make([]float32, length)
	if pos >= 0 && pos < length {
		out[pos] = 1
	}
	return out
}
