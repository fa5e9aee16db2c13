package spatial

import (
	"math"
	"testing"

	"github.com/bennyp/audiofx/internal/testutil"
)

func newTestSpatializer(t *testing.T, rate float64, opts ...Option) *Spatializer {
	t.Helper()

	s, err := New(rate, opts...)
	if err != nil {
		t.Fatal(err)
	}

	return s
}

func TestNewFallsBackToDefaultRate(t *testing.T) {
	for _, rate := range []float64{0, -48000, math.NaN()} {
		s := newTestSpatializer(t, rate)
		if got := s.SampleRate(); got != 44100 {
			t.Errorf("rate %v: SampleRate = %v, want 44100", rate, got)
		}
	}
}

func TestSettersClamp(t *testing.T) {
	s := newTestSpatializer(t, 48000)

	s.SetWidth(-3)
	if got := s.Width(); got != 0 {
		t.Errorf("width = %v, want 0", got)
	}

	s.SetDecay(2)
	if got := s.Decay(); got != 1 {
		t.Errorf("decay = %v, want 1", got)
	}

	s.SetDamping(-0.5)
	if got := s.Damping(); got != 0 {
		t.Errorf("damping = %v, want 0", got)
	}

	s.SetMix(1.5)
	if got := s.Mix(); got != 1 {
		t.Errorf("mix = %v, want 1", got)
	}

	s.SetCrossoverFreq(10)
	if got := s.CrossoverFreq(); got != MinCrossoverFreq {
		t.Errorf("crossover = %v, want %v", got, MinCrossoverFreq)
	}

	s.SetCrossoverFreq(5000)
	if got := s.CrossoverFreq(); got != MaxCrossoverFreq {
		t.Errorf("crossover = %v, want %v", got, MaxCrossoverFreq)
	}

	s.SetLowWidthFactor(4)
	if got := s.LowWidthFactor(); got != MaxLowWidthFactor {
		t.Errorf("low width factor = %v, want %v", got, MaxLowWidthFactor)
	}

	s.SetHighWidthFactor(9)
	if got := s.HighWidthFactor(); got != MaxHighWidthFactor {
		t.Errorf("high width factor = %v, want %v", got, MaxHighWidthFactor)
	}
}

func TestNonFiniteSetterInputsIgnored(t *testing.T) {
	s := newTestSpatializer(t, 48000)

	s.SetWidth(math.NaN())
	s.SetDecay(math.Inf(1))
	s.SetMix(math.NaN())

	if s.Width() != defaultWidth || s.Decay() != defaultDecay || s.Mix() != defaultMix {
		t.Fatalf("non-finite input mutated parameters: width %v decay %v mix %v",
			s.Width(), s.Decay(), s.Mix())
	}
}

func TestDryBypassPreservesStereo(t *testing.T) {
	// mix=0 removes the reverb; unit width with unit band factors leaves
	// mid/side recombination as an identity up to crossover ripple.
	s := newTestSpatializer(t, 44100,
		WithMix(0), WithWidth(1), WithLowWidthFactor(1), WithHighWidthFactor(1))

	buf := []float32{0.5, -0.5, 0.5, -0.5}
	want := []float32{0.5, -0.5, 0.5, -0.5}

	s.Process(buf)
	testutil.RequireSliceNearlyEqual32(t, buf, want, 1e-6)
}

func TestZeroWidthCollapsesToMono(t *testing.T) {
	s := newTestSpatializer(t, 44100, WithMix(0), WithWidth(0))

	buf := testutil.DeterministicSine32(440, 44100, 0.5, 2048)
	stereo := make([]float32, 2*len(buf))
	for i, v := range buf {
		stereo[2*i] = v
		stereo[2*i+1] = -v // pure side content
	}

	s.Process(stereo)

	// Pure side input has zero mid; with width 0 both channels go silent.
	for i, v := range stereo {
		if math.Abs(float64(v)) > 1e-6 {
			t.Fatalf("sample %d: %v, want 0", i, v)
		}
	}
}

func TestZeroDecaySilencesWetTail(t *testing.T) {
	s := newTestSpatializer(t, 44100, WithMix(1), WithDecay(0))

	// Impulse on the left channel, then silence.
	buf := make([]float32, 2*44100)
	buf[0] = 1

	s.Process(buf)

	// The first wet energy appears one delay-line length after the
	// impulse and must not recirculate. Sum the tail past two full
	// maximum delays; with zero feedback it must be exactly silent.
	maxLen := int(44100 * maxDelaySeconds)
	tail := buf[2*(2*maxLen+4):]

	for i, v := range tail {
		if v != 0 {
			t.Fatalf("wet tail sample %d: %v, want 0 with zero decay", i, v)
		}
	}
}

func TestFDNImpulseStaysBoundedAndDecays(t *testing.T) {
	s := newTestSpatializer(t, 44100, WithMix(1), WithDecay(1), WithDamping(0))

	buf := make([]float32, 2*4096)
	buf[0] = 1
	s.Process(buf)

	const windows = 10

	peaks := make([]float64, windows)
	block := make([]float32, 2*44100)

	for w := 0; w < windows; w++ {
		for i := range block {
			block[i] = 0
		}

		s.Process(block)

		for _, v := range block {
			if a := math.Abs(float64(v)); a > peaks[w] {
				peaks[w] = a
			}
		}

		if peaks[w] >= 1 {
			t.Fatalf("window %d: peak %v not bounded below 1", w, peaks[w])
		}
	}

	if peaks[windows-1] >= peaks[0] {
		t.Fatalf("tail not decaying: first-window peak %v, last-window peak %v",
			peaks[0], peaks[windows-1])
	}
}

func sideRMS(buf []float32, from int) float64 {
	var sum float64

	frames := len(buf) / 2
	for i := from; i < frames; i++ {
		side := (float64(buf[2*i]) - float64(buf[2*i+1])) * 0.5
		sum += side * side
	}

	return math.Sqrt(sum / float64(frames-from))
}

func TestBandSplitWidensSelectively(t *testing.T) {
	// Differing band factors engage the crossover: high-band side content
	// should scale by the high factor while low-band side content scales
	// by the low factor.
	makeSide := func(freq float64) []float32 {
		mono := testutil.DeterministicSine32(freq, 44100, 0.25, 1<<14)
		stereo := make([]float32, 2*len(mono))
		for i, v := range mono {
			stereo[2*i] = v
			stereo[2*i+1] = -v
		}

		return stereo
	}

	const settle = 1 << 12

	for _, tc := range []struct {
		name   string
		freq   float64
		factor float64
	}{
		{"low band attenuated", 50, 0},
		{"high band doubled", 5000, 2},
	} {
		s := newTestSpatializer(t, 44100,
			WithMix(0), WithWidth(1),
			WithCrossoverFreq(200),
			WithLowWidthFactor(0), WithHighWidthFactor(2))

		buf := makeSide(tc.freq)
		ref := sideRMS(buf, settle)
		s.Process(buf)

		got := sideRMS(buf, settle)
		want := ref * tc.factor

		if math.Abs(got-want) > 0.2*ref {
			t.Errorf("%s: side RMS = %v, want about %v (dry %v)",
				tc.name, got, want, ref)
		}
	}
}

func TestProcessIgnoresTrailingOddSample(t *testing.T) {
	s := newTestSpatializer(t, 44100)

	buf := []float32{0.5, -0.5, 0.9}
	s.Process(buf)

	if buf[2] != 0.9 {
		t.Fatalf("trailing odd sample mutated: %v", buf[2])
	}
}

func TestResetClearsTail(t *testing.T) {
	s := newTestSpatializer(t, 44100, WithMix(1), WithDecay(1))

	buf := make([]float32, 2*8192)
	buf[0] = 1
	s.Process(buf)

	s.Reset()

	silence := make([]float32, 2*8192)
	s.Process(silence)

	for i, v := range silence {
		if v != 0 {
			t.Fatalf("sample %d after reset: %v, want 0", i, v)
		}
	}
}

func TestOptionRejectsOutOfRange(t *testing.T) {
	cases := []Option{
		WithWidth(-1),
		WithDecay(2),
		WithDamping(-0.1),
		WithMix(1.5),
		WithCrossoverFreq(10),
		WithLowWidthFactor(2),
		WithHighWidthFactor(5),
	}

	for i, opt := range cases {
		if _, err := New(44100, opt); err == nil {
			t.Errorf("option %d: expected construction error", i)
		}
	}
}

func TestProcessDoesNotAllocate(t *testing.T) {
	s := newTestSpatializer(t, 44100)

	buf := make([]float32, 512)
	s.Process(buf)

	allocs := testing.AllocsPerRun(50, func() {
		s.Process(buf)
	})

	if allocs != 0 {
		t.Fatalf("Process allocates %v times per run, want 0", allocs)
	}
}

func BenchmarkProcess(b *testing.B) {
	s, err := New(44100)
	if err != nil {
		b.Fatal(err)
	}

	buf := make([]float32, 1024)

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		s.Process(buf)
	}
}
