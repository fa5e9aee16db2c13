package spectrum

import (
	"math"
	"testing"

	"github.com/bennyp/audiofx/dsp/analysis"
)

func newTestAnalyzer(t *testing.T) *Analyzer {
	t.Helper()

	a, err := NewAnalyzer()
	if err != nil {
		t.Fatal(err)
	}

	return a
}

func fillWindow(w *analysis.Window, gen func(i int) float32) {
	for i := 0; i < analysis.WindowSize; i++ {
		w.Feed(gen(i))
	}
}

func TestSilenceYieldsZeroBins(t *testing.T) {
	a := newTestAnalyzer(t)
	w := analysis.NewWindow()

	if err := a.Compute(w); err != nil {
		t.Fatal(err)
	}

	for k, m := range a.Magnitudes() {
		if m != 0 {
			t.Fatalf("bin %d = %v, want 0", k, m)
		}
	}
}

func TestSineAtBinReadsAmplitude(t *testing.T) {
	a := newTestAnalyzer(t)
	w := analysis.NewWindow()

	// An integer number of cycles per window lands exactly on one bin.
	const (
		bin       = 16
		amplitude = 0.8
	)

	fillWindow(w, func(i int) float32 {
		return float32(amplitude * math.Sin(2*math.Pi*bin*float64(i)/analysis.WindowSize))
	})

	if err := a.Compute(w); err != nil {
		t.Fatal(err)
	}

	mags := a.Magnitudes()
	if math.Abs(mags[bin]-amplitude) > 0.01 {
		t.Errorf("bin %d = %v, want %v", bin, mags[bin], amplitude)
	}

	// Hann leakage is confined to the immediate neighbors.
	for k, m := range mags {
		if k >= bin-1 && k <= bin+1 {
			continue
		}

		if m > 1e-6 {
			t.Errorf("bin %d = %v, want near 0", k, m)
		}
	}
}

func TestDCBinIsNotDoubled(t *testing.T) {
	a := newTestAnalyzer(t)
	w := analysis.NewWindow()

	fillWindow(w, func(int) float32 { return 0.5 })

	if err := a.Compute(w); err != nil {
		t.Fatal(err)
	}

	if got := a.Magnitudes()[0]; math.Abs(got-0.5) > 1e-9 {
		t.Errorf("DC bin = %v, want 0.5", got)
	}
}

func TestMagnitudesLength(t *testing.T) {
	a := newTestAnalyzer(t)

	if got := len(a.Magnitudes()); got != NumBins {
		t.Fatalf("len(Magnitudes) = %d, want %d", got, NumBins)
	}
}

func TestComputeDoesNotAllocate(t *testing.T) {
	a := newTestAnalyzer(t)
	w := analysis.NewWindow()

	if err := a.Compute(w); err != nil {
		t.Fatal(err)
	}

	allocs := testing.AllocsPerRun(20, func() {
		if err := a.Compute(w); err != nil {
			t.Fatal(err)
		}
	})

	if allocs != 0 {
		t.Fatalf("Compute allocates %v times per run, want 0", allocs)
	}
}

func BenchmarkCompute(b *testing.B) {
	a, err := NewAnalyzer()
	if err != nil {
		b.Fatal(err)
	}

	w := analysis.NewWindow()
	for i := 0; i < analysis.WindowSize; i++ {
		w.Feed(float32(math.Sin(float64(i) / 7)))
	}

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if err := a.Compute(w); err != nil {
			b.Fatal(err)
		}
	}
}
