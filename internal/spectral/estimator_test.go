package spectral

import (
	"math"
	"testing"

	"github.com/carehealth/rppg-core/internal/fft"
)

func syntheticPulse(bpm float64, n, sampleRate int) []float64 {
	freq := bpm / 60.0
	x := make([]float64, n)
	for i := range x {
		t := float64(i) / float64(sampleRate)
		x[i] = math.Sin(2 * math.Pi * freq * t)
	}
	return x
}

// TestEstimateRecoversKnownBPM checks that a clean synthetic pulse at a
// plausible heart rate is recovered within a bin or two.
func TestEstimateRecoversKnownBPM(t *testing.T) {
	const sampleRate = 30
	k, err := fft.New(256)
	if err != nil {
		t.Fatalf("fft.New: %v", err)
	}

	x := syntheticPulse(72, 450, sampleRate)
	bpm, ok := Estimate(x, sampleRate, k, 0, Range{Min: 40, Max: 220})
	if !ok {
		t.Fatal("Estimate returned ok=false for a clean 72bpm signal")
	}

	if math.Abs(float64(bpm-72)) > 8 {
		t.Errorf("Estimate = %d, want close to 72", bpm)
	}
}

// TestEstimateRequiresMinimumData checks spec §4.D step 1: fewer than 90
// samples always yields "no estimate".
func TestEstimateRequiresMinimumData(t *testing.T) {
	k, err := fft.New(256)
	if err != nil {
		t.Fatalf("fft.New: %v", err)
	}

	short := make([]float64, 89)
	if _, ok := Estimate(short, 30, k, 0, Range{Min: 40, Max: 220}); ok {
		t.Error("Estimate with 89 samples returned ok=true, want false")
	}
}

// TestEstimateRejectsFlatSignal checks the significance gate (spec §4.D
// step 7): a signal with no dominant peak should not produce an estimate.
func TestEstimateRejectsFlatSignal(t *testing.T) {
	k, err := fft.New(256)
	if err != nil {
		t.Fatalf("fft.New: %v", err)
	}

	flat := make([]float64, 256)
	if _, ok := Estimate(flat, 30, k, 0, Range{Min: 40, Max: 220}); ok {
		t.Error("Estimate on a flat signal returned ok=true, want false")
	}
}

// TestRangeRescueDoubling checks spec §4.D step 10's low-range rescue rule.
func TestRangeRescueDoubling(t *testing.T) {
	got := rangeRescue(40)
	if got != 80 {
		t.Errorf("rangeRescue(40) = %v, want 80", got)
	}
}

// TestRangeRescueHalving checks spec §4.D step 10's high-range rescue rule.
func TestRangeRescueHalving(t *testing.T) {
	got := rangeRescue(200)
	if got != 100 {
		t.Errorf("rangeRescue(200) = %v, want 100", got)
	}
}

// TestRangeRescueLeavesPlausibleValuesAlone checks that values already in
// the plausible band pass through unchanged.
func TestRangeRescueLeavesPlausibleValuesAlone(t *testing.T) {
	got := rangeRescue(72)
	if got != 72 {
		t.Errorf("rangeRescue(72) = %v, want 72 (unchanged)", got)
	}
}

// TestOctaveCorrectionPrefersStrongDouble checks spec §4.D step 8: a
// double-frequency peak with magnitude >= 0.7*best should be selected in
// preference to the fundamental.
func TestOctaveCorrectionPrefersStrongDouble(t *testing.T) {
	fundamental := peak{freq: 1.0, magnitude: 10}
	double := peak{freq: 2.0, magnitude: 8}
	all := []peak{fundamental, double}

	selected := applyOctaveCorrection(fundamental, all)
	if selected.freq != double.freq {
		t.Errorf("selected freq = %v, want %v", selected.freq, double.freq)
	}
}

// TestOctaveCorrectionKeepsWeakDouble checks that a double-frequency peak
// below the 0.7x magnitude threshold does not override the fundamental.
func TestOctaveCorrectionKeepsWeakDouble(t *testing.T) {
	fundamental := peak{freq: 1.0, magnitude: 10}
	weakDouble := peak{freq: 2.0, magnitude: 5}
	all := []peak{fundamental, weakDouble}

	selected := applyOctaveCorrection(fundamental, all)
	if selected.freq != fundamental.freq {
		t.Errorf("selected freq = %v, want %v (fundamental kept)", selected.freq, fundamental.freq)
	}
}
