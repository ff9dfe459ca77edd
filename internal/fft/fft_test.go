package fft

import (
	"math"
	"testing"
)

func TestNewRejectsNonPowerOfTwo(t *testing.T) {
	cases := []int{0, 1, 3, 100, 513}
	for _, n := range cases {
		if _, err := New(n); err == nil {
			t.Errorf("New(%d) = nil error, want fatal configuration error", n)
		}
	}
}

func TestForwardRejectsMismatchedLength(t *testing.T) {
	k, err := New(8)
	if err != nil {
		t.Fatalf("New(8) failed: %v", err)
	}
	re := make([]float64, 8)
	im := make([]float64, 4)
	if err := k.Forward(re, im); err == nil {
		t.Error("Forward with mismatched lengths returned nil error")
	}
}

// TestRoundTrip checks spec §8 property 4: ||x - iFFT(FFT(x))||_inf / ||x||_inf < 1e-10.
func TestRoundTrip(t *testing.T) {
	const n = 512
	k, err := New(n)
	if err != nil {
		t.Fatalf("New(%d) failed: %v", n, err)
	}

	x := make([]float64, n)
	for i := range x {
		x[i] = math.Sin(2*math.Pi*3*float64(i)/float64(n)) + 0.5*math.Cos(2*math.Pi*11*float64(i)/float64(n))
	}

	re := append([]float64(nil), x...)
	im := make([]float64, n)

	if err := k.Forward(re, im); err != nil {
		t.Fatalf("Forward failed: %v", err)
	}
	if err := k.Inverse(re, im); err != nil {
		t.Fatalf("Inverse failed: %v", err)
	}

	var maxDiff, maxAbs float64
	for i := range x {
		diff := math.Abs(x[i] - re[i])
		if diff > maxDiff {
			maxDiff = diff
		}
		if math.Abs(x[i]) > maxAbs {
			maxAbs = math.Abs(x[i])
		}
	}

	if ratio := maxDiff / maxAbs; ratio >= 1e-10 {
		t.Errorf("round-trip error ratio = %.3e, want < 1e-10", ratio)
	}
}

// TestDCBin checks that a pure DC input only energizes bin 0.
func TestDCBin(t *testing.T) {
	const n = 16
	k, err := New(n)
	if err != nil {
		t.Fatalf("New(%d) failed: %v", n, err)
	}

	re := make([]float64, n)
	im := make([]float64, n)
	for i := range re {
		re[i] = 1.0
	}

	if err := k.Forward(re, im); err != nil {
		t.Fatalf("Forward failed: %v", err)
	}

	mag := Magnitude(re, im)
	if mag[0] < float64(n)-1e-9 {
		t.Errorf("bin 0 magnitude = %v, want ~%d", mag[0], n)
	}
	for i := 1; i < n; i++ {
		if mag[i] > 1e-9 {
			t.Errorf("bin %d magnitude = %v, want ~0 for DC input", i, mag[i])
		}
	}
}

// TestKnownSinusoid checks a single-frequency sinusoid lands its energy at
// the expected bin.
func TestKnownSinusoid(t *testing.T) {
	const n = 64
	const bin = 5
	k, err := New(n)
	if err != nil {
		t.Fatalf("New(%d) failed: %v", n, err)
	}

	re := make([]float64, n)
	im := make([]float64, n)
	for i := range re {
		re[i] = math.Sin(2 * math.Pi * float64(bin) * float64(i) / float64(n))
	}

	if err := k.Forward(re, im); err != nil {
		t.Fatalf("Forward failed: %v", err)
	}

	mag := Magnitude(re, im)
	peak := 0
	for i := 1; i < n/2; i++ {
		if mag[i] > mag[peak] {
			peak = i
		}
	}

	if peak != bin {
		t.Errorf("peak bin = %d, want %d", peak, bin)
	}
}
