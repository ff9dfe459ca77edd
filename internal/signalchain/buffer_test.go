package signalchain

import "testing"

// TestBufferBound checks spec §8 property 1: for any sequence of k
// samples, ring buffer length = min(k, W).
func TestBufferBound(t *testing.T) {
	const capacity = 450
	r := NewRing(capacity)

	cases := []int{0, 1, 100, 450, 900}
	for _, k := range cases {
		r = NewRing(capacity)
		for i := 0; i < k; i++ {
			r.Push(float64(i))
		}
		want := k
		if want > capacity {
			want = capacity
		}
		if r.Len() != want {
			t.Errorf("after %d pushes, Len() = %d, want %d", k, r.Len(), want)
		}
	}
}

// TestOrdering checks spec §8 property 2: for all i<j, the sample at
// position i was added no later than the sample at j.
func TestOrdering(t *testing.T) {
	r := NewRing(10)
	for i := 0; i < 25; i++ {
		r.Push(float64(i))
	}

	snap := r.Snapshot()
	for i := 1; i < len(snap); i++ {
		if snap[i-1] >= snap[i] {
			t.Fatalf("snapshot not strictly increasing at %d: %v", i, snap)
		}
	}

	// Oldest surviving sample should be 15 (pushed 0..24 into cap 10).
	if snap[0] != 15 {
		t.Errorf("oldest sample = %v, want 15", snap[0])
	}
}

func TestLast(t *testing.T) {
	r := NewRing(10)
	for i := 0; i < 7; i++ {
		r.Push(float64(i))
	}

	last3 := r.Last(3)
	want := []float64{4, 5, 6}
	for i, v := range want {
		if last3[i] != v {
			t.Errorf("Last(3)[%d] = %v, want %v", i, last3[i], v)
		}
	}

	// Asking for more than available returns everything.
	all := r.Last(100)
	if len(all) != 7 {
		t.Errorf("Last(100) len = %d, want 7", len(all))
	}
}
