package signalchain

// minProcessLen is the minimum buffer length before Process returns a
// result at all (1s @ 30Hz, spec §4.C "Minimum-data policy").
const minProcessLen = 30

// clipOutliers replaces any sample whose deviation from the input mean
// exceeds 2 standard deviations with the mean, in a single pass over a
// snapshot copy — never mutating the live ring buffer (spec §4.C step 1,
// §8 property 3: outputs satisfy |y-mu| <= 2*sigma using the *input*
// statistics).
func clipOutliers(x []float64) []float64 {
	mean, std := meanStd(x)
	out := make([]float64, len(x))
	for i, v := range x {
		if std > 0 && absf(v-mean) > 2*std {
			out[i] = mean
		} else {
			out[i] = v
		}
	}
	return out
}

func absf(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// bandpass applies a causal first-order IIR high-pass then low-pass in
// sequence, each seeded with the first sample (spec §4.C step 2).
func bandpass(x []float64, alphaHP, alphaLP float64) []float64 {
	n := len(x)
	if n == 0 {
		return x
	}

	y := make([]float64, n)
	y[0] = x[0]
	for i := 1; i < n; i++ {
		y[i] = alphaHP * (y[i-1] + x[i] - x[i-1])
	}

	z := make([]float64, n)
	z[0] = y[0]
	for i := 1; i < n; i++ {
		z[i] = alphaLP*y[i] + (1-alphaLP)*z[i-1]
	}

	return z
}

// trailingMovingAverage smooths x with a trailing window of the given
// size, matching whichever motion-adaptive window is currently in effect
// (spec §4.C step 3).
func trailingMovingAverage(x []float64, window int) []float64 {
	n := len(x)
	out := make([]float64, n)
	if window <= 1 {
		copy(out, x)
		return out
	}

	var sum float64
	for i := 0; i < n; i++ {
		sum += x[i]
		if i >= window {
			sum -= x[i-window]
		}
		count := window
		if i+1 < window {
			count = i + 1
		}
		out[i] = sum / float64(count)
	}
	return out
}

// Process returns the processed signal (outlier clip -> bandpass ->
// adaptive smoothing) applied to a snapshot copy of the main buffer using
// the given Params, or ok=false if there aren't yet enough samples (spec
// §4.C).
func Process(raw []float64, p Params) ([]float64, bool) {
	if len(raw) < minProcessLen {
		return nil, false
	}
	clipped := clipOutliers(raw)
	filtered := bandpass(clipped, p.AlphaHP, p.AlphaLP)
	smoothed := trailingMovingAverage(filtered, p.MAWindow)
	return smoothed, true
}
