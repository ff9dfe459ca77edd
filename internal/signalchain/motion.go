package signalchain

// motionDetected implements spec §4.C's motion-artefact detector: split the
// motion buffer into non-overlapping 1-second windows, take the variance of
// each, then compare the variance of those per-window variances against
// their mean. The stability sub-metric uses its own 2-second windows
// (quality.go's stabilityScore) rather than reusing vbar/vv from here.
func motionDetected(motionBuf []float64, sampleRate int) (motion bool, vbar, vv float64) {
	windows := splitWindows(motionBuf, sampleRate)
	if len(windows) == 0 {
		return false, 0, 0
	}

	perWindowVariance := make([]float64, len(windows))
	for i, w := range windows {
		perWindowVariance[i] = variance(w)
	}

	vbar, _ = meanStd(perWindowVariance)
	vv = variance(perWindowVariance)

	return vv > 1.5*vbar, vbar, vv
}

// splitWindows partitions x into non-overlapping windows of the given
// size, dropping any short trailing remainder.
func splitWindows(x []float64, size int) [][]float64 {
	if size <= 0 {
		return nil
	}
	n := len(x) / size
	windows := make([][]float64, 0, n)
	for i := 0; i < n; i++ {
		windows = append(windows, x[i*size:(i+1)*size])
	}
	return windows
}
