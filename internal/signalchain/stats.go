package signalchain

import "gonum.org/v1/gonum/stat"

// meanStd returns the mean and standard deviation of x, used throughout the
// chain for outlier clipping, motion detection, and the SNR sub-metric.
func meanStd(x []float64) (mean, std float64) {
	if len(x) == 0 {
		return 0, 0
	}
	mean = stat.Mean(x, nil)
	if len(x) < 2 {
		return mean, 0
	}
	std = stat.StdDev(x, nil)
	return mean, std
}

// variance returns the variance of x.
func variance(x []float64) float64 {
	if len(x) < 2 {
		return 0
	}
	return stat.Variance(x, nil)
}
