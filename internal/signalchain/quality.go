package signalchain

import (
	"math"

	"github.com/carehealth/rppg-core/internal/fft"
	"github.com/carehealth/rppg-core/internal/types"
)

// Quality computes the composite [0,1] quality score and label (spec
// §4.C). processed is the output of Process(); raw is the unfiltered
// snapshot of the last fftSize samples used for the peak-quality
// sub-metric's fresh FFT; motionBuf is the same motion-window snapshot the
// motion detector ran on, re-split here into its own 2-second sub-windows
// for the Stability sub-metric (spec §4.C names 2s windows for Stability,
// distinct from the motion gate's 1s windows).
func Quality(processed []float64, raw []float64, motion bool, motionBuf []float64, sampleRate int, kernel *fft.Kernel) (float64, types.Quality) {
	if len(processed) < minProcessLen {
		return 0, types.Insufficient
	}

	snr := snrScore(processed)
	motionScore := 1.0
	if motion {
		motionScore = 0.7
	}
	stability := stabilityScore(motionBuf, sampleRate)
	peak := peakQualityScore(raw, sampleRate, kernel)

	score := 0.4*snr + 0.2*motionScore + 0.2*stability + 0.2*peak

	return score, labelFor(score)
}

func snrScore(processed []float64) float64 {
	mean, std := meanStd(processed)
	if std == 0 {
		return 1
	}
	score := (absf(mean) / std) / 0.5
	if score > 1 {
		score = 1
	}
	return score
}

// stabilityScore splits motionBuf into its own 2-second sub-windows,
// distinct from the motion detector's 1-second windows, per spec §4.C.
// Fewer than two such windows isn't enough to say anything about
// stability, so that case returns a neutral 0.5 rather than dividing by
// whatever vbar/vv happen to be.
func stabilityScore(motionBuf []float64, sampleRate int) float64 {
	windows := splitWindows(motionBuf, 2*sampleRate)
	if len(windows) < 2 {
		return 0.5
	}

	perWindowVariance := make([]float64, len(windows))
	for i, w := range windows {
		perWindowVariance[i] = variance(w)
	}
	vbar, _ := meanStd(perWindowVariance)
	vv := variance(perWindowVariance)

	if vbar+vv == 0 {
		return 1
	}
	return vbar / (vbar + vv)
}

// peakQualityScore runs a fresh Hanning-windowed FFT over the last N
// samples and reports the fraction of spectral energy inside the
// 0.7-3.5Hz band, capped at 1 via a x2 boost (spec §4.C).
func peakQualityScore(raw []float64, sampleRate int, kernel *fft.Kernel) float64 {
	n := kernel.N()
	if len(raw) == 0 {
		return 0
	}

	re := make([]float64, n)
	im := make([]float64, n)
	take := len(raw)
	if take > n {
		take = n
	}
	offset := len(raw) - take
	for i := 0; i < take; i++ {
		w := 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
		re[i] = raw[offset+i] * w
	}

	if err := kernel.Forward(re, im); err != nil {
		return 0
	}
	mag := fft.Magnitude(re, im)

	var bandEnergy, totalEnergy float64
	for i := 0; i < n/2; i++ {
		freq := float64(i) * float64(sampleRate) / float64(n)
		e := mag[i] * mag[i]
		totalEnergy += e
		if freq >= 0.7 && freq <= 3.5 {
			bandEnergy += e
		}
	}

	if totalEnergy == 0 {
		return 0
	}
	score := (bandEnergy / totalEnergy) * 2
	if score > 1 {
		score = 1
	}
	return score
}

func labelFor(score float64) types.Quality {
	switch {
	case score > 0.7:
		return types.Excellent
	case score > 0.5:
		return types.Good
	case score > 0.3:
		return types.Fair
	default:
		return types.Poor
	}
}
