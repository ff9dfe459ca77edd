// Package spectral implements component D: windowed FFT over the
// processed signal, peak selection under robustness rules, octave
// correction, and the final BPM decision (spec §4.D).
package spectral

import (
	"math"
	"sort"

	"github.com/carehealth/rppg-core/internal/fft"
)

// minProcessedLen is the minimum buffer length required before an estimate
// is attempted at all (3s @ 30Hz, spec §4.D step 1).
const minProcessedLen = 90

const (
	bandLowHz  = 0.7
	bandHighHz = 3.5
)

// peak is one local maximum of the magnitude spectrum within the cardiac
// band, with its sharpness and combined score (spec §4.D step 5-6).
type peak struct {
	bin       int
	freq      float64
	magnitude float64
	sharpness float64
	score     float64
}

// Range is an inclusive BPM bound, independent of internal/config to keep
// this package free of a config dependency.
type Range struct {
	Min, Max int
}

// Estimate runs the full spectral BPM decision procedure over a processed
// buffer snapshot. Returns ok=false for every "no estimate" outcome named
// in spec §4.D (too little data, no significant peak, out of range after
// correction).
func Estimate(processed []float64, sampleRate int, kernel *fft.Kernel, adaptiveThreshold float64, bpmRange Range) (int, bool) {
	if len(processed) < minProcessedLen {
		return 0, false
	}

	mag := windowedMagnitude(processed, sampleRate, kernel)

	peaks := findPeaks(mag, sampleRate, kernel.N())
	if len(peaks) == 0 {
		return 0, false
	}

	sort.SliceStable(peaks, func(i, j int) bool {
		return peaks[i].score > peaks[j].score
	})

	best := peaks[0]

	mavg := bandMean(mag, sampleRate, kernel.N())
	if best.magnitude < mavg*(1.5+adaptiveThreshold) {
		return 0, false
	}

	selected := applyOctaveCorrection(best, peaks)

	bpm := 60 * selected.freq
	bpm = rangeRescue(bpm)

	rounded := int(math.Round(bpm))
	if rounded < bpmRange.Min || rounded > bpmRange.Max {
		return 0, false
	}
	return rounded, true
}

// windowedMagnitude copies the last min(L,N) processed samples into a
// zero-padded Hanning-windowed buffer and returns the forward FFT's
// magnitude spectrum (spec §4.D steps 2-4).
func windowedMagnitude(processed []float64, sampleRate int, kernel *fft.Kernel) []float64 {
	n := kernel.N()
	re := make([]float64, n)
	im := make([]float64, n)

	take := len(processed)
	if take > n {
		take = n
	}
	offset := len(processed) - take

	for i := 0; i < take; i++ {
		w := 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
		re[i] = processed[offset+i] * w
	}

	_ = kernel.Forward(re, im)
	return fft.Magnitude(re, im)
}

// findPeaks enumerates strict local maxima of mag within the cardiac band
// and scores each by magnitude*(1+sharpness) (spec §4.D step 5).
func findPeaks(mag []float64, sampleRate, n int) []peak {
	var peaks []peak
	half := n / 2

	for i := 1; i < half-1; i++ {
		freq := binFreq(i, sampleRate, n)
		if freq < bandLowHz || freq > bandHighHz {
			continue
		}
		if !(mag[i] > mag[i-1] && mag[i] > mag[i+1]) {
			continue
		}

		sharp := sharpness(mag, i)
		peaks = append(peaks, peak{
			bin:       i,
			freq:      freq,
			magnitude: mag[i],
			sharpness: sharp,
			score:     mag[i] * (1 + sharp),
		})
	}
	return peaks
}

// sharpness is the mean of m[peak]-m[peak+-k] for k in 1..3, clipped to
// array bounds (spec §4.D step 5).
func sharpness(mag []float64, i int) float64 {
	var sum float64
	var count int
	for k := 1; k <= 3; k++ {
		if i-k >= 0 {
			sum += mag[i] - mag[i-k]
			count++
		}
		if i+k < len(mag) {
			sum += mag[i] - mag[i+k]
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

func binFreq(i, sampleRate, n int) float64 {
	return float64(i) * float64(sampleRate) / float64(n)
}

// bandMean is the mean magnitude over the same cardiac band used for peak
// enumeration, for the significance gate (spec §4.D step 7).
func bandMean(mag []float64, sampleRate, n int) float64 {
	half := n / 2
	var sum float64
	var count int
	for i := 0; i < half; i++ {
		freq := binFreq(i, sampleRate, n)
		if freq >= bandLowHz && freq <= bandHighHz {
			sum += mag[i]
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

// applyOctaveCorrection implements spec §4.D step 8: prefer a stronger
// double-frequency peak, else a half-frequency peak under the bpm bounds
// named in the spec, else keep best.
func applyOctaveCorrection(best peak, all []peak) peak {
	if double := findNear(all, 2*best.freq, 0.1); double != nil && double.magnitude >= 0.7*best.magnitude {
		return *double
	}

	if half := findNear(all, best.freq/2, 0.1); half != nil && half.magnitude >= 0.5*best.magnitude {
		bestBPM := 60 * best.freq
		halfBPM := 60 * half.freq
		if bestBPM > 120 && halfBPM >= 50 && halfBPM <= 120 {
			return *half
		}
	}

	return best
}

// findNear returns the peak closest to targetFreq within +-tolHz, or nil.
// Ties in distance go to the peak that comes first in peaks; Estimate
// passes them sorted by score, so the higher-scored peak wins.
func findNear(peaks []peak, targetFreq, tolHz float64) *peak {
	var best *peak
	var bestDist float64
	for i := range peaks {
		p := &peaks[i]
		dist := math.Abs(p.freq - targetFreq)
		if dist > tolHz {
			continue
		}
		if best == nil || dist < bestDist {
			best = p
			bestDist = dist
		}
	}
	return best
}

// rangeRescue implements spec §4.D step 10: nudge a bpm that landed
// outside the plausible cardiac range by doubling/halving it once, if that
// lands it back in range.
func rangeRescue(bpm float64) float64 {
	switch {
	case bpm >= 25 && bpm < 50:
		if doubled := bpm * 2; doubled >= 50 && doubled <= 200 {
			return doubled
		}
	case bpm > 150 && bpm <= 400:
		if halved := bpm / 2; halved >= 50 && halved <= 150 {
			return halved
		}
	}
	return bpm
}
