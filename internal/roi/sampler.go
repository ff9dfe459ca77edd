// Package roi implements component B: reducing a frame plus a set of ROI
// rectangles to a single scalar sample per tick. It is polymorphic over the
// pixel source and the face source (spec §9), expressed as the two small
// capability contracts in internal/types.
package roi

import "github.com/carehealth/rppg-core/internal/types"

// ChrominanceVector is the R/G/B weighting referenced by the source
// material but not used by the current aggregation formula (spec §9 note
// 4, §4.B) — retained for a future chrominance-based sample.
var ChrominanceVector = [3]float64{0.77, 0.51, 0.34}

// minChannelSum excludes transparent/near-black background pixels from the
// per-ROI accumulation (spec §4.B step 2).
const minChannelSum = 30

// roiMeans is the per-channel mean over one ROI's qualifying pixels.
type roiMeans struct {
	r, g, b float64
	ok      bool
}

// meansFor reads the rectangle from src and returns the mean R/G/B over
// pixels with alpha > 0 and R+G+B > 30. ok is false when no pixel
// qualifies (spec §4.B steps 1-4).
func meansFor(src types.PixelSource, rect types.Rect) roiMeans {
	pixels := src.Read(rect)
	if len(pixels) < 4 {
		return roiMeans{}
	}

	var sumR, sumG, sumB float64
	var n int

	for i := 0; i+3 < len(pixels); i += 4 {
		r, g, b, a := pixels[i], pixels[i+1], pixels[i+2], pixels[i+3]
		if a == 0 {
			continue
		}
		total := int(r) + int(g) + int(b)
		if total <= minChannelSum {
			continue
		}
		sumR += float64(r)
		sumG += float64(g)
		sumB += float64(b)
		n++
	}

	if n == 0 {
		return roiMeans{}
	}
	return roiMeans{r: sumR / float64(n), g: sumG / float64(n), b: sumB / float64(n), ok: true}
}

// Sample reduces a frame plus a set of weighted ROIs to the single scalar
// consumed by the signal chain: the weighted mean of the green channel
// across surviving ROIs, weights renormalised to sum to 1 over whichever
// ROIs survived this tick (spec §4.B).
//
// Returns ok=false ("no sample") when zero ROIs survive, matching spec
// §4.B's failure mode; the caller (internal/session) treats that as a
// skipped frame.
func Sample(src types.PixelSource, rois []types.ROI) (float64, bool) {
	var weightedGreen, weightSum float64

	for _, r := range rois {
		means := meansFor(src, r.Rect)
		if !means.ok {
			continue
		}
		weightedGreen += r.Weight * means.g
		weightSum += r.Weight
	}

	if weightSum <= 0 {
		return 0, false
	}
	return weightedGreen / weightSum, true
}
