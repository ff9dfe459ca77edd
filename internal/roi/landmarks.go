package roi

import "github.com/carehealth/rppg-core/internal/types"

// landmark index ranges, 1-based per the 68-point convention named in
// spec §6; converted to 0-based slice indices where used below.
var (
	foreheadPts  = indexRange(19, 24)
	leftCheekPts = append(indexRange(1, 6), indexRange(31, 35)...)
	rightCheek   = append(indexRange(10, 15), indexRange(31, 35)...)
)

func indexRange(from, to int) []int {
	out := make([]int, 0, to-from+1)
	for i := from; i <= to; i++ {
		out = append(out, i-1)
	}
	return out
}

// boundingBox returns the smallest rectangle covering the named landmark
// indices, padded outward by pad pixels and clamped to the frame bounds.
func boundingBox(points []types.Point, indices []int, pad, shiftY, frameW, frameH int) types.Rect {
	minX, minY := int(^uint(0)>>1), int(^uint(0)>>1)
	maxX, maxY := 0, 0
	found := false

	for _, idx := range indices {
		if idx < 0 || idx >= len(points) {
			continue
		}
		p := points[idx]
		if !found || p.X < minX {
			minX = p.X
		}
		if !found || p.Y < minY {
			minY = p.Y
		}
		if p.X > maxX {
			maxX = p.X
		}
		if p.Y > maxY {
			maxY = p.Y
		}
		found = true
	}

	if !found {
		return types.Rect{}
	}

	minX -= pad
	minY -= pad
	maxX += pad
	maxY += pad

	// shiftY moves the whole padded box vertically (forehead: -20, spec §6).
	minY += shiftY
	maxY += shiftY

	if minX < 0 {
		minX = 0
	}
	if minY < 0 {
		minY = 0
	}
	if maxX > frameW {
		maxX = frameW
	}
	if maxY > frameH {
		maxY = frameH
	}

	return types.Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}

// FromLandmarks derives the three tagged ROIs from 68-point landmarks
// (spec §6), using the weights configured for each kind.
func FromLandmarks(points []types.Point, frameW, frameH int, weights [3]float64) []types.ROI {
	return []types.ROI{
		{Kind: types.Forehead, Rect: boundingBox(points, foreheadPts, 20, -20, frameW, frameH), Weight: weights[0]},
		{Kind: types.LeftCheek, Rect: boundingBox(points, leftCheekPts, 10, 0, frameW, frameH), Weight: weights[1]},
		{Kind: types.RightCheek, Rect: boundingBox(points, rightCheek, 10, 0, frameW, frameH), Weight: weights[2]},
	}
}
