package roi

import "github.com/carehealth/rppg-core/internal/types"

// Default computes the three fallback ROIs centred on the frame, used when
// the face source reports no face (spec §6):
//
//   - forehead: centred horizontally, upper third, ~33% width x 33% height
//   - left/right cheeks: symmetric patches ~1/6 height below centre
//
// Choosing this path does NOT mean a face was detected (spec §9 note 2) —
// the caller is responsible for setting Output.FaceDetected=false.
func Default(frameW, frameH int, weights [3]float64) []types.ROI {
	w33 := int(float64(frameW) * 0.33)
	h33 := int(float64(frameH) * 0.33)

	forehead := types.Rect{
		X: (frameW - w33) / 2,
		Y: frameH / 3,
		W: w33,
		H: h33,
	}

	cheekW := w33 / 2
	cheekH := h33 / 2
	cheekY := frameH/2 + frameH/6

	leftCheek := types.Rect{
		X: frameW/2 - cheekW - cheekW/2,
		Y: cheekY,
		W: cheekW,
		H: cheekH,
	}
	rightCheek := types.Rect{
		X: frameW/2 + cheekW/2,
		Y: cheekY,
		W: cheekW,
		H: cheekH,
	}

	return []types.ROI{
		{Kind: types.Forehead, Rect: forehead, Weight: weights[0]},
		{Kind: types.LeftCheek, Rect: leftCheek, Weight: weights[1]},
		{Kind: types.RightCheek, Rect: rightCheek, Weight: weights[2]},
	}
}
