package roi

import "github.com/carehealth/rppg-core/internal/types"

// Resolved is the result of turning a face observation into a concrete ROI
// set for the current tick.
type Resolved struct {
	ROIs         []types.ROI
	FaceDetected bool
}

// Resolve picks landmark-derived ROIs when a face was detected with
// landmarks, falls back to bounding-box-derived weighting when a face was
// detected without landmarks, and falls back to the default centred ROIs
// otherwise (spec §6).
func Resolve(face *types.FaceResult, ok bool, frameW, frameH int, weights [3]float64) Resolved {
	if !ok || face == nil {
		return Resolved{ROIs: Default(frameW, frameH, weights), FaceDetected: false}
	}
	if len(face.Landmarks) > 0 {
		return Resolved{ROIs: FromLandmarks(face.Landmarks, frameW, frameH, weights), FaceDetected: true}
	}
	// Face box with no landmarks: treat the box itself as the forehead ROI
	// and skip the cheeks rather than guessing their location.
	return Resolved{
		ROIs: []types.ROI{
			{Kind: types.Forehead, Rect: face.Box, Weight: weights[0]},
		},
		FaceDetected: true,
	}
}
