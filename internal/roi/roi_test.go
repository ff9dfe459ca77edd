package roi

import (
	"testing"

	"github.com/carehealth/rppg-core/internal/types"
)

func flatFrame(width, height int, r, g, b, a byte) []byte {
	n := width * height
	buf := make([]byte, n*4)
	for i := 0; i < n; i++ {
		buf[i*4], buf[i*4+1], buf[i*4+2], buf[i*4+3] = r, g, b, a
	}
	return buf
}

// fakeSource is a minimal types.PixelSource backed by a flat in-memory
// frame, for exercising Sample/meansFor without a real camera.
type fakeSource struct {
	width, height int
	r, g, b, a    byte
}

func (f *fakeSource) Width() int  { return f.width }
func (f *fakeSource) Height() int { return f.height }
func (f *fakeSource) Read(rect types.Rect) []byte {
	return flatFrame(rect.W, rect.H, f.r, f.g, f.b, f.a)
}

func TestSampleWeightedGreen(t *testing.T) {
	src := &fakeSource{width: 100, height: 100, r: 50, g: 100, b: 50, a: 255}
	rois := []types.ROI{
		{Kind: types.Forehead, Rect: types.Rect{X: 0, Y: 0, W: 10, H: 10}, Weight: 0.6},
		{Kind: types.LeftCheek, Rect: types.Rect{X: 0, Y: 0, W: 10, H: 10}, Weight: 0.2},
	}

	v, ok := Sample(src, rois)
	if !ok {
		t.Fatal("Sample returned ok=false for a uniform qualifying frame")
	}
	if v != 100 {
		t.Errorf("Sample = %v, want 100 (uniform green channel)", v)
	}
}

// TestSampleExcludesDarkPixels checks spec §4.B's R+G+B<=30 background
// exclusion: an all-dark ROI contributes nothing.
func TestSampleExcludesDarkPixels(t *testing.T) {
	src := &fakeSource{width: 10, height: 10, r: 5, g: 5, b: 5, a: 255}
	rois := []types.ROI{
		{Kind: types.Forehead, Rect: types.Rect{X: 0, Y: 0, W: 10, H: 10}, Weight: 1.0},
	}

	_, ok := Sample(src, rois)
	if ok {
		t.Error("Sample returned ok=true for an all-dark ROI, want false")
	}
}

// TestSampleNoROIsSurvive checks that an empty surviving set reports
// "no sample" rather than dividing by zero.
func TestSampleNoROIsSurvive(t *testing.T) {
	src := &fakeSource{width: 10, height: 10, r: 0, g: 0, b: 0, a: 0}
	rois := []types.ROI{
		{Kind: types.Forehead, Rect: types.Rect{X: 0, Y: 0, W: 10, H: 10}, Weight: 1.0},
	}

	if _, ok := Sample(src, rois); ok {
		t.Error("Sample returned ok=true with zero surviving ROIs, want false")
	}
}

func TestDefaultROIsWithinFrame(t *testing.T) {
	rois := Default(640, 480, [3]float64{0.6, 0.2, 0.2})
	if len(rois) != 3 {
		t.Fatalf("Default returned %d ROIs, want 3", len(rois))
	}
	for _, r := range rois {
		if r.Rect.X < 0 || r.Rect.Y < 0 || r.Rect.X+r.Rect.W > 640 || r.Rect.Y+r.Rect.H > 480 {
			t.Errorf("%v ROI rect %v escapes frame bounds", r.Kind, r.Rect)
		}
	}
}

func TestFromLandmarksShiftsForeheadUp(t *testing.T) {
	points := make([]types.Point, 68)
	for i := range points {
		points[i] = types.Point{X: 100, Y: 100}
	}

	rois := FromLandmarks(points, 640, 480, [3]float64{0.6, 0.2, 0.2})

	forehead := rois[0]
	// All forehead landmarks are at y=100; padded by 20 then shifted up by
	// 20 more should land the box at y=60.
	wantY := 100 - 20 - 20
	if forehead.Rect.Y != wantY {
		t.Errorf("forehead rect Y = %d, want %d", forehead.Rect.Y, wantY)
	}
}

// TestResolveFallsBackWithoutFace checks that Resolve reports
// FaceDetected=false when the face source has nothing (spec §9 note 2).
func TestResolveFallsBackWithoutFace(t *testing.T) {
	resolved := Resolve(nil, false, 640, 480, [3]float64{0.6, 0.2, 0.2})
	if resolved.FaceDetected {
		t.Error("FaceDetected = true for a missing face observation, want false")
	}
	if len(resolved.ROIs) != 3 {
		t.Errorf("len(ROIs) = %d, want 3 default ROIs", len(resolved.ROIs))
	}
}

// TestResolveUsesBoxWithoutLandmarks checks the "face box, no landmarks"
// branch: it should report FaceDetected=true with a single forehead ROI.
func TestResolveUsesBoxWithoutLandmarks(t *testing.T) {
	face := &types.FaceResult{Box: types.Rect{X: 10, Y: 10, W: 100, H: 100}}
	resolved := Resolve(face, true, 640, 480, [3]float64{0.6, 0.2, 0.2})

	if !resolved.FaceDetected {
		t.Error("FaceDetected = false with a face box present, want true")
	}
	if len(resolved.ROIs) != 1 {
		t.Fatalf("len(ROIs) = %d, want 1", len(resolved.ROIs))
	}
	if resolved.ROIs[0].Rect != face.Box {
		t.Errorf("roi rect = %v, want face box %v", resolved.ROIs[0].Rect, face.Box)
	}
}
