// Package types holds the data shapes shared across the rPPG pipeline:
// frames coming in, ROI descriptors, and the tagged output produced once
// per tick. Kept separate from the components that operate on them so
// internal/session doesn't create import cycles between fft/roi/signalchain/
// spectral/calibration.
package types

import "time"

// PixelSource reads raw RGBA pixel bytes for a rectangle of a single frame.
// Row-major, 8 bits per channel, as described by the frame source contract.
type PixelSource interface {
	Read(rect Rect) []byte
	Width() int
	Height() int
}

// FaceSource reports the most recently detected face, or (nil, false) when
// the face detector found nothing this tick. Landmarks follow the 68-point
// convention; a nil Landmarks with ok=true means a bounding box without
// landmarks was reported.
type FaceSource interface {
	Detect() (*FaceResult, bool)
}

// FaceResult is what a FaceSource reports for the current frame.
type FaceResult struct {
	Box       Rect
	Landmarks []Point // 68 points, or nil if unavailable
}

// Point is a pixel-space landmark coordinate.
type Point struct {
	X, Y int
}

// Rect is a pixel-coordinate rectangle, {x, y, w, h}.
type Rect struct {
	X, Y, W, H int
}

// ROIKind tags which facial patch a Rect represents.
type ROIKind int

const (
	Forehead ROIKind = iota
	LeftCheek
	RightCheek
)

func (k ROIKind) String() string {
	switch k {
	case Forehead:
		return "forehead"
	case LeftCheek:
		return "left_cheek"
	case RightCheek:
		return "right_cheek"
	default:
		return "unknown"
	}
}

// ROI pairs a rectangle with its kind and combining weight.
type ROI struct {
	Kind   ROIKind
	Rect   Rect
	Weight float64
}

// Quality is the sum type for signal-quality labels (spec §4.C).
type Quality int

const (
	Insufficient Quality = iota
	Poor
	Fair
	Good
	Excellent
)

func (q Quality) String() string {
	switch q {
	case Insufficient:
		return "insufficient"
	case Poor:
		return "poor"
	case Fair:
		return "fair"
	case Good:
		return "good"
	case Excellent:
		return "excellent"
	default:
		return "unknown"
	}
}

// DisplayState tags what the calibration/display stage is currently
// emitting (spec §9, "Output is naturally a tagged variant").
type DisplayState int

const (
	Calibrating DisplayState = iota
	Bpm
	Unavailable
)

func (s DisplayState) String() string {
	switch s {
	case Calibrating:
		return "calibrating"
	case Bpm:
		return "bpm"
	case Unavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// Display is the tagged-variant display value produced by the calibration
// and display-smoothing stage (component E).
type Display struct {
	State    DisplayState
	Progress int // valid when State == Calibrating, 0-100
	BPM      int // valid when State == Bpm
}

// HeartRateRecord is one raw spectral estimate with its arrival timestamp.
type HeartRateRecord struct {
	BPM int
	TS  time.Time
}

// Output is the structured result of one tick, handed to UI sinks (spec §6).
type Output struct {
	Display      Display
	Quality      Quality
	WaveformSamp float64
	FaceDetected bool // false in fallback-ROI mode (spec §9 note 2)
	Sampled      bool // false when ROI sampling produced "no sample" this tick
	Motion       bool // true when the motion detector flagged excess movement
	Seq          uint64
	TS           time.Time
}
