// Package session wires components A-E into the single advance() call that
// the tick loop drives: a frame and an optional face observation in, an
// Output out. It owns the signal chain's buffers and the session/display
// state, matching spec §3's ownership note and spec §9's design note that
// "a single advance(frame, faceOpt) -> Output function is natural."
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/carehealth/rppg-core/internal/calibration"
	"github.com/carehealth/rppg-core/internal/config"
	"github.com/carehealth/rppg-core/internal/fft"
	"github.com/carehealth/rppg-core/internal/roi"
	"github.com/carehealth/rppg-core/internal/signalchain"
	"github.com/carehealth/rppg-core/internal/spectral"
	"github.com/carehealth/rppg-core/internal/types"
)

// state holds the isDetecting and frameCount half of the session state
// named in spec §3 (calibrationStart and isCalibrating live in
// calibration.Calibrator), plus the operational
// counters spec §3's supplemented per-stage stats snapshot calls for:
// skipped ticks (no sample / not detecting / chain not ready), ticks
// where the motion detector fired, and the last quality label reached.
type state struct {
	isDetecting  bool
	frameCount   uint64
	skippedTicks uint64
	motionTicks  uint64
	lastQuality  string
}

// Session owns one detection session's buffers and state (spec §3,
// "Ownership: all buffers live inside the signal chain component").
type Session struct {
	mu sync.Mutex

	id  string
	cfg *config.Config

	chain  *signalchain.Chain
	calib  *calibration.Calibrator
	kernel *fft.Kernel

	state state

	weights   [3]float64
	threshold float64
	waveform  *signalchain.Ring

	seq uint64
}

// New builds a Session from cfg. The FFT kernel is constructed once and
// reused by both the signal chain's peak-quality metric and the spectral
// estimator (spec §4.A's "reused tick after tick without allocating").
func New(cfg *config.Config) (*Session, error) {
	kernel, err := fft.New(cfg.FFTSize)
	if err != nil {
		return nil, err
	}

	weights := [3]float64{cfg.ROIWeights.Forehead, cfg.ROIWeights.LeftCheek, cfg.ROIWeights.RightCheek}

	return &Session{
		id:        uuid.NewString(),
		cfg:       cfg,
		chain:     signalchain.New(cfg.SampleRate, cfg.BufferSeconds, cfg.MotionWindowS, kernel),
		calib:     calibration.New(time.Duration(cfg.CalibrationPeriod)*time.Millisecond, time.Duration(cfg.DisplayDelay)*time.Millisecond),
		kernel:    kernel,
		weights:   weights,
		threshold: cfg.AdaptiveThreshold,
		waveform:  signalchain.NewRing(cfg.Waveform.RingSize),
	}, nil
}

// ID returns the session's trace identifier (spec §2 domain stack: "session
// ID and per-tick trace ID, mirroring teacher's Frame.TraceID").
func (s *Session) ID() string { return s.id }

// Start begins a new detection session: resets calibration state, the
// frame counter, and the signal chain's buffers (spec §4.E "On session
// start"; spec §5 "a restart may choose to clear [buffers] — the default
// does"). A session that was stopped and restarted starts from empty
// buffers rather than evaluating stale pre-restart samples.
func (s *Session) Start(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = state{isDetecting: true}
	s.chain.Reset()
	s.calib.StartSession(now)
}

// Stop ends the current detection session.
func (s *Session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.isDetecting = false
}

// IsDetecting reports whether a session is currently active.
func (s *Session) IsDetecting() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.isDetecting
}

// SetAdaptiveThreshold updates the significance-gate margin at runtime
// (spec §3 supplemented feature: "retune adaptiveThreshold ... without
// restarting").
func (s *Session) SetAdaptiveThreshold(v float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.threshold = v
}

// Advance runs one tick: sample the frame's ROIs, push the sample (or skip
// on "no sample"), evaluate the signal chain, run the spectral estimator,
// feed the calibration stage, and produce this tick's Output (spec §5's
// per-tick B->C->(D,E) flow).
func (s *Session) Advance(src types.PixelSource, face *types.FaceResult, faceOK bool, now time.Time) types.Output {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.frameCount++
	s.seq++

	resolved := roi.Resolve(face, faceOK, src.Width(), src.Height(), s.weights)

	out := types.Output{
		FaceDetected: resolved.FaceDetected,
		Seq:          s.seq,
		TS:           now,
	}

	sample, ok := roi.Sample(src, resolved.ROIs)
	if !ok {
		s.state.skippedTicks++
		out.Display = types.Display{State: types.Unavailable}
		out.Quality = types.Insufficient
		return out
	}
	out.Sampled = true

	s.chain.AddSample(sample)
	s.waveform.Push(sample)
	out.WaveformSamp = sample

	if !s.state.isDetecting {
		s.state.skippedTicks++
		out.Display = types.Display{State: types.Unavailable}
		out.Quality = types.Insufficient
		return out
	}

	result := s.chain.Evaluate()
	out.Motion = result.Motion
	if result.Motion {
		s.state.motionTicks++
	}
	if !result.OK {
		s.state.skippedTicks++
		out.Display = types.Display{State: types.Unavailable}
		out.Quality = types.Insufficient
		return out
	}
	out.Quality = qualityFromLabel(result.Label)
	s.state.lastQuality = out.Quality.String()

	bpmRange := spectral.Range{Min: s.cfg.BPMRange.Min, Max: s.cfg.BPMRange.Max}
	if bpm, ok := spectral.Estimate(result.Processed, s.chain.SampleRate(), s.kernel, s.threshold, bpmRange); ok {
		s.calib.AddEstimate(bpm, now)
	}

	out.Display = s.calib.Evaluate(now)
	return out
}

func qualityFromLabel(label string) types.Quality {
	switch label {
	case types.Excellent.String():
		return types.Excellent
	case types.Good.String():
		return types.Good
	case types.Fair.String():
		return types.Fair
	case types.Poor.String():
		return types.Poor
	default:
		return types.Insufficient
	}
}

// Stats mirrors the teacher's per-worker stats snapshot (spec §3
// supplemented feature): operational counters an operator would want on a
// status or health endpoint.
type Stats struct {
	FrameCount   uint64
	IsDetecting  bool
	BufferLen    int
	SkippedTicks uint64
	MotionTicks  uint64
	LastQuality  string
}

func (s *Session) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Stats{
		FrameCount:   s.state.frameCount,
		IsDetecting:  s.state.isDetecting,
		BufferLen:    s.chain.Len(),
		SkippedTicks: s.state.skippedTicks,
		MotionTicks:  s.state.motionTicks,
		LastQuality:  s.state.lastQuality,
	}
}

// HealthStatus is the session-level half of the health endpoint's payload
// (spec §3 supplemented feature): is the session running, the current
// quality label, and the drop/skip counters. mqttConnected is threaded in
// by the caller since the session doesn't own the output sink.
type HealthStatus struct {
	IsDetecting   bool
	MQTTConnected bool
	QualityLabel  string
	SkippedTicks  uint64
	MotionTicks   uint64
}

func (s *Session) Health(mqttConnected bool) HealthStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	label := s.state.lastQuality
	if label == "" {
		label = types.Insufficient.String()
	}
	return HealthStatus{
		IsDetecting:   s.state.isDetecting,
		MQTTConnected: mqttConnected,
		QualityLabel:  label,
		SkippedTicks:  s.state.skippedTicks,
		MotionTicks:   s.state.motionTicks,
	}
}
