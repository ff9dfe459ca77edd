package signalchain

import "github.com/carehealth/rppg-core/internal/fft"

// Chain owns the main and motion ring buffers and exposes the processed
// signal and quality label on demand (spec §4.C).
type Chain struct {
	main       *Ring
	motion     *Ring
	sampleRate int
	kernel     *fft.Kernel

	params Params
}

// New creates a Chain with capacity derived from sampleRate,
// bufferSeconds and motionWindowSeconds (spec §3).
func New(sampleRate, bufferSeconds, motionWindowSeconds int, kernel *fft.Kernel) *Chain {
	return &Chain{
		main:       NewRing(sampleRate * bufferSeconds),
		motion:     NewRing(sampleRate * motionWindowSeconds),
		sampleRate: sampleRate,
		kernel:     kernel,
		params:     nominalParams,
	}
}

// AddSample pushes one scalar onto both ring buffers (spec §4.C "Add
// sample"). Callers skip this entirely on a "no sample" tick, leaving
// buffer length unchanged (spec §4.B).
func (c *Chain) AddSample(v float64) {
	c.main.Push(v)
	c.motion.Push(v)
}

// Len returns the current main-buffer length.
func (c *Chain) Len() int { return c.main.Len() }

// SampleRate returns the configured sample rate in Hz.
func (c *Chain) SampleRate() int { return c.sampleRate }

// Result bundles everything a tick needs out of the signal chain.
type Result struct {
	Processed []float64
	Raw       []float64 // last N samples, unfiltered, as fed to the quality peak metric
	Score     float64
	Label     string
	Motion    bool
	OK        bool
}

// Evaluate re-derives the adaptive parameters from the current motion
// state, then runs the processing pipeline and quality scoring against a
// fresh snapshot (spec §4.C: "Parameter state ... re-evaluated each time
// processing is requested").
func (c *Chain) Evaluate() Result {
	motionBuf := c.motion.Snapshot()
	motion, _, _ := motionDetected(motionBuf, c.sampleRate)
	c.params = paramsFor(motion)

	raw := c.main.Snapshot()
	processed, ok := Process(raw, c.params)
	if !ok {
		return Result{Motion: motion, OK: false}
	}

	lastN := c.main.Last(c.kernel.N())
	score, label := Quality(processed, lastN, motion, motionBuf, c.sampleRate, c.kernel)

	return Result{
		Processed: processed,
		Raw:       lastN,
		Score:     score,
		Label:     label.String(),
		Motion:    motion,
		OK:        true,
	}
}

// Params returns the adaptive parameters currently in effect.
func (c *Chain) Params() Params { return c.params }

// Reset clears both ring buffers and returns the adaptive parameters to
// their nominal state. A restarted session starts clean rather than
// evaluating stale pre-restart samples (spec §5).
func (c *Chain) Reset() {
	c.main.Reset()
	c.motion.Reset()
	c.params = nominalParams
}
