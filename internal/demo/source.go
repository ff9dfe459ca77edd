// Package demo provides a synthetic PixelSource/FaceSource pair so
// cmd/rppgd can run end-to-end without a real camera or face detector —
// both are explicitly external collaborators with stated contracts only
// (spec §1). Grounded on the teacher's stream.MockStream synthetic-frame
// generator; this is the rPPG-core equivalent for the capture/detection
// seam rather than the video-capture seam.
package demo

import (
	"math"
	"sync"
	"time"

	"github.com/carehealth/rppg-core/internal/types"
)

// PulseSource emits a synthetic frame whose green channel carries a clean
// sinusoidal pulse at bpm, so the pipeline has something plausible to lock
// onto end-to-end.
type PulseSource struct {
	width, height int
	bpm           float64
	start         time.Time

	mu  sync.Mutex
	now time.Time
}

// NewPulseSource builds a source of the given frame size, pulsing at bpm.
func NewPulseSource(width, height int, bpm float64) *PulseSource {
	return &PulseSource{width: width, height: height, bpm: bpm, start: time.Now()}
}

func (p *PulseSource) Width() int  { return p.width }
func (p *PulseSource) Height() int { return p.height }

// Tick advances the source's internal clock to now; call once per tick
// before Read.
func (p *PulseSource) Tick(now time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.now = now
}

// Read fills a rectangle with an RGBA buffer whose green channel encodes
// the current pulse phase, uniformly across every pixel.
func (p *PulseSource) Read(rect types.Rect) []byte {
	p.mu.Lock()
	t := p.now.Sub(p.start).Seconds()
	p.mu.Unlock()

	freq := p.bpm / 60.0
	phase := 0.5 + 0.5*math.Sin(2*math.Pi*freq*t)
	g := byte(80 + phase*120)

	n := rect.W * rect.H
	buf := make([]byte, n*4)
	for i := 0; i < n; i++ {
		buf[i*4] = 90
		buf[i*4+1] = g
		buf[i*4+2] = 90
		buf[i*4+3] = 255
	}
	return buf
}

// CenteredFace reports a synthetic face box covering the central 60% of
// the frame, with no landmarks — exercising roi.Resolve's bounding-box
// fallback branch rather than the landmark branch.
type CenteredFace struct {
	width, height int
}

func NewCenteredFace(width, height int) *CenteredFace {
	return &CenteredFace{width: width, height: height}
}

func (f *CenteredFace) Detect() (*types.FaceResult, bool) {
	marginX, marginY := f.width/5, f.height/5
	box := types.Rect{
		X: marginX,
		Y: marginY,
		W: f.width - 2*marginX,
		H: f.height - 2*marginY,
	}
	return &types.FaceResult{Box: box}, true
}
