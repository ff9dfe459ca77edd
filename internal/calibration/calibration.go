// Package calibration implements component E: the calibration gate and the
// delayed stable-BPM computation that turns raw spectral estimates into
// the tagged display value shown to the user (spec §4.E).
package calibration

import (
	"math"
	"time"

	"github.com/carehealth/rppg-core/internal/types"
	"gonum.org/v1/gonum/stat"
)

// stabilityWindow is the +-2000ms window around the delayed target time
// used to gather records for the mean/stddev stability check.
const stabilityWindow = 2000 * time.Millisecond

// stabilityStdDevMax is the sigma ceiling past which a delayed estimate is
// reported as unavailable rather than an averaged BPM (spec §4.E step 3).
const stabilityStdDevMax = 15.0

// Calibrator owns the heart-rate history and session state for one
// detection session (spec §3, "Ownership").
type Calibrator struct {
	calibrationPeriod time.Duration
	displayDelay      time.Duration

	calibrationStart time.Time
	isCalibrating    bool
	history          []types.HeartRateRecord
}

// New builds a Calibrator with the given calibration period and display
// delay (spec §6 defaults: 15000ms / 5000ms).
func New(calibrationPeriod, displayDelay time.Duration) *Calibrator {
	return &Calibrator{
		calibrationPeriod: calibrationPeriod,
		displayDelay:      displayDelay,
	}
}

// StartSession resets calibration state for a newly started detection
// session (spec §4.E, "On session start").
func (c *Calibrator) StartSession(now time.Time) {
	c.calibrationStart = now
	c.isCalibrating = true
	c.history = nil
}

// AddEstimate appends a new raw BPM estimate to the history and prunes
// records older than now-(calibrationPeriod+displayDelay) (spec §4.E,
// "When a new estimate arrives").
func (c *Calibrator) AddEstimate(bpm int, now time.Time) {
	c.history = append(c.history, types.HeartRateRecord{BPM: bpm, TS: now})

	horizon := now.Add(-(c.calibrationPeriod + c.displayDelay))
	c.history = prune(c.history, horizon)
}

func prune(history []types.HeartRateRecord, horizon time.Time) []types.HeartRateRecord {
	kept := history[:0]
	for _, r := range history {
		if r.TS.After(horizon) {
			kept = append(kept, r)
		}
	}
	return kept
}

// Evaluate produces this tick's display value (spec §4.E rules). During
// calibration it reports progress; afterwards it reports the delayed
// stable BPM, or unavailable if the history can't support one.
func (c *Calibrator) Evaluate(now time.Time) types.Display {
	elapsed := now.Sub(c.calibrationStart)
	if elapsed < c.calibrationPeriod {
		progress := int(math.Floor(100 * float64(elapsed) / float64(c.calibrationPeriod)))
		return types.Display{State: types.Calibrating, Progress: progress}
	}

	c.isCalibrating = false
	return c.delayedStableBPM(now)
}

// delayedStableBPM implements spec §4.E's three-step procedure once
// calibration has completed.
func (c *Calibrator) delayedStableBPM(now time.Time) types.Display {
	target := now.Add(-c.displayDelay)

	nearest, found := nearestRecord(c.history, target)
	if !found || absDuration(nearest.TS.Sub(target)) > stabilityWindow {
		return types.Display{State: types.Unavailable}
	}

	var bpms []float64
	for _, r := range c.history {
		if absDuration(r.TS.Sub(target)) < stabilityWindow {
			bpms = append(bpms, float64(r.BPM))
		}
	}
	if len(bpms) == 0 {
		return types.Display{State: types.Unavailable}
	}

	mean := stat.Mean(bpms, nil)
	var std float64
	if len(bpms) > 1 {
		std = stat.StdDev(bpms, nil)
	}
	if std > stabilityStdDevMax {
		return types.Display{State: types.Unavailable}
	}
	return types.Display{State: types.Bpm, BPM: int(math.Round(mean))}
}

// nearestRecord finds the history record whose timestamp is closest to
// target (spec §4.E step 2).
func nearestRecord(history []types.HeartRateRecord, target time.Time) (types.HeartRateRecord, bool) {
	var best types.HeartRateRecord
	var bestDist time.Duration
	found := false

	for _, r := range history {
		dist := absDuration(r.TS.Sub(target))
		if !found || dist < bestDist {
			best = r
			bestDist = dist
			found = true
		}
	}
	return best, found
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}

// IsCalibrating reports whether the calibration gate is currently closed.
func (c *Calibrator) IsCalibrating() bool { return c.isCalibrating }
