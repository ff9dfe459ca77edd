package calibration

import (
	"testing"
	"time"

	"github.com/carehealth/rppg-core/internal/types"
)

func newCalibrator() (*Calibrator, time.Time) {
	start := time.Unix(0, 0)
	c := New(15000*time.Millisecond, 5000*time.Millisecond)
	c.StartSession(start)
	return c, start
}

// TestCalibrationGate checks spec §8 property 7: before calibrationStart +
// 15000ms, the display is never a numeric BPM regardless of history.
func TestCalibrationGate(t *testing.T) {
	c, start := newCalibrator()
	c.AddEstimate(72, start.Add(1*time.Second))

	d := c.Evaluate(start.Add(10 * time.Second))
	if d.State != types.Calibrating {
		t.Errorf("state = %v, want Calibrating", d.State)
	}
}

// TestCalibrationProgress checks the progress computation of spec §4.E.
func TestCalibrationProgress(t *testing.T) {
	c, start := newCalibrator()

	d := c.Evaluate(start.Add(3000 * time.Millisecond))
	if d.State != types.Calibrating {
		t.Fatalf("state = %v, want Calibrating", d.State)
	}
	if d.Progress != 20 {
		t.Errorf("progress = %d, want 20", d.Progress)
	}
}

// TestDelayedStableBPM checks spec §8 property 8: consistent nearby
// history averages to the mean.
func TestDelayedStableBPM(t *testing.T) {
	c, start := newCalibrator()

	afterCalibration := start.Add(15 * time.Second)
	for _, off := range []int{-1, 0, 1} {
		ts := afterCalibration.Add(-5*time.Second + time.Duration(off)*time.Second)
		c.AddEstimate(70+off, ts)
	}

	d := c.Evaluate(afterCalibration)
	if d.State != types.Bpm {
		t.Fatalf("state = %v, want Bpm", d.State)
	}
	if d.BPM != 70 {
		t.Errorf("bpm = %d, want 70", d.BPM)
	}
}

// TestDelayedStableBPMUnstable checks that a history spread over more than
// 15 BPM of stddev yields unavailable rather than an averaged BPM.
func TestDelayedStableBPMUnstable(t *testing.T) {
	c, start := newCalibrator()

	afterCalibration := start.Add(15 * time.Second)
	target := afterCalibration.Add(-5 * time.Second)
	c.AddEstimate(50, target.Add(-500*time.Millisecond))
	c.AddEstimate(120, target.Add(500*time.Millisecond))

	d := c.Evaluate(afterCalibration)
	if d.State != types.Unavailable {
		t.Errorf("state = %v, want Unavailable", d.State)
	}
}

// TestDelayedStableBPMNoNearbyRecord checks that a history with nothing
// within 2000ms of the target time yields unavailable.
func TestDelayedStableBPMNoNearbyRecord(t *testing.T) {
	c, start := newCalibrator()

	afterCalibration := start.Add(15 * time.Second)
	c.AddEstimate(72, start.Add(1*time.Second))

	d := c.Evaluate(afterCalibration)
	if d.State != types.Unavailable {
		t.Errorf("state = %v, want Unavailable", d.State)
	}
}

// TestAddEstimatePrunesOldRecords checks that records older than
// calibrationPeriod+displayDelay are dropped.
func TestAddEstimatePrunesOldRecords(t *testing.T) {
	c, start := newCalibrator()

	c.AddEstimate(60, start)
	c.AddEstimate(90, start.Add(25*time.Second))

	for _, r := range c.history {
		if r.BPM == 60 {
			t.Error("stale record with bpm=60 survived pruning")
		}
	}
}
