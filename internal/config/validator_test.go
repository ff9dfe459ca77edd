package config

import (
	"testing"

	"go.uber.org/multierr"
)

func TestValidateDefaultsPass(t *testing.T) {
	cfg := Default()
	if err := Validate(cfg); err != nil {
		t.Errorf("Validate(Default()) = %v, want nil", err)
	}
}

func TestValidateAggregatesErrors(t *testing.T) {
	cfg := &Config{
		SampleRate:    0,
		BufferSeconds: 0,
		MotionWindowS: 0,
		FFTSize:       100, // not a power of two
		BPMRange:      Range{Min: 0, Max: 0},
	}

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Validate returned nil for a fully invalid config")
	}
	// sample_rate, buffer_seconds, motion_window_s, fft_size, bpm_range and
	// roi_weights are all invalid; each must be reported.
	if n := len(multierr.Errors(err)); n != 6 {
		t.Errorf("Validate reported %d errors, want 6: %v", n, err)
	}
}

func TestValidateFillsWaveformDefault(t *testing.T) {
	cfg := Default()
	cfg.Waveform.RingSize = 0

	if err := Validate(cfg); err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
	if cfg.Waveform.RingSize != 150 {
		t.Errorf("Waveform.RingSize = %d, want default 150", cfg.Waveform.RingSize)
	}
}

func TestValidateRejectsBadFFTSize(t *testing.T) {
	cfg := Default()
	cfg.FFTSize = 100

	if err := Validate(cfg); err == nil {
		t.Error("Validate accepted a non-power-of-two fft_size")
	}
}

func TestValidateRejectsInvalidBPMRange(t *testing.T) {
	cfg := Default()
	cfg.BPMRange = Range{Min: 100, Max: 50}

	if err := Validate(cfg); err == nil {
		t.Error("Validate accepted a bpm_range with max < min")
	}
}
