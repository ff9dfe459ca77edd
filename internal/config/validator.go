package config

import (
	"fmt"

	"go.uber.org/multierr"
)

// Validate checks the full configuration and reports every problem found,
// not just the first — the same aggregation style the teacher would use for
// a form with many independently-wrong fields.
func Validate(cfg *Config) error {
	var errs error

	if cfg.SampleRate <= 0 {
		errs = multierr.Append(errs, fmt.Errorf("sample_rate must be > 0"))
	}
	if cfg.BufferSeconds <= 0 {
		errs = multierr.Append(errs, fmt.Errorf("buffer_seconds must be > 0"))
	}
	if cfg.MotionWindowS <= 0 {
		errs = multierr.Append(errs, fmt.Errorf("motion_window_s must be > 0"))
	}
	if cfg.FFTSize <= 0 || cfg.FFTSize&(cfg.FFTSize-1) != 0 {
		errs = multierr.Append(errs, fmt.Errorf("fft_size must be a power of two, got %d", cfg.FFTSize))
	}
	if cfg.CalibrationPeriod < 0 {
		errs = multierr.Append(errs, fmt.Errorf("calibration_period_ms must be >= 0"))
	}
	if cfg.DisplayDelay < 0 {
		errs = multierr.Append(errs, fmt.Errorf("display_delay_ms must be >= 0"))
	}
	if cfg.BPMRange.Min <= 0 || cfg.BPMRange.Max <= cfg.BPMRange.Min {
		errs = multierr.Append(errs, fmt.Errorf("bpm_range must satisfy 0 < min < max"))
	}

	sum := cfg.ROIWeights.Forehead + cfg.ROIWeights.LeftCheek + cfg.ROIWeights.RightCheek
	if sum <= 0 {
		errs = multierr.Append(errs, fmt.Errorf("roi_weights must sum to a positive value"))
	}

	if cfg.Waveform.RingSize <= 0 {
		cfg.Waveform.RingSize = 150
	}
	if cfg.ShutdownTimeoutS <= 0 {
		cfg.ShutdownTimeoutS = 5
	}
	if cfg.MQTT.Topics.Control == "" {
		cfg.MQTT.Topics.Control = "rppg/control"
	}
	if cfg.MQTT.Topics.Output == "" {
		cfg.MQTT.Topics.Output = "rppg/output"
	}

	return errs
}
