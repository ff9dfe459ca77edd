// Package config loads and validates the stable configuration surface
// described by spec §6, the same way the teacher's own config package
// loads a single YAML file and validates it before anything else starts.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the complete rPPG core configuration (spec §6).
type Config struct {
	SampleRate        int            `yaml:"sample_rate"`
	BufferSeconds     int            `yaml:"buffer_seconds"`
	MotionWindowS     int            `yaml:"motion_window_s"`
	FFTSize           int            `yaml:"fft_size"`
	CalibrationPeriod int            `yaml:"calibration_period_ms"`
	DisplayDelay      int            `yaml:"display_delay_ms"`
	AdaptiveThreshold float64        `yaml:"adaptive_threshold"`
	ROIWeights        ROIWeights     `yaml:"roi_weights"`
	BPMRange          Range          `yaml:"bpm_range"`
	Waveform          WaveformConfig `yaml:"waveform"`
	MQTT              MQTTConfig     `yaml:"mqtt"`
	InstanceID        string         `yaml:"instance_id"`
	ShutdownTimeoutS  int            `yaml:"shutdown_timeout_s"`
}

// ROIWeights are the per-region combining weights (spec §3), renormalised
// at sample time over whichever ROIs actually survive a given frame.
type ROIWeights struct {
	Forehead   float64 `yaml:"forehead"`
	LeftCheek  float64 `yaml:"left_cheek"`
	RightCheek float64 `yaml:"right_cheek"`
}

// Range is an inclusive [Min, Max] bound, used for the BPM acceptance range.
type Range struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

// WaveformConfig controls the UI waveform sink's own bounded ring (spec §6).
type WaveformConfig struct {
	RingSize int `yaml:"ring_size"`
}

// MQTTConfig contains broker settings for the control plane and the output
// sink (internal/control, internal/emit).
type MQTTConfig struct {
	Broker   string     `yaml:"broker"`
	ClientID string     `yaml:"client_id"`
	Topics   MQTTTopics `yaml:"topics"`
}

// MQTTTopics names the control/output topics.
type MQTTTopics struct {
	Control string `yaml:"control"`
	Output  string `yaml:"output"`
}

// Default returns the configuration implied by spec §6's defaults table.
func Default() *Config {
	return &Config{
		SampleRate:        30,
		BufferSeconds:     15,
		MotionWindowS:     15,
		FFTSize:           512,
		CalibrationPeriod: 15000,
		DisplayDelay:      5000,
		AdaptiveThreshold: 0.3,
		ROIWeights: ROIWeights{
			Forehead:   0.6,
			LeftCheek:  0.2,
			RightCheek: 0.2,
		},
		BPMRange:         Range{Min: 40, Max: 220},
		Waveform:         WaveformConfig{RingSize: 150},
		ShutdownTimeoutS: 5,
		MQTT: MQTTConfig{
			Topics: MQTTTopics{
				Control: "rppg/control",
				Output:  "rppg/output",
			},
		},
	}
}

// Load reads a YAML file, overlays it onto the defaults, and validates the
// result. A configuration-fatal error here means the session never starts
// (spec §7).
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: failed to read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse %s: %w", path, err)
	}
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config: invalid configuration: %w", err)
	}
	return cfg, nil
}
