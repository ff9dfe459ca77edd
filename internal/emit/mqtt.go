// Package emit publishes per-tick Output values to MQTT, the UI-facing
// sink named in spec §6. Grounded on the teacher's internal/emitter/mqtt.go
// connection and publish-accounting pattern.
package emit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/carehealth/rppg-core/internal/config"
	"github.com/carehealth/rppg-core/internal/types"
)

// MQTTSink publishes Output values to the configured output topic.
type MQTTSink struct {
	cfg    *config.Config
	Client mqtt.Client // exported for the control plane to share the connection

	mu        sync.RWMutex
	published uint64
	errors    uint64
	connected bool
}

// NewMQTTSink creates a sink bound to cfg.MQTT.
func NewMQTTSink(cfg *config.Config) *MQTTSink {
	return &MQTTSink{cfg: cfg}
}

// Connect establishes the MQTT connection, auto-reconnecting on loss.
func (s *MQTTSink) Connect(ctx context.Context) error {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s", s.cfg.MQTT.Broker))
	opts.SetClientID(s.cfg.MQTT.ClientID)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(2 * time.Second)
	opts.SetMaxReconnectInterval(30 * time.Second)

	opts.OnConnect = func(c mqtt.Client) {
		s.mu.Lock()
		s.connected = true
		s.mu.Unlock()
		slog.Info("mqtt connection established", "broker", s.cfg.MQTT.Broker)
	}
	opts.OnConnectionLost = func(c mqtt.Client, err error) {
		s.mu.Lock()
		s.connected = false
		s.mu.Unlock()
		slog.Warn("mqtt connection lost, will auto-reconnect", "error", err)
	}

	s.Client = mqtt.NewClient(opts)

	token := s.Client.Connect()
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("emit: mqtt connection timeout")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("emit: mqtt connection failed: %w", err)
	}

	s.mu.Lock()
	s.connected = true
	s.mu.Unlock()
	return nil
}

// outputWire is the JSON shape published to the output topic (spec §6,
// "UI sinks (outbound)").
type outputWire struct {
	BPMDisplay   string  `json:"bpm_display"`
	QualityLabel string  `json:"quality_label"`
	Waveform     float64 `json:"waveform_sample"`
	FaceDetected bool    `json:"face_detected"`
	Seq          uint64  `json:"seq"`
	TS           int64   `json:"ts_ms"`
}

// Publish serializes one tick's Output and publishes it to the output
// topic. Never blocks the tick loop past a 2s publish timeout.
func (s *MQTTSink) Publish(out types.Output) error {
	if !s.isConnected() {
		s.mu.Lock()
		s.errors++
		s.mu.Unlock()
		return fmt.Errorf("emit: mqtt not connected")
	}

	wire := outputWire{
		BPMDisplay:   displayString(out.Display),
		QualityLabel: out.Quality.String(),
		Waveform:     out.WaveformSamp,
		FaceDetected: out.FaceDetected,
		Seq:          out.Seq,
		TS:           out.TS.UnixMilli(),
	}

	payload, err := json.Marshal(wire)
	if err != nil {
		return fmt.Errorf("emit: marshal output: %w", err)
	}

	token := s.Client.Publish(s.cfg.MQTT.Topics.Output, 0, false, payload)
	if !token.WaitTimeout(2 * time.Second) {
		s.mu.Lock()
		s.errors++
		s.mu.Unlock()
		return fmt.Errorf("emit: publish timeout")
	}
	if err := token.Error(); err != nil {
		s.mu.Lock()
		s.errors++
		s.mu.Unlock()
		return fmt.Errorf("emit: publish failed: %w", err)
	}

	s.mu.Lock()
	s.published++
	s.mu.Unlock()
	return nil
}

// displayString renders the tagged Display variant into the string shape
// named in spec §6: "—" | "calibrating X%" | integer.
func displayString(d types.Display) string {
	switch d.State {
	case types.Calibrating:
		return fmt.Sprintf("calibrating %d%%", d.Progress)
	case types.Bpm:
		return fmt.Sprintf("%d", d.BPM)
	default:
		return "—"
	}
}

// Disconnect closes the MQTT connection with a grace period.
func (s *MQTTSink) Disconnect() error {
	if s.Client != nil && s.Client.IsConnected() {
		s.Client.Disconnect(250)
	}
	s.mu.Lock()
	s.connected = false
	s.mu.Unlock()
	return nil
}

// Stats reports the sink's publish accounting.
type Stats struct {
	Connected bool
	Published uint64
	Errors    uint64
}

func (s *MQTTSink) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Stats{Connected: s.connected, Published: s.published, Errors: s.errors}
}

func (s *MQTTSink) isConnected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.connected
}
