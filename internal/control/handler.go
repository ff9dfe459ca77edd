// Package control implements the MQTT command plane for the rPPG core:
// start/stop a detection session and tune the adaptive threshold at
// runtime, without a restart. Grounded on the teacher's
// internal/control/handler.go command-dispatch pattern.
package control

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/carehealth/rppg-core/internal/config"
)

// Command is one control-plane message (spec §6's control surface).
type Command struct {
	Command string                 `json:"command"`
	Params  map[string]interface{} `json:"params,omitempty"`
}

// Response is the command's acknowledgement, published back on the
// output topic's "/control_ack" subtopic.
type Response struct {
	CommandAck string                 `json:"command_ack"`
	Status     string                 `json:"status"`
	Data       map[string]interface{} `json:"data,omitempty"`
	Error      string                 `json:"error,omitempty"`
	Timestamp  int64                  `json:"timestamp_ms"`
}

// Callbacks wires control commands to the session orchestrator.
type Callbacks struct {
	OnGetStatus            func() map[string]interface{}
	OnStartSession         func() error
	OnStopSession          func() error
	OnSetAdaptiveThreshold func(float64) error
}

// Handler subscribes to the control topic and dispatches commands.
type Handler struct {
	cfg       *config.Config
	client    mqtt.Client
	callbacks Callbacks
	commands  chan Command
}

// NewHandler creates a control plane handler bound to client, sharing the
// connection already established by the output sink.
func NewHandler(cfg *config.Config, client mqtt.Client, callbacks Callbacks) *Handler {
	return &Handler{
		cfg:       cfg,
		client:    client,
		callbacks: callbacks,
		commands:  make(chan Command, 10),
	}
}

// Start subscribes to the control topic and begins processing commands.
func (h *Handler) Start(ctx context.Context) error {
	topic := h.cfg.MQTT.Topics.Control

	token := h.client.Subscribe(topic, 1, h.messageHandler)
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("control: subscription timeout")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("control: subscription failed: %w", err)
	}

	slog.Info("control plane handler started", "topic", topic)
	go h.processCommands(ctx)
	return nil
}

// Stop unsubscribes and drains the command queue.
func (h *Handler) Stop() error {
	if h.client != nil && h.client.IsConnected() {
		token := h.client.Unsubscribe(h.cfg.MQTT.Topics.Control)
		token.Wait()
	}
	close(h.commands)
	return nil
}

func (h *Handler) messageHandler(client mqtt.Client, msg mqtt.Message) {
	var cmd Command
	if err := json.Unmarshal(msg.Payload(), &cmd); err != nil {
		slog.Error("control: failed to parse command", "error", err)
		return
	}

	select {
	case h.commands <- cmd:
	default:
		slog.Warn("control: command queue full, dropping command", "command", cmd.Command)
	}
}

func (h *Handler) processCommands(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case cmd, ok := <-h.commands:
			if !ok {
				return
			}
			h.handle(cmd)
		}
	}
}

func (h *Handler) handle(cmd Command) {
	resp := Response{CommandAck: cmd.Command}

	switch cmd.Command {
	case "get_status":
		if h.callbacks.OnGetStatus != nil {
			resp.Status = "success"
			resp.Data = h.callbacks.OnGetStatus()
		} else {
			resp.Status, resp.Error = "error", "get_status not implemented"
		}

	case "start_session":
		if h.callbacks.OnStartSession != nil {
			if err := h.callbacks.OnStartSession(); err != nil {
				resp.Status, resp.Error = "error", err.Error()
			} else {
				resp.Status = "success"
			}
		} else {
			resp.Status, resp.Error = "error", "start_session not implemented"
		}

	case "stop_session":
		if h.callbacks.OnStopSession != nil {
			if err := h.callbacks.OnStopSession(); err != nil {
				resp.Status, resp.Error = "error", err.Error()
			} else {
				resp.Status = "success"
			}
		} else {
			resp.Status, resp.Error = "error", "stop_session not implemented"
		}

	case "set_adaptive_threshold":
		if h.callbacks.OnSetAdaptiveThreshold != nil {
			threshold, ok := cmd.Params["value"].(float64)
			if !ok {
				resp.Status, resp.Error = "error", "missing or invalid 'value' parameter (expected float)"
			} else if err := h.callbacks.OnSetAdaptiveThreshold(threshold); err != nil {
				resp.Status, resp.Error = "error", err.Error()
			} else {
				resp.Status = "success"
				resp.Data = map[string]interface{}{"adaptive_threshold": threshold}
			}
		} else {
			resp.Status, resp.Error = "error", "set_adaptive_threshold not implemented"
		}

	default:
		resp.Status, resp.Error = "error", fmt.Sprintf("unknown command: %s", cmd.Command)
	}

	h.sendResponse(resp)
}

func (h *Handler) sendResponse(resp Response) {
	resp.Timestamp = time.Now().UnixMilli()

	payload, err := json.Marshal(resp)
	if err != nil {
		slog.Error("control: failed to marshal response", "error", err)
		return
	}

	token := h.client.Publish(h.cfg.MQTT.Topics.Output+"/control_ack", 1, false, payload)
	if !token.WaitTimeout(2 * time.Second) {
		slog.Error("control: response publish timeout")
		return
	}
	if err := token.Error(); err != nil {
		slog.Error("control: failed to publish response", "error", err)
	}
}
