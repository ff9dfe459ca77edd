// Package api exposes the debug/control HTTP surface named in spec §3's
// supplemented features: a health endpoint and session status, alongside
// the Prometheus scrape endpoint. Grounded on
// kdimtriCP-vshazam/internal/api/router.go's chi router shape.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/carehealth/rppg-core/internal/emit"
	"github.com/carehealth/rppg-core/internal/session"
)

// mqttStatuser is the one method the health endpoint needs off
// *emit.MQTTSink, kept as an interface so an untyped nil can be passed
// when there is no sink at all. A nil *emit.MQTTSink is not such a value:
// it passes the nil check and its Stats call panics.
type mqttStatuser interface {
	Stats() emit.Stats
}

// HealthStatus mirrors the teacher's core.HealthStatus (spec §3): is the
// session running, is MQTT connected, how long since the router's started
// time, the current quality label, and the drop/skip counters
// (SPEC_FULL.md §3).
type HealthStatus struct {
	Status        string  `json:"status"`
	UptimeS       float64 `json:"uptime_s"`
	IsDetecting   bool    `json:"is_detecting"`
	FrameCount    uint64  `json:"frame_count"`
	MQTTConnected bool    `json:"mqtt_connected"`
	QualityLabel  string  `json:"quality_label"`
	SkippedTicks  uint64  `json:"skipped_ticks"`
	MotionTicks   uint64  `json:"motion_ticks"`
}

// NewRouter builds the chi router serving /health, /metrics and /session/*.
// sink may be an untyped nil; the health endpoint then reports
// mqtt_connected: false, as it also does for a sink that never connected
// (cmd/rppgd passes such a sink when no MQTT broker is configured).
func NewRouter(sess *session.Session, sink mqttStatuser, started time.Time) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", healthHandler(sess, sink, started))
	r.Get("/session/status", statusHandler(sess))
	r.Handle("/metrics", promhttp.Handler())

	return r
}

func healthHandler(sess *session.Session, sink mqttStatuser, started time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var mqttConnected bool
		if sink != nil {
			mqttConnected = sink.Stats().Connected
		}

		stats := sess.Stats()
		health := sess.Health(mqttConnected)
		status := HealthStatus{
			Status:        "ok",
			UptimeS:       time.Since(started).Seconds(),
			IsDetecting:   stats.IsDetecting,
			FrameCount:    stats.FrameCount,
			MQTTConnected: health.MQTTConnected,
			QualityLabel:  health.QualityLabel,
			SkippedTicks:  health.SkippedTicks,
			MotionTicks:   health.MotionTicks,
		}
		writeJSON(w, status)
	}
}

func statusHandler(sess *session.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, sess.Stats())
	}
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
