// Package telemetry exposes Prometheus counters and gauges for the
// pipeline's runtime health: tick throughput, estimate yield, and the
// quality-label distribution. Not part of the spec's own output contract
// (spec §1 Non-goals exclude clinical accuracy claims, not operational
// metrics); this is the ambient observability layer every service in the
// pack carries.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles the collectors registered for one session instance.
type Metrics struct {
	TicksTotal      prometheus.Counter
	NoSampleTotal   prometheus.Counter
	NoEstimateTotal prometheus.Counter
	EstimatesTotal  prometheus.Counter
	QualityGauge    prometheus.Gauge
	BPMGauge        prometheus.Gauge
	MotionDetected  prometheus.Counter
	QualityByLabel  *prometheus.CounterVec
}

// New creates and registers the rPPG metric set on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		TicksTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rppg_ticks_total",
			Help: "Total number of tick loop iterations.",
		}),
		NoSampleTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rppg_no_sample_total",
			Help: "Ticks where ROI sampling produced no usable sample.",
		}),
		NoEstimateTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rppg_no_estimate_total",
			Help: "Ticks whose display carried no numeric BPM (calibrating or unavailable).",
		}),
		EstimatesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rppg_estimates_total",
			Help: "Ticks whose display carried a numeric BPM.",
		}),
		QualityGauge: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "rppg_quality_score",
			Help: "Most recent quality label mapped to [0,1] (excellent=1, good=0.75, fair=0.5, poor=0.25, insufficient=0).",
		}),
		BPMGauge: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "rppg_displayed_bpm",
			Help: "Most recently displayed BPM value (0 when not a numeric display).",
		}),
		MotionDetected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rppg_motion_detected_total",
			Help: "Ticks where the motion detector flagged excess movement.",
		}),
		QualityByLabel: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rppg_quality_label_total",
			Help: "Tick count by quality label.",
		}, []string{"label"}),
	}

	reg.MustRegister(
		m.TicksTotal,
		m.NoSampleTotal,
		m.NoEstimateTotal,
		m.EstimatesTotal,
		m.QualityGauge,
		m.BPMGauge,
		m.MotionDetected,
		m.QualityByLabel,
	)
	return m
}
