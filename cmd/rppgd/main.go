package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"github.com/carehealth/rppg-core/internal/api"
	"github.com/carehealth/rppg-core/internal/config"
	"github.com/carehealth/rppg-core/internal/control"
	"github.com/carehealth/rppg-core/internal/demo"
	"github.com/carehealth/rppg-core/internal/emit"
	"github.com/carehealth/rppg-core/internal/session"
	"github.com/carehealth/rppg-core/internal/telemetry"
	"github.com/carehealth/rppg-core/internal/types"
)

const (
	defaultConfigPath = "config/rppg.yaml"
	debugHTTPPort     = "8080"
)

func main() {
	_ = godotenv.Load()

	configPath := flag.String("config", defaultConfigPath, "Path to configuration file")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	logLevel := slog.LevelInfo
	if *debug {
		logLevel = slog.LevelDebug
	}
	var handler slog.Handler
	if *debug {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	} else {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	}
	slog.SetDefault(slog.New(handler))

	slog.Info("starting rppg core", "config", *configPath, "debug", *debug)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	sess, err := session.New(cfg)
	if err != nil {
		slog.Error("failed to create session", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	metrics := telemetry.New(prometheus.DefaultRegisterer)

	sink := emit.NewMQTTSink(cfg)
	var controlHandler *control.Handler
	if cfg.MQTT.Broker != "" {
		if err := sink.Connect(ctx); err != nil {
			slog.Warn("mqtt connect failed, running without output sink", "error", err)
		} else {
			controlHandler = control.NewHandler(cfg, sink.Client, control.Callbacks{
				OnGetStatus: func() map[string]interface{} {
					stats := sess.Stats()
					return map[string]interface{}{
						"frame_count":  stats.FrameCount,
						"is_detecting": stats.IsDetecting,
						"buffer_len":   stats.BufferLen,
					}
				},
				OnStartSession: func() error {
					sess.Start(time.Now())
					return nil
				},
				OnStopSession: func() error {
					sess.Stop()
					return nil
				},
				OnSetAdaptiveThreshold: func(v float64) error {
					sess.SetAdaptiveThreshold(v)
					return nil
				},
			})
			if err := controlHandler.Start(ctx); err != nil {
				slog.Warn("control plane start failed", "error", err)
				controlHandler = nil
			}
		}
	}

	started := time.Now()
	httpServer := &http.Server{Addr: ":" + debugHTTPPort, Handler: api.NewRouter(sess, sink, started)}
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("debug http server failed", "error", err)
		}
	}()

	sess.Start(started)

	errChan := make(chan error, 1)
	go func() {
		errChan <- runTickLoop(ctx, cfg, sess, sink, metrics)
	}()

	select {
	case sig := <-sigChan:
		slog.Info("received shutdown signal", "signal", sig)
		cancel()
	case err := <-errChan:
		if err != nil {
			slog.Error("tick loop stopped with error", "error", err)
		}
	}

	shutdownTimeout := time.Duration(cfg.ShutdownTimeoutS) * time.Second
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	_ = httpServer.Shutdown(shutdownCtx)
	if controlHandler != nil {
		_ = controlHandler.Stop()
	}
	_ = sink.Disconnect()

	slog.Info("rppg core stopped")
}

// runTickLoop drives the 30Hz cooperative tick described by spec §5: a
// rate.Limiter paces it, never catching up on missed ticks, and each tick
// runs to completion before the next is admitted.
func runTickLoop(ctx context.Context, cfg *config.Config, sess *session.Session, sink *emit.MQTTSink, metrics *telemetry.Metrics) error {
	limiter := rate.NewLimiter(rate.Limit(cfg.SampleRate), 1)

	src := demo.NewPulseSource(320, 240, 72)
	faceSrc := demo.NewCenteredFace(320, 240)

	for {
		if err := limiter.Wait(ctx); err != nil {
			return nil
		}

		now := time.Now()
		src.Tick(now)
		face, faceOK := faceSrc.Detect()

		out := sess.Advance(src, face, faceOK, now)
		metrics.TicksTotal.Inc()
		if !out.Sampled {
			metrics.NoSampleTotal.Inc()
		}
		if out.Motion {
			metrics.MotionDetected.Inc()
		}
		metrics.QualityGauge.Set(qualityScore(out.Quality))
		metrics.QualityByLabel.WithLabelValues(out.Quality.String()).Inc()
		if out.Display.State.String() == "bpm" {
			metrics.BPMGauge.Set(float64(out.Display.BPM))
			metrics.EstimatesTotal.Inc()
		} else {
			metrics.BPMGauge.Set(0)
			metrics.NoEstimateTotal.Inc()
		}

		if sink.Client != nil {
			if err := sink.Publish(out); err != nil {
				slog.Debug("output publish failed", "error", err)
			}
		}
	}
}

func qualityScore(q types.Quality) float64 {
	switch q.String() {
	case "excellent":
		return 1
	case "good":
		return 0.75
	case "fair":
		return 0.5
	case "poor":
		return 0.25
	default:
		return 0
	}
}
