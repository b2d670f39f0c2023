package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/xkilldash9x/feedback-cli/api/schemas"
)

// PrometheusRecorder implements Recorder on a private registry so a run's
// metrics can be written to a node exporter textfile.
type PrometheusRecorder struct {
	registry *prometheus.Registry

	attemptsTotal      *prometheus.CounterVec
	confirmationsTotal *prometheus.CounterVec
	attemptDuration    *prometheus.HistogramVec
	runDuration        prometheus.Gauge
}

// attemptBuckets cover a fast duplicate short-circuit up to a slow
// confirmation timeout.
var attemptBuckets = []float64{1, 2, 5, 10, 15, 20, 30, 45, 60, 90}

// NewPrometheusRecorder registers the run metrics on a fresh registry.
func NewPrometheusRecorder() *PrometheusRecorder {
	p := &PrometheusRecorder{
		registry: prometheus.NewRegistry(),
		attemptsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "feedback_attempts_total",
				Help: "Submission attempts by category and result.",
			},
			[]string{"category", "result"},
		),
		confirmationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "feedback_confirmations_total",
				Help: "Confirmation signals observed after pressing submit.",
			},
			[]string{"signal"},
		),
		attemptDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "feedback_attempt_duration_seconds",
				Help:    "Duration of a single submission attempt in seconds.",
				Buckets: attemptBuckets,
			},
			[]string{"category"},
		),
		runDuration: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "feedback_run_duration_seconds",
				Help: "Duration of the last run in seconds.",
			},
		),
	}
	p.registry.MustRegister(p.attemptsTotal, p.confirmationsTotal, p.attemptDuration, p.runDuration)
	return p
}

// ObserveAttempt implements Recorder.
func (p *PrometheusRecorder) ObserveAttempt(category schemas.Category, result schemas.AttemptResult, signal schemas.ConfirmationSignal, duration time.Duration) {
	p.attemptsTotal.WithLabelValues(string(category), string(result)).Inc()
	if signal != "" {
		p.confirmationsTotal.WithLabelValues(string(signal)).Inc()
	}
	p.attemptDuration.WithLabelValues(string(category)).Observe(duration.Seconds())
}

// ObserveRun implements Recorder.
func (p *PrometheusRecorder) ObserveRun(duration time.Duration) {
	p.runDuration.Set(duration.Seconds())
}

// Registry exposes the underlying registry.
func (p *PrometheusRecorder) Registry() *prometheus.Registry {
	return p.registry
}

// WriteTextfile writes every metric to path in the text exposition format.
// The file is replaced atomically.
func (p *PrometheusRecorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, p.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile %s: %w", path, err)
	}
	return nil
}
