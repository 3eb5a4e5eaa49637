package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce           sync.Once
	evaluationsTotal       *prometheus.CounterVec
	evaluationDurationSecs *prometheus.HistogramVec
	stageFallbacksTotal    *prometheus.CounterVec
	notificationsTotal     *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used for pipeline observability.
func RegisterMetrics() {
	registerOnce.Do(func() {
		evaluationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lingua_evaluations_total",
			Help: "Total number of submission evaluations by outcome.",
		}, []string{"content_type", "outcome"})

		evaluationDurationSecs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "lingua_evaluation_duration_seconds",
			Help:    "End-to-end latency distribution of the evaluation pipeline.",
			Buckets: []float64{0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0},
		}, []string{"content_type"})

		stageFallbacksTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lingua_stage_fallbacks_total",
			Help: "Total number of times a pipeline stage fell back to its deterministic path.",
		}, []string{"stage"})

		notificationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lingua_notifications_total",
			Help: "Total number of notifications recorded by type.",
		}, []string{"type"})

		prometheus.MustRegister(evaluationsTotal, evaluationDurationSecs, stageFallbacksTotal, notificationsTotal)
	})
}

// Evaluations exposes the counter for completed and failed evaluations.
func Evaluations() *prometheus.CounterVec {
	RegisterMetrics()
	return evaluationsTotal
}

// EvaluationDuration exposes the pipeline latency histogram.
func EvaluationDuration() *prometheus.HistogramVec {
	RegisterMetrics()
	return evaluationDurationSecs
}

// StageFallbacks exposes the counter for deterministic fallback activations.
func StageFallbacks() *prometheus.CounterVec {
	RegisterMetrics()
	return stageFallbacksTotal
}

// Notifications exposes the counter for recorded notifications.
func Notifications() *prometheus.CounterVec {
	RegisterMetrics()
	return notificationsTotal
}
