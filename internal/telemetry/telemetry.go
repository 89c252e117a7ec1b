// Package telemetry exports validation and bootstrap metrics to prometheus.
package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements measure.Observer and metrics.Observer.
type Recorder struct {
	validations        *prometheus.CounterVec
	validationDuration *prometheus.HistogramVec
	bootstrapResamples prometheus.Counter
	bootstrapDuration  prometheus.Histogram
	preflightIssues    *prometheus.CounterVec
}

// NewRecorder registers the collectors on reg under namespace.
func NewRecorder(reg prometheus.Registerer, namespace string) *Recorder {
	factory := promauto.With(reg)
	return &Recorder{
		// validations counts validation attempts by measure and outcome
		validations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "validations_total",
			Help:      "Validation attempts by measure and outcome",
		}, []string{"measure", "outcome"}),

		validationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "validation_duration_seconds",
			Help:      "Validation duration in seconds, bootstrap included",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14), // 1ms to ~8s
		}, []string{"measure"}),

		bootstrapResamples: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bootstrap_resamples_total",
			Help:      "Bootstrap resamples drawn",
		}),

		bootstrapDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "bootstrap_duration_seconds",
			Help:      "Bootstrap duration in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14),
		}),

		preflightIssues: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "preflight_issues_total",
			Help:      "Ground-truth pre-flight issues by category",
		}, []string{"category"}),
	}
}

// ObserveValidation records one validation attempt.
func (r *Recorder) ObserveValidation(measure, outcome string, elapsed time.Duration) {
	r.validations.WithLabelValues(measure, outcome).Inc()
	r.validationDuration.WithLabelValues(measure).Observe(elapsed.Seconds())
}

// ObserveBootstrap records one bootstrap run.
func (r *Recorder) ObserveBootstrap(resamples int, elapsed time.Duration) {
	r.bootstrapResamples.Add(float64(resamples))
	r.bootstrapDuration.Observe(elapsed.Seconds())
}

// ObservePreflightIssue counts one methodology issue.
func (r *Recorder) ObservePreflightIssue(category string) {
	r.preflightIssues.WithLabelValues(category).Inc()
}

// PreflightIssues returns the issue counter of one category.
func (r *Recorder) PreflightIssues(category string) prometheus.Counter {
	return r.preflightIssues.WithLabelValues(category)
}
