// Package measure wraps scoring functions in a validation gate. A measure
// cannot be used until it has been validated against independent ground
// truth and met the configured F1 and kappa thresholds.
package measure

import (
	"log/slog"
	"time"

	"gomeasure/domain/core"
	"gomeasure/internal/metrics"
)

// Measure scores one sample. Implementations must not depend on gate state.
type Measure[S, V any] interface {
	Score(sample S) (V, error)
}

// MeasureFunc adapts a plain function to Measure.
type MeasureFunc[S, V any] func(sample S) (V, error)

func (f MeasureFunc[S, V]) Score(sample S) (V, error) {
	return f(sample)
}

// Validation outcomes reported to an Observer.
const (
	OutcomeValidated       = "validated"
	OutcomeThresholdNotMet = "threshold_not_met"
	OutcomeRejected        = "rejected"
	OutcomeError           = "error"
)

// Observer receives one call per validation attempt.
type Observer interface {
	ObserveValidation(measure, outcome string, elapsed time.Duration)
}

type options struct {
	logger    *slog.Logger
	observer  Observer
	bootstrap metrics.BootstrapConfig
	clock     core.Clock
}

// Option configures a Gate.
type Option func(*options)

// WithLogger sets the gate logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithObserver reports validation attempts. An observer that also implements
// metrics.Observer receives bootstrap timings.
func WithObserver(obs Observer) Option {
	return func(o *options) { o.observer = obs }
}

// WithBootstrap replaces the default bootstrap configuration.
func WithBootstrap(cfg metrics.BootstrapConfig) Option {
	return func(o *options) { o.bootstrap = cfg }
}

// WithClock sets the clock used to timestamp metrics.
func WithClock(c core.Clock) Option {
	return func(o *options) {
		if c != nil {
			o.clock = c
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{
		logger:    slog.Default(),
		bootstrap: metrics.DefaultBootstrap(),
		clock:     core.SystemClock,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.bootstrap.Logger == nil {
		o.bootstrap.Logger = o.logger
	}
	if bo, ok := o.observer.(metrics.Observer); ok && o.bootstrap.Observer == nil {
		o.bootstrap.Observer = bo
	}
	return o
}
