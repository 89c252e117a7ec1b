package measure

import (
	"cmp"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"gomeasure/domain/core"
	"gomeasure/domain/groundtruth"
	"gomeasure/domain/validation"
	"gomeasure/internal/metrics"
)

// MinSampleSize is the statistical power floor for a validation run.
const MinSampleSize = 30

// Gate wraps a Measure and refuses to score until the measure has passed
// validation against independent ground truth. The classify function turns a
// measure output into the label space of the ground truth.
//
// A gate moves from unvalidated to validated only through
// ValidateAgainstGroundTruth and never moves back. A failed attempt leaves
// every field exactly as it was.
type Gate[S, V any, L cmp.Ordered] struct {
	name        string
	description string
	measure     Measure[S, V]
	classify    func(V) L
	opts        options

	mu          sync.RWMutex
	validated   bool
	metrics     *validation.Metrics
	source      string
	limitations []string
}

// NewGate creates an unvalidated gate. It panics if m or classify is nil.
func NewGate[S, V any, L cmp.Ordered](name, description string, m Measure[S, V], classify func(V) L, opts ...Option) *Gate[S, V, L] {
	if m == nil {
		panic("measure: nil Measure")
	}
	if classify == nil {
		panic("measure: nil classify function")
	}
	return &Gate[S, V, L]{
		name:        name,
		description: description,
		measure:     m,
		classify:    classify,
		opts:        buildOptions(opts),
	}
}

// NewScoreGate gates a measure producing continuous scores. Scores are
// classified with metrics.BinaryClass against binary ground truth.
func NewScoreGate[S any](name, description string, m Measure[S, float64], opts ...Option) *Gate[S, float64, int] {
	return NewGate(name, description, m, metrics.BinaryClass, opts...)
}

// NewClassifierGate gates a measure whose output already is a class label.
func NewClassifierGate[S any, L cmp.Ordered](name, description string, m Measure[S, L], opts ...Option) *Gate[S, L, L] {
	return NewGate(name, description, m, func(v L) L { return v }, opts...)
}

func (g *Gate[S, V, L]) Name() string        { return g.name }
func (g *Gate[S, V, L]) Description() string { return g.description }

// IsValidated reports whether the gate is open.
func (g *Gate[S, V, L]) IsValidated() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.validated
}

// Measure scores one sample.
func (g *Gate[S, V, L]) Measure(sample S) (V, error) {
	if !g.IsValidated() {
		var zero V
		return zero, core.NewNotValidatedError(g.name)
	}
	return g.measure.Score(sample)
}

// MeasureBatch scores samples in order and stops at the first failure.
func (g *Gate[S, V, L]) MeasureBatch(samples []S) ([]V, error) {
	if !g.IsValidated() {
		return nil, core.NewNotValidatedError(g.name)
	}
	out := make([]V, len(samples))
	for i, s := range samples {
		v, err := g.measure.Score(s)
		if err != nil {
			return nil, fmt.Errorf("measure %s failed on sample %d: %w", g.name, i, err)
		}
		out[i] = v
	}
	return out, nil
}

// ValidateAgainstGroundTruth scores every ground-truth sample, computes the
// validation metrics and opens the gate when F1 and kappa both meet t.
// When the thresholds are missed the computed metrics are returned together
// with a *core.ThresholdNotMetError. The dataset is only read.
func (g *Gate[S, V, L]) ValidateAgainstGroundTruth(gt *groundtruth.Dataset[S, L], t validation.Thresholds) (*validation.Metrics, error) {
	start := time.Now()
	log := g.opts.logger.With("component", "gate", "measure", g.name)

	if gt == nil {
		g.observe(OutcomeRejected, start)
		return nil, fmt.Errorf("%w: measure %s", core.ErrMissingGroundTruth, g.name)
	}
	n := gt.Len()
	if n < MinSampleSize {
		g.observe(OutcomeRejected, start)
		return nil, fmt.Errorf("%w: %d samples, need at least %d", core.ErrInsufficientSampleSize, n, MinSampleSize)
	}

	predictions := make([]L, n)
	for i := range n {
		v, err := g.measure.Score(gt.Sample(i))
		if err != nil {
			g.observe(OutcomeError, start)
			return nil, fmt.Errorf("%w: measure %s on sample %d: %w", core.ErrMeasureFailed, g.name, i, err)
		}
		predictions[i] = g.classify(v)
	}

	m, err := metrics.Compute(predictions, gt.Labels(), metrics.Config{
		Bootstrap: g.opts.bootstrap,
		Clock:     g.opts.clock,
	})
	if err != nil {
		g.observe(OutcomeError, start)
		return nil, fmt.Errorf("failed to compute metrics for %s: %w", g.name, err)
	}

	if !m.Meets(t) {
		log.Warn("validation failed",
			"f1", m.F1, "kappa", m.CohensKappa,
			"min_f1", t.MinF1, "min_kappa", t.MinKappa, "n", n)
		g.observe(OutcomeThresholdNotMet, start)
		return m, &core.ThresholdNotMetError{
			Measure:  g.name,
			F1:       m.F1,
			Kappa:    m.CohensKappa,
			MinF1:    t.MinF1,
			MinKappa: t.MinKappa,
		}
	}

	g.mu.Lock()
	g.validated = true
	g.metrics = m.Clone()
	g.source = gt.Source()
	g.mu.Unlock()

	log.Info("measure validated",
		"f1", m.F1, "kappa", m.CohensKappa, "accuracy", m.Accuracy,
		"n", n, "source", gt.Source())
	g.observe(OutcomeValidated, start)
	return m, nil
}

func (g *Gate[S, V, L]) observe(outcome string, start time.Time) {
	if g.opts.observer != nil {
		g.opts.observer.ObserveValidation(g.name, outcome, time.Since(start))
	}
}

// AddLimitation documents a known weakness. It is allowed in any state.
func (g *Gate[S, V, L]) AddLimitation(text string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.limitations = append(g.limitations, text)
}

// Limitations returns a copy of the documented limitations in insertion order.
func (g *Gate[S, V, L]) Limitations() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return slices.Clone(g.limitations)
}

// Metrics returns a copy of the validation metrics, or false before validation.
func (g *Gate[S, V, L]) Metrics() (*validation.Metrics, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if !g.validated {
		return nil, false
	}
	return g.metrics.Clone(), true
}

// GroundTruthSource is the source of the dataset that opened the gate.
func (g *Gate[S, V, L]) GroundTruthSource() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.source
}

// Record returns the persistable validation document.
func (g *Gate[S, V, L]) Record() (validation.Record, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if !g.validated {
		return validation.Record{}, core.NewNotValidatedError(g.name)
	}
	limitations := slices.Clone(g.limitations)
	if limitations == nil {
		limitations = []string{}
	}
	return validation.Record{
		Name:              g.name,
		Description:       g.description,
		GroundTruthSource: g.source,
		ValidationMetrics: *g.metrics.Clone(),
		Limitations:       limitations,
		IsValidated:       true,
	}, nil
}

// ValidationReport renders a human-readable summary. An unvalidated gate
// yields a short notice instead of an error.
func (g *Gate[S, V, L]) ValidationReport() string {
	r, err := g.Record()
	if err != nil {
		return validation.NotValidatedReport(g.name)
	}
	return r.Report()
}

// SaveValidation writes the validation record as JSON to path. The file is
// replaced atomically.
func (g *Gate[S, V, L]) SaveValidation(path string) error {
	r, err := g.Record()
	if err != nil {
		return err
	}
	data, err := r.Encode()
	if err != nil {
		return err
	}
	if err := writeFileAtomic(path, data); err != nil {
		return fmt.Errorf("failed to save validation for %s: %w", g.name, err)
	}
	g.opts.logger.Info("validation saved", "component", "gate", "measure", g.name, "path", path)
	return nil
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
