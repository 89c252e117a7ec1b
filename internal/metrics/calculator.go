// Package metrics turns predictions and reference labels into validation
// statistics: accuracy, support-weighted precision/recall/F1, Cohen's kappa,
// a confusion matrix, and percentile bootstrap confidence intervals.
package metrics

import (
	"cmp"

	"gomeasure/domain/core"
	"gomeasure/domain/validation"
)

// DecisionThreshold is the fixed cut applied to continuous scores: a score
// strictly above it is class 1, anything else class 0.
const DecisionThreshold = 0.5

// BinaryClass classifies one continuous score.
func BinaryClass(score float64) int {
	if score > DecisionThreshold {
		return 1
	}
	return 0
}

// Binarize classifies continuous scores with BinaryClass.
func Binarize(scores []float64) []int {
	out := make([]int, len(scores))
	for i, s := range scores {
		out[i] = BinaryClass(s)
	}
	return out
}

// Config bundles what Compute needs besides the data.
type Config struct {
	Bootstrap BootstrapConfig
	Clock     core.Clock
}

// DefaultConfig uses the default bootstrap and the system clock.
func DefaultConfig() Config {
	return Config{Bootstrap: DefaultBootstrap(), Clock: core.SystemClock}
}

// Compute evaluates discrete predictions against labels. Both sequences must
// be non-empty and of equal length.
func Compute[L cmp.Ordered](predictions, labels []L, cfg Config) (*validation.Metrics, error) {
	e, err := encode(predictions, labels)
	if err != nil {
		return nil, err
	}
	cm := e.confusion()
	s := cm.summarize()

	boot, err := Bootstrap(predictions, labels, cfg.Bootstrap)
	if err != nil {
		return nil, err
	}

	clock := cfg.Clock
	if clock == nil {
		clock = core.SystemClock
	}

	return &validation.Metrics{
		Accuracy:            s.Accuracy,
		Precision:           s.Precision,
		Recall:              s.Recall,
		F1:                  s.F1,
		CohensKappa:         s.CohensKappa,
		ConfusionMatrix:     cm.rows(),
		Classes:             e.classNames(),
		ConfidenceIntervals: boot.Intervals,
		ConfidenceLevel:     boot.Confidence,
		SampleSize:          len(labels),
		Timestamp:           clock(),
	}, nil
}

// ComputeScores binarizes continuous scores at DecisionThreshold and
// evaluates them against binary labels.
func ComputeScores(scores []float64, labels []int, cfg Config) (*validation.Metrics, error) {
	return Compute(Binarize(scores), labels, cfg)
}
