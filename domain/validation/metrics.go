// Package validation holds the results of validating a measure against ground
// truth and the durable record written once a validation succeeds.
package validation

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"time"

	"gomeasure/domain/core"
)

// Metric names used as confidence-interval keys.
const (
	MetricAccuracy  = "accuracy"
	MetricPrecision = "precision"
	MetricRecall    = "recall"
	MetricF1        = "f1"
	MetricKappa     = "cohens_kappa"
)

// Thresholds is the statistical bar a measure must clear.
type Thresholds struct {
	MinF1    float64 `json:"min_f1"`
	MinKappa float64 `json:"min_kappa"`
}

// DefaultThresholds are F1 >= 0.7 and kappa >= 0.6.
var DefaultThresholds = Thresholds{MinF1: 0.7, MinKappa: 0.6}

// Interval is a (lower, upper) confidence interval. It serializes as a
// two-element array.
type Interval struct {
	Lower float64
	Upper float64
}

// Contains reports whether v lies within the closed interval.
func (i Interval) Contains(v float64) bool {
	return v >= i.Lower && v <= i.Upper
}

func (i Interval) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{i.Lower, i.Upper})
}

func (i *Interval) UnmarshalJSON(data []byte) error {
	var pair [2]float64
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("confidence interval must be a [lower, upper] pair: %w", err)
	}
	i.Lower, i.Upper = pair[0], pair[1]
	return nil
}

// Metrics are the validation statistics of one measure on one dataset.
// Values are never modified after the calculator returns them; holders hand
// out clones.
type Metrics struct {
	Accuracy    float64 `json:"accuracy"`
	Precision   float64 `json:"precision"`
	Recall      float64 `json:"recall"`
	F1          float64 `json:"f1"`
	CohensKappa float64 `json:"cohens_kappa"`

	// ConfusionMatrix rows are true classes and columns predicted classes,
	// both ordered as Classes.
	ConfusionMatrix [][]int  `json:"confusion_matrix"`
	Classes         []string `json:"classes"`

	ConfidenceIntervals map[string]Interval `json:"confidence_intervals"`
	ConfidenceLevel     float64             `json:"confidence_level"`

	SampleSize int       `json:"sample_size"`
	Timestamp  time.Time `json:"timestamp"`
}

// MeetsThreshold reports whether both F1 and kappa reach their minimums.
func (m *Metrics) MeetsThreshold(minF1, minKappa float64) bool {
	return m.F1 >= minF1 && m.CohensKappa >= minKappa
}

// Meets is MeetsThreshold for a Thresholds value.
func (m *Metrics) Meets(t Thresholds) bool {
	return m.MeetsThreshold(t.MinF1, t.MinKappa)
}

// Clone returns a deep copy.
func (m *Metrics) Clone() *Metrics {
	if m == nil {
		return nil
	}
	out := *m
	out.ConfusionMatrix = make([][]int, len(m.ConfusionMatrix))
	for i, row := range m.ConfusionMatrix {
		out.ConfusionMatrix[i] = slices.Clone(row)
	}
	out.Classes = slices.Clone(m.Classes)
	out.ConfidenceIntervals = maps.Clone(m.ConfidenceIntervals)
	return &out
}

// IntervalNames returns the confidence-interval keys in sorted order.
func (m *Metrics) IntervalNames() []string {
	return slices.Sorted(maps.Keys(m.ConfidenceIntervals))
}

// ToMap renders the metrics as plain nested values: numbers, strings, a 2-D
// array for the confusion matrix and two-element arrays for intervals.
func (m *Metrics) ToMap() map[string]any {
	matrix := make([][]int, len(m.ConfusionMatrix))
	for i, row := range m.ConfusionMatrix {
		matrix[i] = slices.Clone(row)
	}
	intervals := make(map[string][]float64, len(m.ConfidenceIntervals))
	for name, ci := range m.ConfidenceIntervals {
		intervals[name] = []float64{ci.Lower, ci.Upper}
	}
	return map[string]any{
		"accuracy":             m.Accuracy,
		"precision":            m.Precision,
		"recall":               m.Recall,
		"f1":                   m.F1,
		"cohens_kappa":         m.CohensKappa,
		"confusion_matrix":     matrix,
		"classes":              slices.Clone(m.Classes),
		"confidence_intervals": intervals,
		"confidence_level":     m.ConfidenceLevel,
		"sample_size":          m.SampleSize,
		"timestamp":            core.FormatTimestamp(m.Timestamp),
	}
}
