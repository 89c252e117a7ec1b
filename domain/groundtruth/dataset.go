// Package groundtruth holds independently annotated reference data against
// which measures are validated.
package groundtruth

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"gomeasure/domain/core"
	"gomeasure/internal/rng"
)

// Split tags written under KeySplit.
const (
	SplitTrain      = "train"
	SplitValidation = "validation"
	SplitTest       = "test"
)

// ratioTolerance bounds how far split ratios may drift from summing to 1.
const ratioTolerance = 1e-9

// DefaultSplitSeed is the seed used when callers have no preference.
const DefaultSplitSeed int64 = 42

// SplitRatios are the train/validation/test shares of a split.
type SplitRatios struct {
	Train      float64
	Validation float64
	Test       float64
}

// DefaultSplit is the conventional 60/20/20 split.
var DefaultSplit = SplitRatios{Train: 0.6, Validation: 0.2, Test: 0.2}

// Validate checks that every ratio is a non-negative number and that they sum to 1.
func (r SplitRatios) Validate() error {
	for _, v := range []float64{r.Train, r.Validation, r.Test} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return fmt.Errorf("%w: got %g/%g/%g", core.ErrInvalidRatios, r.Train, r.Validation, r.Test)
		}
	}
	if sum := r.Train + r.Validation + r.Test; math.Abs(sum-1.0) > ratioTolerance {
		return fmt.Errorf("%w: got %g/%g/%g (sum %g)", core.ErrInvalidRatios, r.Train, r.Validation, r.Test, sum)
	}
	return nil
}

// Dataset is an immutable set of samples paired with independent labels.
type Dataset[S any, L cmp.Ordered] struct {
	samples  []S
	labels   []L
	metadata Metadata
}

// New builds a dataset. It fails with ErrShapeMismatch when the sequences
// differ in length and with ErrUnreliableAnnotations when the metadata reports
// an inter-rater kappa below MinInterRaterKappa.
func New[S any, L cmp.Ordered](samples []S, labels []L, metadata Metadata) (*Dataset[S, L], error) {
	if len(samples) != len(labels) {
		return nil, fmt.Errorf("%w: %d samples, %d labels", core.ErrShapeMismatch, len(samples), len(labels))
	}

	kappa, present, err := metadata.InterRaterKappa()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrUnreliableAnnotations, err)
	}
	if present && !(kappa >= MinInterRaterKappa) {
		return nil, fmt.Errorf("%w: κ=%.2f below threshold %.1f, ground truth may not be reliable",
			core.ErrUnreliableAnnotations, kappa, MinInterRaterKappa)
	}

	return &Dataset[S, L]{
		samples:  slices.Clone(samples),
		labels:   slices.Clone(labels),
		metadata: metadata.Clone(),
	}, nil
}

// Len returns the number of samples.
func (d *Dataset[S, L]) Len() int {
	return len(d.samples)
}

// Samples returns a copy of the samples in order.
func (d *Dataset[S, L]) Samples() []S {
	return slices.Clone(d.samples)
}

// Labels returns a copy of the labels in order.
func (d *Dataset[S, L]) Labels() []L {
	return slices.Clone(d.labels)
}

// Sample returns the i-th sample.
func (d *Dataset[S, L]) Sample(i int) S {
	return d.samples[i]
}

// Label returns the i-th label.
func (d *Dataset[S, L]) Label(i int) L {
	return d.labels[i]
}

// Metadata returns a copy of the metadata.
func (d *Dataset[S, L]) Metadata() Metadata {
	return d.metadata.Clone()
}

// Source returns the declared provenance identifier.
func (d *Dataset[S, L]) Source() string {
	return d.metadata.Source()
}

// Classes returns the sorted distinct labels.
func (d *Dataset[S, L]) Classes() []L {
	classes := slices.Clone(d.labels)
	slices.Sort(classes)
	return slices.Compact(classes)
}

// Splits holds the three partitions produced by Split.
type Splits[S any, L cmp.Ordered] struct {
	Train      *Dataset[S, L]
	Validation *Dataset[S, L]
	Test       *Dataset[S, L]
}

// Split partitions the dataset into train, validation and test sets using a
// seeded permutation. The receiver is not modified and the partitions share no
// samples.
func (d *Dataset[S, L]) Split(ratios SplitRatios, seed int64) (Splits[S, L], error) {
	train, val, test, err := PartitionIndices(d.Len(), ratios, seed)
	if err != nil {
		return Splits[S, L]{}, err
	}
	return Splits[S, L]{
		Train:      d.subset(train, SplitTrain),
		Validation: d.subset(val, SplitValidation),
		Test:       d.subset(test, SplitTest),
	}, nil
}

// PartitionIndices returns the index sets Split uses for a dataset of n
// samples. Train holds the first floor(n*Train) permuted indices, validation
// the next floor(n*Validation), and test the remainder.
func PartitionIndices(n int, ratios SplitRatios, seed int64) (train, val, test []int, err error) {
	if err := ratios.Validate(); err != nil {
		return nil, nil, nil, err
	}

	perm := rng.New(seed, rng.LabelSplit).Perm(n)

	trainEnd := min(int(math.Floor(float64(n)*ratios.Train)), n)
	valEnd := min(trainEnd+int(math.Floor(float64(n)*ratios.Validation)), n)

	return perm[:trainEnd:trainEnd], perm[trainEnd:valEnd:valEnd], perm[valEnd:], nil
}

// subset copies the selected rows into a new dataset tagged with split. The
// parent already passed construction checks, so the child is built directly.
func (d *Dataset[S, L]) subset(indices []int, split string) *Dataset[S, L] {
	samples := make([]S, len(indices))
	labels := make([]L, len(indices))
	for i, idx := range indices {
		samples[i] = d.samples[idx]
		labels[i] = d.labels[idx]
	}
	md := d.metadata.Clone()
	md[KeySplit] = split
	return &Dataset[S, L]{samples: samples, labels: labels, metadata: md}
}
