package metrics

import (
	"cmp"
	"fmt"
	"slices"

	"gomeasure/domain/core"
	"gomeasure/domain/validation"
)

// Summary holds the point statistics of one prediction set.
type Summary struct {
	Accuracy    float64
	Precision   float64
	Recall      float64
	F1          float64
	CohensKappa float64
}

// confusion is a square count matrix over class indices, rows true and
// columns predicted.
type confusion struct {
	k      int
	counts []int
}

func newConfusion(k int) *confusion {
	return &confusion{k: k, counts: make([]int, k*k)}
}

func (c *confusion) reset() {
	clear(c.counts)
}

func (c *confusion) add(truth, predicted int) {
	c.counts[truth*c.k+predicted]++
}

func (c *confusion) rows() [][]int {
	out := make([][]int, c.k)
	for i := range out {
		out[i] = slices.Clone(c.counts[i*c.k : (i+1)*c.k])
	}
	return out
}

// summarize computes accuracy, support-weighted precision/recall/F1 and
// Cohen's kappa. Classes without predictions or without support contribute 0
// instead of dividing by zero.
func (c *confusion) summarize() Summary {
	n := 0
	trace := 0
	rowSums := make([]int, c.k)
	colSums := make([]int, c.k)
	for i := 0; i < c.k; i++ {
		for j := 0; j < c.k; j++ {
			v := c.counts[i*c.k+j]
			n += v
			rowSums[i] += v
			colSums[j] += v
			if i == j {
				trace += v
			}
		}
	}
	if n == 0 {
		return Summary{}
	}

	var precision, recall, f1 float64
	for i := 0; i < c.k; i++ {
		support := rowSums[i]
		if support == 0 {
			continue
		}
		tp := c.counts[i*c.k+i]
		fp := colSums[i] - tp
		fn := support - tp
		w := float64(support)

		if colSums[i] > 0 {
			precision += w * float64(tp) / float64(colSums[i])
		}
		recall += w * float64(tp) / float64(support)
		if denom := 2*tp + fp + fn; denom > 0 {
			f1 += w * float64(2*tp) / float64(denom)
		}
	}

	total := float64(n)
	observed := float64(trace) / total

	var chance float64
	for i := 0; i < c.k; i++ {
		chance += float64(rowSums[i]) * float64(colSums[i])
	}
	chance /= total * total

	return Summary{
		Accuracy:    observed,
		Precision:   precision / total,
		Recall:      recall / total,
		F1:          f1 / total,
		CohensKappa: kappa(observed, chance),
	}
}

// kappa is (po - pe) / (1 - pe). When chance agreement is total the
// statistic is undefined; perfect observed agreement reads as 1, anything
// else as 0.
func kappa(observed, chance float64) float64 {
	if chance >= 1 {
		if observed >= 1 {
			return 1
		}
		return 0
	}
	return (observed - chance) / (1 - chance)
}

// encoded is a prediction/label pair mapped onto dense class indices.
type encoded[L cmp.Ordered] struct {
	classes   []L
	truth     []int
	predicted []int
}

// encode maps both sequences onto the sorted union of their values.
func encode[L cmp.Ordered](predictions, labels []L) (*encoded[L], error) {
	if len(predictions) != len(labels) {
		return nil, fmt.Errorf("%w: %d predictions, %d labels", core.ErrShapeMismatch, len(predictions), len(labels))
	}
	if len(labels) == 0 {
		return nil, core.ErrEmptyInput
	}

	classes := make([]L, 0, len(labels)+len(predictions))
	classes = append(classes, labels...)
	classes = append(classes, predictions...)
	slices.Sort(classes)
	classes = slices.Compact(classes)

	index := make(map[L]int, len(classes))
	for i, c := range classes {
		index[c] = i
	}

	e := &encoded[L]{
		classes:   classes,
		truth:     make([]int, len(labels)),
		predicted: make([]int, len(predictions)),
	}
	for i := range labels {
		e.truth[i] = index[labels[i]]
		e.predicted[i] = index[predictions[i]]
	}
	return e, nil
}

func (e *encoded[L]) confusion() *confusion {
	c := newConfusion(len(e.classes))
	for i := range e.truth {
		c.add(e.truth[i], e.predicted[i])
	}
	return c
}

func (e *encoded[L]) classNames() []string {
	names := make([]string, len(e.classes))
	for i, c := range e.classes {
		names[i] = fmt.Sprint(c)
	}
	return names
}

// Summarize returns the point statistics of predictions against labels.
func Summarize[L cmp.Ordered](predictions, labels []L) (Summary, error) {
	e, err := encode(predictions, labels)
	if err != nil {
		return Summary{}, err
	}
	return e.confusion().summarize(), nil
}

// ConfusionMatrix returns the counts (rows true, columns predicted) and the
// class order used for both axes.
func ConfusionMatrix[L cmp.Ordered](predictions, labels []L) ([][]int, []L, error) {
	e, err := encode(predictions, labels)
	if err != nil {
		return nil, nil, err
	}
	return e.confusion().rows(), e.classes, nil
}

// statistic extracts one named value from a summary.
func statistic(s Summary, name string) (float64, bool) {
	switch name {
	case validation.MetricAccuracy:
		return s.Accuracy, true
	case validation.MetricPrecision:
		return s.Precision, true
	case validation.MetricRecall:
		return s.Recall, true
	case validation.MetricF1:
		return s.F1, true
	case validation.MetricKappa:
		return s.CohensKappa, true
	default:
		return 0, false
	}
}
