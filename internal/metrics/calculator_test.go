package metrics

import (
	"testing"
	"time"

	"gomeasure/domain/core"
	"gomeasure/domain/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastConfig() Config {
	boot := DefaultBootstrap()
	boot.Resamples = 200
	return Config{
		Bootstrap: boot,
		Clock:     core.FixedClock(time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)),
	}
}

func TestSummarizeKnownBinaryCase(t *testing.T) {
	labels := []int{0, 0, 1, 1}
	preds := []int{0, 1, 1, 1}

	s, err := Summarize(preds, labels)
	require.NoError(t, err)

	assert.InDelta(t, 0.75, s.Accuracy, 1e-12)
	assert.InDelta(t, 5.0/6.0, s.Precision, 1e-12)
	assert.InDelta(t, 0.75, s.Recall, 1e-12)
	assert.InDelta(t, (2.0/3.0+0.8)/2, s.F1, 1e-12)
	assert.InDelta(t, 0.5, s.CohensKappa, 1e-12)
}

func TestSummarizePerfectAgreement(t *testing.T) {
	labels := []string{"neg", "pos", "neutral", "pos", "neg"}

	s, err := Summarize(labels, labels)
	require.NoError(t, err)

	assert.Equal(t, 1.0, s.Accuracy)
	assert.Equal(t, 1.0, s.Precision)
	assert.Equal(t, 1.0, s.Recall)
	assert.Equal(t, 1.0, s.F1)
	assert.Equal(t, 1.0, s.CohensKappa)
}

func TestSummarizeSingleClassPerfectAgreement(t *testing.T) {
	labels := []int{1, 1, 1}
	s, err := Summarize(labels, labels)
	require.NoError(t, err)
	assert.Equal(t, 1.0, s.CohensKappa)
	assert.Equal(t, 1.0, s.F1)
}

func TestSummarizeComplementHasNegativeKappa(t *testing.T) {
	labels := []int{0, 1, 1, 0, 1, 0, 0, 1, 1, 1}
	preds := make([]int, len(labels))
	for i, l := range labels {
		preds[i] = 1 - l
	}

	s, err := Summarize(preds, labels)
	require.NoError(t, err)
	assert.Equal(t, 0.0, s.Accuracy)
	assert.Less(t, s.CohensKappa, 0.0)
	assert.GreaterOrEqual(t, s.CohensKappa, -1.0)
}

func TestSummarizeNeverPredictedClassIsZeroNotError(t *testing.T) {
	labels := []int{0, 1, 2, 2}
	preds := []int{0, 1, 1, 1}

	s, err := Summarize(preds, labels)
	require.NoError(t, err)
	for _, v := range []float64{s.Accuracy, s.Precision, s.Recall, s.F1} {
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 1.0)
	}
	// class 2 has support 2 but no predictions, so it contributes nothing
	assert.InDelta(t, (1.0+1.0*(1.0/3.0))/4, s.Precision, 1e-12)
}

func TestSummarizeRejectsBadInput(t *testing.T) {
	_, err := Summarize([]int{1}, []int{1, 0})
	assert.ErrorIs(t, err, core.ErrShapeMismatch)

	_, err = Summarize([]int{}, []int{})
	assert.ErrorIs(t, err, core.ErrEmptyInput)
}

func TestConfusionMatrixUsesUnionOfClasses(t *testing.T) {
	labels := []string{"a", "a", "b", "c"}
	preds := []string{"a", "d", "b", "b"}

	cm, classes, err := ConfusionMatrix(preds, labels)
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b", "c", "d"}, classes)
	assert.Equal(t, [][]int{
		{1, 0, 0, 1},
		{0, 1, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 0, 0},
	}, cm)
}

func TestBinarize(t *testing.T) {
	assert.Equal(t, []int{0, 0, 1, 1, 0}, Binarize([]float64{0.1, 0.5, 0.5000001, 0.99, -3}))
	assert.Equal(t, 1, BinaryClass(0.51))
	assert.Equal(t, 0, BinaryClass(DecisionThreshold))
}

func TestComputeFillsMetrics(t *testing.T) {
	labels := []int{0, 0, 1, 1}
	preds := []int{0, 1, 1, 1}

	m, err := Compute(preds, labels, fastConfig())
	require.NoError(t, err)

	assert.Equal(t, 4, m.SampleSize)
	assert.Equal(t, []string{"0", "1"}, m.Classes)
	assert.Equal(t, [][]int{{1, 1}, {0, 2}}, m.ConfusionMatrix)
	assert.InDelta(t, 0.5, m.CohensKappa, 1e-12)
	assert.Equal(t, 0.95, m.ConfidenceLevel)
	assert.Equal(t, time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), m.Timestamp)

	ci, ok := m.ConfidenceIntervals[validation.MetricF1]
	require.True(t, ok)
	assert.LessOrEqual(t, ci.Lower, ci.Upper)
}

func TestComputeScoresBinarizes(t *testing.T) {
	scores := []float64{0.9, 0.2, 0.7, 0.4, 0.51, 0.5}
	labels := []int{1, 0, 1, 0, 1, 0}

	m, err := ComputeScores(scores, labels, fastConfig())
	require.NoError(t, err)
	assert.Equal(t, 1.0, m.F1)
	assert.Equal(t, 1.0, m.CohensKappa)
}
