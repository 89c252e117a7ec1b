package testkit

import (
	"errors"
	"fmt"
	"strings"

	"gomeasure/internal/measure"
)

// ErrUnknownDocument is returned by reference measures for documents they were
// not built from.
var ErrUnknownDocument = errors.New("document not in reference set")

func labelIndex(docs []Document, labels []int) map[string]int {
	index := make(map[string]int, len(docs))
	for i, d := range docs {
		index[d.ID] = labels[i]
	}
	return index
}

// OracleMeasure reproduces the reference labels exactly.
func OracleMeasure(docs []Document, labels []int) measure.MeasureFunc[Document, int] {
	index := labelIndex(docs, labels)
	return func(d Document) (int, error) {
		l, ok := index[d.ID]
		if !ok {
			return 0, fmt.Errorf("%w: %s", ErrUnknownDocument, d.ID)
		}
		return l, nil
	}
}

// InvertedMeasure predicts the complement of every binary reference label.
func InvertedMeasure(docs []Document, labels []int) measure.MeasureFunc[Document, int] {
	oracle := OracleMeasure(docs, labels)
	return func(d Document) (int, error) {
		l, err := oracle(d)
		return 1 - l, err
	}
}

// KeywordMeasure scores 0.9 when a document mentions any keyword and 0.1
// otherwise.
func KeywordMeasure(keywords ...string) measure.MeasureFunc[Document, float64] {
	return func(d Document) (float64, error) {
		text := strings.ToLower(d.Text)
		for _, kw := range keywords {
			if strings.Contains(text, strings.ToLower(kw)) {
				return 0.9, nil
			}
		}
		return 0.1, nil
	}
}

// ConstantMeasure returns v for every sample.
func ConstantMeasure[S, V any](v V) measure.MeasureFunc[S, V] {
	return func(S) (V, error) { return v, nil }
}

// FailingMeasure fails on the n-th call (zero-based) and succeeds with zero
// values before that. It is not safe for concurrent use.
func FailingMeasure[S, V any](n int, err error) measure.MeasureFunc[S, V] {
	calls := 0
	return func(S) (V, error) {
		var zero V
		defer func() { calls++ }()
		if calls == n {
			return zero, err
		}
		return zero, nil
	}
}
