package groundtruth

import (
	"fmt"
	"math"
	"reflect"

	"github.com/spf13/cast"
)

// Recognized metadata keys
const (
	KeySource                  = "source"
	KeyInterRaterReliability   = "inter_rater_reliability"
	KeyCohensKappa             = "cohens_kappa"
	KeySampleSize              = "sample_size"
	KeyNumAnnotators           = "num_annotators"
	KeyHasAnnotationGuidelines = "has_annotation_guidelines"
	KeySplit                   = "split"
)

// MinInterRaterKappa is the reliability floor a dataset must meet to exist.
const MinInterRaterKappa = 0.7

// UnknownSource is reported when the metadata declares no provenance.
const UnknownSource = "unknown"

// Metadata carries provenance and annotation-quality facts about a dataset.
// Values are untyped; the accessors coerce them.
type Metadata map[string]any

// Clone returns a deep copy of nested maps and slices.
func (m Metadata) Clone() Metadata {
	if m == nil {
		return Metadata{}
	}
	out := make(Metadata, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

// Has reports whether key is present.
func (m Metadata) Has(key string) bool {
	_, ok := m[key]
	return ok
}

// Source returns the declared provenance, or UnknownSource.
func (m Metadata) Source() string {
	v, ok := m[KeySource]
	if !ok || v == nil {
		return UnknownSource
	}
	s := cast.ToString(v)
	if s == "" {
		return UnknownSource
	}
	return s
}

// Split returns the split tag, empty for an unsplit dataset.
func (m Metadata) Split() string {
	return cast.ToString(m[KeySplit])
}

// InterRaterKappa returns the reported annotator agreement. present is false
// when no reliability block exists. A block without a kappa entry reads as 0.
func (m Metadata) InterRaterKappa() (kappa float64, present bool, err error) {
	raw, ok := m[KeyInterRaterReliability]
	if !ok {
		return 0, false, nil
	}

	block, err := toStringMap(raw)
	if err != nil {
		return 0, true, fmt.Errorf("%s must be a mapping: %w", KeyInterRaterReliability, err)
	}

	v, ok := block[KeyCohensKappa]
	if !ok || v == nil {
		return 0, true, nil
	}
	kappa, err = cast.ToFloat64E(v)
	if err != nil {
		return 0, true, fmt.Errorf("%s.%s is not numeric: %w", KeyInterRaterReliability, KeyCohensKappa, err)
	}
	if math.IsNaN(kappa) || math.IsInf(kappa, 0) {
		return 0, true, fmt.Errorf("%s.%s is not a finite number: %v", KeyInterRaterReliability, KeyCohensKappa, v)
	}
	return kappa, true, nil
}

// SampleSize returns the reported annotation sample size.
func (m Metadata) SampleSize() (n int, present bool, err error) {
	return m.intValue(KeySampleSize)
}

// NumAnnotators returns the reported number of annotators.
func (m Metadata) NumAnnotators() (n int, present bool, err error) {
	return m.intValue(KeyNumAnnotators)
}

// HasAnnotationGuidelines reports the documented-guidelines flag. Absent or
// unparseable values read as false.
func (m Metadata) HasAnnotationGuidelines() bool {
	v, ok := m[KeyHasAnnotationGuidelines]
	if !ok {
		return false
	}
	b, err := cast.ToBoolE(v)
	return err == nil && b
}

func (m Metadata) intValue(key string) (int, bool, error) {
	v, ok := m[key]
	if !ok {
		return 0, false, nil
	}
	n, err := cast.ToIntE(v)
	if err != nil {
		return 0, true, fmt.Errorf("%s is not an integer: %w", key, err)
	}
	return n, true, nil
}

func toStringMap(v any) (map[string]any, error) {
	switch t := v.(type) {
	case Metadata:
		return t, nil
	case map[string]float64:
		out := make(map[string]any, len(t))
		for k, f := range t {
			out[k] = f
		}
		return out, nil
	default:
		if m, err := cast.ToStringMapE(v); err == nil {
			return m, nil
		}
		rv := reflect.ValueOf(v)
		if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
			return nil, fmt.Errorf("unable to cast %#v of type %T to map[string]any", v, v)
		}
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[iter.Key().String()] = iter.Value().Interface()
		}
		return out, nil
	}
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case Metadata:
		return t.Clone()
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, inner := range t {
			out[k] = cloneValue(inner)
		}
		return out
	case map[string]float64:
		out := make(map[string]float64, len(t))
		for k, f := range t {
			out[k] = f
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, inner := range t {
			out[i] = cloneValue(inner)
		}
		return out
	case []string:
		return append([]string(nil), t...)
	default:
		return v
	}
}
