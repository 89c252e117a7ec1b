package telemetry

import (
	"strings"
	"testing"
	"time"

	"gomeasure/internal/measure"
	"gomeasure/internal/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ measure.Observer = (*Recorder)(nil)
	_ metrics.Observer = (*Recorder)(nil)
)

func TestRecorderCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewRecorder(reg, "test")

	r.ObserveValidation("oracle", measure.OutcomeValidated, 20*time.Millisecond)
	r.ObserveValidation("oracle", measure.OutcomeThresholdNotMet, 5*time.Millisecond)
	r.ObserveValidation("oracle", measure.OutcomeValidated, time.Millisecond)
	r.ObserveBootstrap(1000, 10*time.Millisecond)
	r.ObserveBootstrap(500, 10*time.Millisecond)
	r.ObservePreflightIssue("sample_size")

	assert.Equal(t, 2.0, testutil.ToFloat64(r.validations.WithLabelValues("oracle", measure.OutcomeValidated)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.validations.WithLabelValues("oracle", measure.OutcomeThresholdNotMet)))
	assert.Equal(t, 1500.0, testutil.ToFloat64(r.bootstrapResamples))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.preflightIssues.WithLabelValues("sample_size")))

	expected := `
# HELP test_bootstrap_resamples_total Bootstrap resamples drawn
# TYPE test_bootstrap_resamples_total counter
test_bootstrap_resamples_total 1500
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "test_bootstrap_resamples_total"))
}

func TestRecorderRegistersOncePerRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewRecorder(reg, "dup")
	assert.Panics(t, func() { NewRecorder(reg, "dup") })
	assert.NotPanics(t, func() { NewRecorder(prometheus.NewRegistry(), "dup") })
}
