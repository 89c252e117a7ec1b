package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gomeasure/domain/groundtruth"
	"gomeasure/domain/validation"
	"gomeasure/internal/circularity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecord() validation.Record {
	return validation.Record{
		Name:              "toxicity",
		Description:       "Flags toxic comments",
		GroundTruthSource: "expert-panel",
		ValidationMetrics: validation.Metrics{
			Accuracy:        0.9,
			Precision:       0.8,
			Recall:          0.85,
			F1:              0.82,
			CohensKappa:     0.75,
			ConfusionMatrix: [][]int{{40, 5}, {5, 50}},
			Classes:         []string{"0", "1"},
			ConfidenceIntervals: map[string]validation.Interval{
				"f1": {Lower: 0.78, Upper: 0.86},
			},
			ConfidenceLevel: 0.95,
			SampleSize:      100,
			Timestamp:       time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		},
		Limitations: []string{"English only"},
		IsValidated: true,
	}
}

func TestRecordMarkdown(t *testing.T) {
	md := RecordMarkdown(sampleRecord())

	assert.True(t, strings.HasPrefix(md, "# Validation Report: toxicity\n"))
	assert.Contains(t, md, "- **Ground truth source:** expert-panel")
	assert.Contains(t, md, "- **Validated:** 2024-03-01T12:00:00Z")
	assert.Contains(t, md, "| F1 | 0.820 | [0.780, 0.860] |")
	assert.Contains(t, md, "| Accuracy | 0.900 |  |")
	assert.Contains(t, md, "Intervals are 95% percentile bootstrap.")
	assert.Contains(t, md, "| 1 | 5 | 50 |")
	assert.Contains(t, md, "1. English only")
}

func TestRecordMarkdownWithoutLimitations(t *testing.T) {
	r := sampleRecord()
	r.Limitations = nil
	assert.Contains(t, RecordMarkdown(r), validation.NoLimitations)
}

func TestPreflightMarkdown(t *testing.T) {
	detector := circularity.NewDetector()

	passed := detector.Audit(groundtruth.Metadata{
		groundtruth.KeySource:                  "panel",
		groundtruth.KeyInterRaterReliability:   map[string]any{groundtruth.KeyCohensKappa: 0.9},
		groundtruth.KeySampleSize:              500,
		groundtruth.KeyNumAnnotators:           3,
		groundtruth.KeyHasAnnotationGuidelines: true,
	}, 500, "", "")
	require.True(t, passed.Passed())
	md := PreflightMarkdown("gt.xlsx", passed)
	assert.Contains(t, md, "# Ground Truth Preflight: gt.xlsx")
	assert.Contains(t, md, "- **Source:** panel")
	assert.Contains(t, md, "**PASSED**")

	failed := detector.Audit(groundtruth.Metadata{}, 10, "keyword dictionary lookup", "dictionary of slurs")
	issues := failed.Issues()
	require.Len(t, issues, 5)
	assert.Equal(t, circularity.CategoryCircularLogic, issues[4].Category)

	md = PreflightMarkdown("gt.csv", failed)
	assert.Contains(t, md, "**FAILED**: 5 issue(s).")
	assert.Contains(t, md, "| CRITICAL | circular_logic |")
	assert.Contains(t, md, "Circular validation detected")
}

func TestToHTML(t *testing.T) {
	page := string(ToHTML(RecordMarkdown(sampleRecord()), "toxicity"))
	assert.Contains(t, page, "<title>toxicity</title>")
	assert.Contains(t, page, "<table>")
	assert.Contains(t, page, "Validation Report: toxicity")
}

func TestWrite(t *testing.T) {
	dir := t.TempDir()
	md := RecordMarkdown(sampleRecord())

	mdPath := filepath.Join(dir, "report.md")
	require.NoError(t, Write(mdPath, md, "toxicity"))
	data, err := os.ReadFile(mdPath)
	require.NoError(t, err)
	assert.Equal(t, md, string(data))

	htmlPath := filepath.Join(dir, "report.html")
	require.NoError(t, Write(htmlPath, md, "toxicity"))
	data, err = os.ReadFile(htmlPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<html")

	assert.Error(t, Write(filepath.Join(dir, "missing", "r.md"), md, "x"))
}
