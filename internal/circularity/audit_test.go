package circularity

import (
	"testing"

	"gomeasure/domain/groundtruth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditCombinesChecks(t *testing.T) {
	d := NewDetector()
	md := groundtruth.Metadata{
		groundtruth.KeySource:                  "panel",
		groundtruth.KeyInterRaterReliability:   map[string]any{groundtruth.KeyCohensKappa: 0.9},
		groundtruth.KeySampleSize:              40,
		groundtruth.KeyNumAnnotators:           3,
		groundtruth.KeyHasAnnotationGuidelines: true,
	}

	a := d.Audit(md, 40, "", "")
	assert.Equal(t, "panel", a.Source)
	assert.Nil(t, a.Independence)
	require.Len(t, a.Issues(), 1)
	assert.Equal(t, CategorySampleSize, a.Issues()[0].Category)
	assert.Empty(t, a.Critical())
	assert.False(t, a.Passed())

	a = d.Audit(md, 40, "uses the same model", "labels from the same model")
	require.NotNil(t, a.Independence)
	assert.False(t, a.Independence.Independent)
	critical := a.Critical()
	require.Len(t, critical, 1)
	assert.Equal(t, CategoryCircularLogic, critical[0].Category)
}

func TestAuditPasses(t *testing.T) {
	md := groundtruth.Metadata{
		groundtruth.KeyInterRaterReliability:   map[string]any{groundtruth.KeyCohensKappa: 0.8},
		groundtruth.KeySampleSize:              150,
		groundtruth.KeyNumAnnotators:           4,
		groundtruth.KeyHasAnnotationGuidelines: "true",
	}
	a := NewDetector().Audit(md, 150, "regex heuristics", "expert annotation")
	assert.True(t, a.Passed(), a.Issues())
}
