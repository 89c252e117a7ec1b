package excel

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"gomeasure/domain/core"
	"gomeasure/domain/groundtruth"
	"gomeasure/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeWorkbook(t *testing.T, rows [][]any, metadata [][]any) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	if metadata != nil {
		_, err := f.NewSheet("metadata")
		require.NoError(t, err)
		for i, row := range metadata {
			cell, err := excelize.CoordinatesToCellName(1, i+1)
			require.NoError(t, err)
			require.NoError(t, f.SetSheetRow("metadata", cell, &row))
		}
	}

	path := filepath.Join(t.TempDir(), "groundtruth.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func annotatedRows(n int) [][]any {
	rows := [][]any{{"id", "text", "label"}}
	for i := 0; i < n; i++ {
		label := "neg"
		if i%3 == 0 {
			label = "pos"
		}
		rows = append(rows, []any{i, fmt.Sprintf("review number %d", i), label})
	}
	return rows
}

func TestLoadWorkbookWithMetadata(t *testing.T) {
	path := writeWorkbook(t, annotatedRows(12), [][]any{
		{"key", "value"},
		{"source", "panel-2024"},
		{"inter_rater_reliability.cohens_kappa", 0.81},
		{"sample_size", 12},
		{"num_annotators", 3},
		{"has_annotation_guidelines", "true"},
	})

	ds, err := NewGroundTruthLoader(DefaultConfig(path), nil).Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 12, ds.Len())
	assert.Equal(t, "review number 0", ds.Sample(0))
	assert.Equal(t, "pos", ds.Label(0))
	assert.Equal(t, []string{"neg", "pos"}, ds.Classes())
	assert.Equal(t, "panel-2024", ds.Source())

	md := ds.Metadata()
	kappa, present, err := md.InterRaterKappa()
	require.NoError(t, err)
	assert.True(t, present)
	assert.Equal(t, 0.81, kappa)
	n, _, err := md.SampleSize()
	require.NoError(t, err)
	assert.Equal(t, 12, n)
	assert.True(t, md.HasAnnotationGuidelines())
}

func TestLoadWorkbookRejectsUnreliableAnnotations(t *testing.T) {
	path := writeWorkbook(t, annotatedRows(5), [][]any{
		{"inter_rater_reliability.cohens_kappa", "0.4"},
	})
	_, err := NewGroundTruthLoader(DefaultConfig(path), nil).Load(context.Background())
	assert.ErrorIs(t, err, core.ErrUnreliableAnnotations)
}

func TestLoadWorkbookWithoutMetadataSheet(t *testing.T) {
	path := writeWorkbook(t, annotatedRows(4), nil)
	ds, err := NewGroundTruthLoader(DefaultConfig(path), nil).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "groundtruth.xlsx", ds.Source())
	assert.False(t, ds.Metadata().Has(groundtruth.KeyInterRaterReliability))
}

func TestLoadCSVWithSidecar(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "labels.csv")
	require.NoError(t, os.WriteFile(path, []byte("text,label\nfast shipping,1\nnever arrived,0\n,0\n\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "labels.metadata.csv"),
		[]byte("key,value\nsource,crowd\nnum_annotators,5\n"), 0o644))

	ds, err := NewGroundTruthLoader(Config{FilePath: path}, nil).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"fast shipping", "never arrived", ""}, ds.Samples())
	assert.Equal(t, []string{"1", "0", "0"}, ds.Labels())
	assert.Equal(t, "crowd", ds.Source())
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := NewGroundTruthLoader(Config{FilePath: filepath.Join(dir, "missing.csv")}, nil).Load(context.Background())
	assert.Equal(t, errors.CodeIOError, errors.GetCode(err))

	noLabel := filepath.Join(dir, "nolabel.csv")
	require.NoError(t, os.WriteFile(noLabel, []byte("text,score\na,1\n"), 0o644))
	_, err = NewGroundTruthLoader(Config{FilePath: noLabel}, nil).Load(context.Background())
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))

	emptyLabel := filepath.Join(dir, "empty.csv")
	require.NoError(t, os.WriteFile(emptyLabel, []byte("text,label\na,\n"), 0o644))
	_, err = NewGroundTruthLoader(Config{FilePath: emptyLabel}, nil).Load(context.Background())
	assert.ErrorContains(t, err, "data row 1 has no label")
}

func TestMetadataFromPairs(t *testing.T) {
	md := MetadataFromPairs(map[string]string{
		"source":                              "x",
		"inter_rater_reliability.cohens_kappa": "0.9",
		"inter_rater_reliability.method":       "pairwise",
	})
	assert.Equal(t, groundtruth.Metadata{
		"source": "x",
		"inter_rater_reliability": map[string]any{
			"cohens_kappa": "0.9",
			"method":       "pairwise",
		},
	}, md)
}

func TestMetadataFromPairsNestedKeyWins(t *testing.T) {
	pairs := map[string]string{
		"inter_rater_reliability":              "0.2",
		"inter_rater_reliability.cohens_kappa": "0.9",
	}
	for range 20 {
		md := MetadataFromPairs(pairs)
		kappa, present, err := md.InterRaterKappa()
		require.NoError(t, err)
		assert.True(t, present)
		assert.Equal(t, 0.9, kappa)
	}
}
