package excel

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"path/filepath"
	"slices"
	"strings"

	"gomeasure/domain/groundtruth"
	"gomeasure/internal/errors"
	"gomeasure/ports"
)

// GroundTruthLoader builds a text dataset from a spreadsheet
type GroundTruthLoader struct {
	config Config
	logger *slog.Logger
}

var _ ports.GroundTruthLoader = (*GroundTruthLoader)(nil)

// NewGroundTruthLoader creates a loader. Empty config fields take the
// DefaultConfig values.
func NewGroundTruthLoader(config Config, logger *slog.Logger) *GroundTruthLoader {
	def := DefaultConfig(config.FilePath)
	if config.Sheet == "" {
		config.Sheet = def.Sheet
	}
	if config.SampleColumn == "" {
		config.SampleColumn = def.SampleColumn
	}
	if config.LabelColumn == "" {
		config.LabelColumn = def.LabelColumn
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &GroundTruthLoader{config: config, logger: logger}
}

// Load reads samples, labels and metadata. Rows with an empty label are
// rejected rather than skipped so the dataset matches the file.
func (l *GroundTruthLoader) Load(ctx context.Context) (*ports.TextDataset, error) {
	reader := NewDataReader(l.config.FilePath, l.logger)

	table, err := reader.ReadTable(l.config.Sheet)
	if err != nil {
		return nil, err
	}
	for _, col := range []string{l.config.SampleColumn, l.config.LabelColumn} {
		if !table.HasColumn(col) {
			return nil, errors.InvalidInput(fmt.Sprintf("%s: column %q not found in header %v", l.config.FilePath, col, table.Headers))
		}
	}

	samples := make([]string, 0, len(table.Rows))
	labels := make([]string, 0, len(table.Rows))
	for i, row := range table.Rows {
		label := row[l.config.LabelColumn]
		if label == "" {
			return nil, errors.InvalidInput(fmt.Sprintf("%s: data row %d has no %s", l.config.FilePath, i+1, l.config.LabelColumn))
		}
		samples = append(samples, row[l.config.SampleColumn])
		labels = append(labels, label)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pairs, err := reader.ReadKeyValues(l.config.MetadataSheet)
	if err != nil {
		return nil, err
	}
	md := MetadataFromPairs(pairs)
	if !md.Has(groundtruth.KeySource) {
		md[groundtruth.KeySource] = filepath.Base(l.config.FilePath)
	}

	ds, err := groundtruth.New(samples, labels, md)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", l.config.FilePath, err)
	}
	l.logger.Info("ground truth loaded", "component", "excel", "file", l.config.FilePath,
		"samples", ds.Len(), "classes", len(ds.Classes()), "source", ds.Source())
	return ds, nil
}

// MetadataFromPairs turns flat key/value pairs into metadata. Dotted keys
// such as inter_rater_reliability.cohens_kappa become nested maps. Values
// stay strings; the metadata accessors coerce them. Keys are applied in sorted
// order, so a nested key replaces a flat value under the same prefix.
func MetadataFromPairs(pairs map[string]string) groundtruth.Metadata {
	md := groundtruth.Metadata{}
	for _, key := range slices.Sorted(maps.Keys(pairs)) {
		value := pairs[key]
		parts := strings.Split(key, ".")
		node := map[string]any(md)
		for _, part := range parts[:len(parts)-1] {
			child, ok := node[part].(map[string]any)
			if !ok {
				child = map[string]any{}
				node[part] = child
			}
			node = child
		}
		node[parts[len(parts)-1]] = value
	}
	return md
}
