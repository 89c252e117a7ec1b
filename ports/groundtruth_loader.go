package ports

import (
	"context"

	"gomeasure/domain/groundtruth"
)

// TextDataset is ground truth with text samples and string labels, the shape
// produced by file loaders.
type TextDataset = groundtruth.Dataset[string, string]

// GroundTruthLoader reads an annotated dataset from an external source.
type GroundTruthLoader interface {
	Load(ctx context.Context) (*TextDataset, error)
}
