// Package manifest loads ground truth from a YAML (or JSON) manifest that
// keeps the annotated samples and their provenance in one document.
package manifest

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gomeasure/domain/groundtruth"
	"gomeasure/internal/errors"
	"gomeasure/ports"

	"gopkg.in/yaml.v3"
)

// Manifest is the on-disk document.
//
//	source: expert-panel-2024
//	metadata:
//	  inter_rater_reliability:
//	    cohens_kappa: 0.82
//	  num_annotators: 3
//	samples:
//	  - text: "arrived broken"
//	    label: negative
type Manifest struct {
	Source   string         `yaml:"source,omitempty"`
	Metadata map[string]any `yaml:"metadata,omitempty"`
	Samples  []Sample       `yaml:"samples"`
}

// Sample is one annotated item.
type Sample struct {
	Text  string `yaml:"text"`
	Label string `yaml:"label"`
}

// Parse decodes a manifest. JSON documents parse too.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, errors.WithCode(errors.CodeInvalidInput, fmt.Errorf("failed to parse manifest: %w", err))
	}
	if len(m.Samples) == 0 {
		return nil, errors.InvalidInput("manifest has no samples")
	}
	for i, s := range m.Samples {
		if s.Label == "" {
			return nil, errors.InvalidInput(fmt.Sprintf("manifest sample %d has no label", i+1))
		}
	}
	return &m, nil
}

// Dataset builds the ground truth. A top-level source wins over one in the
// metadata block.
func (m *Manifest) Dataset() (*ports.TextDataset, error) {
	md := groundtruth.Metadata(m.Metadata).Clone()
	if m.Source != "" {
		md[groundtruth.KeySource] = m.Source
	}
	samples := make([]string, len(m.Samples))
	labels := make([]string, len(m.Samples))
	for i, s := range m.Samples {
		samples[i] = s.Text
		labels[i] = s.Label
	}
	return groundtruth.New(samples, labels, md)
}

// Marshal encodes the manifest as YAML.
func (m *Manifest) Marshal() ([]byte, error) {
	return yaml.Marshal(m)
}

// Loader reads a manifest file.
type Loader struct {
	path   string
	logger *slog.Logger
}

var _ ports.GroundTruthLoader = (*Loader)(nil)

func NewLoader(path string, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{path: path, logger: logger.With("component", "manifest")}
}

func (l *Loader) Load(ctx context.Context) (*ports.TextDataset, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, errors.IOError(l.path, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "%s", l.path)
	}
	if m.Source == "" && !groundtruth.Metadata(m.Metadata).Has(groundtruth.KeySource) {
		m.Source = filepath.Base(l.path)
	}
	ds, err := m.Dataset()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", l.path, err)
	}
	l.logger.Info("ground truth loaded", "file", l.path, "samples", ds.Len(), "source", ds.Source())
	return ds, nil
}
