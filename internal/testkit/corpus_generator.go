package testkit

import (
	"fmt"
	"strings"

	"gomeasure/domain/groundtruth"
	"gomeasure/internal/rng"
)

// CorpusGeneratorConfig configures the synthetic annotated corpus.
type CorpusGeneratorConfig struct {
	DocumentCount int      `json:"document_count"`
	PositiveRate  float64  `json:"positive_rate"`
	NoiseRate     float64  `json:"noise_rate"` // share of documents whose wording contradicts the label
	Keywords      []string `json:"keywords"`
	Source        string   `json:"source"`
	Kappa         float64  `json:"kappa"`
	NumAnnotators int      `json:"num_annotators"`
	Guidelines    bool     `json:"guidelines"`
	Seed          int64    `json:"seed"`
}

// DefaultCorpusConfig returns a corpus that passes every quality check.
func DefaultCorpusConfig() CorpusGeneratorConfig {
	return CorpusGeneratorConfig{
		DocumentCount: 200,
		PositiveRate:  0.4,
		NoiseRate:     0.05,
		Keywords:      []string{"refund", "broken", "late"},
		Source:        "synthetic-expert-panel",
		Kappa:         0.82,
		NumAnnotators: 3,
		Guidelines:    true,
		Seed:          42,
	}
}

// Document is one synthetic sample.
type Document struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

var fillerWords = []string{
	"order", "package", "arrived", "customer", "service", "thanks",
	"the", "was", "item", "store", "delivery", "great", "okay", "box",
}

// CorpusGenerator produces labelled documents where label 1 documents mention
// one of the keywords, apart from a configurable noise share.
type CorpusGenerator struct {
	config CorpusGeneratorConfig
	rng    *rng.Stream
}

// NewCorpusGenerator creates a generator seeded from config.Seed.
func NewCorpusGenerator(config CorpusGeneratorConfig) *CorpusGenerator {
	return &CorpusGenerator{
		config: config,
		rng:    rng.New(config.Seed, "testkit.corpus"),
	}
}

// Generate returns documents and their labels.
func (g *CorpusGenerator) Generate() ([]Document, []int) {
	docs := make([]Document, g.config.DocumentCount)
	labels := make([]int, g.config.DocumentCount)

	for i := range docs {
		label := 0
		if g.rng.Float64() < g.config.PositiveRate {
			label = 1
		}
		mention := label == 1
		if g.rng.Float64() < g.config.NoiseRate {
			mention = !mention
		}
		docs[i] = Document{ID: fmt.Sprintf("doc-%04d", i), Text: g.text(mention)}
		labels[i] = label
	}
	return docs, labels
}

func (g *CorpusGenerator) text(mention bool) string {
	words := make([]string, 0, 9)
	for range 8 {
		words = append(words, fillerWords[g.rng.IntN(len(fillerWords))])
	}
	if mention && len(g.config.Keywords) > 0 {
		kw := g.config.Keywords[g.rng.IntN(len(g.config.Keywords))]
		pos := g.rng.IntN(len(words) + 1)
		words = append(words[:pos], append([]string{kw}, words[pos:]...)...)
	}
	return strings.Join(words, " ")
}

// Metadata returns the provenance block matching the config.
func (g *CorpusGenerator) Metadata() groundtruth.Metadata {
	return groundtruth.Metadata{
		groundtruth.KeySource: g.config.Source,
		groundtruth.KeyInterRaterReliability: map[string]any{
			groundtruth.KeyCohensKappa: g.config.Kappa,
		},
		groundtruth.KeySampleSize:              g.config.DocumentCount,
		groundtruth.KeyNumAnnotators:           g.config.NumAnnotators,
		groundtruth.KeyHasAnnotationGuidelines: g.config.Guidelines,
	}
}

// Dataset generates a corpus and wraps it as ground truth.
func (g *CorpusGenerator) Dataset() (*groundtruth.Dataset[Document, int], error) {
	docs, labels := g.Generate()
	return groundtruth.New(docs, labels, g.Metadata())
}

// MustCorpus returns the default corpus with n documents or panics.
func MustCorpus(n int, seed int64) *groundtruth.Dataset[Document, int] {
	cfg := DefaultCorpusConfig()
	cfg.DocumentCount = n
	cfg.Seed = seed
	ds, err := NewCorpusGenerator(cfg).Dataset()
	if err != nil {
		panic(err)
	}
	return ds
}
