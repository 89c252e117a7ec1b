// Package circularity lints a validation setup before it is trusted. It
// flags measure and ground-truth methods that share a known circular pattern
// and checks the annotation-quality facts a ground-truth set reports.
//
// Both checks are advisory heuristics over descriptions and metadata. A
// clean result is not a proof of independence.
package circularity

import (
	"fmt"
	"log/slog"
	"strings"

	"gomeasure/domain/groundtruth"
)

// PatternPair is a known circular combination: a measure whose method
// mentions Measure validated on ground truth whose method mentions
// GroundTruth.
type PatternPair struct {
	Measure     string `json:"measure" yaml:"measure"`
	GroundTruth string `json:"ground_truth" yaml:"ground_truth"`
}

// DefaultPatterns lists the circular combinations checked by default, in
// match order.
var DefaultPatterns = []PatternPair{
	{Measure: "pattern matching", GroundTruth: "pattern matching"},
	{Measure: "dictionary", GroundTruth: "dictionary"},
	{Measure: "same model", GroundTruth: "same model"},
	{Measure: "self-reported", GroundTruth: "self-reported"},
	{Measure: "model confidence", GroundTruth: "model output"},
}

// QualityPolicy holds the ground-truth quality bars.
type QualityPolicy struct {
	MinKappa      float64
	MinSampleSize int
	MinAnnotators int
}

// DefaultQualityPolicy is kappa 0.7, 100 samples and 3 annotators.
var DefaultQualityPolicy = QualityPolicy{
	MinKappa:      groundtruth.MinInterRaterKappa,
	MinSampleSize: 100,
	MinAnnotators: 3,
}

// IndependenceResult is the outcome of CheckIndependence.
type IndependenceResult struct {
	Independent bool
	Explanation string
	// Pair is the offending pattern, nil when independent.
	Pair *PatternPair
}

// Issue converts a circular result into a methodology issue.
func (r IndependenceResult) Issue() (Issue, bool) {
	if r.Independent {
		return Issue{}, false
	}
	return Issue{
		Severity:       SeverityCritical,
		Category:       CategoryCircularLogic,
		Description:    r.Explanation,
		Location:       "measure method / ground truth method",
		Recommendation: "Collect ground truth with a method that shares nothing with the measure",
	}, true
}

// QualityResult is the outcome of ValidateGroundTruthQuality.
type QualityResult struct {
	Passed bool
	Issues []Issue
}

// Descriptions returns the issue descriptions in order.
func (r QualityResult) Descriptions() []string {
	out := make([]string, len(r.Issues))
	for i, issue := range r.Issues {
		out[i] = issue.Description
	}
	return out
}

// Detector runs the pre-flight checks.
type Detector struct {
	patterns []PatternPair
	policy   QualityPolicy
	logger   *slog.Logger
}

// Option configures a Detector.
type Option func(*Detector)

// WithPatterns replaces the pattern table.
func WithPatterns(patterns []PatternPair) Option {
	return func(d *Detector) { d.patterns = patterns }
}

// WithPolicy replaces the quality bars.
func WithPolicy(p QualityPolicy) Option {
	return func(d *Detector) { d.policy = p }
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(d *Detector) {
		if l != nil {
			d.logger = l
		}
	}
}

// NewDetector creates a detector with the default table and policy.
func NewDetector(opts ...Option) *Detector {
	d := &Detector{
		patterns: DefaultPatterns,
		policy:   DefaultQualityPolicy,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// CheckIndependence compares the two method descriptions against the pattern
// table, case-insensitively. The first pair whose members both appear makes
// the setup not independent.
func (d *Detector) CheckIndependence(measureMethod, groundTruthMethod string) IndependenceResult {
	m := strings.ToLower(measureMethod)
	gt := strings.ToLower(groundTruthMethod)

	for _, p := range d.patterns {
		if strings.Contains(m, strings.ToLower(p.Measure)) && strings.Contains(gt, strings.ToLower(p.GroundTruth)) {
			pair := p
			explanation := fmt.Sprintf("Circular validation detected: measure uses '%s' and ground truth uses '%s'. Validation must be independent.",
				p.Measure, p.GroundTruth)
			d.logger.Warn("circular validation pattern",
				"component", "circularity", "measure_pattern", p.Measure, "ground_truth_pattern", p.GroundTruth)
			return IndependenceResult{Explanation: explanation, Pair: &pair}
		}
	}
	return IndependenceResult{Independent: true, Explanation: "Validation appears independent"}
}

// ValidateGroundTruthQuality checks reliability, sample size, annotator count
// and documented guidelines, in that order, and reports every unmet check.
func (d *Detector) ValidateGroundTruthQuality(md groundtruth.Metadata) QualityResult {
	var issues []Issue
	issues = append(issues, d.checkReliability(md)...)
	issues = append(issues, d.checkSampleSize(md)...)
	issues = append(issues, d.checkAnnotators(md)...)
	issues = append(issues, d.checkGuidelines(md)...)

	for _, issue := range issues {
		d.logger.Debug("ground truth quality issue",
			"component", "circularity", "category", issue.Category, "severity", issue.Severity)
	}
	return QualityResult{Passed: len(issues) == 0, Issues: issues}
}

func (d *Detector) checkReliability(md groundtruth.Metadata) []Issue {
	const location = "metadata." + groundtruth.KeyInterRaterReliability + "." + groundtruth.KeyCohensKappa
	issue := Issue{
		Severity:       SeverityCritical,
		Category:       CategoryReliability,
		Location:       location,
		Recommendation: fmt.Sprintf("Report Cohen's kappa between annotators and re-annotate until it reaches %.1f", d.policy.MinKappa),
	}

	kappa, present, err := md.InterRaterKappa()
	switch {
	case err != nil:
		issue.Description = fmt.Sprintf("Inter-rater reliability unreadable: %v", err)
	case !present:
		issue.Description = "Inter-rater reliability not reported"
	case !(kappa >= d.policy.MinKappa):
		issue.Description = fmt.Sprintf("Inter-rater reliability (κ=%.2f) below threshold %.1f", kappa, d.policy.MinKappa)
	default:
		return nil
	}
	return []Issue{issue}
}

func (d *Detector) checkSampleSize(md groundtruth.Metadata) []Issue {
	issue := Issue{
		Severity:       SeverityMajor,
		Category:       CategorySampleSize,
		Location:       "metadata." + groundtruth.KeySampleSize,
		Recommendation: fmt.Sprintf("Annotate at least %d samples", d.policy.MinSampleSize),
	}

	n, present, err := md.SampleSize()
	switch {
	case err != nil:
		issue.Description = fmt.Sprintf("Sample size unreadable: %v", err)
	case !present:
		issue.Description = "Sample size not reported"
	case n < d.policy.MinSampleSize:
		issue.Description = fmt.Sprintf("Sample size (n=%d) below recommended minimum of %d", n, d.policy.MinSampleSize)
	default:
		return nil
	}
	return []Issue{issue}
}

func (d *Detector) checkAnnotators(md groundtruth.Metadata) []Issue {
	issue := Issue{
		Severity:       SeverityMajor,
		Category:       CategoryAnnotators,
		Location:       "metadata." + groundtruth.KeyNumAnnotators,
		Recommendation: fmt.Sprintf("Use at least %d independent annotators", d.policy.MinAnnotators),
	}

	num, present, err := md.NumAnnotators()
	switch {
	case err != nil:
		issue.Description = fmt.Sprintf("Number of annotators unreadable: %v", err)
	case !present:
		issue.Description = "Number of annotators not reported"
	case num < d.policy.MinAnnotators:
		issue.Description = fmt.Sprintf("Number of annotators (%d) below minimum of %d", num, d.policy.MinAnnotators)
	default:
		return nil
	}
	return []Issue{issue}
}

func (d *Detector) checkGuidelines(md groundtruth.Metadata) []Issue {
	if md.HasAnnotationGuidelines() {
		return nil
	}
	return []Issue{{
		Severity:       SeverityCritical,
		Category:       CategoryGuidelines,
		Description:    "Annotation guidelines not documented",
		Location:       "metadata." + groundtruth.KeyHasAnnotationGuidelines,
		Recommendation: "Write and publish the annotation guidelines used by every annotator",
	}}
}
