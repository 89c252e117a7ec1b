package app

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"time"

	"gomeasure/domain/core"
	"gomeasure/domain/groundtruth"
	"gomeasure/domain/validation"
	"gomeasure/internal/circularity"
	"gomeasure/internal/measure"
	"gomeasure/ports"
)

// PreflightObserver is notified once per preflight finding.
type PreflightObserver interface {
	ObservePreflightIssue(category string)
}

// ValidationService audits ground truth, validates measures against it and
// appends every successful validation to the record ledger.
type ValidationService struct {
	detector *circularity.Detector
	ledger   ports.RecordWriter
	observer PreflightObserver
	logger   *slog.Logger
}

// NewValidationService creates a validation service. observer may be nil.
func NewValidationService(detector *circularity.Detector, ledger ports.RecordWriter, observer PreflightObserver, logger *slog.Logger) *ValidationService {
	if detector == nil {
		detector = circularity.NewDetector()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ValidationService{
		detector: detector,
		ledger:   ledger,
		observer: observer,
		logger:   logger.With("component", "validation_service"),
	}
}

// ValidationRequest describes one validation run
type ValidationRequest struct {
	MeasureMethod     string
	GroundTruthMethod string
	Thresholds        validation.Thresholds
	// Strict aborts before scoring when the audit has critical findings.
	Strict bool
}

// ValidationResult contains the audit, the metrics and the ledger entry
type ValidationResult struct {
	Audit     circularity.Audit
	Metrics   *validation.Metrics
	Entry     *validation.LedgerEntry
	RuntimeMs int64
	Success   bool
}

// Preflight audits a dataset's metadata and, when both are given, the
// independence of the two methods.
func (s *ValidationService) Preflight(md groundtruth.Metadata, sampleSize int, measureMethod, groundTruthMethod string) circularity.Audit {
	audit := s.detector.Audit(md, sampleSize, measureMethod, groundTruthMethod)
	for _, issue := range audit.Issues() {
		if s.observer != nil {
			s.observer.ObservePreflightIssue(string(issue.Category))
		}
		s.logger.Warn("preflight issue",
			"severity", issue.Severity, "category", issue.Category, "description", issue.Description)
	}
	return audit
}

// Validate runs preflight, validates the gate and records the result. A
// threshold miss returns the result with its metrics alongside the error;
// nothing is appended to the ledger in that case.
func Validate[S, V any, L cmp.Ordered](ctx context.Context, s *ValidationService, gate *measure.Gate[S, V, L], gt *groundtruth.Dataset[S, L], req ValidationRequest) (*ValidationResult, error) {
	startTime := time.Now()
	result := &ValidationResult{}

	if gt == nil {
		return nil, fmt.Errorf("validate %s: %w", gate.Name(), core.ErrMissingGroundTruth)
	}

	result.Audit = s.Preflight(gt.Metadata(), gt.Len(), req.MeasureMethod, req.GroundTruthMethod)
	if critical := result.Audit.Critical(); req.Strict && len(critical) > 0 {
		return result, fmt.Errorf("validate %s: %w: %d critical issue(s), first: %s",
			gate.Name(), core.ErrPreflightFailed, len(critical), critical[0].Description)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	metrics, err := gate.ValidateAgainstGroundTruth(gt, req.Thresholds)
	result.Metrics = metrics
	if err != nil {
		result.RuntimeMs = time.Since(startTime).Milliseconds()
		return result, fmt.Errorf("validate %s: %w", gate.Name(), err)
	}

	record, err := gate.Record()
	if err != nil {
		return result, err
	}
	entry, err := s.ledger.Append(ctx, record)
	if err != nil {
		return result, fmt.Errorf("failed to record validation of %s: %w", gate.Name(), err)
	}
	result.Entry = entry
	result.RuntimeMs = time.Since(startTime).Milliseconds()
	result.Success = true

	s.logger.Info("validation recorded",
		"measure", gate.Name(), "record_id", entry.ID, "f1", metrics.F1, "kappa", metrics.CohensKappa,
		"preflight_issues", len(result.Audit.Issues()), "runtime_ms", result.RuntimeMs)
	return result, nil
}
