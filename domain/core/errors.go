package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Ground truth construction and splitting
	ErrShapeMismatch         = errors.New("samples and labels must have the same length")
	ErrUnreliableAnnotations = errors.New("inter-rater reliability below threshold")
	ErrInvalidRatios         = errors.New("split ratios must sum to 1.0")

	// Validation gate
	ErrMissingGroundTruth     = errors.New("cannot validate without ground truth dataset")
	ErrInsufficientSampleSize = errors.New("ground truth dataset too small")
	ErrThresholdNotMet        = errors.New("validation metrics below threshold")
	ErrNotValidated           = errors.New("measure has not been validated")
	ErrMeasureFailed          = errors.New("measure failed to score sample")
	ErrPreflightFailed        = errors.New("ground truth failed the preflight audit")

	// Metrics
	ErrEmptyInput = errors.New("no predictions to evaluate")

	// Storage
	ErrNotFound = errors.New("resource not found")
)

// ThresholdNotMetError reports the metrics that failed the validation bar.
type ThresholdNotMetError struct {
	Measure  string
	F1       float64
	Kappa    float64
	MinF1    float64
	MinKappa float64
}

func (e *ThresholdNotMetError) Error() string {
	return fmt.Sprintf("validation failed for '%s': F1 %.3f (threshold: %g), Cohen's kappa %.3f (threshold: %g)",
		e.Measure, e.F1, e.MinF1, e.Kappa, e.MinKappa)
}

// Is lets errors.Is(err, ErrThresholdNotMet) match.
func (e *ThresholdNotMetError) Is(target error) bool {
	return target == ErrThresholdNotMet
}

// Error constructors with context
func NewNotValidatedError(measure string) error {
	return fmt.Errorf("%w: cannot use measure '%s' before validation, call ValidateAgainstGroundTruth first", ErrNotValidated, measure)
}

func NewNotFoundError(resource string, id string) error {
	return fmt.Errorf("%w: %s with id %s", ErrNotFound, resource, id)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConstructionError reports whether err aborted a dataset construction.
func IsConstructionError(err error) bool {
	return errors.Is(err, ErrShapeMismatch) ||
		errors.Is(err, ErrUnreliableAnnotations)
}

// IsRecoverableValidationError reports whether the caller may fix its inputs and retry.
func IsRecoverableValidationError(err error) bool {
	return errors.Is(err, ErrThresholdNotMet) ||
		errors.Is(err, ErrInsufficientSampleSize) ||
		errors.Is(err, ErrMissingGroundTruth) ||
		errors.Is(err, ErrNotValidated)
}
