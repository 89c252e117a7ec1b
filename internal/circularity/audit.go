package circularity

import "gomeasure/domain/groundtruth"

// Audit is the preflight outcome for one ground-truth dataset.
type Audit struct {
	Source       string
	SampleSize   int
	Quality      QualityResult
	Independence *IndependenceResult
}

// Issues returns every finding in checklist order, independence last.
func (a Audit) Issues() []Issue {
	issues := append([]Issue(nil), a.Quality.Issues...)
	if a.Independence != nil {
		if issue, ok := a.Independence.Issue(); ok {
			issues = append(issues, issue)
		}
	}
	return issues
}

// Passed reports whether the audit found nothing.
func (a Audit) Passed() bool {
	return len(a.Issues()) == 0
}

// Critical returns the findings that block a trustworthy validation.
func (a Audit) Critical() []Issue {
	var out []Issue
	for _, issue := range a.Issues() {
		if issue.Severity == SeverityCritical {
			out = append(out, issue)
		}
	}
	return out
}

// Audit runs the quality checklist on md. The independence check runs only
// when both method descriptions are given.
func (d *Detector) Audit(md groundtruth.Metadata, sampleSize int, measureMethod, groundTruthMethod string) Audit {
	a := Audit{
		Source:     md.Source(),
		SampleSize: sampleSize,
		Quality:    d.ValidateGroundTruthQuality(md),
	}
	if measureMethod != "" && groundTruthMethod != "" {
		independence := d.CheckIndependence(measureMethod, groundTruthMethod)
		a.Independence = &independence
	}
	return a
}
