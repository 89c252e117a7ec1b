package circularity

import (
	"fmt"
	"strings"
)

// Severity ranks a methodology issue.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityMajor    Severity = "major"
	SeverityMinor    Severity = "minor"
)

// Category groups methodology issues. The values are shared with the source
// auditor so reports from both tools can be merged.
type Category string

const (
	CategoryCircularLogic Category = "circular_logic"
	CategoryReliability   Category = "inter_rater_reliability"
	CategorySampleSize    Category = "sample_size"
	CategoryAnnotators    Category = "annotator_count"
	CategoryGuidelines    Category = "annotation_guidelines"
)

// Issue is one methodology finding.
type Issue struct {
	Severity       Severity `json:"severity"`
	Category       Category `json:"category"`
	Description    string   `json:"description"`
	Location       string   `json:"location"`
	Recommendation string   `json:"recommendation"`
}

func (i Issue) String() string {
	return fmt.Sprintf("[%s] %s at %s\n  %s\n  -> %s",
		strings.ToUpper(string(i.Severity)), i.Category, i.Location, i.Description, i.Recommendation)
}
