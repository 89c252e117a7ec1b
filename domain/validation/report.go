package validation

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"gomeasure/domain/core"
)

// NoLimitations is printed when a record documents no limitations.
const NoLimitations = "(No limitations documented)"

// NotValidatedReport is the report of a measure that has not passed validation.
func NotValidatedReport(name string) string {
	return fmt.Sprintf("Measure '%s' has not been validated.\n", name)
}

// Report renders the record as a deterministic plain-text summary.
func (r Record) Report() string {
	m := r.ValidationMetrics
	var b strings.Builder

	fmt.Fprintf(&b, "Validation Report: %s\n", r.Name)
	b.WriteString(strings.Repeat("=", 60))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Description: %s\n\n", r.Description)
	fmt.Fprintf(&b, "Ground Truth Source: %s\n\n", r.GroundTruthSource)

	fmt.Fprintf(&b, "Validation Metrics (n=%d):\n", m.SampleSize)
	fmt.Fprintf(&b, "  Accuracy:     %.3f\n", m.Accuracy)
	fmt.Fprintf(&b, "  Precision:    %.3f\n", m.Precision)
	fmt.Fprintf(&b, "  Recall:       %.3f\n", m.Recall)
	fmt.Fprintf(&b, "  F1 Score:     %.3f\n", m.F1)
	fmt.Fprintf(&b, "  Cohen's kappa: %.3f\n\n", m.CohensKappa)

	if names := m.IntervalNames(); len(names) > 0 {
		fmt.Fprintf(&b, "Confidence Intervals (%g%%):\n", m.ConfidenceLevel*100)
		for _, name := range names {
			ci := m.ConfidenceIntervals[name]
			fmt.Fprintf(&b, "  %s: [%.3f, %.3f]\n", name, ci.Lower, ci.Upper)
		}
		b.WriteString("\n")
	}

	b.WriteString("Confusion Matrix (rows true, columns predicted):\n")
	writeConfusion(&b, m.Classes, m.ConfusionMatrix)
	b.WriteString("\n")

	b.WriteString("Limitations:\n")
	if len(r.Limitations) == 0 {
		fmt.Fprintf(&b, "  %s\n", NoLimitations)
	}
	for i, l := range r.Limitations {
		fmt.Fprintf(&b, "  %d. %s\n", i+1, l)
	}

	fmt.Fprintf(&b, "\nValidated: %s\n", core.FormatTimestamp(m.Timestamp))
	return b.String()
}

func writeConfusion(b *strings.Builder, classes []string, rows [][]int) {
	tw := tabwriter.NewWriter(b, 0, 0, 2, ' ', tabwriter.AlignRight)
	tw.Write([]byte("\t"))
	for i := range rows {
		fmt.Fprintf(tw, "%s\t", className(classes, i))
	}
	tw.Write([]byte("\n"))
	for i, row := range rows {
		fmt.Fprintf(tw, "%s\t", className(classes, i))
		for _, v := range row {
			fmt.Fprintf(tw, "%d\t", v)
		}
		tw.Write([]byte("\n"))
	}
	tw.Flush()
}

func className(classes []string, i int) string {
	if i < len(classes) {
		return classes[i]
	}
	return fmt.Sprint(i)
}
