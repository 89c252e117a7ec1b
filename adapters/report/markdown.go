// Package report renders validation records and preflight audits as
// Markdown, with an HTML conversion for sharing.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gomeasure/domain/core"
	"gomeasure/domain/validation"
	"gomeasure/internal/circularity"
	"gomeasure/internal/errors"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// RecordMarkdown renders a validation record.
func RecordMarkdown(r validation.Record) string {
	m := r.ValidationMetrics
	var b strings.Builder

	fmt.Fprintf(&b, "# Validation Report: %s\n\n", r.Name)
	if r.Description != "" {
		fmt.Fprintf(&b, "%s\n\n", r.Description)
	}
	fmt.Fprintf(&b, "- **Ground truth source:** %s\n", r.GroundTruthSource)
	fmt.Fprintf(&b, "- **Sample size:** %d\n", m.SampleSize)
	fmt.Fprintf(&b, "- **Validated:** %s\n\n", core.FormatTimestamp(m.Timestamp))

	b.WriteString("## Metrics\n\n")
	b.WriteString("| Metric | Value | CI |\n|---|---:|---|\n")
	for _, row := range []struct {
		label, key string
		value      float64
	}{
		{"Accuracy", "accuracy", m.Accuracy},
		{"Precision", "precision", m.Precision},
		{"Recall", "recall", m.Recall},
		{"F1", "f1", m.F1},
		{"Cohen's kappa", "cohens_kappa", m.CohensKappa},
	} {
		ci := ""
		if iv, ok := m.ConfidenceIntervals[row.key]; ok {
			ci = fmt.Sprintf("[%.3f, %.3f]", iv.Lower, iv.Upper)
		}
		fmt.Fprintf(&b, "| %s | %.3f | %s |\n", row.label, row.value, ci)
	}
	if len(m.ConfidenceIntervals) > 0 {
		fmt.Fprintf(&b, "\nIntervals are %g%% percentile bootstrap.\n", m.ConfidenceLevel*100)
	}

	if len(m.ConfusionMatrix) > 0 {
		b.WriteString("\n## Confusion Matrix\n\n")
		b.WriteString("| true \\ predicted |")
		for i := range m.ConfusionMatrix {
			fmt.Fprintf(&b, " %s |", label(m.Classes, i))
		}
		b.WriteString("\n|---|")
		b.WriteString(strings.Repeat("---:|", len(m.ConfusionMatrix)))
		b.WriteString("\n")
		for i, row := range m.ConfusionMatrix {
			fmt.Fprintf(&b, "| %s |", label(m.Classes, i))
			for _, v := range row {
				fmt.Fprintf(&b, " %d |", v)
			}
			b.WriteString("\n")
		}
	}

	b.WriteString("\n## Limitations\n\n")
	if len(r.Limitations) == 0 {
		fmt.Fprintf(&b, "%s\n", validation.NoLimitations)
	}
	for i, l := range r.Limitations {
		fmt.Fprintf(&b, "%d. %s\n", i+1, l)
	}
	return b.String()
}

// PreflightMarkdown renders an audit summary of the ground truth in file.
func PreflightMarkdown(file string, p circularity.Audit) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Ground Truth Preflight: %s\n\n", file)
	fmt.Fprintf(&b, "- **Source:** %s\n", p.Source)
	fmt.Fprintf(&b, "- **Samples:** %d\n", p.SampleSize)
	if p.Independence != nil {
		fmt.Fprintf(&b, "- **Independence:** %s\n", p.Independence.Explanation)
	}

	issues := p.Issues()
	if len(issues) == 0 {
		b.WriteString("\n**PASSED**: no methodology issues found.\n")
		return b.String()
	}

	fmt.Fprintf(&b, "\n**FAILED**: %d issue(s).\n\n", len(issues))
	b.WriteString("| Severity | Category | Description | Recommendation |\n|---|---|---|---|\n")
	for _, issue := range issues {
		fmt.Fprintf(&b, "| %s | %s | %s | %s |\n",
			strings.ToUpper(string(issue.Severity)), issue.Category,
			escapeCell(issue.Description), escapeCell(issue.Recommendation))
	}
	return b.String()
}

// ToHTML converts Markdown into a standalone HTML page.
func ToHTML(md, title string) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	renderer := html.NewRenderer(html.RendererOptions{
		Title: title,
		Flags: html.CommonFlags | html.CompletePage,
	})
	return markdown.ToHTML([]byte(md), p, renderer)
}

// Write stores md at path. A .html extension selects the HTML rendering.
func Write(path, md, title string) error {
	data := []byte(md)
	if strings.EqualFold(filepath.Ext(path), ".html") {
		data = ToHTML(md, title)
	}
	return WriteBytes(path, data)
}

// WriteBytes stores an already rendered report.
func WriteBytes(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.IOError(path, err)
	}
	return nil
}

func label(classes []string, i int) string {
	if i < len(classes) {
		return escapeCell(classes[i])
	}
	return fmt.Sprint(i)
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
