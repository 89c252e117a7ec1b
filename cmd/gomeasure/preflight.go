package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"gomeasure/adapters/report"
	"gomeasure/domain/core"

	"github.com/spf13/cobra"
)

func newPreflightCmd(s *session) *cobra.Command {
	var reportFile string
	var measureMethod string
	var groundTruthMethod string

	cmd := &cobra.Command{
		Use:   "preflight [ground-truth-file]",
		Short: "Audit a ground-truth file before validating a measure against it",
		Long: `Load a ground-truth file (.xlsx, .csv, .yaml or .json), check annotation quality
and, when both method descriptions are given, check that the measure and the
ground truth were produced independently.

Example: gomeasure preflight labels.xlsx --measure-method "keyword dictionary" --ground-truth-method "expert panel"`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pf := s.container.Config.Preflight
			file := pf.GroundTruthFile
			if len(args) == 1 {
				file = args[0]
			}
			if file == "" {
				return fmt.Errorf("no ground-truth file given (argument or GROUND_TRUTH_FILE)")
			}
			if !cmd.Flags().Changed("report") {
				reportFile = pf.ReportFile
			}
			if !cmd.Flags().Changed("measure-method") {
				measureMethod = pf.MeasureMethod
			}
			if !cmd.Flags().Changed("ground-truth-method") {
				groundTruthMethod = pf.GroundTruthMethod
			}
			return runPreflight(cmd.Context(), cmd.OutOrStdout(), s, file, measureMethod, groundTruthMethod, reportFile)
		},
	}

	cmd.Flags().StringVar(&reportFile, "report", "", "Write a Markdown (.md) or HTML (.html) summary to this file")
	cmd.Flags().StringVar(&measureMethod, "measure-method", "", "How the measure produces its output")
	cmd.Flags().StringVar(&groundTruthMethod, "ground-truth-method", "", "How the ground truth labels were produced")

	return cmd
}

func runPreflight(ctx context.Context, out io.Writer, s *session, file, measureMethod, groundTruthMethod, reportFile string) error {
	ds, err := s.container.GroundTruthLoader(file).Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load ground truth: %w", err)
	}

	audit := s.container.Validation.Preflight(ds.Metadata(), ds.Len(), measureMethod, groundTruthMethod)

	fmt.Fprintf(out, "Ground truth: %s (%d samples, %d classes, source %s)\n",
		file, ds.Len(), len(ds.Classes()), ds.Source())
	if audit.Independence != nil {
		fmt.Fprintln(out, audit.Independence.Explanation)
	}
	issues := audit.Issues()
	for _, issue := range issues {
		fmt.Fprintf(out, "\n%s\n", issue)
	}

	if reportFile != "" {
		if err := report.Write(reportFile, report.PreflightMarkdown(file, audit), "Preflight: "+file); err != nil {
			return err
		}
		fmt.Fprintf(out, "\nReport written to %s\n", reportFile)
	}

	if len(issues) > 0 {
		return fmt.Errorf("%w: %d issue(s) in %s", core.ErrPreflightFailed, len(issues), file)
	}
	fmt.Fprintln(out, "\nPASSED: no methodology issues found")
	return nil
}

// isPreflightFailure reports whether err came from a failed audit rather
// than from loading.
func isPreflightFailure(err error) bool {
	return errors.Is(err, core.ErrPreflightFailed)
}
