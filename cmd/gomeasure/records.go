package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"gomeasure/adapters/report"
	"gomeasure/domain/core"
	"gomeasure/domain/validation"

	"github.com/spf13/cobra"
)

func newRecordsCmd(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "records",
		Short: "Inspect the append-only validation ledger",
	}
	cmd.AddCommand(newRecordsListCmd(s), newRecordsShowCmd(s))
	return cmd
}

func newRecordsListCmd(s *session) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list [measure]",
		Short: "List validations of a measure, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecordsList(cmd.Context(), cmd.OutOrStdout(), s, args[0], limit)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum entries to show (0 for all)")
	return cmd
}

func runRecordsList(ctx context.Context, out io.Writer, s *session, measure string, limit int) error {
	entries, err := s.container.Records.ListByMeasure(ctx, measure, limit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintf(out, "No validations recorded for %s\n", measure)
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tRECORDED\tSOURCE\tN\tF1\tKAPPA")
	for _, e := range entries {
		m := e.Record.ValidationMetrics
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%.3f\t%.3f\n",
			e.ID, core.FormatTimestamp(e.RecordedAt), e.Record.GroundTruthSource, m.SampleSize, m.F1, m.CohensKappa)
	}
	return tw.Flush()
}

func newRecordsShowCmd(s *session) *cobra.Command {
	var format string
	var output string

	cmd := &cobra.Command{
		Use:   "show [record-id]",
		Short: "Print one validation record",
		Long: `Print one validation record as text, markdown, html or json.

Example: gomeasure records show 0190c1d2-7f3e-7a00-8000-000000000000 --format markdown`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := core.ParseRecordID(args[0])
			if err != nil {
				return err
			}
			return runRecordsShow(cmd.Context(), cmd.OutOrStdout(), s, id, format, output)
		},
	}

	cmd.Flags().StringVar(&format, "format", "text", "Output format: text, markdown, html or json")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to this file instead of stdout")
	return cmd
}

func runRecordsShow(ctx context.Context, out io.Writer, s *session, id core.RecordID, format, output string) error {
	entry, err := s.container.Records.Get(ctx, id)
	if err != nil {
		return err
	}

	rendered, err := renderRecord(entry.Record, format)
	if err != nil {
		return err
	}
	if output != "" {
		return report.WriteBytes(output, rendered)
	}
	_, err = out.Write(rendered)
	return err
}

func renderRecord(r validation.Record, format string) ([]byte, error) {
	switch format {
	case "text":
		return []byte(r.Report()), nil
	case "markdown", "md":
		return []byte(report.RecordMarkdown(r)), nil
	case "html":
		return report.ToHTML(report.RecordMarkdown(r), "Validation Report: "+r.Name), nil
	case "json":
		return r.Encode()
	default:
		return nil, fmt.Errorf("unknown format %q (want text, markdown, html or json)", format)
	}
}
