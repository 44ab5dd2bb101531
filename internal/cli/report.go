package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/firmlab/firmlab/internal/model"
	"github.com/firmlab/firmlab/internal/registry"
)

// NewReportCommand creates the report command.
func NewReportCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "report <report-id>",
		Short:         "Show a verification report",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(rootOpts, args[0], cmd)
		},
	}
}

func runReport(opts *RootOptions, reportID string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	reg, err := openRegistry(opts)
	if err != nil {
		_ = formatter.Error(ErrCodeBadInput, err.Error(), nil)
		return WrapExitError(ExitCommandError, "open registry", err)
	}

	rpt, err := reg.GetReport(reportID)
	if err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			_ = formatter.Error(ErrCodeNotFound, fmt.Sprintf("unknown report %s", reportID), nil)
			return NewExitError(ExitCommandError, "unknown report "+reportID)
		}
		_ = formatter.Error(ErrCodeBadInput, err.Error(), nil)
		return WrapExitError(ExitCommandError, "load report", err)
	}

	if formatter.Format == "json" {
		return formatter.JSON(rpt)
	}
	printReport(formatter, rpt)
	return nil
}

// printReport renders a report in the text format shared by the report
// and verify commands.
func printReport(f *OutputFormatter, rpt model.Report) {
	fmt.Fprintf(f.Writer, "Report %s\n", rpt.ReportID)
	fmt.Fprintf(f.Writer, "  board:    %s (%s)\n", rpt.BoardName, rpt.EmulatorID)
	fmt.Fprintf(f.Writer, "  firmware: %s (%d bytes)\n", rpt.Firmware.Filename, rpt.Firmware.SizeBytes)
	fmt.Fprintf(f.Writer, "  verdict:  %s\n", rpt.Verdict)
	fmt.Fprintf(f.Writer, "  tests:    %d total, %d passed, %d failed, %d errors (pass rate %.1f%%)\n",
		rpt.Summary.Total, rpt.Summary.Passed, rpt.Summary.Failed, rpt.Summary.Errors, rpt.Summary.PassRate)
	fmt.Fprintf(f.Writer, "  boot:     %s (%d/%d, %.1fs)\n",
		rpt.BootAnalysis.Status, rpt.BootAnalysis.TestsPassed, rpt.BootAnalysis.TestsRun, rpt.BootAnalysis.BootTimeSec)
	if len(rpt.Recommendations) > 0 {
		fmt.Fprintln(f.Writer, "  recommendations:")
		for _, rec := range rpt.Recommendations {
			fmt.Fprintf(f.Writer, "    - %s\n", rec)
		}
	}
	if f.Verbose {
		fmt.Fprintln(f.Writer, "  outcomes:")
		for _, o := range rpt.Outcomes {
			fmt.Fprintf(f.Writer, "    %-22s %-8s (%.2fs)\n", o.TestID, o.Status, o.Duration.Seconds())
		}
	}
}
