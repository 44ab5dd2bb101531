package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/firmlab/firmlab/internal/docparse"
)

// ParseResult summarizes one parsed document for CLI output.
type ParseResult struct {
	FilePath     string `json:"file_path"`
	Format       string `json:"format"`
	Capabilities int    `json:"capabilities"`
	Requirements int    `json:"requirements"`
	SoC          string `json:"soc"`
	Vendor       string `json:"vendor"`
	Architecture string `json:"architecture"`
}

// NewParseCommand creates the parse command.
func NewParseCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "parse <document>...",
		Short: "Parse board specification documents",
		Long: `Parse one or more board specification documents (YAML, JSON, Markdown
or plain text) and show the capabilities, requirements and hardware
details extracted from each.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(rootOpts, args, cmd)
		},
	}
}

func runParse(opts *RootOptions, paths []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	var results []ParseResult
	for _, path := range paths {
		doc, err := docparse.ParseFile(path)
		if err != nil {
			_ = formatter.Error(ErrCodeBadInput, fmt.Sprintf("parse %s: %v", path, err), nil)
			return WrapExitError(ExitCommandError, "document parsing failed", err)
		}
		results = append(results, ParseResult{
			FilePath:     doc.FilePath,
			Format:       doc.Format,
			Capabilities: len(doc.Capabilities),
			Requirements: len(doc.Requirements),
			SoC:          doc.Hardware.SoC,
			Vendor:       doc.Hardware.Vendor,
			Architecture: doc.Hardware.Architecture,
		})
	}

	if formatter.Format == "json" {
		return formatter.JSON(results)
	}
	for _, r := range results {
		fmt.Fprintf(formatter.Writer, "%s (%s)\n", r.FilePath, r.Format)
		fmt.Fprintf(formatter.Writer, "  soc: %s  vendor: %s  arch: %s\n", orDash(r.SoC), orDash(r.Vendor), orDash(r.Architecture))
		fmt.Fprintf(formatter.Writer, "  capabilities: %d  requirements: %d\n", r.Capabilities, r.Requirements)
	}
	return nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
