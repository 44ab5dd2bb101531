// Package cli implements the firmlab command tree.
package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/firmlab/firmlab/internal/registry"
)

// Error codes used in CLI responses.
const (
	ErrCodeBadInput = "E001" // unreadable or invalid input
	ErrCodeNotFound = "E002" // unknown registry or session ID
	ErrCodePipeline = "E003" // a pipeline phase failed
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
	DataDir string // registry, session db and firmware staging live here
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the firmlab CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "firmlab",
		Short: "Firmware verification against board specification documents",
		Long: `firmlab turns board specification documents into emulator configs and
test suites, executes them against uploaded firmware, and synthesizes a
PASS/CONDITIONAL/FAIL verification report.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.DataDir, "data-dir", ".firmlab", "directory for registry, sessions and staged firmware")

	cmd.AddCommand(NewParseCommand(opts))
	cmd.AddCommand(NewCreateCommand(opts))
	cmd.AddCommand(NewGenTestsCommand(opts))
	cmd.AddCommand(NewVerifyCommand(opts))
	cmd.AddCommand(NewReportCommand(opts))
	cmd.AddCommand(NewRegistryCommand(opts))
	cmd.AddCommand(NewProfilesCommand(opts))

	return cmd
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// newFormatter builds the output formatter for one command invocation.
func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}

// openRegistry opens the registry under the data directory.
func openRegistry(opts *RootOptions) (*registry.Registry, error) {
	return registry.Open(filepath.Join(opts.DataDir, "registry"))
}
