package cli

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/firmlab/firmlab/internal/registry"
	"github.com/firmlab/firmlab/internal/testgen"
)

// NewGenTestsCommand creates the gentests command.
func NewGenTestsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "gentests <emulator-id>",
		Short: "Generate the test suite for a registered emulator config",
		Long: `Load the emulator config from the registry, generate its boot and
feature test cases and register the resulting test set under the same
emulator ID. Regenerating overwrites the previous set.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenTests(rootOpts, args[0], cmd)
		},
	}
}

func runGenTests(opts *RootOptions, emulatorID string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	reg, err := openRegistry(opts)
	if err != nil {
		_ = formatter.Error(ErrCodeBadInput, err.Error(), nil)
		return WrapExitError(ExitCommandError, "open registry", err)
	}

	cfg, err := reg.GetConfig(emulatorID)
	if err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			_ = formatter.Error(ErrCodeNotFound, fmt.Sprintf("unknown emulator %s", emulatorID), nil)
			return NewExitError(ExitCommandError, "unknown emulator "+emulatorID)
		}
		_ = formatter.Error(ErrCodeBadInput, err.Error(), nil)
		return WrapExitError(ExitCommandError, "load config", err)
	}

	tests := testgen.New(slog.Default()).GenerateAll(cfg)
	if err := reg.PutTestSet(emulatorID, tests); err != nil {
		_ = formatter.Error(ErrCodePipeline, err.Error(), nil)
		return WrapExitError(ExitCommandError, "register test set", err)
	}

	if formatter.Format == "json" {
		return formatter.JSON(tests)
	}
	fmt.Fprintf(formatter.Writer, "Generated %d test cases for %s\n", len(tests), emulatorID)
	for _, tc := range tests {
		fmt.Fprintf(formatter.Writer, "  %-22s %-12s %s\n", tc.ID, tc.Category, tc.Name)
	}
	return nil
}
