package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/firmlab/firmlab/internal/registry"
)

// NewRegistryCommand creates the registry command group.
func NewRegistryCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "registry",
		Short: "Query the config and report registry",
	}
	cmd.AddCommand(newRegistryListCommand(rootOpts))
	cmd.AddCommand(newRegistryShowCommand(rootOpts))
	return cmd
}

func newRegistryListCommand(rootOpts *RootOptions) *cobra.Command {
	var vendor string
	var emulatorID string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List registered configs and reports",
		Long: `List every registered emulator config and verification report.
--vendor filters configs by vendor; --emulator filters reports by the
emulator they ran against.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRegistryList(rootOpts, vendor, emulatorID, cmd)
		},
	}

	cmd.Flags().StringVar(&vendor, "vendor", "", "filter configs by vendor")
	cmd.Flags().StringVar(&emulatorID, "emulator", "", "filter reports by emulator ID")
	return cmd
}

func runRegistryList(opts *RootOptions, vendor, emulatorID string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	reg, err := openRegistry(opts)
	if err != nil {
		_ = formatter.Error(ErrCodeBadInput, err.Error(), nil)
		return WrapExitError(ExitCommandError, "open registry", err)
	}

	configs := reg.ListConfigs(vendor)
	reports := reg.ListReports(emulatorID)

	if formatter.Format == "json" {
		return formatter.JSON(map[string]any{
			"configs": configs,
			"reports": reports,
		})
	}

	fmt.Fprintf(formatter.Writer, "configs (%d):\n", len(configs))
	for _, c := range configs {
		fmt.Fprintf(formatter.Writer, "  %-14s %-20s %-12s %s\n", c.ID, c.BoardName, c.Vendor, c.SoCID)
	}
	fmt.Fprintf(formatter.Writer, "reports (%d):\n", len(reports))
	for _, r := range reports {
		fmt.Fprintf(formatter.Writer, "  %-14s %-14s %-12s %s\n", r.ReportID, r.EmulatorID, r.Verdict, r.Timestamp.Format("2006-01-02 15:04"))
	}
	return nil
}

func newRegistryShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "show <emulator-id>",
		Short:         "Show one registered config and its test set",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRegistryShow(rootOpts, args[0], cmd)
		},
	}
}

func runRegistryShow(opts *RootOptions, emulatorID string, cmd *cobra.Command) error {
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

	// The test set is optional; a config may not have one yet.
	tests, testsErr := reg.GetTestSet(emulatorID)
	if testsErr != nil && !errors.Is(testsErr, registry.ErrNotFound) {
		_ = formatter.Error(ErrCodeBadInput, testsErr.Error(), nil)
		return WrapExitError(ExitCommandError, "load test set", testsErr)
	}

	if formatter.Format == "json" {
		return formatter.JSON(map[string]any{
			"config": cfg,
			"tests":  tests,
		})
	}

	fmt.Fprintf(formatter.Writer, "%s: %s\n", cfg.EmulatorID, cfg.BoardName)
	fmt.Fprintf(formatter.Writer, "  soc: %s (%s, %s)\n", orDash(cfg.SoCID), orDash(cfg.Vendor), orDash(cfg.Architecture))
	fmt.Fprintf(formatter.Writer, "  cpu: %s x%d  memory: %d MB  flash: %d MB\n",
		orDash(cfg.CPUType), cfg.CPUCores, cfg.MemoryMB, cfg.FlashMB)
	fmt.Fprintf(formatter.Writer, "  image: %s  status: %s\n", cfg.Image, cfg.Status)
	fmt.Fprintf(formatter.Writer, "  capabilities: %d  requirements: %d\n", len(cfg.Capabilities), len(cfg.Requirements))
	if len(tests) > 0 {
		fmt.Fprintf(formatter.Writer, "  tests (%d):\n", len(tests))
		for _, tc := range tests {
			fmt.Fprintf(formatter.Writer, "    %-22s %-12s %s\n", tc.ID, tc.Category, tc.Name)
		}
	}
	return nil
}
