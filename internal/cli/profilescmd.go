package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/firmlab/firmlab/internal/profiles"
)

// NewProfilesCommand creates the profiles command group.
func NewProfilesCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profiles",
		Short: "Browse the built-in chipset profile catalogue",
	}
	cmd.AddCommand(newProfilesListCommand(rootOpts))
	cmd.AddCommand(newProfilesShowCommand(rootOpts))
	return cmd
}

func newProfilesListCommand(rootOpts *RootOptions) *cobra.Command {
	var vendor string

	cmd := &cobra.Command{
		Use:           "list",
		Short:         "List chipset profiles",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProfilesList(rootOpts, vendor, cmd)
		},
	}

	cmd.Flags().StringVar(&vendor, "vendor", "", "filter by vendor")
	return cmd
}

func runProfilesList(opts *RootOptions, vendor string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	list := profiles.Default().List(vendor)
	if formatter.Format == "json" {
		return formatter.JSON(list)
	}
	for _, p := range list {
		fmt.Fprintf(formatter.Writer, "%-10s %-10s %-12s %s x%d @%d MHz\n",
			p.ChipsetID, p.Vendor, p.Architecture, p.CPUType, p.CPUCores, p.CPUFrequencyMHz)
	}
	return nil
}

func newProfilesShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "show <chipset-id>",
		Short:         "Show one chipset profile with its boot sequence",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProfilesShow(rootOpts, args[0], cmd)
		},
	}
}

func runProfilesShow(opts *RootOptions, chipsetID string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	profile, ok := profiles.Default().Get(chipsetID)
	if !ok {
		_ = formatter.Error(ErrCodeNotFound, fmt.Sprintf("unknown chipset %s", chipsetID), nil)
		return NewExitError(ExitCommandError, "unknown chipset "+chipsetID)
	}

	if formatter.Format == "json" {
		return formatter.JSON(profile)
	}

	fmt.Fprintf(formatter.Writer, "%s: %s %s\n", profile.ChipsetID, profile.Vendor, profile.Model)
	fmt.Fprintf(formatter.Writer, "  arch: %s  cpu: %s x%d @%d MHz\n",
		profile.Architecture, profile.CPUType, profile.CPUCores, profile.CPUFrequencyMHz)
	fmt.Fprintf(formatter.Writer, "  ram: %d MB  flash: %d MB\n", profile.RAMMB, profile.FlashMB)
	fmt.Fprintln(formatter.Writer, "  boot sequence:")
	for _, stage := range profile.BootSequence {
		fmt.Fprintf(formatter.Writer, "    %-10s %-28s %d ms\n", stage.Stage, stage.Name, stage.TimeoutMS)
	}
	if len(profile.Peripherals) > 0 {
		fmt.Fprintln(formatter.Writer, "  peripherals:")
		for _, p := range profile.Peripherals {
			fmt.Fprintf(formatter.Writer, "    %-10s %s\n", p.Type, p.Name)
		}
	}
	return nil
}
