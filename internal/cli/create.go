package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/firmlab/firmlab/internal/docparse"
	"github.com/firmlab/firmlab/internal/model"
	"github.com/firmlab/firmlab/internal/synth"
)

// NewCreateCommand creates the create command.
func NewCreateCommand(rootOpts *RootOptions) *cobra.Command {
	var boardName string
	var emulatorID string

	cmd := &cobra.Command{
		Use:   "create <document>...",
		Short: "Create an emulator config from specification documents",
		Long: `Parse the given specification documents, synthesize an emulator config
for the board and register it. Documents that fail to parse are skipped
with a warning; the remaining documents still drive synthesis.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCreate(rootOpts, boardName, emulatorID, args, cmd)
		},
	}

	cmd.Flags().StringVar(&boardName, "board", "", "board name for the config (required)")
	cmd.Flags().StringVar(&emulatorID, "emulator-id", "", "reuse an explicit emulator ID instead of generating one")
	_ = cmd.MarkFlagRequired("board")
	return cmd
}

func runCreate(opts *RootOptions, boardName, emulatorID string, paths []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	var docs []*docparse.Document
	for _, path := range paths {
		doc, err := docparse.ParseFile(path)
		if err != nil {
			formatter.VerboseLog("skipping %s: %v", path, err)
			continue
		}
		docs = append(docs, doc)
	}

	reg, err := openRegistry(opts)
	if err != nil {
		_ = formatter.Error(ErrCodeBadInput, err.Error(), nil)
		return WrapExitError(ExitCommandError, "open registry", err)
	}

	cfg := synth.New(model.UUIDTokenGenerator{}).Synthesize(boardName, docs, emulatorID)
	if err := reg.PutConfig(cfg); err != nil {
		_ = formatter.Error(ErrCodePipeline, err.Error(), nil)
		return WrapExitError(ExitCommandError, "register config", err)
	}

	if formatter.Format == "json" {
		return formatter.JSON(cfg)
	}
	fmt.Fprintf(formatter.Writer, "Emulator config created: %s\n", cfg.EmulatorID)
	fmt.Fprintf(formatter.Writer, "  board: %s\n", cfg.BoardName)
	fmt.Fprintf(formatter.Writer, "  soc: %s (%s, %s)\n", orDash(cfg.SoCID), orDash(cfg.Vendor), orDash(cfg.Architecture))
	fmt.Fprintf(formatter.Writer, "  image: %s\n", cfg.Image)
	fmt.Fprintf(formatter.Writer, "  capabilities: %d  requirements: %d  documents: %d\n",
		len(cfg.Capabilities), len(cfg.Requirements), len(docs))
	return nil
}
