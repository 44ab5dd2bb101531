package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/firmlab/firmlab/internal/model"
	"github.com/firmlab/firmlab/internal/pipeline"
	"github.com/firmlab/firmlab/internal/runner"
	"github.com/firmlab/firmlab/internal/session"
)

// VerifyResult is the JSON payload for a completed verification run.
type VerifyResult struct {
	SessionID string       `json:"session_id"`
	Report    model.Report `json:"report"`
}

// NewVerifyCommand creates the verify command.
func NewVerifyCommand(rootOpts *RootOptions) *cobra.Command {
	var boardName string
	var emulatorID string
	var docs []string

	cmd := &cobra.Command{
		Use:   "verify <firmware>",
		Short: "Run the full verification pipeline against a firmware binary",
		Long: `Run the whole pipeline for one firmware binary: parse the specification
documents, synthesize the emulator config, generate the test suite,
stage the firmware, execute the tests and synthesize the report.

When the container runtime is unreachable the tests run in fallback
simulation; the report marks simulated evidence accordingly. A FAIL
verdict exits with code 1.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(rootOpts, boardName, emulatorID, docs, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&boardName, "board", "", "board name (required)")
	cmd.Flags().StringArrayVar(&docs, "doc", nil, "specification document (repeatable, required)")
	cmd.Flags().StringVar(&emulatorID, "emulator-id", "", "reuse an explicit emulator ID")
	_ = cmd.MarkFlagRequired("board")
	_ = cmd.MarkFlagRequired("doc")
	return cmd
}

func runVerify(opts *RootOptions, boardName, emulatorID string, docs []string, firmwarePath string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	reg, err := openRegistry(opts)
	if err != nil {
		_ = formatter.Error(ErrCodeBadInput, err.Error(), nil)
		return WrapExitError(ExitCommandError, "open registry", err)
	}

	store, err := session.OpenSQLite(filepath.Join(opts.DataDir, "sessions.db"))
	if err != nil {
		_ = formatter.Error(ErrCodeBadInput, err.Error(), nil)
		return WrapExitError(ExitCommandError, "open session store", err)
	}
	defer store.Close()

	backend := runner.New(filepath.Join(opts.DataDir, "workspace"), model.UUIDTokenGenerator{})

	var sinks []pipeline.Option
	if formatter.Format != "json" {
		// Mirror progress and execution logs to the terminal as they
		// happen; JSON mode stays a single machine-readable document.
		sinks = append(sinks, pipeline.WithSink(pipeline.NewSyncSink(func(e pipeline.Event) error {
			switch e.Kind {
			case pipeline.EventProgress:
				_, err := fmt.Fprintf(formatter.Writer, "[%d/%d] %s\n", e.Step, e.Total, e.Phase)
				return err
			case pipeline.EventLog:
				_, err := fmt.Fprintf(formatter.Writer, "    %s\n", e.Message)
				return err
			}
			return nil
		})))
	}

	orch, err := pipeline.New(pipeline.Config{
		Store:       store,
		Registry:    reg,
		Backend:     backend,
		Tokens:      model.UUIDTokenGenerator{},
		FirmwareDir: filepath.Join(opts.DataDir, "firmware"),
	}, sinks...)
	if err != nil {
		_ = formatter.Error(ErrCodeBadInput, err.Error(), nil)
		return WrapExitError(ExitCommandError, "assemble pipeline", err)
	}

	sessionID, rpt, err := orch.Verify(cmd.Context(), pipeline.VerifyRequest{
		BoardName:     boardName,
		DocumentPaths: docs,
		FirmwarePath:  firmwarePath,
		EmulatorID:    emulatorID,
	})
	if err != nil {
		_ = formatter.Error(ErrCodePipeline, err.Error(), map[string]string{"session_id": sessionID})
		return WrapExitError(ExitFailure, "verification failed", err)
	}

	if formatter.Format == "json" {
		if err := formatter.JSON(VerifyResult{SessionID: sessionID, Report: rpt}); err != nil {
			return err
		}
	} else {
		printReport(formatter, rpt)
		fmt.Fprintf(formatter.Writer, "session: %s\n", sessionID)
	}

	if rpt.Verdict == model.VerdictFail {
		return NewExitError(ExitFailure, "verification verdict: FAIL")
	}
	return nil
}
