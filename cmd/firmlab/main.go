// Command firmlab verifies firmware binaries against board specification
// documents.
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/firmlab/firmlab/internal/cli"
)

func main() {
	level := slog.LevelWarn
	for _, arg := range os.Args[1:] {
		if arg == "-v" || arg == "--verbose" {
			level = slog.LevelDebug
		}
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if err := cli.NewRootCommand().Execute(); err != nil {
		// Commands print their own formatted errors; plain cobra errors
		// (bad flags, unknown commands) still need a line here.
		var exitErr *cli.ExitError
		if !errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, "Error:", err)
			os.Exit(cli.ExitCommandError)
		}
		os.Exit(exitErr.Code)
	}
}
