package runner

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/firmlab/firmlab/internal/model"
)

// Environment is one session's isolated execution environment: a named
// container (real mode) or its simulated stand-in, with a host workspace
// carrying the firmware, logs and tests mounts.
//
// Status follows the machine creating -> running -> loading_firmware ->
// testing -> completed, error from any non-terminal state, stopped as the
// cleanup terminal after completed or error.
type Environment struct {
	ID          string
	EmulatorID  string
	BoardName   string
	Image       string
	MemoryMB    int
	CPUCores    int
	Workspace   string
	Simulated   bool
	Status      model.EnvStatus
	Environment map[string]string
}

// mount pairs a host workspace subdirectory with its container path.
type mount struct {
	host      string
	container string
}

func (e *Environment) mounts() []mount {
	return []mount{
		{host: filepath.Join(e.Workspace, "firmware"), container: "/firmware"},
		{host: filepath.Join(e.Workspace, "logs"), container: "/logs"},
		{host: filepath.Join(e.Workspace, "tests"), container: "/tests"},
	}
}

// firmwareDir is the host side of the /firmware mount.
func (e *Environment) firmwareDir() string {
	return filepath.Join(e.Workspace, "firmware")
}

// testsDir is the host side of the /tests mount.
func (e *Environment) testsDir() string {
	return filepath.Join(e.Workspace, "tests")
}

// newEnvironment allocates the host workspace for one environment.
func newEnvironment(workspace string, cfg model.EmulatorConfig, tokens model.TokenGenerator) (*Environment, error) {
	id := strings.ToLower(tokens.Generate("ENV"))
	envWorkspace := filepath.Join(workspace, id)

	env := &Environment{
		ID:         id,
		EmulatorID: cfg.EmulatorID,
		BoardName:  cfg.BoardName,
		Image:      cfg.Image,
		MemoryMB:   cfg.MemoryMB,
		CPUCores:   cfg.CPUCores,
		Workspace:  envWorkspace,
		Status:     model.EnvCreating,
		Environment: map[string]string{
			"EMULATOR_ID": cfg.EmulatorID,
			"BOARD_NAME":  cfg.BoardName,
			"SOC_ID":      cfg.SoCID,
		},
	}

	for _, m := range env.mounts() {
		if err := os.MkdirAll(m.host, 0o755); err != nil {
			return nil, fmt.Errorf("create environment workspace: %w", err)
		}
	}
	return env, nil
}
