package runner

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// probeTimeout bounds the one-time runtime availability check.
const probeTimeout = 10 * time.Second

// commandRunner abstracts external tool invocation so tests can run the
// backend without a container runtime on the host.
type commandRunner interface {
	// Run executes the command and returns its combined output and exit
	// code. err is non-nil only for launch failures (binary missing,
	// context expired), not for nonzero exits.
	Run(ctx context.Context, name string, args ...string) (output string, exitCode int, err error)
}

// execRunner invokes commands through os/exec.
type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) (string, int, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return string(out), exitErr.ExitCode(), nil
		}
		return string(out), -1, err
	}
	return string(out), 0, nil
}

// probeRuntime checks whether the container runtime is reachable.
// Any failure (tool absent, daemon down, timeout) selects fallback mode;
// it is never an error.
func probeRuntime(ctx context.Context, cmd commandRunner) (version string, available bool) {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	out, code, err := cmd.Run(ctx, "docker", "version", "--format", "{{.Server.Version}}")
	if err != nil || code != 0 {
		return "", false
	}
	return strings.TrimSpace(out), true
}

// startContainer launches the environment's container, detached and kept
// alive so scripts can be executed into it.
func (b *Backend) startContainer(ctx context.Context, env *Environment) error {
	args := []string{
		"run", "-d",
		"--name", env.ID,
		"--memory", fmt.Sprintf("%dm", env.MemoryMB),
		"--cpus", strconv.Itoa(env.CPUCores),
	}
	for _, m := range env.mounts() {
		args = append(args, "-v", fmt.Sprintf("%s:%s:rw", m.host, m.container))
	}
	for key, value := range env.Environment {
		args = append(args, "-e", key+"="+value)
	}
	args = append(args, env.Image, "tail", "-f", "/dev/null")

	out, code, err := b.cmd.Run(ctx, "docker", args...)
	if err != nil {
		return fmt.Errorf("start container %s: %w", env.ID, err)
	}
	if code != 0 {
		return fmt.Errorf("start container %s: exit %d: %s", env.ID, code, strings.TrimSpace(out))
	}
	return nil
}

// copyIntoContainer pushes a host file into the container filesystem.
func (b *Backend) copyIntoContainer(ctx context.Context, env *Environment, hostPath, containerPath string) error {
	out, code, err := b.cmd.Run(ctx, "docker", "cp", hostPath, env.ID+":"+containerPath)
	if err != nil {
		return fmt.Errorf("copy %s into %s: %w", hostPath, env.ID, err)
	}
	if code != 0 {
		return fmt.Errorf("copy %s into %s: exit %d: %s", hostPath, env.ID, code, strings.TrimSpace(out))
	}
	return nil
}

// stopContainer stops and removes the environment's container. Errors are
// logged, not returned: cleanup is best-effort.
func (b *Backend) stopContainer(ctx context.Context, env *Environment) {
	if _, _, err := b.cmd.Run(ctx, "docker", "stop", env.ID); err != nil {
		b.logger.Warn("container stop failed", "environment", env.ID, "error", err)
	}
	if _, _, err := b.cmd.Run(ctx, "docker", "rm", env.ID); err != nil {
		b.logger.Warn("container remove failed", "environment", env.ID, "error", err)
	}
}
