// Package runner executes an ordered list of test cases against one
// firmware binary and produces one TestOutcome per case.
//
// Two interchangeable modes share the same contract. Real mode drives a
// container runtime: per test it renders a bash script, pushes it into
// the environment and executes it under the test's wall-clock timeout.
// Fallback mode is selected silently when the runtime probe fails; it
// paces through the test's steps and decides pass/fail with a randomized
// draw against SimOptions.PassProbability (default 0.85). The draw is a
// deliberate simulation artifact: outcomes are not reproducible, but each
// outcome's evidence checksum over its rendered log lines is.
//
// Outcomes are recorded strictly in submission order. The caller owns
// cleanup: Stop must be issued after Execute regardless of its result.
package runner

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/firmlab/firmlab/internal/model"
	"github.com/firmlab/firmlab/internal/profiles"
)

// Logf receives execution log lines. Delivery is best-effort; a nil Logf
// is allowed and discards the lines.
type Logf func(message string)

func emit(logf Logf, message string) {
	if logf != nil {
		logf(message)
	}
}

// SimOptions tunes the fallback simulator.
type SimOptions struct {
	// PassProbability is the threshold for the per-test uniform draw over
	// [0,1): a draw below it passes the test.
	PassProbability float64
	// Rand is the draw source. Tests inject a seeded source for
	// reproducible sequences.
	Rand *rand.Rand
}

// Backend executes test cases in an isolated environment.
type Backend struct {
	workspace string
	tokens    model.TokenGenerator
	logger    *slog.Logger
	cmd       commandRunner
	sim       SimOptions
	catalog   *profiles.Catalog
	now       func() time.Time
	sleep     func(time.Duration)

	probeOnce sync.Once
	available bool
	version   string
}

// Option configures a Backend.
type Option func(*Backend)

// WithLogger overrides the default logger.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Backend) { b.logger = logger }
}

// WithSimOptions overrides the fallback simulator tuning.
func WithSimOptions(sim SimOptions) Option {
	return func(b *Backend) {
		if sim.PassProbability > 0 {
			b.sim.PassProbability = sim.PassProbability
		}
		if sim.Rand != nil {
			b.sim.Rand = sim.Rand
		}
	}
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(b *Backend) { b.now = now }
}

// CommandFunc adapts a function to the backend's command runner, letting
// callers intercept container runtime invocations.
type CommandFunc func(ctx context.Context, name string, args ...string) (output string, exitCode int, err error)

func (f CommandFunc) Run(ctx context.Context, name string, args ...string) (string, int, error) {
	return f(ctx, name, args...)
}

// WithCommandRunner replaces the os/exec-backed runtime invocation.
func WithCommandRunner(f CommandFunc) Option {
	return func(b *Backend) { b.cmd = f }
}

// WithSleep replaces the fallback simulator's pacing function. Passing a
// no-op disables pacing entirely.
func WithSleep(sleep func(time.Duration)) Option {
	return func(b *Backend) { b.sleep = sleep }
}

// WithCatalog replaces the chipset catalogue used to render boot-stage
// lines in fallback mode.
func WithCatalog(catalog *profiles.Catalog) Option {
	return func(b *Backend) { b.catalog = catalog }
}

// New returns a Backend that stages environments under workspace.
func New(workspace string, tokens model.TokenGenerator, opts ...Option) *Backend {
	b := &Backend{
		workspace: workspace,
		tokens:    tokens,
		logger:    slog.Default(),
		cmd:       execRunner{},
		catalog:   profiles.Default(),
		sim: SimOptions{
			PassProbability: 0.85,
			Rand:            rand.New(rand.NewSource(time.Now().UnixNano())),
		},
		now:   func() time.Time { return time.Now().UTC() },
		sleep: time.Sleep,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Available reports whether the container runtime is reachable. The probe
// runs once per Backend lifetime; its result is cached.
func (b *Backend) Available(ctx context.Context) bool {
	b.probeOnce.Do(func() {
		b.version, b.available = probeRuntime(ctx, b.cmd)
		if b.available {
			b.logger.Info("container runtime available", "version", b.version)
		} else {
			b.logger.Info("container runtime unreachable, using fallback mode")
		}
	})
	return b.available
}

// Execute runs the tests against the firmware in a fresh environment and
// returns it together with one outcome per test, in submission order.
// The environment is returned even on error so the caller can Stop it.
func (b *Backend) Execute(ctx context.Context, cfg model.EmulatorConfig, tests []model.TestCase, firmware model.FirmwareInfo, logf Logf) (*Environment, []model.TestOutcome, error) {
	env, err := newEnvironment(b.workspace, cfg, b.tokens)
	if err != nil {
		return nil, nil, err
	}

	realMode := b.Available(ctx)
	env.Simulated = !realMode

	if realMode {
		emit(logf, fmt.Sprintf("Starting container: %s (image %s)", env.ID, env.Image))
		if err := b.startContainer(ctx, env); err != nil {
			env.Status = model.EnvError
			return env, nil, err
		}
	} else {
		emit(logf, "[SIMULATED] Container runtime not available - simulating environment")
		emit(logf, fmt.Sprintf("[SIMULATED] Environment ID: %s", env.ID))
		emit(logf, fmt.Sprintf("[SIMULATED] Image: %s", env.Image))
	}
	env.Status = model.EnvRunning

	firmwarePath, err := b.loadFirmware(env, firmware, logf)
	if err != nil {
		env.Status = model.EnvError
		return env, nil, err
	}

	env.Status = model.EnvTesting
	emit(logf, fmt.Sprintf("Total tests: %d", len(tests)))

	// Boot-category tests in fallback mode replay the chipset's boot
	// sequence in their log output when the SoC is in the catalogue.
	var bootStages []profiles.BootStage
	if profile, ok := b.catalog.Detect(model.HardwareSpec{SoC: cfg.SoCID, Vendor: cfg.Vendor}); ok {
		bootStages = profile.BootSequence
	}

	outcomes := make([]model.TestOutcome, 0, len(tests))
	for i, test := range tests {
		emit(logf, fmt.Sprintf("[%d/%d] Running: %s", i+1, len(tests), test.Name))

		var outcome model.TestOutcome
		if realMode {
			outcome = b.executeInContainer(ctx, env, test, firmware, firmwarePath)
		} else {
			outcome = b.simulate(env, test, firmware, bootStages)
		}
		outcomes = append(outcomes, outcome)

		icon := "FAIL"
		if outcome.Status == model.OutcomePassed {
			icon = "OK"
		}
		emit(logf, fmt.Sprintf("  [%s] Result: %s (%.2fs)", icon, strings.ToUpper(string(outcome.Status)), outcome.Duration.Seconds()))
	}

	env.Status = model.EnvCompleted
	return env, outcomes, nil
}

// Stop releases the environment. In real mode the container is stopped
// and removed; either way the environment reaches its stopped terminal
// state. Callers issue Stop after Execute regardless of its outcome.
func (b *Backend) Stop(ctx context.Context, env *Environment) {
	if env == nil {
		return
	}
	if !env.Simulated && env.Status != model.EnvCreating {
		b.stopContainer(ctx, env)
	}
	env.Status = model.EnvStopped
	b.logger.Info("environment stopped", "environment", env.ID)
}

// executeInContainer runs one test case for real: script in, exec under
// the test's timeout, exit code out. Transfer or launch failures produce
// an error outcome rather than aborting the session.
func (b *Backend) executeInContainer(ctx context.Context, env *Environment, test model.TestCase, firmware model.FirmwareInfo, firmwarePath string) model.TestOutcome {
	start := b.now()

	outcome := model.TestOutcome{
		TestID:   test.ID,
		TestName: test.Name,
		Category: test.Category,
		Evidence: model.Evidence{
			EnvironmentID:    env.ID,
			FirmwareChecksum: shortChecksum(firmware.SHA256),
		},
	}

	fail := func(err error) model.TestOutcome {
		outcome.Status = model.OutcomeError
		outcome.Duration = b.now().Sub(start)
		outcome.Output = err.Error()
		outcome.ExitCode = -1
		outcome.Evidence.Error = err.Error()
		outcome.Timestamp = b.now()
		return outcome
	}

	scriptPath := env.testsDir() + "/" + test.ID + ".sh"
	if err := writeStream(scriptPath, strings.NewReader(renderScript(test, firmwarePath))); err != nil {
		return fail(fmt.Errorf("write test script: %w", err))
	}
	if err := b.copyIntoContainer(ctx, env, scriptPath, "/tests/"+test.ID+".sh"); err != nil {
		return fail(err)
	}

	timeout := time.Duration(test.TimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	execCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	out, code, err := b.cmd.Run(execCtx, "docker", "exec", env.ID, "bash", "/tests/"+test.ID+".sh")
	if err != nil {
		return fail(fmt.Errorf("execute test %s: %w", test.ID, err))
	}

	outcome.Status = model.OutcomeFailed
	if code == 0 {
		outcome.Status = model.OutcomePassed
	}
	outcome.Duration = b.now().Sub(start)
	outcome.Output = out
	outcome.ExitCode = code
	outcome.Timestamp = b.now()
	return outcome
}

// simulate produces a synthetic outcome: step pacing, a pass/fail draw,
// rendered log lines and a reproducible checksum over them.
func (b *Backend) simulate(env *Environment, test model.TestCase, firmware model.FirmwareInfo, bootStages []profiles.BootStage) model.TestOutcome {
	start := b.now()

	for range test.Steps {
		// 100-300ms per step preserves observable sequential pacing.
		b.sleep(100*time.Millisecond + time.Duration(b.sim.Rand.Float64()*200)*time.Millisecond)
	}

	passed := b.sim.Rand.Float64() < b.sim.PassProbability

	lines := []string{
		fmt.Sprintf("[SIMULATED] Test: %s", test.Name),
		fmt.Sprintf("[SIMULATED] Environment: %s", env.ID),
		fmt.Sprintf("[SIMULATED] Firmware: %s...", shortChecksum(firmware.SHA256)),
	}
	if test.Category == model.CategoryBoot && len(bootStages) > 0 {
		lines = append(lines, "[SIMULATED] Boot sequence:")
		for _, stage := range bootStages {
			lines = append(lines, fmt.Sprintf("  - %s: %s OK", stage.Stage, stage.Name))
		}
	}
	lines = append(lines, "[SIMULATED] Executing test steps...")
	for _, step := range test.Steps {
		lines = append(lines, fmt.Sprintf("  - %s: OK", step.Action))
	}
	result := "FAIL"
	exitCode := 1
	if passed {
		result = "PASS"
		exitCode = 0
	}
	lines = append(lines, fmt.Sprintf("[SIMULATED] Result: %s", result))

	status := model.OutcomeFailed
	if passed {
		status = model.OutcomePassed
	}

	return model.TestOutcome{
		TestID:   test.ID,
		TestName: test.Name,
		Category: test.Category,
		Status:   status,
		Duration: b.now().Sub(start),
		Output:   strings.Join(lines, "\n"),
		ExitCode: exitCode,
		Evidence: model.Evidence{
			Checksum:         evidenceChecksum(lines),
			FirmwareChecksum: shortChecksum(firmware.SHA256),
			EnvironmentID:    env.ID,
			Simulated:        true,
		},
		Logs:      lines,
		Timestamp: b.now(),
	}
}
