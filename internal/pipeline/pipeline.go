// Package pipeline orchestrates a full verification session: parse the
// specification documents, synthesize an emulator config, generate the
// test suite, stage the firmware, execute, and synthesize the report.
//
// Phases run strictly sequentially within a session; distinct sessions may
// run concurrently because every collaborator is safe for concurrent use.
// A phase failure marks the session failed and stops the run; registry
// records written by earlier phases are kept, there is no rollback and no
// retry.
package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/firmlab/firmlab/internal/docparse"
	"github.com/firmlab/firmlab/internal/model"
	"github.com/firmlab/firmlab/internal/registry"
	"github.com/firmlab/firmlab/internal/report"
	"github.com/firmlab/firmlab/internal/runner"
	"github.com/firmlab/firmlab/internal/session"
	"github.com/firmlab/firmlab/internal/synth"
	"github.com/firmlab/firmlab/internal/testgen"
)

// Phase names, in execution order.
const (
	PhaseParse    = "parse"
	PhaseSynth    = "synthesize"
	PhaseGenerate = "generate_tests"
	PhaseStage    = "stage_firmware"
	PhaseExecute  = "execute"
	PhaseReport   = "report"
)

var phases = []string{PhaseParse, PhaseSynth, PhaseGenerate, PhaseStage, PhaseExecute, PhaseReport}

// Config wires the orchestrator's collaborators.
type Config struct {
	Store       session.Store
	Registry    *registry.Registry
	Backend     *runner.Backend
	Tokens      model.TokenGenerator
	FirmwareDir string
}

// Orchestrator drives verification sessions end to end.
type Orchestrator struct {
	store       session.Store
	registry    *registry.Registry
	backend     *runner.Backend
	synth       *synth.Synthesizer
	gen         *testgen.Generator
	reports     *report.Synthesizer
	tokens      model.TokenGenerator
	firmwareDir string
	logger      *slog.Logger
	sinks       []Sink
	now         func() time.Time
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger overrides the default logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) { o.logger = logger }
}

// WithSink registers an additional event sink.
func WithSink(sink Sink) Option {
	return func(o *Orchestrator) { o.sinks = append(o.sinks, sink) }
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// New assembles an Orchestrator around the given collaborators.
func New(cfg Config, opts ...Option) (*Orchestrator, error) {
	if cfg.Store == nil || cfg.Registry == nil || cfg.Backend == nil || cfg.Tokens == nil {
		return nil, fmt.Errorf("pipeline config is missing a collaborator")
	}
	if cfg.FirmwareDir == "" {
		return nil, fmt.Errorf("pipeline config needs a firmware staging directory")
	}
	if err := os.MkdirAll(cfg.FirmwareDir, 0o755); err != nil {
		return nil, fmt.Errorf("create firmware staging directory: %w", err)
	}

	o := &Orchestrator{
		store:       cfg.Store,
		registry:    cfg.Registry,
		backend:     cfg.Backend,
		tokens:      cfg.Tokens,
		firmwareDir: cfg.FirmwareDir,
		logger:      slog.Default(),
		now:         func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(o)
	}
	o.synth = synth.New(cfg.Tokens, synth.WithLogger(o.logger), synth.WithClock(o.now))
	o.gen = testgen.New(o.logger)
	o.reports = report.New(cfg.Tokens, report.WithLogger(o.logger), report.WithClock(o.now))
	return o, nil
}

// VerifyRequest describes one verification run.
type VerifyRequest struct {
	BoardName     string
	DocumentPaths []string
	FirmwarePath  string
	// EmulatorID reuses an explicit ID instead of generating one.
	EmulatorID string
}

// Verify runs the full pipeline and returns the synthesized report.
// The returned session ID is valid even on failure, so callers can fetch
// the partial session state.
func (o *Orchestrator) Verify(ctx context.Context, req VerifyRequest) (sessionID string, rpt model.Report, err error) {
	sess := &session.Session{
		ID:        o.tokens.Generate("SES"),
		BoardName: req.BoardName,
		Status:    model.SessionUploaded,
	}
	if err := o.store.Create(ctx, sess); err != nil {
		return "", model.Report{}, fmt.Errorf("create session: %w", err)
	}
	sessionID = sess.ID

	sess.Status = model.SessionRunning
	if err := o.store.Update(ctx, sess); err != nil {
		return sessionID, model.Report{}, fmt.Errorf("mark session running: %w", err)
	}

	fail := func(phase string, cause error) (string, model.Report, error) {
		sess.Status = model.SessionFailed
		sess.Error = cause.Error()
		if updateErr := o.store.Update(ctx, sess); updateErr != nil {
			o.logger.Error("failed to record session failure", "session", sess.ID, "error", updateErr)
		}
		o.log(ctx, sess.ID, fmt.Sprintf("Session failed during %s: %v", phase, cause))
		return sessionID, model.Report{}, fmt.Errorf("%s: %w", phase, cause)
	}

	// Phase 1: parse documents. A document that fails to parse is skipped;
	// the remaining documents still drive synthesis.
	o.progress(sess.ID, PhaseParse, 1)
	var docs []*docparse.Document
	for _, path := range req.DocumentPaths {
		doc, parseErr := docparse.ParseFile(path)
		if parseErr != nil {
			o.logger.Warn("document skipped", "path", path, "error", parseErr)
			o.log(ctx, sess.ID, fmt.Sprintf("Skipped document %s: %v", filepath.Base(path), parseErr))
			continue
		}
		docs = append(docs, doc)
		o.log(ctx, sess.ID, fmt.Sprintf("Parsed %s: %d capabilities, %d requirements",
			filepath.Base(path), len(doc.Capabilities), len(doc.Requirements)))
	}

	// Phase 2: synthesize and register the emulator config.
	o.progress(sess.ID, PhaseSynth, 2)
	cfg := o.synth.Synthesize(req.BoardName, docs, req.EmulatorID)
	if err := o.registry.PutConfig(cfg); err != nil {
		return fail(PhaseSynth, err)
	}
	sess.EmulatorID = cfg.EmulatorID
	o.log(ctx, sess.ID, fmt.Sprintf("Emulator config ready: %s (%s)", cfg.EmulatorID, cfg.Image))

	// Phase 3: generate and register the test suite.
	o.progress(sess.ID, PhaseGenerate, 3)
	tests := o.gen.GenerateAll(cfg)
	if err := o.registry.PutTestSet(cfg.EmulatorID, tests); err != nil {
		return fail(PhaseGenerate, err)
	}
	o.log(ctx, sess.ID, fmt.Sprintf("Generated %d test cases", len(tests)))

	// Phase 4: stage the firmware binary.
	o.progress(sess.ID, PhaseStage, 4)
	firmware, err := o.stageFirmware(sess.ID, req.FirmwarePath)
	if err != nil {
		return fail(PhaseStage, err)
	}
	sess.Firmware = firmware
	if err := o.store.Update(ctx, sess); err != nil {
		return fail(PhaseStage, err)
	}
	o.log(ctx, sess.ID, fmt.Sprintf("Firmware staged: %s (%d bytes)", firmware.Filename, firmware.SizeBytes))

	// Phase 5: execute. The environment is stopped whatever the outcome.
	o.progress(sess.ID, PhaseExecute, 5)
	env, outcomes, execErr := o.backend.Execute(ctx, cfg, tests, firmware, func(message string) {
		o.log(ctx, sess.ID, message)
	})
	if env != nil {
		defer o.backend.Stop(ctx, env)
	}
	if execErr != nil {
		return fail(PhaseExecute, execErr)
	}
	sess.Outcomes = outcomes
	if err := o.store.Update(ctx, sess); err != nil {
		return fail(PhaseExecute, err)
	}

	// Phase 6: synthesize and register the report.
	o.progress(sess.ID, PhaseReport, 6)
	rpt = o.reports.Synthesize(cfg, firmware, outcomes)
	if err := o.registry.PutReport(rpt); err != nil {
		return fail(PhaseReport, err)
	}

	sess.Status = model.SessionCompleted
	sess.ReportID = rpt.ReportID
	if err := o.store.Update(ctx, sess); err != nil {
		return fail(PhaseReport, err)
	}
	o.log(ctx, sess.ID, fmt.Sprintf("Verdict: %s (pass rate %.1f%%)", rpt.Verdict, rpt.Summary.PassRate))

	return sessionID, rpt, nil
}

// stageFirmware copies the uploaded binary into the staging directory and
// records its content hash and size. Identical content uploaded twice gets
// two records; staging never deduplicates.
func (o *Orchestrator) stageFirmware(sessionID, path string) (model.FirmwareInfo, error) {
	src, err := os.Open(path)
	if err != nil {
		return model.FirmwareInfo{}, fmt.Errorf("open firmware: %w", err)
	}
	defer src.Close()

	filename := filepath.Base(path)
	stored := filepath.Join(o.firmwareDir, sessionID+"_"+filename)
	dst, err := os.OpenFile(stored, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return model.FirmwareInfo{}, fmt.Errorf("stage firmware: %w", err)
	}

	hasher := sha256.New()
	size, err := io.Copy(io.MultiWriter(dst, hasher), src)
	if err != nil {
		dst.Close()
		return model.FirmwareInfo{}, fmt.Errorf("stage firmware: %w", err)
	}
	if err := dst.Close(); err != nil {
		return model.FirmwareInfo{}, fmt.Errorf("stage firmware: %w", err)
	}

	return model.FirmwareInfo{
		Filename:   filename,
		Path:       stored,
		SHA256:     hex.EncodeToString(hasher.Sum(nil)),
		SizeBytes:  size,
		UploadedAt: o.now(),
	}, nil
}

// progress announces the start of a phase to every sink.
func (o *Orchestrator) progress(sessionID, phase string, step int) {
	o.emit(Event{
		SessionID: sessionID,
		Kind:      EventProgress,
		Phase:     phase,
		Step:      step,
		Total:     len(phases),
		Timestamp: o.now(),
	})
}

// log appends one line to the session's log stream and mirrors it to the
// sinks. Store and sink failures are logged, never propagated.
func (o *Orchestrator) log(ctx context.Context, sessionID, message string) {
	if err := o.store.AppendLog(ctx, sessionID, message); err != nil {
		o.logger.Warn("session log append failed", "session", sessionID, "error", err)
	}
	o.emit(Event{
		SessionID: sessionID,
		Kind:      EventLog,
		Message:   message,
		Timestamp: o.now(),
	})
}

func (o *Orchestrator) emit(event Event) {
	for _, sink := range o.sinks {
		if err := sink.Emit(event); err != nil {
			o.logger.Warn("sink delivery failed", "session", event.SessionID, "error", err)
		}
	}
}
