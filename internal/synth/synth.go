// Package synth merges parsed document fragments into one EmulatorConfig.
//
// Synthesis is forgiving: malformed or empty input produces a config with
// placeholder hardware values rather than an error. Capability and
// requirement lists are concatenated across documents; duplicate IDs are
// preserved, not merged.
package synth

import (
	"log/slog"
	"time"

	"github.com/firmlab/firmlab/internal/docparse"
	"github.com/firmlab/firmlab/internal/model"
)

// Synthesizer builds EmulatorConfigs from parsed documents.
type Synthesizer struct {
	tokens model.TokenGenerator
	now    func() time.Time
	logger *slog.Logger
}

// Option configures a Synthesizer.
type Option func(*Synthesizer)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Synthesizer) { s.now = now }
}

// WithLogger overrides the default logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Synthesizer) { s.logger = logger }
}

// New returns a Synthesizer that mints emulator IDs with tokens.
func New(tokens model.TokenGenerator, opts ...Option) *Synthesizer {
	s := &Synthesizer{
		tokens: tokens,
		now:    func() time.Time { return time.Now().UTC() },
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Synthesize merges the documents into one EmulatorConfig for boardName.
// customID, when non-empty, becomes the emulator ID verbatim; otherwise a
// fresh EMU_ token is generated. The returned config is ready: its
// execution descriptor (image identity) has been derived.
func (s *Synthesizer) Synthesize(boardName string, docs []*docparse.Document, customID string) model.EmulatorConfig {
	hw := mergeHardware(docs)

	cfg := model.EmulatorConfig{
		EmulatorID:   customID,
		BoardName:    boardName,
		SoCID:        hw.SoC,
		Vendor:       hw.Vendor,
		Architecture: hw.Architecture,
		CPUType:      hw.CPUType,
		CPUCores:     hw.CPUCores,
		MemoryMB:     hw.MemoryMB,
		FlashMB:      hw.FlashMB,
		CreatedAt:    s.now(),
		Status:       model.ConfigCreated,
	}
	if cfg.EmulatorID == "" {
		cfg.EmulatorID = s.tokens.Generate("EMU")
	}

	for _, doc := range docs {
		cfg.Capabilities = append(cfg.Capabilities, doc.Capabilities...)
		cfg.Requirements = append(cfg.Requirements, doc.Requirements...)
		cfg.SourceDocuments = append(cfg.SourceDocuments, doc.FilePath)
	}

	cfg.Image = BaseImage(cfg.Architecture)
	cfg.Status = model.ConfigReady

	s.logger.Info("config synthesized",
		"emulator_id", cfg.EmulatorID,
		"board", cfg.BoardName,
		"capabilities", len(cfg.Capabilities),
		"requirements", len(cfg.Requirements),
	)
	return cfg
}

// BaseImage maps a CPU architecture to the isolated-environment base image.
func BaseImage(architecture string) string {
	switch architecture {
	case "aarch64", "arm64":
		return "arm64v8/ubuntu:22.04"
	case "arm", "armv7":
		return "arm32v7/ubuntu:22.04"
	default:
		return "ubuntu:22.04"
	}
}

// mergeHardware folds the per-document hardware specs left to right.
// The earliest concrete value for each field wins; "unknown", the empty
// string and zero are placeholders a later document may fill in.
func mergeHardware(docs []*docparse.Document) model.HardwareSpec {
	merged := model.HardwareSpec{
		SoC:             "unknown",
		Vendor:          "unknown",
		Architecture:    "aarch64",
		CPUType:         "ARM Cortex-A53",
		CPUCores:        4,
		CPUFrequencyMHz: 1500,
		MemoryMB:        1024,
		FlashMB:         256,
	}
	if len(docs) == 0 {
		return merged
	}

	// Fold left to right, then substitute defaults for anything no
	// document supplied.
	acc := model.HardwareSpec{SoC: "unknown", Vendor: "unknown"}
	for _, doc := range docs {
		hw := doc.Hardware
		acc.SoC = pickString(acc.SoC, hw.SoC)
		acc.Vendor = pickString(acc.Vendor, hw.Vendor)
		acc.Architecture = pickString(acc.Architecture, hw.Architecture)
		acc.CPUType = pickString(acc.CPUType, hw.CPUType)
		acc.CPUCores = pickInt(acc.CPUCores, hw.CPUCores)
		acc.CPUFrequencyMHz = pickInt(acc.CPUFrequencyMHz, hw.CPUFrequencyMHz)
		acc.MemoryMB = pickInt(acc.MemoryMB, hw.MemoryMB)
		acc.FlashMB = pickInt(acc.FlashMB, hw.FlashMB)
		if len(acc.Interfaces) == 0 {
			acc.Interfaces = hw.Interfaces
		}
		if len(acc.Peripherals) == 0 {
			acc.Peripherals = hw.Peripherals
		}
	}

	acc.SoC = pickString(acc.SoC, merged.SoC)
	acc.Vendor = pickString(acc.Vendor, merged.Vendor)
	acc.Architecture = pickString(acc.Architecture, merged.Architecture)
	acc.CPUType = pickString(acc.CPUType, merged.CPUType)
	acc.CPUCores = pickInt(acc.CPUCores, merged.CPUCores)
	acc.CPUFrequencyMHz = pickInt(acc.CPUFrequencyMHz, merged.CPUFrequencyMHz)
	acc.MemoryMB = pickInt(acc.MemoryMB, merged.MemoryMB)
	acc.FlashMB = pickInt(acc.FlashMB, merged.FlashMB)
	return acc
}

// pickString keeps current unless it is a placeholder.
func pickString(current, candidate string) string {
	if current != "" && current != "unknown" {
		return current
	}
	if candidate != "" && candidate != "unknown" {
		return candidate
	}
	return current
}

// pickInt keeps current unless it is zero.
func pickInt(current, candidate int) int {
	if current != 0 {
		return current
	}
	return candidate
}
