package synth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/firmlab/firmlab/internal/docparse"
	"github.com/firmlab/firmlab/internal/model"
	"github.com/firmlab/firmlab/internal/testutil"
)

func newTestSynthesizer(t *testing.T, tokens ...string) *Synthesizer {
	t.Helper()
	clock := testutil.NewFixedClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC), 0)
	return New(testutil.NewFixedTokenGenerator(tokens...), WithClock(clock.Now))
}

func TestSynthesize_EmptyInput(t *testing.T) {
	s := newTestSynthesizer(t, "EMU_AAAA0001")

	cfg := s.Synthesize("test-board", nil, "")

	assert.Equal(t, "EMU_AAAA0001", cfg.EmulatorID)
	assert.Equal(t, "test-board", cfg.BoardName)
	assert.Equal(t, "unknown", cfg.SoCID)
	assert.Equal(t, "unknown", cfg.Vendor)
	assert.Equal(t, "aarch64", cfg.Architecture)
	assert.Equal(t, 4, cfg.CPUCores)
	assert.Equal(t, 1024, cfg.MemoryMB)
	assert.Equal(t, 256, cfg.FlashMB)
	assert.Equal(t, "arm64v8/ubuntu:22.04", cfg.Image)
	assert.Equal(t, model.ConfigReady, cfg.Status)
	assert.Empty(t, cfg.Capabilities)
	assert.Empty(t, cfg.Requirements)
}

func TestSynthesize_CustomID(t *testing.T) {
	s := newTestSynthesizer(t)

	cfg := s.Synthesize("board", nil, "EMU_CUSTOM01")

	assert.Equal(t, "EMU_CUSTOM01", cfg.EmulatorID)
}

func TestSynthesize_FirstConcreteValueWins(t *testing.T) {
	s := newTestSynthesizer(t, "EMU_AAAA0001")

	docs := []*docparse.Document{
		{
			FilePath: "a.yaml",
			Hardware: model.HardwareSpec{SoC: "unknown", Vendor: "unknown", MemoryMB: 2048},
		},
		{
			FilePath: "b.yaml",
			Hardware: model.HardwareSpec{SoC: "IPQ9574", Vendor: "Qualcomm", MemoryMB: 512},
		},
		{
			FilePath: "c.yaml",
			Hardware: model.HardwareSpec{SoC: "MT7986", Vendor: "MediaTek"},
		},
	}

	cfg := s.Synthesize("board", docs, "")

	// "unknown" is a placeholder a later document fills in; a concrete
	// value is never overwritten by a later one.
	assert.Equal(t, "IPQ9574", cfg.SoCID)
	assert.Equal(t, "Qualcomm", cfg.Vendor)
	assert.Equal(t, 2048, cfg.MemoryMB)
	assert.Equal(t, []string{"a.yaml", "b.yaml", "c.yaml"}, cfg.SourceDocuments)
}

func TestSynthesize_ParsedDocumentOnlyPinsStatedFields(t *testing.T) {
	s := newTestSynthesizer(t, "EMU_AAAA0001")

	first, err := docparse.Parse("base.yaml", []byte("soc: MT7621\nvendor: MediaTek\n"))
	require.NoError(t, err)
	second, err := docparse.Parse("sizing.yaml", []byte("architecture: mips\ncpu_cores: 2\nmemory_mb: 256\n"))
	require.NoError(t, err)

	cfg := s.Synthesize("board", []*docparse.Document{first, second}, "")

	// base.yaml says nothing about the architecture or sizing, so the
	// later document's concrete values win.
	assert.Equal(t, "MT7621", cfg.SoCID)
	assert.Equal(t, "MediaTek", cfg.Vendor)
	assert.Equal(t, "mips", cfg.Architecture)
	assert.Equal(t, 2, cfg.CPUCores)
	assert.Equal(t, 256, cfg.MemoryMB)
	assert.Equal(t, "ubuntu:22.04", cfg.Image)
}

func TestSynthesize_ConcatenatesWithoutDeduplication(t *testing.T) {
	s := newTestSynthesizer(t, "EMU_AAAA0001")

	capA := model.Capability{ID: "CAP_001", Name: "WiFi"}
	reqA := model.Requirement{ID: "REQ_001", Title: "Boot budget", Severity: model.SeverityCritical}
	docs := []*docparse.Document{
		{Capabilities: []model.Capability{capA}, Requirements: []model.Requirement{reqA}},
		{Capabilities: []model.Capability{capA}, Requirements: []model.Requirement{reqA}},
	}

	cfg := s.Synthesize("board", docs, "")

	require.Len(t, cfg.Capabilities, 2)
	require.Len(t, cfg.Requirements, 2)
	assert.Equal(t, cfg.Capabilities[0].ID, cfg.Capabilities[1].ID)
}

func TestBaseImage(t *testing.T) {
	assert.Equal(t, "arm64v8/ubuntu:22.04", BaseImage("aarch64"))
	assert.Equal(t, "arm64v8/ubuntu:22.04", BaseImage("arm64"))
	assert.Equal(t, "arm32v7/ubuntu:22.04", BaseImage("armv7"))
	assert.Equal(t, "arm32v7/ubuntu:22.04", BaseImage("arm"))
	assert.Equal(t, "ubuntu:22.04", BaseImage("x86_64"))
	assert.Equal(t, "ubuntu:22.04", BaseImage(""))
}
