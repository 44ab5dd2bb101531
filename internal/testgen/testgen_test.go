package testgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/firmlab/firmlab/internal/model"
)

func TestGenerateBootTests_FixedSuite(t *testing.T) {
	g := New(nil)

	tests := g.GenerateBootTests(model.EmulatorConfig{BoardName: "router-x"})

	require.Len(t, tests, 6)
	wantIDs := []string{
		"BOOT_COLD_001", "BOOT_WARM_001", "BOOT_TIME_001",
		"BOOT_WDT_001", "BOOT_INTEGRITY_001", "BOOT_RECOVERY_001",
	}
	for i, test := range tests {
		assert.Equal(t, wantIDs[i], test.ID)
		assert.Equal(t, model.CategoryBoot, test.Category)
		assert.NotEmpty(t, test.Steps)
		assert.NotEmpty(t, test.ExpectedResults)
		assert.Positive(t, test.TimeoutSec)
	}

	assert.Contains(t, tests[0].Description, "router-x")
	assert.Equal(t, model.SeverityCritical, tests[0].Severity)
	assert.Equal(t, 180, tests[0].TimeoutSec)
	assert.Equal(t, 90, tests[1].TimeoutSec)
	assert.Equal(t, model.SeverityMedium, tests[5].Severity)
}

func TestGenerateBootTests_LinksUpToTwoBootRequirements(t *testing.T) {
	g := New(nil)
	cfg := model.EmulatorConfig{
		Requirements: []model.Requirement{
			{ID: "REQ_001", Title: "Boot time", Description: "Boot within 120s"},
			{ID: "REQ_002", Title: "WiFi range", Description: "Coverage"},
			{ID: "REQ_003", Title: "Recovery", Description: "boot into recovery"},
			{ID: "REQ_004", Title: "Watchdog reboot", Description: "reboot on hang during boot"},
		},
	}

	tests := g.GenerateBootTests(cfg)

	for _, test := range tests {
		assert.Equal(t, []string{"REQ_001", "REQ_003"}, test.LinkedRequirements)
	}
}

func TestGenerateBootTests_NoBootRequirements(t *testing.T) {
	g := New(nil)
	cfg := model.EmulatorConfig{
		Requirements: []model.Requirement{
			{ID: "REQ_001", Title: "WiFi range", Description: "Coverage"},
		},
	}

	for _, test := range g.GenerateBootTests(cfg) {
		assert.Empty(t, test.LinkedRequirements)
	}
}

func TestGenerateFeatureTests_CapabilityTests(t *testing.T) {
	g := New(nil)
	cfg := model.EmulatorConfig{
		Capabilities: []model.Capability{
			{ID: "CAP_001", Name: "WiFi 6", Category: "wireless"},
			{ID: "CAP_002", Name: "Switch", Category: "unmapped-thing"},
		},
	}

	tests := g.GenerateFeatureTests(cfg)

	require.Len(t, tests, 2)
	assert.Equal(t, "CAP_001_FUNC_001", tests[0].ID)
	assert.Equal(t, "WiFi 6 - Basic Functionality", tests[0].Name)
	assert.Equal(t, model.CategoryWifi, tests[0].Category)
	assert.Equal(t, model.SeverityHigh, tests[0].Severity)
	assert.Equal(t, 60, tests[0].TimeoutSec)
	assert.Equal(t, []string{"CAP_001"}, tests[0].LinkedCapabilities)

	// Unmapped categories default to performance.
	assert.Equal(t, model.CategoryPerformance, tests[1].Category)
}

func TestGenerateFeatureTests_LinksAtMostThreeRequirements(t *testing.T) {
	g := New(nil)
	cfg := model.EmulatorConfig{
		Capabilities: []model.Capability{
			{ID: "CAP_001", Name: "WiFi", Category: "wifi"},
		},
		Requirements: []model.Requirement{
			{ID: "REQ_001", Description: "wifi throughput over 1Gbps"},
			{ID: "REQ_002", Description: "unrelated", LinkedCapabilities: []string{"CAP_001"}},
			{ID: "REQ_003", Description: "WiFi mesh support"},
			{ID: "REQ_004", Description: "wifi roaming"},
		},
	}

	tests := g.GenerateFeatureTests(cfg)

	require.NotEmpty(t, tests)
	assert.Equal(t, []string{"REQ_001", "REQ_002", "REQ_003"}, tests[0].LinkedRequirements)

	// REQ_004 was not linked, so it gets its own requirement test.
	last := tests[len(tests)-1]
	assert.Equal(t, "REQ_REQ_004_TEST", last.ID)
}

func TestGenerateFeatureTests_RequirementTestFromCriteria(t *testing.T) {
	g := New(nil)
	cfg := model.EmulatorConfig{
		Requirements: []model.Requirement{
			{
				ID:       "REQ_010",
				Title:    "Throughput",
				Severity: model.SeverityHigh,
				Category: "network",
				AcceptanceCriteria: []string{
					"criterion one", "criterion two", "criterion three", "criterion four",
				},
			},
			{ID: "REQ_011", Title: "Bare", Severity: model.SeverityLow, Category: "odd"},
		},
	}

	tests := g.GenerateFeatureTests(cfg)

	require.Len(t, tests, 2)
	withCriteria := tests[0]
	assert.Equal(t, "REQ_REQ_010_TEST", withCriteria.ID)
	assert.Equal(t, model.CategoryNetwork, withCriteria.Category)
	assert.Equal(t, model.SeverityHigh, withCriteria.Severity)
	assert.Equal(t, 120, withCriteria.TimeoutSec)
	// First step is the scenario, then the first three criteria.
	require.Len(t, withCriteria.Steps, 4)
	assert.Equal(t, "Verify: criterion one", withCriteria.Steps[1].Action)
	assert.Len(t, withCriteria.ExpectedResults, 4)

	bare := tests[1]
	assert.Equal(t, []string{"Requirement satisfied"}, bare.ExpectedResults)
	assert.Equal(t, model.CategoryPerformance, bare.Category)
	assert.Len(t, bare.Steps, 1)
}

func TestGenerateAll_Deterministic(t *testing.T) {
	g := New(nil)
	cfg := model.EmulatorConfig{
		BoardName:    "b",
		Capabilities: []model.Capability{{ID: "CAP_001", Name: "USB", Category: "usb"}},
		Requirements: []model.Requirement{{ID: "REQ_001", Title: "r", Description: "d"}},
	}

	first := g.GenerateAll(cfg)
	second := g.GenerateAll(cfg)

	assert.Equal(t, first, second)
	assert.Equal(t, "BOOT_COLD_001", first[0].ID)
	assert.Equal(t, "CAP_001_FUNC_001", first[6].ID)
}

func TestMapCategory(t *testing.T) {
	assert.Equal(t, model.CategoryNetwork, MapCategory("networking"))
	assert.Equal(t, model.CategoryWifi, MapCategory("Wireless"))
	assert.Equal(t, model.CategoryVoice, MapCategory("voip"))
	assert.Equal(t, model.CategorySecurity, MapCategory("security"))
	assert.Equal(t, model.CategoryPerformance, MapCategory("anything-else"))
}
