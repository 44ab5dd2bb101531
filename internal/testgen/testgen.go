// Package testgen derives executable test cases from an EmulatorConfig.
//
// Two independent, deterministic rules: a fixed boot-sequence suite that
// every board gets, and a feature rule that emits one functional test per
// capability plus one test per requirement not already linked to a
// generated test. Given the same config, generation always yields the
// same test list in the same order.
package testgen

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/firmlab/firmlab/internal/model"
)

// Generator produces test cases from a synthesized config.
type Generator struct {
	logger *slog.Logger
}

// New returns a Generator.
func New(logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{logger: logger}
}

// GenerateAll emits the boot suite followed by the feature tests.
func (g *Generator) GenerateAll(cfg model.EmulatorConfig) []model.TestCase {
	tests := g.GenerateBootTests(cfg)
	tests = append(tests, g.GenerateFeatureTests(cfg)...)
	return tests
}

// GenerateBootTests emits the fixed boot-sequence suite. Boot behavior is
// tested on every board class regardless of declared capabilities. When
// the config carries requirements mentioning "boot" in their title or
// description, up to two of them are linked to every boot test.
func (g *Generator) GenerateBootTests(cfg model.EmulatorConfig) []model.TestCase {
	tests := []model.TestCase{
		{
			ID:          "BOOT_COLD_001",
			Name:        "Cold Boot Sequence Test",
			Category:    model.CategoryBoot,
			Severity:    model.SeverityCritical,
			Description: fmt.Sprintf("Verify cold boot sequence for %s", cfg.BoardName),
			Preconditions: []string{
				"Device is powered off",
				"Firmware is loaded",
			},
			Steps: []model.TestStep{
				{Action: "Power on device", Expected: "Boot sequence starts"},
				{Action: "Monitor bootloader stage", Expected: "Bootloader initializes within 5s"},
				{Action: "Monitor kernel stage", Expected: "Kernel loads within 30s"},
				{Action: "Monitor rootfs mount", Expected: "Root filesystem mounts"},
				{Action: "Monitor services", Expected: "All critical services start"},
			},
			ExpectedResults: []string{
				"Boot completes within 120 seconds",
				"All boot stages complete successfully",
				"No error messages in boot log",
			},
			TimeoutSec: 180,
		},
		{
			ID:          "BOOT_WARM_001",
			Name:        "Warm Boot (Reboot) Test",
			Category:    model.CategoryBoot,
			Severity:    model.SeverityCritical,
			Description: "Verify warm boot/reboot sequence",
			Preconditions: []string{
				"Device is running",
				"System is stable",
			},
			Steps: []model.TestStep{
				{Action: "Issue reboot command", Expected: "Reboot initiated"},
				{Action: "Monitor shutdown sequence", Expected: "Services stop gracefully"},
				{Action: "Monitor boot sequence", Expected: "System reboots"},
			},
			ExpectedResults: []string{
				"Reboot completes within 60 seconds",
				"All services restart correctly",
				"System state preserved where applicable",
			},
			TimeoutSec: 90,
		},
		{
			ID:          "BOOT_TIME_001",
			Name:        "Boot Timing Verification",
			Category:    model.CategoryBoot,
			Severity:    model.SeverityHigh,
			Description: "Verify boot timing meets requirements",
			Preconditions: []string{
				"Device is powered off",
			},
			Steps: []model.TestStep{
				{Action: "Start timing at power-on", Expected: "Timer starts"},
				{Action: "Record bootloader time", Expected: "Bootloader completes"},
				{Action: "Record kernel time", Expected: "Kernel ready"},
				{Action: "Record service time", Expected: "Services ready"},
				{Action: "Record total boot time", Expected: "System fully operational"},
			},
			ExpectedResults: []string{
				"Bootloader stage < 10 seconds",
				"Kernel initialization < 30 seconds",
				"Total boot time < 120 seconds",
			},
			TimeoutSec: 180,
		},
		{
			ID:          "BOOT_WDT_001",
			Name:        "Watchdog Timer Test",
			Category:    model.CategoryBoot,
			Severity:    model.SeverityHigh,
			Description: "Verify watchdog timer functionality",
			Preconditions: []string{
				"Device is running",
				"Watchdog is enabled",
			},
			Steps: []model.TestStep{
				{Action: "Verify watchdog is active", Expected: "Watchdog daemon running"},
				{Action: "Simulate system hang", Expected: "Watchdog detects hang"},
				{Action: "Wait for watchdog timeout", Expected: "System reboots automatically"},
			},
			ExpectedResults: []string{
				"Watchdog triggers reboot on hang",
				"System recovers after watchdog reset",
			},
			TimeoutSec: 120,
		},
		{
			ID:          "BOOT_INTEGRITY_001",
			Name:        "Bootloader Integrity Verification",
			Category:    model.CategoryBoot,
			Severity:    model.SeverityCritical,
			Description: "Verify bootloader integrity and secure boot",
			Preconditions: []string{
				"Fresh boot",
			},
			Steps: []model.TestStep{
				{Action: "Check bootloader signature", Expected: "Signature valid"},
				{Action: "Verify boot chain", Expected: "Chain of trust intact"},
				{Action: "Check secure boot status", Expected: "Secure boot enabled"},
			},
			ExpectedResults: []string{
				"Bootloader signature verification passes",
				"Boot chain integrity verified",
			},
			TimeoutSec: 60,
		},
		{
			ID:          "BOOT_RECOVERY_001",
			Name:        "Boot Recovery Mode Test",
			Category:    model.CategoryBoot,
			Severity:    model.SeverityMedium,
			Description: "Verify boot recovery mode functionality",
			Preconditions: []string{
				"Recovery mode accessible",
			},
			Steps: []model.TestStep{
				{Action: "Enter recovery mode", Expected: "Recovery mode activates"},
				{Action: "Verify recovery options", Expected: "Options available"},
				{Action: "Exit recovery mode", Expected: "Normal boot resumes"},
			},
			ExpectedResults: []string{
				"Recovery mode accessible",
				"Factory reset option available",
				"Firmware update option available",
			},
			TimeoutSec: 180,
		},
	}

	var bootReqs []string
	for _, req := range cfg.Requirements {
		if strings.Contains(strings.ToLower(req.Title), "boot") ||
			strings.Contains(strings.ToLower(req.Description), "boot") {
			bootReqs = append(bootReqs, req.ID)
			if len(bootReqs) == 2 {
				break
			}
		}
	}
	if len(bootReqs) > 0 {
		for i := range tests {
			tests[i].LinkedRequirements = bootReqs
		}
	}

	g.logger.Info("boot tests generated", "emulator_id", cfg.EmulatorID, "count", len(tests))
	return tests
}

// GenerateFeatureTests emits one basic-functionality test per capability,
// then one requirement test for every requirement no capability test
// linked. Capability order and requirement order follow the config.
func (g *Generator) GenerateFeatureTests(cfg model.EmulatorConfig) []model.TestCase {
	var tests []model.TestCase

	linked := make(map[string]bool)
	for _, cap := range cfg.Capabilities {
		test := g.capabilityTest(cap, cfg.Requirements)
		for _, id := range test.LinkedRequirements {
			linked[id] = true
		}
		tests = append(tests, test)
	}

	for _, req := range cfg.Requirements {
		if linked[req.ID] {
			continue
		}
		tests = append(tests, g.requirementTest(req))
	}

	g.logger.Info("feature tests generated", "emulator_id", cfg.EmulatorID, "count", len(tests))
	return tests
}

// capabilityTest builds the single functional test for one capability,
// linking up to three requirements that reference it (by name containment
// in the requirement description, or by explicit linked_capabilities).
func (g *Generator) capabilityTest(cap model.Capability, reqs []model.Requirement) model.TestCase {
	var linkedReqs []string
	nameLower := strings.ToLower(cap.Name)
	for _, req := range reqs {
		if strings.Contains(strings.ToLower(req.Description), nameLower) || contains(req.LinkedCapabilities, cap.ID) {
			linkedReqs = append(linkedReqs, req.ID)
			if len(linkedReqs) == 3 {
				break
			}
		}
	}

	return model.TestCase{
		ID:          cap.ID + "_FUNC_001",
		Name:        cap.Name + " - Basic Functionality",
		Category:    MapCategory(cap.Category),
		Severity:    model.SeverityHigh,
		Description: "Verify basic functionality of " + cap.Name,
		Preconditions: []string{
			cap.Name + " is enabled",
			"System is stable",
		},
		Steps: []model.TestStep{
			{Action: "Initialize " + cap.Name, Expected: "Initialization successful"},
			{Action: "Verify " + cap.Name + " status", Expected: "Status is operational"},
			{Action: "Perform basic operation", Expected: "Operation completes"},
		},
		ExpectedResults: []string{
			cap.Name + " initializes correctly",
			cap.Name + " performs expected function",
		},
		TimeoutSec:         60,
		LinkedRequirements: linkedReqs,
		LinkedCapabilities: []string{cap.ID},
	}
}

// requirementTest builds the verification test for a requirement with no
// capability-level coverage. The first three acceptance criteria become
// verification steps; a requirement with no criteria still produces a test
// whose single expected result is "Requirement satisfied".
func (g *Generator) requirementTest(req model.Requirement) model.TestCase {
	steps := []model.TestStep{
		{Action: "Execute test scenario", Expected: "Requirement met"},
	}
	for i, crit := range req.AcceptanceCriteria {
		if i == 3 {
			break
		}
		steps = append(steps, model.TestStep{Action: "Verify: " + crit, Expected: "Pass"})
	}

	expected := req.AcceptanceCriteria
	if len(expected) == 0 {
		expected = []string{"Requirement satisfied"}
	}

	return model.TestCase{
		ID:                 "REQ_" + req.ID + "_TEST",
		Name:               "Requirement: " + req.Title,
		Category:           MapCategory(req.Category),
		Severity:           req.Severity,
		Description:        "Verify requirement: " + req.Description,
		Preconditions:      []string{"System is operational"},
		Steps:              steps,
		ExpectedResults:    expected,
		TimeoutSec:         120,
		LinkedRequirements: []string{req.ID},
	}
}

// categoryMap translates free-text capability/requirement categories into
// test categories. Unmapped categories default to performance.
var categoryMap = map[string]model.Category{
	"network":     model.CategoryNetwork,
	"networking":  model.CategoryNetwork,
	"wifi":        model.CategoryWifi,
	"wireless":    model.CategoryWifi,
	"voice":       model.CategoryVoice,
	"voip":        model.CategoryVoice,
	"usb":         model.CategoryUSB,
	"security":    model.CategorySecurity,
	"management":  model.CategoryManagement,
	"boot":        model.CategoryBoot,
	"performance": model.CategoryPerformance,
	"stress":      model.CategoryStress,
	"boundary":    model.CategoryBoundary,
}

// MapCategory resolves a free-text category to a test category.
func MapCategory(category string) model.Category {
	if c, ok := categoryMap[strings.ToLower(category)]; ok {
		return c
	}
	return model.CategoryPerformance
}

func contains(list []string, s string) bool {
	for _, entry := range list {
		if entry == s {
			return true
		}
	}
	return false
}
