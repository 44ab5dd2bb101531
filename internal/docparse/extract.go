package docparse

import (
	"fmt"
	"sort"
	"strings"

	"github.com/firmlab/firmlab/internal/model"
)

// extractCapabilities pulls testable capabilities out of a parsed record.
// Capabilities come from the "capabilities" (or "features") list; hardware
// component blocks under "hardware"/"components" become HW_<NAME>
// capabilities with their configuration as parameters.
func extractCapabilities(parsed map[string]any) []model.Capability {
	var caps []model.Capability

	capsData := firstPresent(parsed, "capabilities", "features")
	if list, ok := capsData.([]any); ok {
		for i, entry := range list {
			switch cap := entry.(type) {
			case map[string]any:
				caps = append(caps, model.Capability{
					ID:           stringOr(cap, fmt.Sprintf("CAP_%03d", i+1), "id", "capability_id"),
					Name:         stringOr(cap, fmt.Sprintf("Capability %d", i+1), "name", "title"),
					Category:     stringOr(cap, "general", "category"),
					Description:  stringOr(cap, "", "description"),
					Testable:     boolOr(cap, true, "testable"),
					Parameters:   mapOr(cap, "parameters", "params"),
					Requirements: stringSliceOr(cap, "requirements"),
					TestCriteria: mapOr(cap, "test_criteria", "criteria"),
				})
			case string:
				caps = append(caps, model.Capability{
					ID:          fmt.Sprintf("CAP_%03d", i+1),
					Name:        cap,
					Category:    "general",
					Description: cap,
					Testable:    true,
				})
			}
		}
	}

	if hw, ok := firstPresent(parsed, "hardware", "components").(map[string]any); ok {
		// Sorted for deterministic capability order across runs.
		names := make([]string, 0, len(hw))
		for name := range hw {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			comp, ok := hw[name].(map[string]any)
			if !ok {
				continue
			}
			caps = append(caps, model.Capability{
				ID:          "HW_" + strings.ToUpper(name),
				Name:        name,
				Category:    "hardware",
				Description: fmt.Sprintf("%v", comp),
				Testable:    true,
				Parameters:  comp,
			})
		}
	}

	return caps
}

// extractRequirements pulls requirements out of a parsed record.
// Structured entries must carry a valid severity (absent defaults to
// medium; an unknown value is an error for the whole document). Bare
// string requirements get a heuristic severity: must/critical wording is
// critical, should wording is high, anything else medium.
func extractRequirements(parsed map[string]any) ([]model.Requirement, error) {
	var reqs []model.Requirement

	reqsData := firstPresent(parsed, "requirements", "specs")
	list, ok := reqsData.([]any)
	if !ok {
		return nil, nil
	}

	for i, entry := range list {
		switch req := entry.(type) {
		case map[string]any:
			sevRaw := stringOr(req, string(model.SeverityMedium), "severity")
			sev, err := model.ParseSeverity(sevRaw)
			if err != nil {
				return nil, fmt.Errorf("requirement %d: %w", i+1, err)
			}
			reqs = append(reqs, model.Requirement{
				ID:                 stringOr(req, fmt.Sprintf("REQ_%03d", i+1), "id"),
				Title:              stringOr(req, fmt.Sprintf("Requirement %d", i+1), "title", "name"),
				Description:        stringOr(req, "", "description"),
				Category:           stringOr(req, "functional", "category"),
				Severity:           sev,
				AcceptanceCriteria: stringSliceOr(req, "acceptance_criteria", "criteria"),
				LinkedCapabilities: stringSliceOr(req, "linked_capabilities"),
			})
		case string:
			lower := strings.ToLower(req)
			sev := model.SeverityMedium
			switch {
			case strings.Contains(lower, "critical") || strings.Contains(lower, "must"):
				sev = model.SeverityCritical
			case strings.Contains(lower, "should"):
				sev = model.SeverityHigh
			}
			title := req
			if len(title) > 50 {
				title = title[:50] + "..."
			}
			reqs = append(reqs, model.Requirement{
				ID:          fmt.Sprintf("REQ_%03d", i+1),
				Title:       title,
				Description: req,
				Category:    "functional",
				Severity:    sev,
			})
		}
	}

	return reqs, nil
}

// extractHardwareSpec pulls the hardware description out of a parsed
// record. Absent fields stay placeholders ("unknown", zero) rather than
// being defaulted here: a document must only pin the fields it actually
// states, so a later document's concrete value can still land during
// synthesis. Synthesis substitutes defaults for whatever no document
// supplied.
func extractHardwareSpec(parsed map[string]any) model.HardwareSpec {
	spec := model.HardwareSpec{
		SoC:          stringOr(parsed, "unknown", "soc", "soc_id"),
		Vendor:       stringOr(parsed, "unknown", "vendor"),
		Architecture: stringOr(parsed, "", "architecture"),
		Interfaces:   stringSliceOr(parsed, "interfaces"),
		Peripherals:  stringSliceOr(parsed, "peripherals"),
	}

	if cpu, ok := parsed["cpu"].(map[string]any); ok {
		spec.CPUType = stringOr(cpu, spec.CPUType, "type")
		spec.CPUCores = intOr(cpu, spec.CPUCores, "cores")
		spec.CPUFrequencyMHz = intOr(cpu, spec.CPUFrequencyMHz, "frequency_mhz")
	} else {
		spec.CPUType = stringOr(parsed, spec.CPUType, "cpu_type")
		spec.CPUCores = intOr(parsed, spec.CPUCores, "cpu_cores")
	}

	if mem, ok := parsed["memory"].(map[string]any); ok {
		spec.MemoryMB = intOr(mem, spec.MemoryMB, "size_mb")
	} else {
		spec.MemoryMB = intOr(parsed, spec.MemoryMB, "memory_mb")
	}

	if flash, ok := parsed["flash"].(map[string]any); ok {
		spec.FlashMB = intOr(flash, spec.FlashMB, "size_mb")
	} else {
		spec.FlashMB = intOr(parsed, spec.FlashMB, "flash_mb")
	}

	return spec
}

// firstPresent returns the value for the first key present in the map.
func firstPresent(m map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			return v
		}
	}
	return nil
}

func stringOr(m map[string]any, fallback string, keys ...string) string {
	for _, k := range keys {
		if v, ok := m[k].(string); ok && v != "" {
			return v
		}
	}
	return fallback
}

func boolOr(m map[string]any, fallback bool, keys ...string) bool {
	for _, k := range keys {
		if v, ok := m[k].(bool); ok {
			return v
		}
	}
	return fallback
}

// intOr tolerates the numeric types the format parsers produce: YAML
// yields int, JSON yields float64.
func intOr(m map[string]any, fallback int, keys ...string) int {
	for _, k := range keys {
		switch v := m[k].(type) {
		case int:
			return v
		case int64:
			return int(v)
		case float64:
			return int(v)
		}
	}
	return fallback
}

func mapOr(m map[string]any, keys ...string) map[string]any {
	for _, k := range keys {
		if v, ok := m[k].(map[string]any); ok {
			return v
		}
	}
	return nil
}

func stringSliceOr(m map[string]any, keys ...string) []string {
	for _, k := range keys {
		list, ok := m[k].([]any)
		if !ok {
			continue
		}
		out := make([]string, 0, len(list))
		for _, entry := range list {
			if s, ok := entry.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
