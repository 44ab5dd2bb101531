package model

import "time"

// Capability is a testable hardware/software feature extracted from a
// specification document. IDs are unique within one document but may
// collide across documents; downstream consumers tolerate duplicates.
type Capability struct {
	ID           string         `json:"id" yaml:"id"`
	Name         string         `json:"name" yaml:"name"`
	Category     string         `json:"category" yaml:"category"`
	Description  string         `json:"description" yaml:"description"`
	Testable     bool           `json:"testable" yaml:"testable"`
	Parameters   map[string]any `json:"parameters,omitempty" yaml:"parameters,omitempty"`
	Requirements []string       `json:"requirements,omitempty" yaml:"requirements,omitempty"`
	TestCriteria map[string]any `json:"test_criteria,omitempty" yaml:"test_criteria,omitempty"`
}

// Requirement is a must/should statement extracted from a requirement
// document, with a severity and ordered acceptance criteria.
type Requirement struct {
	ID                 string   `json:"id" yaml:"id"`
	Title              string   `json:"title" yaml:"title"`
	Description        string   `json:"description" yaml:"description"`
	Category           string   `json:"category" yaml:"category"`
	Severity           Severity `json:"severity" yaml:"severity"`
	AcceptanceCriteria []string `json:"acceptance_criteria,omitempty" yaml:"acceptance_criteria,omitempty"`
	LinkedCapabilities []string `json:"linked_capabilities,omitempty" yaml:"linked_capabilities,omitempty"`
}

// HardwareSpec is the partial hardware description carried by one parsed
// document. The string "unknown" and the zero value are placeholders that
// a later document may override during synthesis.
type HardwareSpec struct {
	SoC             string   `json:"soc" yaml:"soc"`
	Vendor          string   `json:"vendor" yaml:"vendor"`
	Architecture    string   `json:"architecture" yaml:"architecture"`
	CPUType         string   `json:"cpu_type" yaml:"cpu_type"`
	CPUCores        int      `json:"cpu_cores" yaml:"cpu_cores"`
	CPUFrequencyMHz int      `json:"cpu_frequency_mhz" yaml:"cpu_frequency_mhz"`
	MemoryMB        int      `json:"memory_mb" yaml:"memory_mb"`
	FlashMB         int      `json:"flash_mb" yaml:"flash_mb"`
	Interfaces      []string `json:"interfaces,omitempty" yaml:"interfaces,omitempty"`
	Peripherals     []string `json:"peripherals,omitempty" yaml:"peripherals,omitempty"`
}

// EmulatorConfig is the synthesized description of one board under test.
// It exclusively owns its capability and requirement sets. EmulatorID is
// immutable once the config has been registered.
type EmulatorConfig struct {
	EmulatorID      string        `json:"emulator_id"`
	BoardName       string        `json:"board_name"`
	SoCID           string        `json:"soc_id"`
	Vendor          string        `json:"vendor"`
	Architecture    string        `json:"architecture"`
	CPUType         string        `json:"cpu_type"`
	CPUCores        int           `json:"cpu_cores"`
	MemoryMB        int           `json:"memory_mb"`
	FlashMB         int           `json:"flash_mb"`
	Capabilities    []Capability  `json:"capabilities"`
	Requirements    []Requirement `json:"requirements"`
	CreatedAt       time.Time     `json:"created_at"`
	SourceDocuments []string      `json:"source_documents"`
	Image           string        `json:"image,omitempty"`
	Status          ConfigStatus  `json:"status"`
}

// TestStep is one action in a test case with its expected observation.
type TestStep struct {
	Action   string `json:"action"`
	Expected string `json:"expected"`
}

// TestCase is one generated, executable test specification.
// IDs are stable and unique within a config's test set: boot tests use
// fixed literals, capability tests use <capability_id>_FUNC_001, and
// requirement tests use REQ_<requirement_id>_TEST.
type TestCase struct {
	ID                 string     `json:"id"`
	Name               string     `json:"name"`
	Category           Category   `json:"category"`
	Severity           Severity   `json:"severity"`
	Description        string     `json:"description"`
	Preconditions      []string   `json:"preconditions"`
	Steps              []TestStep `json:"steps"`
	ExpectedResults    []string   `json:"expected_results"`
	TimeoutSec         int        `json:"timeout_sec"`
	LinkedRequirements []string   `json:"linked_requirements,omitempty"`
	LinkedCapabilities []string   `json:"linked_capabilities,omitempty"`
}

// Evidence collects the audit trail for one test outcome. Checksum is a
// SHA-256 digest (first 16 hex chars) over the NFC-normalized log lines,
// reproducible even when the fallback outcome itself is not.
type Evidence struct {
	Checksum         string `json:"checksum,omitempty"`
	FirmwareChecksum string `json:"firmware_checksum,omitempty"`
	EnvironmentID    string `json:"environment_id,omitempty"`
	Simulated        bool   `json:"simulated,omitempty"`
	Error            string `json:"error,omitempty"`
}

// TestOutcome records the result of executing one TestCase in a session.
// Status is terminal once recorded; there is exactly one outcome per
// test ID per session, produced in submission order.
type TestOutcome struct {
	TestID    string        `json:"test_id"`
	TestName  string        `json:"test_name"`
	Category  Category      `json:"category"`
	Status    OutcomeStatus `json:"status"`
	Duration  time.Duration `json:"duration"`
	Output    string        `json:"output,omitempty"`
	ExitCode  int           `json:"exit_code"`
	Evidence  Evidence      `json:"evidence"`
	Logs      []string      `json:"logs,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
}

// FirmwareInfo describes one uploaded firmware binary. Identical content
// re-uploaded under a different filename gets its own record; there is no
// deduplication.
type FirmwareInfo struct {
	Filename   string    `json:"filename"`
	Path       string    `json:"path"`
	SHA256     string    `json:"sha256"`
	SizeBytes  int64     `json:"size_bytes"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// Summary holds the aggregate counts over a session's outcomes.
// PassRate is passed/total*100 rounded to one decimal, 0 when total is 0.
type Summary struct {
	Total    int     `json:"total"`
	Passed   int     `json:"passed"`
	Failed   int     `json:"failed"`
	Errors   int     `json:"errors"`
	Skipped  int     `json:"skipped"`
	PassRate float64 `json:"pass_rate"`
}

// BootAnalysis restricts the outcome list to boot-category tests.
// Status is "pass" only if every boot outcome passed, "fail" otherwise,
// and "no_boot_tests" when the restricted set is empty.
type BootAnalysis struct {
	Status      string                    `json:"status"`
	TestsRun    int                       `json:"tests_run"`
	TestsPassed int                       `json:"tests_passed"`
	BootTimeSec float64                   `json:"boot_time_sec"`
	Details     map[string]BootTestDetail `json:"details"`
}

// BootTestDetail is the per-test entry in a BootAnalysis.
type BootTestDetail struct {
	Name        string        `json:"name"`
	Status      OutcomeStatus `json:"status"`
	DurationSec float64       `json:"duration_sec"`
}

// CategoryCoverage is the per-category slice of feature coverage.
type CategoryCoverage struct {
	Total    int     `json:"total"`
	Passed   int     `json:"passed"`
	Failed   int     `json:"failed"`
	Coverage float64 `json:"coverage"`
}

// FeatureCoverage groups outcomes by category and counts the categories
// with 100% coverage.
type FeatureCoverage struct {
	ByCategory      map[Category]CategoryCoverage `json:"by_category"`
	TotalCategories int                           `json:"total_categories"`
	FullyCovered    int                           `json:"fully_covered"`
}

// Report is the aggregated verdict for a completed session. It references
// the session's outcomes as a read-only view, computed once and immutable
// thereafter.
type Report struct {
	ReportID          string            `json:"report_id"`
	EmulatorID        string            `json:"emulator_id"`
	BoardName         string            `json:"board_name"`
	Firmware          FirmwareInfo      `json:"firmware"`
	Timestamp         time.Time         `json:"timestamp"`
	DurationSec       float64           `json:"duration_sec"`
	Summary           Summary           `json:"summary"`
	Verdict           Verdict           `json:"verdict"`
	Outcomes          []TestOutcome     `json:"outcomes"`
	BootAnalysis      BootAnalysis      `json:"boot_analysis"`
	FeatureCoverage   FeatureCoverage   `json:"feature_coverage"`
	Recommendations   []string          `json:"recommendations"`
	EvidenceChecksums map[string]string `json:"evidence_checksums"`
}
