package model

import "fmt"

// Severity classifies how serious a requirement or test case is.
// The set is closed: exactly four levels, ordered critical > high >
// medium > low.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// ValidSeverities defines the allowed severity values.
var ValidSeverities = map[Severity]bool{
	SeverityCritical: true,
	SeverityHigh:     true,
	SeverityMedium:   true,
	SeverityLow:      true,
}

// ParseSeverity validates a raw severity string.
// Returns an error for values outside the closed set.
func ParseSeverity(s string) (Severity, error) {
	sev := Severity(s)
	if !ValidSeverities[sev] {
		return "", fmt.Errorf("invalid severity %q: must be one of critical, high, medium, low", s)
	}
	return sev, nil
}

// Category classifies a test case by the board subsystem it exercises.
type Category string

const (
	CategoryBoot        Category = "boot"
	CategoryNetwork     Category = "network"
	CategoryWifi        Category = "wifi"
	CategoryVoice       Category = "voice"
	CategoryUSB         Category = "usb"
	CategorySecurity    Category = "security"
	CategoryManagement  Category = "management"
	CategoryPerformance Category = "performance"
	CategoryStress      Category = "stress"
	CategoryBoundary    Category = "boundary"
)

// ValidCategories defines the allowed category values.
var ValidCategories = map[Category]bool{
	CategoryBoot:        true,
	CategoryNetwork:     true,
	CategoryWifi:        true,
	CategoryVoice:       true,
	CategoryUSB:         true,
	CategorySecurity:    true,
	CategoryManagement:  true,
	CategoryPerformance: true,
	CategoryStress:      true,
	CategoryBoundary:    true,
}

// ParseCategory validates a raw category string.
func ParseCategory(s string) (Category, error) {
	cat := Category(s)
	if !ValidCategories[cat] {
		return "", fmt.Errorf("invalid category %q", s)
	}
	return cat, nil
}

// OutcomeStatus is the terminal status of one executed test case.
// Once recorded on a TestOutcome it never changes.
type OutcomeStatus string

const (
	OutcomePassed  OutcomeStatus = "passed"
	OutcomeFailed  OutcomeStatus = "failed"
	OutcomeError   OutcomeStatus = "error"
	OutcomeSkipped OutcomeStatus = "skipped"
)

// Verdict is the aggregated result for a completed session.
// It is a pure function of the summary counts (see the report package).
type Verdict string

const (
	VerdictPass        Verdict = "PASS"
	VerdictConditional Verdict = "CONDITIONAL"
	VerdictFail        Verdict = "FAIL"
)

// ConfigStatus tracks an EmulatorConfig through synthesis.
// created: entities merged; ready: execution descriptor derived.
type ConfigStatus string

const (
	ConfigCreated ConfigStatus = "created"
	ConfigReady   ConfigStatus = "ready"
)

// SessionStatus tracks an ExecutionSession lifecycle.
type SessionStatus string

const (
	SessionUploaded  SessionStatus = "uploaded"
	SessionRunning   SessionStatus = "running"
	SessionCompleted SessionStatus = "completed"
	SessionFailed    SessionStatus = "failed"
)

// EnvStatus is the state machine of a session's backing isolated
// environment:
//
//	creating -> running -> loading_firmware -> testing -> completed
//
// error is reachable from any non-terminal state; stopped is the cleanup
// terminal state after completed or error.
type EnvStatus string

const (
	EnvCreating        EnvStatus = "creating"
	EnvRunning         EnvStatus = "running"
	EnvLoadingFirmware EnvStatus = "loading_firmware"
	EnvTesting         EnvStatus = "testing"
	EnvCompleted       EnvStatus = "completed"
	EnvStopped         EnvStatus = "stopped"
	EnvError           EnvStatus = "error"
)
