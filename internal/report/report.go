// Package report aggregates a completed outcome list into a Report.
//
// Every function here is pure over its inputs: the same outcomes yield
// byte-identical summary, verdict, coverage and recommendations. The
// Report record is computed once and never mutated.
package report

import (
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/firmlab/firmlab/internal/model"
)

// Synthesizer assembles Reports from execution outcomes.
type Synthesizer struct {
	tokens model.TokenGenerator
	now    func() time.Time
	logger *slog.Logger
}

// Option configures a Synthesizer.
type Option func(*Synthesizer)

// WithClock overrides the report timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Synthesizer) { s.now = now }
}

// WithLogger overrides the default logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Synthesizer) { s.logger = logger }
}

// New returns a Synthesizer that mints report IDs with tokens.
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

// Synthesize builds the Report for one completed session.
func (s *Synthesizer) Synthesize(cfg model.EmulatorConfig, firmware model.FirmwareInfo, outcomes []model.TestOutcome) model.Report {
	summary := Summarize(outcomes)
	verdict := VerdictFor(summary.PassRate)

	var totalDuration float64
	checksums := make(map[string]string)
	for _, o := range outcomes {
		totalDuration += o.Duration.Seconds()
		if o.Evidence.Checksum != "" {
			checksums[o.TestID] = o.Evidence.Checksum
		}
	}

	rpt := model.Report{
		ReportID:          s.tokens.Generate("RPT"),
		EmulatorID:        cfg.EmulatorID,
		BoardName:         cfg.BoardName,
		Firmware:          firmware,
		Timestamp:         s.now(),
		DurationSec:       round1(totalDuration),
		Summary:           summary,
		Verdict:           verdict,
		Outcomes:          outcomes,
		BootAnalysis:      AnalyzeBoot(outcomes),
		FeatureCoverage:   Coverage(outcomes),
		Recommendations:   Recommendations(outcomes, verdict),
		EvidenceChecksums: checksums,
	}

	s.logger.Info("report synthesized",
		"report_id", rpt.ReportID,
		"emulator_id", rpt.EmulatorID,
		"verdict", rpt.Verdict,
		"pass_rate", summary.PassRate,
	)
	return rpt
}

// Summarize counts outcomes by status. PassRate is passed/total*100
// rounded to one decimal, 0 when the outcome list is empty.
func Summarize(outcomes []model.TestOutcome) model.Summary {
	sum := model.Summary{Total: len(outcomes)}
	for _, o := range outcomes {
		switch o.Status {
		case model.OutcomePassed:
			sum.Passed++
		case model.OutcomeFailed:
			sum.Failed++
		case model.OutcomeError:
			sum.Errors++
		case model.OutcomeSkipped:
			sum.Skipped++
		}
	}
	if sum.Total > 0 {
		sum.PassRate = round1(float64(sum.Passed) / float64(sum.Total) * 100)
	}
	return sum
}

// VerdictFor maps a pass rate onto the verdict scale. The order is total
// and exhaustive: >=95.0 PASS, >=80.0 CONDITIONAL, below FAIL.
func VerdictFor(passRate float64) model.Verdict {
	switch {
	case passRate >= 95.0:
		return model.VerdictPass
	case passRate >= 80.0:
		return model.VerdictConditional
	default:
		return model.VerdictFail
	}
}

// AnalyzeBoot restricts the outcomes to the boot category. Status is
// "pass" only when every boot outcome passed, "fail" otherwise, and
// "no_boot_tests" when the session ran none.
func AnalyzeBoot(outcomes []model.TestOutcome) model.BootAnalysis {
	var boot []model.TestOutcome
	for _, o := range outcomes {
		if o.Category == model.CategoryBoot {
			boot = append(boot, o)
		}
	}
	if len(boot) == 0 {
		return model.BootAnalysis{Status: "no_boot_tests", Details: map[string]model.BootTestDetail{}}
	}

	analysis := model.BootAnalysis{
		TestsRun: len(boot),
		Details:  make(map[string]model.BootTestDetail, len(boot)),
	}
	for _, o := range boot {
		if o.Status == model.OutcomePassed {
			analysis.TestsPassed++
		}
		analysis.BootTimeSec += o.Duration.Seconds()
		analysis.Details[o.TestID] = model.BootTestDetail{
			Name:        o.TestName,
			Status:      o.Status,
			DurationSec: round1(o.Duration.Seconds()),
		}
	}
	analysis.BootTimeSec = round1(analysis.BootTimeSec)
	if analysis.TestsPassed == analysis.TestsRun {
		analysis.Status = "pass"
	} else {
		analysis.Status = "fail"
	}
	return analysis
}

// Coverage groups outcomes by category and counts the categories where
// every outcome passed.
func Coverage(outcomes []model.TestOutcome) model.FeatureCoverage {
	byCat := make(map[model.Category]model.CategoryCoverage)
	for _, o := range outcomes {
		cc := byCat[o.Category]
		cc.Total++
		if o.Status == model.OutcomePassed {
			cc.Passed++
		} else {
			cc.Failed++
		}
		byCat[o.Category] = cc
	}

	fully := 0
	for cat, cc := range byCat {
		cc.Coverage = round1(float64(cc.Passed) / float64(cc.Total) * 100)
		byCat[cat] = cc
		if cc.Coverage == 100 {
			fully++
		}
	}

	return model.FeatureCoverage{
		ByCategory:      byCat,
		TotalCategories: len(byCat),
		FullyCovered:    fully,
	}
}

// Recommendations builds the ordered advice list. An all-passing run
// yields exactly one affirmative line; otherwise category-specific lines
// come first, then a verdict gate, then a failure-review tally.
func Recommendations(outcomes []model.TestOutcome, verdict model.Verdict) []string {
	failures := 0
	failedCats := make(map[model.Category]bool)
	for _, o := range outcomes {
		if o.Status == model.OutcomeFailed || o.Status == model.OutcomeError {
			failures++
			failedCats[o.Category] = true
		}
	}

	if failures == 0 {
		return []string{"All tests passed. System is ready for deployment."}
	}

	var recs []string
	if failedCats[model.CategoryBoot] {
		recs = append(recs, "CRITICAL: Boot sequence issues detected. Review bootloader configuration.")
	}
	if failedCats[model.CategorySecurity] {
		recs = append(recs, "CRITICAL: Security test failures require immediate attention.")
	}
	if failedCats[model.CategoryNetwork] {
		recs = append(recs, "Network connectivity issues detected. Verify network driver configuration.")
	}
	if failedCats[model.CategoryWifi] {
		recs = append(recs, "WiFi test failures. Check wireless chipset drivers and firmware.")
	}

	switch verdict {
	case model.VerdictConditional:
		recs = append(recs, "System has minor issues. Review failed tests before deployment.")
	case model.VerdictFail:
		recs = append(recs, "System has critical failures. Do not deploy until issues are resolved.")
	}

	recs = append(recs, fmt.Sprintf("Review %d failed test(s) for root cause analysis.", failures))
	return recs
}

// round1 rounds to one decimal place.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
