package report

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/firmlab/firmlab/internal/model"
	"github.com/firmlab/firmlab/internal/testutil"
)

func outcomes(passed, failed int) []model.TestOutcome {
	var out []model.TestOutcome
	for i := 0; i < passed; i++ {
		out = append(out, model.TestOutcome{Status: model.OutcomePassed, Category: model.CategoryPerformance})
	}
	for i := 0; i < failed; i++ {
		out = append(out, model.TestOutcome{Status: model.OutcomeFailed, Category: model.CategoryPerformance})
	}
	return out
}

func TestSummarize(t *testing.T) {
	list := []model.TestOutcome{
		{Status: model.OutcomePassed},
		{Status: model.OutcomePassed},
		{Status: model.OutcomeFailed},
		{Status: model.OutcomeError},
		{Status: model.OutcomeSkipped},
	}

	sum := Summarize(list)

	assert.Equal(t, 5, sum.Total)
	assert.Equal(t, 2, sum.Passed)
	assert.Equal(t, 1, sum.Failed)
	assert.Equal(t, 1, sum.Errors)
	assert.Equal(t, 1, sum.Skipped)
	assert.Equal(t, 40.0, sum.PassRate)
}

func TestSummarize_Empty(t *testing.T) {
	sum := Summarize(nil)
	assert.Equal(t, 0, sum.Total)
	assert.Equal(t, 0.0, sum.PassRate)
}

func TestVerdictBoundaries(t *testing.T) {
	cases := []struct {
		passRate float64
		want     model.Verdict
	}{
		{100.0, model.VerdictPass},
		{95.0, model.VerdictPass},
		{94.9, model.VerdictConditional},
		{80.0, model.VerdictConditional},
		{79.9, model.VerdictFail},
		{0.0, model.VerdictFail},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, VerdictFor(tc.passRate), "pass rate %.1f", tc.passRate)
	}
}

func TestVerdict_FromCounts(t *testing.T) {
	// 19/20 = 95.0 exactly: PASS, not CONDITIONAL.
	sum := Summarize(outcomes(19, 1))
	assert.Equal(t, 95.0, sum.PassRate)
	assert.Equal(t, model.VerdictPass, VerdictFor(sum.PassRate))

	// 16/20 = 80.0 exactly: CONDITIONAL, not FAIL.
	sum = Summarize(outcomes(16, 4))
	assert.Equal(t, 80.0, sum.PassRate)
	assert.Equal(t, model.VerdictConditional, VerdictFor(sum.PassRate))
}

func TestAnalyzeBoot(t *testing.T) {
	t.Run("no boot tests", func(t *testing.T) {
		ba := AnalyzeBoot([]model.TestOutcome{
			{Category: model.CategoryWifi, Status: model.OutcomePassed},
		})
		assert.Equal(t, "no_boot_tests", ba.Status)
		assert.Empty(t, ba.Details)
	})

	t.Run("all passed", func(t *testing.T) {
		ba := AnalyzeBoot([]model.TestOutcome{
			{TestID: "BOOT_COLD_001", TestName: "Cold Boot", Category: model.CategoryBoot, Status: model.OutcomePassed, Duration: 2 * time.Second},
			{TestID: "BOOT_WARM_001", TestName: "Warm Boot", Category: model.CategoryBoot, Status: model.OutcomePassed, Duration: time.Second},
			{Category: model.CategoryWifi, Status: model.OutcomeFailed},
		})
		assert.Equal(t, "pass", ba.Status)
		assert.Equal(t, 2, ba.TestsRun)
		assert.Equal(t, 2, ba.TestsPassed)
		assert.Equal(t, 3.0, ba.BootTimeSec)
		require.Contains(t, ba.Details, "BOOT_COLD_001")
		assert.Equal(t, 2.0, ba.Details["BOOT_COLD_001"].DurationSec)
	})

	t.Run("any non-pass fails", func(t *testing.T) {
		ba := AnalyzeBoot([]model.TestOutcome{
			{TestID: "BOOT_COLD_001", Category: model.CategoryBoot, Status: model.OutcomePassed},
			{TestID: "BOOT_WDT_001", Category: model.CategoryBoot, Status: model.OutcomeError},
		})
		assert.Equal(t, "fail", ba.Status)
		assert.Equal(t, 1, ba.TestsPassed)
	})
}

func TestCoverage(t *testing.T) {
	fc := Coverage([]model.TestOutcome{
		{Category: model.CategoryBoot, Status: model.OutcomePassed},
		{Category: model.CategoryBoot, Status: model.OutcomePassed},
		{Category: model.CategoryWifi, Status: model.OutcomePassed},
		{Category: model.CategoryWifi, Status: model.OutcomeFailed},
		{Category: model.CategoryWifi, Status: model.OutcomeError},
	})

	assert.Equal(t, 2, fc.TotalCategories)
	assert.Equal(t, 1, fc.FullyCovered)
	assert.Equal(t, model.CategoryCoverage{Total: 2, Passed: 2, Failed: 0, Coverage: 100}, fc.ByCategory[model.CategoryBoot])
	assert.Equal(t, model.CategoryCoverage{Total: 3, Passed: 1, Failed: 2, Coverage: 33.3}, fc.ByCategory[model.CategoryWifi])
}

func TestRecommendations_AllPassing(t *testing.T) {
	recs := Recommendations(outcomes(3, 0), model.VerdictPass)
	assert.Equal(t, []string{"All tests passed. System is ready for deployment."}, recs)
}

func TestRecommendations_Ordering(t *testing.T) {
	list := []model.TestOutcome{
		{Category: model.CategoryWifi, Status: model.OutcomeFailed},
		{Category: model.CategoryBoot, Status: model.OutcomeError},
		{Category: model.CategorySecurity, Status: model.OutcomeFailed},
		{Category: model.CategoryNetwork, Status: model.OutcomeFailed},
		{Category: model.CategoryUSB, Status: model.OutcomePassed},
	}

	recs := Recommendations(list, model.VerdictFail)

	assert.Equal(t, []string{
		"CRITICAL: Boot sequence issues detected. Review bootloader configuration.",
		"CRITICAL: Security test failures require immediate attention.",
		"Network connectivity issues detected. Verify network driver configuration.",
		"WiFi test failures. Check wireless chipset drivers and firmware.",
		"System has critical failures. Do not deploy until issues are resolved.",
		"Review 4 failed test(s) for root cause analysis.",
	}, recs)
}

func TestRecommendations_Conditional(t *testing.T) {
	list := []model.TestOutcome{
		{Category: model.CategoryUSB, Status: model.OutcomeFailed},
	}

	recs := Recommendations(list, model.VerdictConditional)

	assert.Equal(t, []string{
		"System has minor issues. Review failed tests before deployment.",
		"Review 1 failed test(s) for root cause analysis.",
	}, recs)
}

func TestSynthesize_Idempotent(t *testing.T) {
	list := []model.TestOutcome{
		{TestID: "A", Category: model.CategoryBoot, Status: model.OutcomePassed, Duration: time.Second},
		{TestID: "B", Category: model.CategoryWifi, Status: model.OutcomeFailed, Duration: time.Second},
	}

	first := Summarize(list)
	second := Summarize(list)
	assert.Equal(t, first, second)

	assert.Equal(t, Coverage(list), Coverage(list))
	assert.Equal(t, AnalyzeBoot(list), AnalyzeBoot(list))
	assert.Equal(t, Recommendations(list, model.VerdictFail), Recommendations(list, model.VerdictFail))
}

func TestSynthesize_Golden(t *testing.T) {
	clock := testutil.NewFixedClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC), 0)
	s := New(testutil.NewFixedTokenGenerator("RPT_TEST0001"), WithClock(clock.Now))

	cfg := model.EmulatorConfig{EmulatorID: "EMU_TEST0001", BoardName: "test-board"}
	firmware := model.FirmwareInfo{
		Filename:   "fw.bin",
		Path:       "/tmp/fw.bin",
		SHA256:     "abc123",
		SizeBytes:  4,
		UploadedAt: clock.Current(),
	}
	ts := clock.Current()
	list := []model.TestOutcome{
		{
			TestID:    "BOOT_COLD_001",
			TestName:  "Cold Boot Sequence Test",
			Category:  model.CategoryBoot,
			Status:    model.OutcomePassed,
			Duration:  2 * time.Second,
			Output:    "ok",
			Evidence:  model.Evidence{Checksum: "aaaa1111", Simulated: true},
			Timestamp: ts,
		},
		{
			TestID:    "CAP_001_FUNC_001",
			TestName:  "WiFi - Basic Functionality",
			Category:  model.CategoryWifi,
			Status:    model.OutcomeFailed,
			Duration:  1500 * time.Millisecond,
			ExitCode:  1,
			Evidence:  model.Evidence{Checksum: "bbbb2222", Simulated: true},
			Timestamp: ts,
		},
	}

	rpt := s.Synthesize(cfg, firmware, list)

	data, err := json.MarshalIndent(rpt, "", "  ")
	require.NoError(t, err)
	data = append(data, '\n')

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "report", data)
}
