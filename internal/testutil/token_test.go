package testutil

import (
	"testing"
	"time"
)

func TestFixedTokenGenerator_ReturnsInOrder(t *testing.T) {
	gen := NewFixedTokenGenerator("EMU_A", "SES_B")

	if got := gen.Generate("EMU"); got != "EMU_A" {
		t.Errorf("first Generate() = %q, want EMU_A", got)
	}
	if got := gen.Generate("SES"); got != "SES_B" {
		t.Errorf("second Generate() = %q, want SES_B", got)
	}
}

func TestFixedTokenGenerator_FallbackAfterExhaustion(t *testing.T) {
	gen := NewFixedTokenGenerator("X")
	gen.Generate("A")

	got := gen.Generate("RPT")
	if got != "RPT_FIXED0001" {
		t.Errorf("fallback token = %q, want RPT_FIXED0001", got)
	}
	if next := gen.Generate("RPT"); next == got {
		t.Error("fallback tokens should be unique")
	}
}

func TestFixedClock_Advances(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := NewFixedClock(start, time.Second)

	if got := clock.Now(); !got.Equal(start) {
		t.Errorf("first Now() = %v, want %v", got, start)
	}
	if got := clock.Now(); !got.Equal(start.Add(time.Second)) {
		t.Errorf("second Now() = %v, want %v", got, start.Add(time.Second))
	}
	if got := clock.Current(); !got.Equal(start.Add(2 * time.Second)) {
		t.Errorf("Current() = %v", got)
	}
}
