package model

import (
	"strings"
	"testing"
)

func TestParseSeverity_Valid(t *testing.T) {
	for _, s := range []string{"critical", "high", "medium", "low"} {
		sev, err := ParseSeverity(s)
		if err != nil {
			t.Errorf("ParseSeverity(%q) failed: %v", s, err)
		}
		if string(sev) != s {
			t.Errorf("ParseSeverity(%q) = %q", s, sev)
		}
	}
}

func TestParseSeverity_Invalid(t *testing.T) {
	for _, s := range []string{"", "CRITICAL", "blocker", "sev1"} {
		if _, err := ParseSeverity(s); err == nil {
			t.Errorf("ParseSeverity(%q) should fail", s)
		}
	}
}

func TestParseCategory_Valid(t *testing.T) {
	for _, s := range []string{
		"boot", "network", "wifi", "voice", "usb",
		"security", "management", "performance", "stress", "boundary",
	} {
		cat, err := ParseCategory(s)
		if err != nil {
			t.Errorf("ParseCategory(%q) failed: %v", s, err)
		}
		if string(cat) != s {
			t.Errorf("ParseCategory(%q) = %q", s, cat)
		}
	}
}

func TestParseCategory_Invalid(t *testing.T) {
	if _, err := ParseCategory("bluetooth"); err == nil {
		t.Error("ParseCategory(\"bluetooth\") should fail")
	}
}

func TestUUIDTokenGenerator_Format(t *testing.T) {
	gen := UUIDTokenGenerator{}
	token := gen.Generate("EMU")

	if !strings.HasPrefix(token, "EMU_") {
		t.Errorf("token %q missing EMU_ prefix", token)
	}
	suffix := strings.TrimPrefix(token, "EMU_")
	if len(suffix) != 8 {
		t.Errorf("token suffix %q should be 8 chars", suffix)
	}
	if suffix != strings.ToUpper(suffix) {
		t.Errorf("token suffix %q should be uppercase", suffix)
	}
}

func TestUUIDTokenGenerator_Unique(t *testing.T) {
	gen := UUIDTokenGenerator{}
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		token := gen.Generate("SES")
		if seen[token] {
			t.Fatalf("duplicate token: %s", token)
		}
		seen[token] = true
	}
}

func TestUUIDTokenGenerator_SuffixesIndependentAcrossPrefixes(t *testing.T) {
	// Tokens minted back to back must not share a suffix, whatever their
	// prefix: an emulator ID and a session ID created in the same instant
	// are still distinct identifiers.
	gen := UUIDTokenGenerator{}
	emu := strings.TrimPrefix(gen.Generate("EMU"), "EMU_")
	ses := strings.TrimPrefix(gen.Generate("SES"), "SES_")
	if emu == ses {
		t.Fatalf("back-to-back tokens share suffix %s", emu)
	}
}
