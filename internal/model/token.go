package model

import (
	"strings"

	"github.com/google/uuid"
)

// TokenGenerator generates unique identifiers for configs, sessions, and
// reports. Implemented by UUIDTokenGenerator (production) and
// testutil.FixedTokenGenerator (tests).
type TokenGenerator interface {
	Generate(prefix string) string
}

// UUIDTokenGenerator generates tokens of the form PREFIX_XXXXXXXX, where
// the suffix is the first eight hex characters of a random (version 4)
// UUID. The suffix must come from random bits: tokens minted in the same
// instant still have to be distinct.
//
// Thread-safety: UUIDTokenGenerator is stateless and safe for concurrent use.
type UUIDTokenGenerator struct{}

// Generate creates a new token with the given prefix, e.g. "EMU_1A2B3C4D".
//
// Panics if UUID generation fails (should never happen in practice).
func (UUIDTokenGenerator) Generate(prefix string) string {
	hex := strings.ReplaceAll(uuid.New().String(), "-", "")
	return prefix + "_" + strings.ToUpper(hex[:8])
}
