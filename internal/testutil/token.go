package testutil

import (
	"fmt"
	"sync"
)

// FixedTokenGenerator returns predetermined tokens for testing.
//
// This enables deterministic pipeline execution and golden snapshot
// comparison: the same run with the same FixedTokenGenerator produces
// byte-identical registry records and report IDs.
//
// Thread-safety: safe for concurrent use via internal mutex.
type FixedTokenGenerator struct {
	mu     sync.Mutex
	tokens []string
	idx    int
}

// NewFixedTokenGenerator creates a generator that returns tokens in order.
//
// Example:
//
//	gen := NewFixedTokenGenerator("EMU_TEST0001", "SES_TEST0001")
//	gen.Generate("EMU") // "EMU_TEST0001"
//	gen.Generate("SES") // "SES_TEST0001"
//
// When the predetermined tokens are exhausted, Generate falls back to
// "<prefix>_FIXEDnnnn" with a monotonically increasing counter so tests
// that create more entities than expected still get unique IDs.
func NewFixedTokenGenerator(tokens ...string) *FixedTokenGenerator {
	return &FixedTokenGenerator{tokens: tokens}
}

// Generate returns the next predetermined token, ignoring the prefix
// until the fixed list is exhausted.
//
// Implements model.TokenGenerator.
func (g *FixedTokenGenerator) Generate(prefix string) string {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.idx < len(g.tokens) {
		token := g.tokens[g.idx]
		g.idx++
		return token
	}
	g.idx++
	return fmt.Sprintf("%s_FIXED%04d", prefix, g.idx-len(g.tokens))
}
