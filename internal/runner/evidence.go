package runner

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"golang.org/x/text/unicode/norm"
)

// evidenceChecksum digests rendered log lines for the audit trail. Lines
// are NFC-normalized first so the checksum is stable across Unicode
// representations of the same text; the digest is truncated to 16 hex
// characters like the firmware content checksums.
func evidenceChecksum(lines []string) string {
	normalized := make([]string, len(lines))
	for i, line := range lines {
		normalized[i] = norm.NFC.String(line)
	}
	data, err := json.Marshal(normalized)
	if err != nil {
		// A []string cannot fail to marshal.
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])[:16]
}

// shortChecksum truncates a full content digest for evidence records.
func shortChecksum(sum string) string {
	if len(sum) > 16 {
		return sum[:16]
	}
	return sum
}
