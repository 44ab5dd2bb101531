package docparse

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/firmlab/firmlab/internal/model"
)

// Document is the structured record produced from one parsed document.
type Document struct {
	FilePath string `json:"file_path"`
	Format   string `json:"format"`

	// Raw is the generic mapping the format parser produced, kept for
	// diagnostics and schema validation.
	Raw map[string]any `json:"-"`

	Capabilities []model.Capability `json:"capabilities"`
	Requirements []model.Requirement `json:"requirements"`
	Hardware     model.HardwareSpec `json:"hardware_spec"`

	ParsedAt time.Time `json:"parse_timestamp"`
}

// SupportedExtensions lists the document formats the parser accepts.
// Anything else is treated as plain text.
var SupportedExtensions = []string{".yaml", ".yml", ".json", ".md", ".txt"}

// ParseFile reads and parses a document from disk.
// A missing file is an error for this document only; callers processing a
// batch continue with the remaining documents.
func ParseFile(path string) (*Document, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read document %s: %w", path, err)
	}
	return Parse(path, content)
}

// Parse converts raw document bytes into a structured Document.
// The format is chosen by file extension; unknown extensions fall back to
// the plain-text parser. The parsed record is schema-validated before
// capability/requirement extraction.
func Parse(filename string, content []byte) (*Document, error) {
	ext := strings.ToLower(filepath.Ext(filename))

	var (
		parsed map[string]any
		err    error
	)
	switch ext {
	case ".yaml", ".yml":
		parsed, err = parseYAML(content)
	case ".json":
		parsed, err = parseJSON(content)
	case ".md":
		parsed, err = parseMarkdown(content)
	default:
		parsed = parseText(content)
	}
	if err != nil {
		return nil, fmt.Errorf("parse document %s: %w", filename, err)
	}

	if err := validateRecord(parsed); err != nil {
		return nil, fmt.Errorf("document %s: %w", filename, err)
	}

	caps := extractCapabilities(parsed)
	reqs, err := extractRequirements(parsed)
	if err != nil {
		return nil, fmt.Errorf("document %s: %w", filename, err)
	}

	return &Document{
		FilePath:     filename,
		Format:       ext,
		Raw:          parsed,
		Capabilities: caps,
		Requirements: reqs,
		Hardware:     extractHardwareSpec(parsed),
		ParsedAt:     time.Now().UTC(),
	}, nil
}

func parseYAML(content []byte) (map[string]any, error) {
	var parsed map[string]any
	if err := yaml.Unmarshal(content, &parsed); err != nil {
		return nil, fmt.Errorf("invalid YAML: %w", err)
	}
	if parsed == nil {
		parsed = map[string]any{}
	}
	return parsed, nil
}

func parseJSON(content []byte) (map[string]any, error) {
	var parsed map[string]any
	if err := json.Unmarshal(content, &parsed); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	return parsed, nil
}

// parseText wraps unstructured text in a generic record. Plain-text
// documents carry no extractable capabilities or requirements; they only
// contribute their content for provenance.
func parseText(content []byte) map[string]any {
	lines := strings.Split(string(content), "\n")
	return map[string]any{
		"content":    string(content),
		"lines":      toAnySlice(lines),
		"line_count": len(lines),
	}
}

func toAnySlice(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
