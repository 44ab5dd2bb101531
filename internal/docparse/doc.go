// Package docparse converts free-form specification and requirement
// documents (YAML, JSON, Markdown, plain text) into structured records:
// testable capabilities, must/should requirements, and a partial hardware
// spec.
//
// Parsing is per-document and isolated: one unreadable or undecodable
// document fails only that document, never the batch. Parsed records are
// validated against an embedded CUE schema at this boundary so that
// malformed enumerated values (an unknown requirement severity, for
// example) are rejected here instead of surfacing deep in test generation.
package docparse
