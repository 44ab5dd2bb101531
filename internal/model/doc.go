// Package model defines the core entities of the firmware verification
// pipeline: capabilities and requirements extracted from specification
// documents, the synthesized emulator configuration, generated test cases,
// per-test outcomes, and the aggregated report.
//
// Enumerated values (severity, category, verdict, statuses) are closed
// types validated at construction. Unknown values are rejected at the
// ingestion boundary rather than defaulting silently inside business
// logic; the one sanctioned default is the capability-category mapping in
// the test generator, which falls back to the performance category.
package model
