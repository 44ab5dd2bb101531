package docparse

import (
	_ "embed"
	"fmt"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

//go:embed schema.cue
var schemaCUE string

// The schema is compiled once and shared; cue.Value is immutable and
// safe for concurrent unification.
var (
	schemaOnce sync.Once
	schemaCtx  *cue.Context
	schemaVal  cue.Value
)

func documentSchema() cue.Value {
	schemaOnce.Do(func() {
		schemaCtx = cuecontext.New()
		schemaVal = schemaCtx.CompileString(schemaCUE).LookupPath(cue.ParsePath("#Document"))
	})
	return schemaVal
}

// validateRecord unifies a parsed record with the embedded document
// schema. A failure means the document carries a malformed value (for
// example an unknown requirement severity) and is rejected as a whole;
// other documents in the same batch are unaffected.
func validateRecord(parsed map[string]any) error {
	schema := documentSchema()
	if err := schema.Err(); err != nil {
		return fmt.Errorf("document schema: %w", err)
	}

	val := schemaCtx.Encode(parsed)
	if err := val.Err(); err != nil {
		return fmt.Errorf("encode document record: %w", err)
	}

	unified := schema.Unify(val)
	if err := unified.Validate(cue.Concrete(false)); err != nil {
		return fmt.Errorf("document record rejected: %w", err)
	}
	return nil
}
