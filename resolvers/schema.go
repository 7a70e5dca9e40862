// Package resolvers ships the built-in evidence-verification plugins
// registered into resolverreg.Registry at boot, grounded on the teacher's
// "registry of backends registered at init()" idiom generalized from CAS
// storage backends to evidence resolvers.
package resolvers

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// compileSchema compiles a JSON Schema document (given as a Go value, not
// a pre-serialized string) under a stable synthetic resource id.
func compileSchema(id string, schema map[string]any) (*jsonschema.Schema, error) {
	raw, err := json.Marshal(schema)
	if err != nil {
		return nil, fmt.Errorf("resolvers: marshal schema %s: %w", id, err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(id, bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("resolvers: add schema %s: %w", id, err)
	}
	compiled, err := compiler.Compile(id)
	if err != nil {
		return nil, fmt.Errorf("resolvers: compile schema %s: %w", id, err)
	}
	return compiled, nil
}

// validateEvidence validates evidence against a compiled schema, flattening
// the library's nested ValidationError tree into a list of human-readable
// per-field messages (§7 INVALID_EVIDENCE "includes per-field errors").
func validateEvidence(schema *jsonschema.Schema, evidence map[string]any) (bool, []string) {
	if schema == nil {
		return true, nil
	}
	if err := schema.Validate(evidence); err != nil {
		if ve, ok := err.(*jsonschema.ValidationError); ok {
			return false, flattenValidationError(ve)
		}
		return false, []string{err.Error()}
	}
	return true, nil
}

func flattenValidationError(ve *jsonschema.ValidationError) []string {
	var out []string
	var walk func(e *jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if e == nil {
			return
		}
		if len(e.Causes) == 0 {
			out = append(out, fmt.Sprintf("%s: %s", e.InstanceLocation, e.Message))
			return
		}
		for _, c := range e.Causes {
			walk(c)
		}
	}
	walk(ve)
	return out
}
