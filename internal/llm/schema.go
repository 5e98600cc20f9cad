package llm

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// digestSchemaJSON is the contract a model response must satisfy before it
// is accepted. All eleven fields are required; unknown fields are rejected
// so a drifting model surfaces as a schema failure instead of silent zeros.
const digestSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "additionalProperties": false,
  "required": [
    "recent_focus",
    "activity_summary",
    "key_learnings",
    "progress_highlights",
    "current_momentum",
    "learning_trajectory",
    "problem_solving_approach",
    "collaboration_patterns",
    "growth_areas",
    "technical_depth",
    "confidence_score"
  ],
  "properties": {
    "recent_focus": {"type": "string", "minLength": 1},
    "activity_summary": {"type": "string", "minLength": 1},
    "key_learnings": {"type": "array", "items": {"type": "string"}},
    "progress_highlights": {"type": "array", "items": {"type": "string"}},
    "current_momentum": {"enum": ["high", "medium", "low"]},
    "learning_trajectory": {"type": "string", "minLength": 1},
    "problem_solving_approach": {"type": "string", "minLength": 1},
    "collaboration_patterns": {"type": "string", "minLength": 1},
    "growth_areas": {"type": "array", "items": {"type": "string"}},
    "technical_depth": {"enum": ["beginner", "intermediate", "advanced"]},
    "confidence_score": {"type": "number", "minimum": 0, "maximum": 1}
  }
}`

// digestSchema is compiled once at init; the schema is a constant so a
// compile failure is a programming error.
var digestSchema = mustCompileDigestSchema()

func mustCompileDigestSchema() *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("digest.schema.json", bytes.NewReader([]byte(digestSchemaJSON))); err != nil {
		panic(fmt.Sprintf("adding digest schema resource: %v", err))
	}
	schema, err := compiler.Compile("digest.schema.json")
	if err != nil {
		panic(fmt.Sprintf("compiling digest schema: %v", err))
	}
	return schema
}

// ValidateDigestJSON checks raw model output against the digest contract.
func ValidateDigestJSON(raw []byte) error {
	var instance any
	if err := json.Unmarshal(raw, &instance); err != nil {
		return &SchemaError{Reason: "response is not valid JSON", Err: err}
	}
	if err := digestSchema.Validate(instance); err != nil {
		return &SchemaError{Reason: "response violates digest contract", Err: err}
	}
	return nil
}
