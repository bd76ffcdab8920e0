package parse

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const schemaURL = "extracted-record.json"

// recordSchemaMap describes what the parser accepts from the model: any
// JSON object. Field values are not constrained here; buildRecord coerces
// them and unknown keys are dropped later.
func recordSchemaMap() map[string]any {
	return map[string]any{"type": "object"}
}

func compileRecordSchema() (*jsonschema.Schema, error) {
	b, err := json.Marshal(recordSchemaMap())
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaURL, bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return schema, nil
}

var recordSchema = func() *jsonschema.Schema {
	s, err := compileRecordSchema()
	if err != nil {
		panic(err)
	}
	return s
}()
