// Package schema validates packaging descriptors against the embedded JSON schema.
package schema

import (
	"bytes"
	"fmt"
	"sync"

	_ "embed"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"sigs.k8s.io/yaml"
)

const schemaFile = "resources/packaging.schema.json"

// JSONSchema contains the embedded JSON schema for packaging descriptors.
//
//go:embed resources/packaging.schema.json
var JSONSchema []byte

// GetJSONSchema compiles the schema once and caches it for reuse.
var GetJSONSchema = sync.OnceValues[*jsonschema.Schema, error](func() (*jsonschema.Schema, error) {
	return compile(JSONSchema)
})

func compile(data []byte) (*jsonschema.Schema, error) {
	c := jsonschema.NewCompiler()
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal schema: %w", err)
	}
	if err := c.AddResource(schemaFile, doc); err != nil {
		return nil, fmt.Errorf("failed to add schema: %w", err)
	}
	sch, err := c.Compile(schemaFile)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}
	return sch, nil
}

// ValidateRawYAML converts YAML to its JSON data model and validates it against the schema.
// The returned *jsonschema.ValidationError lists every violation.
func ValidateRawYAML(raw []byte) error {
	mm := map[string]any{}
	if err := yaml.Unmarshal(raw, &mm); err != nil {
		return fmt.Errorf("failed to unmarshal descriptor: %w", err)
	}

	schema, err := GetJSONSchema()
	if err != nil {
		return fmt.Errorf("failed to get schema: %w", err)
	}

	return schema.Validate(mm)
}
