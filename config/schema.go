package config

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// GenerateSchema reflects the orbit.yml structure into a JSON Schema.
// The schema-generator tool writes the result to schema/orbit.schema.json,
// which is embedded and used for validation at load time.
func GenerateSchema() ([]byte, error) {
	r := &jsonschema.Reflector{
		// Use YAML field names for property names.
		FieldNameTag: "yaml",
	}

	schema := r.Reflect(&Config{})
	schema.Title = "Orbit Configuration"
	schema.Description = "Schema for orbit.yml."

	return json.MarshalIndent(schema, "", "  ")
}
