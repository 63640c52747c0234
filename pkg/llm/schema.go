package llm

import (
	"encoding/json"
	"fmt"

	"github.com/swaggest/jsonschema-go"
)

// SchemaFromStruct generates a JSON Schema from a Go struct using the swaggest/jsonschema-go library
//
// Example:
//
//	type weatherArgs struct {
//	    Location string `json:"location" required:"true" description:"City name"`
//	}
//	schema, err := SchemaFromStruct(weatherArgs{})
func SchemaFromStruct(structType any) (any, error) {
	reflector := jsonschema.Reflector{}

	schema, err := reflector.Reflect(structType)
	if err != nil {
		return nil, fmt.Errorf("failed to reflect struct to JSON schema: %w", err)
	}

	return schema, nil
}

// SchemaFromStructAsMap generates a JSON Schema as map[string]any from a Go struct.
// Tool parameters are sent in this form.
func SchemaFromStructAsMap(structType any) (map[string]any, error) {
	schema, err := SchemaFromStruct(structType)
	if err != nil {
		return nil, err
	}

	jsonBytes, err := json.Marshal(schema)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema to JSON: %w", err)
	}

	var schemaMap map[string]any
	if err := json.Unmarshal(jsonBytes, &schemaMap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal schema JSON to map: %w", err)
	}

	return schemaMap, nil
}

// NewFunctionToolFromStruct creates a function tool whose parameters schema is
// reflected from params
func NewFunctionToolFromStruct(name, description string, params any) (Tool, error) {
	schema, err := SchemaFromStructAsMap(params)
	if err != nil {
		return Tool{}, fmt.Errorf("tool %s: %w", name, err)
	}
	return NewFunctionTool(name, description, schema), nil
}

// MustFunctionToolFromStruct is like NewFunctionToolFromStruct but panics on
// error. It is meant for package-level tool definitions.
func MustFunctionToolFromStruct(name, description string, params any) Tool {
	tool, err := NewFunctionToolFromStruct(name, description, params)
	if err != nil {
		panic(err)
	}
	return tool
}
