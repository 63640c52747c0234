package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type weatherParams struct {
	Location string `json:"location" required:"true" description:"City name"`
	Unit     string `json:"unit,omitempty" enum:"celsius,fahrenheit"`
}

type nestedParams struct {
	Where weatherParams `json:"where"`
	Days  []int         `json:"days"`
}

func TestSchemaFromStruct(t *testing.T) {
	tests := []struct {
		name       string
		structType any
	}{
		{name: "flat struct", structType: weatherParams{}},
		{name: "nested struct", structType: nestedParams{}},
		{name: "pointer to struct", structType: &weatherParams{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			schema, err := SchemaFromStruct(tt.structType)
			require.NoError(t, err)
			assert.NotNil(t, schema)
		})
	}
}

func TestSchemaFromStructAsMap(t *testing.T) {
	schema, err := SchemaFromStructAsMap(weatherParams{})
	require.NoError(t, err)

	assert.Equal(t, "object", schema["type"])
	assert.Equal(t, []any{"location"}, schema["required"])

	properties, ok := schema["properties"].(map[string]any)
	require.True(t, ok, "properties should be a map")

	location, ok := properties["location"].(map[string]any)
	require.True(t, ok, "location field should exist")
	assert.Equal(t, "string", location["type"])
	assert.Equal(t, "City name", location["description"])

	unit, ok := properties["unit"].(map[string]any)
	require.True(t, ok, "unit field should exist")
	assert.Equal(t, []any{"celsius", "fahrenheit"}, unit["enum"])
}

func TestNewFunctionToolFromStruct(t *testing.T) {
	tool, err := NewFunctionToolFromStruct("get_weather", "Get the weather", weatherParams{})
	require.NoError(t, err)

	assert.Equal(t, ToolTypeFunction, tool.Type)
	assert.Equal(t, "get_weather", tool.Function.Name)
	assert.Equal(t, "Get the weather", tool.Function.Description)

	params, ok := tool.Function.Parameters.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "object", params["type"])

	assert.NotPanics(t, func() {
		MustFunctionToolFromStruct("get_weather", "", weatherParams{})
	})
}
