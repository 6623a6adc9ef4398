package schema

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_FullSchema(t *testing.T) {
	data := []byte(`{
		"type": "object",
		"properties": {
			"name": {"type": "string", "minLength": 1, "maxLength": 64},
			"age": {"type": "integer", "minimum": 0, "maximum": 120},
			"score": {"type": "number", "minimum": 0, "exclusiveMaximum": 1.0},
			"tags": {
				"type": "array",
				"items": {"type": "string", "pattern": "^[a-z]+$"},
				"minItems": 1,
				"maxItems": 10,
				"uniqueItems": true
			},
			"role": {"type": "string", "enum": ["admin", "user"]}
		},
		"required": ["name", "age"],
		"additionalProperties": false
	}`)

	root, err := Parse(data)
	require.NoError(t, err)

	assert.Equal(t, TypeObject, root.Type)
	assert.True(t, root.ForbidAdditional)
	assert.Equal(t, []string{"name", "age"}, root.Required)

	// Declaration order is preserved.
	var names []string
	for _, p := range root.Properties {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"name", "age", "score", "tags", "role"}, names)

	age, ok := root.Prop("age")
	require.True(t, ok)
	assert.Equal(t, TypeInteger, age.Type)
	require.NotNil(t, age.Minimum)
	assert.Equal(t, float64(0), *age.Minimum)
	require.NotNil(t, age.Maximum)
	assert.Equal(t, float64(120), *age.Maximum)

	score, _ := root.Prop("score")
	assert.True(t, score.ExclusiveMaximum)
	require.NotNil(t, score.Maximum)
	assert.Equal(t, 1.0, *score.Maximum)

	tags, _ := root.Prop("tags")
	require.NotNil(t, tags.Items)
	assert.Equal(t, TypeString, tags.Items.Type)
	assert.NotNil(t, tags.Items.PatternRegexp())
	assert.True(t, tags.UniqueItems)

	role, _ := root.Prop("role")
	assert.Len(t, role.Enum, 2)
}

func TestParse_Nullable(t *testing.T) {
	tests := []struct {
		name   string
		schema string
	}{
		{name: "type array with null", schema: `{"type": ["string", "null"]}`},
		{name: "nullable flag", schema: `{"type": "string", "nullable": true}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node, err := Parse([]byte(tt.schema))
			require.NoError(t, err)
			assert.Equal(t, TypeString, node.Type)
			assert.True(t, node.Nullable)
		})
	}
}

func TestParse_ExclusiveBoundForms(t *testing.T) {
	// Numeric form sets the bound itself.
	node, err := Parse([]byte(`{"type": "number", "exclusiveMinimum": 5}`))
	require.NoError(t, err)
	require.NotNil(t, node.Minimum)
	assert.Equal(t, float64(5), *node.Minimum)
	assert.True(t, node.ExclusiveMinimum)

	// Boolean form qualifies an existing bound.
	node, err = Parse([]byte(`{"type": "integer", "minimum": 3, "exclusiveMinimum": true}`))
	require.NoError(t, err)
	require.NotNil(t, node.Minimum)
	assert.Equal(t, float64(3), *node.Minimum)
	assert.True(t, node.ExclusiveMinimum)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name   string
		schema string
	}{
		{name: "invalid json", schema: `{"type":`},
		{name: "non-object schema", schema: `true`},
		{name: "missing type", schema: `{"minimum": 3}`},
		{name: "unknown type", schema: `{"type": "decimal"}`},
		{name: "minimum exceeds maximum", schema: `{"type": "integer", "minimum": 10, "maximum": 5}`},
		{name: "exclusive equal bounds", schema: `{"type": "number", "minimum": 5, "maximum": 5, "exclusiveMaximum": true}`},
		{name: "boolean exclusive without bound", schema: `{"type": "number", "exclusiveMinimum": true}`},
		{name: "non-positive multipleOf", schema: `{"type": "integer", "multipleOf": 0}`},
		{name: "negative minLength", schema: `{"type": "string", "minLength": -1}`},
		{name: "minLength exceeds maxLength", schema: `{"type": "string", "minLength": 5, "maxLength": 2}`},
		{name: "bad pattern", schema: `{"type": "string", "pattern": "[unclosed"}`},
		{name: "minItems exceeds maxItems", schema: `{"type": "array", "minItems": 3, "maxItems": 1}`},
		{name: "empty enum", schema: `{"type": "string", "enum": []}`},
		{name: "required with non-string", schema: `{"type": "object", "required": [1]}`},
		{name: "bad additionalProperties", schema: `{"type": "object", "additionalProperties": 3}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.schema))
			require.Error(t, err)
			var perr *ParseError
			assert.True(t, errors.As(err, &perr), "expected a ParseError, got %v", err)
		})
	}
}

func TestParse_UnsupportedKeywords(t *testing.T) {
	tests := []struct {
		name    string
		schema  string
		keyword string
	}{
		{name: "allOf", schema: `{"type": "object", "allOf": []}`, keyword: "allOf"},
		{name: "oneOf", schema: `{"type": "object", "oneOf": []}`, keyword: "oneOf"},
		{name: "ref", schema: `{"$ref": "#/defs/x"}`, keyword: "$ref"},
		{name: "conditional", schema: `{"type": "object", "if": {}}`, keyword: "if"},
		{name: "patternProperties", schema: `{"type": "object", "patternProperties": {}}`, keyword: "patternProperties"},
		{name: "nested in property", schema: `{"type": "object", "properties": {"x": {"anyOf": []}}}`, keyword: "anyOf"},
		{name: "tuple items", schema: `{"type": "array", "items": [{"type": "string"}]}`, keyword: "items (tuple form)"},
		{name: "multiple types", schema: `{"type": ["string", "integer"]}`, keyword: "type with multiple non-null entries"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.schema))
			require.Error(t, err)
			var uerr *UnsupportedError
			require.True(t, errors.As(err, &uerr), "expected an UnsupportedError, got %v", err)
			assert.Equal(t, tt.keyword, uerr.Keyword)
		})
	}
}

func TestParse_UnsupportedErrorCarriesPath(t *testing.T) {
	_, err := Parse([]byte(`{"type": "object", "properties": {"deep": {"type": "array", "items": {"$ref": "#"}}}}`))
	require.Error(t, err)
	var uerr *UnsupportedError
	require.True(t, errors.As(err, &uerr))
	assert.Equal(t, "/properties/deep/items", uerr.Path)
}

func TestParse_AnnotationsIgnored(t *testing.T) {
	node, err := Parse([]byte(`{
		"$schema": "https://json-schema.org/draft/2020-12/schema",
		"title": "User",
		"description": "a user record",
		"type": "object",
		"properties": {"id": {"type": "integer", "examples": [1]}}
	}`))
	require.NoError(t, err)
	assert.Equal(t, TypeObject, node.Type)
	_, ok := node.Prop("id")
	assert.True(t, ok)
}

func TestTypeOf(t *testing.T) {
	tests := []struct {
		name     string
		input    interface{}
		expected Type
	}{
		{name: "nil", input: nil, expected: TypeNull},
		{name: "bool", input: true, expected: TypeBoolean},
		{name: "string", input: "s", expected: TypeString},
		{name: "integral float", input: float64(3), expected: TypeInteger},
		{name: "fractional float", input: 3.5, expected: TypeNumber},
		{name: "int64", input: int64(3), expected: TypeInteger},
		{name: "array", input: []interface{}{}, expected: TypeArray},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := TypeOf(tt.input)
			require.True(t, ok)
			assert.Equal(t, tt.expected, got)
		})
	}

	_, ok := TypeOf(struct{}{})
	assert.False(t, ok)
}
