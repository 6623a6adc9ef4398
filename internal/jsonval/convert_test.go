package jsonval

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAsInt(t *testing.T) {
	tests := []struct {
		name     string
		input    interface{}
		expected int64
		ok       bool
	}{
		{name: "json.Number integer", input: json.Number("42"), expected: 42, ok: true},
		{name: "json.Number scientific integer", input: json.Number("1e3"), expected: 1000, ok: true},
		{name: "json.Number fractional", input: json.Number("1.5"), ok: false},
		{name: "int64", input: int64(-7), expected: -7, ok: true},
		{name: "int", input: 5, expected: 5, ok: true},
		{name: "float64 integral", input: float64(12.0), expected: 12, ok: true},
		{name: "float64 fractional", input: float64(12.3), ok: false},
		{name: "string", input: "42", ok: false},
		{name: "nil", input: nil, ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := AsInt(tt.input)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.expected, got)
			}
		})
	}
}

func TestAsFloat(t *testing.T) {
	tests := []struct {
		name     string
		input    interface{}
		expected float64
		ok       bool
	}{
		{name: "json.Number", input: json.Number("2.5"), expected: 2.5, ok: true},
		{name: "float64", input: 1.25, expected: 1.25, ok: true},
		{name: "int64", input: int64(3), expected: 3, ok: true},
		{name: "bool", input: true, ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := AsFloat(tt.input)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.expected, got)
			}
		})
	}
}

func TestIsIntegral(t *testing.T) {
	tests := []struct {
		name     string
		input    interface{}
		expected bool
	}{
		{name: "json.Number 5", input: json.Number("5"), expected: true},
		{name: "json.Number 5.0", input: json.Number("5.0"), expected: true},
		{name: "json.Number 5.5", input: json.Number("5.5"), expected: false},
		{name: "json.Number beyond int64", input: json.Number("9223372036854775808"), expected: true},
		{name: "float64 whole", input: float64(8), expected: true},
		{name: "float64 fractional", input: 8.1, expected: false},
		{name: "string", input: "8", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsIntegral(tt.input))
		})
	}
}
