// Package schema models the subset of JSON Schema that drives payload
// generation and mutation: one type per node plus the constraint keywords
// relevant to that type. Nodes are immutable after parsing and may be shared
// read-only across engines and workers.
package schema

import (
	"encoding/json"
	"regexp"

	"github.com/dbsmedya/gomutate/internal/jsonval"
)

// Type is one of the seven JSON kinds a schema node can declare.
type Type string

const (
	TypeNull    Type = "null"
	TypeBoolean Type = "boolean"
	TypeInteger Type = "integer"
	TypeNumber  Type = "number"
	TypeString  Type = "string"
	TypeArray   Type = "array"
	TypeObject  Type = "object"
)

// Types lists all schema types in a fixed order.
var Types = []Type{TypeNull, TypeBoolean, TypeInteger, TypeNumber, TypeString, TypeArray, TypeObject}

// Valid reports whether t is one of the seven JSON kinds.
func (t Type) Valid() bool {
	switch t {
	case TypeNull, TypeBoolean, TypeInteger, TypeNumber, TypeString, TypeArray, TypeObject:
		return true
	}
	return false
}

// Property is a named object member schema. Properties keep schema source
// order so walks over an object schema are deterministic.
type Property struct {
	Name string
	Node *Node
}

// Node is a single schema constraint unit. Pointer-typed fields distinguish
// an absent constraint from a zero-valued one; absent constraints are never
// defaulted at parse time.
type Node struct {
	Type     Type
	Nullable bool

	// Numeric constraints (integer, number).
	Minimum          *float64
	Maximum          *float64
	ExclusiveMinimum bool
	ExclusiveMaximum bool
	MultipleOf       *float64

	// String constraints.
	MinLength *int
	MaxLength *int
	Pattern   string
	Format    string

	// Enumeration of allowed values, scalar types only.
	Enum []interface{}

	// Array constraints.
	Items       *Node
	MinItems    *int
	MaxItems    *int
	UniqueItems bool

	// Object constraints. ForbidAdditional and AdditionalSchema are mutually
	// exclusive: (false, nil) allows free-form extra keys, (true, nil)
	// forbids them, (false, schema) constrains them.
	Properties       []Property
	Required         []string
	AdditionalSchema *Node
	ForbidAdditional bool

	pattern *regexp.Regexp // compiled Pattern, set by the parser
}

// Prop returns the schema of the named property.
func (n *Node) Prop(name string) (*Node, bool) {
	for _, p := range n.Properties {
		if p.Name == name {
			return p.Node, true
		}
	}
	return nil, false
}

// IsRequired reports whether name appears in the node's required list.
func (n *Node) IsRequired(name string) bool {
	for _, r := range n.Required {
		if r == name {
			return true
		}
	}
	return false
}

// Numeric reports whether the node's type is integer or number.
func (n *Node) Numeric() bool {
	return n.Type == TypeInteger || n.Type == TypeNumber
}

// Container reports whether the node's type is array or object.
func (n *Node) Container() bool {
	return n.Type == TypeArray || n.Type == TypeObject
}

// PatternRegexp returns the compiled pattern, compiling on demand for nodes
// built directly in code. Returns nil when the node has no pattern or the
// pattern does not compile.
func (n *Node) PatternRegexp() *regexp.Regexp {
	if n.pattern != nil {
		return n.pattern
	}
	if n.Pattern == "" {
		return nil
	}
	re, err := regexp.Compile(n.Pattern)
	if err != nil {
		return nil
	}
	return re
}

// TypeOf classifies a decoded JSON value. Numbers with a zero fractional
// part classify as integer; a number-typed node accepts those too. The
// second return is false for values outside the JSON domain.
func TypeOf(v interface{}) (Type, bool) {
	switch v.(type) {
	case nil:
		return TypeNull, true
	case bool:
		return TypeBoolean, true
	case string:
		return TypeString, true
	case json.Number, int64, int, int32, uint64, float64:
		if jsonval.IsIntegral(v) {
			return TypeInteger, true
		}
		return TypeNumber, true
	case []interface{}:
		return TypeArray, true
	case *jsonval.Object:
		return TypeObject, true
	default:
		return "", false
	}
}
