package schema

import (
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/dbsmedya/gomutate/internal/jsonval"
)

// ParseError reports a malformed schema document. Path is a JSON Pointer
// into the schema source; empty means the document root.
type ParseError struct {
	Path    string
	Message string
}

func (e *ParseError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("schema: %s", e.Message)
	}
	return fmt.Sprintf("schema at %q: %s", e.Path, e.Message)
}

// UnsupportedError reports a schema construct outside the supported subset.
// Unsupported keywords abort parsing instead of being silently dropped, so a
// run never quietly fuzzes against weaker constraints than the schema states.
type UnsupportedError struct {
	Path    string
	Keyword string
}

func (e *UnsupportedError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("schema: unsupported keyword %q", e.Keyword)
	}
	return fmt.Sprintf("schema at %q: unsupported keyword %q", e.Path, e.Keyword)
}

// Composition, reference and conditional keywords are outside the supported
// subset.
var unsupportedKeywords = []string{
	"allOf", "anyOf", "oneOf", "not",
	"$ref", "$defs", "definitions", "$dynamicRef", "$dynamicAnchor",
	"if", "then", "else",
	"patternProperties", "propertyNames",
	"dependentSchemas", "dependentRequired", "dependencies",
	"prefixItems", "contains",
	"unevaluatedProperties", "unevaluatedItems",
}

// Parse decodes and parses a JSON Schema document into its root Node.
func Parse(data []byte) (*Node, error) {
	v, err := jsonval.Decode(data)
	if err != nil {
		return nil, &ParseError{Message: fmt.Sprintf("invalid JSON: %v", err)}
	}
	return FromValue(v)
}

// FromValue parses an already-decoded schema document.
func FromValue(v interface{}) (*Node, error) {
	return parseNode(v, "")
}

func parseNode(v interface{}, path string) (*Node, error) {
	obj, ok := v.(*jsonval.Object)
	if !ok {
		return nil, &ParseError{Path: path, Message: "schema node must be a JSON object"}
	}

	for _, kw := range unsupportedKeywords {
		if obj.Has(kw) {
			return nil, &UnsupportedError{Path: path, Keyword: kw}
		}
	}

	node := &Node{}
	if err := parseType(obj, node, path); err != nil {
		return nil, err
	}

	switch node.Type {
	case TypeInteger, TypeNumber:
		if err := parseNumeric(obj, node, path); err != nil {
			return nil, err
		}
	case TypeString:
		if err := parseString(obj, node, path); err != nil {
			return nil, err
		}
	case TypeArray:
		if err := parseArray(obj, node, path); err != nil {
			return nil, err
		}
	case TypeObject:
		if err := parseObject(obj, node, path); err != nil {
			return nil, err
		}
	}

	if node.Type != TypeArray && node.Type != TypeObject {
		if err := parseEnum(obj, node, path); err != nil {
			return nil, err
		}
	}
	return node, nil
}

func parseType(obj *jsonval.Object, node *Node, path string) error {
	raw, ok := obj.Get("type")
	if !ok {
		return &ParseError{Path: path, Message: `missing required keyword "type"`}
	}
	switch t := raw.(type) {
	case string:
		node.Type = Type(t)
	case []interface{}:
		// The one supported array form is a single type paired with "null".
		var types []string
		for _, e := range t {
			s, ok := e.(string)
			if !ok {
				return &ParseError{Path: path, Message: `"type" array must contain strings`}
			}
			if s == "null" {
				node.Nullable = true
				continue
			}
			types = append(types, s)
		}
		if len(types) != 1 {
			return &UnsupportedError{Path: path, Keyword: `type with multiple non-null entries`}
		}
		node.Type = Type(types[0])
	default:
		return &ParseError{Path: path, Message: `"type" must be a string or an array of strings`}
	}
	if !node.Type.Valid() {
		return &ParseError{Path: path, Message: fmt.Sprintf("unknown type %q", node.Type)}
	}
	if b, err := optBool(obj, "nullable", path); err != nil {
		return err
	} else if b {
		node.Nullable = true
	}
	return nil
}

func parseNumeric(obj *jsonval.Object, node *Node, path string) error {
	var err error
	if node.Minimum, err = optNumber(obj, "minimum", path); err != nil {
		return err
	}
	if node.Maximum, err = optNumber(obj, "maximum", path); err != nil {
		return err
	}

	// exclusiveMinimum/exclusiveMaximum accept the draft-04 boolean form,
	// which qualifies minimum/maximum, and the newer numeric form, which is
	// a bound of its own. The numeric form is folded into Minimum/Maximum,
	// keeping whichever bound is tighter.
	if raw, ok := obj.Get("exclusiveMinimum"); ok {
		switch x := raw.(type) {
		case bool:
			if x && node.Minimum == nil {
				return &ParseError{Path: path, Message: `boolean "exclusiveMinimum" requires "minimum"`}
			}
			node.ExclusiveMinimum = x
		case json.Number:
			f, ferr := x.Float64()
			if ferr != nil {
				return &ParseError{Path: path, Message: `"exclusiveMinimum" is not a valid number`}
			}
			if node.Minimum == nil || f >= *node.Minimum {
				node.Minimum = &f
				node.ExclusiveMinimum = true
			}
		default:
			return &ParseError{Path: path, Message: `"exclusiveMinimum" must be a boolean or a number`}
		}
	}
	if raw, ok := obj.Get("exclusiveMaximum"); ok {
		switch x := raw.(type) {
		case bool:
			if x && node.Maximum == nil {
				return &ParseError{Path: path, Message: `boolean "exclusiveMaximum" requires "maximum"`}
			}
			node.ExclusiveMaximum = x
		case json.Number:
			f, ferr := x.Float64()
			if ferr != nil {
				return &ParseError{Path: path, Message: `"exclusiveMaximum" is not a valid number`}
			}
			if node.Maximum == nil || f <= *node.Maximum {
				node.Maximum = &f
				node.ExclusiveMaximum = true
			}
		default:
			return &ParseError{Path: path, Message: `"exclusiveMaximum" must be a boolean or a number`}
		}
	}

	if node.Minimum != nil && node.Maximum != nil {
		if *node.Minimum > *node.Maximum {
			return &ParseError{Path: path, Message: "minimum exceeds maximum"}
		}
		if *node.Minimum == *node.Maximum && (node.ExclusiveMinimum || node.ExclusiveMaximum) {
			return &ParseError{Path: path, Message: "exclusive bounds leave no valid values"}
		}
	}

	if node.MultipleOf, err = optNumber(obj, "multipleOf", path); err != nil {
		return err
	}
	if node.MultipleOf != nil && *node.MultipleOf <= 0 {
		return &ParseError{Path: path, Message: `"multipleOf" must be positive`}
	}
	return nil
}

func parseString(obj *jsonval.Object, node *Node, path string) error {
	var err error
	if node.MinLength, err = optCount(obj, "minLength", path); err != nil {
		return err
	}
	if node.MaxLength, err = optCount(obj, "maxLength", path); err != nil {
		return err
	}
	if node.MinLength != nil && node.MaxLength != nil && *node.MinLength > *node.MaxLength {
		return &ParseError{Path: path, Message: "minLength exceeds maxLength"}
	}

	if node.Pattern, err = optString(obj, "pattern", path); err != nil {
		return err
	}
	if node.Pattern != "" {
		re, cerr := regexp.Compile(node.Pattern)
		if cerr != nil {
			return &ParseError{Path: path, Message: fmt.Sprintf("pattern does not compile: %v", cerr)}
		}
		node.pattern = re
	}

	node.Format, err = optString(obj, "format", path)
	return err
}

func parseArray(obj *jsonval.Object, node *Node, path string) error {
	if raw, ok := obj.Get("items"); ok {
		if _, isArr := raw.([]interface{}); isArr {
			return &UnsupportedError{Path: path, Keyword: "items (tuple form)"}
		}
		items, err := parseNode(raw, path+"/items")
		if err != nil {
			return err
		}
		node.Items = items
	}

	var err error
	if node.MinItems, err = optCount(obj, "minItems", path); err != nil {
		return err
	}
	if node.MaxItems, err = optCount(obj, "maxItems", path); err != nil {
		return err
	}
	if node.MinItems != nil && node.MaxItems != nil && *node.MinItems > *node.MaxItems {
		return &ParseError{Path: path, Message: "minItems exceeds maxItems"}
	}

	node.UniqueItems, err = optBool(obj, "uniqueItems", path)
	return err
}

func parseObject(obj *jsonval.Object, node *Node, path string) error {
	if raw, ok := obj.Get("properties"); ok {
		props, isObj := raw.(*jsonval.Object)
		if !isObj {
			return &ParseError{Path: path, Message: `"properties" must be an object`}
		}
		for _, name := range props.Keys() {
			child, _ := props.Get(name)
			parsed, err := parseNode(child, path+"/properties/"+name)
			if err != nil {
				return err
			}
			node.Properties = append(node.Properties, Property{Name: name, Node: parsed})
		}
	}

	if raw, ok := obj.Get("required"); ok {
		arr, isArr := raw.([]interface{})
		if !isArr {
			return &ParseError{Path: path, Message: `"required" must be an array`}
		}
		for _, e := range arr {
			name, isStr := e.(string)
			if !isStr {
				return &ParseError{Path: path, Message: `"required" entries must be strings`}
			}
			node.Required = append(node.Required, name)
		}
	}

	if raw, ok := obj.Get("additionalProperties"); ok {
		switch ap := raw.(type) {
		case bool:
			node.ForbidAdditional = !ap
		case *jsonval.Object:
			parsed, err := parseNode(ap, path+"/additionalProperties")
			if err != nil {
				return err
			}
			node.AdditionalSchema = parsed
		default:
			return &ParseError{Path: path, Message: `"additionalProperties" must be a boolean or a schema`}
		}
	}
	return nil
}

func parseEnum(obj *jsonval.Object, node *Node, path string) error {
	raw, ok := obj.Get("enum")
	if !ok {
		return nil
	}
	arr, isArr := raw.([]interface{})
	if !isArr || len(arr) == 0 {
		return &ParseError{Path: path, Message: `"enum" must be a non-empty array`}
	}
	node.Enum = arr
	return nil
}

func optNumber(obj *jsonval.Object, key, path string) (*float64, error) {
	raw, ok := obj.Get(key)
	if !ok {
		return nil, nil
	}
	n, isNum := raw.(json.Number)
	if !isNum {
		return nil, &ParseError{Path: path, Message: fmt.Sprintf("%q must be a number", key)}
	}
	f, err := n.Float64()
	if err != nil {
		return nil, &ParseError{Path: path, Message: fmt.Sprintf("%q is not a valid number", key)}
	}
	return &f, nil
}

func optCount(obj *jsonval.Object, key, path string) (*int, error) {
	raw, ok := obj.Get(key)
	if !ok {
		return nil, nil
	}
	i, isInt := jsonval.AsInt(raw)
	if !isInt || i < 0 {
		return nil, &ParseError{Path: path, Message: fmt.Sprintf("%q must be a non-negative integer", key)}
	}
	c := int(i)
	return &c, nil
}

func optBool(obj *jsonval.Object, key, path string) (bool, error) {
	raw, ok := obj.Get(key)
	if !ok {
		return false, nil
	}
	b, isBool := raw.(bool)
	if !isBool {
		return false, &ParseError{Path: path, Message: fmt.Sprintf("%q must be a boolean", key)}
	}
	return b, nil
}

func optString(obj *jsonval.Object, key, path string) (string, error) {
	raw, ok := obj.Get(key)
	if !ok {
		return "", nil
	}
	s, isStr := raw.(string)
	if !isStr {
		return "", &ParseError{Path: path, Message: fmt.Sprintf("%q must be a string", key)}
	}
	return s, nil
}
