package schema

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/dbsmedya/gomutate/internal/jsonval"
)

// Violation is one constraint breach found while validating a document.
type Violation struct {
	Path    string // JSON Pointer into the document
	Message string
}

func (v Violation) String() string {
	loc := v.Path
	if loc == "" {
		loc = "(root)"
	}
	return fmt.Sprintf("%s: %s", loc, v.Message)
}

// Report collects the violations of one validation pass. An empty report
// means the document conforms. Nonconformance is an expected outcome here,
// not an error: mutated documents are supposed to violate their schema.
type Report struct {
	Violations []Violation
}

// Conformant reports whether no violations were found.
func (r *Report) Conformant() bool {
	return len(r.Violations) == 0
}

func (r *Report) String() string {
	if r.Conformant() {
		return "conformant"
	}
	msgs := make([]string, len(r.Violations))
	for i, v := range r.Violations {
		msgs[i] = v.String()
	}
	return strings.Join(msgs, "\n")
}

func (r *Report) add(path jsonval.Pointer, format string, args ...interface{}) {
	r.Violations = append(r.Violations, Violation{
		Path:    path.String(),
		Message: fmt.Sprintf(format, args...),
	})
}

// Validate checks a document against the node's constraints and returns a
// report of every violation found. The check covers the constraint subset
// the engines know how to honor and break; format values are not checked.
func (n *Node) Validate(v interface{}) *Report {
	r := &Report{}
	validateValue(n, v, jsonval.Root, r)
	return r
}

func validateValue(n *Node, v interface{}, path jsonval.Pointer, r *Report) {
	if v == nil {
		if n.Type != TypeNull && !n.Nullable {
			r.add(path, "null is not allowed by type %q", n.Type)
		}
		return
	}

	vt, ok := TypeOf(v)
	if !ok {
		r.add(path, "value of kind %T is not a JSON value", v)
		return
	}

	switch n.Type {
	case TypeNull:
		r.add(path, "expected null, got %s", vt)
	case TypeBoolean:
		if vt != TypeBoolean {
			r.add(path, "expected boolean, got %s", vt)
			return
		}
		validateEnum(n, v, path, r)
	case TypeInteger:
		if vt != TypeInteger {
			r.add(path, "expected integer, got %s", vt)
			return
		}
		validateNumeric(n, v, path, r)
	case TypeNumber:
		if vt != TypeInteger && vt != TypeNumber {
			r.add(path, "expected number, got %s", vt)
			return
		}
		validateNumeric(n, v, path, r)
	case TypeString:
		s, isStr := v.(string)
		if !isStr {
			r.add(path, "expected string, got %s", vt)
			return
		}
		validateString(n, s, path, r)
	case TypeArray:
		arr, isArr := v.([]interface{})
		if !isArr {
			r.add(path, "expected array, got %s", vt)
			return
		}
		validateArray(n, arr, path, r)
	case TypeObject:
		obj, isObj := v.(*jsonval.Object)
		if !isObj {
			r.add(path, "expected object, got %s", vt)
			return
		}
		validateObject(n, obj, path, r)
	}
}

func validateNumeric(n *Node, v interface{}, path jsonval.Pointer, r *Report) {
	f, _ := jsonval.AsFloat(v)
	if n.Minimum != nil {
		if n.ExclusiveMinimum && f <= *n.Minimum {
			r.add(path, "%v is not greater than exclusive minimum %v", v, *n.Minimum)
		} else if !n.ExclusiveMinimum && f < *n.Minimum {
			r.add(path, "%v is less than minimum %v", v, *n.Minimum)
		}
	}
	if n.Maximum != nil {
		if n.ExclusiveMaximum && f >= *n.Maximum {
			r.add(path, "%v is not less than exclusive maximum %v", v, *n.Maximum)
		} else if !n.ExclusiveMaximum && f > *n.Maximum {
			r.add(path, "%v exceeds maximum %v", v, *n.Maximum)
		}
	}
	if n.MultipleOf != nil {
		q := f / *n.MultipleOf
		if math.Abs(q-math.Round(q)) > 1e-9 {
			r.add(path, "%v is not a multiple of %v", v, *n.MultipleOf)
		}
	}
	validateEnum(n, v, path, r)
}

func validateString(n *Node, s string, path jsonval.Pointer, r *Report) {
	length := utf8.RuneCountInString(s)
	if n.MinLength != nil && length < *n.MinLength {
		r.add(path, "length %d is less than minLength %d", length, *n.MinLength)
	}
	if n.MaxLength != nil && length > *n.MaxLength {
		r.add(path, "length %d exceeds maxLength %d", length, *n.MaxLength)
	}
	if re := n.PatternRegexp(); re != nil && !re.MatchString(s) {
		r.add(path, "value does not match pattern %q", n.Pattern)
	}
	validateEnum(n, s, path, r)
}

func validateArray(n *Node, arr []interface{}, path jsonval.Pointer, r *Report) {
	if n.MinItems != nil && len(arr) < *n.MinItems {
		r.add(path, "%d items is less than minItems %d", len(arr), *n.MinItems)
	}
	if n.MaxItems != nil && len(arr) > *n.MaxItems {
		r.add(path, "%d items exceeds maxItems %d", len(arr), *n.MaxItems)
	}
	if n.UniqueItems {
		seen := make(map[string]int, len(arr))
		for i, e := range arr {
			key := canonicalKey(e)
			if first, dup := seen[key]; dup {
				r.add(path.Index(i), "duplicate of item %d but uniqueItems is set", first)
			} else {
				seen[key] = i
			}
		}
	}
	if n.Items != nil {
		for i, e := range arr {
			validateValue(n.Items, e, path.Index(i), r)
		}
	}
}

func validateObject(n *Node, obj *jsonval.Object, path jsonval.Pointer, r *Report) {
	for _, name := range n.Required {
		if !obj.Has(name) {
			r.add(path, "missing required key %q", name)
		}
	}
	for _, key := range obj.Keys() {
		val, _ := obj.Get(key)
		if prop, ok := n.Prop(key); ok {
			validateValue(prop, val, path.Child(key), r)
			continue
		}
		if n.ForbidAdditional {
			r.add(path.Child(key), "key is not allowed, additional properties are forbidden")
			continue
		}
		if n.AdditionalSchema != nil {
			validateValue(n.AdditionalSchema, val, path.Child(key), r)
		}
	}
}

func validateEnum(n *Node, v interface{}, path jsonval.Pointer, r *Report) {
	if len(n.Enum) == 0 {
		return
	}
	for _, allowed := range n.Enum {
		if canonicalKey(v) == canonicalKey(allowed) {
			return
		}
	}
	r.add(path, "%v is not one of the enumerated values", v)
}

// canonicalKey renders a value so that numerically equal numbers compare
// equal regardless of representation (json.Number, int64, float64).
func canonicalKey(v interface{}) string {
	if f, ok := jsonval.AsFloat(v); ok {
		return "n:" + strconv.FormatFloat(f, 'g', -1, 64)
	}
	data, err := jsonval.Marshal(v)
	if err != nil {
		return fmt.Sprintf("!%T", v)
	}
	return string(data)
}
