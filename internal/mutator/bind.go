// Package mutator derives documents from a sample by disturbing exactly one
// location per call. A sample is first bound to its schema: every location
// gets tagged with the schema node it structurally matches, and locations
// that match nothing are marked unschematized, which restricts them to
// shape-level operators.
package mutator

import (
	"github.com/dbsmedya/gomutate/internal/jsonval"
	"github.com/dbsmedya/gomutate/internal/schema"
)

// Target is one mutable location in a bound sample.
type Target struct {
	Path jsonval.Pointer
	// Node is the schema node the value matched, nil for unschematized
	// locations.
	Node          *schema.Node
	Container     bool
	Unschematized bool
	Depth         int
}

// Sample is a sample document bound to its schema. The document is treated
// as immutable: mutations rebuild the path to the mutated location and share
// every untouched subtree with the original.
type Sample struct {
	root    interface{}
	targets []Target
}

// Root returns the bound document.
func (s *Sample) Root() interface{} {
	return s.root
}

// Targets returns every mutable location in binding order (parents before
// children). Callers must not modify the slice.
func (s *Sample) Targets() []Target {
	return s.targets
}

// Bind walks value against the schema and tags every location. Matching is
// structural, by type: constraint violations inside a correctly typed value
// do not make it unschematized, they just mean the sample was nonconformant
// to begin with. Once a value fails to match, everything beneath it is
// unschematized too, since the schema no longer describes that subtree.
func Bind(root *schema.Node, value interface{}) *Sample {
	s := &Sample{root: value}
	bindValue(root, value, jsonval.Root, 0, &s.targets)
	return s
}

func bindValue(node *schema.Node, v interface{}, path jsonval.Pointer, depth int, out *[]Target) {
	matched := node != nil && matches(node, v)
	var tagged *schema.Node
	if matched {
		tagged = node
	}
	vt, _ := schema.TypeOf(v)
	*out = append(*out, Target{
		Path:          path,
		Node:          tagged,
		Container:     vt == schema.TypeArray || vt == schema.TypeObject,
		Unschematized: !matched,
		Depth:         depth,
	})

	switch val := v.(type) {
	case *jsonval.Object:
		for _, key := range val.Keys() {
			child, _ := val.Get(key)
			var childNode *schema.Node
			if matched {
				if prop, ok := node.Prop(key); ok {
					childNode = prop
				} else if node.AdditionalSchema != nil {
					childNode = node.AdditionalSchema
				}
			}
			bindValue(childNode, child, path.Child(key), depth+1, out)
		}
	case []interface{}:
		var itemNode *schema.Node
		if matched {
			itemNode = node.Items
		}
		for i, e := range val {
			bindValue(itemNode, e, path.Index(i), depth+1, out)
		}
	}
}

func matches(node *schema.Node, v interface{}) bool {
	if v == nil {
		return node.Type == schema.TypeNull || node.Nullable
	}
	vt, ok := schema.TypeOf(v)
	if !ok {
		return false
	}
	if vt == node.Type {
		return true
	}
	// Integral values satisfy number schemas.
	return vt == schema.TypeInteger && node.Type == schema.TypeNumber
}
