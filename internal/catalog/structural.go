package catalog

import (
	"math/rand"
	"strings"
	"unicode"

	"github.com/dbsmedya/gomutate/internal/jsonval"
	"github.com/dbsmedya/gomutate/internal/schema"
)

// typeConfusion substitutes a value of a different JSON type than the node
// declares. Number nodes also exclude integer-shaped candidates, since a
// number schema accepts those.
func typeConfusion() *Operator {
	return &Operator{
		Name:       "TypeConfusion",
		Class:      ClassTypeConfusion,
		Types:      schema.Types,
		Structural: true,
		fn: func(node *schema.Node, current interface{}, rng *rand.Rand) (interface{}, error) {
			confusedObj := jsonval.NewObject()
			confusedObj.Set("unexpected", true)
			pool := []interface{}{
				"42",
				true,
				int64(42),
				3.14,
				[]interface{}{int64(1), int64(2)},
				confusedObj,
			}
			var candidates []interface{}
			for _, c := range pool {
				ct, _ := schema.TypeOf(c)
				if ct == node.Type {
					continue
				}
				if node.Type == schema.TypeNumber && ct == schema.TypeInteger {
					continue
				}
				candidates = append(candidates, c)
			}
			return candidates[rng.Intn(len(candidates))], nil
		},
	}
}

// nullInjection substitutes null whether or not the node is nullable. A
// value that is already null has nothing to inject.
func nullInjection() *Operator {
	return &Operator{
		Name:       "NullInjection",
		Class:      ClassNullHandling,
		Types:      schema.Types,
		Structural: true,
		fn: func(node *schema.Node, current interface{}, rng *rand.Rand) (interface{}, error) {
			if hasCurrent(current) && current == nil {
				return nil, ErrNotApplicable
			}
			return nil, nil
		},
	}
}

// booleanFlip negates the current boolean, or draws one when generating.
func booleanFlip() *Operator {
	return &Operator{
		Name:  "BooleanFlip",
		Class: ClassPerturbation,
		Types: []schema.Type{schema.TypeBoolean},
		fn: func(node *schema.Node, current interface{}, rng *rand.Rand) (interface{}, error) {
			if b, ok := current.(bool); ok {
				return !b, nil
			}
			return rng.Intn(2) == 0, nil
		},
	}
}

// keyOmission removes one required key from the object.
func keyOmission() *Operator {
	return &Operator{
		Name:       "KeyOmission",
		Class:      ClassStructure,
		Types:      []schema.Type{schema.TypeObject},
		Structural: true,
		fn: func(node *schema.Node, current interface{}, rng *rand.Rand) (interface{}, error) {
			obj, ok := current.(*jsonval.Object)
			if !ok {
				return nil, ErrNotApplicable
			}
			var present []string
			for _, name := range node.Required {
				if obj.Has(name) {
					present = append(present, name)
				}
			}
			if len(present) == 0 {
				return nil, ErrNotApplicable
			}
			clone := obj.Clone()
			clone.Delete(present[rng.Intn(len(present))])
			return clone, nil
		},
	}
}

// keyDuplicationCaseVariant adds a case-variant twin of an existing key,
// carrying the same value, to probe case-insensitive key handling.
func keyDuplicationCaseVariant() *Operator {
	return &Operator{
		Name:       "KeyDuplicationCaseVariant",
		Class:      ClassStructure,
		Types:      []schema.Type{schema.TypeObject},
		Structural: true,
		fn: func(node *schema.Node, current interface{}, rng *rand.Rand) (interface{}, error) {
			obj, ok := current.(*jsonval.Object)
			if !ok {
				return nil, ErrNotApplicable
			}
			type variant struct{ key, twin string }
			var viable []variant
			for _, key := range obj.Keys() {
				for _, twin := range []string{strings.ToUpper(key), strings.ToLower(key), flipFirstRune(key)} {
					if twin != key && !obj.Has(twin) {
						viable = append(viable, variant{key: key, twin: twin})
						break
					}
				}
			}
			if len(viable) == 0 {
				return nil, ErrNotApplicable
			}
			pick := viable[rng.Intn(len(viable))]
			val, _ := obj.Get(pick.key)
			clone := obj.Clone()
			clone.Set(pick.twin, val)
			return clone, nil
		},
	}
}

// arrayLengthExtreme truncates the array to zero elements or inflates it far
// past maxItems by cycling the existing elements.
func arrayLengthExtreme() *Operator {
	return &Operator{
		Name:       "ArrayLengthExtreme",
		Class:      ClassResource,
		Types:      []schema.Type{schema.TypeArray},
		Structural: true,
		fn: func(node *schema.Node, current interface{}, rng *rand.Rand) (interface{}, error) {
			arr, ok := current.([]interface{})
			if !ok || len(arr) == 0 {
				return nil, ErrNotApplicable
			}
			if rng.Intn(2) == 0 {
				return []interface{}{}, nil
			}
			target := 1000
			if node.MaxItems != nil {
				target = (*node.MaxItems + 1) * 10
			}
			out := make([]interface{}, target)
			for i := range out {
				out[i] = arr[i%len(arr)]
			}
			return out, nil
		},
	}
}

func flipFirstRune(s string) string {
	runes := []rune(s)
	if len(runes) == 0 {
		return s
	}
	if unicode.IsUpper(runes[0]) {
		runes[0] = unicode.ToLower(runes[0])
	} else {
		runes[0] = unicode.ToUpper(runes[0])
	}
	return string(runes)
}
