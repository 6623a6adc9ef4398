// Package catalog holds the vulnerability operator registry. Each operator
// is a pure transformation tagged with the schema types it applies to and
// the vulnerability class it probes; the generation and mutation engines
// share one registry so violating values come from a single place.
package catalog

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/dbsmedya/gomutate/internal/jsonval"
	"github.com/dbsmedya/gomutate/internal/schema"
)

// Class labels the vulnerability class an operator probes.
type Class string

const (
	ClassBoundary      Class = "boundary"
	ClassOverflow      Class = "integer-overflow"
	ClassResource      Class = "resource-exhaustion"
	ClassInjection     Class = "injection"
	ClassTypeConfusion Class = "type-confusion"
	ClassNullHandling  Class = "null-handling"
	ClassEncoding      Class = "encoding"
	ClassStructure     Class = "structure"
	ClassPerturbation  Class = "perturbation"
)

// ErrNotApplicable signals that an operator cannot do anything meaningful
// with the concrete value it was handed, for example removing a required key
// from an object that has none. Callers retry with another target or
// operator; this is the only soft failure an operator may return.
var ErrNotApplicable = errors.New("operator not applicable to this value")

// Placeholder is the current value handed to an operator when there is no
// prior value, which is the case when the generation engine asks for a
// violating value at a position it is synthesizing from scratch.
var Placeholder interface{} = placeholder{}

type placeholder struct{}

// ApplyFunc transforms a current value under a schema node into a derived
// value, drawing any randomness from rng. Implementations must be pure:
// same inputs and same rng state give the same output.
type ApplyFunc func(node *schema.Node, current interface{}, rng *rand.Rand) (interface{}, error)

// Operator is one registered mutation. Structural operators change document
// shape rather than scalar content and are the only ones allowed on values
// that matched no schema node.
type Operator struct {
	Name       string
	Class      Class
	Types      []schema.Type
	Structural bool
	fn         ApplyFunc
}

// AppliesTo reports whether the operator is registered for type t.
func (o *Operator) AppliesTo(t schema.Type) bool {
	for _, at := range o.Types {
		if at == t {
			return true
		}
	}
	return false
}

// Apply runs the operator against a value. Invoking an operator for a type
// outside its applicability set is a programming error in the caller, not a
// data condition, so it panics instead of returning an error.
func (o *Operator) Apply(node *schema.Node, current interface{}, rng *rand.Rand) (interface{}, error) {
	if !o.AppliesTo(node.Type) {
		panic(fmt.Sprintf("catalog: operator %s applied to inapplicable type %q", o.Name, node.Type))
	}
	return o.fn(node, current, rng)
}

// Registry is the fixed set of operators for a run. It is populated once by
// NewRegistry and never mutated afterwards, so it is safe to share across
// workers.
type Registry struct {
	ops    []*Operator
	byName map[string]*Operator
	byType map[schema.Type][]*Operator
}

// NewRegistry builds the registry with every builtin operator, in a fixed
// registration order so listings and uniform draws are deterministic.
func NewRegistry() *Registry {
	r := &Registry{
		byName: make(map[string]*Operator),
		byType: make(map[schema.Type][]*Operator),
	}
	for _, op := range builtinOperators() {
		r.register(op)
	}
	return r
}

func (r *Registry) register(op *Operator) {
	if _, dup := r.byName[op.Name]; dup {
		panic(fmt.Sprintf("catalog: operator %s registered twice", op.Name))
	}
	r.byName[op.Name] = op
	r.ops = append(r.ops, op)
	for _, t := range op.Types {
		r.byType[t] = append(r.byType[t], op)
	}
}

// All returns every operator in registration order.
func (r *Registry) All() []*Operator {
	return r.ops
}

// ForType returns the operators applicable to schema type t, in registration
// order.
func (r *Registry) ForType(t schema.Type) []*Operator {
	return r.byType[t]
}

// Structural returns the operators allowed on values without a schema node,
// filtered by the observed type of the value.
func (r *Registry) Structural(observed schema.Type) []*Operator {
	var out []*Operator
	for _, op := range r.byType[observed] {
		if op.Structural {
			out = append(out, op)
		}
	}
	return out
}

// Lookup finds an operator by name.
func (r *Registry) Lookup(name string) (*Operator, bool) {
	op, ok := r.byName[name]
	return op, ok
}

// hasCurrent reports whether the operator was handed a real prior value
// rather than the generation placeholder.
func hasCurrent(current interface{}) bool {
	_, isPlaceholder := current.(placeholder)
	return !isPlaceholder
}

// pickDifferent draws one candidate that differs from current, so a mutation
// never silently reproduces the value it was meant to disturb. Candidates
// equal to current are filtered out first; if none survive the operator is
// not applicable.
func pickDifferent(rng *rand.Rand, current interface{}, candidates []interface{}) (interface{}, error) {
	if !hasCurrent(current) {
		return candidates[rng.Intn(len(candidates))], nil
	}
	viable := make([]interface{}, 0, len(candidates))
	for _, c := range candidates {
		if !sameValue(c, current) {
			viable = append(viable, c)
		}
	}
	if len(viable) == 0 {
		return nil, ErrNotApplicable
	}
	return viable[rng.Intn(len(viable))], nil
}

func sameValue(a, b interface{}) bool {
	af, aok := jsonval.AsFloat(a)
	bf, bok := jsonval.AsFloat(b)
	if aok || bok {
		return aok && bok && af == bf
	}
	switch av := a.(type) {
	case nil:
		return b == nil
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	default:
		// Containers are compared by identity, which a fresh candidate
		// never shares with the current value.
		return false
	}
}
