package mutator

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/dbsmedya/gomutate/internal/catalog"
	"github.com/dbsmedya/gomutate/internal/jsonval"
	"github.com/dbsmedya/gomutate/internal/schema"
)

const (
	// leafWeight and containerWeight bias target selection toward scalar
	// leaves while keeping containers reachable.
	leafWeight      = 3
	containerWeight = 1
	// selectionRetries bounds how many target/operator draws are attempted
	// before falling back to a structural mutation at the root.
	selectionRetries = 8
)

// Mutation is the outcome of one mutation pass: the derived document, the
// location that was disturbed and the operator that did it. Everything
// outside Path is structurally shared with the sample.
type Mutation struct {
	Document interface{}
	Path     jsonval.Pointer
	Operator string
}

// Mutator applies single-point mutations to bound samples. It holds no
// mutable state and is safe to share across workers.
type Mutator struct {
	reg *catalog.Registry
}

// New builds a Mutator over the given operator registry.
func New(reg *catalog.Registry) *Mutator {
	return &Mutator{reg: reg}
}

// Mutate picks one target location (weighted toward leaves), one applicable
// operator (uniform), applies it, and rebuilds the document along the
// mutated path. When the drawn operator reports it cannot act on the
// concrete value, selection is retried a bounded number of times before
// falling back to a structural operator at the root, so a mutation is
// always produced.
func (m *Mutator) Mutate(sample *Sample, rng *rand.Rand) (*Mutation, error) {
	targets := sample.Targets()
	if len(targets) == 0 {
		return nil, errors.New("sample has no mutable locations")
	}

	for attempt := 0; attempt < selectionRetries; attempt++ {
		tgt := pickTarget(targets, rng)
		current, err := jsonval.Get(sample.Root(), tgt.Path)
		if err != nil {
			return nil, fmt.Errorf("resolve target %q: %w", tgt.Path, err)
		}

		node := tgt.Node
		var ops []*catalog.Operator
		if tgt.Unschematized {
			observed, ok := schema.TypeOf(current)
			if !ok {
				continue
			}
			node = &schema.Node{Type: observed}
			ops = m.reg.Structural(observed)
		} else {
			ops = m.reg.ForType(node.Type)
		}
		if len(ops) == 0 {
			continue
		}

		op := ops[rng.Intn(len(ops))]
		mutated, err := op.Apply(node, current, rng)
		if errors.Is(err, catalog.ErrNotApplicable) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("operator %s at %q: %w", op.Name, tgt.Path, err)
		}

		doc, err := jsonval.WithValue(sample.Root(), tgt.Path, mutated)
		if err != nil {
			return nil, fmt.Errorf("rebuild document at %q: %w", tgt.Path, err)
		}
		return &Mutation{Document: doc, Path: tgt.Path, Operator: op.Name}, nil
	}

	return m.mutateRoot(sample, rng)
}

// mutateRoot is the fallback when bounded selection found nothing to do:
// apply a structural operator to the document root. TypeConfusion applies to
// any value, so this cannot come up empty.
func (m *Mutator) mutateRoot(sample *Sample, rng *rand.Rand) (*Mutation, error) {
	rootTarget := sample.Targets()[0]
	current := sample.Root()

	node := rootTarget.Node
	observed, ok := schema.TypeOf(current)
	if !ok {
		return nil, fmt.Errorf("document root of kind %T is not mutable", current)
	}
	if node == nil {
		node = &schema.Node{Type: observed}
	}

	ops := m.reg.Structural(observed)
	for _, i := range rng.Perm(len(ops)) {
		op := ops[i]
		mutated, err := op.Apply(node, current, rng)
		if errors.Is(err, catalog.ErrNotApplicable) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("operator %s at root: %w", op.Name, err)
		}
		return &Mutation{Document: mutated, Path: jsonval.Root, Operator: op.Name}, nil
	}
	return nil, errors.New("no structural operator applies at the document root")
}

func pickTarget(targets []Target, rng *rand.Rand) Target {
	total := 0
	for _, t := range targets {
		total += t.Weight()
	}
	pick := rng.Intn(total)
	for _, t := range targets {
		pick -= t.Weight()
		if pick < 0 {
			return t
		}
	}
	return targets[len(targets)-1]
}

// Weight returns the target's selection weight. Scalar leaves weigh more
// than containers so most mutations land on concrete values.
func (t Target) Weight() int {
	if t.Container {
		return containerWeight
	}
	return leafWeight
}
