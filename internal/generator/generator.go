// Package generator synthesizes JSON documents from a schema alone. By
// default the output conforms to every constraint the schema states; with a
// nonzero violation probability, scalar positions may instead carry a
// schema-violating value drawn from the operator catalog, so generated and
// mutated documents break schemas in exactly the same ways.
package generator

import (
	"math/rand"

	"github.com/dbsmedya/gomutate/internal/catalog"
	"github.com/dbsmedya/gomutate/internal/jsonval"
	"github.com/dbsmedya/gomutate/internal/schema"
)

const (
	// nullProbability is the chance a nullable scalar comes out null.
	nullProbability = 0.1
	// violationAttempts bounds how often a violating value is retried when
	// the drawn operator reports it cannot apply.
	violationAttempts = 4
	// defaultNumericWindow bounds numeric draws on sides the schema leaves
	// open.
	defaultNumericWindow = 1000
	// defaultStringLength caps random string lengths when the schema
	// declares no maxLength.
	defaultStringLength = 12
)

// Options tune document synthesis.
type Options struct {
	// ViolationProbability is the chance, per scalar position, of emitting
	// a schema-violating value from the operator catalog.
	ViolationProbability float64
	// OptionalKeyProbability is the chance a non-required object property
	// is included.
	OptionalKeyProbability float64
	// DefaultMaxItems bounds array lengths when the schema declares no
	// maxItems.
	DefaultMaxItems int
}

// DefaultOptions returns the documented defaults.
func DefaultOptions() Options {
	return Options{
		ViolationProbability:   0.1,
		OptionalKeyProbability: 0.5,
		DefaultMaxItems:        5,
	}
}

// Generator synthesizes documents for one schema using a shared operator
// registry. It holds no mutable state and is safe to share across workers;
// all randomness comes from the rng handed to Generate.
type Generator struct {
	reg  *catalog.Registry
	opts Options
}

// New builds a Generator. Probabilities are clamped into [0,1] and a
// non-positive DefaultMaxItems falls back to the documented default.
func New(reg *catalog.Registry, opts Options) *Generator {
	opts.ViolationProbability = clamp01(opts.ViolationProbability)
	opts.OptionalKeyProbability = clamp01(opts.OptionalKeyProbability)
	if opts.DefaultMaxItems <= 0 {
		opts.DefaultMaxItems = DefaultOptions().DefaultMaxItems
	}
	return &Generator{reg: reg, opts: opts}
}

// Generate synthesizes one document for node, drawing all randomness from
// rng.
func (g *Generator) Generate(node *schema.Node, rng *rand.Rand) interface{} {
	return g.value(node, rng)
}

func (g *Generator) value(node *schema.Node, rng *rand.Rand) interface{} {
	switch node.Type {
	case schema.TypeObject:
		return g.object(node, rng)
	case schema.TypeArray:
		return g.array(node, rng)
	default:
		return g.scalar(node, rng)
	}
}

func (g *Generator) scalar(node *schema.Node, rng *rand.Rand) interface{} {
	if g.opts.ViolationProbability > 0 && rng.Float64() < g.opts.ViolationProbability {
		if v, ok := g.violate(node, rng); ok {
			return v
		}
	}
	if node.Nullable && node.Type != schema.TypeNull && rng.Float64() < nullProbability {
		return nil
	}
	return g.conformant(node, rng)
}

// violate asks the catalog for a schema-violating value at a position that
// has no prior value yet.
func (g *Generator) violate(node *schema.Node, rng *rand.Rand) (interface{}, bool) {
	ops := g.reg.ForType(node.Type)
	if len(ops) == 0 {
		return nil, false
	}
	for attempt := 0; attempt < violationAttempts; attempt++ {
		op := ops[rng.Intn(len(ops))]
		v, err := op.Apply(node, catalog.Placeholder, rng)
		if err == nil {
			return v, true
		}
	}
	return nil, false
}

func (g *Generator) conformant(node *schema.Node, rng *rand.Rand) interface{} {
	if len(node.Enum) > 0 {
		return node.Enum[rng.Intn(len(node.Enum))]
	}
	switch node.Type {
	case schema.TypeNull:
		return nil
	case schema.TypeBoolean:
		return rng.Intn(2) == 0
	case schema.TypeInteger:
		return g.integer(node, rng)
	case schema.TypeNumber:
		return g.number(node, rng)
	case schema.TypeString:
		return g.str(node, rng)
	}
	return nil
}

func (g *Generator) integer(node *schema.Node, rng *rand.Rand) interface{} {
	lo, hi := integerBounds(node)
	if node.MultipleOf != nil && *node.MultipleOf >= 1 {
		m := int64(*node.MultipleOf)
		kLo := ceilDiv(lo, m)
		kHi := floorDiv(hi, m)
		if kLo <= kHi {
			k := kLo + rng.Int63n(kHi-kLo+1)
			return k * m
		}
		// No multiple fits the declared range; the schema admits no value,
		// so emit the nearest bound.
		return lo
	}
	span := hi - lo + 1
	if span <= 0 {
		// The range is wider than int64 can count; sample a window.
		span = 1 << 40
	}
	return lo + rng.Int63n(span)
}

func (g *Generator) number(node *schema.Node, rng *rand.Rand) interface{} {
	lo := -float64(defaultNumericWindow)
	hi := float64(defaultNumericWindow)
	if node.Minimum != nil {
		lo = *node.Minimum
		if node.Maximum == nil {
			hi = lo + 2*defaultNumericWindow
		}
	}
	if node.Maximum != nil {
		hi = *node.Maximum
		if node.Minimum == nil {
			lo = hi - 2*defaultNumericWindow
		}
	}

	f := lo + rng.Float64()*(hi-lo)
	if node.MultipleOf != nil && *node.MultipleOf > 0 {
		m := *node.MultipleOf
		f = float64(int64(f/m)) * m
		if f < lo {
			f += m
		}
		if f > hi {
			f -= m
		}
	}
	// rng.Float64 can return exactly 0; nudge off an exclusive bound.
	if node.ExclusiveMinimum && f <= lo {
		f = lo + (hi-lo)/1000
	}
	if node.ExclusiveMaximum && f >= hi {
		f = hi - (hi-lo)/1000
	}
	return f
}

const stringAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

func (g *Generator) str(node *schema.Node, rng *rand.Rand) interface{} {
	if node.Pattern != "" {
		if s, ok := synthesizePattern(node.Pattern, rng); ok {
			return s
		}
		// Unsupported pattern syntax: fall through to a length-bounded
		// default, the documented best-effort behavior.
	}
	lo := 0
	if node.MinLength != nil {
		lo = *node.MinLength
	}
	hi := lo + defaultStringLength
	if node.MaxLength != nil {
		hi = *node.MaxLength
	}
	length := lo
	if hi > lo {
		length = lo + rng.Intn(hi-lo+1)
	}
	buf := make([]byte, length)
	for i := range buf {
		buf[i] = stringAlphabet[rng.Intn(len(stringAlphabet))]
	}
	return string(buf)
}

func (g *Generator) array(node *schema.Node, rng *rand.Rand) interface{} {
	if node.Items == nil {
		return []interface{}{}
	}
	lo := 0
	if node.MinItems != nil {
		lo = *node.MinItems
	}
	hi := g.opts.DefaultMaxItems
	if node.MaxItems != nil {
		hi = *node.MaxItems
	}
	if hi < lo {
		hi = lo
	}
	length := lo + rng.Intn(hi-lo+1)
	out := make([]interface{}, 0, length)
	for i := 0; i < length; i++ {
		out = append(out, g.value(node.Items, rng))
	}
	return out
}

func (g *Generator) object(node *schema.Node, rng *rand.Rand) interface{} {
	obj := jsonval.NewObject()
	for _, p := range node.Properties {
		if node.IsRequired(p.Name) || rng.Float64() < g.opts.OptionalKeyProbability {
			obj.Set(p.Name, g.value(p.Node, rng))
		}
	}
	// Required names without a property schema still have to appear. Their
	// value follows the additional-properties schema when one exists.
	for _, name := range node.Required {
		if obj.Has(name) {
			continue
		}
		if _, declared := node.Prop(name); declared {
			continue
		}
		if node.AdditionalSchema != nil {
			obj.Set(name, g.value(node.AdditionalSchema, rng))
		} else {
			obj.Set(name, nil)
		}
	}
	return obj
}

func integerBounds(node *schema.Node) (int64, int64) {
	lo := int64(-defaultNumericWindow)
	hi := int64(defaultNumericWindow)
	if node.Minimum != nil {
		lo = int64(*node.Minimum)
		if float64(lo) < *node.Minimum {
			lo++ // fractional minimum rounds up for integers
		}
		if node.ExclusiveMinimum && float64(lo) == *node.Minimum {
			lo++
		}
		if node.Maximum == nil {
			hi = lo + 2*defaultNumericWindow
		}
	}
	if node.Maximum != nil {
		hi = int64(*node.Maximum)
		if float64(hi) > *node.Maximum {
			hi-- // fractional maximum rounds down for integers
		}
		if node.ExclusiveMaximum && float64(hi) == *node.Maximum {
			hi--
		}
		if node.Minimum == nil {
			lo = hi - 2*defaultNumericWindow
		}
	}
	if hi < lo {
		hi = lo
	}
	return lo, hi
}

func ceilDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a > 0) == (b > 0) {
		q++
	}
	return q
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a > 0) != (b > 0) {
		q--
	}
	return q
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
