package catalog

import (
	"encoding/json"
	"math"
	"math/rand"

	"github.com/dbsmedya/gomutate/internal/jsonval"
	"github.com/dbsmedya/gomutate/internal/schema"
)

// integerBoundary probes off-by-one handling at the node's declared bounds:
// one below the minimum, one above the maximum, the exact bounds, and zero.
func integerBoundary() *Operator {
	return &Operator{
		Name:  "IntegerBoundary",
		Class: ClassBoundary,
		Types: []schema.Type{schema.TypeInteger, schema.TypeNumber},
		fn: func(node *schema.Node, current interface{}, rng *rand.Rand) (interface{}, error) {
			var candidates []interface{}
			if node.Minimum != nil {
				candidates = append(candidates,
					numericValue(node, *node.Minimum-1),
					numericValue(node, *node.Minimum))
			}
			if node.Maximum != nil {
				candidates = append(candidates,
					numericValue(node, *node.Maximum+1),
					numericValue(node, *node.Maximum))
			}
			candidates = append(candidates, numericValue(node, 0))
			return pickDifferent(rng, current, candidates)
		},
	}
}

// integerOverflow emits values at and just past the 32-bit and 64-bit signed
// integer boundaries. The two values outside the int64 range are carried as
// json.Number so they reach the output with full precision.
func integerOverflow() *Operator {
	candidates := []interface{}{
		int64(math.MaxInt32), int64(math.MaxInt32) + 1,
		int64(math.MinInt32), int64(math.MinInt32) - 1,
		int64(math.MaxInt64), json.Number("9223372036854775808"),
		int64(math.MinInt64), json.Number("-9223372036854775809"),
	}
	return &Operator{
		Name:  "IntegerOverflow",
		Class: ClassOverflow,
		Types: []schema.Type{schema.TypeInteger},
		fn: func(node *schema.Node, current interface{}, rng *rand.Rand) (interface{}, error) {
			return pickDifferent(rng, current, candidates)
		},
	}
}

// numericNudge applies small arithmetic drifts: add or subtract a small
// delta, scale by a small factor, or zero the value.
func numericNudge() *Operator {
	return &Operator{
		Name:  "NumericNudge",
		Class: ClassPerturbation,
		Types: []schema.Type{schema.TypeInteger, schema.TypeNumber},
		fn: func(node *schema.Node, current interface{}, rng *rand.Rand) (interface{}, error) {
			base, ok := jsonval.AsFloat(current)
			if !ok {
				if node.Minimum != nil {
					base = *node.Minimum
				} else if node.Maximum != nil {
					base = *node.Maximum
				}
			}
			if node.Type == schema.TypeInteger {
				delta := float64(1 + rng.Intn(10))
				factor := float64(2 + rng.Intn(2))
				return pickDifferent(rng, current, []interface{}{
					int64(base + delta),
					int64(base - delta),
					int64(base * factor),
					int64(0),
				})
			}
			delta := 1 + rng.Float64()*9
			factor := 1.1 + rng.Float64()*0.9
			return pickDifferent(rng, current, []interface{}{
				base + delta,
				base - delta,
				base * factor,
				float64(0),
			})
		},
	}
}

// numberExtreme emits the extremes of the double range. JSON text cannot
// carry Inf or NaN, so the largest finite values, the smallest denormal and
// negative zero stand in for them.
func numberExtreme() *Operator {
	candidates := []interface{}{
		math.MaxFloat64,
		-math.MaxFloat64,
		math.SmallestNonzeroFloat64,
		math.Copysign(0, -1),
	}
	return &Operator{
		Name:  "NumberExtreme",
		Class: ClassBoundary,
		Types: []schema.Type{schema.TypeNumber},
		fn: func(node *schema.Node, current interface{}, rng *rand.Rand) (interface{}, error) {
			return pickDifferent(rng, current, candidates)
		},
	}
}

// numericValue renders f in the representation matching the node's type:
// int64 for integer nodes, float64 for number nodes.
func numericValue(node *schema.Node, f float64) interface{} {
	if node.Type == schema.TypeInteger {
		return int64(math.Round(f))
	}
	return f
}
