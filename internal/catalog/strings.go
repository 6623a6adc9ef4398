package catalog

import (
	"math/rand"
	"strings"

	"github.com/dbsmedya/gomutate/internal/schema"
)

// extremeStringLength is the rune count used when a node declares no
// maxLength to exceed.
const extremeStringLength = 100000

// stringLengthExtreme produces a string one rune longer than the declared
// maxLength, or an extremely long one when no bound exists.
func stringLengthExtreme() *Operator {
	return &Operator{
		Name:  "StringLengthExtreme",
		Class: ClassResource,
		Types: []schema.Type{schema.TypeString},
		fn: func(node *schema.Node, current interface{}, rng *rand.Rand) (interface{}, error) {
			length := extremeStringLength
			if node.MaxLength != nil {
				length = *node.MaxLength + 1
			}
			return pickDifferent(rng, current, []interface{}{strings.Repeat("A", length)})
		},
	}
}

// stringInjection substitutes a probe drawn uniformly from the embedded
// payload corpus.
func stringInjection() *Operator {
	candidates := make([]interface{}, len(injectionPayloads))
	for i, p := range injectionPayloads {
		candidates[i] = p.Text
	}
	return &Operator{
		Name:  "StringInjection",
		Class: ClassInjection,
		Types: []schema.Type{schema.TypeString},
		fn: func(node *schema.Node, current interface{}, rng *rand.Rand) (interface{}, error) {
			return pickDifferent(rng, current, candidates)
		},
	}
}

// stringCaseFlip perturbs the current string: upper, lower, reversed, or a
// bang-suffixed variant.
func stringCaseFlip() *Operator {
	return &Operator{
		Name:  "StringCaseFlip",
		Class: ClassPerturbation,
		Types: []schema.Type{schema.TypeString},
		fn: func(node *schema.Node, current interface{}, rng *rand.Rand) (interface{}, error) {
			base, ok := current.(string)
			if !ok {
				base = "Sample"
			}
			return pickDifferent(rng, current, []interface{}{
				strings.ToUpper(base),
				strings.ToLower(base),
				reverseString(base),
				base + strings.Repeat("!", 1+rng.Intn(10)),
			})
		},
	}
}

// unicodeEdgeStrings are decoder stress inputs: embedded NUL, combining
// overload, zero-width runes, BOM, bidi override, the fence posts around the
// surrogate range, raw bytes that decode to no valid rune, and literal
// backslash-u text that probes double unescaping. Invalid byte sequences are
// replaced with U+FFFD during serialization, so the emitted document is
// still valid JSON.
var unicodeEdgeStrings = []string{
	"null\x00byte",
	"\x00\x00\x00",
	"é́́́́ combining overload",
	"zero​width‌‍joiners",
	"\uFEFFBOM prefix",
	"‮override bidi",
	"퟿ surrogate fence",
	"￿￾ noncharacters",
	"\U0010ffff max code point",
	"\xed\xa0\x80 encoded surrogate half",
	"\xf0\x9f\x92 truncated sequence",
	`\u0000 literal escape`,
	`\ud800\udc00 literal pair`,
}

// unicodeEdge substitutes one of the decoder stress strings.
func unicodeEdge() *Operator {
	candidates := make([]interface{}, len(unicodeEdgeStrings))
	for i, s := range unicodeEdgeStrings {
		candidates[i] = s
	}
	return &Operator{
		Name:  "UnicodeEdge",
		Class: ClassEncoding,
		Types: []schema.Type{schema.TypeString},
		fn: func(node *schema.Node, current interface{}, rng *rand.Rand) (interface{}, error) {
			return pickDifferent(rng, current, candidates)
		},
	}
}

func reverseString(s string) string {
	runes := []rune(s)
	for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
		runes[i], runes[j] = runes[j], runes[i]
	}
	return string(runes)
}
