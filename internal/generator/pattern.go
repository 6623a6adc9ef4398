package generator

import (
	"math/rand"
	"regexp/syntax"
	"strings"
)

// maxUnboundedRepeat caps how many times *, + and open-ended {n,} repeat.
const maxUnboundedRepeat = 8

// synthesizePattern builds a string matching the pattern. The supported
// subset covers literals, character classes, any-char, bounded and unbounded
// repetition, alternation and grouping; anchors and word boundaries emit
// nothing. It returns false for anything else, and callers fall back to a
// plain length-bounded string.
func synthesizePattern(pattern string, rng *rand.Rand) (string, bool) {
	re, err := syntax.Parse(pattern, syntax.Perl)
	if err != nil {
		return "", false
	}
	var b strings.Builder
	if !emitRegexp(&b, re.Simplify(), rng) {
		return "", false
	}
	return b.String(), true
}

func emitRegexp(b *strings.Builder, re *syntax.Regexp, rng *rand.Rand) bool {
	switch re.Op {
	case syntax.OpEmptyMatch, syntax.OpBeginLine, syntax.OpEndLine,
		syntax.OpBeginText, syntax.OpEndText,
		syntax.OpWordBoundary, syntax.OpNoWordBoundary:
		return true
	case syntax.OpLiteral:
		b.WriteString(string(re.Rune))
		return true
	case syntax.OpCharClass:
		r, ok := pickClassRune(re.Rune, rng)
		if !ok {
			return false
		}
		b.WriteRune(r)
		return true
	case syntax.OpAnyChar, syntax.OpAnyCharNotNL:
		b.WriteByte(stringAlphabet[rng.Intn(len(stringAlphabet))])
		return true
	case syntax.OpCapture:
		return emitRegexp(b, re.Sub[0], rng)
	case syntax.OpConcat:
		for _, sub := range re.Sub {
			if !emitRegexp(b, sub, rng) {
				return false
			}
		}
		return true
	case syntax.OpAlternate:
		return emitRegexp(b, re.Sub[rng.Intn(len(re.Sub))], rng)
	case syntax.OpStar:
		return emitRepeat(b, re.Sub[0], rng, 0, maxUnboundedRepeat)
	case syntax.OpPlus:
		return emitRepeat(b, re.Sub[0], rng, 1, maxUnboundedRepeat)
	case syntax.OpQuest:
		return emitRepeat(b, re.Sub[0], rng, 0, 1)
	case syntax.OpRepeat:
		max := re.Max
		if max < 0 || max > re.Min+maxUnboundedRepeat {
			max = re.Min + maxUnboundedRepeat
		}
		return emitRepeat(b, re.Sub[0], rng, re.Min, max)
	default:
		return false
	}
}

func emitRepeat(b *strings.Builder, sub *syntax.Regexp, rng *rand.Rand, min, max int) bool {
	count := min
	if max > min {
		count = min + rng.Intn(max-min+1)
	}
	for i := 0; i < count; i++ {
		if !emitRegexp(b, sub, rng) {
			return false
		}
	}
	return true
}

// pickClassRune draws a rune from the class ranges, preferring printable
// ASCII when the class contains any. Ranges come in pairs as stored by
// regexp/syntax.
func pickClassRune(ranges []rune, rng *rand.Rand) (rune, bool) {
	if len(ranges) < 2 {
		return 0, false
	}
	type span struct{ lo, hi rune }
	var pool []span
	for i := 0; i+1 < len(ranges); i += 2 {
		lo, hi := ranges[i], ranges[i+1]
		if lo < 0x20 {
			lo = 0x20
		}
		if hi > 0x7e {
			hi = 0x7e
		}
		if lo <= hi {
			pool = append(pool, span{lo, hi})
		}
	}
	if len(pool) == 0 {
		for i := 0; i+1 < len(ranges); i += 2 {
			pool = append(pool, span{ranges[i], ranges[i+1]})
		}
	}
	var total int64
	for _, s := range pool {
		total += int64(s.hi-s.lo) + 1
	}
	idx := rng.Int63n(total)
	for _, s := range pool {
		width := int64(s.hi-s.lo) + 1
		if idx < width {
			return s.lo + rune(idx), true
		}
		idx -= width
	}
	return pool[0].lo, true
}
