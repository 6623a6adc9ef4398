package catalog

// builtinOperators lists every shipped operator. The order here is the
// registration order, which fixes listing order and the uniform draw
// semantics for a given seed.
func builtinOperators() []*Operator {
	return []*Operator{
		integerBoundary(),
		integerOverflow(),
		numericNudge(),
		numberExtreme(),
		stringLengthExtreme(),
		stringInjection(),
		stringCaseFlip(),
		unicodeEdge(),
		typeConfusion(),
		nullInjection(),
		booleanFlip(),
		keyOmission(),
		keyDuplicationCaseVariant(),
		arrayLengthExtreme(),
	}
}
