package match

import (
	"math"
	"strings"
)

// Logical combinators and range/membership checks.

type notPattern struct {
	pattern Pattern
}

// Not matches values the inner pattern rejects, returning them unchanged.
func Not(p any) Pattern { return notPattern{pattern: Of(p)} }

func (p notPattern) Match(value any, ctx Context) any {
	if p.pattern.Match(value, ctx) == NoMatch {
		return value
	}
	return NoMatch
}

type anyOfPattern struct {
	patterns []Pattern
}

// AnyOf matches if any of the given patterns match, returning the first
// succeeding branch's result, left to right.
func AnyOf(patterns ...any) Pattern {
	return anyOfPattern{patterns: liftAll(patterns)}
}

func (p anyOfPattern) Match(value any, ctx Context) any {
	for _, pat := range p.patterns {
		if result := pat.Match(value, ctx); result != NoMatch {
			return result
		}
	}
	return NoMatch
}

type allOfPattern struct {
	patterns []Pattern
}

// AllOf matches if all of the given patterns match. The value is threaded
// through each pattern in order, so transformations propagate to the next
// stage; the first failure aborts the chain.
func AllOf(patterns ...any) Pattern {
	return allOfPattern{patterns: liftAll(patterns)}
}

func (p allOfPattern) Match(value any, ctx Context) any {
	for _, pat := range p.patterns {
		value = pat.Match(value, ctx)
		if value == NoMatch {
			return NoMatch
		}
	}
	return value
}

// NoneOf matches values that none of the given patterns match.
func NoneOf(patterns ...any) Pattern {
	return Not(AnyOf(patterns...))
}

type optionPattern struct {
	pattern Pattern
	def     any
}

// Option matches nil, producing the configured default (itself nil unless
// WithDefault is given), and delegates every other value to the inner
// pattern.
func Option(p any, opts ...PatternOption) Pattern {
	o := applyOptions(opts)
	return optionPattern{pattern: Of(p), def: o.def}
}

func (p optionPattern) Match(value any, ctx Context) any {
	if value == nil {
		return p.def
	}
	return p.pattern.Match(value, ctx)
}

type betweenPattern struct {
	lower, upper float64
}

// Between matches numeric values within the inclusive range. Use math.Inf
// for an unbounded side, or BetweenAtLeast/BetweenAtMost.
func Between(lower, upper float64) Pattern {
	return betweenPattern{lower: lower, upper: upper}
}

// BetweenAtLeast matches numeric values >= lower.
func BetweenAtLeast(lower float64) Pattern { return Between(lower, math.Inf(1)) }

// BetweenAtMost matches numeric values <= upper.
func BetweenAtMost(upper float64) Pattern { return Between(math.Inf(-1), upper) }

func (p betweenPattern) Match(value any, _ Context) any {
	f, ok := toFloat(value)
	if !ok || f < p.lower || f > p.upper {
		return NoMatch
	}
	return value
}

type lengthPattern struct {
	atLeast, atMost *int
}

// Length matches containers whose size satisfies the configured bounds,
// e.g. Length(WithExactly(3)) or Length(WithAtLeast(1), WithAtMost(5)).
func Length(opts ...PatternOption) Pattern {
	o := applyOptions(opts)
	atLeast, atMost := o.bounds()
	return lengthPattern{atLeast: atLeast, atMost: atMost}
}

func (p lengthPattern) Match(value any, _ Context) any {
	n, ok := valueLen(value)
	if !ok {
		return NoMatch
	}
	if p.atLeast != nil && n < *p.atLeast {
		return NoMatch
	}
	if p.atMost != nil && n > *p.atMost {
		return NoMatch
	}
	return value
}

type containsPattern struct {
	needle any
}

// Contains matches containers holding the needle: an element of a sequence,
// a key of a mapping or a substring of a string.
func Contains(needle any) Pattern { return containsPattern{needle: needle} }

func (p containsPattern) Match(value any, _ Context) any {
	if elems, ok := iterate(value); ok {
		for _, e := range elems {
			if EqualValues(e, p.needle) {
				return value
			}
		}
		return NoMatch
	}
	if keys, _, ok := mappingItems(value); ok {
		for _, k := range keys {
			if EqualValues(k, p.needle) {
				return value
			}
		}
		return NoMatch
	}
	if s, ok := value.(string); ok {
		if sub, ok := p.needle.(string); ok && strings.Contains(s, sub) {
			return value
		}
	}
	return NoMatch
}

type isInPattern struct {
	haystack []any
}

// IsIn matches values equal to one of the given alternatives.
func IsIn(values ...any) Pattern { return isInPattern{haystack: values} }

func (p isInPattern) Match(value any, _ Context) any {
	for _, candidate := range p.haystack {
		if EqualValues(value, candidate) {
			return value
		}
	}
	return NoMatch
}

func liftAll(objs []any) []Pattern {
	patterns := make([]Pattern, len(objs))
	for i, o := range objs {
		patterns[i] = Of(o)
	}
	return patterns
}
