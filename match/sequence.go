package match

import (
	"martianoff/matcha/collection"
)

// Sequence and mapping matchers.

// Entry is one key/value pair of a mapping pattern, preserving declaration
// order.
type Entry struct {
	Key   any
	Value any
}

type sequenceOfPattern struct {
	item      Pattern
	container Pattern
	length    Pattern
}

// SequenceOf matches sequences whose every element matches the item pattern,
// producing the slice of element results. Options constrain the length and
// optionally coerce the collected result into a container.
func SequenceOf(item any, opts ...PatternOption) Pattern {
	o := applyOptions(opts)
	atLeast, atMost := o.bounds()
	return sequenceOfPattern{
		item:      Of(item),
		container: o.container,
		length:    lengthPattern{atLeast: atLeast, atMost: atMost},
	}
}

// ListOf is SequenceOf without a container coercion, kept as a named alias
// for symmetry with DictOf.
func ListOf(item any) Pattern { return SequenceOf(item) }

func (p sequenceOfPattern) Match(value any, ctx Context) any {
	items, ok := iterate(value)
	if !ok {
		return NoMatch
	}
	result := make([]any, 0, len(items))
	for _, item := range items {
		res := p.item.Match(item, ctx)
		if res == NoMatch {
			return NoMatch
		}
		result = append(result, res)
	}
	var collected any = result
	if p.container != nil {
		collected = p.container.Match(result, ctx)
		if collected == NoMatch {
			return NoMatch
		}
	}
	return p.length.Match(collected, ctx)
}

type tupleOfPattern struct {
	fields []Pattern
}

// TupleOf matches fixed-arity sequences element-wise against the given
// patterns, producing the slice of element results.
func TupleOf(fields ...any) Pattern {
	return tupleOfPattern{fields: liftAll(fields)}
}

func (p tupleOfPattern) Match(value any, ctx Context) any {
	items, ok := iterate(value)
	if !ok || len(items) != len(p.fields) {
		return NoMatch
	}
	result := make([]any, len(items))
	for i, field := range p.fields {
		res := field.Match(items[i], ctx)
		if res == NoMatch {
			return NoMatch
		}
		result[i] = res
	}
	return result
}

type mappingOfPattern struct {
	key       Pattern
	value     Pattern
	container Pattern
}

// MappingOf matches mappings whose every key matches the key pattern and
// every value the value pattern. The result is a map of the (possibly
// transformed) pairs; WithContainer coerces the collected []Entry instead.
func MappingOf(key, value any, opts ...PatternOption) Pattern {
	o := applyOptions(opts)
	return mappingOfPattern{key: Of(key), value: Of(value), container: o.container}
}

// DictOf is MappingOf without a container coercion.
func DictOf(key, value any) Pattern { return MappingOf(key, value) }

// FrozenDictOf matches mappings like MappingOf and collects the result into
// an order-preserving immutable dictionary.
func FrozenDictOf(key, value any) Pattern {
	return MappingOf(key, value, WithContainer(Apply(entriesToFrozenDict)))
}

func (p mappingOfPattern) Match(value any, ctx Context) any {
	keys, values, ok := mappingItems(value)
	if !ok {
		return NoMatch
	}
	entries := make([]Entry, len(keys))
	for i := range keys {
		k := p.key.Match(keys[i], ctx)
		if k == NoMatch {
			return NoMatch
		}
		v := p.value.Match(values[i], ctx)
		if v == NoMatch {
			return NoMatch
		}
		entries[i] = Entry{Key: k, Value: v}
	}
	if p.container != nil {
		return p.container.Match(entries, ctx)
	}
	result := make(map[any]any, len(entries))
	for _, e := range entries {
		result[e.Key] = e.Value
	}
	return result
}

func entriesToFrozenDict(value any) any {
	entries := value.([]Entry)
	pairs := make([]collection.Pair[any, any], len(entries))
	for i, e := range entries {
		pairs[i] = collection.Pair[any, any]{Key: e.Key, Value: e.Value}
	}
	return collection.NewFrozenDict(pairs...)
}

// windowSlot pairs each sequence sub-pattern with the pattern immediately
// following it, the lookahead that terminates a greedy span. The last slot's
// lookahead never matches, so a trailing span runs to the end of the input.
type windowSlot struct {
	current   Pattern
	following Pattern
}

type patternSequencePattern struct {
	window []windowSlot
}

// PatternSequence matches a sequence element-wise against a row of
// sub-patterns. A span sub-pattern (Wildcard, SequenceOf or a nested
// PatternSequence, optionally wrapped in Capture) consumes elements greedily
// with one-step lookahead and no backtracking: it takes every element up to
// the first one accepted by the next sub-pattern. The result is the
// concatenation of the per-element and per-span results.
func PatternSequence(patterns ...any) Pattern {
	currents := make([]Pattern, len(patterns))
	for i, obj := range patterns {
		if _, isWild := obj.(wildcardType); isWild {
			currents[i] = SequenceOf(Any())
		} else {
			currents[i] = Of(obj)
		}
	}
	window := make([]windowSlot, len(currents))
	for i, current := range currents {
		var following Pattern = Never()
		if i+1 < len(currents) {
			following = currents[i+1]
		}
		window[i] = windowSlot{current: current, following: following}
	}
	return patternSequencePattern{window: window}
}

func (p patternSequencePattern) Match(value any, ctx Context) any {
	items, ok := iterate(value)
	if !ok {
		return NoMatch
	}
	it := collection.NewRewindableIterator(items)
	result := []any{}

	if len(p.window) == 0 {
		if _, more := it.Next(); more {
			return NoMatch
		}
		return result
	}

	for _, slot := range p.window {
		original := slot.current
		current := unwrapCapture(original)
		following := unwrapCapture(slot.following)

		if isSpan(current) {
			following = spanLookahead(following)

			span := []any{}
			for {
				it.Checkpoint()
				item, more := it.Next()
				if !more {
					break
				}
				if following.Match(item, ctx) == NoMatch {
					span = append(span, item)
				} else {
					it.Rewind()
					break
				}
			}

			res := original.Match(span, ctx)
			if res == NoMatch {
				return NoMatch
			}
			elems, ok := iterate(res)
			if !ok {
				panic(Usagef("a sequence span pattern produced a non-sequence result %T", res))
			}
			result = append(result, elems...)
		} else {
			item, more := it.Next()
			if !more {
				return NoMatch
			}
			res := original.Match(item, ctx)
			if res == NoMatch {
				return NoMatch
			}
			result = append(result, res)
		}
	}

	return result
}

func unwrapCapture(p Pattern) Pattern {
	if cp, ok := p.(capturePattern); ok {
		return cp.pattern
	}
	return p
}

func isSpan(p Pattern) bool {
	switch p.(type) {
	case sequenceOfPattern, patternSequencePattern:
		return true
	}
	return false
}

// spanLookahead reduces the pattern following a span to the single-element
// pattern probed against the next input element.
func spanLookahead(following Pattern) Pattern {
	switch f := following.(type) {
	case sequenceOfPattern:
		return f.item
	case patternSequencePattern:
		if len(f.window) > 0 {
			return f.window[0].current
		}
		return Never()
	}
	return following
}

type patternMappingPattern struct {
	keys   Pattern
	values Pattern
}

// PatternMapping matches a mapping by matching its ordered keys and values
// as two parallel pattern sequences, producing a map of the results. Lifted
// Go maps are ordered by their formatted keys, so entry order is
// deterministic on both sides.
func PatternMapping(entries ...Entry) Pattern {
	keys := make([]any, len(entries))
	values := make([]any, len(entries))
	for i, e := range entries {
		keys[i] = e.Key
		values[i] = e.Value
	}
	return patternMappingPattern{
		keys:   PatternSequence(keys...),
		values: PatternSequence(values...),
	}
}

func (p patternMappingPattern) Match(value any, ctx Context) any {
	keys, values, ok := mappingItems(value)
	if !ok {
		return NoMatch
	}
	matchedKeys := p.keys.Match(keys, ctx)
	if matchedKeys == NoMatch {
		return NoMatch
	}
	matchedValues := p.values.Match(values, ctx)
	if matchedValues == NoMatch {
		return NoMatch
	}
	ks := matchedKeys.([]any)
	vs := matchedValues.([]any)
	result := make(map[any]any, len(ks))
	for i := range ks {
		if i >= len(vs) {
			break
		}
		result[ks[i]] = vs[i]
	}
	return result
}
