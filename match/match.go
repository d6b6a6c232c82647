// Package match implements a declarative pattern matching and validation
// engine: a small algebra of composable patterns that inspect, validate,
// coerce and optionally rewrite arbitrary values.
//
// The single primitive every pattern obeys is
//
//	Match(value, ctx) -> result | NoMatch
//
// where a failed match is always reported by the NoMatch sentinel and never
// by an error. Errors are reserved for authoring mistakes: building a
// malformed pattern is reported immediately, not deferred to match time.
package match

import (
	"reflect"
	"sort"
)

// Context is the mutable capture map shared by reference across one
// top-level match. Captures made deep inside a structural match stay visible
// to sibling and ancestor patterns and to builders. Partial captures made
// before a later sub-pattern fails are deliberately not rolled back.
type Context map[string]any

// MatchedValueKey is the reserved context key holding the value currently
// being replaced, bound by Replace before its builder runs.
const MatchedValueKey = "_"

type noMatchType struct{}

func (*noMatchType) String() string { return "NoMatch" }

// NoMatch is the unique sentinel returned by a failed match. Success is
// defined as any result that is not identical to NoMatch, including nil and
// other zero values.
var NoMatch = &noMatchType{}

// Pattern is an immutable, composable rule that inspects, validates or
// transforms a value. Patterns are freely shareable across matches.
type Pattern interface {
	// Match matches value against the pattern, returning the (possibly
	// transformed) value on success and NoMatch on failure.
	Match(value any, ctx Context) any
}

type wildcardType struct{}

// Wildcard marks a zero-or-more span inside a sequence pattern and acts as
// an accept-anything pattern elsewhere.
var Wildcard = wildcardType{}

// Match matches value against p with a fresh context.
func Match(p, value any) any {
	return MatchIn(p, value, Context{})
}

// MatchIn matches value against p using the given context, which may be
// pre-seeded with captures.
func MatchIn(p, value any, ctx Context) any {
	if ctx == nil {
		ctx = Context{}
	}
	return Of(p).Match(value, ctx)
}

// IsMatch reports whether value matches p.
func IsMatch(p, value any) bool {
	return Match(p, value) != NoMatch
}

// Of lifts an arbitrary object into a pattern:
//
//   - a Pattern is returned unchanged
//   - Wildcard becomes the accept-anything pattern
//   - a Hint is compiled with FromTypehint
//   - a reflect.Type becomes InstanceOf
//   - func(any, Context) any becomes Function, func(any) bool becomes Check
//     and func(any) any becomes Apply
//   - a map becomes PatternMapping and a slice or array PatternSequence
//   - anything else becomes EqualTo
func Of(obj any) Pattern {
	switch v := obj.(type) {
	case nil:
		return EqualTo(nil)
	case Pattern:
		return v
	case wildcardType:
		return Any()
	case Hint:
		p, err := FromTypehint(v, true)
		if err != nil {
			panic(err)
		}
		return p
	case reflect.Type:
		return InstanceOf(v)
	case func(any, Context) any:
		return Function(v)
	case func(any) bool:
		return Check(v)
	case func(any) any:
		return Apply(v)
	}
	rv := reflect.ValueOf(obj)
	switch rv.Kind() {
	case reflect.Map:
		return PatternMapping(mapEntries(rv)...)
	case reflect.Slice, reflect.Array:
		items := make([]any, rv.Len())
		for i := range items {
			items[i] = rv.Index(i).Interface()
		}
		return PatternSequence(items...)
	}
	return EqualTo(obj)
}

// mapEntries flattens a Go map into entries ordered by the formatted key, so
// that lifting a map yields a deterministic pattern.
func mapEntries(rv reflect.Value) []Entry {
	keys := rv.MapKeys()
	sort.Slice(keys, func(i, j int) bool {
		return formatKey(keys[i].Interface()) < formatKey(keys[j].Interface())
	})
	entries := make([]Entry, len(keys))
	for i, k := range keys {
		entries[i] = Entry{Key: k.Interface(), Value: rv.MapIndex(k).Interface()}
	}
	return entries
}
