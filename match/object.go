package match

import (
	"reflect"
	"sort"

	"martianoff/matcha/collection"
)

// Structural matching over objects: attribute checks and identity-preserving
// rewrites of deconstructible values.

// Deconstructible exposes the ordered attribute names positional object
// patterns bind against.
type Deconstructible interface {
	MatchArgs() []string
}

// Reconstructible rebuilds a value with some of its fields replaced. The
// given fields are overrides; unmentioned fields keep their current values.
type Reconstructible interface {
	Reconstruct(fields map[string]any) (any, error)
}

// TreeNode exposes the named child arguments of a tree-shaped value for
// per-argument rewriting and recursive search.
type TreeNode interface {
	ArgNames() []string
	Args() []any
	Children(filter func(any) bool) []any
}

// AttrGetter lets a value answer attribute lookups directly, taking
// precedence over reflective field and method access.
type AttrGetter interface {
	GetAttr(name string) (any, bool)
}

// getAttr resolves a named attribute of an arbitrary value: an AttrGetter
// answers first, then an exported struct field, then a niladic single-result
// method.
func getAttr(value any, name string) (any, bool) {
	if g, ok := value.(AttrGetter); ok {
		if v, ok := g.GetAttr(name); ok {
			return v, true
		}
	}
	rv := reflect.ValueOf(value)
	if !rv.IsValid() {
		return nil, false
	}
	sv := rv
	for sv.Kind() == reflect.Pointer {
		if sv.IsNil() {
			return nil, false
		}
		sv = sv.Elem()
	}
	if sv.Kind() == reflect.Struct {
		if f := sv.FieldByName(name); f.IsValid() && f.CanInterface() {
			return f.Interface(), true
		}
	}
	if m := rv.MethodByName(name); m.IsValid() {
		mt := m.Type()
		if mt.NumIn() == 0 && mt.NumOut() == 1 {
			return m.Call(nil)[0].Interface(), true
		}
	}
	return nil, false
}

// matchArgsOf resolves the positional attribute order of a value: a
// Deconstructible declares it, a TreeNode's argument names serve next, and a
// plain struct falls back to its exported fields in declaration order.
func matchArgsOf(value any) []string {
	if d, ok := value.(Deconstructible); ok {
		return d.MatchArgs()
	}
	if n, ok := value.(TreeNode); ok {
		return n.ArgNames()
	}
	rv := reflect.ValueOf(value)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}
	t := rv.Type()
	names := make([]string, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		if f := t.Field(i); f.IsExported() {
			names = append(names, f.Name)
		}
	}
	return names
}

type attrsPattern struct {
	fields *collection.FrozenDict[string, Pattern]
}

// Attrs matches values that have every named attribute matching its pattern.
// The value is returned unchanged; use ObjectOf for rewriting matches.
func Attrs(fields map[string]any) Pattern {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	pairs := make([]collection.Pair[string, Pattern], len(names))
	for i, name := range names {
		pairs[i] = collection.Pair[string, Pattern]{Key: name, Value: Of(fields[name])}
	}
	return attrsPattern{fields: collection.NewFrozenDict(pairs...)}
}

func (p attrsPattern) Match(value any, ctx Context) any {
	failed := false
	p.fields.Each(func(name string, inner Pattern) {
		if failed {
			return
		}
		v, ok := getAttr(value, name)
		if !ok || inner.Match(v, ctx) == NoMatch {
			failed = true
		}
	})
	if failed {
		return NoMatch
	}
	return value
}

type objectPattern struct {
	typ    Pattern
	args   []Pattern
	kwargs *collection.FrozenDict[string, Pattern]
}

// ObjectOf matches deconstructible values: the value must match the type
// pattern and the positional patterns are bound to attributes through the
// value's positional attribute order. Sub-pattern transformations are
// collected and, when any attribute changed by value, the object is rebuilt
// through Reconstruct; an unchanged match returns the original reference.
//
// With no argument patterns this degenerates to the plain type pattern.
func ObjectOf(typ any, args ...any) Pattern {
	return ObjectOfKw(typ, args, nil)
}

// ObjectOfKw is ObjectOf with additional by-name attribute patterns. A name
// bound both positionally and by keyword uses the positional pattern.
func ObjectOfKw(typ any, args []any, kwargs map[string]any) Pattern {
	if len(args) == 0 && len(kwargs) == 0 {
		return Of(typ)
	}
	names := make([]string, 0, len(kwargs))
	for name := range kwargs {
		names = append(names, name)
	}
	sort.Strings(names)
	pairs := make([]collection.Pair[string, Pattern], len(names))
	for i, name := range names {
		pairs[i] = collection.Pair[string, Pattern]{Key: name, Value: Of(kwargs[name])}
	}
	return objectPattern{
		typ:    Of(typ),
		args:   liftAll(args),
		kwargs: collection.NewFrozenDict(pairs...),
	}
}

func (p objectPattern) Match(value any, ctx Context) any {
	if p.typ.Match(value, ctx) == NoMatch {
		return NoMatch
	}

	// Keyword patterns first, positional bindings override them in place.
	// Extra positional patterns beyond the value's attribute order are
	// silently dropped.
	names := make([]string, 0, p.kwargs.Len()+len(p.args))
	patterns := make(map[string]Pattern, p.kwargs.Len()+len(p.args))
	p.kwargs.Each(func(name string, inner Pattern) {
		names = append(names, name)
		patterns[name] = inner
	})
	matchArgs := matchArgsOf(value)
	for i, inner := range p.args {
		if i >= len(matchArgs) {
			break
		}
		name := matchArgs[i]
		if _, seen := patterns[name]; !seen {
			names = append(names, name)
		}
		patterns[name] = inner
	}

	fields := make(map[string]any, len(names))
	changed := false
	for _, name := range names {
		attr, ok := getAttr(value, name)
		if !ok {
			return NoMatch
		}
		result := patterns[name].Match(attr, ctx)
		if result == NoMatch {
			return NoMatch
		}
		if !EqualValues(result, attr) {
			changed = true
		}
		fields[name] = result
	}

	if !changed {
		return value
	}
	return reconstruct(value, fields)
}

type nodePattern struct {
	typ     Pattern
	eachArg Pattern
}

// NodeOf matches tree-shaped values: the value must match the type pattern
// and each named argument is offered to the per-argument pattern. A rejected
// argument keeps its original value; any accepted transformation triggers a
// rebuild through Reconstruct.
func NodeOf(typ, eachArg any) Pattern {
	return nodePattern{typ: Of(typ), eachArg: Of(eachArg)}
}

func (p nodePattern) Match(value any, ctx Context) any {
	if p.typ.Match(value, ctx) == NoMatch {
		return NoMatch
	}
	node, ok := value.(TreeNode)
	if !ok {
		return NoMatch
	}

	names := node.ArgNames()
	args := node.Args()
	newargs := make(map[string]any, len(names))
	changed := false
	for i, name := range names {
		if i >= len(args) {
			break
		}
		result := p.eachArg.Match(args[i], ctx)
		if result == NoMatch {
			newargs[name] = args[i]
		} else {
			newargs[name] = result
			changed = true
		}
	}

	if !changed {
		return value
	}
	return reconstruct(value, newargs)
}

// reconstruct rebuilds a value with the given field overrides, through its
// Reconstruct method when it has one and by reflective struct copy
// otherwise. A failing rebuild is a defect of the rewrite, not a non-match.
func reconstruct(value any, fields map[string]any) any {
	if r, ok := value.(Reconstructible); ok {
		out, err := r.Reconstruct(fields)
		if err != nil {
			panic(err)
		}
		return out
	}
	return rebuildStruct(value, fields)
}

// rebuildStruct copies a struct (or pointer to struct) and overwrites the
// named exported fields.
func rebuildStruct(value any, fields map[string]any) any {
	rv := reflect.ValueOf(value)
	isPtr := rv.Kind() == reflect.Pointer
	if isPtr {
		if rv.IsNil() {
			panic(Usagef("cannot rebuild a nil %s", rv.Type()))
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		panic(Usagef("cannot rebuild %T, the value is neither Reconstructible nor a struct", value))
	}

	out := reflect.New(rv.Type())
	out.Elem().Set(rv)
	for name, v := range fields {
		f := out.Elem().FieldByName(name)
		if !f.IsValid() || !f.CanSet() {
			panic(Usagef("cannot rebuild %T, field %q is not settable", value, name))
		}
		if v == nil {
			f.Set(reflect.Zero(f.Type()))
			continue
		}
		nv := reflect.ValueOf(v)
		if !nv.Type().AssignableTo(f.Type()) {
			if !nv.Type().ConvertibleTo(f.Type()) {
				panic(Usagef("cannot rebuild %T, %T is not assignable to field %q", value, v, name))
			}
			nv = nv.Convert(f.Type())
		}
		f.Set(nv)
	}
	if isPtr {
		return out.Interface()
	}
	return out.Elem().Interface()
}
