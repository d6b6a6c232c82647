package match

import (
	"reflect"
	"sync"

	"martianoff/matcha/collection"
)

// Type checking, coercion and the deferred type-name registry.

// Coercible is the declared capability of converting arbitrary input into an
// instance of the implementing type. Coerce must report "cannot coerce" with
// a *CoercionError; any other error kind is a defect and propagates as a
// panic out of the coercing pattern.
type Coercible interface {
	Coerce(value any, params TypeParams) (any, error)
}

// TypeParams carries the bound type parameters of a generic coercion, keyed
// by parameter name. The zero value means no parameters.
type TypeParams struct {
	params *collection.FrozenDict[string, Hint]
}

// Names returns the parameter names in declaration order.
func (tp TypeParams) Names() []string {
	if tp.params == nil {
		return nil
	}
	return tp.params.Keys()
}

// Hint returns the hint bound to the named parameter.
func (tp TypeParams) Hint(name string) (Hint, bool) {
	if tp.params == nil {
		return nil, false
	}
	return tp.params.Get(name)
}

// Type returns the concrete type bound to the named parameter, when the
// parameter was declared with a plain type hint.
func (tp TypeParams) Type(name string) (reflect.Type, bool) {
	h, ok := tp.Hint(name)
	if !ok {
		return nil, false
	}
	th, ok := h.(typeHint)
	if !ok {
		return nil, false
	}
	return th.typ, true
}

type typeOfPattern struct {
	typ reflect.Type
}

// TypeOf matches values whose dynamic type is exactly the given type.
func TypeOf(t reflect.Type) Pattern { return typeOfPattern{typ: t} }

func (p typeOfPattern) Match(value any, _ Context) any {
	if value != nil && reflect.TypeOf(value) == p.typ {
		return value
	}
	return NoMatch
}

type instanceOfPattern struct {
	typ reflect.Type
}

// InstanceOf matches values assignable to the given type, which for an
// interface type means implementing it.
func InstanceOf(t reflect.Type) Pattern { return instanceOfPattern{typ: t} }

// Instance is generic sugar for InstanceOf.
func Instance[T any]() Pattern { return InstanceOf(reflect.TypeFor[T]()) }

func (p instanceOfPattern) Match(value any, _ Context) any {
	if value != nil && isInstance(reflect.TypeOf(value), p.typ) {
		return value
	}
	return NoMatch
}

type subclassOfPattern struct {
	typ reflect.Type
}

// SubclassOf matches type descriptors (reflect.Type values, not instances)
// that are assignable to the given type.
func SubclassOf(t reflect.Type) Pattern { return subclassOfPattern{typ: t} }

func (p subclassOfPattern) Match(value any, _ Context) any {
	vt, ok := value.(reflect.Type)
	if ok && isInstance(vt, p.typ) {
		return value
	}
	return NoMatch
}

// TypeParam declares one bound type parameter of a generic type: the
// parameter name, the attribute of the value it is observable through, its
// bound hint and variance. Only covariant parameters are supported.
type TypeParam struct {
	Name      string
	Attr      string
	Hint      Hint
	Covariant bool
}

type genericInstanceOfPattern struct {
	origin reflect.Type
	fields *collection.FrozenDict[string, Pattern]
}

// GenericInstanceOf matches instances of a generic type: the value must be
// an instance of origin and each bound type parameter is validated against
// the corresponding attribute with a per-parameter sub-pattern.
func GenericInstanceOf(origin reflect.Type, params ...TypeParam) Pattern {
	p, err := newGenericInstanceOf(origin, params)
	if err != nil {
		panic(err)
	}
	return p
}

func newGenericInstanceOf(origin reflect.Type, params []TypeParam) (Pattern, error) {
	pairs := make([]collection.Pair[string, Pattern], 0, len(params))
	for _, tp := range params {
		if !tp.Covariant {
			return nil, Usagef("type parameter %q is not covariant, cannot match it structurally", tp.Name)
		}
		var inner Pattern
		if th, ok := tp.Hint.(typeHint); ok {
			// The bound attribute may expose either an instance of the
			// parameter or its type descriptor.
			inner = AnyOf(InstanceOf(th.typ), SubclassOf(th.typ))
		} else {
			var err error
			inner, err = FromTypehint(tp.Hint, false)
			if err != nil {
				return nil, err
			}
		}
		attr := tp.Attr
		if attr == "" {
			attr = tp.Name
		}
		pairs = append(pairs, collection.Pair[string, Pattern]{Key: attr, Value: inner})
	}
	return genericInstanceOfPattern{origin: origin, fields: collection.NewFrozenDict(pairs...)}, nil
}

func (p genericInstanceOfPattern) Match(value any, ctx Context) any {
	if value == nil || !isInstance(reflect.TypeOf(value), p.origin) {
		return NoMatch
	}
	failed := false
	p.fields.Each(func(attr string, inner Pattern) {
		if failed {
			return
		}
		v, ok := getAttr(value, attr)
		if !ok || inner.Match(v, ctx) == NoMatch {
			failed = true
		}
	})
	if failed {
		return NoMatch
	}
	return value
}

type lazyInstanceOfPattern struct {
	names []string
}

// LazyInstanceOf matches instances of types referred to by registered name,
// resolving the names at match time. An unregistered name simply never
// matches.
func LazyInstanceOf(names ...string) Pattern {
	if len(names) == 0 {
		panic(Usagef("LazyInstanceOf requires at least one type name"))
	}
	return lazyInstanceOfPattern{names: names}
}

func (p lazyInstanceOfPattern) Match(value any, _ Context) any {
	if value == nil {
		return NoMatch
	}
	vt := reflect.TypeOf(value)
	for _, name := range p.names {
		if t, ok := LookupType(name); ok && isInstance(vt, t) {
			return value
		}
	}
	return NoMatch
}

type coercedToPattern struct {
	target reflect.Type
}

// CoercedTo forces the value into the target type. A Coercible target is
// asked to coerce the value (a CoercionError becomes NoMatch); any other
// target falls back to Go assignability and conversion, constructing slice
// and map targets element-wise from collected match results.
func CoercedTo(target reflect.Type) Pattern { return coercedToPattern{target: target} }

func (p coercedToPattern) Match(value any, _ Context) any {
	if c, ok := coercerFor(p.target); ok {
		out, err := c.Coerce(value, TypeParams{})
		if err != nil {
			if IsCoercionError(err) {
				return NoMatch
			}
			panic(err)
		}
		if out == nil || !isInstance(reflect.TypeOf(out), p.target) {
			return NoMatch
		}
		return out
	}
	rv := reflect.ValueOf(value)
	if !rv.IsValid() {
		return NoMatch
	}
	if rv.Type().AssignableTo(p.target) {
		return value
	}
	if rv.Type().ConvertibleTo(p.target) {
		return rv.Convert(p.target).Interface()
	}
	return buildContainer(p.target, value)
}

// buildContainer constructs a typed slice or map from a collected match
// result ([]any elements or []Entry pairs), converting elements where the
// target's element type requires it. An inconvertible element fails the
// whole construction.
func buildContainer(target reflect.Type, value any) any {
	switch target.Kind() {
	case reflect.Slice:
		items, ok := iterate(value)
		if !ok {
			return NoMatch
		}
		out := reflect.MakeSlice(target, 0, len(items))
		for _, item := range items {
			ev, ok := conformTo(target.Elem(), item)
			if !ok {
				return NoMatch
			}
			out = reflect.Append(out, ev)
		}
		return out.Interface()
	case reflect.Map:
		keys, values, ok := containerPairs(value)
		if !ok {
			return NoMatch
		}
		out := reflect.MakeMapWithSize(target, len(keys))
		for i := range keys {
			kv, ok := conformTo(target.Key(), keys[i])
			if !ok {
				return NoMatch
			}
			vv, ok := conformTo(target.Elem(), values[i])
			if !ok {
				return NoMatch
			}
			out.SetMapIndex(kv, vv)
		}
		return out.Interface()
	}
	return NoMatch
}

func containerPairs(value any) (keys, values []any, ok bool) {
	if entries, isEntries := value.([]Entry); isEntries {
		keys = make([]any, len(entries))
		values = make([]any, len(entries))
		for i, e := range entries {
			keys[i] = e.Key
			values[i] = e.Value
		}
		return keys, values, true
	}
	return mappingItems(value)
}

// conformTo fits an element into the given type, preferring assignment over
// conversion and widening nil to the zero value of nilable kinds.
func conformTo(t reflect.Type, value any) (reflect.Value, bool) {
	if value == nil {
		switch t.Kind() {
		case reflect.Interface, reflect.Pointer, reflect.Slice, reflect.Map, reflect.Chan, reflect.Func:
			return reflect.Zero(t), true
		}
		return reflect.Value{}, false
	}
	rv := reflect.ValueOf(value)
	if rv.Type().AssignableTo(t) {
		return rv, true
	}
	if rv.Type().ConvertibleTo(t) {
		return rv.Convert(t), true
	}
	return reflect.Value{}, false
}

type genericCoercedToPattern struct {
	origin  reflect.Type
	params  TypeParams
	checker Pattern
}

// GenericCoercedTo forces the value into a generic Coercible type,
// forwarding the bound type parameters to the coercion and re-validating
// the result with GenericInstanceOf.
func GenericCoercedTo(origin reflect.Type, params ...TypeParam) Pattern {
	p, err := newGenericCoercedTo(origin, params)
	if err != nil {
		panic(err)
	}
	return p
}

func newGenericCoercedTo(origin reflect.Type, params []TypeParam) (Pattern, error) {
	if _, ok := coercerFor(origin); !ok {
		return nil, Usagef("type %s does not declare a coercion capability", origin)
	}
	checker, err := newGenericInstanceOf(origin, params)
	if err != nil {
		return nil, err
	}
	pairs := make([]collection.Pair[string, Hint], len(params))
	for i, tp := range params {
		pairs[i] = collection.Pair[string, Hint]{Key: tp.Name, Value: tp.Hint}
	}
	return genericCoercedToPattern{
		origin:  origin,
		params:  TypeParams{params: collection.NewFrozenDict(pairs...)},
		checker: checker,
	}, nil
}

func (p genericCoercedToPattern) Match(value any, ctx Context) any {
	c, _ := coercerFor(p.origin)
	out, err := c.Coerce(value, p.params)
	if err != nil {
		if IsCoercionError(err) {
			return NoMatch
		}
		panic(err)
	}
	if p.checker.Match(out, ctx) == NoMatch {
		return NoMatch
	}
	return out
}

// isInstance reports whether a value of type vt counts as an instance of t.
func isInstance(vt, t reflect.Type) bool {
	if t.Kind() == reflect.Interface {
		return vt.Implements(t)
	}
	return vt.AssignableTo(t)
}

var coercibleType = reflect.TypeFor[Coercible]()

// coercerFor obtains the coercion capability of a type, trying the type
// itself and its pointer form.
func coercerFor(t reflect.Type) (Coercible, bool) {
	if t.Kind() != reflect.Interface && t.Implements(coercibleType) {
		return reflect.Zero(t).Interface().(Coercible), true
	}
	if reflect.PointerTo(t).Implements(coercibleType) {
		return reflect.New(t).Interface().(Coercible), true
	}
	return nil, false
}

// Registry of textual type names, the resolution surface for deferred
// references.
var typeRegistry = struct {
	sync.RWMutex
	types map[string]reflect.Type
}{types: map[string]reflect.Type{}}

// RegisterType binds a textual name to a concrete type for later resolution
// by LazyInstanceOf and deferred hints.
func RegisterType(name string, t reflect.Type) {
	typeRegistry.Lock()
	defer typeRegistry.Unlock()
	typeRegistry.types[name] = t
}

// LookupType resolves a registered type name.
func LookupType(name string) (reflect.Type, bool) {
	typeRegistry.RLock()
	defer typeRegistry.RUnlock()
	t, ok := typeRegistry.types[name]
	return t, ok
}
