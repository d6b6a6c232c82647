package match

import "reflect"

var errorType = reflect.TypeFor[error]()

// Builders are the right hand side of a replacement: lazy recipes that
// construct a value from the captures accumulated in the context.

// Builder constructs a new value from a match context.
type Builder interface {
	Build(ctx Context) any
}

// KeywordCallable is the capability of being invoked with both positional
// and named arguments, used by Call builders to construct keyword-accepting
// targets such as record class descriptors.
type KeywordCallable interface {
	CallKw(args []any, kwargs map[string]any) (any, error)
}

// ToBuilder lifts an arbitrary object into a builder: a Builder is returned
// unchanged, a matching function becomes a Factory and everything else a
// Just.
func ToBuilder(obj any) Builder {
	switch v := obj.(type) {
	case Builder:
		return v
	case func(any, Context) any:
		return Factory(v)
	case func(any) any:
		return Factory(func(value any, _ Context) any { return v(value) })
	}
	return Just(obj)
}

// Variable retrieves a captured value from the context by name.
type Variable struct {
	name string
}

// Var returns a builder producing the capture recorded under name. Building
// with no such capture is a usage error.
func Var(name string) *Variable { return &Variable{name: name} }

func (v *Variable) Build(ctx Context) any {
	value, ok := ctx[v.name]
	if !ok {
		panic(Usagef("no captured value named %q in the context", v.name))
	}
	return value
}

// Attr derives a builder producing the named attribute of this variable's
// value.
func (v *Variable) Attr(name string) *CallBuilder {
	return Call(func(obj any) any {
		value, ok := getAttr(obj, name)
		if !ok {
			panic(Usagef("value %v has no attribute %q", obj, name))
		}
		return value
	}, v)
}

// Item derives a builder producing the element of this variable's value at
// the given key or index.
func (v *Variable) Item(key any) *CallBuilder {
	return Call(func(obj any) any {
		value, ok := itemOf(obj, key)
		if !ok {
			panic(Usagef("value %v has no item %v", obj, key))
		}
		return value
	}, v)
}

type justBuilder struct {
	value any
}

// Just produces exactly the given value. Wrapping a Pattern or a Builder in
// Just is almost always a lifting mistake and is rejected.
func Just(value any) Builder {
	switch value.(type) {
	case Pattern:
		panic(Usagef("cannot use a pattern as a literal builder value"))
	case Builder:
		panic(Usagef("cannot wrap a builder in Just"))
	}
	return justBuilder{value: value}
}

func (b justBuilder) Build(Context) any { return b.value }

type factoryBuilder struct {
	fn func(any, Context) any
}

// Factory produces a value by calling fn with the value currently being
// replaced and the context.
func Factory(fn func(any, Context) any) Builder {
	if fn == nil {
		panic(Usagef("Factory requires a function"))
	}
	return factoryBuilder{fn: fn}
}

func (b factoryBuilder) Build(ctx Context) any {
	return b.fn(ctx[MatchedValueKey], ctx)
}

// CallBuilder produces a value by calling a function with lazily built
// arguments.
type CallBuilder struct {
	fn     any
	args   []Builder
	kwargs map[string]Builder
}

// Call returns a builder invoking fn with the given positional arguments,
// each lifted with ToBuilder and built against the context at replacement
// time.
func Call(fn any, args ...any) *CallBuilder {
	return CallKw(fn, args, nil)
}

// CallKw is Call with additional named arguments; fn must then implement
// KeywordCallable.
func CallKw(fn any, args []any, kwargs map[string]any) *CallBuilder {
	if _, keyword := fn.(KeywordCallable); !keyword {
		if !isCallable(fn) {
			panic(Usagef("Call requires a function, got %T", fn))
		}
		if len(kwargs) > 0 {
			panic(Usagef("%T does not accept named arguments", fn))
		}
	}
	built := make([]Builder, len(args))
	for i, arg := range args {
		built[i] = ToBuilder(arg)
	}
	var builtKw map[string]Builder
	if len(kwargs) > 0 {
		builtKw = make(map[string]Builder, len(kwargs))
		for name, arg := range kwargs {
			builtKw[name] = ToBuilder(arg)
		}
	}
	return &CallBuilder{fn: fn, args: built, kwargs: builtKw}
}

// With binds arguments to a bare Call. Binding arguments to an already
// specified call is a usage error.
func (b *CallBuilder) With(args ...any) *CallBuilder {
	if len(b.args) > 0 || len(b.kwargs) > 0 {
		panic(Usagef("further specification of an already specified call is not allowed"))
	}
	return Call(b.fn, args...)
}

// WithKw is With accepting named arguments.
func (b *CallBuilder) WithKw(args []any, kwargs map[string]any) *CallBuilder {
	if len(b.args) > 0 || len(b.kwargs) > 0 {
		panic(Usagef("further specification of an already specified call is not allowed"))
	}
	return CallKw(b.fn, args, kwargs)
}

func (b *CallBuilder) Build(ctx Context) any {
	args := make([]any, len(b.args))
	for i, arg := range b.args {
		args[i] = arg.Build(ctx)
	}
	if kc, ok := b.fn.(KeywordCallable); ok {
		kwargs := make(map[string]any, len(b.kwargs))
		for name, arg := range b.kwargs {
			kwargs[name] = arg.Build(ctx)
		}
		out, err := kc.CallKw(args, kwargs)
		if err != nil {
			panic(err)
		}
		return out
	}
	return callFunc(b.fn, args)
}

type replacePattern struct {
	pattern Pattern
	builder Builder
}

// Replace matches the value against matcher and, on success, produces the
// replacer's built value instead. The matched value is recorded in the
// context under MatchedValueKey so the replacer can refer to it.
func Replace(matcher, replacer any) Pattern {
	return replacePattern{pattern: Of(matcher), builder: ToBuilder(replacer)}
}

func (p replacePattern) Match(value any, ctx Context) any {
	result := p.pattern.Match(value, ctx)
	if result == NoMatch {
		return NoMatch
	}
	ctx[MatchedValueKey] = result
	return p.builder.Build(ctx)
}

// callFunc invokes an arbitrary function reflectively with positional
// arguments. A trailing error result is treated as a defect channel and
// panics when non-nil.
func callFunc(fn any, args []any) any {
	rv := reflect.ValueOf(fn)
	ft := rv.Type()
	in := make([]reflect.Value, len(args))
	for i, arg := range args {
		in[i] = callArg(ft, i, arg)
	}
	out := rv.Call(in)
	if n := len(out); n > 0 && ft.Out(n-1).Implements(errorType) {
		if err, _ := out[n-1].Interface().(error); err != nil {
			panic(err)
		}
		out = out[:n-1]
	}
	if len(out) == 0 {
		return nil
	}
	return out[0].Interface()
}

// itemOf resolves indexed access on sequences and keyed access on mappings.
func itemOf(obj, key any) (any, bool) {
	if keys, values, ok := mappingItems(obj); ok {
		for i, k := range keys {
			if EqualValues(k, key) {
				return values[i], true
			}
		}
		return nil, false
	}
	if items, ok := iterate(obj); ok {
		idx, isInt := key.(int)
		if !isInt || idx < 0 || idx >= len(items) {
			return nil, false
		}
		return items[idx], true
	}
	return nil, false
}
