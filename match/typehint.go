package match

import "reflect"

// A Hint describes the shape of a declared type annotation as a closed set
// of tagged variants. FromTypehint lowers a hint into an equivalent pattern;
// ill-formed hints are authoring errors, never non-matches.
type Hint interface {
	isHint()
}

type anyHint struct{}

// AnyHint is the unconstrained/wildcard annotation.
func AnyHint() Hint { return anyHint{} }

type nilHint struct{}

// NilHint is the absent/none annotation, mostly useful as the trailing
// member of a union to form an optional.
func NilHint() Hint { return nilHint{} }

type typeHint struct {
	typ reflect.Type
}

// TypeHint is a concrete type annotation.
func TypeHint(t reflect.Type) Hint { return typeHint{typ: t} }

// HintOf is generic sugar for TypeHint.
func HintOf[T any]() Hint { return TypeHint(reflect.TypeFor[T]()) }

type constHint struct {
	value any
}

// ConstHint is an enumerated-constant annotation, matched by equality.
func ConstHint(value any) Hint { return constHint{value: value} }

type typeVarHint struct {
	name      string
	bound     Hint
	covariant bool
}

// TypeVarHint is a type-parameter annotation. Only covariant parameters can
// be lowered; the bound may be nil for an unconstrained parameter.
func TypeVarHint(name string, bound Hint, covariant bool) Hint {
	return typeVarHint{name: name, bound: bound, covariant: covariant}
}

type deferredHint struct {
	name string
}

// DeferredHint is a textual forward reference resolved lazily against the
// type registry.
func DeferredHint(name string) Hint { return deferredHint{name: name} }

type literalHint struct {
	values []any
}

// LiteralHint is a literal-set annotation, matched by membership.
func LiteralHint(values ...any) Hint { return literalHint{values: values} }

type unionHint struct {
	members []Hint
}

// UnionHint is a union annotation. A trailing NilHint makes the union
// optional.
func UnionHint(members ...Hint) Hint { return unionHint{members: members} }

// OptionalHint is sugar for UnionHint(inner, NilHint()).
func OptionalHint(inner Hint) Hint { return UnionHint(inner, NilHint()) }

type optionalHint struct {
	inner Hint
	def   any
}

// OptionalHintDefault is an optional annotation with a declared default
// produced for absent input.
func OptionalHintDefault(inner Hint, def any) Hint {
	return optionalHint{inner: inner, def: def}
}

type annotatedHint struct {
	base     Hint
	metadata []any
}

// AnnotatedHint attaches extra validation metadata to a base annotation;
// the metadata are lifted to patterns and applied after the base, in
// declaration order.
func AnnotatedHint(base Hint, metadata ...any) Hint {
	return annotatedHint{base: base, metadata: metadata}
}

type callableHint struct {
	args []Hint
	ret  Hint
}

// CallableHint is a callable-signature annotation. With nil args and ret it
// only requires the value to be callable.
func CallableHint(args []Hint, ret Hint) Hint { return callableHint{args: args, ret: ret} }

type restHint struct{}

// Rest marks the variadic tail of a tuple-shaped annotation.
var Rest Hint = restHint{}

type tupleHint struct {
	elems []Hint
}

// TupleHint is a fixed-arity tuple annotation with per-position hints. The
// two-element form TupleHint(h, Rest) denotes a homogeneous variadic tuple.
func TupleHint(elems ...Hint) Hint { return tupleHint{elems: elems} }

type sequenceHint struct {
	elem      Hint
	container reflect.Type
}

// SequenceHint is a homogeneous sequence annotation. The optional container
// type is used as a coercion target for the matched result.
func SequenceHint(elem Hint) Hint { return sequenceHint{elem: elem} }

// SequenceHintAs is SequenceHint with an explicit container type.
func SequenceHintAs(elem Hint, container reflect.Type) Hint {
	return sequenceHint{elem: elem, container: container}
}

type mappingHint struct {
	key       Hint
	value     Hint
	container reflect.Type
}

// MappingHint is a keyed-mapping annotation. The optional container type is
// used as a coercion target for the matched result.
func MappingHint(key, value Hint) Hint { return mappingHint{key: key, value: value} }

// MappingHintAs is MappingHint with an explicit container type.
func MappingHintAs(key, value Hint, container reflect.Type) Hint {
	return mappingHint{key: key, value: value, container: container}
}

type genericHint struct {
	origin reflect.Type
	params []TypeParam
}

// GenericHint is a generic user type with bound type parameters.
func GenericHint(origin reflect.Type, params ...TypeParam) Hint {
	return genericHint{origin: origin, params: params}
}

func (anyHint) isHint()      {}
func (nilHint) isHint()      {}
func (typeHint) isHint()     {}
func (constHint) isHint()    {}
func (typeVarHint) isHint()  {}
func (deferredHint) isHint() {}
func (literalHint) isHint()  {}
func (unionHint) isHint()    {}
func (optionalHint) isHint() {}
func (annotatedHint) isHint() {}
func (callableHint) isHint() {}
func (restHint) isHint()     {}
func (tupleHint) isHint()    {}
func (sequenceHint) isHint() {}
func (mappingHint) isHint()  {}
func (genericHint) isHint()  {}

// FromTypehint lowers a type annotation into an equivalent pattern by
// exhaustive case analysis on the annotation's shape. When allowCoercion is
// true, concrete types declaring the Coercible capability lower to coercing
// patterns instead of instance checks. Unsupported shapes are reported as a
// *MatchError.
func FromTypehint(h Hint, allowCoercion bool) (Pattern, error) {
	switch v := h.(type) {
	case nil:
		return nil, Usagef("cannot create a pattern from a nil annotation")
	case anyHint:
		return Any(), nil
	case nilHint:
		return EqualTo(nil), nil
	case typeHint:
		if allowCoercion {
			if _, ok := coercerFor(v.typ); ok {
				return CoercedTo(v.typ), nil
			}
		}
		return InstanceOf(v.typ), nil
	case constHint:
		return EqualTo(v.value), nil
	case typeVarHint:
		if !v.covariant {
			return nil, Usagef("type parameter %q is not covariant, only covariant parameters are supported", v.name)
		}
		if v.bound != nil {
			return FromTypehint(v.bound, allowCoercion)
		}
		return Any(), nil
	case deferredHint:
		return LazyInstanceOf(v.name), nil
	case literalHint:
		return IsIn(v.values...), nil
	case unionHint:
		return fromUnion(v.members, allowCoercion)
	case optionalHint:
		inner, err := FromTypehint(v.inner, allowCoercion)
		if err != nil {
			return nil, err
		}
		return Option(inner, WithDefault(v.def)), nil
	case annotatedHint:
		base, err := FromTypehint(v.base, allowCoercion)
		if err != nil {
			return nil, err
		}
		parts := append([]any{base}, v.metadata...)
		return AllOf(parts...), nil
	case callableHint:
		if v.args == nil && v.ret == nil {
			return Check(isCallable), nil
		}
		args := make([]any, len(v.args))
		for i, ah := range v.args {
			inner, err := FromTypehint(ah, allowCoercion)
			if err != nil {
				return nil, err
			}
			args[i] = inner
		}
		var ret any = Any()
		if v.ret != nil {
			inner, err := FromTypehint(v.ret, allowCoercion)
			if err != nil {
				return nil, err
			}
			ret = inner
		}
		return CallableWith(args, ret), nil
	case restHint:
		return nil, Usagef("Rest is only valid as the trailing element of a tuple annotation")
	case tupleHint:
		return fromTuple(v.elems, allowCoercion)
	case sequenceHint:
		inner, err := FromTypehint(v.elem, allowCoercion)
		if err != nil {
			return nil, err
		}
		opts := containerOpts(v.container)
		return SequenceOf(inner, opts...), nil
	case mappingHint:
		key, err := FromTypehint(v.key, allowCoercion)
		if err != nil {
			return nil, err
		}
		value, err := FromTypehint(v.value, allowCoercion)
		if err != nil {
			return nil, err
		}
		opts := containerOpts(v.container)
		return MappingOf(key, value, opts...), nil
	case genericHint:
		if allowCoercion && len(v.params) > 0 {
			if _, ok := coercerFor(v.origin); ok {
				return newGenericCoercedTo(v.origin, v.params)
			}
		}
		return newGenericInstanceOf(v.origin, v.params)
	default:
		return nil, Usagef("cannot create a pattern from annotation %T", h)
	}
}

func fromUnion(members []Hint, allowCoercion bool) (Pattern, error) {
	if len(members) == 0 {
		return nil, Usagef("a union annotation needs at least one member")
	}
	last := members[len(members)-1]
	if _, optional := last.(nilHint); optional {
		rest := members[:len(members)-1]
		if len(rest) == 0 {
			return EqualTo(nil), nil
		}
		inner, err := fromBranches(rest, allowCoercion)
		if err != nil {
			return nil, err
		}
		return Option(inner), nil
	}
	return fromBranches(members, allowCoercion)
}

func fromBranches(members []Hint, allowCoercion bool) (Pattern, error) {
	if len(members) == 1 {
		return FromTypehint(members[0], allowCoercion)
	}
	branches := make([]any, len(members))
	for i, m := range members {
		inner, err := FromTypehint(m, allowCoercion)
		if err != nil {
			return nil, err
		}
		branches[i] = inner
	}
	return AnyOf(branches...), nil
}

func fromTuple(elems []Hint, allowCoercion bool) (Pattern, error) {
	for i, e := range elems {
		if _, isRest := e.(restHint); !isRest {
			continue
		}
		if len(elems) != 2 || i != 1 {
			return nil, Usagef("Rest is only valid as the second element of a two-element tuple annotation")
		}
		inner, err := FromTypehint(elems[0], allowCoercion)
		if err != nil {
			return nil, err
		}
		return SequenceOf(inner), nil
	}
	fields := make([]any, len(elems))
	for i, e := range elems {
		inner, err := FromTypehint(e, allowCoercion)
		if err != nil {
			return nil, err
		}
		fields[i] = inner
	}
	return TupleOf(fields...), nil
}

func containerOpts(container reflect.Type) []PatternOption {
	if container == nil {
		return nil
	}
	return []PatternOption{WithContainer(CoercedTo(container))}
}
