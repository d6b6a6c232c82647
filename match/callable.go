package match

import "reflect"

type callableWithPattern struct {
	args []Pattern
	ret  Pattern
}

// CallableWith matches functions whose shape is compatible with the given
// argument patterns: exactly len(args) parameters, or fewer when the
// function is variadic. At most one result is allowed. The match result is a
// checked wrapper func(...any) any that validates (and possibly transforms)
// every argument and the return value on each call; a violating call is a
// usage error and panics with a *MatchError. Each invocation validates
// against a fresh context, so calls stay independent of the finished match
// and of each other.
func CallableWith(args []any, ret any) Pattern {
	var retPattern Pattern = Any()
	if ret != nil {
		retPattern = Of(ret)
	}
	return callableWithPattern{args: liftAll(args), ret: retPattern}
}

func (p callableWithPattern) Match(value any, _ Context) any {
	if !isCallable(value) {
		return NoMatch
	}
	fn := reflect.ValueOf(value)
	ft := fn.Type()
	if ft.NumOut() > 1 {
		return NoMatch
	}

	positional := ft.NumIn()
	if ft.IsVariadic() {
		if positional-1 > len(p.args) {
			return NoMatch
		}
	} else if positional != len(p.args) {
		return NoMatch
	}

	patterns := p.args
	retPattern := p.ret
	wrapped := func(args ...any) any {
		if len(args) != len(patterns) {
			panic(Usagef("checked callable expects %d arguments, got %d", len(patterns), len(args)))
		}
		callCtx := Context{}
		in := make([]reflect.Value, len(args))
		for i, arg := range args {
			res := patterns[i].Match(arg, callCtx)
			if res == NoMatch {
				panic(Usagef("checked callable rejected argument %d: %v", i, arg))
			}
			in[i] = callArg(ft, i, res)
		}
		out := fn.Call(in)
		if len(out) == 0 {
			return nil
		}
		result := retPattern.Match(out[0].Interface(), callCtx)
		if result == NoMatch {
			panic(Usagef("checked callable produced a non-conforming result: %v", out[0]))
		}
		return result
	}
	return wrapped
}

// callArg converts a validated argument into the reflect value expected at
// parameter position i, widening nil to the parameter's zero value.
func callArg(ft reflect.Type, i int, arg any) reflect.Value {
	var pt reflect.Type
	if ft.IsVariadic() && i >= ft.NumIn()-1 {
		pt = ft.In(ft.NumIn() - 1).Elem()
	} else {
		pt = ft.In(i)
	}
	if arg == nil {
		return reflect.Zero(pt)
	}
	rv := reflect.ValueOf(arg)
	if rv.Type() != pt && rv.Type().ConvertibleTo(pt) && !rv.Type().AssignableTo(pt) {
		rv = rv.Convert(pt)
	}
	return rv
}
