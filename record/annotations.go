// Package record implements a validated-record protocol on top of the
// pattern engine: immutable records with explicitly registered, ordered and
// pattern-checked constructor arguments, derived attributes, structural
// equality and cached hashing.
package record

import (
	"martianoff/matcha/collection"
	"martianoff/matcha/match"
)

// Argument declares one constructor argument of a record class: its
// validation pattern and whether a caller must supply it.
type Argument struct {
	pattern  match.Pattern
	required bool
	def      any
}

// Required declares a mandatory argument validated by the given pattern.
func Required(p any) Argument {
	return Argument{pattern: match.Of(p), required: true}
}

// Optional declares an argument that defaults to def when absent. The
// pattern still applies to supplied values; absent or nil input produces the
// default unvalidated.
func Optional(p any, def any) Argument {
	return Argument{pattern: match.Option(p, match.WithDefault(def)), def: def}
}

// RequiredHint is Required with the pattern lowered from a type annotation,
// with coercion enabled. An ill-formed annotation is a definition-time
// authoring error and panics.
func RequiredHint(h match.Hint) Argument {
	return Required(mustLower(h))
}

// OptionalHint is Optional with the pattern lowered from a type annotation.
func OptionalHint(h match.Hint, def any) Argument {
	return Optional(mustLower(h), def)
}

func mustLower(h match.Hint) match.Pattern {
	p, err := match.FromTypehint(h, true)
	if err != nil {
		panic(err)
	}
	return p
}

// IsRequired reports whether the argument must be supplied by the caller.
func (a Argument) IsRequired() bool { return a.required }

// Default returns the value produced when an optional argument is absent.
func (a Argument) Default() any { return a.def }

// Pattern returns the argument's validation pattern.
func (a Argument) Pattern() match.Pattern { return a.pattern }

// Attribute declares a derived, post-construction field of a record class:
// an initializer run against the partially built record and a pattern
// validating both the initial and any later assigned value. An initializer
// returning false leaves the slot unset.
type Attribute struct {
	pattern match.Pattern
	init    func(*Record) (any, bool)
}

// NewAttribute declares a derived attribute.
func NewAttribute(p any, init func(*Record) (any, bool)) Attribute {
	return Attribute{pattern: match.Of(p), init: init}
}

// Field pairs an argument with its name, preserving declaration order.
type Field struct {
	Name     string
	Argument Argument
}

// Signature is the ordered, immutable name-to-argument binding of a record
// class.
type Signature struct {
	args *collection.FrozenDict[string, Argument]
}

// NewSignature builds a signature from ordered fields. A required argument
// declared after an optional one is rejected, so positional binding stays
// unambiguous.
func NewSignature(fields ...Field) (*Signature, error) {
	pairs := make([]collection.Pair[string, Argument], len(fields))
	seen := make(map[string]struct{}, len(fields))
	for i, f := range fields {
		if _, dup := seen[f.Name]; dup {
			return nil, Signaturef("", "argument %q declared twice", f.Name)
		}
		seen[f.Name] = struct{}{}
		pairs[i] = collection.Pair[string, Argument]{Key: f.Name, Value: f.Argument}
	}
	s := &Signature{args: collection.NewFrozenDict(pairs...)}
	if err := s.checkOrder(); err != nil {
		return nil, err
	}
	return s, nil
}

// MergeSignatures combines parent signatures with the child's own, in
// order. A later signature overrides an inherited argument in place, keeping
// the inherited position; new arguments append. The combined order must
// still put every required argument before the optional ones.
func MergeSignatures(sigs ...*Signature) (*Signature, error) {
	names := []string{}
	merged := map[string]Argument{}
	for _, sig := range sigs {
		if sig == nil {
			continue
		}
		sig.args.Each(func(name string, arg Argument) {
			if _, seen := merged[name]; !seen {
				names = append(names, name)
			}
			merged[name] = arg
		})
	}
	fields := make([]Field, len(names))
	for i, name := range names {
		fields[i] = Field{Name: name, Argument: merged[name]}
	}
	return NewSignature(fields...)
}

func (s *Signature) checkOrder() error {
	optionalSeen := ""
	var err error
	s.args.Each(func(name string, arg Argument) {
		if err != nil {
			return
		}
		if !arg.IsRequired() {
			optionalSeen = name
		} else if optionalSeen != "" {
			err = Signaturef("", "required argument %q follows optional argument %q", name, optionalSeen)
		}
	})
	return err
}

// Names returns the argument names in declaration order.
func (s *Signature) Names() []string { return s.args.Keys() }

// Argument returns the named argument declaration.
func (s *Signature) Argument(name string) (Argument, bool) { return s.args.Get(name) }

// Len returns the number of declared arguments.
func (s *Signature) Len() int { return s.args.Len() }

// Validate binds positional and keyword values against the signature and
// runs every argument's pattern, sharing one match context across the whole
// record so captures in one field stay visible to later fields. All field
// failures are collected into a ValidationErrors.
func (s *Signature) Validate(args []any, kwargs map[string]any) (map[string]any, error) {
	names := s.Names()
	if len(args) > len(names) {
		return nil, ValidationErrors{
			Invalid("", args, "expected at most %d positional arguments, got %d", len(names), len(args)),
		}
	}

	bound := make(map[string]any, len(names))
	supplied := make(map[string]bool, len(names))
	for i, value := range args {
		bound[names[i]] = value
		supplied[names[i]] = true
	}
	for name, value := range kwargs {
		if _, known := s.args.Get(name); !known {
			return nil, ValidationErrors{Invalid(name, value, "unknown argument")}
		}
		if supplied[name] {
			return nil, ValidationErrors{Invalid(name, value, "argument given both positionally and by name")}
		}
		bound[name] = value
		supplied[name] = true
	}

	return s.validateBound(bound, supplied)
}

// ValidateNobind is the keyword-only validation path used when rebuilding a
// record from an already named field set.
func (s *Signature) ValidateNobind(kwargs map[string]any) (map[string]any, error) {
	bound := make(map[string]any, len(kwargs))
	supplied := make(map[string]bool, len(kwargs))
	for name, value := range kwargs {
		if _, known := s.args.Get(name); !known {
			return nil, ValidationErrors{Invalid(name, value, "unknown argument")}
		}
		bound[name] = value
		supplied[name] = true
	}
	return s.validateBound(bound, supplied)
}

func (s *Signature) validateBound(bound map[string]any, supplied map[string]bool) (map[string]any, error) {
	ctx := match.Context{}
	result := make(map[string]any, s.Len())
	var errs ValidationErrors
	s.args.Each(func(name string, arg Argument) {
		value := bound[name]
		if !supplied[name] {
			if arg.IsRequired() {
				errs = append(errs, Invalid(name, nil, "missing required argument"))
				return
			}
			value = nil
		}
		res := arg.Pattern().Match(value, ctx)
		if res == match.NoMatch {
			errs = append(errs, Invalid(name, value, "does not match the declared pattern"))
			return
		}
		result[name] = res
	})
	if err := errs.orNil(); err != nil {
		return nil, err
	}
	return result, nil
}
