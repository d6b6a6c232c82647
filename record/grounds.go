package record

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"

	"martianoff/matcha/match"
)

// Class is a record type descriptor: a name, a merged argument signature and
// the declared derived attributes. Classes are built once with Declare and
// shared; every record points back to its class.
type Class struct {
	name       string
	signature  *Signature
	attributes []attributeSlot
}

type attributeSlot struct {
	name string
	attr Attribute
}

type classConfig struct {
	parents    []*Class
	attributes []attributeSlot
}

// ClassOption configures Declare.
type ClassOption func(*classConfig)

// Extends inherits the parent's signature and attributes. Parents apply in
// declaration order; own fields override inherited ones in place.
func Extends(parent *Class) ClassOption {
	return func(c *classConfig) { c.parents = append(c.parents, parent) }
}

// WithAttribute declares a derived attribute, overriding an inherited
// attribute of the same name.
func WithAttribute(name string, attr Attribute) ClassOption {
	return func(c *classConfig) {
		c.attributes = append(c.attributes, attributeSlot{name: name, attr: attr})
	}
}

// Declare builds a record class from ordered fields. Signature violations
// (duplicate names, required after optional, incompatible inheritance order)
// are reported at definition time, never at construction time.
func Declare(name string, fields []Field, opts ...ClassOption) (*Class, error) {
	var cfg classConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	own, err := NewSignature(fields...)
	if err != nil {
		return nil, Signaturef(name, "%s", err.Error())
	}
	sigs := make([]*Signature, 0, len(cfg.parents)+1)
	attrs := []attributeSlot{}
	for _, parent := range cfg.parents {
		sigs = append(sigs, parent.signature)
		attrs = mergeAttributes(attrs, parent.attributes)
	}
	sigs = append(sigs, own)
	attrs = mergeAttributes(attrs, cfg.attributes)

	merged, err := MergeSignatures(sigs...)
	if err != nil {
		return nil, Signaturef(name, "%s", err.Error())
	}
	return &Class{name: name, signature: merged, attributes: attrs}, nil
}

// MustDeclare is Declare panicking on definition errors, for package-level
// class variables.
func MustDeclare(name string, fields []Field, opts ...ClassOption) *Class {
	c, err := Declare(name, fields, opts...)
	if err != nil {
		panic(err)
	}
	return c
}

func mergeAttributes(base, overrides []attributeSlot) []attributeSlot {
	out := append([]attributeSlot{}, base...)
	for _, o := range overrides {
		replaced := false
		for i, b := range out {
			if b.name == o.name {
				out[i] = o
				replaced = true
				break
			}
		}
		if !replaced {
			out = append(out, o)
		}
	}
	return out
}

// Name returns the class name.
func (c *Class) Name() string { return c.name }

// Signature returns the merged argument signature.
func (c *Class) Signature() *Signature { return c.signature }

// Create constructs a record from positional arguments.
func (c *Class) Create(args ...any) (*Record, error) {
	return c.CreateKw(args, nil)
}

// CreateKw constructs a record from positional and named arguments. The
// bound values are validated through the signature and the derived
// attributes initialize in declaration order against the partially built
// record.
func (c *Class) CreateKw(args []any, kwargs map[string]any) (*Record, error) {
	fields, err := c.signature.Validate(args, kwargs)
	if err != nil {
		return nil, err
	}
	return c.newRecord(fields)
}

// Recreate rebuilds a record from an already named field set, the
// round-trip counterpart of Record.Reduce.
func (c *Class) Recreate(fields map[string]any) (*Record, error) {
	validated, err := c.signature.ValidateNobind(fields)
	if err != nil {
		return nil, err
	}
	return c.newRecord(validated)
}

// CallKw makes the class descriptor keyword-callable, so replacement
// builders can construct records directly.
func (c *Class) CallKw(args []any, kwargs map[string]any) (any, error) {
	return c.CreateKw(args, kwargs)
}

func (c *Class) newRecord(fields map[string]any) (*Record, error) {
	r := &Record{class: c, fields: fields}
	r.hash = r.computeHash()

	for _, slot := range c.attributes {
		if slot.attr.init == nil {
			continue
		}
		value, ok := slot.attr.init(r)
		if !ok {
			continue
		}
		res := slot.attr.pattern.Match(value, match.Context{})
		if res == match.NoMatch {
			return nil, ValidationErrors{Invalid(slot.name, value, "attribute does not match the declared pattern")}
		}
		r.setAttrSlot(slot.name, res)
	}
	return r, nil
}

// Record is an immutable instance of a record class: the constructor
// arguments are fixed at creation and the structural hash over them is
// cached. Only declared derived attributes may be assigned later.
type Record struct {
	class  *Class
	fields map[string]any
	attrs  map[string]any
	hash   uint64
}

// Class returns the record's type descriptor.
func (r *Record) Class() *Class { return r.class }

// GetAttr resolves a constructor argument or a derived attribute by name.
func (r *Record) GetAttr(name string) (any, bool) {
	if _, ok := r.class.signature.Argument(name); ok {
		v, bound := r.fields[name]
		return v, bound
	}
	v, ok := r.attrs[name]
	return v, ok
}

// SetAttr assigns a derived attribute, revalidating the value against the
// attribute's pattern. Constructor arguments are immutable and reject
// assignment.
func (r *Record) SetAttr(name string, value any) error {
	if _, ok := r.class.signature.Argument(name); ok {
		return Invalid(name, value, "constructor arguments are immutable")
	}
	for _, slot := range r.class.attributes {
		if slot.name != name {
			continue
		}
		res := slot.attr.pattern.Match(value, match.Context{})
		if res == match.NoMatch {
			return Invalid(name, value, "does not match the declared pattern")
		}
		r.setAttrSlot(name, res)
		return nil
	}
	return Invalid(name, value, "unknown attribute")
}

func (r *Record) setAttrSlot(name string, value any) {
	if r.attrs == nil {
		r.attrs = map[string]any{}
	}
	r.attrs[name] = value
}

// ArgNames returns the constructor argument names in signature order.
func (r *Record) ArgNames() []string { return r.class.signature.Names() }

// MatchArgs exposes the positional attribute order for object patterns.
func (r *Record) MatchArgs() []string { return r.ArgNames() }

// Args returns the constructor argument values in signature order.
func (r *Record) Args() []any {
	names := r.ArgNames()
	args := make([]any, len(names))
	for i, name := range names {
		args[i] = r.fields[name]
	}
	return args
}

// Children flattens the argument values one sequence/mapping level deep and
// returns those accepted by the filter, the traversal surface of the search
// patterns.
func (r *Record) Children(filter func(any) bool) []any {
	accept := func(v any) bool { return filter == nil || filter(v) }
	var children []any
	for _, arg := range r.Args() {
		switch v := arg.(type) {
		case []any:
			for _, item := range v {
				if accept(item) {
					children = append(children, item)
				}
			}
		case map[string]any:
			for _, name := range sortedKeys(v) {
				if item := v[name]; accept(item) {
					children = append(children, item)
				}
			}
		default:
			if accept(arg) {
				children = append(children, arg)
			}
		}
	}
	return children
}

// Reconstruct rebuilds the record with the given field overrides, the
// rewrite surface of object patterns. The original record is untouched.
func (r *Record) Reconstruct(fields map[string]any) (any, error) {
	return r.Copy(fields)
}

// Copy recreates the record from its current arguments with the given
// overrides applied.
func (r *Record) Copy(overrides map[string]any) (*Record, error) {
	fields := make(map[string]any, len(r.fields))
	for name, value := range r.fields {
		fields[name] = value
	}
	for name, value := range overrides {
		fields[name] = value
	}
	return r.class.Recreate(fields)
}

// Reduce decomposes the record into its class and named arguments, exactly
// round-trippable through Class.Recreate.
func (r *Record) Reduce() (*Class, map[string]any) {
	fields := make(map[string]any, len(r.fields))
	for name, value := range r.fields {
		fields[name] = value
	}
	return r.class, fields
}

// Equal reports structural equality: same class and equal argument values.
// Derived attributes do not participate.
func (r *Record) Equal(other *Record) bool {
	if other == nil || r.class != other.class {
		return false
	}
	if r.hash != other.hash {
		return false
	}
	names := r.ArgNames()
	for _, name := range names {
		if !match.EqualValues(r.fields[name], other.fields[name]) {
			return false
		}
	}
	return true
}

// Hash returns the structural hash over the class and argument values,
// computed once at construction.
func (r *Record) Hash() uint64 { return r.hash }

func (r *Record) computeHash() uint64 {
	d := xxhash.New()
	d.WriteString(r.class.name)
	for _, name := range r.ArgNames() {
		d.WriteString(name)
		var buf [8]byte
		h := match.HashValue(r.fields[name])
		for i := range buf {
			buf[i] = byte(h >> (8 * i))
		}
		d.Write(buf[:])
	}
	return d.Sum64()
}

func (r *Record) String() string {
	parts := make([]string, 0, r.class.signature.Len())
	for _, name := range r.ArgNames() {
		parts = append(parts, fmt.Sprintf("%s=%v", name, r.fields[name]))
	}
	return fmt.Sprintf("%s(%s)", r.class.name, strings.Join(parts, ", "))
}

func sortedKeys(m map[string]any) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
