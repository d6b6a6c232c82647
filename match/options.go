package match

// PatternOption configures the pattern constructors that take optional
// bounds, containers or defaults (Length, SequenceOf, MappingOf, Option).
// Options irrelevant to a constructor are ignored; conflicting length
// bounds are an authoring error.
type PatternOption func(*patternOptions)

type patternOptions struct {
	exactly   *int
	atLeast   *int
	atMost    *int
	container Pattern
	def       any
}

// WithExactly constrains the container size to exactly n elements. It
// cannot be combined with WithAtLeast or WithAtMost.
func WithExactly(n int) PatternOption {
	return func(o *patternOptions) { o.exactly = &n }
}

// WithAtLeast constrains the container size to at least n elements.
func WithAtLeast(n int) PatternOption {
	return func(o *patternOptions) { o.atLeast = &n }
}

// WithAtMost constrains the container size to at most n elements.
func WithAtMost(n int) PatternOption {
	return func(o *patternOptions) { o.atMost = &n }
}

// WithContainer sets the coercion target applied to the collected result of
// a SequenceOf or MappingOf match, typically CoercedTo of a Coercible
// container type or an Apply transform.
func WithContainer(p any) PatternOption {
	return func(o *patternOptions) { o.container = Of(p) }
}

// WithDefault sets the value an Option pattern produces for nil input.
func WithDefault(def any) PatternOption {
	return func(o *patternOptions) { o.def = def }
}

func applyOptions(opts []PatternOption) patternOptions {
	var o patternOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// bounds resolves the configured length constraints, rejecting the
// ambiguous combination of an exact size with open bounds.
func (o patternOptions) bounds() (atLeast, atMost *int) {
	if o.exactly != nil {
		if o.atLeast != nil || o.atMost != nil {
			panic(Usagef("cannot combine an exact length with at-least/at-most bounds"))
		}
		return o.exactly, o.exactly
	}
	return o.atLeast, o.atMost
}
