package match

// Leaf patterns: the base cases of the combinator algebra.

type anyPattern struct{}

// Any returns the pattern that accepts every value unchanged.
func Any() Pattern { return anyPattern{} }

func (anyPattern) Match(value any, _ Context) any { return value }

type neverPattern struct{}

// Never returns the pattern that matches nothing.
func Never() Pattern { return neverPattern{} }

func (neverPattern) Match(any, Context) any { return NoMatch }

type isPattern struct {
	ref any
}

// Is matches a value identical to ref: pointer identity for reference kinds,
// plain equality for comparable values.
func Is(ref any) Pattern { return isPattern{ref: ref} }

func (p isPattern) Match(value any, _ Context) any {
	if same(value, p.ref) {
		return value
	}
	return NoMatch
}

type equalToPattern struct {
	value any
}

// EqualTo matches a value structurally equal to the given one.
func EqualTo(v any) Pattern { return equalToPattern{value: v} }

func (p equalToPattern) Match(value any, _ Context) any {
	if EqualValues(value, p.value) {
		return value
	}
	return NoMatch
}

type capturePattern struct {
	key     string
	pattern Pattern
}

// Capture records the matched value in the context under key. The inner
// pattern defaults to Any when omitted.
func Capture(key string, inner ...any) Pattern {
	p := Any()
	switch len(inner) {
	case 0:
	case 1:
		p = Of(inner[0])
	default:
		panic(Usagef("Capture takes at most one inner pattern, got %d", len(inner)))
	}
	return capturePattern{key: key, pattern: p}
}

func (p capturePattern) Match(value any, ctx Context) any {
	result := p.pattern.Match(value, ctx)
	if result == NoMatch {
		return NoMatch
	}
	ctx[p.key] = result
	return result
}

type checkPattern struct {
	pred func(any) bool
}

// Check matches values satisfying the predicate, returning them unchanged.
func Check(pred func(any) bool) Pattern {
	if pred == nil {
		panic(Usagef("Check requires a predicate"))
	}
	return checkPattern{pred: pred}
}

func (p checkPattern) Match(value any, _ Context) any {
	if p.pred(value) {
		return value
	}
	return NoMatch
}

type functionPattern struct {
	fn func(any, Context) any
}

// Function wraps an arbitrary matching function as a pattern. The function
// must return NoMatch to report failure.
func Function(fn func(any, Context) any) Pattern {
	if fn == nil {
		panic(Usagef("Function requires a function"))
	}
	return functionPattern{fn: fn}
}

func (p functionPattern) Match(value any, ctx Context) any {
	return p.fn(value, ctx)
}

type applyPattern struct {
	fn func(any) any
}

// Apply transforms the value with a unary function. The transform cannot
// fail; use Function when failure must be reported.
func Apply(fn func(any) any) Pattern {
	if fn == nil {
		panic(Usagef("Apply requires a function"))
	}
	return applyPattern{fn: fn}
}

func (p applyPattern) Match(value any, _ Context) any {
	return p.fn(value)
}

// Convenience predicates.
var (
	IsTruish = Check(truish)
	IsNumber = Check(isNumeric)
	IsString = Check(isString)
)
