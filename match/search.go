package match

// Recursive search over tree-shaped values.

type topmostPattern struct {
	pattern Pattern
	filter  func(any) bool
}

// Topmost traverses a value tree in pre-order and matches the first value
// the pattern accepts, the outermost one. Recursion descends through values
// implementing TreeNode; the optional filter prunes the children visited.
func Topmost(p any, filter func(any) bool) Pattern {
	return topmostPattern{pattern: Of(p), filter: filter}
}

func (p topmostPattern) Match(value any, ctx Context) any {
	if result := p.pattern.Match(value, ctx); result != NoMatch {
		return result
	}
	for _, child := range childrenOf(value, p.filter) {
		if result := p.Match(child, ctx); result != NoMatch {
			return result
		}
	}
	return NoMatch
}

type innermostPattern struct {
	pattern Pattern
	filter  func(any) bool
}

// Innermost traverses a value tree in post-order and matches the first value
// the pattern accepts, the deepest one.
func Innermost(p any, filter func(any) bool) Pattern {
	return innermostPattern{pattern: Of(p), filter: filter}
}

func (p innermostPattern) Match(value any, ctx Context) any {
	for _, child := range childrenOf(value, p.filter) {
		if result := p.Match(child, ctx); result != NoMatch {
			return result
		}
	}
	return p.pattern.Match(value, ctx)
}

func childrenOf(value any, filter func(any) bool) []any {
	node, ok := value.(TreeNode)
	if !ok {
		return nil
	}
	return node.Children(filter)
}
