package match

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"martianoff/matcha/collection"
)

func TestLogicalCombinators(t *testing.T) {
	double := func(v any) any { return v.(int) * 2 }

	t.Run("NotInvertsTheInnerPattern", func(t *testing.T) {
		p := Not(Instance[int]())
		assert.Equal(t, "a", Match(p, "a"))
		assert.Equal(t, NoMatch, Match(p, 1))
	})

	t.Run("AnyOfReturnsFirstSuccess", func(t *testing.T) {
		p := AnyOf(Instance[string](), double, Never())
		assert.Equal(t, "a", Match(p, "a"))
		assert.Equal(t, 4, Match(p, 2))
	})

	t.Run("AnyOfShortCircuits", func(t *testing.T) {
		calls := 0
		spy := func(v any) bool { calls++; return true }
		p := AnyOf(Any(), Check(spy))
		assert.Equal(t, 1, Match(p, 1))
		assert.Equal(t, 0, calls)
	})

	t.Run("AllOfThreadsTransformedValues", func(t *testing.T) {
		p := AllOf(double, double, Check(func(v any) bool { return v.(int) == 12 }))
		assert.Equal(t, 12, Match(p, 3))
	})

	t.Run("AllOfFailsOnFirstRejection", func(t *testing.T) {
		calls := 0
		spy := func(v any) any { calls++; return v }
		p := AllOf(Never(), Apply(spy))
		assert.Equal(t, NoMatch, Match(p, 1))
		assert.Equal(t, 0, calls)
	})

	t.Run("NoneOf", func(t *testing.T) {
		p := NoneOf(Instance[int](), Instance[string]())
		assert.Equal(t, 1.5, Match(p, 1.5))
		assert.Equal(t, NoMatch, Match(p, 1))
		assert.Equal(t, NoMatch, Match(p, "a"))
	})

	t.Run("OptionDefaults", func(t *testing.T) {
		p := Option(Instance[int](), WithDefault(7))
		assert.Equal(t, 7, Match(p, nil))
		assert.Equal(t, 3, Match(p, 3))
		assert.Equal(t, NoMatch, Match(p, "a"))

		bare := Option(Instance[int]())
		assert.Nil(t, Match(bare, nil))
	})
}

func TestRangeAndMembership(t *testing.T) {
	t.Run("BetweenIsInclusive", func(t *testing.T) {
		p := Between(1, 3)
		assert.Equal(t, 1, Match(p, 1))
		assert.Equal(t, 3, Match(p, 3))
		assert.Equal(t, 2.5, Match(p, 2.5))
		assert.Equal(t, NoMatch, Match(p, 0))
		assert.Equal(t, NoMatch, Match(p, 4))
		assert.Equal(t, NoMatch, Match(p, "a"))
	})

	t.Run("BetweenOpenEnds", func(t *testing.T) {
		assert.Equal(t, 1000, Match(BetweenAtLeast(5), 1000))
		assert.Equal(t, NoMatch, Match(BetweenAtLeast(5), 4))
		assert.Equal(t, -1000, Match(BetweenAtMost(5), -1000))
		assert.Equal(t, NoMatch, Match(BetweenAtMost(5), 6))
	})

	t.Run("LengthBounds", func(t *testing.T) {
		p := Length(WithAtLeast(1), WithAtMost(2))
		assert.Equal(t, []any{1}, Match(p, []any{1}))
		assert.Equal(t, NoMatch, Match(p, []any{}))
		assert.Equal(t, NoMatch, Match(p, []any{1, 2, 3}))

		exact := Length(WithExactly(2))
		assert.Equal(t, "ab", Match(exact, "ab"))
		assert.Equal(t, NoMatch, Match(exact, "abc"))
	})

	t.Run("ExactLengthConflictsWithBounds", func(t *testing.T) {
		assert.Panics(t, func() { Length(WithExactly(2), WithAtLeast(1)) })
	})

	t.Run("Contains", func(t *testing.T) {
		assert.Equal(t, []any{1, 2}, Match(Contains(2), []any{1, 2}))
		assert.Equal(t, NoMatch, Match(Contains(3), []any{1, 2}))
		assert.Equal(t, "abc", Match(Contains("bc"), "abc"))
		assert.Equal(t, NoMatch, Match(Contains("x"), "abc"))

		m := map[string]int{"a": 1}
		assert.Equal(t, m, Match(Contains("a"), m))
		assert.Equal(t, NoMatch, Match(Contains("b"), m))

		d := collection.NewFrozenDict(collection.Pair[string, int]{Key: "k", Value: 1})
		assert.Equal(t, d, Match(Contains("k"), d))
	})

	t.Run("IsIn", func(t *testing.T) {
		p := IsIn(1, "a", 2.5)
		assert.Equal(t, "a", Match(p, "a"))
		assert.Equal(t, 2.5, Match(p, 2.5))
		assert.Equal(t, NoMatch, Match(p, "b"))
	})
}

func TestConveniencePredicates(t *testing.T) {
	t.Run("IsTruish", func(t *testing.T) {
		assert.Equal(t, 1, Match(IsTruish, 1))
		assert.Equal(t, "x", Match(IsTruish, "x"))
		assert.Equal(t, NoMatch, Match(IsTruish, 0))
		assert.Equal(t, NoMatch, Match(IsTruish, ""))
		assert.Equal(t, NoMatch, Match(IsTruish, false))
		assert.Equal(t, NoMatch, Match(IsTruish, nil))
		assert.Equal(t, NoMatch, Match(IsTruish, []any{}))
	})

	t.Run("IsNumberExcludesBool", func(t *testing.T) {
		assert.Equal(t, 1, Match(IsNumber, 1))
		assert.Equal(t, 1.5, Match(IsNumber, 1.5))
		assert.Equal(t, NoMatch, Match(IsNumber, true))
		assert.Equal(t, NoMatch, Match(IsNumber, "1"))
	})

	t.Run("IsString", func(t *testing.T) {
		assert.Equal(t, "a", Match(IsString, "a"))
		assert.Equal(t, NoMatch, Match(IsString, 1))
	})

	t.Run("IsIdentity", func(t *testing.T) {
		a := &struct{ n int }{n: 1}
		b := &struct{ n int }{n: 1}
		assert.Equal(t, a, Match(Is(a), a))
		assert.Equal(t, NoMatch, Match(Is(a), b))
		assert.Equal(t, 1, Match(Is(1), 1))
	})
}
