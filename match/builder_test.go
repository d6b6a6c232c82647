package match

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilders(t *testing.T) {
	t.Run("VarReadsCaptures", func(t *testing.T) {
		ctx := Context{"x": 42}
		assert.Equal(t, 42, Var("x").Build(ctx))
	})

	t.Run("VarWithoutCapturePanics", func(t *testing.T) {
		assert.Panics(t, func() { Var("missing").Build(Context{}) })
	})

	t.Run("VarAttr", func(t *testing.T) {
		ctx := Context{"p": point{X: 1, Y: 2}}
		assert.Equal(t, 2, Var("p").Attr("Y").Build(ctx))
		assert.Panics(t, func() { Var("p").Attr("Z").Build(ctx) })
	})

	t.Run("VarItem", func(t *testing.T) {
		ctx := Context{
			"seq": []any{"a", "b"},
			"map": map[string]any{"k": 7},
		}
		assert.Equal(t, "b", Var("seq").Item(1).Build(ctx))
		assert.Equal(t, 7, Var("map").Item("k").Build(ctx))
		assert.Panics(t, func() { Var("seq").Item(9).Build(ctx) })
	})

	t.Run("JustProducesTheValue", func(t *testing.T) {
		assert.Equal(t, "v", Just("v").Build(Context{}))
		assert.Nil(t, Just(nil).Build(Context{}))
	})

	t.Run("JustRejectsPatternsAndBuilders", func(t *testing.T) {
		assert.Panics(t, func() { Just(EqualTo(1)) })
		assert.Panics(t, func() { Just(Var("x")) })
	})

	t.Run("FactoryReceivesMatchedValue", func(t *testing.T) {
		ctx := Context{MatchedValueKey: 10}
		b := Factory(func(value any, c Context) any { return value.(int) + 1 })
		assert.Equal(t, 11, b.Build(ctx))
	})

	t.Run("ToBuilderLifting", func(t *testing.T) {
		v := Var("x")
		assert.Equal(t, v, ToBuilder(v))
		assert.Equal(t, "lit", ToBuilder("lit").Build(Context{}))

		b := ToBuilder(func(value any) any { return value.(string) + "!" })
		assert.Equal(t, "hi!", b.Build(Context{MatchedValueKey: "hi"}))
	})
}

func TestCallBuilder(t *testing.T) {
	t.Run("PositionalCall", func(t *testing.T) {
		concat := func(a, b string) string { return a + b }
		b := Call(concat, Var("l"), "r")
		assert.Equal(t, "LEFTr", b.Build(Context{"l": "LEFT"}))
	})

	t.Run("TrailingErrorResultPropagatesAsPanic", func(t *testing.T) {
		upper := func(s string) (string, error) { return strings.ToUpper(s), nil }
		assert.Equal(t, "AB", Call(upper, "ab").Build(Context{}))

		failing := func(s string) (string, error) { return "", Usagef("no %s", s) }
		assert.Panics(t, func() { Call(failing, "x").Build(Context{}) })
	})

	t.Run("ReSpecificationIsRejected", func(t *testing.T) {
		fn := func(a int) int { return a }
		bare := Call(fn)
		bound := bare.With(1)
		assert.Equal(t, 1, bound.Build(Context{}))
		assert.Panics(t, func() { bound.With(2) })
	})

	t.Run("NonCallableIsRejected", func(t *testing.T) {
		assert.Panics(t, func() { Call("not a function") })
	})

	t.Run("KwargsRequireKeywordCallable", func(t *testing.T) {
		fn := func(a int) int { return a }
		assert.Panics(t, func() { CallKw(fn, nil, map[string]any{"a": 1}) })
	})
}

func TestReplace(t *testing.T) {
	t.Run("BuilderOutputReplacesTheValue", func(t *testing.T) {
		p := Replace(Capture("x", Instance[int]()), Call(func(x int) int { return x * 10 }, Var("x")))
		assert.Equal(t, 420, Match(p, 42))
	})

	t.Run("MatchedValueIsRecorded", func(t *testing.T) {
		ctx := Context{}
		p := Replace(Instance[int](), Factory(func(value any, _ Context) any {
			return value.(int) + 1
		}))
		assert.Equal(t, 6, MatchIn(p, 5, ctx))
		assert.Equal(t, 5, ctx[MatchedValueKey])
	})

	t.Run("NonMatchBuildsNothing", func(t *testing.T) {
		built := false
		p := Replace(Never(), Factory(func(any, Context) any {
			built = true
			return nil
		}))
		assert.Equal(t, NoMatch, Match(p, 1))
		assert.False(t, built)
	})

	t.Run("LiteralReplacer", func(t *testing.T) {
		p := Replace(EqualTo("old"), "new")
		assert.Equal(t, "new", Match(p, "old"))
	})

	t.Run("RewriteInsideAnObject", func(t *testing.T) {
		// replace the X field while keeping Y through a structural rewrite
		p := ObjectOf(Instance[point](), Replace(EqualTo(1), 100), Wildcard)
		assert.Equal(t, point{X: 100, Y: 2}, Match(p, point{X: 1, Y: 2}))
	})
}

func TestReplaceWithTopmost(t *testing.T) {
	// rewrite the first literal found anywhere in the tree
	rewrite := Replace(
		ObjectOfKw(Instance[*expr](), nil, map[string]any{"Op": EqualTo("lit")}),
		Call(func(e *expr) *expr { return &expr{op: "lit", operands: []any{99}} }, Var(MatchedValueKey)),
	)
	tree := add(lit(1), lit(2))
	result := Match(Topmost(rewrite, nil), tree)
	require.IsType(t, &expr{}, result)
	assert.Equal(t, []any{99}, result.(*expr).operands)
}
