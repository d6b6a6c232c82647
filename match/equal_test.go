package match

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"martianoff/matcha/collection"
)

func TestEqualValues(t *testing.T) {
	t.Run("Scalars", func(t *testing.T) {
		assert.True(t, EqualValues(1, 1))
		assert.False(t, EqualValues(1, 2))
		assert.False(t, EqualValues(1, int64(1)))
		assert.True(t, EqualValues(nil, nil))
		assert.False(t, EqualValues(nil, 0))
	})

	t.Run("SlicesElementwise", func(t *testing.T) {
		assert.True(t, EqualValues([]any{1, "a"}, []any{1, "a"}))
		assert.False(t, EqualValues([]any{1}, []any{2}))
		assert.False(t, EqualValues([]any{1}, []any{1, 2}))
	})

	t.Run("FuncsByCodePointer", func(t *testing.T) {
		f := func(v any) bool { return true }
		g := func(v any) bool { return true }
		assert.True(t, EqualValues(Check(f), Check(f)))
		assert.False(t, EqualValues(Check(f), Check(g)))
	})

	t.Run("OrderedMappingsCompareAsSets", func(t *testing.T) {
		a := collection.NewFrozenDict(
			collection.Pair[string, any]{Key: "x", Value: 1},
			collection.Pair[string, any]{Key: "y", Value: 2},
		)
		b := collection.NewFrozenDict(
			collection.Pair[string, any]{Key: "y", Value: 2},
			collection.Pair[string, any]{Key: "x", Value: 1},
		)
		assert.True(t, EqualValues(a, b))
	})

	t.Run("PointersCompareStructurally", func(t *testing.T) {
		assert.True(t, EqualValues(&point{X: 1}, &point{X: 1}))
		assert.False(t, EqualValues(&point{X: 1}, &point{X: 2}))
	})
}

func TestEquivalentAndHash(t *testing.T) {
	t.Run("SameShapePatternsAreEquivalent", func(t *testing.T) {
		assert.True(t, Equivalent(EqualTo(1), EqualTo(1)))
		assert.False(t, Equivalent(EqualTo(1), EqualTo(2)))
		assert.False(t, Equivalent(EqualTo(1), Any()))
		assert.True(t, Equivalent(
			AllOf(Instance[int](), BetweenAtLeast(0)),
			AllOf(Instance[int](), BetweenAtLeast(0)),
		))
		assert.True(t, Equivalent(
			SequenceOf(Instance[int](), WithAtLeast(1)),
			SequenceOf(Instance[int](), WithAtLeast(1)),
		))
	})

	t.Run("EquivalentPatternsHashEqual", func(t *testing.T) {
		a := AllOf(Instance[int](), BetweenAtLeast(0))
		b := AllOf(Instance[int](), BetweenAtLeast(0))
		assert.Equal(t, Hash(a), Hash(b))
		assert.NotEqual(t, Hash(a), Hash(AllOf(Instance[int](), BetweenAtLeast(1))))
	})

	t.Run("HashValueConsistentWithEqualValues", func(t *testing.T) {
		assert.Equal(t, HashValue([]any{1, "a"}), HashValue([]any{1, "a"}))
		assert.NotEqual(t, HashValue([]any{1}), HashValue([]any{2}))

		a := collection.NewFrozenDict(
			collection.Pair[string, any]{Key: "x", Value: 1},
			collection.Pair[string, any]{Key: "y", Value: 2},
		)
		b := collection.NewFrozenDict(
			collection.Pair[string, any]{Key: "y", Value: 2},
			collection.Pair[string, any]{Key: "x", Value: 1},
		)
		assert.Equal(t, HashValue(a), HashValue(b))
	})
}
