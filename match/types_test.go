package match

import (
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// celsius coerces numbers into a temperature wrapper.
type celsius struct {
	Deg float64
}

func (celsius) Coerce(value any, _ TypeParams) (any, error) {
	switch v := value.(type) {
	case celsius:
		return v, nil
	case float64:
		return celsius{Deg: v}, nil
	case int:
		return celsius{Deg: float64(v)}, nil
	}
	return nil, Coercionf(value, "cannot read a temperature from %T", value)
}

// faulty fails its coercion with a non-coercion error.
type faulty struct{}

func (faulty) Coerce(any, TypeParams) (any, error) {
	return nil, errors.New("backing store exploded")
}

// typedList is a generic-style container with an observable element type.
type typedList struct {
	ElemType reflect.Type
	Items    []any
}

func (typedList) Coerce(value any, params TypeParams) (any, error) {
	items, ok := value.([]any)
	if !ok {
		return nil, Coercionf(value, "cannot read a list from %T", value)
	}
	elem, ok := params.Type("T")
	if !ok {
		return nil, Coercionf(value, "missing element type binding")
	}
	for _, item := range items {
		if item == nil || !reflect.TypeOf(item).AssignableTo(elem) {
			return nil, Coercionf(item, "element %v is not a %s", item, elem)
		}
	}
	return typedList{ElemType: elem, Items: items}, nil
}

func TestTypePatterns(t *testing.T) {
	t.Run("TypeOfIsExact", func(t *testing.T) {
		p := TypeOf(reflect.TypeFor[int]())
		assert.Equal(t, 1, Match(p, 1))
		assert.Equal(t, NoMatch, Match(p, int64(1)))
		assert.Equal(t, NoMatch, Match(p, nil))
	})

	t.Run("InstanceOfConcrete", func(t *testing.T) {
		assert.Equal(t, 1, Match(Instance[int](), 1))
		assert.Equal(t, NoMatch, Match(Instance[int](), "a"))
	})

	t.Run("InstanceOfInterface", func(t *testing.T) {
		err := errors.New("boom")
		assert.Equal(t, err, Match(Instance[error](), err))
		assert.Equal(t, NoMatch, Match(Instance[error](), "boom"))
	})

	t.Run("SubclassOfMatchesTypeDescriptors", func(t *testing.T) {
		p := SubclassOf(reflect.TypeFor[error]())
		mt := reflect.TypeFor[*MatchError]()
		assert.Equal(t, mt, Match(p, mt))
		assert.Equal(t, NoMatch, Match(p, reflect.TypeFor[int]()))
		// an instance is not a type descriptor
		assert.Equal(t, NoMatch, Match(p, errors.New("boom")))
	})
}

func TestCoercion(t *testing.T) {
	t.Run("CoercibleTargetCoerces", func(t *testing.T) {
		p := CoercedTo(reflect.TypeFor[celsius]())
		assert.Equal(t, celsius{Deg: 21.5}, Match(p, 21.5))
		assert.Equal(t, celsius{Deg: 4}, Match(p, 4))
	})

	t.Run("CoercionErrorBecomesNoMatch", func(t *testing.T) {
		p := CoercedTo(reflect.TypeFor[celsius]())
		assert.Equal(t, NoMatch, Match(p, "warm"))
	})

	t.Run("OtherCoercionFailuresAreDefects", func(t *testing.T) {
		p := CoercedTo(reflect.TypeFor[faulty]())
		assert.Panics(t, func() { Match(p, 1) })
	})

	t.Run("PlainTargetFallsBackToConversion", func(t *testing.T) {
		p := CoercedTo(reflect.TypeFor[float64]())
		assert.Equal(t, 1.0, Match(p, 1))
		assert.Equal(t, 2.5, Match(p, 2.5))
		assert.Equal(t, NoMatch, Match(p, []any{}))
	})

	t.Run("SliceTargetIsBuiltElementwise", func(t *testing.T) {
		p := CoercedTo(reflect.TypeFor[[]int]())
		assert.Equal(t, []int{1, 2}, Match(p, []any{1, 2}))
		assert.Equal(t, []int{}, Match(p, []any{}))
		assert.Equal(t, NoMatch, Match(p, []any{1, celsius{}}))
		assert.Equal(t, NoMatch, Match(p, 1))
	})

	t.Run("MapTargetIsBuiltFromEntries", func(t *testing.T) {
		p := CoercedTo(reflect.TypeFor[map[string]int]())
		entries := []Entry{{Key: "a", Value: 1}, {Key: "b", Value: 2}}
		assert.Equal(t, map[string]int{"a": 1, "b": 2}, Match(p, entries))
		assert.Equal(t, map[string]int{"c": 3}, Match(p, map[string]any{"c": 3}))
		assert.Equal(t, NoMatch, Match(p, []Entry{{Key: celsius{}, Value: 1}}))
	})
}

func TestGenericPatterns(t *testing.T) {
	intParam := TypeParam{Name: "T", Attr: "ElemType", Hint: ConstHint(reflect.TypeFor[int]()), Covariant: true}

	t.Run("GenericInstanceOfChecksBoundParams", func(t *testing.T) {
		p := GenericInstanceOf(reflect.TypeFor[typedList](), intParam)
		ints := typedList{ElemType: reflect.TypeFor[int](), Items: []any{1, 2}}
		strs := typedList{ElemType: reflect.TypeFor[string](), Items: []any{"a"}}
		assert.Equal(t, ints, Match(p, ints))
		assert.Equal(t, NoMatch, Match(p, strs))
		assert.Equal(t, NoMatch, Match(p, "not a list"))
	})

	t.Run("NonCovariantParamPanics", func(t *testing.T) {
		assert.Panics(t, func() {
			GenericInstanceOf(reflect.TypeFor[typedList](), TypeParam{Name: "T", Hint: AnyHint()})
		})
	})

	t.Run("GenericCoercedToForwardsParams", func(t *testing.T) {
		p := GenericCoercedTo(reflect.TypeFor[typedList](), TypeParam{
			Name: "T", Attr: "ElemType", Hint: HintOf[int](), Covariant: true,
		})
		result := Match(p, []any{1, 2, 3})
		require.NotEqual(t, NoMatch, result)
		list := result.(typedList)
		assert.Equal(t, reflect.TypeFor[int](), list.ElemType)
		assert.Equal(t, []any{1, 2, 3}, list.Items)

		assert.Equal(t, NoMatch, Match(p, []any{1, "a"}))
	})

	t.Run("GenericCoercedToRequiresCoercible", func(t *testing.T) {
		_, err := newGenericCoercedTo(reflect.TypeFor[int](), nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "coercion capability")
	})
}

func TestTypeRegistry(t *testing.T) {
	t.Run("LazyInstanceOfResolvesAtMatchTime", func(t *testing.T) {
		p := LazyInstanceOf("types_test.registered")
		assert.Equal(t, NoMatch, Match(p, celsius{}))

		RegisterType("types_test.registered", reflect.TypeFor[celsius]())
		assert.Equal(t, celsius{Deg: 1}, Match(p, celsius{Deg: 1}))
		assert.Equal(t, NoMatch, Match(p, 42))
	})

	t.Run("FirstResolvableNameWins", func(t *testing.T) {
		RegisterType("types_test.int", reflect.TypeFor[int]())
		p := LazyInstanceOf("types_test.unbound", "types_test.int")
		assert.Equal(t, 1, Match(p, 1))
	})

	t.Run("AtLeastOneNameRequired", func(t *testing.T) {
		assert.Panics(t, func() { LazyInstanceOf() })
	})
}

func TestErrorTaxonomy(t *testing.T) {
	t.Run("ErrorTypes", func(t *testing.T) {
		var e Error = Usagef("bad %s", "pattern")
		assert.Equal(t, TypeUsage, e.Type())
		assert.Contains(t, e.Error(), "bad pattern")

		var c Error = Coercionf(42, "no way")
		assert.Equal(t, TypeCoercion, c.Type())
		assert.Equal(t, 42, c.(*CoercionError).Value)
	})

	t.Run("IsCoercionErrorUnwraps", func(t *testing.T) {
		assert.True(t, IsCoercionError(Coercionf(1, "nope")))
		assert.True(t, IsCoercionError(fmt.Errorf("wrapped: %w", Coercionf(1, "nope"))))
		assert.False(t, IsCoercionError(errors.New("other")))
		assert.False(t, IsCoercionError(Usagef("usage")))
	})
}
