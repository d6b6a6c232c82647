package match

import (
	"fmt"
	"reflect"
)

// Shared reflective helpers over arbitrary values.

// same reports identity: pointer identity for reference kinds, equality for
// comparable values. Never panics on incomparable inputs.
func same(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ra, rb := reflect.ValueOf(a), reflect.ValueOf(b)
	if ra.Type() != rb.Type() {
		return false
	}
	switch ra.Kind() {
	case reflect.Pointer, reflect.Chan, reflect.Map, reflect.Func, reflect.UnsafePointer:
		return ra.Pointer() == rb.Pointer()
	case reflect.Slice:
		return ra.Pointer() == rb.Pointer() && ra.Len() == rb.Len()
	}
	if ra.Comparable() {
		return a == b
	}
	return false
}

// iterate flattens a sequence-shaped value into its elements. Strings and
// mappings are deliberately not sequences.
func iterate(value any) ([]any, bool) {
	if value == nil {
		return nil, false
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		items := make([]any, rv.Len())
		for i := range items {
			items[i] = fieldValue(rv.Index(i))
		}
		return items, true
	}
	return nil, false
}

// mappingItems returns the ordered keys and values of a mapping-shaped
// value: an ordered mapping yields its own order, a Go map is ordered by the
// formatted key for determinism.
func mappingItems(value any) ([]any, []any, bool) {
	if value == nil {
		return nil, nil, false
	}
	if it, ok := value.(itemser); ok {
		keys, values := it.Items()
		return keys, values, true
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Map {
		return nil, nil, false
	}
	entries := mapEntries(rv)
	keys := make([]any, len(entries))
	values := make([]any, len(entries))
	for i, e := range entries {
		keys[i] = e.Key
		values[i] = e.Value
	}
	return keys, values, true
}

// valueLen returns the size of a container-shaped value.
func valueLen(value any) (int, bool) {
	if value == nil {
		return 0, false
	}
	if l, ok := value.(interface{ Len() int }); ok {
		return l.Len(), true
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map, reflect.String, reflect.Chan:
		return rv.Len(), true
	}
	return 0, false
}

// toFloat widens any numeric value to float64.
func toFloat(value any) (float64, bool) {
	if value == nil {
		return 0, false
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}

func isNumeric(value any) bool {
	_, ok := toFloat(value)
	if !ok {
		return false
	}
	_, isBool := value.(bool)
	return !isBool
}

func isString(value any) bool {
	if value == nil {
		return false
	}
	return reflect.ValueOf(value).Kind() == reflect.String
}

func isCallable(value any) bool {
	if value == nil {
		return false
	}
	rv := reflect.ValueOf(value)
	return rv.Kind() == reflect.Func && !rv.IsNil()
}

// truish mirrors truthiness: nil, false, numeric zero and empty containers
// are falsy, everything else is truthy.
func truish(value any) bool {
	if value == nil {
		return false
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Bool:
		return rv.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return rv.Uint() != 0
	case reflect.Float32, reflect.Float64:
		return rv.Float() != 0
	case reflect.String, reflect.Slice, reflect.Array, reflect.Map:
		return rv.Len() > 0
	case reflect.Pointer, reflect.Interface, reflect.Func, reflect.Chan:
		return !rv.IsNil()
	}
	return true
}

// formatKey renders a map key for deterministic ordering of lifted Go maps.
func formatKey(key any) string {
	return fmt.Sprintf("%T\x00%v", key, key)
}
