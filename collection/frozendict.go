package collection

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/emirpasic/gods/maps/linkedhashmap"
)

// Pair is a single key/value entry of a FrozenDict.
type Pair[K comparable, V any] struct {
	Key   K
	Value V
}

// FrozenDict is an immutable, hashable, insertion-order-preserving mapping.
// Once constructed it is never mutated, so it can be freely shared and used
// as part of the identity of other immutable values.
type FrozenDict[K comparable, V any] struct {
	m    *linkedhashmap.Map
	hash uint64
}

// NewFrozenDict builds a FrozenDict from the given pairs. A repeated key
// overrides the value while keeping the position of the first occurrence.
func NewFrozenDict[K comparable, V any](pairs ...Pair[K, V]) *FrozenDict[K, V] {
	m := linkedhashmap.New()
	for _, p := range pairs {
		m.Put(p.Key, p.Value)
	}
	return &FrozenDict[K, V]{m: m, hash: hashEntries(m)}
}

// FrozenDictFrom builds a FrozenDict from parallel key/value slices.
func FrozenDictFrom[K comparable, V any](keys []K, values []V) *FrozenDict[K, V] {
	if len(keys) != len(values) {
		panic(fmt.Sprintf("collection: FrozenDictFrom got %d keys and %d values", len(keys), len(values)))
	}
	m := linkedhashmap.New()
	for i, k := range keys {
		m.Put(k, values[i])
	}
	return &FrozenDict[K, V]{m: m, hash: hashEntries(m)}
}

// Get returns the value stored under key.
func (d *FrozenDict[K, V]) Get(key K) (V, bool) {
	v, found := d.m.Get(key)
	if !found {
		var zero V
		return zero, false
	}
	return v.(V), true
}

// Contains reports whether key is present.
func (d *FrozenDict[K, V]) Contains(key K) bool {
	_, found := d.m.Get(key)
	return found
}

// Len returns the number of entries.
func (d *FrozenDict[K, V]) Len() int {
	return d.m.Size()
}

// Keys returns the keys in insertion order.
func (d *FrozenDict[K, V]) Keys() []K {
	raw := d.m.Keys()
	keys := make([]K, len(raw))
	for i, k := range raw {
		keys[i] = k.(K)
	}
	return keys
}

// Values returns the values in insertion order.
func (d *FrozenDict[K, V]) Values() []V {
	raw := d.m.Values()
	values := make([]V, len(raw))
	for i, v := range raw {
		values[i] = v.(V)
	}
	return values
}

// Items returns the boxed keys and values in insertion order.
func (d *FrozenDict[K, V]) Items() ([]any, []any) {
	return d.m.Keys(), d.m.Values()
}

// Each calls fn for every entry in insertion order.
func (d *FrozenDict[K, V]) Each(fn func(key K, value V)) {
	for _, k := range d.m.Keys() {
		v, _ := d.m.Get(k)
		fn(k.(K), v.(V))
	}
}

// ToMap copies the entries into a plain Go map.
func (d *FrozenDict[K, V]) ToMap() map[K]V {
	out := make(map[K]V, d.m.Size())
	d.Each(func(k K, v V) { out[k] = v })
	return out
}

// Equal reports whether both dicts hold the same key set with equal values.
// Insertion order is not part of the comparison.
func (d *FrozenDict[K, V]) Equal(other *FrozenDict[K, V]) bool {
	if other == nil || d.m.Size() != other.m.Size() {
		return false
	}
	for _, k := range d.m.Keys() {
		a, _ := d.m.Get(k)
		b, found := other.m.Get(k)
		if !found || !equalAny(a, b) {
			return false
		}
	}
	return true
}

// Hash returns the hash precomputed at construction time. Two dicts with
// equal contents hash to the same value regardless of insertion order.
func (d *FrozenDict[K, V]) Hash() uint64 {
	return d.hash
}

func (d *FrozenDict[K, V]) String() string {
	var sb strings.Builder
	sb.WriteString("FrozenDict{")
	first := true
	d.Each(func(k K, v V) {
		if !first {
			sb.WriteString(", ")
		}
		first = false
		fmt.Fprintf(&sb, "%v: %v", k, v)
	})
	sb.WriteString("}")
	return sb.String()
}

// hashEntries combines per-entry hashes with xor so the result does not
// depend on insertion order.
func hashEntries(m *linkedhashmap.Map) uint64 {
	var h uint64 = uint64(m.Size()) * 0x9e3779b97f4a7c15
	for _, k := range m.Keys() {
		v, _ := m.Get(k)
		kh := xxhash.Sum64String(fmt.Sprintf("%T\x00%v", k, k))
		vh := xxhash.Sum64String(fmt.Sprintf("%T\x00%v", v, v))
		h ^= kh ^ (vh<<17 | vh>>47)
	}
	return h
}

// equalAny compares two stored values, preferring an Equal method when the
// value provides one and falling back to reflection. Functions compare by
// code pointer since DeepEqual rejects them.
func equalAny(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	av := reflect.ValueOf(a)
	if m := av.MethodByName("Equal"); m.IsValid() {
		mt := m.Type()
		if mt.NumIn() == 1 && mt.NumOut() == 1 && mt.Out(0).Kind() == reflect.Bool {
			bv := reflect.ValueOf(b)
			if bv.Type().AssignableTo(mt.In(0)) {
				return m.Call([]reflect.Value{bv})[0].Bool()
			}
		}
	}
	if av.Kind() == reflect.Func {
		bv := reflect.ValueOf(b)
		return bv.Kind() == reflect.Func && av.Pointer() == bv.Pointer()
	}
	return reflect.DeepEqual(a, b)
}
