package match

import (
	"encoding/binary"
	"math"
	"reflect"
	"unsafe"

	"github.com/cespare/xxhash/v2"
)

// itemser is implemented by ordered mappings (collection.FrozenDict) so that
// structural equality and hashing can treat them as key/value sets.
type itemser interface {
	Items() ([]any, []any)
}

// hasher is implemented by values carrying a precomputed structural hash.
type hasher interface {
	Hash() uint64
}

// EqualValues compares two arbitrary values structurally. An Equal method on
// the left value wins when the right value is acceptable to it; ordered
// mappings compare as key/value sets; functions compare by code pointer;
// everything else is walked field by field, including unexported fields.
func EqualValues(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if ia, ok := a.(itemser); ok {
		ib, ok := b.(itemser)
		return ok && equalItems(ia, ib)
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
	bv := reflect.ValueOf(b)
	if av.Type() != bv.Type() {
		return false
	}
	return equalReflect(av, bv)
}

// Equivalent reports whether two patterns are structurally equal: same
// variant and equal held fields.
func Equivalent(a, b Pattern) bool {
	return EqualValues(a, b)
}

// Hash computes the structural hash of a pattern, consistent with
// Equivalent.
func Hash(p Pattern) uint64 {
	return HashValue(p)
}

func equalItems(a, b itemser) bool {
	ak, avs := a.Items()
	bk, bvs := b.Items()
	if len(ak) != len(bk) {
		return false
	}
	for i, k := range ak {
		found := false
		for j, ok := range bk {
			if EqualValues(k, ok) {
				if !EqualValues(avs[i], bvs[j]) {
					return false
				}
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func equalReflect(a, b reflect.Value) bool {
	switch a.Kind() {
	case reflect.Func:
		return a.Pointer() == b.Pointer()
	case reflect.Chan, reflect.UnsafePointer:
		return a.Pointer() == b.Pointer()
	case reflect.Pointer:
		if a.IsNil() || b.IsNil() {
			return a.IsNil() && b.IsNil()
		}
		if a.Pointer() == b.Pointer() {
			return true
		}
		return equalReflect(a.Elem(), b.Elem())
	case reflect.Interface:
		if a.IsNil() || b.IsNil() {
			return a.IsNil() && b.IsNil()
		}
		return EqualValues(a.Elem().Interface(), b.Elem().Interface())
	case reflect.Slice, reflect.Array:
		if a.Kind() == reflect.Slice && (a.IsNil() != b.IsNil()) {
			return false
		}
		if a.Len() != b.Len() {
			return false
		}
		for i := 0; i < a.Len(); i++ {
			if !EqualValues(fieldValue(a.Index(i)), fieldValue(b.Index(i))) {
				return false
			}
		}
		return true
	case reflect.Map:
		if a.Len() != b.Len() {
			return false
		}
		for _, k := range a.MapKeys() {
			ov := b.MapIndex(k)
			if !ov.IsValid() || !EqualValues(a.MapIndex(k).Interface(), ov.Interface()) {
				return false
			}
		}
		return true
	case reflect.Struct:
		a, b = addressable(a), addressable(b)
		for i := 0; i < a.NumField(); i++ {
			if !EqualValues(fieldValue(a.Field(i)), fieldValue(b.Field(i))) {
				return false
			}
		}
		return true
	default:
		return a.Interface() == b.Interface()
	}
}

// HashValue computes a structural hash consistent with EqualValues: values
// that compare equal hash to the same number. A Hash method on the value is
// preferred when present.
func HashValue(v any) uint64 {
	d := xxhash.New()
	hashInto(d, v)
	return d.Sum64()
}

func hashInto(d *xxhash.Digest, v any) {
	if v == nil {
		d.WriteString("<nil>")
		return
	}
	if it, ok := v.(itemser); ok {
		keys, values := it.Items()
		var h uint64 = uint64(len(keys)) * 0x9e3779b97f4a7c15
		for i, k := range keys {
			kh, vh := HashValue(k), HashValue(values[i])
			h ^= kh ^ (vh<<17 | vh>>47)
		}
		writeUint64(d, h)
		return
	}
	if h, ok := v.(hasher); ok {
		writeUint64(d, h.Hash())
		return
	}
	rv := reflect.ValueOf(v)
	d.WriteString(rv.Type().String())
	hashReflect(d, rv)
}

func hashReflect(d *xxhash.Digest, v reflect.Value) {
	switch v.Kind() {
	case reflect.Bool:
		if v.Bool() {
			d.WriteString("t")
		} else {
			d.WriteString("f")
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		writeUint64(d, uint64(v.Int()))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		writeUint64(d, v.Uint())
	case reflect.Float32, reflect.Float64:
		writeUint64(d, math.Float64bits(v.Float()))
	case reflect.Complex64, reflect.Complex128:
		c := v.Complex()
		writeUint64(d, math.Float64bits(real(c)))
		writeUint64(d, math.Float64bits(imag(c)))
	case reflect.String:
		d.WriteString(v.String())
	case reflect.Func, reflect.Chan, reflect.UnsafePointer:
		writeUint64(d, uint64(v.Pointer()))
	case reflect.Pointer:
		if v.IsNil() {
			d.WriteString("<nilptr>")
		} else {
			hashInto(d, v.Elem().Interface())
		}
	case reflect.Interface:
		if v.IsNil() {
			d.WriteString("<nil>")
		} else {
			hashInto(d, v.Elem().Interface())
		}
	case reflect.Slice, reflect.Array:
		writeUint64(d, uint64(v.Len()))
		for i := 0; i < v.Len(); i++ {
			writeUint64(d, HashValue(fieldValue(v.Index(i))))
		}
	case reflect.Map:
		var h uint64 = uint64(v.Len()) * 0x9e3779b97f4a7c15
		for _, k := range v.MapKeys() {
			kh, vh := HashValue(k.Interface()), HashValue(v.MapIndex(k).Interface())
			h ^= kh ^ (vh<<17 | vh>>47)
		}
		writeUint64(d, h)
	case reflect.Struct:
		v = addressable(v)
		for i := 0; i < v.NumField(); i++ {
			writeUint64(d, HashValue(fieldValue(v.Field(i))))
		}
	}
}

func writeUint64(d *xxhash.Digest, u uint64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], u)
	d.Write(buf[:])
}

// addressable returns v itself when it can be addressed, or an addressable
// copy otherwise. Needed to read unexported fields.
func addressable(v reflect.Value) reflect.Value {
	if v.CanAddr() {
		return v
	}
	c := reflect.New(v.Type()).Elem()
	c.Set(v)
	return c
}

// fieldValue reads a struct field or element, using the unsafe view for
// unexported fields.
func fieldValue(v reflect.Value) any {
	if v.CanInterface() {
		return v.Interface()
	}
	return reflect.NewAt(v.Type(), unsafe.Pointer(v.UnsafeAddr())).Elem().Interface()
}
