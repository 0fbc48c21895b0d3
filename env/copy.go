package env

import (
	"reflect"
	"time"
	"unsafe"
)

// Referencer is implemented by values that must keep their identity when a
// Spec is built. They are stored by reference instead of being copied.
type Referencer interface {
	ByReference()
}

var (
	referencerType = reflect.TypeFor[Referencer]()
	// Locations are immutable once loaded and time.Local relies on its
	// identity for lazy initialization.
	locationType = reflect.TypeFor[*time.Location]()
)

// deepCopy returns a copy of v that shares no mutable memory with it, except
// for funcs, channels, unsafe pointers, map keys, time locations and
// Referencer values. Unexported struct fields are copied too. Shared and
// cyclic pointers, maps and slices keep their shape in the copy.
func deepCopy(v any) any {
	if v == nil {
		return nil
	}
	c := copier{seen: make(map[seenKey]reflect.Value)}
	return c.copy(reflect.ValueOf(v)).Interface()
}

type seenKey struct {
	typ reflect.Type
	ptr uintptr
	len int
}

type copier struct {
	seen map[seenKey]reflect.Value
}

func (c *copier) copy(v reflect.Value) reflect.Value {
	if !v.IsValid() || v.Type() == locationType || v.Type().Implements(referencerType) {
		return v
	}

	switch v.Kind() {
	case reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return v

	case reflect.Pointer:
		if v.IsNil() {
			return v
		}
		key := seenKey{typ: v.Type(), ptr: v.Pointer()}
		if out, ok := c.seen[key]; ok {
			return out
		}
		out := reflect.New(v.Type().Elem())
		c.seen[key] = out
		out.Elem().Set(c.copy(v.Elem()))
		return out

	case reflect.Interface:
		if v.IsNil() {
			return v
		}
		out := reflect.New(v.Type()).Elem()
		out.Set(c.copy(v.Elem()))
		return out

	case reflect.Map:
		if v.IsNil() {
			return v
		}
		key := seenKey{typ: v.Type(), ptr: v.Pointer()}
		if out, ok := c.seen[key]; ok {
			return out
		}
		out := reflect.MakeMapWithSize(v.Type(), v.Len())
		c.seen[key] = out
		iter := v.MapRange()
		for iter.Next() {
			out.SetMapIndex(iter.Key(), c.copy(iter.Value()))
		}
		return out

	case reflect.Slice:
		if v.IsNil() {
			return v
		}
		key := seenKey{typ: v.Type(), ptr: v.Pointer(), len: v.Len()}
		if out, ok := c.seen[key]; ok {
			return out
		}
		out := reflect.MakeSlice(v.Type(), v.Len(), v.Len())
		c.seen[key] = out
		for i := 0; i < v.Len(); i++ {
			out.Index(i).Set(c.copy(v.Index(i)))
		}
		return out

	case reflect.Array:
		out := reflect.New(v.Type()).Elem()
		for i := 0; i < v.Len(); i++ {
			out.Index(i).Set(c.copy(v.Index(i)))
		}
		return out

	case reflect.Struct:
		out := reflect.New(v.Type()).Elem()
		out.Set(v)
		t := v.Type()
		for i := 0; i < out.NumField(); i++ {
			f := out.Field(i)
			if !t.Field(i).IsExported() {
				f = reflect.NewAt(f.Type(), unsafe.Pointer(f.UnsafeAddr())).Elem()
			}
			f.Set(c.copy(f))
		}
		return out

	default:
		return v
	}
}
