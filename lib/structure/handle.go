package structure

import (
	"reflect"
	"unsafe"
)

// hop dereferences an embedded pointer found at offset. elem is the pointed to struct, allocated on writes when nil.
type hop struct {
	offset uintptr
	elem   reflect.Type
}

// Handle addresses one field of a message type by offset.
type Handle struct {
	Name    string
	Type    reflect.Type
	Ordinal int
	// Depth is how many embedded structs were walked to reach the field.
	Depth int

	hops   []hop
	offset uintptr
}

// pointer resolves the field inside the struct at base. With alloc unset, a nil embedded pointer on the way yields nil.
func (T *Handle) pointer(base unsafe.Pointer, alloc bool) unsafe.Pointer {
	p := base
	for _, h := range T.hops {
		slot := (*unsafe.Pointer)(unsafe.Add(p, h.offset))
		if *slot == nil {
			if !alloc {
				return nil
			}
			*slot = reflect.New(h.elem).UnsafePointer()
		}
		p = *slot
	}
	return unsafe.Add(p, T.offset)
}

func (T *Handle) get(base unsafe.Pointer) reflect.Value {
	p := T.pointer(base, false)
	if p == nil {
		return reflect.Zero(T.Type)
	}
	return reflect.NewAt(T.Type, p).Elem()
}

func (T *Handle) set(base unsafe.Pointer, value reflect.Value) {
	reflect.NewAt(T.Type, T.pointer(base, true)).Elem().Set(value)
}
