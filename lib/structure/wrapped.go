package structure

import (
	"fmt"
	"reflect"
	"unsafe"
)

// Wrapped gives field access to one message. Reads and writes go straight to the message's memory, so a Wrapped
// must only be used from the goroutine that owns the message at the time.
type Wrapped struct {
	message   any
	base      unsafe.Pointer
	structure *Structure
	cache     *Cache
}

func (T *Wrapped) Message() any {
	return T.message
}

func (T *Wrapped) Structure() *Structure {
	return T.structure
}

// Get reads the field of declared type typ at ordinal.
func (T *Wrapped) Get(typ reflect.Type, ordinal int) (any, error) {
	h, err := T.structure.Handle(typ, ordinal)
	if err != nil {
		return nil, err
	}
	return h.get(T.base).Interface(), nil
}

// Set writes value to the field of declared type typ at ordinal. A nil value writes the zero value.
func (T *Wrapped) Set(typ reflect.Type, ordinal int, value any) error {
	h, err := T.structure.Handle(typ, ordinal)
	if err != nil {
		return err
	}

	v := reflect.ValueOf(value)
	if !v.IsValid() {
		v = reflect.Zero(h.Type)
	} else if !v.Type().AssignableTo(h.Type) {
		return fmt.Errorf("%w: cannot assign %s to %s", ErrTypeMismatch, v.Type(), h.Name)
	}
	h.set(T.base, v)
	return nil
}

func field[E any](w *Wrapped, ordinal int, alloc bool) (*E, error) {
	h, err := w.structure.Handle(reflect.TypeFor[E](), ordinal)
	if err != nil {
		return nil, err
	}
	return (*E)(h.pointer(w.base, alloc)), nil
}

// GetRaw reads the field declared as E at ordinal without translation.
func GetRaw[E any](w *Wrapped, ordinal int) (E, error) {
	p, err := field[E](w, ordinal, false)
	if err != nil || p == nil {
		return *new(E), err
	}
	return *p, nil
}

// SetRaw writes the field declared as E at ordinal without translation.
func SetRaw[E any](w *Wrapped, ordinal int, value E) error {
	p, err := field[E](w, ordinal, true)
	if err != nil {
		return err
	}
	*p = value
	return nil
}

// Get reads a field as E. If a translator is registered for E the field is located by the translator's raw type
// and wrapped, otherwise it behaves like GetRaw.
func Get[E any](w *Wrapped, ordinal int) (E, error) {
	var zero E
	translator, ok := w.cache.translation.Lookup(reflect.TypeFor[E]())
	if !ok {
		return GetRaw[E](w, ordinal)
	}

	raw, err := w.Get(translator.Raw(), ordinal)
	if err != nil {
		return zero, err
	}
	domain, err := translator.Wrap(raw)
	if err != nil {
		return zero, fmt.Errorf("translate %s: %w", translator.Raw(), err)
	}
	if domain == nil {
		return zero, nil
	}
	value, ok := domain.(E)
	if !ok {
		return zero, fmt.Errorf("%w: translator returned %T", ErrTypeMismatch, domain)
	}
	return value, nil
}

// Set writes value to a field, unwrapping it through the translator registered for E when there is one.
func Set[E any](w *Wrapped, ordinal int, value E) error {
	translator, ok := w.cache.translation.Lookup(reflect.TypeFor[E]())
	if !ok {
		return SetRaw[E](w, ordinal, value)
	}

	raw, err := translator.Unwrap(value)
	if err != nil {
		return fmt.Errorf("translate %s: %w", translator.Raw(), err)
	}
	return w.Set(translator.Raw(), ordinal, raw)
}

func (T *Wrapped) Int32(ordinal int) (int32, error) {
	return GetRaw[int32](T, ordinal)
}

func (T *Wrapped) SetInt32(ordinal int, value int32) error {
	return SetRaw(T, ordinal, value)
}

func (T *Wrapped) Int64(ordinal int) (int64, error) {
	return GetRaw[int64](T, ordinal)
}

func (T *Wrapped) SetInt64(ordinal int, value int64) error {
	return SetRaw(T, ordinal, value)
}

func (T *Wrapped) Float64(ordinal int) (float64, error) {
	return GetRaw[float64](T, ordinal)
}

func (T *Wrapped) SetFloat64(ordinal int, value float64) error {
	return SetRaw(T, ordinal, value)
}

func (T *Wrapped) Bool(ordinal int) (bool, error) {
	return GetRaw[bool](T, ordinal)
}

func (T *Wrapped) SetBool(ordinal int, value bool) error {
	return SetRaw(T, ordinal, value)
}

func (T *Wrapped) String(ordinal int) (string, error) {
	return GetRaw[string](T, ordinal)
}

func (T *Wrapped) SetString(ordinal int, value string) error {
	return SetRaw(T, ordinal, value)
}
