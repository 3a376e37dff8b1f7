package catalog

import (
	"fmt"
	"reflect"
)

// Kind is a logical message kind. Each direction may be backed by a different concrete message type; either may be
// nil when the kind only travels one way. Types are pointers to structs.
type Kind struct {
	Name     string
	Inbound  reflect.Type
	Outbound reflect.Type
}

// KindOf builds a Kind from zero values, e.g. KindOf("chat", (*ChatMessage)(nil), (*ChatPacket)(nil)).
func KindOf(name string, inbound, outbound any) Kind {
	k := Kind{
		Name: name,
	}
	if inbound != nil {
		k.Inbound = reflect.TypeOf(inbound)
	}
	if outbound != nil {
		k.Outbound = reflect.TypeOf(outbound)
	}
	return k
}

// Type returns the message type for direction, or nil if this kind has none.
func (T *Kind) Type(direction Direction) reflect.Type {
	switch direction {
	case Incoming:
		return T.Inbound
	case Outgoing:
		return T.Outbound
	default:
		return nil
	}
}

// Create constructs a zero value message of this kind for direction.
func (T *Kind) Create(direction Direction) (any, error) {
	if direction == Unspecified || !direction.Valid() {
		return nil, fmt.Errorf("create %s: %w: %s", T.Name, ErrInvalidDirection, direction)
	}
	typ := T.Type(direction)
	if typ == nil {
		return nil, fmt.Errorf("create %s: %w: %s", T.Name, ErrNoType, direction)
	}
	return reflect.New(typ.Elem()).Interface(), nil
}

// Validate reports whether typ may be used as a message type.
func Validate(typ reflect.Type) error {
	if typ == nil {
		return ErrNoType
	}
	if typ.Kind() != reflect.Pointer || typ.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("%w: %s", ErrNotMessage, typ)
	}
	return nil
}

// Validate checks every type this kind declares.
func (T *Kind) Validate() error {
	if T.Name == "" {
		return ErrNoName
	}
	if T.Inbound == nil && T.Outbound == nil {
		return fmt.Errorf("kind %s: %w", T.Name, ErrNoType)
	}
	for _, typ := range [...]reflect.Type{T.Inbound, T.Outbound} {
		if typ == nil {
			continue
		}
		if err := Validate(typ); err != nil {
			return fmt.Errorf("kind %s: %w", T.Name, err)
		}
	}
	return nil
}
