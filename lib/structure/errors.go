package structure

import (
	"errors"
	"fmt"
	"reflect"
)

var (
	ErrFieldNotFound = errors.New("field not found")
	ErrNotStruct     = errors.New("messages must be non nil pointers to structs")
	ErrTypeMismatch  = errors.New("value does not match field type")
)

// FieldNotFoundError is returned when a message type has no field of Type at Ordinal.
type FieldNotFoundError struct {
	Message reflect.Type
	Type    reflect.Type
	Ordinal int
	// Count is the number of fields of Type the message declares.
	Count int
}

func (T *FieldNotFoundError) Error() string {
	if T.Count == 0 {
		return fmt.Sprintf("%s has no fields of type %s", T.Message, T.Type)
	}
	return fmt.Sprintf("%s has %d fields of type %s, ordinal %d is out of range", T.Message, T.Count, T.Type, T.Ordinal)
}

func (T *FieldNotFoundError) Unwrap() error {
	return ErrFieldNotFound
}

// BuildError describes a field that was skipped while building a Structure. The rest of the structure stays usable.
type BuildError struct {
	Message reflect.Type
	Field   string
	Reason  string
}

func (T *BuildError) Error() string {
	return fmt.Sprintf("skipped field %s of %s: %s", T.Field, T.Message, T.Reason)
}
