package structure

import (
	"fmt"
	"reflect"
	"strings"
)

// Structure is the field index of one message type. Fields are grouped by declared type and numbered in the order
// they are met walking the type: its own fields first, then each embedded struct depth first in declaration order.
// A Structure never changes once built.
type Structure struct {
	typ     reflect.Type
	fields  []*Handle
	handles map[reflect.Type][]*Handle
}

// Build walks typ, which must be a struct or a pointer to one. Embedded structs are walked into; any other embedded
// field, such as an interface, is indexed under its declared type like a named field. Fields that cannot be
// addressed are skipped and reported in the returned BuildErrors.
func Build(typ reflect.Type) (*Structure, []*BuildError, error) {
	if typ != nil && typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}
	if typ == nil || typ.Kind() != reflect.Struct {
		return nil, nil, fmt.Errorf("%w: %v", ErrNotStruct, typ)
	}

	b := builder{
		structure: &Structure{
			typ:     typ,
			handles: make(map[reflect.Type][]*Handle),
		},
		visited: map[reflect.Type]struct{}{
			typ: {},
		},
	}
	b.walk(typ, nil, 0, nil, 0)
	return b.structure, b.errors, nil
}

type builder struct {
	structure *Structure
	visited   map[reflect.Type]struct{}
	errors    []*BuildError
}

func (T *builder) fail(path []string, name string, reason string) {
	T.errors = append(T.errors, &BuildError{
		Message: T.structure.typ,
		Field:   strings.Join(append(path, name), "."),
		Reason:  reason,
	})
}

func (T *builder) add(f reflect.StructField, path []string, hops []hop, base uintptr, depth int) {
	h := &Handle{
		Name:    strings.Join(append(path, f.Name), "."),
		Type:    f.Type,
		Ordinal: len(T.structure.handles[f.Type]),
		Depth:   depth,
		hops:    hops,
		offset:  base + f.Offset,
	}
	T.structure.fields = append(T.structure.fields, h)
	T.structure.handles[f.Type] = append(T.structure.handles[f.Type], h)
}

func embeddedStruct(f reflect.StructField) (elem reflect.Type, indirect bool, ok bool) {
	if !f.Anonymous {
		return nil, false, false
	}
	switch {
	case f.Type.Kind() == reflect.Struct:
		return f.Type, false, true
	case f.Type.Kind() == reflect.Pointer && f.Type.Elem().Kind() == reflect.Struct:
		return f.Type.Elem(), true, true
	default:
		return nil, false, false
	}
}

func (T *builder) walk(typ reflect.Type, path []string, base uintptr, hops []hop, depth int) {
	for i := 0; i < typ.NumField(); i++ {
		f := typ.Field(i)
		if _, _, ok := embeddedStruct(f); ok {
			continue
		}
		if f.Name == "_" {
			T.fail(path, f.Name, "blank fields cannot be addressed")
			continue
		}
		T.add(f, path, hops, base, depth)
	}

	for i := 0; i < typ.NumField(); i++ {
		f := typ.Field(i)
		elem, indirect, ok := embeddedStruct(f)
		if !ok {
			continue
		}
		if _, seen := T.visited[elem]; seen {
			T.fail(path, f.Name, "embedding cycle")
			continue
		}
		T.visited[elem] = struct{}{}

		next := append(path[:len(path):len(path)], f.Name)
		if indirect {
			h := append(hops[:len(hops):len(hops)], hop{
				offset: base + f.Offset,
				elem:   elem,
			})
			T.walk(elem, next, 0, h, depth+1)
		} else {
			T.walk(elem, next, base+f.Offset, hops, depth+1)
		}

		delete(T.visited, elem)
	}
}

// Type returns the struct type this structure indexes.
func (T *Structure) Type() reflect.Type {
	return T.typ
}

// Handle returns the field with declared type typ at ordinal.
func (T *Structure) Handle(typ reflect.Type, ordinal int) (*Handle, error) {
	handles := T.handles[typ]
	if ordinal < 0 || ordinal >= len(handles) {
		return nil, &FieldNotFoundError{
			Message: T.typ,
			Type:    typ,
			Ordinal: ordinal,
			Count:   len(handles),
		}
	}
	return handles[ordinal], nil
}

// Count returns how many fields of declared type typ the structure has.
func (T *Structure) Count(typ reflect.Type) int {
	return len(T.handles[typ])
}

// Fields returns every handle in walk order.
func (T *Structure) Fields() []*Handle {
	return T.fields
}
