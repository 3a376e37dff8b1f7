package catalog

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"sync"
)

var (
	ErrNoName     = errors.New("kind has no name")
	ErrNoType     = errors.New("no message type")
	ErrNotMessage = errors.New("message types must be pointers to structs")
	ErrDuplicate  = errors.New("duplicate kind")
	ErrUnknown    = errors.New("unknown kind")
)

type typeKey struct {
	typ       reflect.Type
	direction Direction
}

// Catalog maps kind names and message types to kinds.
type Catalog struct {
	byName map[string]*Kind
	byType map[typeKey]*Kind
	mu     sync.RWMutex
}

func (T *Catalog) Register(kind Kind) error {
	if err := kind.Validate(); err != nil {
		return err
	}

	T.mu.Lock()
	defer T.mu.Unlock()

	if _, ok := T.byName[kind.Name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicate, kind.Name)
	}
	for _, direction := range [...]Direction{Incoming, Outgoing} {
		if typ := kind.Type(direction); typ != nil {
			if other, ok := T.byType[typeKey{typ, direction}]; ok {
				return fmt.Errorf("%w: %s %s already used by %s", ErrDuplicate, direction, typ, other.Name)
			}
		}
	}

	if T.byName == nil {
		T.byName = make(map[string]*Kind)
		T.byType = make(map[typeKey]*Kind)
	}
	k := &kind
	T.byName[k.Name] = k
	for _, direction := range [...]Direction{Incoming, Outgoing} {
		if typ := k.Type(direction); typ != nil {
			T.byType[typeKey{typ, direction}] = k
		}
	}
	return nil
}

// MustRegister is Register but panics on error.
func (T *Catalog) MustRegister(kinds ...Kind) {
	for _, kind := range kinds {
		if err := T.Register(kind); err != nil {
			panic(err)
		}
	}
}

func (T *Catalog) ByName(name string) (*Kind, bool) {
	T.mu.RLock()
	defer T.mu.RUnlock()
	k, ok := T.byName[name]
	return k, ok
}

// ByType finds the kind whose direction type is typ. An Unspecified direction matches either side.
func (T *Catalog) ByType(typ reflect.Type, direction Direction) (*Kind, bool) {
	T.mu.RLock()
	defer T.mu.RUnlock()
	if direction == Unspecified {
		if k, ok := T.byType[typeKey{typ, Incoming}]; ok {
			return k, true
		}
		direction = Outgoing
	}
	k, ok := T.byType[typeKey{typ, direction}]
	return k, ok
}

// Create constructs a zero message of the named kind.
func (T *Catalog) Create(name string, direction Direction) (any, error) {
	k, ok := T.ByName(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknown, name)
	}
	return k.Create(direction)
}

// Kinds returns every registered kind sorted by name.
func (T *Catalog) Kinds() []*Kind {
	T.mu.RLock()
	kinds := make([]*Kind, 0, len(T.byName))
	for _, k := range T.byName {
		kinds = append(kinds, k)
	}
	T.mu.RUnlock()

	sort.Slice(kinds, func(i, j int) bool {
		return kinds[i].Name < kinds[j].Name
	})
	return kinds
}
