package event

import (
	"fmt"
	"reflect"

	"gfx.cafe/gfx/protocolcontrol/lib/catalog"
	"gfx.cafe/gfx/protocolcontrol/lib/util/slices"
)

// Handler receives posted events. A returned error is recorded in the PostResult and does not stop the post.
type Handler func(event *PacketEvent) error

// Subscription describes one subscriber. Type and Kind are mutually exclusive; with neither set every message type
// is delivered.
type Subscription struct {
	// Name identifies the subscriber in logs.
	Name string
	// Type filters on the message's concrete type, a pointer to a struct.
	Type reflect.Type
	// Kind filters on a catalog kind. With Direction unspecified, both of the kind's types match.
	Kind      *catalog.Kind
	Direction catalog.Direction
	Order     Order
	// IgnoreCancelled delivers events even after they have been cancelled.
	IgnoreCancelled bool
	Handler         Handler
}

// On builds a subscription for messages of type M.
func On[M any](name string, handler func(event *PacketEvent, msg M) error) Subscription {
	return Subscription{
		Name: name,
		Type: reflect.TypeFor[M](),
		Handler: func(event *PacketEvent) error {
			msg, ok := event.Packet().(M)
			if !ok {
				return nil
			}
			return handler(event, msg)
		},
	}
}

// Listener groups subscriptions that are registered and unregistered together. Listeners are compared by identity,
// so implementations should be pointers.
type Listener interface {
	Subscriptions() []Subscription
}

// Registration is a registered subscription. Pass it to Bus.Unregister to remove it.
type Registration struct {
	Subscription

	seq      uint64
	listener Listener
	types    []reflect.Type
}

func (T *Registration) name() string {
	if T.Name != "" {
		return T.Name
	}
	return fmt.Sprintf("#%d", T.seq)
}

func less(a, b *Registration) bool {
	if a.Order != b.Order {
		return a.Order < b.Order
	}
	return a.seq < b.seq
}

func generate(sub Subscription, seq uint64, listener Listener) (*Registration, error) {
	fail := func(reason string, args ...any) (*Registration, error) {
		name := sub.Name
		if name == "" {
			name = fmt.Sprintf("#%d", seq)
		}
		return nil, &SubscriberGenerationError{
			Subscriber: name,
			Reason:     fmt.Sprintf(reason, args...),
		}
	}

	if sub.Handler == nil {
		return fail("no handler")
	}
	if !sub.Direction.Valid() {
		return fail("invalid direction %d", sub.Direction)
	}
	if sub.Type != nil && sub.Kind != nil {
		return fail("type and kind filters are mutually exclusive")
	}

	r := &Registration{
		Subscription: sub,
		seq:          seq,
		listener:     listener,
	}

	switch {
	case sub.Type != nil:
		if err := catalog.Validate(sub.Type); err != nil {
			return fail("%v", err)
		}
		r.types = []reflect.Type{sub.Type}
	case sub.Kind != nil:
		if sub.Direction != catalog.Unspecified {
			typ := sub.Kind.Type(sub.Direction)
			if typ == nil {
				return fail("kind %s has no %s message", sub.Kind.Name, sub.Direction)
			}
			r.types = []reflect.Type{typ}
			break
		}
		if sub.Kind.Inbound != nil {
			r.types = append(r.types, sub.Kind.Inbound)
		}
		if sub.Kind.Outbound != nil && sub.Kind.Outbound != sub.Kind.Inbound {
			r.types = append(r.types, sub.Kind.Outbound)
		}
		if len(r.types) == 0 {
			return fail("kind %s has no message types", sub.Kind.Name)
		}
	}

	return r, nil
}

// matches reports whether typ is one of the registration's message types. A registration without types matches
// everything.
func (T *Registration) matches(typ reflect.Type) bool {
	if T.types == nil {
		return true
	}
	for _, t := range T.types {
		if t == typ {
			return true
		}
	}
	return false
}

func (T *Registration) shouldPost(event *PacketEvent) bool {
	if !T.matches(event.Type()) {
		return false
	}
	// a kind's message travelling a known direction must be that direction's type
	if T.Kind != nil && event.Direction() != catalog.Unspecified && event.Type() != T.Kind.Type(event.Direction()) {
		return false
	}
	if T.Direction != catalog.Unspecified && T.Direction != event.Direction() {
		return false
	}
	if event.Cancelled() && !T.IgnoreCancelled {
		return false
	}
	return true
}

// index is an immutable snapshot of every registration, sorted per message type.
type index struct {
	typed    map[reflect.Type]slices.Sorted[*Registration]
	wildcard slices.Sorted[*Registration]
	// merged holds typed registrations merged with the wildcard ones.
	merged map[reflect.Type]slices.Sorted[*Registration]
}

var emptyIndex = &index{}

func newIndex(typed map[reflect.Type]slices.Sorted[*Registration], wildcard slices.Sorted[*Registration]) *index {
	idx := &index{
		typed:    typed,
		wildcard: wildcard,
		merged:   make(map[reflect.Type]slices.Sorted[*Registration], len(typed)),
	}
	for typ, regs := range typed {
		idx.merged[typ] = slices.Merge(regs, wildcard, less)
	}
	return idx
}

func (T *index) lookup(typ reflect.Type) slices.Sorted[*Registration] {
	if regs, ok := T.merged[typ]; ok {
		return regs
	}
	return T.wildcard
}

// with returns a copy of the index with regs added.
func (T *index) with(regs ...*Registration) *index {
	typed := make(map[reflect.Type]slices.Sorted[*Registration], len(T.typed))
	for typ, list := range T.typed {
		typed[typ] = list
	}
	wildcard := T.wildcard

	for _, r := range regs {
		if len(r.types) == 0 {
			wildcard = insert(wildcard, r)
			continue
		}
		for _, typ := range r.types {
			typed[typ] = insert(typed[typ], r)
		}
	}
	return newIndex(typed, wildcard)
}

// insert adds r to a copy of list, leaving list untouched for readers of older snapshots.
func insert(list slices.Sorted[*Registration], r *Registration) slices.Sorted[*Registration] {
	clone := make(slices.Sorted[*Registration], len(list), len(list)+1)
	copy(clone, list)
	return clone.Insert(r, less)
}

// without returns a copy of the index with every registration remove reports true for taken out.
func (T *index) without(remove func(*Registration) bool) *index {
	typed := make(map[reflect.Type]slices.Sorted[*Registration], len(T.typed))
	for typ, list := range T.typed {
		kept := append(slices.Sorted[*Registration](nil), list...).DeleteFunc(remove)
		if len(kept) > 0 {
			typed[typ] = kept
		}
	}
	wildcard := append(slices.Sorted[*Registration](nil), T.wildcard...).DeleteFunc(remove)
	return newIndex(typed, wildcard)
}

func (T *index) len() int {
	seen := make(map[*Registration]struct{})
	for _, list := range T.typed {
		for _, r := range list {
			seen[r] = struct{}{}
		}
	}
	return len(seen) + len(T.wildcard)
}
