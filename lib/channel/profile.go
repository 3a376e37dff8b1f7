package channel

import (
	"errors"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"gfx.cafe/gfx/protocolcontrol/lib/catalog"
	"gfx.cafe/gfx/protocolcontrol/lib/fed"
	"gfx.cafe/gfx/protocolcontrol/lib/instrumentation/prom"
)

var ErrIDAssigned = errors.New("profile already has a principal id")

// Resolver finds the principal behind an id. The profile never owns what it returns.
type Resolver interface {
	Resolve(id uuid.UUID) (any, bool)
}

// Profile is the state of one intercepted connection.
type Profile struct {
	conn     *fed.Conn
	resolver Resolver
	log      *zap.Logger

	id     atomic.Pointer[uuid.UUID]
	active atomic.Bool
}

// NewProfile creates an inactive profile for conn. resolver may be nil.
func NewProfile(conn *fed.Conn, resolver Resolver) *Profile {
	return &Profile{
		conn:     conn,
		resolver: resolver,
		log:      conn.Logger(),
	}
}

func (T *Profile) Conn() *fed.Conn {
	return T.conn
}

// ID returns the principal id once login has succeeded.
func (T *Profile) ID() (uuid.UUID, bool) {
	id := T.id.Load()
	if id == nil {
		return uuid.Nil, false
	}
	return *id, true
}

// SetID assigns the principal id. An id can only be assigned once; assigning the same id again is allowed.
func (T *Profile) SetID(id uuid.UUID) error {
	if T.id.CompareAndSwap(nil, &id) {
		return nil
	}
	if current := T.id.Load(); current != nil && *current == id {
		return nil
	}
	return ErrIDAssigned
}

// Principal resolves the principal behind the profile's id.
func (T *Profile) Principal() (any, bool) {
	id, ok := T.ID()
	if !ok || T.resolver == nil {
		return nil, false
	}
	return T.resolver.Resolve(id)
}

func (T *Profile) SetActive(active bool) {
	if T.active.Swap(active) == active {
		return
	}
	if active {
		prom.Interceptor.Profiles(prom.InterceptorLabels{}).Inc()
	} else {
		prom.Interceptor.Profiles(prom.InterceptorLabels{}).Dec()
	}
}

// IsActive reports whether the profile has been injected and its connection is still live.
func (T *Profile) IsActive() bool {
	return T.active.Load() && T.conn.IsActive()
}

// Logger returns the connection's logger, tagged with the principal once it is known.
func (T *Profile) Logger() *zap.Logger {
	if id, ok := T.ID(); ok {
		return T.log.With(zap.Stringer("principal", id))
	}
	return T.log
}

// Execute schedules fn on the connection's loop. It does nothing once the profile is inactive.
func (T *Profile) Execute(fn func(*Profile)) {
	if !T.IsActive() {
		return
	}
	T.conn.Execute(func() {
		fn(T)
	})
}

// Send injects msg on the connection's loop as if it had just passed the interceptor in direction, so subscribers
// do not see it again. It does nothing once the profile is inactive.
func (T *Profile) Send(direction catalog.Direction, msg any) {
	T.Execute(func(*Profile) {
		T.send(direction, msg)
	})
}

// SendInline is Send on the calling goroutine. Only call it from the connection's loop.
func (T *Profile) SendInline(direction catalog.Direction, msg any) {
	if !T.IsActive() {
		return
	}
	T.send(direction, msg)
}

func (T *Profile) send(direction catalog.Direction, msg any) {
	p := T.conn.Pipeline()

	var err error
	switch direction {
	case catalog.Incoming:
		if c := p.Context(IncomingStage); c != nil {
			err = c.FireRead(msg)
		} else {
			err = p.FireRead(msg)
		}
	case catalog.Outgoing:
		if c := p.Context(OutgoingStage); c != nil {
			err = c.Write(msg, nil)
		} else {
			err = p.Write(msg, nil)
		}
	default:
		err = catalog.ErrInvalidDirection
	}

	prom.Interceptor.Injected(prom.InterceptorLabels{Direction: direction.String()}).Inc()
	if err != nil {
		T.Logger().Warn(
			"failed to send message",
			zap.Stringer("direction", direction),
			zap.String("message", typeName(msg)),
			zap.Error(err),
		)
	}
}
