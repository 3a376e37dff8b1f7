package event

import "context"

// Future resolves once a fired event has been posted to every subscriber, or dropped.
type Future struct {
	event *PacketEvent
	done  chan struct{}
	err   error
}

func newFuture(event *PacketEvent) *Future {
	return &Future{
		event: event,
		done:  make(chan struct{}),
	}
}

func resolvedFuture(event *PacketEvent) *Future {
	f := newFuture(event)
	close(f.done)
	return f
}

func (T *Future) resolve(err error) {
	T.err = err
	close(T.done)
}

func (T *Future) Done() <-chan struct{} {
	return T.done
}

// Event returns the event. Read it only after Done is closed.
func (T *Future) Event() *PacketEvent {
	return T.event
}

// Err is ErrDisabled if the post was dropped or interrupted because the bus was disabled.
func (T *Future) Err() error {
	return T.err
}

// Wait blocks until the future resolves or ctx is done.
func (T *Future) Wait(ctx context.Context) (*PacketEvent, error) {
	select {
	case <-T.done:
		return T.event, T.err
	case <-ctx.Done():
		return T.event, ctx.Err()
	}
}
