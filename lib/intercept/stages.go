package intercept

import (
	"errors"
	"reflect"

	"gfx.cafe/gfx/protocolcontrol/lib/catalog"
	"gfx.cafe/gfx/protocolcontrol/lib/channel"
	"gfx.cafe/gfx/protocolcontrol/lib/event"
	"gfx.cafe/gfx/protocolcontrol/lib/fed"
	"gfx.cafe/gfx/protocolcontrol/lib/instrumentation/prom"
)

// ErrCancelled completes the promise of a write that a subscriber cancelled.
var ErrCancelled = errors.New("write cancelled by subscriber")

// post runs the bus inline and returns the message to forward, or nil if it was dropped.
func post(bus *event.Bus, profile *channel.Profile, direction catalog.Direction, msg any) any {
	labels := prom.InterceptorLabels{Direction: direction.String()}
	if !bus.HasSubscribers(reflect.TypeOf(msg)) {
		prom.Interceptor.Passthrough(labels).Inc()
		return msg
	}
	prom.Interceptor.Intercepted(labels).Inc()

	ev := event.NewPacketEvent(profile, direction, msg)
	bus.Post(ev)
	if ev.Cancelled() || ev.Packet() == nil {
		prom.Interceptor.Dropped(labels).Inc()
		return nil
	}
	return ev.Packet()
}

type incoming struct {
	bus     *event.Bus
	profile *channel.Profile
}

func (T *incoming) Read(ctx *fed.Context, msg any) error {
	msg = post(T.bus, T.profile, catalog.Incoming, msg)
	if msg == nil {
		return nil
	}
	return ctx.FireRead(msg)
}

type outgoing struct {
	bus     *event.Bus
	profile *channel.Profile
}

func (T *outgoing) Write(ctx *fed.Context, msg any, promise *fed.Promise) error {
	msg = post(T.bus, T.profile, catalog.Outgoing, msg)
	if msg == nil {
		promise.Complete(ErrCancelled)
		return nil
	}
	return ctx.Write(msg, promise)
}

var _ fed.InboundStage = (*incoming)(nil)
var _ fed.OutboundStage = (*outgoing)(nil)
