package event

import (
	"reflect"
	"sync/atomic"

	"gfx.cafe/gfx/protocolcontrol/lib/catalog"
	"gfx.cafe/gfx/protocolcontrol/lib/channel"
	"gfx.cafe/gfx/protocolcontrol/lib/structure"
)

// PacketEvent carries one message through one post. Subscribers may replace the message or cancel the event;
// later subscribers see the latest message. Cancellation cannot be undone.
type PacketEvent struct {
	profile   *channel.Profile
	direction catalog.Direction
	packet    any
	cancelled atomic.Bool
}

func NewPacketEvent(profile *channel.Profile, direction catalog.Direction, packet any) *PacketEvent {
	return &PacketEvent{
		profile:   profile,
		direction: direction,
		packet:    packet,
	}
}

// Profile returns the connection the message travels on. It is nil for events fired without a connection.
func (T *PacketEvent) Profile() *channel.Profile {
	return T.profile
}

func (T *PacketEvent) Direction() catalog.Direction {
	return T.direction
}

func (T *PacketEvent) Packet() any {
	return T.packet
}

// SetPacket replaces the message.
func (T *PacketEvent) SetPacket(packet any) {
	T.packet = packet
}

// Type returns the concrete type of the current message.
func (T *PacketEvent) Type() reflect.Type {
	return reflect.TypeOf(T.packet)
}

func (T *PacketEvent) Cancel() {
	T.cancelled.Store(true)
}

func (T *PacketEvent) Cancelled() bool {
	return T.cancelled.Load()
}

// Wrap gives field access to the current message.
func (T *PacketEvent) Wrap(cache *structure.Cache) (*structure.Wrapped, error) {
	return cache.Wrap(T.packet)
}

func typeName(typ reflect.Type) string {
	if typ == nil {
		return "nil"
	}
	return typ.String()
}
