package packets

import (
	"reflect"

	"gfx.cafe/gfx/protocolcontrol/lib/catalog"
	"gfx.cafe/gfx/protocolcontrol/lib/intercept"
)

var (
	Login      = catalog.KindOf("login", (*LoginStart)(nil), (*LoginSuccess)(nil))
	Join       = catalog.KindOf("join_game", nil, (*JoinGame)(nil))
	Chat       = catalog.KindOf("chat", (*ChatMessage)(nil), (*ChatPacket)(nil))
	Keep       = catalog.KindOf("keep_alive", (*KeepAlive)(nil), (*KeepAlive)(nil))
	Leave      = catalog.KindOf("disconnect", nil, (*Disconnect)(nil))
	Position   = catalog.KindOf("position", (*PlayerPosition)(nil), (*EntityTeleport)(nil))
	Identity   = intercept.Identity{
		Type:    reflect.TypeOf((*LoginSuccess)(nil)),
		Ordinal: 0,
	}
)

// Catalog returns a catalog holding every kind of the protocol.
func Catalog() *catalog.Catalog {
	c := new(catalog.Catalog)
	c.MustRegister(Login, Join, Chat, Keep, Leave, Position)
	return c
}
