package app

import (
	"sync/atomic"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"gfx.cafe/gfx/protocolcontrol/lib/catalog"
	"gfx.cafe/gfx/protocolcontrol/lib/fed"
	"gfx.cafe/gfx/protocolcontrol/lib/fed/codecs/jsonl"
	"gfx.cafe/gfx/protocolcontrol/lib/packets"
	"gfx.cafe/gfx/protocolcontrol/lib/util/maps"
)

// Player is a logged in connection of the bundled chat server.
type Player struct {
	ID       uuid.UUID
	Name     string
	EntityID int32

	conn *fed.Conn
}

// Hub is the bundled chat server. It logs players in offline, relays chat and movement, and answers keep alives.
type Hub struct {
	catalog *catalog.Catalog
	players maps.RWLocked[uuid.UUID, *Player]
	entity  atomic.Int32
	log     *zap.Logger
}

func NewHub(c *catalog.Catalog, log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{
		catalog: c,
		log:     log,
	}
}

// OfflineID derives a player's id from their name.
func OfflineID(name string) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte("OfflinePlayer:"+name))
}

// Resolve returns the *Player logged in under id.
func (T *Hub) Resolve(id uuid.UUID) (any, bool) {
	player, ok := T.players.Load(id)
	if !ok {
		return nil, false
	}
	return player, true
}

func (T *Hub) Players() int {
	return T.players.Len()
}

// Read is installed on acceptor pipelines. It sets up the protocol stages of every accepted connection.
func (T *Hub) Read(ctx *fed.Context, msg any) error {
	conn, ok := msg.(*fed.Conn)
	if !ok {
		return ctx.FireRead(msg)
	}

	p := conn.Pipeline()
	if err := p.AddLast(fed.DecoderStage, &jsonl.Decoder{Catalog: T.catalog, Direction: catalog.Incoming}); err != nil {
		return err
	}
	if err := p.AddLast(fed.EncoderStage, &jsonl.Encoder{Catalog: T.catalog, Direction: catalog.Outgoing}); err != nil {
		return err
	}
	if err := p.AddLast(fed.HandlerStage, &session{hub: T, conn: conn}); err != nil {
		return err
	}
	return ctx.FireRead(conn)
}

func (T *Hub) broadcast(except *Player, msg func() any) {
	T.players.Range(func(_ uuid.UUID, player *Player) bool {
		if player != except {
			player.conn.Write(msg())
		}
		return true
	})
}

func text(t packets.Text) string {
	s, err := sonic.ConfigStd.MarshalToString(t)
	if err != nil {
		return ""
	}
	return s
}

// session is the packet handler of one connection.
type session struct {
	hub    *Hub
	conn   *fed.Conn
	player *Player
}

func (T *session) Read(_ *fed.Context, msg any) error {
	switch m := msg.(type) {
	case *packets.LoginStart:
		T.login(m)
	case *packets.ChatMessage:
		if T.player == nil {
			return nil
		}
		line := text(packets.Text{
			Text: "<" + T.player.Name + "> ",
			Extra: []packets.Text{
				{Text: m.Message},
			},
		})
		sender := T.player.ID
		T.hub.broadcast(nil, func() any {
			return &packets.ChatPacket{
				Message:  line,
				Position: int8(packets.ChatBox),
				Sender:   sender,
			}
		})
	case *packets.PlayerPosition:
		if T.player == nil {
			return nil
		}
		entity := T.player.EntityID
		T.hub.broadcast(T.player, func() any {
			teleport := &packets.EntityTeleport{
				X:        m.X,
				Y:        m.Y,
				Z:        m.Z,
				OnGround: m.OnGround,
			}
			teleport.SetEntity(entity)
			return teleport
		})
	case *packets.KeepAlive:
		T.conn.Write(&packets.KeepAlive{ID: m.ID})
	}
	return nil
}

func (T *session) login(m *packets.LoginStart) {
	if T.player != nil || m.Name == "" {
		T.conn.Write(&packets.Disconnect{Reason: text(packets.Text{Text: "invalid login"})})
		return
	}

	player := &Player{
		ID:       OfflineID(m.Name),
		Name:     m.Name,
		EntityID: T.hub.entity.Add(1),
		conn:     T.conn,
	}
	if _, loaded := T.hub.players.LoadOrStore(player.ID, player); loaded {
		T.conn.Write(&packets.Disconnect{Reason: text(packets.Text{Text: "already logged in"})})
		return
	}
	T.player = player

	T.conn.Write(&packets.LoginSuccess{
		Profile: packets.GameProfile{
			ID:   player.ID,
			Name: player.Name,
		},
	})
	T.conn.Write(&packets.JoinGame{
		EntityID: player.EntityID,
		GameMode: int8(packets.Survival),
	})
	T.hub.log.Debug("player joined", zap.String("player", player.Name), zap.Stringer("conn", T.conn.ID()))
}

func (T *session) Inactive(ctx *fed.Context) error {
	if T.player != nil {
		T.hub.players.DeleteIf(T.player.ID, func(p *Player) bool {
			return p == T.player
		})
		T.hub.log.Debug("player left", zap.String("player", T.player.Name))
	}
	return ctx.FireInactive()
}

var _ fed.InboundStage = (*Hub)(nil)
var _ fed.InboundStage = (*session)(nil)
var _ fed.InactiveStage = (*session)(nil)
