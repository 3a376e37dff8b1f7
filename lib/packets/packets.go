package packets

// GameProfile identifies a player on the wire.
type GameProfile struct {
	ID   [16]byte `json:"id"`
	Name string   `json:"name"`
}

type LoginStart struct {
	Name string `json:"name"`
}

// LoginSuccess completes a login. Its profile is the connection's principal from then on.
type LoginSuccess struct {
	Profile     GameProfile `json:"profile"`
	Compression int32       `json:"compression"`
}

type JoinGame struct {
	EntityID int32 `json:"entity_id"`
	GameMode int8  `json:"game_mode"`
	Hardcore bool  `json:"hardcore"`
}

// ChatMessage is a line typed by a player.
type ChatMessage struct {
	Message string `json:"message"`
}

// ChatPacket shows a message to a player. Message is a JSON text component.
type ChatPacket struct {
	Message  string   `json:"message"`
	Position int8     `json:"position"`
	Sender   [16]byte `json:"sender"`
}

type KeepAlive struct {
	ID int64 `json:"id"`
}

// Disconnect closes the connection. Reason is a JSON text component.
type Disconnect struct {
	Reason string `json:"reason"`
}

type PlayerPosition struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Z        float64 `json:"z"`
	OnGround bool    `json:"on_ground"`
}

type entity struct {
	EntityID int32 `json:"entity_id"`
}

type EntityTeleport struct {
	entity

	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Z        float64 `json:"z"`
	Yaw      int8    `json:"yaw"`
	Pitch    int8    `json:"pitch"`
	OnGround bool    `json:"on_ground"`
}

// Entity returns the teleported entity's id.
func (T *EntityTeleport) Entity() int32 {
	return T.EntityID
}

func (T *EntityTeleport) SetEntity(id int32) {
	T.EntityID = id
}
