package packets

import (
	"errors"

	"github.com/google/uuid"

	"gfx.cafe/gfx/protocolcontrol/lib/translate"
)

// Text is a chat text component.
type Text struct {
	Text  string `json:"text"`
	Color string `json:"color,omitempty"`
	Bold  bool   `json:"bold,omitempty"`
	Extra []Text `json:"extra,omitempty"`
}

// Plain flattens the component and its children into their text.
func (T Text) Plain() string {
	s := T.Text
	for _, extra := range T.Extra {
		s += extra.Plain()
	}
	return s
}

type GameMode int8

const (
	Survival GameMode = iota
	Creative
	Adventure
	Spectator
)

func (T GameMode) String() string {
	switch T {
	case Survival:
		return "survival"
	case Creative:
		return "creative"
	case Adventure:
		return "adventure"
	case Spectator:
		return "spectator"
	default:
		return "unknown"
	}
}

type ChatPosition int8

const (
	ChatBox ChatPosition = iota
	SystemMessage
	GameInfo
)

// Register adds the protocol's translators: the principal id of a GameProfile, JSON text components, game modes
// and chat positions.
func Register(registry *translate.Registry) error {
	return errors.Join(
		translate.Register(registry, translate.Func[uuid.UUID, GameProfile]{
			WrapFunc: func(raw GameProfile) (uuid.UUID, error) {
				return raw.ID, nil
			},
			UnwrapFunc: func(id uuid.UUID) (GameProfile, error) {
				return GameProfile{ID: id}, nil
			},
		}),
		translate.Register(registry, translate.JSON[Text]()),
		translate.Register(registry, translate.Convert[GameMode, int8]()),
		translate.Register(registry, translate.Convert[ChatPosition, int8]()),
	)
}
