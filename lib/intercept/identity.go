package intercept

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/google/uuid"

	"gfx.cafe/gfx/protocolcontrol/lib/structure"
)

var ErrNoPrincipal = errors.New("login message carries no principal id")

// Identity locates the principal id in the outgoing message that completes a login.
type Identity struct {
	// Type is the message type, a pointer to a struct. Interception of logins is off while it is nil.
	Type reflect.Type
	// Ordinal selects among the message's fields that read as a uuid.UUID, through translators where registered.
	Ordinal int
}

func (T Identity) matches(msg any) bool {
	return T.Type != nil && reflect.TypeOf(msg) == T.Type
}

func (T Identity) extract(cache *structure.Cache, msg any) (uuid.UUID, error) {
	w, err := cache.Wrap(msg)
	if err != nil {
		return uuid.Nil, err
	}
	id, err := structure.Get[uuid.UUID](w, T.Ordinal)
	if err != nil {
		return uuid.Nil, fmt.Errorf("read principal id: %w", err)
	}
	if id == uuid.Nil {
		return uuid.Nil, ErrNoPrincipal
	}
	return id, nil
}
