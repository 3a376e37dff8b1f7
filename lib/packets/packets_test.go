package packets

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"gfx.cafe/gfx/protocolcontrol/lib/catalog"
	"gfx.cafe/gfx/protocolcontrol/lib/structure"
	"gfx.cafe/gfx/protocolcontrol/lib/translate"
)

func newCache(t *testing.T) *structure.Cache {
	registry := translate.NewRegistry()
	require.NoError(t, Register(registry))
	registry.Seal()
	return structure.NewCache(registry, zaptest.NewLogger(t))
}

func TestCatalog(t *testing.T) {
	c := Catalog()
	assert.Len(t, c.Kinds(), 6)

	msg, err := c.Create("login", catalog.Outgoing)
	require.NoError(t, err)
	assert.IsType(t, &LoginSuccess{}, msg)

	_, err = c.Create("disconnect", catalog.Incoming)
	assert.ErrorIs(t, err, catalog.ErrNoType)

	_, err = c.Create("chat", catalog.Unspecified)
	assert.ErrorIs(t, err, catalog.ErrInvalidDirection)

	kind, ok := c.ByType(Keep.Outbound, catalog.Incoming)
	require.True(t, ok)
	assert.Equal(t, "keep_alive", kind.Name)
}

func TestRegister_Duplicate(t *testing.T) {
	registry := translate.NewRegistry()
	require.NoError(t, Register(registry))
	assert.ErrorIs(t, Register(registry), translate.ErrDuplicate)
}

func TestLoginProfile(t *testing.T) {
	cache := newCache(t)

	id := uuid.New()
	w, err := cache.Wrap(&LoginSuccess{Profile: GameProfile{ID: id, Name: "steve"}})
	require.NoError(t, err)

	got, err := structure.Get[uuid.UUID](w, Identity.Ordinal)
	require.NoError(t, err)
	assert.Equal(t, id, got)

	profile, err := structure.GetRaw[GameProfile](w, 0)
	require.NoError(t, err)
	assert.Equal(t, "steve", profile.Name)
}

func TestChatText(t *testing.T) {
	cache := newCache(t)

	msg := &ChatPacket{Message: `{"text":"hello ","extra":[{"text":"world","bold":true}]}`}
	w, err := cache.Wrap(msg)
	require.NoError(t, err)

	text, err := structure.Get[Text](w, 0)
	require.NoError(t, err)
	assert.Equal(t, "hello world", text.Plain())

	text.Extra[0].Color = "red"
	require.NoError(t, structure.Set(w, 0, text))

	again, err := structure.Get[Text](w, 0)
	require.NoError(t, err)
	assert.Equal(t, text, again)

	require.NoError(t, structure.Set(w, 0, SystemMessage))
	assert.Equal(t, int8(1), msg.Position)
}

func TestGameMode(t *testing.T) {
	cache := newCache(t)

	msg := &JoinGame{EntityID: 7, GameMode: int8(Creative)}
	w, err := cache.Wrap(msg)
	require.NoError(t, err)

	mode, err := structure.Get[GameMode](w, 0)
	require.NoError(t, err)
	assert.Equal(t, Creative, mode)
	assert.Equal(t, "creative", mode.String())

	require.NoError(t, structure.Set(w, 0, Spectator))
	assert.Equal(t, int8(3), msg.GameMode)

	id, err := w.Int32(0)
	require.NoError(t, err)
	assert.Equal(t, int32(7), id)
}

func TestEntityTeleport(t *testing.T) {
	cache := newCache(t)

	msg := &EntityTeleport{X: 1, Y: 2, Z: 3, Yaw: 4, Pitch: 5}
	msg.SetEntity(9)
	w, err := cache.Wrap(msg)
	require.NoError(t, err)

	y, err := w.Float64(1)
	require.NoError(t, err)
	assert.Equal(t, 2.0, y)

	pitch, err := structure.GetRaw[int8](w, 1)
	require.NoError(t, err)
	assert.Equal(t, int8(5), pitch)

	require.NoError(t, w.SetInt32(0, 11))
	assert.Equal(t, int32(11), msg.Entity())
}
