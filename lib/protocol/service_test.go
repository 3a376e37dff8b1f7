package protocol

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"gfx.cafe/gfx/protocolcontrol/lib/channel"
	"gfx.cafe/gfx/protocolcontrol/lib/fed"
	"gfx.cafe/gfx/protocolcontrol/lib/fed/codecs/jsonl"
	"gfx.cafe/gfx/protocolcontrol/lib/packets"
	"gfx.cafe/gfx/protocolcontrol/lib/translate"
)

func newAcceptor(t *testing.T) *fed.Acceptor {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	a := fed.NewAcceptor(l, jsonl.NewCodec, zaptest.NewLogger(t))
	t.Cleanup(func() {
		_ = a.Close()
	})
	return a
}

func newService(t *testing.T) *Service {
	return NewService(packets.Catalog(), Options{
		Workers:      2,
		Login:        packets.Identity,
		Translations: packets.Register,
	}, zaptest.NewLogger(t))
}

func TestService_EnableDisable(t *testing.T) {
	s := newService(t)
	a := newAcceptor(t)

	require.NoError(t, s.Enable(a))
	assert.True(t, s.Enabled())
	assert.True(t, s.Translations().Sealed())
	assert.Equal(t, 4, s.Translations().Len())
	assert.True(t, s.Events().Enabled())
	assert.True(t, s.Channels().Enabled())
	assert.True(t, s.Injector().Enabled())
	assert.Equal(t, []string{channel.InitializerStage}, a.Pipeline().Names())
	assert.Equal(t, 9, s.Remapper().Len())

	assert.ErrorIs(t, s.Enable(a), ErrEnabled)

	s.Disable()
	assert.False(t, s.Enabled())
	assert.False(t, s.Events().Enabled())
	assert.False(t, s.Channels().Enabled())
	assert.Empty(t, a.Pipeline().Names())

	require.NoError(t, s.Enable(a))
	assert.Equal(t, []string{channel.InitializerStage}, a.Pipeline().Names())
	s.Disable()
}

func TestService_TranslationsFailure(t *testing.T) {
	s := NewService(packets.Catalog(), Options{
		Translations: func(r *translate.Registry) error {
			if err := packets.Register(r); err != nil {
				return err
			}
			return packets.Register(r)
		},
	}, zaptest.NewLogger(t))

	assert.ErrorIs(t, s.Enable(), translate.ErrDuplicate)
	assert.False(t, s.Enabled())
	assert.False(t, s.Events().Enabled())
}
