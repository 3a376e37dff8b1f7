package intercept

import (
	"go.uber.org/zap"

	"gfx.cafe/gfx/protocolcontrol/lib/channel"
	"gfx.cafe/gfx/protocolcontrol/lib/fed"
)

// Initializer sits on an acceptor pipeline and prepares every accepted connection for interception.
type Initializer struct {
	options *Options
}

func (T *Initializer) Read(ctx *fed.Context, msg any) error {
	conn, ok := msg.(*fed.Conn)
	if !ok {
		return ctx.FireRead(msg)
	}

	profile := channel.NewProfile(conn, T.options.Resolver)
	if err := conn.Pipeline().AddFirst(channel.ChannelStage, newHandler(profile, T.options)); err != nil {
		conn.Logger().Warn("failed to add channel handler, connection will not be intercepted", zap.Error(err))
	}
	return ctx.FireRead(conn)
}

var _ fed.InboundStage = (*Initializer)(nil)
