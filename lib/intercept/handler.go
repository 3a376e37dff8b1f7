package intercept

import (
	"reflect"

	"go.uber.org/zap"

	"gfx.cafe/gfx/protocolcontrol/lib/channel"
	"gfx.cafe/gfx/protocolcontrol/lib/fed"
)

// Handler owns a connection's interception. It is added as a placeholder by the Initializer and moves itself into
// place, along with the incoming and outgoing stages, once the connection becomes active.
type Handler struct {
	profile  *channel.Profile
	options  *Options
	injected bool
}

func newHandler(profile *channel.Profile, options *Options) *Handler {
	return &Handler{
		profile: profile,
		options: options,
	}
}

func (T *Handler) Profile() *channel.Profile {
	return T.profile
}

func (T *Handler) Active(ctx *fed.Context) error {
	if T.injected {
		return ctx.FireActive()
	}
	T.injected = true

	log := T.profile.Logger()
	p := ctx.Pipeline()
	if p.Context(fed.DecoderStage) == nil || p.Context(fed.HandlerStage) == nil {
		log.Warn(
			"pipeline is missing protocol stages, connection will not be intercepted",
			zap.Strings("stages", p.Names()),
		)
		if _, err := p.Remove(T); err != nil {
			log.Warn("failed to remove channel placeholder", zap.Error(err))
		}
		return ctx.FireActive()
	}

	if err := T.inject(p); err != nil {
		log.Warn("failed to inject interception stages, connection will not be intercepted", zap.Error(err), zap.Strings("stages", p.Names()))
		return ctx.FireActive()
	}

	if T.options.Login.Type != nil {
		if err := T.options.Cache.Prebuild(T.options.Login.Type); err != nil {
			log.Warn("failed to build login structure", zap.Error(err))
		}
	}

	T.profile.SetActive(true)
	return ctx.FireActive()
}

// inject moves the handler into place and adds the incoming and outgoing stages. On failure every stage it added
// is taken out again, leaving the handler outside the pipeline.
func (T *Handler) inject(p *fed.Pipeline) (err error) {
	in := &incoming{
		bus:     T.options.Bus,
		profile: T.profile,
	}
	out := &outgoing{
		bus:     T.options.Bus,
		profile: T.profile,
	}

	if _, err = p.Remove(T); err != nil {
		return err
	}
	defer func() {
		if err == nil {
			return
		}
		for _, stage := range [...]fed.Stage{T, in, out} {
			_, _ = p.Remove(stage)
		}
	}()

	if err = p.AddBefore(fed.HandlerStage, channel.ChannelStage, T); err != nil {
		return err
	}
	if err = p.AddAfter(fed.DecoderStage, channel.IncomingStage, in); err != nil {
		return err
	}
	return p.AddAfter(fed.HandlerStage, channel.OutgoingStage, out)
}

func (T *Handler) Write(ctx *fed.Context, msg any, promise *fed.Promise) error {
	if T.options.Login.matches(msg) {
		T.login(msg)
	}
	return ctx.Write(msg, promise)
}

// login registers the principal of a login message. Failures, panics included, are logged and never stop the write.
func (T *Handler) login(msg any) {
	log := T.profile.Logger()
	defer func() {
		if r := recover(); r != nil {
			log.Error("panic while reading principal from login", zap.Any("panic", r), zap.String("message", reflect.TypeOf(msg).String()))
		}
	}()

	id, err := T.options.Login.extract(T.options.Cache, msg)
	if err != nil {
		log.Warn("failed to read principal from login", zap.Error(err))
		return
	}
	if err = T.profile.SetID(id); err != nil {
		log.Warn("failed to assign principal", zap.Stringer("principal", id), zap.Error(err))
		return
	}
	if err = T.options.Table.Add(T.profile); err != nil {
		log.Warn("failed to register principal", zap.Stringer("principal", id), zap.Error(err))
		return
	}
	T.profile.Logger().Debug("principal logged in")
}

func (T *Handler) Inactive(ctx *fed.Context) error {
	T.options.Table.RemoveProfile(T.profile)
	T.profile.SetActive(false)
	return ctx.FireInactive()
}

var _ fed.ActiveStage = (*Handler)(nil)
var _ fed.OutboundStage = (*Handler)(nil)
var _ fed.InactiveStage = (*Handler)(nil)
