package app

import (
	"context"
	"errors"
	"net"
	"sync"
	"time"

	"gfx.cafe/util/go/gotel"
	"github.com/caddyserver/caddy/v2"
	"go.uber.org/zap"

	"gfx.cafe/gfx/protocolcontrol/lib/event"
	"gfx.cafe/gfx/protocolcontrol/lib/fed"
	"gfx.cafe/gfx/protocolcontrol/lib/fed/codecs/jsonl"
	"gfx.cafe/gfx/protocolcontrol/lib/intercept"
	"gfx.cafe/gfx/protocolcontrol/lib/packets"
	"gfx.cafe/gfx/protocolcontrol/lib/protocol"
)

const hubStage = "protocolcontrol_hub"

func init() {
	caddy.RegisterModule((*App)(nil))
}

// App serves the bundled chat protocol with protocol control enabled on every listener.
type App struct {
	Config

	service   *protocol.Service
	hub       *Hub
	acceptors []*fed.Acceptor
	shutdown  gotel.ShutdownFunc

	cancel context.CancelFunc
	wg     sync.WaitGroup
	log    *zap.Logger
}

// New builds an app outside of caddy.
func New(config Config, log *zap.Logger) (*App, error) {
	T := &App{
		Config: config,
	}
	if err := T.provision(context.Background(), log); err != nil {
		return nil, err
	}
	return T, nil
}

func (T *App) CaddyModule() caddy.ModuleInfo {
	return caddy.ModuleInfo{
		ID: "protocolcontrol",
		New: func() caddy.Module {
			return new(App)
		},
	}
}

func (T *App) Provision(ctx caddy.Context) error {
	return T.provision(ctx, ctx.Logger(T))
}

func (T *App) provision(ctx context.Context, log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}
	T.log = log

	if T.Tracing != nil {
		shutdown, err := T.Tracing.init(ctx)
		if err != nil {
			return err
		}
		T.shutdown = shutdown
	}

	c := packets.Catalog()
	T.hub = NewHub(c, log.Named("hub"))
	T.service = protocol.NewService(c, protocol.Options{
		Workers:      T.Workers,
		Login:        packets.Identity,
		Translations: packets.Register,
		Resolver:     T.hub,
	}, log)
	return nil
}

func (T *App) Service() *protocol.Service {
	return T.service
}

func (T *App) Hub() *Hub {
	return T.hub
}

// Addrs returns the addresses of the running listeners.
func (T *App) Addrs() []net.Addr {
	addrs := make([]net.Addr, 0, len(T.acceptors))
	for _, a := range T.acceptors {
		addrs = append(addrs, a.Addr())
	}
	return addrs
}

func (T *App) listeners() []event.Listener {
	var listeners []event.Listener
	if T.Chat.Log {
		listeners = append(listeners, &chatLogger{log: T.log.Named("chat")})
	}
	for _, filter := range T.Chat.Filters {
		listeners = append(listeners, newWordFilter(filter))
	}
	if T.Chat.Prefix != "" {
		listeners = append(listeners, &chatPrefix{prefix: T.Chat.Prefix, cache: T.service.Remapper()})
	}
	return listeners
}

func (T *App) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	T.cancel = cancel

	T.acceptors = make([]*fed.Acceptor, 0, len(T.Listen))
	endpoints := make([]intercept.Endpoint, 0, len(T.Listen))
	for _, address := range T.Listen {
		l, err := fed.Listen(ctx, address)
		if err != nil {
			T.abort()
			return err
		}
		a := fed.NewAcceptor(l, jsonl.NewCodec, T.log)
		if err = a.Pipeline().AddLast(hubStage, T.hub); err != nil {
			_ = a.Close()
			T.abort()
			return err
		}
		T.acceptors = append(T.acceptors, a)
		endpoints = append(endpoints, a)
	}

	if err := T.service.Enable(endpoints...); err != nil {
		T.abort()
		return err
	}
	for _, listener := range T.listeners() {
		if err := T.service.Events().Subscribe(listener); err != nil {
			T.service.Disable()
			T.abort()
			return err
		}
	}

	for _, a := range T.acceptors {
		T.log.Info("listening", zap.Stringer("addr", a.Addr()))
		T.wg.Add(1)
		go func() {
			defer T.wg.Done()
			if err := a.Serve(ctx); err != nil {
				T.log.Error("listener failed", zap.Stringer("addr", a.Addr()), zap.Error(err))
			}
		}()
	}

	if period := T.StatLogPeriod.Duration(); period > 0 {
		T.wg.Add(1)
		go func() {
			defer T.wg.Done()
			T.logStats(ctx, period)
		}()
	}

	return nil
}

// abort closes whatever Start opened before it failed.
func (T *App) abort() {
	for _, a := range T.acceptors {
		_ = a.Close()
	}
	T.acceptors = nil
	T.cancel()
}

func (T *App) logStats(ctx context.Context, period time.Duration) {
	ticker := time.NewTicker(period)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			T.log.Info(
				"protocol control stats",
				zap.Int("players", T.hub.Players()),
				zap.Int("profiles", T.service.Channels().Len()),
				zap.Int("subscriptions", T.service.Events().Len()),
				zap.Int("structures", T.service.Remapper().Len()),
			)
		}
	}
}

func (T *App) Stop() error {
	T.service.Disable()
	if T.cancel != nil {
		T.cancel()
	}

	var errs []error
	for _, a := range T.acceptors {
		if err := a.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			errs = append(errs, err)
		}
	}
	T.wg.Wait()
	return errors.Join(errs...)
}

func (T *App) Cleanup() error {
	if T.shutdown != nil {
		return T.shutdown(context.Background())
	}
	return nil
}

var _ caddy.Module = (*App)(nil)
var _ caddy.Provisioner = (*App)(nil)
var _ caddy.App = (*App)(nil)
var _ caddy.CleanerUpper = (*App)(nil)
