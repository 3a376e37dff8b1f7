package fed

import (
	"context"
	"errors"
	"net"
	"sync"

	"go.uber.org/zap"

	"gfx.cafe/gfx/protocolcontrol/lib/instrumentation/prom"
)

// Acceptor accepts connections from a listener. Every new Conn is fired as a read through the acceptor's own
// pipeline before it is served, so acceptor stages can set up the connection's pipeline.
type Acceptor struct {
	listener net.Listener
	newCodec func(net.Conn) Codec
	pipeline *Pipeline
	log      *zap.Logger

	wg sync.WaitGroup
}

func NewAcceptor(listener net.Listener, newCodec func(net.Conn) Codec, log *zap.Logger) *Acceptor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Acceptor{
		listener: listener,
		newCodec: newCodec,
		pipeline: NewPipeline(nil),
		log:      log.With(zap.Stringer("listen_addr", listener.Addr())),
	}
}

func (T *Acceptor) Pipeline() *Pipeline {
	return T.pipeline
}

func (T *Acceptor) Addr() net.Addr {
	return T.listener.Addr()
}

// Serve accepts until the listener is closed or ctx is cancelled, then waits for every connection to finish. Both
// of those end it without an error.
func (T *Acceptor) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		<-ctx.Done()
		_ = T.listener.Close()
	}()

	labels := prom.ListenerLabels{ListenAddr: T.listener.Addr().String()}

	var err error
	for {
		var raw net.Conn
		raw, err = T.listener.Accept()
		if err != nil {
			break
		}
		prom.Listener.Incoming(labels).Inc()

		conn := NewConn(T.newCodec(raw), T.log)
		if err := T.pipeline.FireRead(conn); err != nil {
			T.log.Warn("failed to initialize connection", zap.Stringer("conn", conn.ID()), zap.Error(err))
			_ = conn.Close()
			conn.Loop().Close()
			continue
		}
		prom.Listener.Accepted(labels).Inc()

		T.wg.Add(1)
		go func() {
			defer T.wg.Done()
			prom.Listener.Client(labels).Inc()
			defer prom.Listener.Client(labels).Dec()

			if err := conn.Serve(ctx); err != nil {
				conn.Logger().Debug("connection closed", zap.Error(err))
			}
		}()
	}

	T.wg.Wait()
	if errors.Is(err, net.ErrClosed) || ctx.Err() != nil {
		return nil
	}
	return err
}

func (T *Acceptor) Close() error {
	return T.listener.Close()
}
