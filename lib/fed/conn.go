package fed

import (
	"context"
	"errors"
	"io"
	"net"
	"sync"
	"sync/atomic"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

var ErrClosed = errors.New("connection closed")

// Conn is one accepted connection: a codec, the pipeline its messages travel through and the loop the pipeline runs
// on.
type Conn struct {
	id       ulid.ULID
	codec    Codec
	pipeline *Pipeline
	loop     *EventLoop
	log      *zap.Logger

	active atomic.Bool
	closed sync.Once
}

func NewConn(codec Codec, log *zap.Logger) *Conn {
	if log == nil {
		log = zap.NewNop()
	}
	c := &Conn{
		id:    ulid.Make(),
		codec: codec,
	}
	c.log = log.With(zap.Stringer("conn", c.id))
	c.pipeline = NewPipeline(c)
	c.loop = NewEventLoop(c.log)
	return c
}

func (T *Conn) ID() ulid.ULID {
	return T.id
}

func (T *Conn) Pipeline() *Pipeline {
	return T.pipeline
}

func (T *Conn) Loop() *EventLoop {
	return T.loop
}

func (T *Conn) Logger() *zap.Logger {
	return T.log
}

func (T *Conn) RemoteAddr() net.Addr {
	return T.codec.RemoteAddr()
}

// IsActive reports whether the connection is being served.
func (T *Conn) IsActive() bool {
	return T.active.Load()
}

// Execute schedules fn on the connection's loop. It returns false once the connection has shut down.
func (T *Conn) Execute(fn func()) bool {
	return T.loop.Execute(fn)
}

// Write sends msg through the whole pipeline from the tail. The returned promise resolves when it reaches the codec.
func (T *Conn) Write(msg any) *Promise {
	promise := NewPromise()
	if !T.loop.Execute(func() {
		if err := T.pipeline.Write(msg, promise); err != nil {
			promise.Complete(err)
			T.log.Debug("write failed", zap.Error(err))
		}
	}) {
		promise.Complete(ErrClosed)
	}
	return promise
}

// Serve reads messages until the codec fails or ctx is cancelled. Every read is fired through the pipeline on the
// loop. Stages see Active before the first read and Inactive after the last.
func (T *Conn) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		<-ctx.Done()
		_ = T.Close()
	}()

	T.active.Store(true)
	T.loop.Execute(func() {
		if err := T.pipeline.FireActive(); err != nil {
			T.log.Warn("active stage failed", zap.Error(err))
		}
	})

	var err error
	for {
		var msg any
		msg, err = T.codec.ReadMessage()
		if err != nil {
			break
		}
		T.loop.Execute(func() {
			if err := T.pipeline.FireRead(msg); err != nil {
				T.log.Warn("read stage failed", zap.Error(err))
			}
		})
	}

	T.active.Store(false)
	T.loop.Execute(func() {
		if err := T.pipeline.FireInactive(); err != nil {
			T.log.Warn("inactive stage failed", zap.Error(err))
		}
	})
	T.loop.Close()
	<-T.loop.Done()
	_ = T.Close()

	if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
		return nil
	}
	return err
}

func (T *Conn) Close() error {
	var err error
	T.closed.Do(func() {
		err = T.codec.Close()
	})
	return err
}
