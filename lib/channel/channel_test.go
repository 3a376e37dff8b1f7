package channel

import (
	"context"
	"io"
	"net"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"gfx.cafe/gfx/protocolcontrol/lib/catalog"
	"gfx.cafe/gfx/protocolcontrol/lib/fed"
)

type memCodec struct {
	mu     sync.Mutex
	writes []any
	closed chan struct{}
	once   sync.Once
}

func newMemCodec() *memCodec {
	return &memCodec{
		closed: make(chan struct{}),
	}
}

func (T *memCodec) ReadMessage() (any, error) {
	<-T.closed
	return nil, io.EOF
}

func (T *memCodec) WriteMessage(msg any) error {
	T.mu.Lock()
	defer T.mu.Unlock()
	T.writes = append(T.writes, msg)
	return nil
}

func (T *memCodec) Written() []any {
	T.mu.Lock()
	defer T.mu.Unlock()
	return append([]any(nil), T.writes...)
}

func (*memCodec) RemoteAddr() net.Addr {
	return nil
}

func (T *memCodec) Close() error {
	T.once.Do(func() {
		close(T.closed)
	})
	return nil
}

type recorder struct {
	reads chan any
}

func (T *recorder) Read(_ *fed.Context, msg any) error {
	T.reads <- msg
	return nil
}

type inTagger struct{}

func (inTagger) Read(ctx *fed.Context, msg any) error {
	return ctx.FireRead("tagged " + msg.(string))
}

type outTagger struct{}

func (outTagger) Write(ctx *fed.Context, msg any, promise *fed.Promise) error {
	return ctx.Write("tagged "+msg.(string), promise)
}

type activeHook func()

func (T activeHook) Active(ctx *fed.Context) error {
	T()
	return ctx.FireActive()
}

// serve starts conn and returns once its profile is active.
func serve(t *testing.T, conn *fed.Conn, p *Profile) chan error {
	active := make(chan struct{})
	require.NoError(t, conn.Pipeline().AddFirst("active", activeHook(func() {
		p.SetActive(true)
		close(active)
	})))

	done := make(chan error, 1)
	go func() {
		done <- conn.Serve(context.Background())
	}()
	select {
	case <-active:
	case <-time.After(5 * time.Second):
		t.Fatal("connection never became active")
	}
	return done
}

func TestProfile_SetID(t *testing.T) {
	conn := fed.NewConn(newMemCodec(), zaptest.NewLogger(t))
	defer conn.Loop().Close()
	p := NewProfile(conn, nil)

	_, ok := p.ID()
	assert.False(t, ok)

	id := uuid.New()
	require.NoError(t, p.SetID(id))
	require.NoError(t, p.SetID(id))
	assert.ErrorIs(t, p.SetID(uuid.New()), ErrIDAssigned)

	got, ok := p.ID()
	require.True(t, ok)
	assert.Equal(t, id, got)
}

func TestProfile_SendSkipsInterceptStages(t *testing.T) {
	codec := newMemCodec()
	conn := fed.NewConn(codec, zaptest.NewLogger(t))

	rec := &recorder{reads: make(chan any, 4)}
	pipeline := conn.Pipeline()
	require.NoError(t, pipeline.AddLast(fed.DecoderStage, inTagger{}))
	require.NoError(t, pipeline.AddLast(IncomingStage, inTagger{}))
	require.NoError(t, pipeline.AddLast(fed.HandlerStage, rec))
	require.NoError(t, pipeline.AddLast(OutgoingStage, outTagger{}))

	p := NewProfile(conn, nil)
	done := serve(t, conn, p)

	p.Send(catalog.Incoming, "in")
	assert.Equal(t, "in", <-rec.reads)

	p.Send(catalog.Outgoing, "out")
	promise := conn.Write("normal")
	require.NoError(t, promise.Wait(context.Background()))
	assert.Equal(t, []any{"out", "tagged normal"}, codec.Written())

	require.NoError(t, conn.Close())
	require.NoError(t, <-done)
}

func TestProfile_SendAfterTeardown(t *testing.T) {
	codec := newMemCodec()
	conn := fed.NewConn(codec, zaptest.NewLogger(t))
	p := NewProfile(conn, nil)

	done := serve(t, conn, p)
	assert.True(t, p.IsActive())

	require.NoError(t, conn.Close())
	require.NoError(t, <-done)
	assert.False(t, p.IsActive())

	p.Send(catalog.Outgoing, "late")
	p.SendInline(catalog.Outgoing, "late")
	p.Execute(func(*Profile) {
		t.Error("expected execute after teardown to do nothing")
	})
	assert.Empty(t, codec.Written())
}

func newProfileWithID(t *testing.T) (*Profile, uuid.UUID) {
	conn := fed.NewConn(newMemCodec(), zaptest.NewLogger(t))
	conn.Loop().Close()
	p := NewProfile(conn, nil)
	id := uuid.New()
	require.NoError(t, p.SetID(id))
	return p, id
}

func TestTable_AddRemove(t *testing.T) {
	var table Table

	p, id := newProfileWithID(t)
	assert.ErrorIs(t, table.Add(p), ErrDisabled)

	table.Enable()
	require.NoError(t, table.Add(p))
	require.NoError(t, table.Add(p))

	other, _ := newProfileWithID(t)
	require.NoError(t, table.Add(other))

	found, ok := table.Profile(id)
	require.True(t, ok)
	assert.Same(t, p, found)
	assert.Equal(t, 2, table.Len())

	dup := NewProfile(p.Conn(), nil)
	require.NoError(t, dup.SetID(id))
	assert.ErrorIs(t, table.Add(dup), ErrIDInUse)
	assert.False(t, table.RemoveProfile(dup))

	assert.True(t, table.RemoveProfile(p))
	_, ok = table.Profile(id)
	assert.False(t, ok)

	table.Disable()
	assert.Equal(t, 0, table.Len())
	runtime.KeepAlive(other)
}

func TestTable_WeakEntries(t *testing.T) {
	var table Table
	table.Enable()

	id := func() uuid.UUID {
		p, id := newProfileWithID(t)
		require.NoError(t, table.Add(p))
		return id
	}()

	require.Eventually(t, func() bool {
		runtime.GC()
		_, ok := table.Profile(id)
		return !ok && table.profiles.Len() == 0
	}, 5*time.Second, 10*time.Millisecond)
}
