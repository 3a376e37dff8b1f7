package jsonl

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"gfx.cafe/gfx/protocolcontrol/lib/catalog"
	"gfx.cafe/gfx/protocolcontrol/lib/fed"
)

type say struct {
	Text string `json:"text"`
}

type said struct {
	Text string `json:"text"`
	From string `json:"from"`
}

type echo struct {
	conn *fed.Conn
}

func (T *echo) Read(_ *fed.Context, msg any) error {
	s := msg.(*say)
	T.conn.Write(&said{Text: s.Text, From: "server"})
	return nil
}

func testCatalog(t *testing.T) *catalog.Catalog {
	var c catalog.Catalog
	require.NoError(t, c.Register(catalog.KindOf("say", (*say)(nil), (*said)(nil))))
	return &c
}

func TestCodec_Echo(t *testing.T) {
	server, client := net.Pipe()
	defer client.Close()

	c := testCatalog(t)
	conn := fed.NewConn(NewCodec(server), zaptest.NewLogger(t))
	p := conn.Pipeline()
	require.NoError(t, p.AddLast(fed.DecoderStage, &Decoder{Catalog: c, Direction: catalog.Incoming}))
	require.NoError(t, p.AddLast(fed.EncoderStage, &Encoder{Catalog: c, Direction: catalog.Outgoing}))
	require.NoError(t, p.AddLast(fed.HandlerStage, &echo{conn: conn}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		_ = conn.Serve(ctx)
	}()

	peer := NewCodec(client)
	require.NoError(t, peer.WriteMessage(&Frame{Kind: "say", Body: []byte(`{"text":"hi"}`)}))

	require.NoError(t, client.SetReadDeadline(time.Now().Add(5*time.Second)))
	msg, err := peer.ReadMessage()
	require.NoError(t, err)

	frame := msg.(*Frame)
	assert.Equal(t, "say", frame.Kind)
	assert.JSONEq(t, `{"text":"hi","from":"server"}`, string(frame.Body))
}

func TestEncoder_UnknownType(t *testing.T) {
	p := fed.NewPipeline(nil)
	require.NoError(t, p.AddLast(fed.EncoderStage, &Encoder{Catalog: testCatalog(t), Direction: catalog.Outgoing}))

	promise := fed.NewPromise()
	err := p.Write(&say{}, promise)
	assert.ErrorIs(t, err, ErrUnknownKind)
	assert.ErrorIs(t, promise.Wait(context.Background()), ErrUnknownKind)
}

func TestDecoder_UnknownKind(t *testing.T) {
	p := fed.NewPipeline(nil)
	require.NoError(t, p.AddLast(fed.DecoderStage, &Decoder{Catalog: testCatalog(t), Direction: catalog.Incoming}))

	assert.ErrorIs(t, p.FireRead(&Frame{Kind: "shout"}), ErrUnknownKind)
}
