package jsonl

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"sync"

	"github.com/bytedance/sonic"

	"gfx.cafe/gfx/protocolcontrol/lib/fed"
)

// Frame is one line on the wire.
type Frame struct {
	Kind string          `json:"kind"`
	Body json.RawMessage `json:"body,omitempty"`
}

// Codec reads and writes newline delimited frames.
type Codec struct {
	conn    net.Conn
	decoder sonic.Decoder
	writer  *bufio.Writer
	encoder sonic.Encoder

	mu sync.Mutex
}

func NewCodec(conn net.Conn) fed.Codec {
	writer := bufio.NewWriter(conn)
	return &Codec{
		conn:    conn,
		decoder: sonic.ConfigStd.NewDecoder(conn),
		writer:  writer,
		encoder: sonic.ConfigStd.NewEncoder(writer),
	}
}

func (T *Codec) ReadMessage() (any, error) {
	var frame Frame
	if err := T.decoder.Decode(&frame); err != nil {
		return nil, err
	}
	return &frame, nil
}

func (T *Codec) WriteMessage(msg any) error {
	var frame *Frame
	switch m := msg.(type) {
	case *Frame:
		frame = m
	case Frame:
		frame = &m
	default:
		return fmt.Errorf("jsonl: cannot write %T, add an encoder stage", msg)
	}

	T.mu.Lock()
	defer T.mu.Unlock()
	if err := T.encoder.Encode(frame); err != nil {
		return err
	}
	return T.writer.Flush()
}

func (T *Codec) RemoteAddr() net.Addr {
	return T.conn.RemoteAddr()
}

func (T *Codec) Close() error {
	return T.conn.Close()
}

var _ fed.Codec = (*Codec)(nil)
