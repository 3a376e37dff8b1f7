package jsonl

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/bytedance/sonic"

	"gfx.cafe/gfx/protocolcontrol/lib/catalog"
	"gfx.cafe/gfx/protocolcontrol/lib/fed"
)

var ErrUnknownKind = errors.New("unknown message kind")

// Decoder turns frames into catalog messages. Direction is the direction of the messages it reads, Incoming for a
// server.
type Decoder struct {
	Catalog   *catalog.Catalog
	Direction catalog.Direction
}

func (T *Decoder) Read(ctx *fed.Context, msg any) error {
	frame, ok := msg.(*Frame)
	if !ok {
		return ctx.FireRead(msg)
	}

	kind, ok := T.Catalog.ByName(frame.Kind)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownKind, frame.Kind)
	}
	message, err := kind.Create(T.Direction)
	if err != nil {
		return err
	}
	if len(frame.Body) > 0 {
		if err = sonic.ConfigStd.Unmarshal(frame.Body, message); err != nil {
			return fmt.Errorf("decode %s: %w", frame.Kind, err)
		}
	}
	return ctx.FireRead(message)
}

// Encoder turns catalog messages into frames. Direction is the direction of the messages it writes, Outgoing for a
// server.
type Encoder struct {
	Catalog   *catalog.Catalog
	Direction catalog.Direction
}

func (T *Encoder) Write(ctx *fed.Context, msg any, promise *fed.Promise) error {
	switch msg.(type) {
	case *Frame, Frame:
		return ctx.Write(msg, promise)
	}

	kind, ok := T.Catalog.ByType(reflect.TypeOf(msg), T.Direction)
	if !ok {
		err := fmt.Errorf("%w: %T", ErrUnknownKind, msg)
		promise.Complete(err)
		return err
	}
	body, err := sonic.ConfigStd.Marshal(msg)
	if err != nil {
		promise.Complete(err)
		return fmt.Errorf("encode %s: %w", kind.Name, err)
	}
	return ctx.Write(&Frame{
		Kind: kind.Name,
		Body: body,
	}, promise)
}

var _ fed.InboundStage = (*Decoder)(nil)
var _ fed.OutboundStage = (*Encoder)(nil)
