package fed

import (
	"net"
)

// Codec turns a byte stream into messages and back. ReadMessage is only called from the serving goroutine and
// WriteMessage only from the connection's loop.
type Codec interface {
	ReadMessage() (any, error)
	WriteMessage(msg any) error
	RemoteAddr() net.Addr
	Close() error
}
