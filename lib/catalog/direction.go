package catalog

import "errors"

var ErrInvalidDirection = errors.New("invalid direction")

// Direction is the side of a connection a message travels from.
type Direction int

const (
	Unspecified Direction = iota
	// Incoming messages are read from the remote peer.
	Incoming
	// Outgoing messages are written to the remote peer.
	Outgoing
)

func (T Direction) Valid() bool {
	return T >= Unspecified && T <= Outgoing
}

func (T Direction) String() string {
	switch T {
	case Unspecified:
		return "unspecified"
	case Incoming:
		return "incoming"
	case Outgoing:
		return "outgoing"
	default:
		return "invalid"
	}
}
