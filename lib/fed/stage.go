package fed

// Stage is anything added to a Pipeline. What a stage takes part in is decided by which of the interfaces below it
// implements. A stage that implements none of them is carried along but never called.
type Stage any

// InboundStage handles messages read from the remote peer. Call ctx.FireRead to pass a message on.
type InboundStage interface {
	Read(ctx *Context, msg any) error
}

// OutboundStage handles messages being written to the remote peer. Call ctx.Write to pass a message on.
type OutboundStage interface {
	Write(ctx *Context, msg any, promise *Promise) error
}

// ActiveStage is notified when the connection starts serving. Call ctx.FireActive to propagate.
type ActiveStage interface {
	Active(ctx *Context) error
}

// InactiveStage is notified when the connection stops serving. Call ctx.FireInactive to propagate.
type InactiveStage interface {
	Inactive(ctx *Context) error
}
