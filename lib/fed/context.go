package fed

// Context is a stage's position in a Pipeline. A removed context keeps its links, so a stage may remove itself and
// still pass the current message on.
type Context struct {
	name     string
	stage    Stage
	pipeline *Pipeline

	prev, next *Context
}

func (T *Context) Name() string {
	return T.name
}

func (T *Context) Stage() Stage {
	return T.stage
}

func (T *Context) Pipeline() *Pipeline {
	return T.pipeline
}

// Conn returns the connection the pipeline belongs to, or nil for an acceptor pipeline.
func (T *Context) Conn() *Conn {
	return T.pipeline.conn
}

func (T *Context) following() *Context {
	T.pipeline.mu.RLock()
	defer T.pipeline.mu.RUnlock()
	return T.next
}

func (T *Context) preceding() *Context {
	T.pipeline.mu.RLock()
	defer T.pipeline.mu.RUnlock()
	return T.prev
}

// FireRead passes msg to the next inbound stage toward the tail.
func (T *Context) FireRead(msg any) error {
	for c := T.following(); c != nil; c = c.following() {
		if stage, ok := c.stage.(InboundStage); ok {
			return stage.Read(c, msg)
		}
	}
	return nil
}

// Write passes msg to the next outbound stage toward the head. The head hands it to the codec.
func (T *Context) Write(msg any, promise *Promise) error {
	for c := T.preceding(); c != nil; c = c.preceding() {
		if stage, ok := c.stage.(OutboundStage); ok {
			return stage.Write(c, msg, promise)
		}
	}
	promise.Complete(ErrNoCodec)
	return ErrNoCodec
}

func (T *Context) FireActive() error {
	for c := T.following(); c != nil; c = c.following() {
		if stage, ok := c.stage.(ActiveStage); ok {
			return stage.Active(c)
		}
	}
	return nil
}

func (T *Context) FireInactive() error {
	for c := T.following(); c != nil; c = c.following() {
		if stage, ok := c.stage.(InactiveStage); ok {
			return stage.Inactive(c)
		}
	}
	return nil
}
