package fed

import (
	"errors"
	"fmt"
	"sync"
)

var (
	ErrDuplicateName = errors.New("stage name already in use")
	ErrStageNotFound = errors.New("stage not found")
	ErrNoCodec       = errors.New("pipeline has no codec to write to")
)

const (
	headName = "head"
	tailName = "tail"
)

// Pipeline is an ordered chain of named stages. Reads travel from the head to the tail, writes from the tail to the
// head.
type Pipeline struct {
	conn *Conn

	head, tail *Context
	names      map[string]*Context

	mu sync.RWMutex
}

// NewPipeline creates an empty pipeline for conn. conn may be nil, in which case writes that reach the head fail.
func NewPipeline(conn *Conn) *Pipeline {
	p := &Pipeline{
		conn:  conn,
		names: make(map[string]*Context),
	}
	p.head = &Context{
		name:     headName,
		stage:    headStage{},
		pipeline: p,
	}
	p.tail = &Context{
		name:     tailName,
		stage:    tailStage{},
		pipeline: p,
	}
	p.head.next = p.tail
	p.tail.prev = p.head
	return p
}

func (T *Pipeline) Conn() *Conn {
	return T.conn
}

// link inserts a new context between prev and prev.next. mu must be held.
func (T *Pipeline) link(prev *Context, name string, stage Stage) error {
	if name == headName || name == tailName {
		return fmt.Errorf("%w: %s", ErrDuplicateName, name)
	}
	if _, ok := T.names[name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateName, name)
	}

	c := &Context{
		name:     name,
		stage:    stage,
		pipeline: T,
		prev:     prev,
		next:     prev.next,
	}
	prev.next.prev = c
	prev.next = c
	T.names[name] = c
	return nil
}

func (T *Pipeline) AddFirst(name string, stage Stage) error {
	T.mu.Lock()
	defer T.mu.Unlock()
	return T.link(T.head, name, stage)
}

func (T *Pipeline) AddLast(name string, stage Stage) error {
	T.mu.Lock()
	defer T.mu.Unlock()
	return T.link(T.tail.prev, name, stage)
}

// AddBefore inserts stage directly before the stage named base.
func (T *Pipeline) AddBefore(base, name string, stage Stage) error {
	T.mu.Lock()
	defer T.mu.Unlock()
	c, ok := T.names[base]
	if !ok {
		return fmt.Errorf("%w: %s", ErrStageNotFound, base)
	}
	return T.link(c.prev, name, stage)
}

// AddAfter inserts stage directly after the stage named base.
func (T *Pipeline) AddAfter(base, name string, stage Stage) error {
	T.mu.Lock()
	defer T.mu.Unlock()
	c, ok := T.names[base]
	if !ok {
		return fmt.Errorf("%w: %s", ErrStageNotFound, base)
	}
	return T.link(c, name, stage)
}

// unlink removes c from the chain. c keeps its own links. mu must be held.
func (T *Pipeline) unlink(c *Context) {
	c.prev.next = c.next
	c.next.prev = c.prev
	delete(T.names, c.name)
}

// Remove removes stage, compared by identity, and returns the name it was added under.
func (T *Pipeline) Remove(stage Stage) (string, error) {
	T.mu.Lock()
	defer T.mu.Unlock()
	for c := T.head.next; c != T.tail; c = c.next {
		if c.stage == stage {
			T.unlink(c)
			return c.name, nil
		}
	}
	return "", ErrStageNotFound
}

func (T *Pipeline) RemoveName(name string) (Stage, error) {
	T.mu.Lock()
	defer T.mu.Unlock()
	c, ok := T.names[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrStageNotFound, name)
	}
	T.unlink(c)
	return c.stage, nil
}

// Context returns the context of the stage named name, or nil.
func (T *Pipeline) Context(name string) *Context {
	T.mu.RLock()
	defer T.mu.RUnlock()
	return T.names[name]
}

// ContextOf returns the context of stage, compared by identity, or nil.
func (T *Pipeline) ContextOf(stage Stage) *Context {
	T.mu.RLock()
	defer T.mu.RUnlock()
	for c := T.head.next; c != T.tail; c = c.next {
		if c.stage == stage {
			return c
		}
	}
	return nil
}

// Names lists the stages from head to tail.
func (T *Pipeline) Names() []string {
	T.mu.RLock()
	defer T.mu.RUnlock()
	names := make([]string, 0, len(T.names))
	for c := T.head.next; c != T.tail; c = c.next {
		names = append(names, c.name)
	}
	return names
}

func (T *Pipeline) FireRead(msg any) error {
	return T.head.FireRead(msg)
}

func (T *Pipeline) Write(msg any, promise *Promise) error {
	return T.tail.Write(msg, promise)
}

func (T *Pipeline) FireActive() error {
	return T.head.FireActive()
}

func (T *Pipeline) FireInactive() error {
	return T.head.FireInactive()
}

type headStage struct{}

func (headStage) Write(ctx *Context, msg any, promise *Promise) error {
	conn := ctx.Conn()
	if conn == nil {
		promise.Complete(ErrNoCodec)
		return ErrNoCodec
	}
	err := conn.codec.WriteMessage(msg)
	promise.Complete(err)
	return err
}

// tailStage drops whatever reaches it.
type tailStage struct{}

func (tailStage) Read(*Context, any) error {
	return nil
}

var _ OutboundStage = headStage{}
var _ InboundStage = tailStage{}
