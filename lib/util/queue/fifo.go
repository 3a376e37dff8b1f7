package queue

import "sync"

// FIFO is an unbounded first in first out queue backed by a growable ring buffer. Pop blocks until an item is
// available or the queue is closed. The zero value is ready to use.
type FIFO[T any] struct {
	buf    []T
	head   int
	length int
	closed bool

	signal sync.Cond
	mu     sync.Mutex
}

func (T *FIFO[V]) init() {
	if T.signal.L == nil {
		T.signal.L = &T.mu
	}
}

func (T *FIFO[V]) grow() {
	size := len(T.buf) * 2
	if size == 0 {
		size = 8
	}

	buf := make([]V, size)
	n := copy(buf, T.buf[T.head:])
	copy(buf[n:], T.buf[:T.head])
	T.head = 0
	T.buf = buf
}

// Push appends item. It returns false if the queue has been closed.
func (T *FIFO[V]) Push(item V) bool {
	T.mu.Lock()
	defer T.mu.Unlock()
	T.init()

	if T.closed {
		return false
	}

	if T.length == len(T.buf) {
		T.grow()
	}
	T.buf[(T.head+T.length)%len(T.buf)] = item
	T.length++
	T.signal.Signal()
	return true
}

func (T *FIFO[V]) pop() V {
	item := T.buf[T.head]
	T.buf[T.head] = *new(V)
	T.head = (T.head + 1) % len(T.buf)
	T.length--
	return item
}

// Pop removes the oldest item, blocking while the queue is empty. ok is false once the queue is closed and drained.
func (T *FIFO[V]) Pop() (item V, ok bool) {
	T.mu.Lock()
	defer T.mu.Unlock()
	T.init()

	for T.length == 0 {
		if T.closed {
			return
		}
		T.signal.Wait()
	}

	return T.pop(), true
}

// TryPop is the non blocking version of Pop.
func (T *FIFO[V]) TryPop() (item V, ok bool) {
	T.mu.Lock()
	defer T.mu.Unlock()

	if T.length == 0 {
		return
	}
	return T.pop(), true
}

func (T *FIFO[V]) Len() int {
	T.mu.Lock()
	defer T.mu.Unlock()
	return T.length
}

// Close rejects further pushes and wakes every blocked Pop. Items already queued can still be popped.
func (T *FIFO[V]) Close() {
	T.mu.Lock()
	defer T.mu.Unlock()
	T.init()

	T.closed = true
	T.signal.Broadcast()
}

// Drain closes the queue and returns every item that was still queued.
func (T *FIFO[V]) Drain() []V {
	T.mu.Lock()
	defer T.mu.Unlock()
	T.init()

	T.closed = true
	T.signal.Broadcast()

	items := make([]V, 0, T.length)
	for T.length > 0 {
		items = append(items, T.pop())
	}
	return items
}
