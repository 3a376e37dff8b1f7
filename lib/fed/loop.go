package fed

import (
	"go.uber.org/zap"

	"gfx.cafe/gfx/protocolcontrol/lib/util/queue"
)

// EventLoop runs tasks one at a time on a single goroutine in the order they were submitted. Every stage call of a
// connection happens on its loop, so stages need no locking of their own.
type EventLoop struct {
	tasks queue.FIFO[func()]
	done  chan struct{}
	log   *zap.Logger
}

func NewEventLoop(log *zap.Logger) *EventLoop {
	if log == nil {
		log = zap.NewNop()
	}
	l := &EventLoop{
		done: make(chan struct{}),
		log:  log,
	}
	go l.run()
	return l
}

func (T *EventLoop) run() {
	defer close(T.done)
	for {
		task, ok := T.tasks.Pop()
		if !ok {
			return
		}
		T.do(task)
	}
}

func (T *EventLoop) do(task func()) {
	defer func() {
		if r := recover(); r != nil {
			T.log.Error("event loop task panicked", zap.Any("panic", r))
		}
	}()
	task()
}

// Execute schedules task. It returns false once the loop is closed.
func (T *EventLoop) Execute(task func()) bool {
	return T.tasks.Push(task)
}

// Close stops accepting tasks. Tasks already scheduled still run.
func (T *EventLoop) Close() {
	T.tasks.Close()
}

// Done is closed once the loop has run its last task.
func (T *EventLoop) Done() <-chan struct{} {
	return T.done
}
