package workers

import (
	"context"
	"errors"
	"runtime"
	"sync"

	"gfx.cafe/gfx/protocolcontrol/lib/util/queue"
)

var ErrClosed = errors.New("worker pool closed")

// Task is a unit of work for a Pool. Drop is called instead of Run when the pool closes before the task starts.
type Task interface {
	Run(ctx context.Context)
	Drop()
}

// TaskFunc adapts a plain func into a Task whose Drop does nothing.
type TaskFunc func(ctx context.Context)

func (T TaskFunc) Run(ctx context.Context) {
	T(ctx)
}

func (TaskFunc) Drop() {}

// Pool runs tasks on a fixed number of goroutines in submission order.
type Pool struct {
	tasks queue.FIFO[Task]

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewPool starts size workers. A size of zero or less uses runtime.GOMAXPROCS(0).
func NewPool(size int) *Pool {
	if size <= 0 {
		size = runtime.GOMAXPROCS(0)
	}

	ctx, cancel := context.WithCancel(context.Background())
	p := &Pool{
		ctx:    ctx,
		cancel: cancel,
	}
	p.wg.Add(size)
	for i := 0; i < size; i++ {
		go p.worker()
	}
	return p
}

func (T *Pool) worker() {
	defer T.wg.Done()
	for {
		task, ok := T.tasks.Pop()
		if !ok {
			return
		}
		if T.ctx.Err() != nil {
			task.Drop()
			continue
		}
		task.Run(T.ctx)
	}
}

// Submit queues task. It returns ErrClosed if the pool has been closed, in which case task is not dropped.
func (T *Pool) Submit(task Task) error {
	if !T.tasks.Push(task) {
		return ErrClosed
	}
	return nil
}

// Queued returns the number of tasks waiting for a worker.
func (T *Pool) Queued() int {
	return T.tasks.Len()
}

// Cancel cancels the context passed to running tasks and drops every queued task without waiting for running
// tasks to return.
func (T *Pool) Cancel() {
	T.cancel()
	for _, task := range T.tasks.Drain() {
		task.Drop()
	}
}

// Close is Cancel followed by waiting for the workers to exit.
func (T *Pool) Close() {
	T.Cancel()
	T.wg.Wait()
}
