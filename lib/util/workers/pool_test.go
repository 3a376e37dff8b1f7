package workers

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
)

type trackedTask struct {
	ran     atomic.Bool
	dropped atomic.Bool
	run     func(ctx context.Context)
	done    chan struct{}
}

func newTrackedTask(run func(ctx context.Context)) *trackedTask {
	return &trackedTask{
		run:  run,
		done: make(chan struct{}),
	}
}

func (T *trackedTask) Run(ctx context.Context) {
	T.ran.Store(true)
	if T.run != nil {
		T.run(ctx)
	}
	close(T.done)
}

func (T *trackedTask) Drop() {
	T.dropped.Store(true)
	close(T.done)
}

func TestPool_RunsTasks(t *testing.T) {
	p := NewPool(4)
	defer p.Close()

	var count atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		if err := p.Submit(TaskFunc(func(context.Context) {
			count.Add(1)
			wg.Done()
		})); err != nil {
			t.Fatal(err)
		}
	}
	wg.Wait()

	if count.Load() != 100 {
		t.Error("expected 100 runs, got", count.Load())
	}
}

func TestPool_CloseDropsQueued(t *testing.T) {
	p := NewPool(1)

	release := make(chan struct{})
	blocker := newTrackedTask(func(ctx context.Context) {
		select {
		case <-release:
		case <-ctx.Done():
		}
	})
	if err := p.Submit(blocker); err != nil {
		t.Fatal(err)
	}

	queued := newTrackedTask(nil)
	if err := p.Submit(queued); err != nil {
		t.Fatal(err)
	}

	p.Close()
	<-blocker.done
	<-queued.done

	if !blocker.ran.Load() && !blocker.dropped.Load() {
		t.Error("expected blocker to finish")
	}
	if queued.ran.Load() {
		t.Error("expected queued task to be dropped")
	}

	if err := p.Submit(newTrackedTask(nil)); !errors.Is(err, ErrClosed) {
		t.Error("expected ErrClosed, got", err)
	}
}
