package fed

import (
	"context"
	"sync"
)

// Promise resolves once a write reaches the codec or is abandoned. A nil *Promise is a void promise: completing
// it does nothing.
type Promise struct {
	done chan struct{}
	err  error
	once sync.Once
}

func NewPromise() *Promise {
	return &Promise{
		done: make(chan struct{}),
	}
}

// Complete resolves the promise. Only the first call has an effect.
func (T *Promise) Complete(err error) {
	if T == nil {
		return
	}
	T.once.Do(func() {
		T.err = err
		close(T.done)
	})
}

func (T *Promise) Done() <-chan struct{} {
	return T.done
}

// Err returns the error the promise completed with. It is only meaningful after Done is closed.
func (T *Promise) Err() error {
	return T.err
}

func (T *Promise) Wait(ctx context.Context) error {
	select {
	case <-T.done:
		return T.err
	case <-ctx.Done():
		return ctx.Err()
	}
}
