package event

import (
	"errors"
	"fmt"
	"reflect"

	"gfx.cafe/gfx/protocolcontrol/lib/catalog"
)

var (
	ErrInvalidSubscription = errors.New("invalid subscription")
	ErrDisabled            = errors.New("event bus disabled")
)

// SubscriberGenerationError is returned when a subscription cannot be registered.
type SubscriberGenerationError struct {
	Subscriber string
	Reason     string
}

func (T *SubscriberGenerationError) Error() string {
	return fmt.Sprintf("subscriber %s: %s", T.Subscriber, T.Reason)
}

func (T *SubscriberGenerationError) Unwrap() error {
	return ErrInvalidSubscription
}

// SubscriberFailure records a subscriber that returned an error or panicked during a post.
type SubscriberFailure struct {
	Subscriber string
	Message    reflect.Type
	Direction  catalog.Direction
	Err        error
	// Panic is the recovered value if the subscriber panicked.
	Panic any
}

func (T *SubscriberFailure) Error() string {
	if T.Panic != nil {
		return fmt.Sprintf("subscriber %s panicked on %s %s: %v", T.Subscriber, T.Direction, typeName(T.Message), T.Panic)
	}
	return fmt.Sprintf("subscriber %s failed on %s %s: %v", T.Subscriber, T.Direction, typeName(T.Message), T.Err)
}

func (T *SubscriberFailure) Unwrap() error {
	return T.Err
}

// PostResult is the outcome of one post.
type PostResult struct {
	Failures []*SubscriberFailure
}

// Err joins every failure, or returns nil if there were none.
func (T PostResult) Err() error {
	if len(T.Failures) == 0 {
		return nil
	}
	errs := make([]error, 0, len(T.Failures))
	for _, f := range T.Failures {
		errs = append(errs, f)
	}
	return errors.Join(errs...)
}
