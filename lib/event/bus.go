package event

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"gfx.cafe/gfx/protocolcontrol/lib/instrumentation/prom"
	"gfx.cafe/gfx/protocolcontrol/lib/util/workers"
)

var ErrNotComparable = errors.New("listeners must be comparable")

// Bus delivers packet events to ordered, filtered subscribers. Posting reads an immutable snapshot of the
// subscriptions, so posts never wait on each other or on registration.
type Bus struct {
	idx atomic.Pointer[index]

	listeners map[Listener][]*Registration
	seq       uint64

	enabled atomic.Bool
	pool    *workers.Pool
	workers int

	log    *zap.Logger
	tracer trace.Tracer

	mu sync.Mutex
}

// NewBus creates a disabled bus. Fire runs on a pool of workers goroutines, runtime.GOMAXPROCS(0) if workers is
// zero or less.
func NewBus(workers int, log *zap.Logger) *Bus {
	if log == nil {
		log = zap.NewNop()
	}
	b := &Bus{
		listeners: make(map[Listener][]*Registration),
		workers:   workers,
		log:       log,
		tracer: otel.Tracer("protocolcontrol", trace.WithInstrumentationAttributes(
			attribute.String("component", "gfx.cafe/gfx/protocolcontrol/lib/event"),
		)),
	}
	b.idx.Store(emptyIndex)
	return b
}

func (T *Bus) index() *index {
	return T.idx.Load()
}

// Register adds one subscription.
func (T *Bus) Register(sub Subscription) (*Registration, error) {
	T.mu.Lock()
	defer T.mu.Unlock()

	T.seq++
	r, err := generate(sub, T.seq, nil)
	if err != nil {
		return nil, err
	}
	T.idx.Store(T.index().with(r))
	return r, nil
}

// Unregister removes a subscription added by Register. Unknown registrations are ignored.
func (T *Bus) Unregister(r *Registration) {
	T.mu.Lock()
	defer T.mu.Unlock()

	T.idx.Store(T.index().without(func(other *Registration) bool {
		return other == r
	}))
}

// Subscribe registers every subscription of listener. Either all of them are registered or none are.
// Subscribing a listener that is already subscribed does nothing.
func (T *Bus) Subscribe(listener Listener) error {
	if listener == nil || !reflect.TypeOf(listener).Comparable() {
		return ErrNotComparable
	}

	T.mu.Lock()
	defer T.mu.Unlock()

	if _, ok := T.listeners[listener]; ok {
		return nil
	}

	subs := listener.Subscriptions()
	regs := make([]*Registration, 0, len(subs))
	seq := T.seq
	for _, sub := range subs {
		seq++
		r, err := generate(sub, seq, listener)
		if err != nil {
			return err
		}
		regs = append(regs, r)
	}

	T.seq = seq
	T.listeners[listener] = regs
	T.idx.Store(T.index().with(regs...))
	return nil
}

// Unsubscribe removes every subscription listener registered.
func (T *Bus) Unsubscribe(listener Listener) {
	if listener == nil || !reflect.TypeOf(listener).Comparable() {
		return
	}

	T.mu.Lock()
	defer T.mu.Unlock()

	if _, ok := T.listeners[listener]; !ok {
		return
	}
	delete(T.listeners, listener)
	T.idx.Store(T.index().without(func(r *Registration) bool {
		return r.listener == listener
	}))
}

// Len returns the number of registered subscriptions.
func (T *Bus) Len() int {
	return T.index().len()
}

// HasSubscribers reports whether a post of a message of type typ could reach any subscriber. It is always false
// while the bus is disabled.
func (T *Bus) HasSubscribers(typ reflect.Type) bool {
	if !T.enabled.Load() {
		return false
	}
	return len(T.index().lookup(typ)) > 0
}

// HasAnySubscribers reports whether anything is subscribed at all.
func (T *Bus) HasAnySubscribers() bool {
	if !T.enabled.Load() {
		return false
	}
	idx := T.index()
	return len(idx.typed) > 0 || len(idx.wildcard) > 0
}

// Post delivers event to every matching subscriber on the calling goroutine, in order.
func (T *Bus) Post(event *PacketEvent) PostResult {
	result, _ := T.post(context.Background(), event)
	return result
}

func (T *Bus) post(ctx context.Context, event *PacketEvent) (PostResult, error) {
	var result PostResult

	typ := event.Type()
	labels := prom.BusLabels{
		Direction: event.Direction().String(),
		Message:   typeName(typ),
	}
	start := time.Now()

	wasCancelled := event.Cancelled()
	var err error
	for _, r := range T.index().lookup(typ) {
		if err = ctx.Err(); err != nil {
			break
		}
		if !r.shouldPost(event) {
			continue
		}
		if failure := T.invoke(r, event); failure != nil {
			result.Failures = append(result.Failures, failure)
		}
	}

	prom.Bus.Posts(labels).Inc()
	prom.Bus.Latency(labels).Observe(float64(time.Since(start)) / float64(time.Millisecond))
	if !wasCancelled && event.Cancelled() {
		prom.Bus.Cancelled(labels).Inc()
	}
	if len(result.Failures) > 0 {
		prom.Bus.Failures(labels).Add(float64(len(result.Failures)))
		T.report(event, result)
	}

	return result, err
}

func (T *Bus) invoke(r *Registration, event *PacketEvent) (failure *SubscriberFailure) {
	defer func() {
		if p := recover(); p != nil {
			failure = &SubscriberFailure{
				Subscriber: r.name(),
				Message:    event.Type(),
				Direction:  event.Direction(),
				Err:        fmt.Errorf("panic: %v", p),
				Panic:      p,
			}
		}
	}()

	if err := r.Handler(event); err != nil {
		return &SubscriberFailure{
			Subscriber: r.name(),
			Message:    event.Type(),
			Direction:  event.Direction(),
			Err:        err,
		}
	}
	return nil
}

func (T *Bus) report(event *PacketEvent, result PostResult) {
	fields := []zap.Field{
		zap.Stringer("direction", event.Direction()),
		zap.String("message", typeName(event.Type())),
	}
	if profile := event.Profile(); profile != nil {
		fields = append(fields, zap.Stringer("conn", profile.Conn().ID()))
		if id, ok := profile.ID(); ok {
			fields = append(fields, zap.Stringer("principal", id))
		}
	}
	for _, failure := range result.Failures {
		T.log.Error(
			"subscriber failed to handle packet event",
			append(fields, zap.String("subscriber", failure.Subscriber), zap.Error(failure))...,
		)
	}
}

type dispatch struct {
	bus    *Bus
	event  *PacketEvent
	future *Future
	mode   string
}

func (T *dispatch) Run(ctx context.Context) {
	ctx, span := T.bus.tracer.Start(ctx, "post packet event",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("direction", T.event.Direction().String()),
			attribute.String("message", typeName(T.event.Type())),
			attribute.String("mode", T.mode),
		))
	defer span.End()

	result, err := T.bus.post(ctx, T.event)
	span.SetAttributes(
		attribute.Bool("cancelled", T.event.Cancelled()),
		attribute.Int("failures", len(result.Failures)),
	)
	if err != nil {
		err = ErrDisabled
		span.SetStatus(codes.Error, err.Error())
	} else if len(result.Failures) > 0 {
		span.SetStatus(codes.Error, "subscriber failures")
	}

	if T.future != nil {
		T.future.resolve(err)
	}
}

func (T *dispatch) Drop() {
	prom.Dispatch.Dropped(prom.DispatchLabels{Mode: T.mode}).Inc()
	if T.future != nil {
		T.future.resolve(ErrDisabled)
	}
}

func (T *Bus) submit(d *dispatch) bool {
	T.mu.Lock()
	pool := T.pool
	T.mu.Unlock()
	if pool == nil {
		return false
	}

	labels := prom.DispatchLabels{Mode: d.mode}
	if err := pool.Submit(d); err != nil {
		return false
	}
	prom.Dispatch.Submitted(labels).Inc()
	prom.Dispatch.Queued(labels).Set(float64(pool.Queued()))
	return true
}

// Fire posts event on the worker pool. The future resolves after the post. While the bus is disabled the future
// is already resolved and the event is untouched.
func (T *Bus) Fire(event *PacketEvent) *Future {
	if !T.enabled.Load() {
		return resolvedFuture(event)
	}
	f := newFuture(event)
	if !T.submit(&dispatch{bus: T, event: event, future: f, mode: "fire"}) {
		f.resolve(ErrDisabled)
	}
	return f
}

// FireAndForget posts event on the worker pool without reporting completion.
func (T *Bus) FireAndForget(event *PacketEvent) {
	if !T.enabled.Load() {
		return
	}
	T.submit(&dispatch{bus: T, event: event, mode: "forget"})
}

// Enable starts the worker pool.
func (T *Bus) Enable() {
	T.mu.Lock()
	defer T.mu.Unlock()
	if T.enabled.Load() {
		return
	}
	T.pool = workers.NewPool(T.workers)
	T.enabled.Store(true)
}

// Disable removes every subscription and cancels pooled posts. Posts already running stop before their next
// subscriber; their futures resolve with ErrDisabled.
func (T *Bus) Disable() {
	T.mu.Lock()
	defer T.mu.Unlock()
	if !T.enabled.Load() {
		return
	}
	T.enabled.Store(false)
	T.pool.Cancel()
	T.pool = nil
	clear(T.listeners)
	T.idx.Store(emptyIndex)
}

func (T *Bus) Enabled() bool {
	return T.enabled.Load()
}
