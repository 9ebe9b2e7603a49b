// Package eventbus is a synchronous, typed publish/subscribe registry used to
// decouple guild features from each other.
//
// Listeners are keyed by the exact dynamic type of the published value.
// Listener lists are copy-on-write, so a publication in flight iterates a
// stable snapshot while other goroutines subscribe or unsubscribe.
package eventbus

import (
	"context"
	"fmt"
	"reflect"
	"runtime/debug"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Subscription identifies one registration. Registering the same function
// twice yields two subscriptions and two invocations per publication.
type Subscription struct {
	ID        uuid.UUID
	EventType reflect.Type
}

type listener struct {
	id uuid.UUID
	fn func(any)
}

// Config holds Bus dependencies.
type Config struct {
	Logger zerolog.Logger
}

// Bus is safe for concurrent use.
type Bus struct {
	log zerolog.Logger

	mu        sync.RWMutex
	listeners map[reflect.Type][]listener
	closed    bool // guarded by mu; async.Add happens only while false

	async sync.WaitGroup
}

// New constructs an empty Bus.
func New(cfg Config) *Bus {
	return &Bus{
		log:       cfg.Logger,
		listeners: make(map[reflect.Type][]listener),
	}
}

// Subscribe registers fn for events whose dynamic type is exactly T.
func Subscribe[T any](b *Bus, fn func(T)) Subscription {
	t := reflect.TypeOf((*T)(nil)).Elem()
	return b.add(t, func(e any) { fn(e.(T)) })
}

// Unsubscribe removes sub. It is a no-op when sub is not registered.
func (b *Bus) Unsubscribe(sub Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	cur := b.listeners[sub.EventType]
	for i, l := range cur {
		if l.id != sub.ID {
			continue
		}
		next := make([]listener, 0, len(cur)-1)
		next = append(next, cur[:i]...)
		next = append(next, cur[i+1:]...)
		if len(next) == 0 {
			delete(b.listeners, sub.EventType)
		} else {
			b.listeners[sub.EventType] = next
		}
		b.log.Debug().Str("event_type", typeName(sub.EventType)).Msg("listener unsubscribed")
		return
	}
}

// Publish invokes every listener for the dynamic type of event, in
// subscription order, on the calling goroutine. A panicking listener is
// logged and skipped.
func (b *Bus) Publish(event any) {
	if event == nil {
		return
	}
	t := reflect.TypeOf(event)
	b.mu.RLock()
	snapshot := b.listeners[t]
	b.mu.RUnlock()
	publishedTotal.WithLabelValues(typeName(t)).Inc()
	for _, l := range snapshot {
		b.invoke(t, l, event)
	}
}

// PublishAsync runs Publish on a new goroutine. No ordering is guaranteed
// relative to other publications or to the caller. After Close the event is
// published on the calling goroutine instead.
func (b *Bus) PublishAsync(event any) {
	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		b.Publish(event)
		return
	}
	b.async.Add(1)
	b.mu.RUnlock()
	go func() {
		defer b.async.Done()
		b.Publish(event)
	}()
}

// Wait blocks until every PublishAsync started so far has finished.
func (b *Bus) Wait() { b.async.Wait() }

// Close stops accepting asynchronous publications, waits for those in flight
// until ctx expires, then removes every subscription. Later calls only clear.
func (b *Bus) Close(ctx context.Context) error {
	b.mu.Lock()
	b.closed = true
	b.mu.Unlock()
	defer b.Clear()

	done := make(chan struct{})
	go func() {
		b.async.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("eventbus close: %w", ctx.Err())
	}
}

// Clear removes every subscription.
func (b *Bus) Clear() {
	b.mu.Lock()
	b.listeners = make(map[reflect.Type][]listener)
	b.mu.Unlock()
	b.log.Info().Msg("all event listeners cleared")
}

// ListenerCount returns the number of listeners registered for t.
func (b *Bus) ListenerCount(t reflect.Type) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.listeners[t])
}

// ListenerCountOf is ListenerCount for the type parameter.
func ListenerCountOf[T any](b *Bus) int { return b.ListenerCount(reflect.TypeOf((*T)(nil)).Elem()) }

// TotalListenerCount returns the number of listeners across all types.
func (b *Bus) TotalListenerCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	n := 0
	for _, ls := range b.listeners {
		n += len(ls)
	}
	return n
}

// Counts returns listener counts keyed by type name.
func (b *Bus) Counts() map[string]int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make(map[string]int, len(b.listeners))
	for t, ls := range b.listeners {
		out[typeName(t)] = len(ls)
	}
	return out
}

func (b *Bus) add(t reflect.Type, fn func(any)) Subscription {
	l := listener{id: uuid.New(), fn: fn}
	b.mu.Lock()
	cur := b.listeners[t]
	next := make([]listener, len(cur), len(cur)+1)
	copy(next, cur)
	b.listeners[t] = append(next, l)
	b.mu.Unlock()
	b.log.Debug().Str("event_type", typeName(t)).Msg("listener subscribed")
	return Subscription{ID: l.id, EventType: t}
}

func (b *Bus) invoke(t reflect.Type, l listener, event any) {
	defer func() {
		if r := recover(); r != nil {
			listenerFailures.WithLabelValues(typeName(t)).Inc()
			b.log.Error().
				Err(fmt.Errorf("listener panic: %v", r)).
				Str("event_type", typeName(t)).
				Bytes("stack", debug.Stack()).
				Msg("event listener failed")
		}
	}()
	l.fn(event)
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}
