// Package events carries typed notifications between this library and its
// embedder. Session and navigation events travel on a per-client Bus so that
// independent clients in one process do not see each other's traffic;
// process-wide concerns such as settings changes use the Default bus.
package events

import (
	"sync"
)

type Event comparable

// Bus is a typed publish-subscribe channel. Construct with NewBus; the zero
// value is not usable.
type Bus struct {
	mu   sync.RWMutex
	subs map[any]map[any]func(any)
}

func NewBus() *Bus {
	return &Bus{subs: make(map[any]map[any]func(any))}
}

// Default carries process-wide notifications, e.g. settings changes.
var Default = NewBus()

// Subscription allows canceling a subscription.
type Subscription[T Event] struct {
	bus *Bus
}

// SubscribeTo registers callback for events of type T published on b.
func SubscribeTo[T Event](b *Bus, callback func(evt T)) *Subscription[T] {
	b.mu.Lock()
	defer b.mu.Unlock()
	var evt T
	if b.subs[evt] == nil {
		b.subs[evt] = make(map[any]func(any))
	}
	sub := &Subscription[T]{bus: b}
	b.subs[evt][sub] = func(e any) { callback(e.(T)) }
	return sub
}

// Cancel removes the subscription from its bus.
func (s *Subscription[T]) Cancel() {
	s.bus.mu.Lock()
	defer s.bus.mu.Unlock()
	var evt T
	if subs, ok := s.bus.subs[evt]; ok {
		delete(subs, s)
		if len(subs) == 0 {
			delete(s.bus.subs, evt)
		}
	}
}

// EmitOn notifies b's subscribers of evt. Callbacks are invoked
// asynchronously in separate goroutines.
func EmitOn[T Event](b *Bus, evt T) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	var e T
	if subs, ok := b.subs[e]; ok {
		for _, cb := range subs {
			go cb(evt)
		}
	}
}

// Subscribe registers callback on the Default bus.
func Subscribe[T Event](callback func(evt T)) *Subscription[T] {
	return SubscribeTo(Default, callback)
}

// Unsubscribe removes the given subscription from its bus.
func Unsubscribe[T Event](sub *Subscription[T]) {
	sub.Cancel()
}

// Emit notifies the Default bus's subscribers of evt.
func Emit[T Event](evt T) {
	EmitOn(Default, evt)
}
