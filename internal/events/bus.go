package events

import "sync"

// Bus is an in-process publish/subscribe channel. Each engine instance owns
// its own bus; there is no process-wide emitter. Delivery is synchronous and
// in publish order. Subscribers attached after a publish do not see it.
type Bus[T any] struct {
	mu      sync.Mutex
	nextID  int
	subs    map[int]func(T)
	ordered []int
}

// NewBus creates an empty bus.
func NewBus[T any]() *Bus[T] {
	return &Bus[T]{subs: make(map[int]func(T))}
}

// Subscribe registers fn and returns a cancel function. Cancel is idempotent
// and safe to call from within a delivery.
func (b *Bus[T]) Subscribe(fn func(T)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	b.subs[id] = fn
	b.ordered = append(b.ordered, id)

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs, id)
	}
}

// Publish delivers event to all current subscribers in attach order.
func (b *Bus[T]) Publish(event T) {
	b.mu.Lock()
	fns := make([]func(T), 0, len(b.subs))
	for _, id := range b.ordered {
		if fn, ok := b.subs[id]; ok {
			fns = append(fns, fn)
		}
	}
	b.mu.Unlock()

	for _, fn := range fns {
		fn(event)
	}
}

// SubscriberCount reports the number of attached subscribers.
func (b *Bus[T]) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
