// Package broadcast provides best-effort fan-out of values to independent subscribers.
package broadcast

import (
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// Publisher publishes a value to every current subscriber without blocking.
// It returns how many subscribers received the value.
type Publisher[T any] interface {
	Publish(v T) int
}

// Broadcaster delivers every published value to each subscriber's buffered channel.
// A subscriber whose buffer is full misses the value; the producer never waits.
type Broadcaster[T any] struct {
	mu      sync.RWMutex
	subs    map[uint64]*Subscription[T]
	nextID  uint64
	closed  bool
	dropped atomic.Uint64
	logger  *zap.Logger
}

// Subscription is one subscriber's view of a Broadcaster
type Subscription[T any] struct {
	id   uint64
	ch   chan T
	b    *Broadcaster[T]
	once sync.Once
}

// New creates an empty broadcaster
func New[T any](logger *zap.Logger) *Broadcaster[T] {
	return &Broadcaster[T]{
		subs:   make(map[uint64]*Subscription[T]),
		logger: logger,
	}
}

// Subscribe registers a subscriber with the given buffer size.
// Subscribing to a closed broadcaster returns an already closed subscription.
func (b *Broadcaster[T]) Subscribe(buffer int) *Subscription[T] {
	if buffer < 1 {
		buffer = 1
	}
	sub := &Subscription[T]{ch: make(chan T, buffer), b: b}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		sub.once.Do(func() { close(sub.ch) })
		return sub
	}
	b.nextID++
	sub.id = b.nextID
	b.subs[sub.id] = sub
	return sub
}

// Publish implements Publisher
func (b *Broadcaster[T]) Publish(v T) int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	delivered := 0
	for _, sub := range b.subs {
		select {
		case sub.ch <- v:
			delivered++
		default:
			b.logger.Debug("Subscriber buffer full, dropping event",
				zap.Uint64("subscriber", sub.id),
			)
			b.dropped.Add(1)
		}
	}
	return delivered
}

// Dropped returns how many deliveries were skipped because a subscriber was full
func (b *Broadcaster[T]) Dropped() uint64 {
	return b.dropped.Load()
}

// SubscriberCount returns the number of live subscriptions
func (b *Broadcaster[T]) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Close closes every subscription channel. Later publishes reach nobody.
func (b *Broadcaster[T]) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for id, sub := range b.subs {
		delete(b.subs, id)
		sub.once.Do(func() { close(sub.ch) })
	}
}

// C returns the channel values are delivered on. It is closed on unsubscribe.
func (s *Subscription[T]) C() <-chan T {
	return s.ch
}

// Close unsubscribes and closes the channel. Safe to call more than once.
func (s *Subscription[T]) Close() {
	s.b.mu.Lock()
	defer s.b.mu.Unlock()
	delete(s.b.subs, s.id)
	s.once.Do(func() { close(s.ch) })
}
