// Package eventbus is a small typed pub/sub used to fan controller
// state changes out to views. Publishing never blocks: a subscriber whose
// buffer is full misses the event and the drop is counted.
package eventbus

import (
	"context"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/puzpuzpuz/xsync/v4"
)

const DefaultBufferSize = 64

// EventBus delivers events of type T to every live subscriber
type EventBus[T any] struct {
	subscribers   *xsync.Map[string, *subscriber[T]]
	isShutdown    atomic.Bool
	subscriberSeq atomic.Uint64
	dropped       atomic.Uint64
	bufferSize    int
}

type subscriber[T any] struct {
	ch      chan T
	id      string
	// dropped is the bus-wide counter, so drops outlive the subscriber
	dropped *atomic.Uint64
	// mu serialises sends against close so a publish racing an
	// unsubscribe never writes to a closed channel
	mu     sync.Mutex
	closed bool
}

// Stats provides aggregate metrics
type Stats struct {
	Subscribers  int
	TotalDropped uint64
	IsShutdown   bool
}

// New creates an EventBus with the default per-subscriber buffer
func New[T any]() *EventBus[T] {
	return NewWithBuffer[T](DefaultBufferSize)
}

// NewWithBuffer creates an EventBus with a custom per-subscriber buffer
func NewWithBuffer[T any](bufferSize int) *EventBus[T] {
	if bufferSize < 1 {
		bufferSize = 1
	}
	return &EventBus[T]{
		subscribers: xsync.NewMap[string, *subscriber[T]](),
		bufferSize:  bufferSize,
	}
}

// Subscribe returns a channel of events and a cleanup func. The subscription
// also ends when ctx is cancelled; either way the channel is closed.
func (eb *EventBus[T]) Subscribe(ctx context.Context) (<-chan T, func()) {
	if eb.isShutdown.Load() {
		ch := make(chan T)
		close(ch)
		return ch, func() {}
	}

	sub := &subscriber[T]{
		id:      "sub_" + strconv.FormatUint(eb.subscriberSeq.Add(1), 10),
		ch:      make(chan T, eb.bufferSize),
		dropped: &eb.dropped,
	}
	eb.subscribers.Store(sub.id, sub)

	stop := context.AfterFunc(ctx, func() {
		eb.unsubscribe(sub.id)
	})

	cleanup := func() {
		stop()
		eb.unsubscribe(sub.id)
	}

	return sub.ch, cleanup
}

// Publish sends event to all subscribers and returns how many received it
func (eb *EventBus[T]) Publish(event T) int {
	if eb.isShutdown.Load() {
		return 0
	}

	delivered := 0
	eb.subscribers.Range(func(_ string, sub *subscriber[T]) bool {
		if sub.send(event) {
			delivered++
		}
		return true
	})

	return delivered
}

// Shutdown closes every subscriber channel; later publishes are no-ops
func (eb *EventBus[T]) Shutdown() {
	if !eb.isShutdown.CompareAndSwap(false, true) {
		return
	}

	eb.subscribers.Range(func(id string, _ *subscriber[T]) bool {
		eb.unsubscribe(id)
		return true
	})
}

func (eb *EventBus[T]) Stats() Stats {
	stats := Stats{
		IsShutdown:   eb.isShutdown.Load(),
		TotalDropped: eb.dropped.Load(),
	}

	eb.subscribers.Range(func(_ string, _ *subscriber[T]) bool {
		stats.Subscribers++
		return true
	})

	return stats
}

func (eb *EventBus[T]) unsubscribe(id string) {
	if sub, exists := eb.subscribers.LoadAndDelete(id); exists {
		sub.close()
	}
}

func (s *subscriber[T]) send(event T) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false
	}

	select {
	case s.ch <- event:
		return true
	default:
		s.dropped.Add(1)
		return false
	}
}

func (s *subscriber[T]) close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.closed {
		s.closed = true
		close(s.ch)
	}
}
