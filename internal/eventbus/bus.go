// Package eventbus decouples the core event dispatcher from local observers
// (history recording, future status surfaces) with an in-memory fanout.
package eventbus

import (
	"sync"
	"sync/atomic"
	"time"
)

// Topics published by the dispatcher.
const (
	TopicTransferCompleted = "transfer.completed"
	TopicTransferRejected  = "transfer.rejected"
	TopicTransferError     = "transfer.error"
	TopicRequestReceived   = "transfer.request"
	TopicPeerFound         = "peer.found"
	TopicPeerLost          = "peer.lost"
)

// Message is a lightweight, in-memory signal.
//
// Contract:
//   - Publish MUST be non-blocking (it runs on core-owned callback threads).
//   - Subscribers MUST use buffered channels.
//   - Slow subscribers may drop messages (bounded backpressure).
//
// Data should be small and ideally JSON-serializable.
type Message struct {
	Topic string
	Time  time.Time
	Data  any
}

type Bus interface {
	Publish(m Message)
	Subscribe(buffer int) *Subscription
}

// Subscription is one observer's view of the bus. Close is idempotent.
type Subscription struct {
	C <-chan Message

	once sync.Once
	stop func()
}

func (s *Subscription) Close() {
	s.once.Do(s.stop)
}

// New returns a simple in-memory fanout bus.
//
// It intentionally does not own any background goroutines.
func New() Bus {
	return &memBus{subs: map[uint64]chan Message{}}
}

type memBus struct {
	mu   sync.RWMutex
	subs map[uint64]chan Message
	seq  atomic.Uint64
}

func (b *memBus) Publish(m Message) {
	if m.Time.IsZero() {
		m.Time = time.Now()
	}
	// Snapshot subscribers so Publish doesn't hold locks while attempting sends.
	b.mu.RLock()
	chs := make([]chan Message, 0, len(b.subs))
	for _, ch := range b.subs {
		chs = append(chs, ch)
	}
	b.mu.RUnlock()

	for _, ch := range chs {
		// Non-blocking delivery. If a subscriber is slow, we drop.
		// If a subscriber closes concurrently, recover from the send panic.
		func() {
			defer func() { _ = recover() }()
			select {
			case ch <- m:
			default:
			}
		}()
	}
}

func (b *memBus) Subscribe(buffer int) *Subscription {
	if buffer <= 0 {
		buffer = 8
	}
	ch := make(chan Message, buffer)
	id := b.seq.Add(1)

	b.mu.Lock()
	b.subs[id] = ch
	b.mu.Unlock()

	return &Subscription{
		C: ch,
		stop: func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
			// Closing is safe because Publish recovers from send panics.
			close(ch)
		},
	}
}
