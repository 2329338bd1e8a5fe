package services

import (
	"context"
	"sync"
)

// Badge fans out cart-change notifications to badge listeners. Notifications
// carry no payload; listeners re-read the cart themselves. Deliveries to a
// slow listener coalesce rather than block the publisher.
type Badge struct {
	mu          sync.Mutex
	revision    uint64
	nextID      int
	subscribers map[int]chan struct{}
}

// NewBadge constructs an empty badge signal.
func NewBadge() *Badge {
	return &Badge{subscribers: make(map[int]chan struct{})}
}

// PublishCartChanged bumps the revision and pokes every subscriber.
func (b *Badge) PublishCartChanged(_ context.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.revision++
	for _, ch := range b.subscribers {
		select {
		case ch <- struct{}{}:
		default:
			// A pending notification already covers this change.
		}
	}
}

// Revision reports how many cart changes have been published.
func (b *Badge) Revision() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.revision
}

// Subscribe registers a listener. The returned channel receives a coalesced
// signal per burst of changes; the cancel func unregisters the listener.
func (b *Badge) Subscribe() (<-chan struct{}, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	ch := make(chan struct{}, 1)
	b.subscribers[id] = ch

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subscribers, id)
	}
	return ch, cancel
}
