// Package reactive delivers change notifications to subscribers on a single
// dispatcher goroutine, in registration order.
package reactive

import (
	"context"
	"sync"
)

type subscription struct {
	id uint64
	fn func()
}

// Hub fans a change signal out to subscribers. Notifications that arrive while
// a delivery round is pending coalesce into that round.
type Hub struct {
	mu     sync.Mutex
	subs   []subscription
	nextID uint64

	wake   chan struct{}
	flush  chan chan struct{}
	stop   chan struct{}
	closed chan struct{}
	once   sync.Once
}

func NewHub() *Hub {
	h := &Hub{
		wake:   make(chan struct{}, 1),
		flush:  make(chan chan struct{}),
		stop:   make(chan struct{}),
		closed: make(chan struct{}),
	}
	go h.run()
	return h
}

// Subscribe registers fn and returns a function that removes it. fn runs on
// the dispatcher goroutine and must not call Flush.
func (h *Hub) Subscribe(fn func()) (cancel func()) {
	h.mu.Lock()
	h.nextID++
	id := h.nextID
	h.subs = append(h.subs, subscription{id: id, fn: fn})
	h.mu.Unlock()
	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		for i, sub := range h.subs {
			if sub.id == id {
				h.subs = append(h.subs[:i:i], h.subs[i+1:]...)
				return
			}
		}
	}
}

// Notify schedules a delivery round and returns immediately.
func (h *Hub) Notify() {
	select {
	case h.wake <- struct{}{}:
	default:
	}
}

// Flush blocks until every notification issued before the call has been
// delivered, or ctx is done.
func (h *Hub) Flush(ctx context.Context) error {
	ack := make(chan struct{})
	select {
	case h.flush <- ack:
	case <-h.closed:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-ack:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops the dispatcher. Pending notifications are dropped.
func (h *Hub) Close() {
	h.once.Do(func() {
		close(h.stop)
		<-h.closed
	})
}

func (h *Hub) run() {
	defer close(h.closed)
	for {
		select {
		case <-h.stop:
			return
		case <-h.wake:
			h.deliver()
		case ack := <-h.flush:
			select {
			case <-h.wake:
				h.deliver()
			default:
			}
			close(ack)
		}
	}
}

func (h *Hub) deliver() {
	h.mu.Lock()
	subs := make([]subscription, len(h.subs))
	copy(subs, h.subs)
	h.mu.Unlock()
	for _, sub := range subs {
		sub.fn()
	}
}
