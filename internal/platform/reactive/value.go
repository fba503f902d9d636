package reactive

import (
	"context"
	"sync"
)

// Value is an observable slot. Set stores the new value and notifies the hub;
// subscribers always read the latest value at delivery time.
type Value[T any] struct {
	mu  sync.RWMutex
	v   T
	hub *Hub
}

func NewValue[T any](hub *Hub, initial T) *Value[T] {
	return &Value[T]{v: initial, hub: hub}
}

func (v *Value[T]) Get() T {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.v
}

func (v *Value[T]) Set(next T) {
	v.mu.Lock()
	v.v = next
	v.mu.Unlock()
	if v.hub != nil {
		v.hub.Notify()
	}
}

// Subscribe delivers the current value on every delivery round of the hub.
func (v *Value[T]) Subscribe(fn func(T)) (cancel func()) {
	if v.hub == nil {
		return func() {}
	}
	return v.hub.Subscribe(func() { fn(v.Get()) })
}

// Watch computes a projection now and again on every delivery round of hub,
// handing each result to deliver. The first result is delivered on the
// caller's goroutine before Watch returns.
func Watch[T any](ctx context.Context, hub *Hub, compute func(context.Context) (T, error), deliver func(T, error)) (cancel func()) {
	deliver(compute(ctx))
	return hub.Subscribe(func() {
		if ctx.Err() != nil {
			return
		}
		deliver(compute(ctx))
	})
}
