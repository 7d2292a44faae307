// Package eventbus fans control cycle results out to interested components
// (status store, metrics, telemetry) without coupling them to the loop.
package eventbus

import (
	"sync"

	"github.com/kilianp07/pvcharge/core/control"
)

// Bus is a fan-out publish/subscribe bus for cycle results. Delivery is
// non-blocking: a slow subscriber drops events rather than stalling the loop.
type Bus struct {
	mu     sync.RWMutex
	subs   []chan control.CycleResult
	closed bool
}

// New creates a new Bus.
func New() *Bus { return &Bus{} }

// Publish sends the result to all subscribers.
func (b *Bus) Publish(res control.CycleResult) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}
	for _, ch := range b.subs {
		select {
		case ch <- res:
		default:
		}
	}
}

// Subscribe registers a new subscriber and returns its channel.
func (b *Bus) Subscribe() <-chan control.CycleResult {
	ch := make(chan control.CycleResult, 8)
	b.mu.Lock()
	if b.closed {
		close(ch)
	} else {
		b.subs = append(b.subs, ch)
	}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes the subscriber and closes its channel.
func (b *Bus) Unsubscribe(sub <-chan control.CycleResult) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, ch := range b.subs {
		if ch == sub {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			if !b.closed {
				close(ch)
			}
			return
		}
	}
}

// Close closes all subscriber channels and clears the list.
func (b *Bus) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	for _, ch := range b.subs {
		close(ch)
	}
	b.subs = nil
	b.mu.Unlock()
}
