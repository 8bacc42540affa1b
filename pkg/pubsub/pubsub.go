// Package pubsub provides an ordered callback list used for action hooks and
// per-invocation after/error callbacks.
package pubsub

import "sync"

// List is an ordered set of callbacks fired in registration order.
// The zero value is ready to use.
type List[T any] struct {
	mu      sync.Mutex
	next    uint64
	entries []entry[T]
}

type entry[T any] struct {
	id uint64
	fn func(T)
}

// Add appends fn and returns a function that removes exactly that entry.
// The remove function is idempotent.
func (l *List[T]) Add(fn func(T)) (remove func()) {
	l.mu.Lock()
	l.next++
	id := l.next
	l.entries = append(l.entries, entry[T]{id: id, fn: fn})
	l.mu.Unlock()

	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		for i, e := range l.entries {
			if e.id == id {
				l.entries = append(l.entries[:i], l.entries[i+1:]...)
				return
			}
		}
	}
}

// Fire calls every callback with v, in registration order, over a copy of
// the list. Callbacks added while firing run from the next Fire on.
// A panicking callback aborts the remaining ones.
func (l *List[T]) Fire(v T) {
	l.mu.Lock()
	entries := make([]entry[T], len(l.entries))
	copy(entries, l.entries)
	l.mu.Unlock()

	for _, e := range entries {
		e.fn(v)
	}
}

// Clear removes every callback.
func (l *List[T]) Clear() {
	l.mu.Lock()
	l.entries = nil
	l.mu.Unlock()
}

// Len returns the number of registered callbacks.
func (l *List[T]) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
