package store

import "sync"

// callbackList is an ordered, removal-safe callback registry. Callbacks
// are invoked in registration order. Removal handles are idempotent and
// safe to call from inside the callback they remove: a removal during a
// notification pass takes effect for the next pass (the in-flight snapshot
// is not disturbed).
type callbackList[T any] struct {
	mu      sync.Mutex
	entries []*callbackEntry[T]
}

type callbackEntry[T any] struct {
	fn      T
	removed bool
}

// Add registers fn and returns its removal handle.
func (l *callbackList[T]) Add(fn T) func() {
	l.mu.Lock()
	defer l.mu.Unlock()

	e := &callbackEntry[T]{fn: fn}
	l.entries = append(l.entries, e)

	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		if e.removed {
			return
		}
		e.removed = true
		for i, cur := range l.entries {
			if cur == e {
				l.entries = append(l.entries[:i], l.entries[i+1:]...)
				break
			}
		}
	}
}

// Snapshot returns the current callbacks in registration order.
func (l *callbackList[T]) Snapshot() []T {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]T, len(l.entries))
	for i, e := range l.entries {
		out[i] = e.fn
	}
	return out
}

// Len returns the number of registered callbacks.
func (l *callbackList[T]) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
