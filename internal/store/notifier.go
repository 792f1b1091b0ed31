package store

import "sync/atomic"

// Notifier is the injectable change-detection notification strategy. The
// Store calls Notify after every dispatch; the strategy decides how (and
// whether) the hosting environment hears about it. Notification is not
// part of the dispatch correctness contract - it only affects when a host
// re-renders, never what state is produced.
type Notifier interface {
	Notify()
}

// NoopNotifier discards notifications. The default for headless use.
type NoopNotifier struct{}

// Notify implements Notifier.
func (NoopNotifier) Notify() {}

// DirectNotifier invokes the host callback synchronously on every
// dispatch.
type DirectNotifier struct {
	fn func()
}

// NewDirectNotifier wraps a host callback in a direct-call strategy.
func NewDirectNotifier(fn func()) *DirectNotifier {
	return &DirectNotifier{fn: fn}
}

// Notify implements Notifier.
func (n *DirectNotifier) Notify() {
	if n.fn != nil {
		n.fn()
	}
}

// BatchedNotifier coalesces rapid repeated notifications: however many
// dispatches happen before the scheduled flush runs, the host callback
// fires once. The cooperative-scheduling analog of a microtask-coalesced
// notify.
type BatchedNotifier struct {
	fn       func()
	schedule func(func())
	pending  atomic.Bool
}

// BatchedOption configures a BatchedNotifier.
type BatchedOption func(*BatchedNotifier)

// WithScheduler overrides how the flush is deferred. Tests inject a
// synchronous or manually-pumped scheduler for determinism.
func WithScheduler(schedule func(func())) BatchedOption {
	return func(n *BatchedNotifier) {
		n.schedule = schedule
	}
}

// NewBatchedNotifier wraps a host callback in a coalescing strategy.
// The default scheduler defers the flush to a fresh goroutine.
func NewBatchedNotifier(fn func(), opts ...BatchedOption) *BatchedNotifier {
	n := &BatchedNotifier{
		fn:       fn,
		schedule: func(flush func()) { go flush() },
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Notify implements Notifier. Concurrent and repeated calls before the
// flush runs coalesce into a single host callback.
func (n *BatchedNotifier) Notify() {
	if !n.pending.CompareAndSwap(false, true) {
		return
	}
	n.schedule(func() {
		n.pending.Store(false)
		if n.fn != nil {
			n.fn()
		}
	})
}
