// Package devtools provides read-only dispatch telemetry: an in-process
// Tracker snapshotting recent dispatch activity, and a Prometheus
// exporter. Both attach to a Store through its dispatch-observer seam,
// so any combination of trackers, metrics, and effects can be layered
// and removed independently.
package devtools

import (
	"sync"
	"time"

	"github.com/roach88/strata/internal/action"
	"github.com/roach88/strata/internal/boundary"
	"github.com/roach88/strata/internal/store"
)

// DefaultHistoryCapacity bounds the action history ring buffer.
const DefaultHistoryCapacity = 100

// Snapshot is a point-in-time view of dispatch activity since the
// tracker was enabled.
type Snapshot struct {
	ActionCount      int
	LastActionType   string
	LastDispatchTime time.Time
	StateSize        int
	ActionHistory    []string
}

// Tracker observes dispatches while enabled and serves Snapshots.
// Metadata only: it never reads payloads and never retains state
// references, just the serialized size.
type Tracker struct {
	st       *store.Store
	codec    boundary.Codec
	now      func() time.Time
	capacity int

	mu      sync.Mutex
	remove  func()
	count   int
	last    string
	lastAt  time.Time
	size    int
	history []string
	next    int
	filled  bool
}

// TrackerOption configures a Tracker.
type TrackerOption func(*Tracker)

// WithHistoryCapacity sets the action history ring size.
func WithHistoryCapacity(n int) TrackerOption {
	return func(t *Tracker) {
		if n > 0 {
			t.capacity = n
		}
	}
}

// WithNow sets the clock. Test hook.
func WithNow(now func() time.Time) TrackerOption {
	return func(t *Tracker) {
		if now != nil {
			t.now = now
		}
	}
}

// WithCodec sets the codec used to measure serialized state size.
func WithCodec(c boundary.Codec) TrackerOption {
	return func(t *Tracker) {
		if c != nil {
			t.codec = c
		}
	}
}

// NewTracker creates a disabled tracker for st.
func NewTracker(st *store.Store, opts ...TrackerOption) *Tracker {
	t := &Tracker{
		st:       st,
		codec:    boundary.JSONCodec{},
		now:      time.Now,
		capacity: DefaultHistoryCapacity,
	}
	for _, opt := range opts {
		opt(t)
	}
	t.history = make([]string, t.capacity)
	return t
}

// Enable starts observing dispatches. Idempotent.
func (t *Tracker) Enable() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.remove != nil {
		return
	}
	t.remove = t.st.ObserveDispatch(t.observe)
}

// Disable stops observing. Idempotent; collected metadata is retained.
func (t *Tracker) Disable() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.remove == nil {
		return
	}
	t.remove()
	t.remove = nil
}

// Enabled reports whether the tracker is currently observing.
func (t *Tracker) Enabled() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.remove != nil
}

func (t *Tracker) observe(a action.Action, _, next any) {
	var size int
	raw, err := t.codec.Serialize(next)
	if err == nil {
		size = len(raw)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.count++
	t.last = a.Type
	t.lastAt = t.now()
	if err == nil {
		t.size = size
	}
	t.history[t.next] = a.Type
	t.next++
	if t.next == t.capacity {
		t.next = 0
		t.filled = true
	}
}

// Snapshot returns the current metadata. ActionHistory is ordered oldest
// to newest and holds at most the configured capacity.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	var history []string
	if t.filled {
		history = make([]string, 0, t.capacity)
		history = append(history, t.history[t.next:]...)
		history = append(history, t.history[:t.next]...)
	} else {
		history = append([]string(nil), t.history[:t.next]...)
	}

	return Snapshot{
		ActionCount:      t.count,
		LastActionType:   t.last,
		LastDispatchTime: t.lastAt,
		StateSize:        t.size,
		ActionHistory:    history,
	}
}
