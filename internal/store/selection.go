package store

import (
	"sync"

	"github.com/roach88/strata/internal/tree"
)

// Selector extracts a value from a state tree.
type Selector func(state any) any

// normalizeSelector resolves the accepted selector forms once, at
// construction time: a Selector/function, a property path (dot string or
// []string), or nil for the whole state.
func normalizeSelector(selector any) (Selector, error) {
	switch sel := selector.(type) {
	case nil:
		return func(state any) any { return state }, nil
	case Selector:
		return sel, nil
	case func(state any) any:
		return sel, nil
	default:
		path, err := tree.ParsePath(selector)
		if err != nil {
			return nil, err
		}
		return func(state any) any {
			v, _ := tree.Get(state, path)
			return v // absent path selects nil
		}, nil
	}
}

// Comparator reports whether two selected values are the same; used as
// the distinct-until-changed gate. The default is referential equality
// (tree.SameRef).
type Comparator func(a, b any) bool

// SelectOption configures a Selection.
type SelectOption func(*Selection)

// WithComparator overrides the distinct-until-changed check.
func WithComparator(eq Comparator) SelectOption {
	return func(sel *Selection) {
		if eq != nil {
			sel.eq = eq
		}
	}
}

// Selection is a lazily-subscribed, multicast, distinct-until-changed
// stream of selected values. The underlying store subscription exists only
// while the Selection has at least one subscriber; every subscriber is
// seeded immediately with the current value on Subscribe.
type Selection struct {
	store *Store
	sel   Selector
	eq    Comparator

	mu     sync.Mutex
	subs   callbackList[func(any)]
	detach func()
	last   any
	primed bool
}

func (s *Store) newSelection(acc Selector, opts ...SelectOption) *Selection {
	sel := &Selection{
		store: s,
		sel:   acc,
		eq:    tree.SameRef,
	}
	for _, opt := range opts {
		opt(sel)
	}
	return sel
}

// Subscribe attaches fn to the stream and seeds it synchronously with the
// current selected value. The returned handle is idempotent; when the
// last subscriber detaches, the Selection drops its store subscription.
func (sel *Selection) Subscribe(fn func(v any)) func() {
	sel.mu.Lock()
	if sel.detach == nil {
		sel.detach = sel.store.Subscribe(sel.onStoreChange)
		sel.last = sel.sel(sel.store.GetState())
		sel.primed = true
	}
	current := sel.last
	sel.mu.Unlock()

	remove := sel.subs.Add(fn)
	fn(current)

	return func() {
		remove()
		sel.mu.Lock()
		if sel.subs.Len() == 0 && sel.detach != nil {
			sel.detach()
			sel.detach = nil
			sel.primed = false
			sel.last = nil
		}
		sel.mu.Unlock()
	}
}

// Value computes the current selected value directly.
func (sel *Selection) Value() any {
	return sel.sel(sel.store.GetState())
}

// onStoreChange recomputes the selected value and multicasts it when the
// distinct gate reports a change.
func (sel *Selection) onStoreChange() {
	v := sel.sel(sel.store.GetState())

	sel.mu.Lock()
	if sel.primed && sel.eq(sel.last, v) {
		sel.mu.Unlock()
		return
	}
	sel.last = v
	sel.primed = true
	sel.mu.Unlock()

	for _, fn := range sel.subs.Snapshot() {
		fn(v)
	}
}
