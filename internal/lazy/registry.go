// Package lazy implements the runtime registry for whole top-level state
// slices: code-split features register a named reducer at load time, the
// registry recombines everything into one keyed reducer, and pushes it
// into the store via reducer replacement.
//
// This operates at a different granularity than the composition engine's
// sub-reducers: slices own disjoint top-level keys combined by shallow
// merge, not nested-path composition.
//
// One Registry is active per process in normal operation (Default), with
// Reset as the test-isolation escape hatch - the same lifecycle
// discipline as the composition service.
package lazy

import (
	"log/slog"
	"sync"

	"github.com/roach88/strata/internal/action"
	"github.com/roach88/strata/internal/store"
	"github.com/roach88/strata/internal/tree"
)

// Registry tracks named top-level reducer slices.
type Registry struct {
	mu        sync.Mutex
	base      action.Reducer
	slices    map[string]action.Reducer
	order     []string
	listeners []*listener
}

type listener struct {
	fn      func()
	removed bool
}

// NewRegistry creates an empty lazy-slice registry.
func NewRegistry() *Registry {
	return &Registry{slices: make(map[string]action.Reducer)}
}

var defaultRegistry = NewRegistry()

// Default returns the process-wide Registry.
func Default() *Registry {
	return defaultRegistry
}

// SetBaseReducer installs the reducer that runs before the slice
// combination. Does not notify listeners.
func (r *Registry) SetBaseReducer(base action.Reducer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.base = base
}

// Register inserts or replaces the slice reducer for key and notifies
// change listeners synchronously.
func (r *Registry) Register(key string, slice action.Reducer) {
	r.mu.Lock()
	if _, exists := r.slices[key]; !exists {
		r.order = append(r.order, key)
	}
	r.slices[key] = slice
	r.mu.Unlock()

	slog.Debug("lazy reducer registered", "key", key)
	r.notify()
}

// Unregister removes the slice reducer for key and notifies listeners.
// A no-op (no notification) when the key is absent.
func (r *Registry) Unregister(key string) {
	r.mu.Lock()
	if _, exists := r.slices[key]; !exists {
		r.mu.Unlock()
		return
	}
	delete(r.slices, key)
	for i, k := range r.order {
		if k == key {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	r.mu.Unlock()

	slog.Debug("lazy reducer unregistered", "key", key)
	r.notify()
}

// Keys returns the registered slice keys in registration order.
func (r *Registry) Keys() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// OnChange registers a listener fired after every Register/Unregister
// that actually changes the registry. Returns an idempotent removal
// handle, safe to call from inside the listener.
func (r *Registry) OnChange(fn func()) func() {
	r.mu.Lock()
	defer r.mu.Unlock()

	l := &listener{fn: fn}
	r.listeners = append(r.listeners, l)

	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if l.removed {
			return
		}
		l.removed = true
		for i, cur := range r.listeners {
			if cur == l {
				r.listeners = append(r.listeners[:i], r.listeners[i+1:]...)
				break
			}
		}
	}
}

func (r *Registry) notify() {
	r.mu.Lock()
	fns := make([]func(), 0, len(r.listeners))
	for _, l := range r.listeners {
		fns = append(fns, l.fn)
	}
	r.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// Combined returns the current combination:
//
//   - base set: run base first, then every slice reducer over its key of
//     the base's result, shallow-merging changed slices in
//   - no base: the plain combination of registered slices
//   - nothing registered at all: the identity reducer
//
// The returned reducer snapshots the registry at call time of Combined,
// not dynamically - re-registration requires pushing a fresh combination
// (see LoadReducer).
func (r *Registry) Combined() action.Reducer {
	r.mu.Lock()
	base := r.base
	keys := make([]string, len(r.order))
	copy(keys, r.order)
	slices := make(map[string]action.Reducer, len(r.slices))
	for k, v := range r.slices {
		slices[k] = v
	}
	r.mu.Unlock()

	if base == nil && len(keys) == 0 {
		return action.Identity
	}

	return func(state any, a action.Action) any {
		next := state
		if base != nil {
			next = base(next, a)
		}

		for _, key := range keys {
			slice, _ := tree.Get(next, tree.Path{key})
			out := slices[key](slice, a)
			if tree.SameRef(slice, out) {
				continue
			}
			next = tree.Set(next, tree.Path{key}, out)
		}
		return next
	}
}

// LoadReducer registers a slice, pushes the recombined reducer into the
// store, and dispatches the slice-initialization action so the incoming
// reducer can seed its initial value. The returned unload function
// unregisters the slice and pushes the recombined reducer again; it is
// idempotent.
func (r *Registry) LoadReducer(key string, slice action.Reducer, st *store.Store) (func(), error) {
	r.Register(key, slice)
	st.ReplaceReducer(r.Combined())

	if err := st.Dispatch(action.LazyInit(key)); err != nil {
		r.Unregister(key)
		st.ReplaceReducer(r.Combined())
		return nil, err
	}

	var once sync.Once
	unload := func() {
		once.Do(func() {
			r.Unregister(key)
			st.ReplaceReducer(r.Combined())
		})
	}
	return unload, nil
}

// Reset drops the base reducer, all slices, and all listeners.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.base = nil
	r.slices = make(map[string]action.Reducer)
	r.order = nil
	r.listeners = nil
}
