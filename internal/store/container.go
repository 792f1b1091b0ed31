package store

import (
	"bytes"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/roach88/strata/internal/action"
)

// Container is the minimal underlying state holder: one reducer, one state
// reference, one listener list. Stores wrap exactly one Container at a
// time; enhancers wrap the capability of creating one.
type Container struct {
	mu         sync.Mutex // guards reducer, state
	dispatchMu sync.Mutex // serializes dispatch passes
	reducer    action.Reducer
	state      any
	listeners  callbackList[func()]

	// Goroutine id of the in-flight dispatch, 0 when idle. Used to tell
	// re-entrant dispatch (programmer error, rejected) apart from a
	// concurrent dispatch on another goroutine (waits its turn).
	dispatching atomic.Uint64
}

func goroutineID() uint64 {
	var buf [32]byte
	// First stack line is "goroutine <id> [running]:".
	n := runtime.Stack(buf[:], false)
	fields := bytes.Fields(buf[:n])
	if len(fields) < 2 {
		return 0
	}
	id, err := strconv.ParseUint(string(fields[1]), 10, 64)
	if err != nil {
		return 0
	}
	return id
}

// CreateContainer builds a Container from a reducer and initial state.
// This is the capability enhancers wrap.
type CreateContainer func(r action.Reducer, initial any) *Container

// Enhancer wraps container creation. Enhancers compose right-to-left: the
// first enhancer in a list becomes the outermost wrapper.
type Enhancer func(next CreateContainer) CreateContainer

// NewContainer creates a Container and seeds its state by running the
// reducer once with the init action, so reducers that default absent
// slices populate them before the first external dispatch.
func NewContainer(r action.Reducer, initial any) *Container {
	c := &Container{reducer: r}
	c.state = r(initial, action.Action{Type: action.TypeInit})
	return c
}

// GetState returns the current state reference. Callers must treat it as
// immutable: it is a snapshot by reference, not a copy.
func (c *Container) GetState() any {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Dispatch runs the reducer with (currentState, a), swaps the state
// reference, and notifies listeners in registration order.
//
// A dispatch issued from inside the reducer (same goroutine, reducer
// still executing) is rejected with a REENTRANT_DISPATCH error. A
// dispatch from another goroutine waits until the in-flight pass
// finishes, so effect goroutines and external callers serialize instead
// of failing. A reducer panic propagates to the caller with the
// pre-dispatch state fully intact - the swap never happens for a failing
// update.
func (c *Container) Dispatch(a action.Action) error {
	gid := goroutineID()
	if c.dispatching.Load() == gid && gid != 0 {
		return &Error{
			Code:    ErrCodeReentrantDispatch,
			Message: "dispatch during reducer execution (action " + a.Type + ")",
		}
	}

	c.dispatchMu.Lock()
	c.dispatching.Store(gid)

	c.mu.Lock()
	r := c.reducer
	prev := c.state
	c.mu.Unlock()

	// The window must close even when the reducer panics, or the
	// container would reject every subsequent same-goroutine dispatch
	// and block every other goroutine forever.
	completed := false
	defer func() {
		c.dispatching.Store(0)
		c.dispatchMu.Unlock()
		if !completed {
			return
		}
		// Listeners run outside the lock and outside the dispatching
		// window, so a listener may itself dispatch; that nested
		// dispatch completes before this notification pass continues.
		for _, fn := range c.listeners.Snapshot() {
			fn()
		}
	}()

	next := r(prev, a)

	c.mu.Lock()
	c.state = next
	c.mu.Unlock()
	completed = true
	return nil
}

// Subscribe registers a listener invoked after every dispatch. Listeners
// receive no arguments; read current state via GetState. Returns the
// removal handle.
func (c *Container) Subscribe(fn func()) func() {
	return c.listeners.Add(fn)
}

// ReplaceReducer swaps the reducer for the next dispatch onward.
func (c *Container) ReplaceReducer(next action.Reducer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reducer = next
}
