// Package selector implements N-ary memoized selector composition:
// input selectors feed a result function whose invocation is gated on
// referential equality of the inputs.
package selector

import (
	"fmt"
	"sync"

	"github.com/roach88/strata/internal/tree"
)

// MaxInputs bounds the arity of a memoized selector.
const MaxInputs = 8

// Func extracts a value from state; the building block selectors compose
// from. Compatible with store.Selector.
type Func func(state any) any

// Memoized is a composed selector with a one-slot referential-equality
// cache.
//
// The cache is per-instance and lives exactly as long as whoever holds
// the selector reference; there is no cross-instance sharing and no
// automatic cleanup beyond Release. Sharing one Memoized between
// unrelated call sites shares its cache - construct separate instances
// when that matters.
type Memoized struct {
	inputs []Func
	result func(inputs ...any) any

	mu             sync.Mutex
	lastInputs     []any
	lastResult     any
	cached         bool
	recomputations int
}

// New composes 1 to MaxInputs input selectors with a result function.
func New(result func(inputs ...any) any, inputs ...Func) (*Memoized, error) {
	if result == nil {
		return nil, fmt.Errorf("result function is required")
	}
	if len(inputs) == 0 || len(inputs) > MaxInputs {
		return nil, fmt.Errorf("memoized selector needs 1-%d input selectors, got %d", MaxInputs, len(inputs))
	}
	return &Memoized{
		inputs: append([]Func(nil), inputs...),
		result: result,
	}, nil
}

// MustNew is New, panicking on error. For statically-known compositions.
func MustNew(result func(inputs ...any) any, inputs ...Func) *Memoized {
	m, err := New(result, inputs...)
	if err != nil {
		panic(err)
	}
	return m
}

// Call evaluates the selector against state.
//
// Every input selector runs on every call. The result function runs only
// when at least one input produced a value that is not referentially
// identical (tree.SameRef) to its previous value; otherwise the cached
// result is returned untouched.
func (m *Memoized) Call(state any) any {
	current := make([]any, len(m.inputs))
	for i, in := range m.inputs {
		current[i] = in(state)
	}

	m.mu.Lock()
	if m.cached && len(m.lastInputs) == len(current) {
		hit := true
		for i := range current {
			if !tree.SameRef(m.lastInputs[i], current[i]) {
				hit = false
				break
			}
		}
		if hit {
			out := m.lastResult
			m.mu.Unlock()
			return out
		}
	}
	m.mu.Unlock()

	out := m.result(current...)

	m.mu.Lock()
	m.lastInputs = current
	m.lastResult = out
	m.cached = true
	m.recomputations++
	m.mu.Unlock()

	return out
}

// Fn adapts the memoized selector to the plain Func shape, e.g. for use
// as an input to another Memoized or with Store.Select.
func (m *Memoized) Fn() Func {
	return m.Call
}

// Release clears the cache - the next Call recomputes regardless of input
// equality - and resets the recomputation counter to zero.
func (m *Memoized) Release() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastInputs = nil
	m.lastResult = nil
	m.cached = false
	m.recomputations = 0
}

// Recomputations returns how many times the result function has run since
// construction or the last Release. Test and debug inspection hook.
func (m *Memoized) Recomputations() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.recomputations
}
