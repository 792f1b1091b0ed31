package store

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/strata/internal/action"
)

func counterRoot(state any, a action.Action) any {
	m, ok := state.(map[string]any)
	if !ok {
		m = map[string]any{"count": 0}
	}
	if a.Type == "count/incremented" {
		next := make(map[string]any, len(m))
		for k, v := range m {
			next[k] = v
		}
		next["count"] = m["count"].(int) + 1
		return next
	}
	return m
}

func TestContainer_SeedsStateViaInitAction(t *testing.T) {
	c := NewContainer(counterRoot, nil)
	assert.Equal(t, map[string]any{"count": 0}, c.GetState())
}

func TestContainer_DispatchSwapsState(t *testing.T) {
	c := NewContainer(counterRoot, nil)

	require.NoError(t, c.Dispatch(action.Action{Type: "count/incremented"}))
	assert.Equal(t, 1, c.GetState().(map[string]any)["count"])
}

func TestContainer_ListenersInRegistrationOrder(t *testing.T) {
	c := NewContainer(counterRoot, nil)

	var order []string
	c.Subscribe(func() { order = append(order, "first") })
	c.Subscribe(func() { order = append(order, "second") })

	require.NoError(t, c.Dispatch(action.Action{Type: "count/incremented"}))
	assert.Equal(t, []string{"first", "second"}, order)
}

func TestContainer_UnsubscribeIsIdempotent(t *testing.T) {
	c := NewContainer(counterRoot, nil)

	calls := 0
	unsub := c.Subscribe(func() { calls++ })
	unsub()
	unsub() // second call is a no-op

	require.NoError(t, c.Dispatch(action.Action{Type: "count/incremented"}))
	assert.Equal(t, 0, calls)
}

func TestContainer_UnsubscribeFromInsideListener(t *testing.T) {
	c := NewContainer(counterRoot, nil)

	calls := 0
	var unsub func()
	unsub = c.Subscribe(func() {
		calls++
		unsub()
	})

	require.NoError(t, c.Dispatch(action.Action{Type: "count/incremented"}))
	require.NoError(t, c.Dispatch(action.Action{Type: "count/incremented"}))
	assert.Equal(t, 1, calls, "listener removed itself after the first dispatch")
}

func TestContainer_ReentrantDispatchFromReducerRejected(t *testing.T) {
	var c *Container
	var nestedErr error
	reducer := func(state any, a action.Action) any {
		if a.Type == "outer" {
			nestedErr = c.Dispatch(action.Action{Type: "inner"})
		}
		return state
	}
	c = NewContainer(reducer, "s0")

	require.NoError(t, c.Dispatch(action.Action{Type: "outer"}))
	require.Error(t, nestedErr)
	assert.True(t, IsReentrantDispatch(nestedErr))
}

func TestContainer_DispatchFromListenerRunsIndependently(t *testing.T) {
	c := NewContainer(counterRoot, nil)

	dispatched := false
	c.Subscribe(func() {
		if !dispatched {
			dispatched = true
			assert.NoError(t, c.Dispatch(action.Action{Type: "count/incremented"}))
		}
	})

	require.NoError(t, c.Dispatch(action.Action{Type: "count/incremented"}))
	assert.Equal(t, 2, c.GetState().(map[string]any)["count"])
}

func TestContainer_ReducerPanicLeavesStateIntact(t *testing.T) {
	c := NewContainer(func(state any, a action.Action) any {
		if a.Type == "boom" {
			panic("reducer exploded")
		}
		if state == nil {
			return "seeded"
		}
		return state
	}, nil)

	assert.Panics(t, func() { _ = c.Dispatch(action.Action{Type: "boom"}) })
	assert.Equal(t, "seeded", c.GetState(), "failing update never partially applies")

	// The container recovers for subsequent dispatches.
	assert.NoError(t, c.Dispatch(action.Action{Type: "fine"}))
}

func TestContainer_ReplaceReducer(t *testing.T) {
	c := NewContainer(counterRoot, nil)
	c.ReplaceReducer(func(state any, a action.Action) any { return "replaced" })

	require.NoError(t, c.Dispatch(action.Action{Type: "anything"}))
	assert.Equal(t, "replaced", c.GetState())
}

func TestContainer_ConcurrentDispatchesSerialize(t *testing.T) {
	c := NewContainer(counterRoot, nil)

	const workers = 8
	const perWorker = 50
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				assert.NoError(t, c.Dispatch(action.Action{Type: "count/incremented"}))
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, workers*perWorker, c.GetState().(map[string]any)["count"])
}
