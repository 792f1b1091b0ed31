package store

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/strata/internal/action"
	"github.com/roach88/strata/internal/reduce"
	"github.com/roach88/strata/internal/tree"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestStore(t *testing.T, root action.Reducer, initial any, opts ...Option) *Store {
	t.Helper()
	opts = append([]Option{WithLogger(quietLogger())}, opts...)
	s := New(reduce.NewService(), opts...)
	require.NoError(t, s.Configure(root, initial, nil))
	return s
}

func TestStore_DispatchBeforeConfigureFails(t *testing.T) {
	s := New(reduce.NewService(), WithLogger(quietLogger()))

	err := s.Dispatch(action.Action{Type: "x"})
	require.Error(t, err)
	assert.True(t, IsNotConfigured(err))
	assert.Nil(t, s.GetState())
}

func TestStore_ConfigureTwiceFailsAndLeavesFirstIntact(t *testing.T) {
	s := newTestStore(t, counterRoot, nil)

	notified := 0
	s.Subscribe(func() { notified++ })
	require.NoError(t, s.Dispatch(action.Action{Type: "count/incremented"}))

	err := s.Configure(func(state any, a action.Action) any { return "other" }, nil, nil)
	require.Error(t, err)
	assert.True(t, IsAlreadyConfigured(err))

	// First configuration unaffected: state, reducer, and subscribers.
	assert.Equal(t, 1, s.GetState().(map[string]any)["count"])
	require.NoError(t, s.Dispatch(action.Action{Type: "count/incremented"}))
	assert.Equal(t, 2, s.GetState().(map[string]any)["count"])
	assert.Equal(t, 2, notified)
}

func TestStore_TwoStoresOneServiceIsFatal(t *testing.T) {
	svc := reduce.NewService()

	first := New(svc, WithLogger(quietLogger()))
	require.NoError(t, first.Configure(counterRoot, nil, nil))

	second := New(svc, WithLogger(quietLogger()))
	err := second.Configure(counterRoot, nil, nil)
	require.Error(t, err)
	assert.True(t, reduce.IsAlreadyBound(err))
}

func TestStore_SubscribersNotifiedInOrderEveryDispatch(t *testing.T) {
	s := newTestStore(t, counterRoot, nil)

	var order []string
	s.Subscribe(func() { order = append(order, "a") })
	s.Subscribe(func() { order = append(order, "b") })

	require.NoError(t, s.Dispatch(action.Action{Type: "count/incremented"}))
	assert.Equal(t, []string{"a", "b"}, order)

	// Notification is unconditional: a no-op dispatch still notifies.
	order = nil
	require.NoError(t, s.Dispatch(action.Action{Type: "unknown"}))
	assert.Equal(t, []string{"a", "b"}, order)
}

func TestStore_DispatchObservers(t *testing.T) {
	s := newTestStore(t, counterRoot, nil)

	var seen []string
	var prevCount, nextCount int
	s.ObserveDispatch(func(a action.Action, prev, next any) {
		seen = append(seen, a.Type)
		prevCount = prev.(map[string]any)["count"].(int)
		nextCount = next.(map[string]any)["count"].(int)
	})

	require.NoError(t, s.Dispatch(action.Action{Type: "count/incremented"}))
	assert.Equal(t, []string{"count/incremented"}, seen)
	assert.Equal(t, 0, prevCount)
	assert.Equal(t, 1, nextCount)
}

func TestStore_RemovingOneObserverKeepsOthers(t *testing.T) {
	s := newTestStore(t, counterRoot, nil)

	var got []string
	mk := func(name string) DispatchObserver {
		return func(a action.Action, prev, next any) { got = append(got, name) }
	}

	removeA := s.ObserveDispatch(mk("a"))
	s.ObserveDispatch(mk("b"))
	s.ObserveDispatch(mk("c"))

	removeA()
	removeA() // idempotent

	require.NoError(t, s.Dispatch(action.Action{Type: "x"}))
	assert.Equal(t, []string{"b", "c"}, got, "layers before and after the removed one are undisturbed")
}

func TestStore_NotifierInvokedAfterDispatch(t *testing.T) {
	notifies := 0
	s := newTestStore(t, counterRoot, nil, WithNotifier(NewDirectNotifier(func() { notifies++ })))

	require.NoError(t, s.Dispatch(action.Action{Type: "count/incremented"}))
	require.NoError(t, s.Dispatch(action.Action{Type: "count/incremented"}))
	assert.Equal(t, 2, notifies)
}

func TestStore_ReplaceReducer(t *testing.T) {
	s := newTestStore(t, counterRoot, nil)
	require.NoError(t, s.Dispatch(action.Action{Type: "count/incremented"}))

	s.ReplaceReducer(func(state any, a action.Action) any {
		m := state.(map[string]any)
		if a.Type == "count/incremented" {
			return map[string]any{"count": m["count"].(int) + 10}
		}
		return m
	})

	require.NoError(t, s.Dispatch(action.Action{Type: "count/incremented"}))
	assert.Equal(t, 11, s.GetState().(map[string]any)["count"], "history is not reprocessed, next dispatch uses new reducer")
}

func TestStore_ReplaceStorePreservesSubscribers(t *testing.T) {
	s := newTestStore(t, counterRoot, nil)

	notified := 0
	s.Subscribe(func() { notified++ })

	fresh := NewContainer(func(state any, a action.Action) any {
		if state == nil {
			return "fresh"
		}
		return state
	}, nil)
	require.NoError(t, s.ReplaceStore(fresh))

	assert.Equal(t, 1, notified, "subscribers observe the swap immediately")
	assert.Equal(t, "fresh", s.GetState())

	require.NoError(t, s.Dispatch(action.Action{Type: "x"}))
	assert.Equal(t, 2, notified, "subscription carried over to the new container")
}

func TestStore_ReplaceStoreOnFreshStoreClaimsService(t *testing.T) {
	svc := reduce.NewService()
	s := New(svc, WithLogger(quietLogger()))

	c := NewContainer(func(state any, a action.Action) any {
		if state == nil {
			return "swapped"
		}
		return state
	}, nil)
	require.NoError(t, s.ReplaceStore(c))

	assert.True(t, s.Configured())
	assert.Equal(t, "swapped", s.GetState())

	// The service is bound, so a second store cannot configure on it.
	other := New(svc, WithLogger(quietLogger()))
	err := other.Configure(counterRoot, nil, nil)
	require.Error(t, err)
	assert.False(t, other.Configured())

	// A second swap on the already-configured store stays valid.
	require.NoError(t, s.ReplaceStore(NewContainer(func(state any, a action.Action) any {
		if state == nil {
			return "again"
		}
		return state
	}, nil)))
	assert.Equal(t, "again", s.GetState())
}

func TestStore_ReentrantDispatchFromReducer(t *testing.T) {
	var s *Store
	var nestedErr error
	root := func(state any, a action.Action) any {
		if a.Type == "outer" {
			nestedErr = s.Dispatch(action.Action{Type: "inner"})
		}
		return state
	}
	s = newTestStore(t, root, "s0")

	require.NoError(t, s.Dispatch(action.Action{Type: "outer"}))
	require.Error(t, nestedErr)
	assert.True(t, IsReentrantDispatch(nestedErr))
	assert.Equal(t, "s0", s.GetState())
}

func TestStore_DispatchFromSubscriberIsIndependent(t *testing.T) {
	s := newTestStore(t, counterRoot, nil)

	once := false
	s.Subscribe(func() {
		if !once {
			once = true
			assert.NoError(t, s.Dispatch(action.Action{Type: "count/incremented"}))
		}
	})

	require.NoError(t, s.Dispatch(action.Action{Type: "count/incremented"}))
	assert.Equal(t, 2, s.GetState().(map[string]any)["count"])
}

func TestStore_Enhancers(t *testing.T) {
	var order []string
	mk := func(name string) Enhancer {
		return func(next CreateContainer) CreateContainer {
			return func(r action.Reducer, initial any) *Container {
				order = append(order, name)
				return next(r, initial)
			}
		}
	}

	svc := reduce.NewService()
	s := New(svc, WithLogger(quietLogger()))
	require.NoError(t, s.Configure(counterRoot, nil, nil, mk("outer"), mk("inner")))

	assert.Equal(t, []string{"outer", "inner"}, order, "first enhancer wraps outermost")
	assert.Equal(t, 0, s.GetState().(map[string]any)["count"])
}

func TestStore_SubReducerViaConfigureSubStore(t *testing.T) {
	s := newTestStore(t, counterRoot, nil)

	sub := s.ConfigureSubStore(tree.Path{"feature"}, func(state any, a action.Action) any {
		if a.Type == "feature/named" {
			return map[string]any{"name": a.Payload}
		}
		if state == nil {
			return map[string]any{"name": ""}
		}
		return state
	})

	require.NoError(t, s.Dispatch(action.Action{Type: "feature/named", Payload: "x"}))
	assert.Equal(t, map[string]any{"name": "x"}, sub.GetState())
	assert.Equal(t, 1, s.Service().SubReducerCount())
}
