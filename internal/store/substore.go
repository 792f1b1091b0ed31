package store

import (
	"github.com/roach88/strata/internal/action"
	"github.com/roach88/strata/internal/tree"
)

// SubStore presents the Store surface scoped to a path within the owning
// store's state tree. It holds no state of its own - every read and write
// is an indirection through the root store - so discarding a SubStore
// value has no effect on root state. Only Unregister removes its local
// reducer from future composition.
type SubStore struct {
	root *Store
	path tree.Path
	hash string
}

// Path returns the sub-store's location in the root tree.
func (s *SubStore) Path() tree.Path {
	return s.path.Child()
}

// GetState returns the root state narrowed to the sub-store's path, or
// nil when the path segment is absent.
func (s *SubStore) GetState() any {
	v, _ := tree.Get(s.root.GetState(), s.path)
	return v
}

// Dispatch forwards the action unchanged to the root store. The action is
// not tagged with the path; the local reducer is expected to recognize
// the action type and update its slice.
func (s *SubStore) Dispatch(a action.Action) error {
	return s.root.Dispatch(a)
}

// Select builds a selection stream whose selector first narrows to the
// sub-store's path, then applies the caller's selector. Accepts the same
// selector forms as Store.Select.
func (s *SubStore) Select(selector any, opts ...SelectOption) (*Selection, error) {
	acc, err := normalizeSelector(selector)
	if err != nil {
		return nil, err
	}
	path := s.path
	scoped := func(state any) any {
		slice, _ := tree.Get(state, path)
		return acc(slice)
	}
	return s.root.newSelection(scoped, opts...), nil
}

// ConfigureSubStore carves a nested sub-store; the relative path is
// resolved against this sub-store's path on the root store.
func (s *SubStore) ConfigureSubStore(relative tree.Path, local action.Reducer) *SubStore {
	return s.root.ConfigureSubStore(s.path.Child(relative...), local)
}

// Unregister removes the sub-store's local reducer from composition.
// Returns true if the registration existed. Safe to call more than once.
func (s *SubStore) Unregister() bool {
	return s.root.Service().UnregisterSubReducer(s.hash)
}
