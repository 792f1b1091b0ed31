package entity

// Selectors reads a bare *State.
type Selectors[T any] struct {
	SelectIDs      func(s *State[T]) []string
	SelectEntities func(s *State[T]) map[string]T
	SelectAll      func(s *State[T]) []T
	SelectTotal    func(s *State[T]) int
}

// Selectors returns the collection selectors against a bare *State.
func (a Adapter[T]) Selectors() Selectors[T] {
	return Selectors[T]{
		SelectIDs:      func(s *State[T]) []string { return s.IDs },
		SelectEntities: func(s *State[T]) map[string]T { return s.Entities },
		SelectAll: func(s *State[T]) []T {
			out := make([]T, 0, len(s.IDs))
			for _, id := range s.IDs {
				out = append(out, s.Entities[id])
			}
			return out
		},
		SelectTotal: func(s *State[T]) int { return len(s.IDs) },
	}
}

// ScopedSelectors read from a root state through a feature selector.
type ScopedSelectors[T any] struct {
	SelectIDs      func(root any) []string
	SelectEntities func(root any) map[string]T
	SelectAll      func(root any) []T
	SelectTotal    func(root any) int
}

// ScopedSelectors composes the collection selectors with a feature
// selector, producing root-state-scoped equivalents. A feature selector
// returning nil yields empty results, not a panic.
func (a Adapter[T]) ScopedSelectors(feature func(root any) *State[T]) ScopedSelectors[T] {
	bare := a.Selectors()
	narrow := func(root any) *State[T] {
		s := feature(root)
		if s == nil {
			return NewState[T]()
		}
		return s
	}
	return ScopedSelectors[T]{
		SelectIDs:      func(root any) []string { return bare.SelectIDs(narrow(root)) },
		SelectEntities: func(root any) map[string]T { return bare.SelectEntities(narrow(root)) },
		SelectAll:      func(root any) []T { return bare.SelectAll(narrow(root)) },
		SelectTotal:    func(root any) int { return bare.SelectTotal(narrow(root)) },
	}
}
