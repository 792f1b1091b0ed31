package entity

import (
	"slices"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// State is a normalized collection: IDs carries the ordered ids and
// Entities maps each id to its entity. Invariant: IDs has no duplicates
// and its members are exactly the keys of Entities.
type State[T any] struct {
	IDs      []string     `json:"ids"`
	Entities map[string]T `json:"entities"`
}

// NewState returns an empty collection.
func NewState[T any]() *State[T] {
	return &State[T]{IDs: []string{}, Entities: map[string]T{}}
}

// Update describes a partial change to the entity with the given ID.
// Changes receives the current entity and returns the changed one; it
// must not mutate its argument. The change may alter the entity's id.
type Update[T any] struct {
	ID      string
	Changes func(T) T
}

// Adapter bundles the id-extraction function and optional sort comparer
// for one entity type. Adapters are stateless values; all data lives in
// the State they operate on.
type Adapter[T any] struct {
	selectID     func(T) string
	sortComparer func(a, b T) int
}

// Option configures an Adapter.
type Option[T any] func(*Adapter[T])

// WithSortComparer keeps IDs sorted by cmp after every mutating
// operation instead of insertion-ordered.
func WithSortComparer[T any](cmp func(a, b T) int) Option[T] {
	return func(a *Adapter[T]) {
		a.sortComparer = cmp
	}
}

// NewAdapter creates an adapter with the given id extractor.
func NewAdapter[T any](selectID func(T) string, opts ...Option[T]) Adapter[T] {
	a := Adapter[T]{selectID: selectID}
	for _, opt := range opts {
		opt(&a)
	}
	return a
}

// LocaleCompare returns a collation-aware string comparison for the given
// language, for use inside sort comparers. The returned func owns a
// collator with internal buffers; share it within one adapter, not across
// goroutines.
func LocaleCompare(tag language.Tag) func(a, b string) int {
	c := collate.New(tag)
	return func(a, b string) int {
		return c.CompareString(a, b)
	}
}

// clone copies a state for mutation. The copy shares nothing with the
// input, so the input stays immutable.
func (a Adapter[T]) clone(s *State[T]) *State[T] {
	ids := make([]string, len(s.IDs))
	copy(ids, s.IDs)
	entities := make(map[string]T, len(s.Entities))
	for k, v := range s.Entities {
		entities[k] = v
	}
	return &State[T]{IDs: ids, Entities: entities}
}

// resort recomputes IDs as the full entity list sorted by the comparer.
// Deliberately not an incremental re-insertion: an identity- or
// sort-field-changing update must relocate its entity.
func (a Adapter[T]) resort(s *State[T]) {
	if a.sortComparer == nil {
		return
	}
	slices.SortStableFunc(s.IDs, func(x, y string) int {
		return a.sortComparer(s.Entities[x], s.Entities[y])
	})
}

// AddOne appends the entity if its id is absent.
// No-op (same state reference) when the id is already present.
func (a Adapter[T]) AddOne(s *State[T], e T) *State[T] {
	id := a.selectID(e)
	if _, exists := s.Entities[id]; exists {
		return s
	}
	next := a.clone(s)
	next.IDs = append(next.IDs, id)
	next.Entities[id] = e
	a.resort(next)
	return next
}

// AddMany folds AddOne over the list.
func (a Adapter[T]) AddMany(s *State[T], es []T) *State[T] {
	next := s
	for _, e := range es {
		next = a.AddOne(next, e)
	}
	return next
}

// SetAll replaces the collection contents entirely from the list.
func (a Adapter[T]) SetAll(s *State[T], es []T) *State[T] {
	next := NewState[T]()
	for _, e := range es {
		id := a.selectID(e)
		if _, exists := next.Entities[id]; !exists {
			next.IDs = append(next.IDs, id)
		}
		next.Entities[id] = e
	}
	a.resort(next)
	return next
}

// SetOne inserts the entity if absent, replaces it if present. Never a
// no-op: always re-allocates, and re-sorts when a comparer is set.
func (a Adapter[T]) SetOne(s *State[T], e T) *State[T] {
	id := a.selectID(e)
	next := a.clone(s)
	if _, exists := next.Entities[id]; !exists {
		next.IDs = append(next.IDs, id)
	}
	next.Entities[id] = e
	a.resort(next)
	return next
}

// RemoveOne deletes the id and its entity if present.
// No-op (same state reference) when the id is absent.
func (a Adapter[T]) RemoveOne(s *State[T], id string) *State[T] {
	if _, exists := s.Entities[id]; !exists {
		return s
	}
	next := a.clone(s)
	delete(next.Entities, id)
	for i, cur := range next.IDs {
		if cur == id {
			next.IDs = append(next.IDs[:i], next.IDs[i+1:]...)
			break
		}
	}
	return next
}

// RemoveMany folds RemoveOne over the list.
func (a Adapter[T]) RemoveMany(s *State[T], ids []string) *State[T] {
	next := s
	for _, id := range ids {
		next = a.RemoveOne(next, id)
	}
	return next
}

// RemoveAll resets to the empty collection. Never a no-op.
func (a Adapter[T]) RemoveAll(_ *State[T]) *State[T] {
	return NewState[T]()
}

// UpdateOne applies the partial change to an existing entity.
// No-op (same state reference) when the id is absent. The change may move
// the entity to a new id; the old id is removed and the new one takes its
// position before any re-sort. Moving onto an id that is already occupied
// replaces that entity, keeping ids and entity keys in one-to-one
// correspondence.
func (a Adapter[T]) UpdateOne(s *State[T], u Update[T]) *State[T] {
	old, exists := s.Entities[u.ID]
	if !exists {
		return s
	}

	changed := u.Changes(old)
	newID := a.selectID(changed)

	next := a.clone(s)
	if newID != u.ID {
		delete(next.Entities, u.ID)
		_, collides := next.Entities[newID]
		for i := 0; i < len(next.IDs); i++ {
			if next.IDs[i] != u.ID {
				continue
			}
			if collides {
				// The new id already has a slot; dropping the old one
				// keeps IDs duplicate-free.
				next.IDs = append(next.IDs[:i], next.IDs[i+1:]...)
			} else {
				next.IDs[i] = newID
			}
			break
		}
	}
	next.Entities[newID] = changed
	a.resort(next)
	return next
}

// UpdateMany folds UpdateOne over the list.
func (a Adapter[T]) UpdateMany(s *State[T], us []Update[T]) *State[T] {
	next := s
	for _, u := range us {
		next = a.UpdateOne(next, u)
	}
	return next
}

// UpsertOne replaces the entity if present, adds it if absent.
func (a Adapter[T]) UpsertOne(s *State[T], e T) *State[T] {
	if _, exists := s.Entities[a.selectID(e)]; exists {
		return a.SetOne(s, e)
	}
	return a.AddOne(s, e)
}

// UpsertMany folds UpsertOne over the list.
func (a Adapter[T]) UpsertMany(s *State[T], es []T) *State[T] {
	next := s
	for _, e := range es {
		next = a.UpsertOne(next, e)
	}
	return next
}
