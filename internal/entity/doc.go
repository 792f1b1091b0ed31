// Package entity implements pure CRUD over normalized ID-keyed
// collections: a collection is stored as {IDs, Entities} rather than a
// plain slice, giving O(1) lookup by id while IDs preserves order.
//
// Every operation is immutable: it returns a new *State, or the exact
// same *State pointer when the operation is a no-op (adding a present id,
// removing or updating an absent one). No-op stability is a contract, not
// an optimization - downstream referential-equality checks depend on it.
//
// Order: insertion order by default. With a sort comparer configured, IDs
// is recomputed as the full entity list sorted by the comparer after
// every mutating operation, so an update that changes a sorted field
// relocates the entity.
package entity
