// Package demo is a complete task-list application built on the state
// container. It exists to exercise every layer end to end: a normalized
// task collection managed by an entity adapter with locale-aware
// ordering, a "ui" slice owned by a sub-store, a lazily loaded "stats"
// slice kept current by a selector-driven effect, and memoized
// selectors over the combined tree. The CLI and the scenario harness
// both drive this application.
package demo
