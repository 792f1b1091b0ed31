// Package store implements the state container: one authoritative,
// immutable state tree per Store, mutated exclusively by dispatching
// actions through a composed reducer, observed through subscriptions,
// distinct-until-changed selections, and path-scoped sub-stores.
//
// # Execution model
//
// Everything is synchronous and atomic from the caller's perspective:
// Dispatch runs the reducer, swaps the state reference, and notifies every
// subscriber before returning, so GetState never observes a partial
// update. There is no preemptive parallelism anywhere in this package -
// the mutexes exist so that asynchronous effect results can re-enter
// through Dispatch safely, not to enable concurrent mutation.
//
// Re-entrancy policy (decided and fixed): dispatching from inside a
// reducer is rejected with a REENTRANT_DISPATCH error, while a dispatch
// arriving from another goroutine waits for the in-flight pass to finish
// and then runs as an ordinary subsequent dispatch. Dispatching from
// inside a subscriber callback is allowed and executes immediately as a
// fully independent dispatch that completes before the outer notification
// pass resumes.
//
// Notification policy (decided and fixed): subscribers are notified
// unconditionally after every dispatch, even when the reducer returned a
// referentially-identical state. Selections apply their own
// distinct-until-changed gate, so selection subscribers only ever see
// actual changes.
//
// # Dispatch observers
//
// Cross-cutting collaborators (telemetry trackers, metrics, action-driven
// effects) attach through ObserveDispatch, an explicit ordered observer
// list. Removing one observer never disturbs the others - there is no
// function-wrapping chain to break.
package store
