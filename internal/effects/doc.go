// Package effects bridges store value streams into asynchronous side
// effects with controlled concurrency.
//
// A Runner observes either a selector stream (RunSelector) or dispatched
// action types (RunActions) and maps each observed value onto an
// activation of a user effect function. How activations overlap is
// governed by the runner's Policy:
//
//   - Switch: a new value cancels the in-flight activation; at most one
//     activation runs at a time.
//   - Merge: every value starts an activation immediately; unbounded
//     concurrency.
//   - Exhaust: values arriving while an activation is in flight are
//     dropped.
//   - Concat: values are queued and activations run strictly one at a
//     time in arrival order.
//
// Effect errors and panics are isolated per activation: they are logged
// and the activation produces no result. A Terminal error stops the
// runner permanently when resubscription is disabled; otherwise it too
// is isolated. Results with a non-empty action type are dispatched back
// to the store.
//
// Each activation carries a token from the runner's TokenGenerator for
// log correlation. Production runners use UUIDv7Generator; tests use
// FixedGenerator for deterministic logs.
package effects
