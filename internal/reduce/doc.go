// Package reduce implements the reducer composition engine: the registry
// that merges a root reducer, middleware, and dynamically-registered
// sub-reducers into the single reducer a store actually runs.
//
// # Lifecycle
//
// One Service is active per process in normal operation. Default() returns
// that instance; tests that need isolation either construct their own
// Service with NewService or call Reset() between runs. Singleton state
// never survives a Reset - skipping Reset between independent test runs is
// the only way registrations can leak, and doing so must be a deliberate
// choice.
//
// Binding a second store to an already-bound service is a fatal
// configuration error: it signals programmer misuse, is never retried,
// and leaves the first binding fully intact.
//
// # Composition order
//
// The composed reducer runs the middleware-wrapped root first, then every
// registered sub-reducer against its path in registration order. A
// sub-reducer that returns its input reference contributes nothing: no
// allocation happens at its path (structural sharing, see package tree).
package reduce
