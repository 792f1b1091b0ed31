// Package action defines the message and reducer contracts shared by every
// other package in this module.
package action

// Action is a tagged message describing an intended state transition.
// Identity is Type; Payload carries any additional data by convention.
// Actions are transient - nothing retains them past the dispatch that
// produced them, except bounded history kept by observability tooling.
type Action struct {
	Type    string
	Payload any
}

// Reducer computes the next state from the current state and an action.
//
// Reducers must be pure: never mutate the input state, return either the
// same reference (no change) or a new value built with structural sharing.
// A reducer that panics propagates out of dispatch; the store keeps its
// pre-dispatch state in that case.
type Reducer func(state any, a Action) any

// Middleware wraps a reducer with cross-cutting behavior. Middleware is
// applied around the root reducer only; sub-reducers compose after the
// wrapped root has run.
type Middleware func(next Reducer) Reducer

// Reserved action types dispatched by the runtime itself.
const (
	// TypeInit seeds initial state when a container is created.
	TypeInit = "@@strata/INIT"

	// TypeReplace is dispatched after a reducer replacement so the new
	// reducer can populate slices it owns.
	TypeReplace = "@@strata/REPLACE"

	// LazyInitPrefix prefixes the slice-initialization action dispatched
	// when a lazily-loaded reducer is installed.
	LazyInitPrefix = "LAZY_REDUCER_INIT/"
)

// LazyInit builds the slice-initialization action for a lazy reducer key.
func LazyInit(key string) Action {
	return Action{Type: LazyInitPrefix + key}
}

// Creator builds actions of a fixed type. Typed-action helper: the only
// place payload shape conventions are enforced.
type Creator func(payload any) Action

// NewCreator returns a Creator for the given action type.
func NewCreator(actionType string) Creator {
	return func(payload any) Action {
		return Action{Type: actionType, Payload: payload}
	}
}

// Identity is the reducer that returns its input unchanged.
func Identity(state any, _ Action) any {
	return state
}

// Wrap applies middleware around a reducer. The first middleware in the
// slice becomes the outermost layer, matching registration order.
func Wrap(r Reducer, middleware []Middleware) Reducer {
	wrapped := r
	for i := len(middleware) - 1; i >= 0; i-- {
		wrapped = middleware[i](wrapped)
	}
	return wrapped
}
