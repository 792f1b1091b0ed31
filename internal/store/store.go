package store

import (
	"log/slog"
	"sync"

	"github.com/roach88/strata/internal/action"
	"github.com/roach88/strata/internal/reduce"
	"github.com/roach88/strata/internal/tree"
)

// DispatchObserver is notified after every dispatch with the action and
// the pre/post state references. Observers form an explicit ordered list;
// attaching or removing one never disturbs the others.
type DispatchObserver func(a action.Action, prev, next any)

// Store owns exactly one underlying Container and is the single entry and
// exit point for state mutation and observation.
type Store struct {
	mu         sync.Mutex
	svc        *reduce.Service
	logger     *slog.Logger
	notifier   Notifier
	container  *Container
	detach     func()
	configured bool

	subscribers callbackList[func()]
	observers   callbackList[DispatchObserver]
}

// Option configures a Store at construction.
type Option func(*Store)

// WithNotifier installs a change-detection notification strategy.
// Default: NoopNotifier.
func WithNotifier(n Notifier) Option {
	return func(s *Store) {
		if n != nil {
			s.notifier = n
		}
	}
}

// WithLogger overrides the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates an unconfigured Store bound to a composition service.
// Passing nil uses the process-wide default service.
func New(svc *reduce.Service, opts ...Option) *Store {
	if svc == nil {
		svc = reduce.Default()
	}
	s := &Store{
		svc:      svc,
		logger:   slog.Default(),
		notifier: NoopNotifier{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Configure installs the root reducer, initial state, middleware, and
// enhancers, then begins broadcasting. Calling Configure on an
// already-configured store (or binding a second store to the composition
// service) is a fatal configuration error; the first configuration - its
// state and its subscribers - is left fully intact.
func (s *Store) Configure(root action.Reducer, initial any, middleware []action.Middleware, enhancers ...Enhancer) error {
	s.mu.Lock()
	if s.configured {
		s.mu.Unlock()
		return &Error{
			Code:    ErrCodeAlreadyConfigured,
			Message: "store is already configured",
		}
	}
	s.mu.Unlock()

	if err := s.svc.Bind(); err != nil {
		return err
	}

	composed := s.svc.Compose(root, middleware...)

	create := CreateContainer(NewContainer)
	for i := len(enhancers) - 1; i >= 0; i-- {
		create = enhancers[i](create)
	}
	c := create(composed, initial)

	s.mu.Lock()
	s.attachLocked(c)
	s.configured = true
	s.mu.Unlock()

	s.logger.Debug("store configured",
		"middleware", len(middleware),
		"enhancers", len(enhancers),
	)
	return nil
}

// attachLocked wires the store's fan-out to a container. Caller holds s.mu.
func (s *Store) attachLocked(c *Container) {
	s.container = c
	s.detach = c.Subscribe(s.fanout)
}

// fanout relays a container notification to the store's own subscribers
// in registration order.
func (s *Store) fanout() {
	for _, fn := range s.subscribers.Snapshot() {
		fn()
	}
}

// Configured reports whether Configure has completed.
func (s *Store) Configured() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.configured
}

// GetState returns the current state reference (nil before Configure).
// Callers must not mutate the returned value.
func (s *Store) GetState() any {
	s.mu.Lock()
	c := s.container
	s.mu.Unlock()
	if c == nil {
		return nil
	}
	return c.GetState()
}

// Dispatch synchronously runs the composed reducer, swaps the state
// reference, and notifies - in order - subscribers, dispatch observers,
// and the change-notification strategy, before returning.
//
// Fails with a NOT_CONFIGURED error before Configure. A reducer panic
// propagates with state left at its pre-dispatch value.
func (s *Store) Dispatch(a action.Action) error {
	s.mu.Lock()
	if !s.configured {
		s.mu.Unlock()
		return &Error{
			Code:    ErrCodeNotConfigured,
			Message: "dispatch before store configuration (action " + a.Type + ")",
		}
	}
	c := s.container
	s.mu.Unlock()

	prev := c.GetState()
	if err := c.Dispatch(a); err != nil {
		return err
	}
	next := c.GetState()

	for _, ob := range s.observers.Snapshot() {
		ob(a, prev, next)
	}
	s.notifier.Notify()
	return nil
}

// Subscribe registers a listener notified after every dispatch, in
// registration order, unconditionally (see package doc for the
// notification policy). The listener receives no arguments and reads
// state via GetState. The returned handle is idempotent and safe to call
// from inside the listener itself.
func (s *Store) Subscribe(fn func()) func() {
	return s.subscribers.Add(fn)
}

// ObserveDispatch registers a dispatch observer. Observers run after
// subscriber notification, in registration order.
func (s *Store) ObserveDispatch(fn DispatchObserver) func() {
	return s.observers.Add(fn)
}

// Select builds a distinct-until-changed selection stream over this
// store. The selector may be a func(any) any (or Selector), a dot-string
// or []string property path, or nil for the whole state.
func (s *Store) Select(selector any, opts ...SelectOption) (*Selection, error) {
	acc, err := normalizeSelector(selector)
	if err != nil {
		return nil, err
	}
	return s.newSelection(acc, opts...), nil
}

// ConfigureSubStore carves off a sub-store view at path, registering the
// local reducer with the composition engine under its stable content hash
// so the path's slice is kept live. Re-configuring the same reducer at the
// same path reuses the existing registration.
func (s *Store) ConfigureSubStore(path tree.Path, local action.Reducer) *SubStore {
	hash := tree.SubReducerHash(path, tree.FuncToken(local))
	s.svc.RegisterSubReducer(hash, path, local)
	return &SubStore{root: s, path: path.Child(), hash: hash}
}

// ReplaceReducer delegates to the composition engine: the next dispatch
// runs the new root reducer. A replace action is dispatched so the
// incoming reducer can seed slices it owns.
func (s *Store) ReplaceReducer(next action.Reducer) {
	s.svc.ReplaceReducer(next)
	if s.Configured() {
		if err := s.Dispatch(action.Action{Type: action.TypeReplace}); err != nil {
			s.logger.Error("replace-reducer seed dispatch failed", "error", err)
		}
	}
}

// ReplaceStore detaches from the current underlying container and
// attaches to a new one. External subscriber registrations survive the
// swap; they are notified once immediately so they observe the new
// container's state.
//
// Swapping a container onto a never-configured store claims the
// composition service the same way Configure does, so a second store
// can never bind the same service through this path either.
func (s *Store) ReplaceStore(c *Container) error {
	if c == nil {
		return nil
	}

	if !s.Configured() {
		if err := s.svc.Bind(); err != nil {
			return err
		}
	}

	s.mu.Lock()
	if s.detach != nil {
		s.detach()
	}
	s.attachLocked(c)
	s.configured = true
	s.mu.Unlock()

	s.fanout()
	return nil
}

// Service exposes the composition engine this store is bound to.
func (s *Store) Service() *reduce.Service {
	return s.svc
}
