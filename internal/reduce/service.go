package reduce

import (
	"log/slog"
	"sync"

	"github.com/roach88/strata/internal/action"
	"github.com/roach88/strata/internal/tree"
)

// registration records one dynamically-registered sub-reducer.
type registration struct {
	hash    string
	path    tree.Path
	reducer action.Reducer
}

// Service is the reducer composition engine.
//
// All mutation goes through the documented methods; no other component
// writes the internal maps directly. Within one synchronous turn there is
// no interleaving, but registration order relative to the first dispatch
// is observable: a sub-reducer registered after a dispatch only sees
// subsequent actions.
type Service struct {
	mu         sync.Mutex
	root       action.Reducer
	middleware []action.Middleware
	subs       map[string]*registration
	order      []string // registration order, drives composition order
	bound      bool
}

// NewService creates an empty composition engine.
func NewService() *Service {
	return &Service{subs: make(map[string]*registration)}
}

// defaultService is the process-wide instance. See package doc for the
// singleton lifecycle and the Reset escape hatch.
var defaultService = NewService()

// Default returns the process-wide Service.
func Default() *Service {
	return defaultService
}

// Compose installs root and middleware and returns the composed reducer.
//
// The returned reducer is live: it reads the current root (which
// ReplaceReducer may swap) and the current sub-reducer registrations on
// every call, so later registrations take effect on the next dispatch
// without re-composition.
func (s *Service) Compose(root action.Reducer, middleware ...action.Middleware) action.Reducer {
	s.mu.Lock()
	s.root = root
	s.middleware = middleware
	s.mu.Unlock()

	return func(state any, a action.Action) any {
		s.mu.Lock()
		r := s.root
		mw := s.middleware
		regs := make([]*registration, 0, len(s.order))
		for _, h := range s.order {
			regs = append(regs, s.subs[h])
		}
		s.mu.Unlock()

		if r == nil {
			r = action.Identity
		}

		next := action.Wrap(r, mw)(state, a)

		for _, reg := range regs {
			slice, _ := tree.Get(next, reg.path)
			out := reg.reducer(slice, a)
			if tree.SameRef(slice, out) {
				continue
			}
			next = tree.Set(next, reg.path, out)
		}
		return next
	}
}

// RegisterSubReducer inserts a sub-reducer for the given hash and path.
// Registering an already-present hash is idempotent: the second call is a
// no-op and returns false, leaving the original registration in place.
func (s *Service) RegisterSubReducer(hash string, path tree.Path, r action.Reducer) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.subs[hash]; exists {
		slog.Debug("sub-reducer already registered, skipping", "hash", hash, "path", path.String())
		return false
	}

	s.subs[hash] = &registration{hash: hash, path: path.Child(), reducer: r}
	s.order = append(s.order, hash)
	slog.Debug("sub-reducer registered", "hash", hash, "path", path.String(), "count", len(s.subs))
	return true
}

// UnregisterSubReducer removes the registration for hash.
// Returns true if an entry existed and was removed.
func (s *Service) UnregisterSubReducer(hash string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.subs[hash]; !exists {
		return false
	}

	delete(s.subs, hash)
	for i, h := range s.order {
		if h == hash {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	slog.Debug("sub-reducer unregistered", "hash", hash, "count", len(s.subs))
	return true
}

// SubReducerCount returns the current number of registrations.
func (s *Service) SubReducerCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

// ReplaceReducer atomically swaps the root reducer for the next dispatch
// onward. History is never reprocessed.
func (s *Service) ReplaceReducer(next action.Reducer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.root = next
}

// Bind marks the service as owned by a store. A second Bind without an
// intervening Reset is a fatal ConfigError; the first binding stays fully
// intact.
func (s *Service) Bind() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.bound {
		return &ConfigError{
			Code:    ErrCodeAlreadyBound,
			Message: "a store is already configured on this composition service",
		}
	}
	s.bound = true
	return nil
}

// Reset drops the root reducer, middleware, all sub-reducer registrations,
// and the store binding. Test isolation depends on calling this between
// independent runs against the Default service.
func (s *Service) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.root = nil
	s.middleware = nil
	s.subs = make(map[string]*registration)
	s.order = nil
	s.bound = false
}
