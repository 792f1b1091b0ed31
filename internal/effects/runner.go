package effects

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/roach88/strata/internal/action"
	"github.com/roach88/strata/internal/store"
)

// Effect is the user side-effect body. It receives the observed value
// (the selection result for RunSelector, the action for RunActions) and
// returns an action to dispatch back to the store. A zero-Type result
// means no dispatch. The context is canceled when the activation is
// superseded (Switch policy) or the runner is destroyed.
type Effect func(ctx context.Context, value any) (action.Action, error)

// Policy selects how overlapping activations interleave.
type Policy int

const (
	// Switch cancels the in-flight activation when a new value arrives.
	Switch Policy = iota
	// Merge runs every activation concurrently, unbounded.
	Merge
	// Exhaust drops values that arrive while an activation is in flight.
	Exhaust
	// Concat queues values and runs activations one at a time in order.
	Concat
)

func (p Policy) String() string {
	switch p {
	case Switch:
		return "switch"
	case Merge:
		return "merge"
	case Exhaust:
		return "exhaust"
	case Concat:
		return "concat"
	default:
		return fmt.Sprintf("policy(%d)", int(p))
	}
}

type terminalError struct {
	err error
}

func (e *terminalError) Error() string { return e.err.Error() }
func (e *terminalError) Unwrap() error { return e.err }

// Terminal marks an effect error as terminal. When the runner was built
// with resubscription disabled, a terminal error stops it permanently;
// otherwise terminal errors are isolated like any other.
func Terminal(err error) error {
	if err == nil {
		return nil
	}
	return &terminalError{err: err}
}

// IsTerminal reports whether any error in err's chain was marked with
// Terminal.
func IsTerminal(err error) bool {
	var t *terminalError
	return errors.As(err, &t)
}

// Runner drives one effect from one value source under one Policy.
type Runner struct {
	store       *store.Store
	effect      Effect
	policy      Policy
	log         *slog.Logger
	tokens      TokenGenerator
	resubscribe bool

	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.Mutex
	destroyed bool
	detach    func()
	cancelCur context.CancelFunc
	inFlight  bool
	queue     []any
	draining  bool

	wg sync.WaitGroup
}

// Option configures a Runner.
type Option func(*Runner)

// WithPolicy sets the concurrency policy. Default is Switch.
func WithPolicy(p Policy) Option {
	return func(r *Runner) { r.policy = p }
}

// WithLogger sets the logger for activation lifecycle events.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.log = logger
		}
	}
}

// WithTokenGenerator sets the activation token source.
func WithTokenGenerator(gen TokenGenerator) Option {
	return func(r *Runner) {
		if gen != nil {
			r.tokens = gen
		}
	}
}

// WithResubscribeOnError controls recovery from terminal effect errors.
// When true (the default) every error is isolated and the runner keeps
// observing. When false, an error marked Terminal destroys the runner.
func WithResubscribeOnError(resubscribe bool) Option {
	return func(r *Runner) { r.resubscribe = resubscribe }
}

func newRunner(st *store.Store, effect Effect, opts ...Option) *Runner {
	ctx, cancel := context.WithCancel(context.Background())
	r := &Runner{
		store:       st,
		effect:      effect,
		policy:      Switch,
		log:         slog.Default(),
		tokens:      UUIDv7Generator{},
		resubscribe: true,
		ctx:         ctx,
		cancel:      cancel,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RunSelector starts a runner fed by a selector stream. The selection
// seeds synchronously, so the effect activates once with the current
// value before RunSelector returns, then again on every distinct change.
func RunSelector(st *store.Store, selector any, effect Effect, opts ...Option) (*Runner, error) {
	r := newRunner(st, effect, opts...)
	sel, err := st.Select(selector)
	if err != nil {
		r.cancel()
		return nil, fmt.Errorf("effects: selector source: %w", err)
	}
	unsub := sel.Subscribe(r.submit)
	r.mu.Lock()
	r.detach = unsub
	r.mu.Unlock()
	return r, nil
}

// RunActions starts a runner fed by dispatched actions whose Type is in
// types. It observes dispatch through the store's observer seam, so any
// number of action runners and other observers coexist and detach
// independently.
func RunActions(st *store.Store, types []string, effect Effect, opts ...Option) *Runner {
	r := newRunner(st, effect, opts...)
	want := make(map[string]struct{}, len(types))
	for _, t := range types {
		want[t] = struct{}{}
	}
	remove := st.ObserveDispatch(func(a action.Action, _, _ any) {
		if _, ok := want[a.Type]; ok {
			r.submit(a)
		}
	})
	r.mu.Lock()
	r.detach = remove
	r.mu.Unlock()
	return r
}

func (r *Runner) submit(v any) {
	r.mu.Lock()
	if r.destroyed {
		r.mu.Unlock()
		return
	}
	switch r.policy {
	case Merge:
		r.wg.Add(1)
		r.mu.Unlock()
		go func() {
			defer r.wg.Done()
			r.activate(r.ctx, v)
		}()
	case Exhaust:
		if r.inFlight {
			r.mu.Unlock()
			r.log.Debug("activation dropped", "policy", r.policy.String())
			return
		}
		r.inFlight = true
		r.wg.Add(1)
		r.mu.Unlock()
		go func() {
			defer r.wg.Done()
			r.activate(r.ctx, v)
			r.mu.Lock()
			r.inFlight = false
			r.mu.Unlock()
		}()
	case Concat:
		r.queue = append(r.queue, v)
		if r.draining {
			r.mu.Unlock()
			return
		}
		r.draining = true
		r.wg.Add(1)
		r.mu.Unlock()
		go r.drain()
	default: // Switch
		if r.cancelCur != nil {
			r.cancelCur()
		}
		ctx, cancel := context.WithCancel(r.ctx)
		r.cancelCur = cancel
		r.wg.Add(1)
		r.mu.Unlock()
		go func() {
			defer r.wg.Done()
			r.activate(ctx, v)
		}()
	}
}

func (r *Runner) drain() {
	defer r.wg.Done()
	for {
		r.mu.Lock()
		if r.destroyed || len(r.queue) == 0 {
			r.draining = false
			r.mu.Unlock()
			return
		}
		v := r.queue[0]
		r.queue = r.queue[1:]
		r.mu.Unlock()
		r.activate(r.ctx, v)
	}
}

func (r *Runner) activate(ctx context.Context, v any) {
	token := r.tokens.Generate()
	result, err := r.runEffect(ctx, v)

	if ctx.Err() != nil {
		// Superseded or destroyed mid-flight. Stale results are never
		// dispatched.
		r.log.Debug("activation canceled", "token", token, "policy", r.policy.String())
		return
	}
	if err != nil {
		if IsTerminal(err) && !r.resubscribe {
			r.log.Error("terminal effect error, stopping runner",
				"token", token, "policy", r.policy.String(), "error", err)
			r.Destroy()
			return
		}
		r.log.Error("effect error isolated",
			"token", token, "policy", r.policy.String(), "error", err)
		return
	}
	if result.Type == "" {
		return
	}
	if derr := r.store.Dispatch(result); derr != nil {
		r.log.Error("effect result dispatch failed",
			"token", token, "action_type", result.Type, "error", derr)
		return
	}
	r.log.Debug("effect result dispatched", "token", token, "action_type", result.Type)
}

func (r *Runner) runEffect(ctx context.Context, v any) (result action.Action, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("effect panic: %v", rec)
		}
	}()
	return r.effect(ctx, v)
}

// Destroy detaches the runner from its source and cancels any in-flight
// activations. Idempotent and safe to call from inside an effect body;
// it does not wait for activations to unwind.
func (r *Runner) Destroy() {
	r.mu.Lock()
	if r.destroyed {
		r.mu.Unlock()
		return
	}
	r.destroyed = true
	detach := r.detach
	r.detach = nil
	r.queue = nil
	r.mu.Unlock()

	r.cancel()
	if detach != nil {
		detach()
	}
}

// Destroyed reports whether Destroy has run.
func (r *Runner) Destroyed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.destroyed
}

// Wait blocks until every started activation has finished. Test helper;
// it does not prevent new activations from starting afterwards.
func (r *Runner) Wait() {
	r.wg.Wait()
}
