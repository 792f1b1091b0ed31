package harness

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/roach88/strata/internal/action"
	"github.com/roach88/strata/internal/canonjson"
	"github.com/roach88/strata/internal/demo"
	"github.com/roach88/strata/internal/tree"
)

// TraceEvent is one recorded dispatch.
type TraceEvent struct {
	Seq     int    `json:"seq"`
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

// Result is the outcome of executing a scenario.
type Result struct {
	// Trace lists every dispatch in order, including effect results.
	Trace []TraceEvent `json:"trace"`

	// FinalState is the settled state tree, normalized to plain JSON
	// values so assertions and goldens are type-stable.
	FinalState any `json:"final_state"`
}

type runConfig struct {
	log *slog.Logger
}

// RunOption configures Run.
type RunOption func(*runConfig)

// WithRunLogger sets the logger for the application under test. The
// default discards, keeping scenario output clean.
func WithRunLogger(logger *slog.Logger) RunOption {
	return func(c *runConfig) {
		if logger != nil {
			c.log = logger
		}
	}
}

// Run executes the scenario against a fresh demo application and checks
// its assertions. Effects settle after every step, so the trace order is
// deterministic: each step's action is followed by whatever the effects
// it triggered dispatched, before the next step begins.
func Run(s *Scenario, opts ...RunOption) (*Result, error) {
	cfg := runConfig{log: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(&cfg)
	}

	app, err := demo.New(demo.WithAppLogger(cfg.log))
	if err != nil {
		return nil, fmt.Errorf("build application: %w", err)
	}
	defer app.Close()

	// Drain the effect's seed activation before tracing begins so the
	// trace contains only what the steps caused.
	app.Settle()

	var mu sync.Mutex
	var trace []TraceEvent
	remove := app.Store.ObserveDispatch(func(a action.Action, _, _ any) {
		mu.Lock()
		trace = append(trace, TraceEvent{Seq: len(trace), Type: a.Type, Payload: a.Payload})
		mu.Unlock()
	})
	defer remove()

	for i, step := range s.Steps {
		act := action.Action{Type: step.Dispatch, Payload: step.Payload}
		var derr error
		if step.Scope == "ui" {
			derr = app.UI.Dispatch(act)
		} else {
			derr = app.Dispatch(act)
		}
		if derr != nil {
			return nil, fmt.Errorf("steps[%d]: dispatch %s: %w", i, step.Dispatch, derr)
		}
		app.Settle()
	}

	final, err := normalizeState(app.Store.GetState())
	if err != nil {
		return nil, fmt.Errorf("normalize final state: %w", err)
	}

	mu.Lock()
	result := &Result{Trace: trace, FinalState: final}
	mu.Unlock()

	if err := Check(s, result); err != nil {
		return result, err
	}
	return result, nil
}

// normalizeState maps the live state tree (which contains typed entity
// collections) onto plain JSON values.
func normalizeState(state any) (any, error) {
	raw, err := canonjson.Marshal(state)
	if err != nil {
		return nil, err
	}
	var plain any
	if err := json.Unmarshal(raw, &plain); err != nil {
		return nil, err
	}
	return plain, nil
}

// Check runs the scenario's assertions against a result. All failures
// are reported, not just the first.
func Check(s *Scenario, r *Result) error {
	var failures []error
	for i, a := range s.Assertions {
		if err := checkAssertion(&a, r); err != nil {
			failures = append(failures, fmt.Errorf("assertions[%d] (%s): %w", i, a.Type, err))
		}
	}
	return errors.Join(failures...)
}

func checkAssertion(a *Assertion, r *Result) error {
	switch a.Type {
	case AssertStateEquals:
		path, err := tree.ParsePath(a.Path)
		if err != nil {
			return err
		}
		actual, ok := tree.Get(r.FinalState, path)
		if !ok {
			return fmt.Errorf("path %q absent from final state", a.Path)
		}
		same, err := canonicallyEqual(actual, a.Value)
		if err != nil {
			return err
		}
		if !same {
			return fmt.Errorf("path %q: got %v, want %v", a.Path, actual, a.Value)
		}
	case AssertTraceContains:
		for _, ev := range r.Trace {
			if ev.Type == a.Action {
				return nil
			}
		}
		return fmt.Errorf("action %q never dispatched", a.Action)
	case AssertTraceCount:
		n := 0
		for _, ev := range r.Trace {
			if ev.Type == a.Action {
				n++
			}
		}
		if n != a.Count {
			return fmt.Errorf("action %q dispatched %d times, want %d", a.Action, n, a.Count)
		}
	case AssertTraceOrder:
		next := 0
		for _, ev := range r.Trace {
			if next < len(a.Actions) && ev.Type == a.Actions[next] {
				next++
			}
		}
		if next != len(a.Actions) {
			return fmt.Errorf("trace is missing %q in order", a.Actions[next])
		}
	}
	return nil
}

// canonicallyEqual compares two values by canonical serialization, so a
// YAML int and a JSON float with the same value compare equal.
func canonicallyEqual(a, b any) (bool, error) {
	ab, err := canonjson.Marshal(a)
	if err != nil {
		return false, err
	}
	bb, err := canonjson.Marshal(b)
	if err != nil {
		return false, err
	}
	return string(ab) == string(bb), nil
}
