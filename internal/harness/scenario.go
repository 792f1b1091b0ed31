package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario defines one executable test scenario for the demo store.
type Scenario struct {
	// Name uniquely identifies this scenario; golden files use it.
	Name string `yaml:"name"`

	// Description explains what this scenario exercises.
	Description string `yaml:"description"`

	// Steps are dispatched in order, settling effects between steps.
	Steps []Step `yaml:"steps"`

	// Assertions validate the trace and final state after all steps.
	Assertions []Assertion `yaml:"assertions"`
}

// Step dispatches one action.
type Step struct {
	// Dispatch is the action type.
	Dispatch string `yaml:"dispatch"`

	// Payload is the action payload, if any.
	Payload any `yaml:"payload,omitempty"`

	// Scope routes the dispatch: "" or "root" for the root store, "ui"
	// for the ui sub-store. Sub-store dispatch forwards untagged, so
	// the trace records it the same way; the scope documents intent.
	Scope string `yaml:"scope,omitempty"`
}

// Assertion validates the trace or the final state.
type Assertion struct {
	// Type is one of state_equals, trace_contains, trace_order,
	// trace_count.
	Type string `yaml:"type"`

	// Path is a dot path into the final state (state_equals).
	Path string `yaml:"path,omitempty"`

	// Value is the expected value at Path (state_equals).
	Value any `yaml:"value,omitempty"`

	// Action is the action type (trace_contains, trace_count).
	Action string `yaml:"action,omitempty"`

	// Count is the expected number of occurrences (trace_count).
	Count int `yaml:"count,omitempty"`

	// Actions is the expected order; a subsequence, not necessarily
	// contiguous (trace_order).
	Actions []string `yaml:"actions,omitempty"`
}

// Assertion type constants.
const (
	AssertStateEquals   = "state_equals"
	AssertTraceContains = "trace_contains"
	AssertTraceOrder    = "trace_order"
	AssertTraceCount    = "trace_count"
)

// LoadScenario reads and parses a scenario YAML file. Unknown fields are
// rejected so typos surface as load errors instead of silently ignored
// assertions.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML bytes.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("parse scenario YAML: %w", err)
	}
	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if step.Dispatch == "" {
			return fmt.Errorf("steps[%d]: dispatch is required", i)
		}
		switch step.Scope {
		case "", "root", "ui":
		default:
			return fmt.Errorf("steps[%d]: unknown scope %q", i, step.Scope)
		}
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(i, &a); err != nil {
			return err
		}
	}
	return nil
}

func validateAssertion(index int, a *Assertion) error {
	switch a.Type {
	case AssertStateEquals:
		if a.Path == "" {
			return fmt.Errorf("assertions[%d]: path is required for state_equals", index)
		}
	case AssertTraceContains:
		if a.Action == "" {
			return fmt.Errorf("assertions[%d]: action is required for trace_contains", index)
		}
	case AssertTraceOrder:
		if len(a.Actions) == 0 {
			return fmt.Errorf("assertions[%d]: actions list is required for trace_order", index)
		}
	case AssertTraceCount:
		if a.Action == "" {
			return fmt.Errorf("assertions[%d]: action is required for trace_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for trace_count", index)
		}
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
