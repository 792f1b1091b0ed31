// Package harness executes YAML-defined scenarios against the demo
// application and checks the resulting dispatch trace and final state.
//
// A scenario is a sequence of dispatch steps followed by assertions.
// Execution is deterministic: each step settles all effect activations
// before the next one runs, so the trace is byte-stable and can be
// compared against golden files with canonical JSON serialization.
package harness
