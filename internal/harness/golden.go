package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/strata/internal/canonjson"
)

// TraceSnapshot is the golden-file representation of a scenario run:
// the full dispatch trace plus the settled final state, serialized with
// canonical JSON so byte comparison is meaningful.
type TraceSnapshot struct {
	ScenarioName string       `json:"scenario_name"`
	Trace        []TraceEvent `json:"trace"`
	FinalState   any          `json:"final_state"`
}

// RunWithGolden executes a scenario and compares the snapshot against
// testdata/golden/{scenario.Name}.golden. Regenerate with:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return err
	}
	return AssertGolden(t, scenario.Name, result)
}

// AssertGolden compares an already-obtained result against the golden
// file for scenarioName.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	snapshot := TraceSnapshot{
		ScenarioName: scenarioName,
		Trace:        result.Trace,
		FinalState:   result.FinalState,
	}
	data, err := canonjson.MarshalIndent(snapshot)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)
	return nil
}
