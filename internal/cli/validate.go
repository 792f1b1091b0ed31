package cli

import (
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	cueyaml "cuelang.org/go/encoding/yaml"
	"github.com/spf13/cobra"
)

// scenarioSchema is the CUE schema every scenario file must satisfy.
// The harness's strict YAML decoding catches unknown fields; this
// schema additionally pins value domains (scopes, assertion types,
// non-negative counts) and cross-field requirements.
const scenarioSchema = `
#Step: {
	dispatch: string & !=""
	payload?: _
	scope?: "root" | "ui"
}

#Assertion: {
	type: "state_equals" | "trace_contains" | "trace_order" | "trace_count"
	if type == "state_equals" {
		path: string & !=""
		value?: _
	}
	if type == "trace_contains" {
		action: string & !=""
	}
	if type == "trace_count" {
		action: string & !=""
		count:  int & >=0
	}
	if type == "trace_order" {
		actions: [string, ...string]
	}
	path?: string
	value?: _
	action?: string
	count?: int
	actions?: [...string]
}

#Scenario: {
	name:        string & !=""
	description: string & !=""
	steps: [#Step, ...#Step]
	assertions?: [...#Assertion]
}
`

// ValidationIssue is one schema violation.
type ValidationIssue struct {
	Position string `json:"position,omitempty"`
	Message  string `json:"message"`
}

// ValidationResult is the validate command's output payload.
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	File   string            `json:"file"`
	Issues []ValidationIssue `json:"issues,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <scenario.yaml>",
		Short: "Validate a scenario file against the schema",
		Long: `Validate a scenario YAML file against the CUE scenario schema
without executing it.

Checks structure, value domains (scopes, assertion types), and
per-assertion required fields. Faster feedback than a full run.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	data, err := os.ReadFile(path)
	if err != nil {
		_ = formatter.Error("E001", "failed to read scenario file", err.Error())
		return WrapExitError(ExitCommandError, "failed to read scenario file", err)
	}

	issues, err := validateScenarioBytes(path, data)
	if err != nil {
		_ = formatter.Error("E002", "failed to parse scenario", err.Error())
		return WrapExitError(ExitCommandError, "failed to parse scenario", err)
	}

	result := ValidationResult{Valid: len(issues) == 0, File: path, Issues: issues}
	if !result.Valid {
		if opts.Format == "json" {
			_ = formatter.Success(result)
		} else {
			for _, issue := range issues {
				if issue.Position != "" {
					formatter.VerboseLog("at %s", issue.Position)
				}
				_ = formatter.Error("E003", issue.Message, nil)
			}
		}
		return NewExitError(ExitFailure, "scenario is invalid")
	}

	if opts.Format == "json" {
		return formatter.Success(result)
	}
	return formatter.Success("scenario is valid")
}

// validateScenarioBytes unifies the YAML document with the scenario
// schema. The returned issues are schema violations; the error return is
// reserved for unparseable input.
func validateScenarioBytes(path string, data []byte) ([]ValidationIssue, error) {
	file, err := cueyaml.Extract(path, data)
	if err != nil {
		return nil, err
	}

	ctx := cuecontext.New()
	schema := ctx.CompileString(scenarioSchema).LookupPath(cue.ParsePath("#Scenario"))
	doc := ctx.BuildFile(file)
	if err := doc.Err(); err != nil {
		return nil, err
	}

	unified := schema.Unify(doc)
	verr := unified.Validate(cue.Concrete(true), cue.Final())
	if verr == nil {
		return nil, nil
	}

	var issues []ValidationIssue
	for _, e := range cueerrors.Errors(verr) {
		issue := ValidationIssue{Message: e.Error()}
		if pos := e.Position(); pos.IsValid() {
			issue.Position = pos.String()
		}
		issues = append(issues, issue)
	}
	return issues, nil
}
