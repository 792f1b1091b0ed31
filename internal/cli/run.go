package cli

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/strata/internal/canonjson"
	"github.com/roach88/strata/internal/harness"
)

// RunReport is the run command's output payload.
type RunReport struct {
	Scenario   string               `json:"scenario"`
	Steps      int                  `json:"steps"`
	Trace      []harness.TraceEvent `json:"trace"`
	FinalState any                  `json:"final_state"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <scenario.yaml>",
		Short: "Execute a scenario against the demo store",
		Long: `Execute a scenario file against a fresh demo application.

Steps are dispatched in order with effects settling between steps, then
the scenario's assertions run against the trace and final state. The
dispatch trace and settled state are printed in the selected format.

Example:
  strata run scenario.yaml
  strata run scenario.yaml --format json --verbose`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenario(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runScenario(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	scenario, err := harness.LoadScenario(path)
	if err != nil {
		_ = formatter.Error("E001", "failed to load scenario", err.Error())
		return WrapExitError(ExitCommandError, "failed to load scenario", err)
	}
	formatter.VerboseLog("Loaded scenario %q with %d step(s)", scenario.Name, len(scenario.Steps))

	logLevel := slog.LevelWarn
	if opts.Verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: logLevel}))

	result, err := harness.Run(scenario, harness.WithRunLogger(logger))
	if err != nil {
		if result != nil {
			// Steps executed but assertions failed: show the trace, then
			// report the failures.
			_ = outputReport(formatter, scenario.Name, scenario, result)
		}
		_ = formatter.Error("E002", "scenario failed", err.Error())
		return WrapExitError(ExitFailure, "scenario failed", err)
	}

	if err := outputReport(formatter, scenario.Name, scenario, result); err != nil {
		return WrapExitError(ExitCommandError, "failed to render output", err)
	}
	return nil
}

func outputReport(f *OutputFormatter, name string, s *harness.Scenario, r *harness.Result) error {
	report := RunReport{
		Scenario:   name,
		Steps:      len(s.Steps),
		Trace:      r.Trace,
		FinalState: r.FinalState,
	}
	if f.Format == "json" {
		return f.Success(report)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Scenario: %s (%d steps)\n\nTrace:\n", name, len(s.Steps))
	for _, ev := range r.Trace {
		if ev.Payload != nil {
			payload, err := canonjson.Marshal(ev.Payload)
			if err != nil {
				return err
			}
			fmt.Fprintf(&b, "  %3d  %-20s %s\n", ev.Seq, ev.Type, payload)
		} else {
			fmt.Fprintf(&b, "  %3d  %s\n", ev.Seq, ev.Type)
		}
	}
	state, err := canonjson.MarshalIndent(r.FinalState)
	if err != nil {
		return err
	}
	fmt.Fprintf(&b, "\nFinal state:\n%s", state)
	_, err = fmt.Fprint(f.Writer, b.String())
	return err
}
