package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/pulsenet/internal/circuit"
	"github.com/roach88/pulsenet/internal/engine"
	"github.com/roach88/pulsenet/internal/ir"
	"github.com/roach88/pulsenet/internal/store"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database string
	RunID    string // optional - specific run only
}

// ReplayRunResult holds the replay result for a single run.
type ReplayRunResult struct {
	RunID         string `json:"run_id"`
	Seq           int64  `json:"seq"`
	Mode          string `json:"mode"`
	Stored        string `json:"stored"`
	Replayed      string `json:"replayed,omitempty"`
	Error         string `json:"error,omitempty"`
	Deterministic bool   `json:"deterministic"`
}

// ReplayResult holds the overall replay result.
type ReplayResult struct {
	Runs             []ReplayRunResult `json:"runs"`
	TotalRuns        int               `json:"total_runs"`
	AllDeterministic bool              `json:"all_deterministic"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Re-run stored runs and verify identical results",
		Long: `Re-run every stored run against its stored circuit with the same
mode, parameters and run id, and compare the canonical result summary
byte for byte.

Exit codes:
  0 - All runs reproduced
  1 - A run produced a different result or failed
  2 - Command error (database not found, etc.)

Examples:
  pulsenet replay --db ./runs.db
  pulsenet replay --db ./runs.db --run 0190a6c2-...
  pulsenet replay --db ./runs.db --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "replay specific run only")

	return cmd
}

func runReplay(opts *ReplayOptions, cmd *cobra.Command) error {
	ctx := commandContext(cmd)

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	var runs []store.Run
	if opts.RunID != "" {
		run, err := st.ReadRun(ctx, opts.RunID)
		if errors.Is(err, store.ErrNotFound) {
			return NewExitError(ExitCommandError, fmt.Sprintf("run not found: %s", opts.RunID))
		}
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read run", err)
		}
		runs = []store.Run{run}
	} else {
		runs, err = st.ListRuns(ctx)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to list runs", err)
		}
	}

	result := ReplayResult{
		Runs:             make([]ReplayRunResult, 0, len(runs)),
		TotalRuns:        len(runs),
		AllDeterministic: true,
	}

	if len(runs) == 0 {
		if opts.Format == "json" {
			return outputReplayJSON(newFormatter(opts.RootOptions, cmd), result)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "No runs found in database.")
		return nil
	}

	for _, run := range runs {
		runResult, err := replayRun(ctx, st, run)
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("failed to replay run %s", run.ID), err)
		}

		result.Runs = append(result.Runs, runResult)
		if !runResult.Deterministic {
			result.AllDeterministic = false
		}
	}

	if opts.Format == "json" {
		return outputReplayJSON(newFormatter(opts.RootOptions, cmd), result)
	}

	return outputReplayText(cmd, result, opts.Verbose)
}

// replayRun re-runs one stored run. An analysis failure is reported in
// the result; only store failures are returned as errors.
func replayRun(ctx context.Context, st *store.Store, run store.Run) (ReplayRunResult, error) {
	res := ReplayRunResult{
		RunID:  run.ID,
		Seq:    run.Seq,
		Mode:   string(run.Mode),
		Stored: run.Result,
	}

	rec, err := st.ReadCircuit(ctx, run.CircuitHash)
	if err != nil {
		return res, fmt.Errorf("read circuit %s: %w", run.CircuitHash, err)
	}

	c, err := circuit.FromText(rec.Source)
	if err != nil {
		res.Error = fmt.Sprintf("stored circuit no longer parses: %v", err)
		return res, nil
	}

	spec := runSpec{
		Mode:    run.Mode,
		Presses: run.Presses,
		Target:  ir.ModuleID(run.Target),
		Confirm: run.Confirm,
	}
	out, err := execute(ctx, c, spec, engine.NewFixedGenerator(run.ID))
	if err != nil {
		res.Error = err.Error()
		return res, nil
	}

	res.Replayed, err = store.MarshalSummary(out.Summary)
	if err != nil {
		return res, err
	}
	res.Deterministic = res.Replayed == res.Stored
	return res, nil
}

// outputReplayJSON writes the replay result as JSON. A mismatch is an
// error response and exit code 1.
func outputReplayJSON(f *OutputFormatter, result ReplayResult) error {
	if result.AllDeterministic {
		return f.Result(result, "")
	}
	if err := f.Failure(result, "E_DETERMINISM", "determinism verification failed"); err != nil {
		return err
	}
	return NewExitError(ExitFailure, "determinism verification failed")
}

// outputReplayText outputs the replay result as text.
func outputReplayText(cmd *cobra.Command, result ReplayResult, verbose bool) error {
	w := cmd.OutOrStdout()

	fmt.Fprintf(w, "Replay Summary: %d run(s)\n", result.TotalRuns)
	fmt.Fprintln(w)

	for _, run := range result.Runs {
		status := "✓"
		if !run.Deterministic {
			status = "✗"
		}

		fmt.Fprintf(w, "%s Run %d: %s (%s)\n", status, run.Seq, run.RunID, run.Mode)

		if verbose || !run.Deterministic {
			fmt.Fprintf(w, "  Stored:   %s\n", run.Stored)
			if run.Replayed != "" {
				fmt.Fprintf(w, "  Replayed: %s\n", run.Replayed)
			}
		}
		if run.Error != "" {
			fmt.Fprintf(w, "  Error: %s\n", run.Error)
		}
	}
	fmt.Fprintln(w)

	if result.AllDeterministic {
		fmt.Fprintln(w, "✓ All runs reproduced")
		return nil
	}

	fmt.Fprintln(w, "✗ Determinism verification failed")
	// Determinism failure = exit code 1
	return NewExitError(ExitFailure, "determinism verification failed")
}
