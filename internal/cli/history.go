package cli

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/pulsenet/internal/queryir"
	"github.com/roach88/pulsenet/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Database string
	RunID    string // optional - show one run in detail

	// List filters; empty means unconstrained.
	Mode    string
	Target  string
	Circuit string
}

// RunDetail is one run with its circuit and per-run rows.
type RunDetail struct {
	Run     store.Run            `json:"run"`
	Circuit store.CircuitRecord  `json:"circuit"`
	Presses []store.PressRecord  `json:"presses"`
	Feeders []store.FeederRecord `json:"feeders"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List stored runs",
		Long: `List the analysis runs recorded with --db, oldest first.

--mode, --target and --circuit narrow the list to runs matching every
given value.

With --run, show one run with its circuit source, per-press tallies and
feeder cycles.

Examples:
  pulsenet history --db ./runs.db
  pulsenet history --db ./runs.db --mode period --target rx
  pulsenet history --db ./runs.db --run 0190a6c2-...
  pulsenet history --db ./runs.db --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "show one run in detail")
	cmd.Flags().StringVar(&opts.Mode, "mode", "", "only runs of this mode (tally, period, first_low)")
	cmd.Flags().StringVar(&opts.Target, "target", "", "only runs probing this target")
	cmd.Flags().StringVar(&opts.Circuit, "circuit", "", "only runs against this circuit hash")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	ctx := commandContext(cmd)

	if opts.Mode != "" && !store.Mode(opts.Mode).Valid() {
		return NewExitError(ExitCommandError, fmt.Sprintf("unknown mode %q: must be tally, period or first_low", opts.Mode))
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	if opts.RunID != "" {
		detail, err := readRunDetail(cmd, st, opts.RunID)
		if errors.Is(err, store.ErrNotFound) {
			return NewExitError(ExitCommandError, fmt.Sprintf("run not found: %s", opts.RunID))
		}
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read run", err)
		}
		if opts.Format == "json" {
			return newFormatter(opts.RootOptions, cmd).Result(detail, detail.Run.ID)
		}
		printRunDetail(cmd, detail)
		return nil
	}

	runs, err := st.QueryRuns(ctx, queryir.Where(
		queryir.Equals{Field: "mode", Value: opts.Mode},
		queryir.Equals{Field: "target", Value: opts.Target},
		queryir.Equals{Field: "circuit_hash", Value: opts.Circuit},
	))
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list runs", err)
	}

	if opts.Format == "json" {
		return newFormatter(opts.RootOptions, cmd).Result(runs, "")
	}

	w := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs found in database.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SEQ\tRUN\tMODE\tTARGET\tPRESSES\tRESULT")
	for _, r := range runs {
		target := r.Target
		if target == "" {
			target = "-"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n", r.Seq, r.ID, r.Mode, target, formatCount(r.Presses), r.Result)
	}
	return tw.Flush()
}

func readRunDetail(cmd *cobra.Command, st *store.Store, id string) (RunDetail, error) {
	ctx := commandContext(cmd)

	run, err := st.ReadRun(ctx, id)
	if err != nil {
		return RunDetail{}, err
	}
	c, err := st.ReadCircuit(ctx, run.CircuitHash)
	if err != nil {
		return RunDetail{}, err
	}
	presses, err := st.ReadPressStats(ctx, id)
	if err != nil {
		return RunDetail{}, err
	}
	feeders, err := st.ReadFeederCycles(ctx, id)
	if err != nil {
		return RunDetail{}, err
	}
	return RunDetail{Run: run, Circuit: c, Presses: presses, Feeders: feeders}, nil
}

func printRunDetail(cmd *cobra.Command, d RunDetail) {
	w := cmd.OutOrStdout()

	fmt.Fprintf(w, "Run %d: %s\n", d.Run.Seq, d.Run.ID)
	fmt.Fprintf(w, "  Mode:    %s\n", d.Run.Mode)
	if d.Run.Target != "" {
		fmt.Fprintf(w, "  Target:  %s\n", d.Run.Target)
	}
	fmt.Fprintf(w, "  Presses: %s\n", formatCount(d.Run.Presses))
	if d.Run.Confirm {
		fmt.Fprintln(w, "  Confirm: true")
	}
	fmt.Fprintf(w, "  Result:  %s\n", d.Run.Result)
	fmt.Fprintf(w, "  Circuit: %s (%d modules)\n", d.Circuit.Hash, d.Circuit.Modules)

	if len(d.Feeders) > 0 {
		fmt.Fprintln(w, "  Feeders:")
		for _, f := range d.Feeders {
			if f.Second > 0 {
				fmt.Fprintf(w, "    %s: %d, %d\n", f.Feeder, f.First, f.Second)
			} else {
				fmt.Fprintf(w, "    %s: %d\n", f.Feeder, f.First)
			}
		}
	}
	if len(d.Presses) > 0 {
		var low, high int64
		for _, p := range d.Presses {
			low += p.Low
			high += p.High
		}
		fmt.Fprintf(w, "  Simulated: %d presses, %s low, %s high\n", len(d.Presses), formatCount(low), formatCount(high))
	}
}
