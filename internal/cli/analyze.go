package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/pulsenet/internal/analysis"
	"github.com/roach88/pulsenet/internal/engine"
	"github.com/roach88/pulsenet/internal/ir"
	"github.com/roach88/pulsenet/internal/store"
)

// AnalyzeOptions holds flags shared by tally, period and first-low.
type AnalyzeOptions struct {
	*RootOptions
	Database   string
	Presses    int
	Target     string
	Confirm    bool
	SkipCycles bool
	MaxSignals int

	// RunIDs allows overriding the run id generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	RunIDs engine.RunIDGenerator
}

// NewTallyCommand creates the tally command.
func NewTallyCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AnalyzeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "tally <circuit>",
		Short: "Count Low and High pulses over many presses",
		Long: `Press the button N times and count every Low and High pulse delivered,
including the button's own pulse. Prints both totals and their product.

Exit codes:
  0 - Tally complete
  1 - A press did not settle
  2 - Command error (unreadable circuit, etc.)

Examples:
  pulsenet tally circuit.txt
  pulsenet tally circuit.cue --presses 5000 --skip-cycles
  pulsenet tally circuit.txt --db ./runs.db --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			spec := runSpec{
				Mode:       store.ModeTally,
				Presses:    opts.Presses,
				SkipCycles: opts.SkipCycles,
				MaxSignals: opts.MaxSignals,
			}
			return runAnalyze(opts, spec, args[0], cmd)
		},
	}

	cmd.Flags().IntVarP(&opts.Presses, "presses", "n", analysis.DefaultPresses, "number of button presses")
	cmd.Flags().BoolVar(&opts.SkipCycles, "skip-cycles", false, "stop simulating once the circuit state repeats")
	addAnalyzeFlags(cmd, opts)

	return cmd
}

// NewPeriodCommand creates the period command.
func NewPeriodCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AnalyzeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "period <circuit>",
		Short: "Predict the first press that sends Low to a target",
		Long: `Find the conjunction in front of the target and the modules feeding it,
record the first press on which each feeder sends High, and return the
least common multiple of those presses.

The result is only correct for circuits whose feeders fire on exact
multiples of their first press. --confirm checks that by waiting for the
second firing, at the cost of up to twice the presses.

Exit codes:
  0 - Period found
  1 - Wrong shape, unconfirmed period, or press cap reached
  2 - Command error (unreadable circuit, etc.)

Examples:
  pulsenet period circuit.txt
  pulsenet period circuit.txt --target rx --confirm
  pulsenet period circuit.txt --max-presses 10000 --db ./runs.db`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			spec := runSpec{
				Mode:       store.ModePeriod,
				Presses:    opts.Presses,
				Target:     ir.ModuleID(opts.Target),
				Confirm:    opts.Confirm,
				MaxSignals: opts.MaxSignals,
			}
			return runAnalyze(opts, spec, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Target, "target", "t", string(ir.DefaultTarget), "sink to predict")
	cmd.Flags().IntVar(&opts.Presses, "max-presses", analysis.DefaultMaxPresses, "give up after this many presses")
	cmd.Flags().BoolVar(&opts.Confirm, "confirm", false, "verify every feeder fires again at twice its first press")
	addAnalyzeFlags(cmd, opts)

	return cmd
}

// NewFirstLowCommand creates the first-low command.
func NewFirstLowCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AnalyzeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "first-low <circuit>",
		Short: "Press until a target receives Low",
		Long: `Press the button until the target receives a Low pulse and report the
press. This is the brute-force counterpart of period.

Exit codes:
  0 - Low pulse observed
  1 - Press cap reached or a press did not settle
  2 - Command error (unreadable circuit, etc.)

Examples:
  pulsenet first-low circuit.txt --max-presses 5000
  pulsenet first-low circuit.txt --target output`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			spec := runSpec{
				Mode:       store.ModeFirstLow,
				Presses:    opts.Presses,
				Target:     ir.ModuleID(opts.Target),
				MaxSignals: opts.MaxSignals,
			}
			return runAnalyze(opts, spec, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Target, "target", "t", string(ir.DefaultTarget), "sink to watch")
	cmd.Flags().IntVar(&opts.Presses, "max-presses", analysis.DefaultMaxPresses, "give up after this many presses")
	addAnalyzeFlags(cmd, opts)

	return cmd
}

func addAnalyzeFlags(cmd *cobra.Command, opts *AnalyzeOptions) {
	cmd.Flags().StringVar(&opts.Database, "db", "", "record the run in this SQLite database")
	cmd.Flags().IntVar(&opts.MaxSignals, "max-signals", engine.DefaultMaxSignals, "signals allowed per press before giving up")
}

func runAnalyze(opts *AnalyzeOptions, spec runSpec, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	if spec.Presses < 0 || spec.MaxSignals < 0 {
		return NewExitError(ExitCommandError, "press and signal limits must be positive")
	}

	c, err := loadCircuit(path)
	if err != nil {
		return err
	}
	formatter.VerboseLog("Loaded %s: %d modules", path, c.Len())

	runIDs := opts.RunIDs
	if runIDs == nil {
		runIDs = engine.UUIDv7Generator{}
	}

	ctx := commandContext(cmd)
	out, err := execute(ctx, c, spec, runIDs)
	if err != nil {
		return analysisError(formatter, err)
	}

	if opts.Database != "" {
		seq, err := recordRun(ctx, opts.Database, c, spec, out)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to record run", err)
		}
		formatter.VerboseLog("Recorded run %s (seq %d)", out.RunID, seq)
	}

	if formatter.JSON() {
		return formatter.Result(out.Result, out.RunID)
	}

	switch res := out.Result.(type) {
	case analysis.TallyResult:
		printTally(formatter.Writer, res)
	case analysis.PeriodResult:
		printPeriod(formatter.Writer, res)
	case analysis.FirstLowResult:
		fmt.Fprintf(formatter.Writer, "%s first receives Low on press %s\n", res.Target, formatCount(res.Press))
	}
	return nil
}

func printTally(w io.Writer, res analysis.TallyResult) {
	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)
	fmt.Fprintf(tw, "Presses:\t%s\n", formatCount(res.Presses))
	fmt.Fprintf(tw, "Low:\t%s\n", formatCount(res.Low))
	fmt.Fprintf(tw, "High:\t%s\n", formatCount(res.High))
	fmt.Fprintf(tw, "Product:\t%s\n", formatCount(res.Product))
	if res.CycleLength > 0 {
		fmt.Fprintf(tw, "Cycle:\t%d presses from press %d\n", res.CycleLength, res.CycleStart)
	}
	tw.Flush()
}

func printPeriod(w io.Writer, res analysis.PeriodResult) {
	fmt.Fprintf(w, "Gate: %s -> %s\n", res.Gate, res.Target)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, fc := range res.Feeders {
		if fc.Second > 0 {
			fmt.Fprintf(tw, "  %s\tHigh on press %s\tagain on %s\n", fc.Feeder, formatCount(fc.First), formatCount(fc.Second))
		} else {
			fmt.Fprintf(tw, "  %s\tHigh on press %s\n", fc.Feeder, formatCount(fc.First))
		}
	}
	tw.Flush()
	fmt.Fprintf(w, "Period: %s (%s presses simulated)\n", formatCount(res.Period), formatCount(res.Presses))
}

// commandContext returns the command's context, or Background when the
// command runs without one.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
