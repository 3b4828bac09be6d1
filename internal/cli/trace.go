package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/pulsenet/internal/engine"
	"github.com/roach88/pulsenet/internal/harness"
	"github.com/roach88/pulsenet/internal/ir"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Presses int
	From    string // optional - only signals sent by this module
	To      string // optional - only signals delivered to this module
}

// TraceResult holds the complete trace output.
type TraceResult struct {
	Presses int                  `json:"presses"`
	Signals []harness.TraceEvent `json:"signals"`
	Low     int64                `json:"low"`
	High    int64                `json:"high"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace <circuit>",
		Short: "Print every signal delivered during the first presses",
		Long: `Press the button and print each signal in delivery order as
"source -pulse-> destination", grouped by press.

--from and --to narrow the output; the totals always count every signal.

Examples:
  pulsenet trace circuit.txt
  pulsenet trace circuit.txt --presses 4 --to con
  pulsenet trace circuit.cue --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, args[0], cmd)
		},
	}

	cmd.Flags().IntVarP(&opts.Presses, "presses", "n", 1, "number of button presses")
	cmd.Flags().StringVar(&opts.From, "from", "", "only show signals sent by this module")
	cmd.Flags().StringVar(&opts.To, "to", "", "only show signals delivered to this module")

	return cmd
}

func runTrace(opts *TraceOptions, path string, cmd *cobra.Command) error {
	if opts.Presses < 1 {
		return NewExitError(ExitCommandError, "--presses must be at least 1")
	}

	c, err := loadCircuit(path)
	if err != nil {
		return err
	}

	result := TraceResult{
		Presses: opts.Presses,
		Signals: []harness.TraceEvent{},
	}
	record := func(s ir.Signal) {
		if opts.From != "" && string(s.Source) != opts.From {
			return
		}
		result.Signals = append(result.Signals, harness.TraceEvent{
			Seq:   s.Seq,
			Press: s.Press,
			From:  string(s.Source),
			To:    string(s.Destination),
			Pulse: s.Pulse.String(),
		})
	}

	var e *engine.Engine
	switch {
	case opts.To != "":
		e = engine.New(c)
		e.OnDestination(ir.ModuleID(opts.To), record)
	case opts.From != "":
		e = engine.New(c)
		e.OnSource(ir.ModuleID(opts.From), record)
	default:
		e = engine.New(c, engine.WithTrace(record))
	}

	formatter := newFormatter(opts.RootOptions, cmd)
	if _, err := e.PressN(commandContext(cmd), opts.Presses); err != nil {
		return analysisError(formatter, err)
	}
	result.Low, result.High = e.Totals()

	if formatter.JSON() {
		return formatter.Result(result, e.RunID())
	}

	w := formatter.Writer
	press := 0
	for _, ev := range result.Signals {
		if ev.Press != press {
			press = ev.Press
			fmt.Fprintf(w, "# press %d\n", press)
		}
		fmt.Fprintln(w, ev)
	}
	fmt.Fprintf(w, "Total: %s low, %s high\n", formatCount(result.Low), formatCount(result.High))
	return nil
}
