package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/roach88/pulsenet/internal/analysis"
	"github.com/roach88/pulsenet/internal/circuit"
	"github.com/roach88/pulsenet/internal/compiler"
	"github.com/roach88/pulsenet/internal/engine"
	"github.com/roach88/pulsenet/internal/ir"
	"github.com/roach88/pulsenet/internal/store"
)

// runSpec is one analysis invocation. Its fields are exactly what a
// stored run records, so a replay rebuilds the same runSpec.
type runSpec struct {
	Mode    store.Mode
	Presses int // tally press count, or the press cap of the other modes
	Target  ir.ModuleID
	Confirm bool

	// Not stored; neither changes the outcome of a run that succeeds.
	SkipCycles bool
	MaxSignals int
}

// normalize fills in analysis defaults so the stored parameters are the
// ones actually used.
func (s *runSpec) normalize() {
	switch s.Mode {
	case store.ModeTally:
		if s.Presses == 0 {
			s.Presses = analysis.DefaultPresses
		}
	default:
		if s.Presses == 0 {
			s.Presses = analysis.DefaultMaxPresses
		}
		if s.Target == "" {
			s.Target = ir.DefaultTarget
		}
	}
}

// runOutcome is what one analysis produced.
type runOutcome struct {
	RunID   string
	Summary map[string]any
	Result  any // the analysis result, for output
	Presses []store.PressRecord
	Feeders []store.FeederRecord
}

// execute runs spec against c. Every engine the analysis creates gets
// its run id from runIDs.
func execute(ctx context.Context, c *circuit.Circuit, spec runSpec, runIDs engine.RunIDGenerator) (runOutcome, error) {
	spec.normalize()

	engineOpts := []engine.Option{engine.WithRunIDGenerator(runIDs)}
	if spec.MaxSignals > 0 {
		engineOpts = append(engineOpts, engine.WithMaxSignals(spec.MaxSignals))
	}
	opts := []analysis.Option{analysis.WithEngineOptions(engineOpts...)}

	switch spec.Mode {
	case store.ModeTally:
		if spec.SkipCycles {
			opts = append(opts, analysis.WithCycleSkip())
		}
		res, err := analysis.Tally(ctx, c, spec.Presses, opts...)
		if err != nil {
			return runOutcome{}, err
		}
		out := runOutcome{
			RunID:  res.RunID,
			Result: res,
			Summary: map[string]any{
				"presses": res.Presses,
				"low":     res.Low,
				"high":    res.High,
				"product": res.Product,
			},
		}
		for _, ps := range res.Simulated {
			out.Presses = append(out.Presses, store.PressRecord{
				Press:   ps.Press,
				Low:     ps.Low,
				High:    ps.High,
				Signals: ps.Signals,
			})
		}
		return out, nil

	case store.ModePeriod:
		opts = append(opts, analysis.WithMaxPresses(spec.Presses))
		if spec.Confirm {
			opts = append(opts, analysis.WithConfirmation())
		}
		res, err := analysis.Period(ctx, c, spec.Target, opts...)
		if err != nil {
			return runOutcome{}, err
		}
		feeders := make(map[string]any, len(res.Feeders))
		out := runOutcome{RunID: res.RunID, Result: res}
		for _, fc := range res.Feeders {
			feeders[string(fc.Feeder)] = fc.First
			out.Feeders = append(out.Feeders, store.FeederRecord{
				Feeder: string(fc.Feeder),
				First:  fc.First,
				Second: fc.Second,
			})
		}
		out.Summary = map[string]any{
			"gate":    res.Gate,
			"period":  res.Period,
			"feeders": feeders,
		}
		return out, nil

	case store.ModeFirstLow:
		res, err := analysis.FirstLow(ctx, c, spec.Target, spec.Presses, opts...)
		if err != nil {
			return runOutcome{}, err
		}
		return runOutcome{
			RunID:   res.RunID,
			Result:  res,
			Summary: map[string]any{"press": res.Press},
		}, nil

	default:
		return runOutcome{}, fmt.Errorf("unknown mode %q", spec.Mode)
	}
}

// recordRun stores the circuit and the run in the database at dbPath.
// It returns the run's seq.
func recordRun(ctx context.Context, dbPath string, c *circuit.Circuit, spec runSpec, out runOutcome) (int64, error) {
	spec.normalize()

	st, err := store.Open(dbPath)
	if err != nil {
		return 0, fmt.Errorf("open database: %w", err)
	}
	defer st.Close()

	hash, err := c.Hash()
	if err != nil {
		return 0, err
	}
	err = st.WriteCircuit(ctx, store.CircuitRecord{
		Hash:    hash,
		Source:  compiler.SourceText(c.Declarations()),
		Modules: c.Len(),
	})
	if err != nil {
		return 0, err
	}

	summary, err := store.MarshalSummary(out.Summary)
	if err != nil {
		return 0, err
	}

	run := store.Run{
		ID:          out.RunID,
		CircuitHash: hash,
		Mode:        spec.Mode,
		Presses:     spec.Presses,
		Confirm:     spec.Confirm,
		Result:      summary,
	}
	if spec.Mode != store.ModeTally {
		run.Target = string(spec.Target)
	}
	return st.WriteRun(ctx, run, out.Presses, out.Feeders)
}

// loadCircuit reads the circuit at path and maps failures to exit code 2.
func loadCircuit(path string) (*circuit.Circuit, error) {
	c, err := compiler.LoadCircuit(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load circuit", err)
	}
	return c, nil
}

// analysisError reports a failed analysis. Runtime errors carry their
// code; anything else is a command error.
func analysisError(formatter *OutputFormatter, err error) error {
	code := engine.ErrorCode(err)
	if code == "" {
		return WrapExitError(ExitCommandError, "analysis failed", err)
	}

	var details any
	var re *engine.RuntimeError
	if errors.As(err, &re) && len(re.Details) > 0 {
		details = re.Details
	}
	_ = formatter.Error(string(code), err.Error(), details)
	return WrapExitError(ExitFailure, "analysis aborted", err)
}
