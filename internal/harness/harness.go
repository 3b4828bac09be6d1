package harness

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/pulsenet/internal/analysis"
	"github.com/roach88/pulsenet/internal/circuit"
	"github.com/roach88/pulsenet/internal/compiler"
	"github.com/roach88/pulsenet/internal/engine"
	"github.com/roach88/pulsenet/internal/ir"
	"github.com/roach88/pulsenet/internal/testutil"
)

// Run executes a scenario and returns the result.
//
// Execution flow:
//  1. Load and build the circuit
//  2. Record the trace of the first TracePresses presses
//  3. Reset and run the analysis named by Mode
//  4. Compare the outcome with Expect and evaluate assertions
//
// Failed expectations are reported in the result. Run returns an error
// only when the scenario cannot be executed at all, e.g. the circuit
// does not parse.
func Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	c, err := loadCircuit(scenario)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}

	runIDs := testutil.NewFixedRunIDGenerator(scenario.RunID)
	engineOpts := []engine.Option{engine.WithRunIDGenerator(runIDs)}
	if scenario.MaxSignals > 0 {
		engineOpts = append(engineOpts, engine.WithMaxSignals(scenario.MaxSignals))
	}

	result := NewResult()
	result.RunID = runIDs.Generate()

	if scenario.TracePresses > 0 {
		if err := recordTrace(ctx, c, scenario.TracePresses, engineOpts, result); err != nil {
			return nil, fmt.Errorf("scenario %s: trace: %w", scenario.Name, err)
		}
	}

	err = runAnalysis(ctx, c, scenario, engineOpts, result)
	switch code := engine.ErrorCode(err); {
	case err == nil:
	case code != "":
		result.ErrorCode = string(code)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return nil, err
	default:
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}

	checkExpect(scenario.Expect, result, err)

	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}

	slog.Debug("scenario finished",
		"scenario", scenario.Name,
		"pass", result.Pass,
		"errors", len(result.Errors),
	)

	return result, nil
}

func loadCircuit(s *Scenario) (*circuit.Circuit, error) {
	if s.CircuitFile != "" {
		return compiler.LoadCircuit(s.CircuitFile)
	}
	return circuit.FromText(s.Circuit)
}

func recordTrace(ctx context.Context, c *circuit.Circuit, presses int, opts []engine.Option, result *Result) error {
	c.Reset()
	opts = append(opts[:len(opts):len(opts)], engine.WithTrace(result.AddTrace))
	_, err := engine.New(c, opts...).PressN(ctx, presses)
	return err
}

func runAnalysis(ctx context.Context, c *circuit.Circuit, s *Scenario, engineOpts []engine.Option, result *Result) error {
	opts := []analysis.Option{analysis.WithEngineOptions(engineOpts...)}
	if s.Presses > 0 && s.Mode != ModeTally {
		opts = append(opts, analysis.WithMaxPresses(s.Presses))
	}
	target := ir.ModuleID(s.Target)

	switch s.Mode {
	case ModeTally:
		res, err := analysis.Tally(ctx, c, s.Presses, opts...)
		if err != nil {
			return err
		}
		result.Low, result.High, result.Product = res.Low, res.High, res.Product

	case ModePeriod:
		if s.Confirm {
			opts = append(opts, analysis.WithConfirmation())
		}
		res, err := analysis.Period(ctx, c, target, opts...)
		if err != nil {
			return err
		}
		result.Period = res.Period
		result.Feeders = make(map[string]int, len(res.Feeders))
		for _, fc := range res.Feeders {
			result.Feeders[string(fc.Feeder)] = fc.First
		}

	case ModeFirstLow:
		res, err := analysis.FirstLow(ctx, c, target, s.Presses, opts...)
		if err != nil {
			return err
		}
		result.Press = res.Press

	default:
		return fmt.Errorf("unknown mode %q", s.Mode)
	}
	return nil
}

// checkExpect compares the outcome fields named in exp.
func checkExpect(exp Expect, result *Result, runErr error) {
	if exp.Error != "" {
		if result.ErrorCode != exp.Error {
			result.AddError(fmt.Sprintf("expected error %s, got %q", exp.Error, result.ErrorCode))
		}
		return
	}
	if runErr != nil {
		result.AddError(fmt.Sprintf("analysis failed: %v", runErr))
		return
	}

	checkInt := func(field string, want *int64, got int64) {
		if want != nil && *want != got {
			result.AddError(fmt.Sprintf("%s: expected %d, got %d", field, *want, got))
		}
	}
	checkInt("low", exp.Low, result.Low)
	checkInt("high", exp.High, result.High)
	checkInt("product", exp.Product, result.Product)
	checkInt("period", exp.Period, result.Period)
	if exp.Press != nil {
		checkInt("press", ptr(int64(*exp.Press)), int64(result.Press))
	}

	for feeder, want := range exp.Feeders {
		got, ok := result.Feeders[feeder]
		switch {
		case !ok:
			result.AddError(fmt.Sprintf("feeders: %s not observed", feeder))
		case got != want:
			result.AddError(fmt.Sprintf("feeders: %s expected %d, got %d", feeder, want, got))
		}
	}
}

func ptr[T any](v T) *T { return &v }
