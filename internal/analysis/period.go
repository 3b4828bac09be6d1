package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/roach88/pulsenet/internal/circuit"
	"github.com/roach88/pulsenet/internal/engine"
	"github.com/roach88/pulsenet/internal/ir"
)

// FeederCycle is what Period observed for one feeder.
type FeederCycle struct {
	Feeder ir.ModuleID `json:"feeder"`

	// First is the first press in which the feeder sent High to the gate.
	First int `json:"first"`

	// Second is the next such press. Only set with WithConfirmation.
	Second int `json:"second,omitempty"`
}

// PeriodResult is the outcome of Period.
type PeriodResult struct {
	RunID   string        `json:"run_id"`
	Target  ir.ModuleID   `json:"target"`
	Gate    ir.ModuleID   `json:"gate"`
	Feeders []FeederCycle `json:"feeders"` // sorted by feeder id
	Period  int64         `json:"period"`
	Presses int           `json:"presses"` // presses simulated
}

// FindFeeders checks the shape Period relies on and returns the gate in
// front of target and the gate's inputs, sorted.
//
// target must have exactly one upstream module, that module must be a
// conjunction, and the conjunction must have at least one input.
// Violations are STRUCTURE_VIOLATION runtime errors.
func FindFeeders(c *circuit.Circuit, target ir.ModuleID) (ir.ModuleID, []ir.ModuleID, error) {
	up := c.Upstream(target)
	if len(up) != 1 {
		return "", nil, engine.NewStructureError(string(target),
			fmt.Sprintf("expected exactly one upstream module, found %d", len(up)))
	}

	gate := up[0]
	m, ok := c.Module(gate)
	if !ok {
		return "", nil, engine.NewStructureError(string(gate), "gate is not a declared module")
	}
	conj, ok := m.Behavior.(*circuit.Conjunction)
	if !ok {
		return "", nil, engine.NewStructureError(string(gate),
			fmt.Sprintf("gate must be a conjunction, is %s", m.Kind()))
	}

	feeders := conj.Inputs()
	if len(feeders) == 0 {
		return "", nil, engine.NewStructureError(string(gate), "gate has no inputs")
	}
	for _, f := range feeders {
		if !c.Has(f) {
			return "", nil, engine.NewStructureError(string(f), "feeder is not a declared module")
		}
	}

	return gate, feeders, nil
}

// Period returns the first press at which target receives Low, computed
// as the least common multiple of the feeders' cycle lengths.
//
// The gate in front of target emits Low only once every input it
// remembers is High, so each feeder is watched for the first press in
// which it sends High to the gate. That press is taken as the feeder's
// period. The answer assumes each feeder fires first at its period and
// then periodically; WithConfirmation checks the second firing.
func Period(ctx context.Context, c *circuit.Circuit, target ir.ModuleID, opts ...Option) (PeriodResult, error) {
	cfg := newConfig(opts)

	gate, feeders, err := FindFeeders(c, target)
	if err != nil {
		slog.Error("period analysis rejected circuit", "target", target, "error", err)
		return PeriodResult{}, fmt.Errorf("period: %w", err)
	}

	c.Reset()
	e := engine.New(c, cfg.engineOpts...)
	res := PeriodResult{RunID: e.RunID(), Target: target, Gate: gate}

	cycles := make(map[ir.ModuleID]*FeederCycle, len(feeders))
	for _, f := range feeders {
		cycles[f] = &FeederCycle{Feeder: f}
	}

	e.OnDestination(gate, func(s ir.Signal) {
		fc, ok := cycles[s.Source]
		if !ok || s.Pulse != ir.PulseHigh {
			return
		}
		switch {
		case fc.First == 0:
			fc.First = s.Press
			slog.Debug("feeder fired", "run_id", res.RunID, "feeder", fc.Feeder, "press", s.Press)
		case cfg.confirm && fc.Second == 0 && s.Press != fc.First:
			fc.Second = s.Press
		}
	})

	slog.Info("period analysis starting",
		"run_id", res.RunID,
		"target", target,
		"gate", gate,
		"feeders", len(feeders),
		"max_presses", cfg.maxPresses,
	)

	done := func() bool {
		for _, fc := range cycles {
			if fc.First == 0 || (cfg.confirm && fc.Second == 0) {
				return false
			}
		}
		return true
	}

	for !done() {
		if e.Presses() >= cfg.maxPresses {
			err := engine.NewPressLimitError(cfg.maxPresses, pendingFeeders(cycles, cfg.confirm))
			slog.Error("period analysis gave up", "run_id", res.RunID, "error", err)
			return PeriodResult{}, fmt.Errorf("period: %w", err)
		}
		if _, err := e.Press(ctx); err != nil {
			slog.Error("period analysis failed", "run_id", res.RunID, "error", err)
			return PeriodResult{}, fmt.Errorf("period: %w", err)
		}
	}
	res.Presses = e.Presses()

	periods := make([]int64, 0, len(feeders))
	for _, f := range feeders {
		fc := cycles[f]
		if cfg.confirm && fc.Second != 2*fc.First {
			err := engine.NewStructureError(string(f),
				fmt.Sprintf("feeder is not periodic: fired at presses %d and %d", fc.First, fc.Second))
			return PeriodResult{}, fmt.Errorf("period: %w", err)
		}
		res.Feeders = append(res.Feeders, *fc)
		periods = append(periods, int64(fc.First))
	}

	res.Period, err = lcmAll(periods)
	if err != nil {
		return PeriodResult{}, fmt.Errorf("period: %w", err)
	}

	slog.Info("period analysis complete",
		"run_id", res.RunID,
		"period", res.Period,
		"presses", res.Presses,
	)

	return res, nil
}

func pendingFeeders(cycles map[ir.ModuleID]*FeederCycle, confirm bool) []string {
	var pending []string
	for id, fc := range cycles {
		if fc.First == 0 || (confirm && fc.Second == 0) {
			pending = append(pending, string(id))
		}
	}
	slices.Sort(pending)
	return pending
}
