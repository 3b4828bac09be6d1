package analysis

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/pulsenet/internal/circuit"
	"github.com/roach88/pulsenet/internal/engine"
	"github.com/roach88/pulsenet/internal/ir"
)

// FirstLowResult is the outcome of FirstLow.
type FirstLowResult struct {
	RunID  string      `json:"run_id"`
	Target ir.ModuleID `json:"target"`
	Press  int         `json:"press"`
}

// FirstLow resets c and presses until target receives a Low pulse,
// returning that press. It gives up with a PRESS_LIMIT error after
// maxPresses (DefaultMaxPresses when zero).
func FirstLow(ctx context.Context, c *circuit.Circuit, target ir.ModuleID, maxPresses int, opts ...Option) (FirstLowResult, error) {
	if maxPresses <= 0 {
		maxPresses = DefaultMaxPresses
	}
	cfg := newConfig(opts)

	c.Reset()
	e := engine.New(c, cfg.engineOpts...)
	res := FirstLowResult{RunID: e.RunID(), Target: target}

	hit := false
	e.OnDestination(target, func(s ir.Signal) {
		if s.Pulse == ir.PulseLow {
			hit = true
		}
	})

	for !hit {
		if e.Presses() >= maxPresses {
			err := engine.NewPressLimitError(maxPresses, []string{string(target)})
			return FirstLowResult{}, fmt.Errorf("first-low: %w", err)
		}
		if _, err := e.Press(ctx); err != nil {
			return FirstLowResult{}, fmt.Errorf("first-low: %w", err)
		}
	}
	res.Press = e.Presses()

	slog.Info("first low found", "run_id", res.RunID, "target", target, "press", res.Press)
	return res, nil
}
