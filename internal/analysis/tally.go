package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/roach88/pulsenet/internal/circuit"
	"github.com/roach88/pulsenet/internal/engine"
)

// TallyResult is the outcome of Tally.
type TallyResult struct {
	RunID   string `json:"run_id"`
	Presses int    `json:"presses"`
	Low     int64  `json:"low"`
	High    int64  `json:"high"`
	Product int64  `json:"product"`

	// Simulated holds the stats of every press actually simulated, in
	// order. Without cycle skipping that is every press.
	Simulated []engine.PressStats `json:"-"`

	// CycleStart and CycleLength describe the repeating state found with
	// WithCycleSkip: the state after press CycleStart+CycleLength equals
	// the state after press CycleStart. Both are zero when no skip
	// happened.
	CycleStart  int `json:"cycle_start,omitempty"`
	CycleLength int `json:"cycle_length,omitempty"`
}

// Tally resets c, presses the button presses times (DefaultPresses when
// zero) and returns the Low and High totals, including the button's own
// pulse, and their product.
func Tally(ctx context.Context, c *circuit.Circuit, presses int, opts ...Option) (TallyResult, error) {
	if presses < 0 {
		return TallyResult{}, fmt.Errorf("tally: negative press count %d", presses)
	}
	if presses == 0 {
		presses = DefaultPresses
	}
	cfg := newConfig(opts)

	c.Reset()
	e := engine.New(c, cfg.engineOpts...)
	res := TallyResult{RunID: e.RunID(), Presses: presses}

	slog.Info("tally starting",
		"run_id", res.RunID,
		"presses", presses,
		"cycle_skip", cfg.cycleSkip,
	)

	var (
		detector *engine.StateCycleDetector
		cumLow   = []int64{0}
		cumHigh  = []int64{0}
	)
	if cfg.cycleSkip {
		detector = engine.NewStateCycleDetector(c.StateKey())
	}

	for press := 1; press <= presses; press++ {
		st, err := e.Press(ctx)
		if err != nil {
			slog.Error("tally failed", "run_id", res.RunID, "press", press, "error", err)
			return TallyResult{}, fmt.Errorf("tally: %w", err)
		}
		res.Simulated = append(res.Simulated, st)
		res.Low += st.Low
		res.High += st.High

		if detector == nil {
			continue
		}
		cumLow = append(cumLow, res.Low)
		cumHigh = append(cumHigh, res.High)

		first, seen := detector.Observe(press, c.StateKey())
		if !seen {
			continue
		}

		// Presses first+1..press repeat from here on. Add the whole
		// cycles arithmetically and simulate the remainder so the
		// circuit ends in the right state.
		length := press - first
		remaining := presses - press
		cycles := int64(remaining / length)
		skipLow, okLow := mulCount(cycles, cumLow[press]-cumLow[first])
		skipHigh, okHigh := mulCount(cycles, cumHigh[press]-cumHigh[first])
		if !okLow || !okHigh || skipLow > math.MaxInt64-res.Low || skipHigh > math.MaxInt64-res.High {
			return TallyResult{}, fmt.Errorf("tally: pulse counts overflow int64 over %d presses", presses)
		}
		res.Low += skipLow
		res.High += skipHigh
		res.CycleStart = first
		res.CycleLength = length

		slog.Debug("tally found state cycle",
			"run_id", res.RunID,
			"cycle_start", first,
			"cycle_length", length,
			"skipped_cycles", cycles,
		)

		for range remaining % length {
			st, err := e.Press(ctx)
			if err != nil {
				return TallyResult{}, fmt.Errorf("tally: %w", err)
			}
			res.Simulated = append(res.Simulated, st)
			res.Low += st.Low
			res.High += st.High
		}
		break
	}

	product, ok := mulCount(res.Low, res.High)
	if !ok {
		slog.Error("tally product overflows", "run_id", res.RunID, "low", res.Low, "high", res.High)
		return TallyResult{}, fmt.Errorf("tally: product overflows int64 (%d low x %d high)", res.Low, res.High)
	}
	res.Product = product

	slog.Info("tally complete",
		"run_id", res.RunID,
		"low", res.Low,
		"high", res.High,
		"product", res.Product,
		"simulated", len(res.Simulated),
	)

	return res, nil
}

// mulCount multiplies two non-negative counts, reporting false instead of
// wrapping past math.MaxInt64.
func mulCount(a, b int64) (int64, bool) {
	if a != 0 && b > math.MaxInt64/a {
		return 0, false
	}
	return a * b, true
}
