package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/pulsenet/internal/circuit"
	"github.com/roach88/pulsenet/internal/ir"
)

// DefaultMaxSignals is the default per-press signal quota.
const DefaultMaxSignals = 1_000_000

// PressStats summarizes one press.
type PressStats struct {
	Press   int   `json:"press"`
	Low     int64 `json:"low"`
	High    int64 `json:"high"`
	Signals int   `json:"signals"`
}

// Engine presses the button of one circuit.
//
// The engine mutates the circuit it was given. Two engines must not share
// a circuit, and a circuit must not be modified while an engine is using
// it except through Circuit.Reset between runs.
type Engine struct {
	circuit *circuit.Circuit
	clock   *Clock
	queue   *signalQueue
	runID   string

	maxSignals  int
	quota       *QuotaEnforcer
	trace       func(ir.Signal)
	dstWatchers watcherSet
	srcWatchers watcherSet

	presses int
	low     int64
	high    int64

	// failed is set when a press aborts. The circuit is then mid-press and
	// further presses would not mean anything.
	failed error

	out []ir.Signal // scratch buffer reused across deliveries
}

// Option configures an Engine.
type Option func(*Engine)

// WithMaxSignals sets the per-press signal quota.
//
// Default: DefaultMaxSignals. Use a small value in tests of circuits that
// do not settle.
func WithMaxSignals(n int) Option {
	return func(e *Engine) {
		e.maxSignals = n
	}
}

// WithTrace streams every delivered signal to fn, in delivery order.
func WithTrace(fn func(ir.Signal)) Option {
	return func(e *Engine) {
		e.trace = fn
	}
}

// WithRunID fixes the run id instead of generating one.
func WithRunID(id string) Option {
	return func(e *Engine) {
		e.runID = id
	}
}

// WithRunIDGenerator sets the generator used when no run id is fixed.
// Default: UUIDv7Generator.
func WithRunIDGenerator(gen RunIDGenerator) Option {
	return func(e *Engine) {
		if e.runID == "" {
			e.runID = gen.Generate()
		}
	}
}

// WithClock sets the logical clock, e.g. to continue numbering from a
// previous run.
func WithClock(c *Clock) Option {
	return func(e *Engine) {
		e.clock = c
	}
}

// New creates an engine for c. The circuit keeps whatever state it has;
// call c.Reset first to start from the construction-time state.
func New(c *circuit.Circuit, opts ...Option) *Engine {
	e := &Engine{
		circuit:     c,
		clock:       NewClock(),
		queue:       newSignalQueue(),
		maxSignals:  DefaultMaxSignals,
		dstWatchers: make(watcherSet),
		srcWatchers: make(watcherSet),
	}

	for _, opt := range opts {
		opt(e)
	}
	if e.runID == "" {
		e.runID = UUIDv7Generator{}.Generate()
	}
	e.quota = NewQuotaEnforcer(e.maxSignals)

	return e
}

// Press performs one button press and returns once the circuit is quiet.
//
// The context is checked before the press starts; a press that has begun
// always runs to quiescence or to the signal quota.
func (e *Engine) Press(ctx context.Context) (PressStats, error) {
	if err := ctx.Err(); err != nil {
		return PressStats{}, err
	}
	if e.failed != nil {
		return PressStats{}, fmt.Errorf("engine stopped: %w", e.failed)
	}

	e.presses++
	stats := PressStats{Press: e.presses}
	e.quota.Reset()

	e.queue.Enqueue(ir.Signal{
		Source:      ir.ButtonID,
		Destination: ir.BroadcasterID,
		Pulse:       ir.PulseLow,
		Press:       e.presses,
	})

	for {
		s, ok := e.queue.TryDequeue()
		if !ok {
			break
		}

		if err := e.quota.Check(e.presses); err != nil {
			e.queue.Clear()
			e.failed = err
			slog.Error("press aborted",
				"run_id", e.runID,
				"press", e.presses,
				"signals", e.quota.Current(),
				"error", err,
			)
			return stats, err
		}

		e.deliver(s, &stats)
	}

	e.low += stats.Low
	e.high += stats.High

	slog.Debug("press complete",
		"run_id", e.runID,
		"press", stats.Press,
		"low", stats.Low,
		"high", stats.High,
		"signals", stats.Signals,
	)

	return stats, nil
}

// deliver counts s, notifies observers and hands s to its destination.
func (e *Engine) deliver(s ir.Signal, stats *PressStats) {
	e.clock.Stamp(&s)
	stats.Signals++
	if s.Pulse == ir.PulseHigh {
		stats.High++
	} else {
		stats.Low++
	}

	if e.trace != nil {
		e.trace(s)
	}
	e.dstWatchers.fire(s.Destination, s)
	e.srcWatchers.fire(s.Source, s)

	m, ok := e.circuit.Module(s.Destination)
	if !ok {
		return
	}
	e.out = m.Receive(s.Source, s.Pulse, e.out[:0])
	for _, o := range e.out {
		o.Press = e.presses
		e.queue.Enqueue(o)
	}
}

// PressN performs n presses, stopping at the first error. It returns the
// combined stats of the presses that completed.
func (e *Engine) PressN(ctx context.Context, n int) (PressStats, error) {
	total := PressStats{Press: e.presses}
	for range n {
		st, err := e.Press(ctx)
		if err != nil {
			return total, err
		}
		total.Press = st.Press
		total.Low += st.Low
		total.High += st.High
		total.Signals += st.Signals
	}
	return total, nil
}

// Presses returns the number of presses started.
func (e *Engine) Presses() int {
	return e.presses
}

// Totals returns the cumulative Low and High counts of completed presses.
func (e *Engine) Totals() (low, high int64) {
	return e.low, e.high
}

// RunID returns the identifier of this engine's run.
func (e *Engine) RunID() string {
	return e.runID
}

// Clock returns the engine's logical clock.
func (e *Engine) Clock() *Clock {
	return e.clock
}
