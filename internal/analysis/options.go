package analysis

import "github.com/roach88/pulsenet/internal/engine"

const (
	// DefaultPresses is the press count Tally uses when given zero.
	DefaultPresses = 1000

	// DefaultMaxPresses caps Period and FirstLow.
	DefaultMaxPresses = 1_000_000
)

type config struct {
	maxPresses int
	confirm    bool
	cycleSkip  bool
	engineOpts []engine.Option
}

// Option configures an analysis.
type Option func(*config)

// WithMaxPresses sets how many presses Period and FirstLow try before
// giving up with a PRESS_LIMIT error.
func WithMaxPresses(n int) Option {
	return func(c *config) {
		c.maxPresses = n
	}
}

// WithConfirmation makes Period wait for every feeder to fire a second
// time and reject the circuit unless the second firing comes at exactly
// twice the first press. It costs up to twice the presses.
func WithConfirmation() Option {
	return func(c *config) {
		c.confirm = true
	}
}

// WithCycleSkip lets Tally stop simulating once the circuit state repeats
// and extrapolate the remaining presses. The totals are identical; only
// the presses actually simulated are reported per press.
func WithCycleSkip() Option {
	return func(c *config) {
		c.cycleSkip = true
	}
}

// WithEngineOptions passes options through to the engine an analysis
// creates, e.g. engine.WithMaxSignals or engine.WithTrace.
func WithEngineOptions(opts ...engine.Option) Option {
	return func(c *config) {
		c.engineOpts = append(c.engineOpts, opts...)
	}
}

func newConfig(opts []Option) config {
	cfg := config{maxPresses: DefaultMaxPresses}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}
